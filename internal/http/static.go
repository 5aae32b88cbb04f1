package httpserver

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/Clark-Hu/parks-catalog/web"
)

// handleFallback answers every request no route matched. Browser navigation gets the
// front end (an existing asset, or index.html for client-side paths); API calls and
// non-GET requests get a JSON 404.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	if (r.Method != http.MethodGet && r.Method != http.MethodHead) || isAPIPath(r.URL.Path) {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found")
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && name != web.IndexFile {
		if info, err := fs.Stat(s.assets, name); err == nil && !info.IsDir() {
			s.files.ServeHTTP(w, r)
			return
		}
	}

	index, err := fs.ReadFile(s.assets, web.IndexFile)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(index)
	}
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
