// Package web embeds the single-page front end served by the HTTP server.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var files embed.FS

// IndexFile is served for client-side routes that match no asset.
const IndexFile = "index.html"

// Static returns the front-end assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
