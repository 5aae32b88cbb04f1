package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/parks-catalog/internal/domain"
	"github.com/Clark-Hu/parks-catalog/internal/service"
)

const (
	maxFilterLength = 255
	parkNotFound    = "Park not found"
)

type parkRequest struct {
	Name        string  `json:"name"`
	City        *string `json:"city"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageURL"`
}

type parkResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	City        *string   `json:"city"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"imageURL"`
	CreatedAt   time.Time `json:"created_at"`
}

type parkListItemResponse struct {
	parkResponse
	AvgRating    float64 `json:"avg_rating"`
	ReviewsCount int64   `json:"reviews_count"`
}

type parkDetailResponse struct {
	Park    parkResponse     `json:"park"`
	Reviews []reviewResponse `json:"reviews"`
}

func (s *Server) handleListParks(w http.ResponseWriter, r *http.Request) {
	filter, err := buildParkFilter(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	parks, err := s.svc.ListParks(r.Context(), filter)
	if err != nil {
		s.respondServiceError(w, r, err, parkNotFound)
		return
	}

	items := make([]parkListItemResponse, 0, len(parks))
	for _, p := range parks {
		items = append(items, parkListItemResponse{
			parkResponse: toParkResponse(p.Park),
			AvgRating:    p.AvgRating,
			ReviewsCount: p.ReviewsCount,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}

// buildParkFilter reads the optional q and city query parameters.
func buildParkFilter(query url.Values) (service.ListFilter, error) {
	filter := service.ListFilter{
		Query: strings.TrimSpace(query.Get("q")),
		City:  strings.TrimSpace(query.Get("city")),
	}
	if len(filter.Query) > maxFilterLength {
		return service.ListFilter{}, fmt.Errorf("q must be at most %d characters", maxFilterLength)
	}
	if len(filter.City) > maxFilterLength {
		return service.ListFilter{}, fmt.Errorf("city must be at most %d characters", maxFilterLength)
	}
	return filter, nil
}

func (s *Server) handleGetPark(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", parkNotFound)
		return
	}

	detail, err := s.svc.GetPark(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, parkNotFound)
		return
	}

	reviews := make([]reviewResponse, 0, len(detail.Reviews))
	for _, rv := range detail.Reviews {
		reviews = append(reviews, toReviewResponse(rv))
	}
	s.respondJSON(w, http.StatusOK, parkDetailResponse{
		Park:    toParkResponse(detail.Park),
		Reviews: reviews,
	})
}

func (s *Server) handleCreatePark(w http.ResponseWriter, r *http.Request) {
	var req parkRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	park, err := s.svc.CreatePark(r.Context(), req.input())
	if err != nil {
		s.respondServiceError(w, r, err, parkNotFound)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/parks/%d", park.ID))
	s.respondJSON(w, http.StatusCreated, toParkResponse(park))
}

func (s *Server) handleUpdatePark(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", parkNotFound)
		return
	}

	var req parkRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	park, err := s.svc.UpdatePark(r.Context(), id, req.input())
	if err != nil {
		s.respondServiceError(w, r, err, parkNotFound)
		return
	}
	s.respondJSON(w, http.StatusOK, toParkResponse(park))
}

func (s *Server) handleDeletePark(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", parkNotFound)
		return
	}

	if err := s.svc.DeletePark(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err, parkNotFound)
		return
	}
	s.respondJSON(w, http.StatusOK, successResponse{Success: true})
}

func (req parkRequest) input() service.ParkInput {
	return service.ParkInput{
		Name:        req.Name,
		City:        req.City,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
}

func toParkResponse(p domain.Park) parkResponse {
	return parkResponse{
		ID:          p.ID,
		Name:        p.Name,
		City:        p.City,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

// parseID reads the {id} path parameter. Ids are positive integers; anything else
// cannot name a stored row.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
