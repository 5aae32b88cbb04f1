package httpserver

import (
	"net/http"
	"time"

	"github.com/Clark-Hu/parks-catalog/internal/domain"
	"github.com/Clark-Hu/parks-catalog/internal/service"
)

const reviewNotFound = "Review not found"

type reviewRequest struct {
	Author  *string `json:"author"`
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

type reviewResponse struct {
	ID        int64     `json:"id"`
	ParkID    int64     `json:"park_id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	parkID, ok := parseID(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", parkNotFound)
		return
	}

	var req reviewRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	review, err := s.svc.CreateReview(r.Context(), parkID, service.ReviewInput{
		Author:  req.Author,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		s.respondServiceError(w, r, err, parkNotFound)
		return
	}
	s.respondJSON(w, http.StatusCreated, toReviewResponse(review))
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", reviewNotFound)
		return
	}

	review, err := s.svc.GetReview(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, reviewNotFound)
		return
	}
	s.respondJSON(w, http.StatusOK, toReviewResponse(review))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", reviewNotFound)
		return
	}

	if err := s.svc.DeleteReview(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err, reviewNotFound)
		return
	}
	s.respondJSON(w, http.StatusOK, successResponse{Success: true})
}

func toReviewResponse(rv domain.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		ParkID:    rv.ParkID,
		Author:    rv.Author,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
	}
}
