// Package service holds the catalogue's business rules: input normalization,
// validation, and the composition of repository calls.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Clark-Hu/parks-catalog/internal/domain"
	"github.com/Clark-Hu/parks-catalog/internal/repository"
)

// ParkRepository is the persistence contract for parks.
type ParkRepository interface {
	ListWithStats(ctx context.Context, filter repository.ParkFilter) ([]domain.ParkStats, error)
	GetByID(ctx context.Context, id int64) (domain.Park, error)
	Create(ctx context.Context, params repository.ParkParams) (domain.Park, error)
	Update(ctx context.Context, id int64, params repository.ParkParams) (domain.Park, error)
	Delete(ctx context.Context, id int64) error
}

// ReviewRepository is the persistence contract for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, params repository.ReviewCreateParams) (domain.Review, error)
	ListByPark(ctx context.Context, parkID int64) ([]domain.Review, error)
	GetByID(ctx context.Context, id int64) (domain.Review, error)
	Delete(ctx context.Context, id int64) error
}

// Service implements park and review operations on top of the repositories.
type Service struct {
	parks   ParkRepository
	reviews ReviewRepository
	logger  *slog.Logger
}

// New creates a Service.
func New(parks ParkRepository, reviews ReviewRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		parks:   parks,
		reviews: reviews,
		logger:  logger,
	}
}

// NewFromRepository wires a Service to the pgx-backed repositories.
func NewFromRepository(repo *repository.Repository, logger *slog.Logger) *Service {
	return New(repo.Parks, repo.Reviews, logger)
}

// ParkInput is the writable representation of a park, shared by create and update.
type ParkInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	City        *string `json:"city" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageURL"`
}

// ReviewInput is the writable representation of a review.
type ReviewInput struct {
	Author  *string `json:"author" validate:"omitempty,max=255"`
	Rating  *int    `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

// ListFilter narrows ListParks. Blank values are ignored.
type ListFilter struct {
	Query string
	City  string
}

func (in ParkInput) normalize() ParkInput {
	return ParkInput{
		Name:        strings.TrimSpace(in.Name),
		City:        trimToNil(in.City),
		Description: trimToNil(in.Description),
		ImageURL:    trimToNil(in.ImageURL),
	}
}

func (in ParkInput) params() repository.ParkParams {
	return repository.ParkParams{
		Name:        in.Name,
		City:        in.City,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
}

func (in ReviewInput) normalize() ReviewInput {
	return ReviewInput{
		Author:  trimToNil(in.Author),
		Rating:  in.Rating,
		Comment: trimToNil(in.Comment),
	}
}

// ListParks returns every park matching filter with its review statistics, newest first.
func (s *Service) ListParks(ctx context.Context, filter ListFilter) ([]domain.ParkStats, error) {
	f := repository.ParkFilter{
		Query: trimToNil(&filter.Query),
		City:  trimToNil(&filter.City),
	}
	parks, err := s.parks.ListWithStats(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list parks: %w", err)
	}
	return parks, nil
}

// GetPark returns a park together with its reviews, newest first.
func (s *Service) GetPark(ctx context.Context, id int64) (domain.ParkDetail, error) {
	park, err := s.parks.GetByID(ctx, id)
	if err != nil {
		return domain.ParkDetail{}, fmt.Errorf("get park %d: %w", id, err)
	}
	reviews, err := s.reviews.ListByPark(ctx, id)
	if err != nil {
		return domain.ParkDetail{}, fmt.Errorf("get park %d reviews: %w", id, err)
	}
	return domain.ParkDetail{Park: park, Reviews: reviews}, nil
}

// CreatePark validates input and stores a new park.
func (s *Service) CreatePark(ctx context.Context, input ParkInput) (domain.Park, error) {
	input = input.normalize()
	if err := validateStruct(input); err != nil {
		return domain.Park{}, err
	}

	park, err := s.parks.Create(ctx, input.params())
	if err != nil {
		return domain.Park{}, fmt.Errorf("create park: %w", err)
	}

	s.logger.InfoContext(ctx, "park created",
		slog.Int64("park_id", park.ID),
		slog.String("name", park.Name),
	)
	return park, nil
}

// UpdatePark validates input and replaces every mutable field of park id.
func (s *Service) UpdatePark(ctx context.Context, id int64, input ParkInput) (domain.Park, error) {
	input = input.normalize()
	if err := validateStruct(input); err != nil {
		return domain.Park{}, err
	}

	park, err := s.parks.Update(ctx, id, input.params())
	if err != nil {
		return domain.Park{}, fmt.Errorf("update park: %w", err)
	}

	s.logger.InfoContext(ctx, "park updated", slog.Int64("park_id", park.ID))
	return park, nil
}

// DeletePark removes a park and, through the cascade, its reviews.
func (s *Service) DeletePark(ctx context.Context, id int64) error {
	if err := s.parks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete park: %w", err)
	}
	s.logger.InfoContext(ctx, "park deleted", slog.Int64("park_id", id))
	return nil
}

// CreateReview validates input and attaches a review to park parkID.
func (s *Service) CreateReview(ctx context.Context, parkID int64, input ReviewInput) (domain.Review, error) {
	input = input.normalize()
	if err := validateStruct(input); err != nil {
		return domain.Review{}, err
	}

	author := domain.DefaultAuthor
	if input.Author != nil {
		author = *input.Author
	}

	review, err := s.reviews.Create(ctx, repository.ReviewCreateParams{
		ParkID:  parkID,
		Author:  author,
		Rating:  *input.Rating,
		Comment: input.Comment,
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("create review: %w", err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.Int64("review_id", review.ID),
		slog.Int64("park_id", parkID),
		slog.Int("rating", review.Rating),
	)
	return review, nil
}

// GetReview returns a single review.
func (s *Service) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return domain.Review{}, fmt.Errorf("get review %d: %w", id, err)
	}
	return review, nil
}

// DeleteReview removes a review.
func (s *Service) DeleteReview(ctx context.Context, id int64) error {
	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	s.logger.InfoContext(ctx, "review deleted", slog.Int64("review_id", id))
	return nil
}

func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
