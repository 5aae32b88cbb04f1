package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/parks-catalog/internal/domain"
)

// ReviewsRepository provides helpers for park reviews.
type ReviewsRepository struct {
	db DBTX
}

const reviewColumns = `id, park_id, author, rating, comment, created_at`

// ReviewCreateParams captures the payload required to insert a review.
type ReviewCreateParams struct {
	ParkID  int64
	Author  string
	Rating  int
	Comment *string
}

// Create inserts a review and returns the stored row. The park reference is checked
// by the foreign key in the same statement; a missing park yields ErrNotFound.
func (r *ReviewsRepository) Create(ctx context.Context, params ReviewCreateParams) (domain.Review, error) {
	query := fmt.Sprintf(`
        INSERT INTO reviews (park_id, author, rating, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING %s
    `, reviewColumns)

	review, err := scanReview(r.db.QueryRow(ctx, query, params.ParkID, params.Author, params.Rating, params.Comment))
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Review{}, fmt.Errorf("park %d: %w", params.ParkID, ErrNotFound)
		}
		return domain.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

// ListByPark returns the reviews of a park, newest first.
func (r *ReviewsRepository) ListByPark(ctx context.Context, parkID int64) ([]domain.Review, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM reviews
        WHERE park_id = $1
        ORDER BY created_at DESC, id DESC
    `, reviewColumns)

	rows, err := r.db.Query(ctx, query, parkID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// GetByID retrieves a single review.
func (r *ReviewsRepository) GetByID(ctx context.Context, id int64) (domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)
	return scanReview(r.db.QueryRow(ctx, query, id))
}

// Delete removes a review by id.
func (r *ReviewsRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID,
		&review.ParkID,
		&review.Author,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}
