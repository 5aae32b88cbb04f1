package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/parks-catalog/internal/domain"
)

// ParksRepository provides persistence helpers for park entities.
type ParksRepository struct {
	db DBTX
}

const parkColumns = `id, name, city, description, image_url, created_at`

// ParkParams bundles the mutable park fields. Nil pointers are stored as NULL.
type ParkParams struct {
	Name        string
	City        *string
	Description *string
	ImageURL    *string
}

// ParkFilter narrows a park listing. Query matches name or description, City matches
// city; both are case-insensitive substring matches and nil means no constraint.
type ParkFilter struct {
	Query *string
	City  *string
}

// ListWithStats returns every park matching filter, newest first, with the average
// rating and review count of its reviews. Parks without reviews report zero for both.
func (r *ParksRepository) ListWithStats(ctx context.Context, filter ParkFilter) ([]domain.ParkStats, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 2)
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != nil {
		p := arg(likePattern(*filter.Query))
		where = append(where, fmt.Sprintf("(p.name ILIKE %s OR p.description ILIKE %s)", p, p))
	}
	if filter.City != nil {
		where = append(where, fmt.Sprintf("p.city ILIKE %s", arg(likePattern(*filter.City))))
	}

	var qb strings.Builder
	qb.WriteString(`
        SELECT p.id, p.name, p.city, p.description, p.image_url, p.created_at,
               COALESCE(AVG(r.rating), 0)::float8 AS avg_rating,
               COUNT(r.id) AS reviews_count
        FROM parks p
        LEFT JOIN reviews r ON r.park_id = p.id`)
	if len(where) > 0 {
		qb.WriteString("\n        WHERE ")
		qb.WriteString(strings.Join(where, " AND "))
	}
	qb.WriteString(`
        GROUP BY p.id
        ORDER BY p.created_at DESC, p.id DESC`)

	rows, err := r.db.Query(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list parks: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ParkStats, 0)
	for rows.Next() {
		var item domain.ParkStats
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.City,
			&item.Description,
			&item.ImageURL,
			&item.CreatedAt,
			&item.AvgRating,
			&item.ReviewsCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan park: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list parks: %w", err)
	}
	return items, nil
}

// GetByID fetches a park by its identifier.
func (r *ParksRepository) GetByID(ctx context.Context, id int64) (domain.Park, error) {
	query := fmt.Sprintf(`SELECT %s FROM parks WHERE id = $1`, parkColumns)
	return scanPark(r.db.QueryRow(ctx, query, id))
}

// Create inserts a new park row and returns the stored entity.
func (r *ParksRepository) Create(ctx context.Context, params ParkParams) (domain.Park, error) {
	query := fmt.Sprintf(`
        INSERT INTO parks (name, city, description, image_url)
        VALUES ($1, $2, $3, $4)
        RETURNING %s
    `, parkColumns)

	park, err := scanPark(r.db.QueryRow(ctx, query, params.Name, params.City, params.Description, params.ImageURL))
	if err != nil {
		return domain.Park{}, fmt.Errorf("insert park: %w", err)
	}
	return park, nil
}

// Update overwrites all mutable fields of a park and returns the updated row.
func (r *ParksRepository) Update(ctx context.Context, id int64, params ParkParams) (domain.Park, error) {
	query := fmt.Sprintf(`
        UPDATE parks
        SET name = $2,
            city = $3,
            description = $4,
            image_url = $5
        WHERE id = $1
        RETURNING %s
    `, parkColumns)

	park, err := scanPark(r.db.QueryRow(ctx, query, id, params.Name, params.City, params.Description, params.ImageURL))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Park{}, err
		}
		return domain.Park{}, fmt.Errorf("update park %d: %w", id, err)
	}
	return park, nil
}

// Delete removes a park. Its reviews go with it through the foreign key cascade.
func (r *ParksRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM parks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete park %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPark(row pgx.Row) (domain.Park, error) {
	var park domain.Park
	err := row.Scan(
		&park.ID,
		&park.Name,
		&park.City,
		&park.Description,
		&park.ImageURL,
		&park.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Park{}, ErrNotFound
		}
		return domain.Park{}, err
	}
	return park, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a substring ILIKE match, escaping wildcards in s.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
