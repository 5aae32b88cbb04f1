package domain

import "time"

// DefaultAuthor is stored when a review is submitted without an author.
const DefaultAuthor = "Anonymous"

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a single user's rating of a park.
type Review struct {
	ID        int64
	ParkID    int64
	Author    string
	Rating    int
	Comment   *string
	CreatedAt time.Time
}
