package domain

import "time"

// Park is a catalogued location.
type Park struct {
	ID          int64
	Name        string
	City        *string
	Description *string
	ImageURL    *string
	CreatedAt   time.Time
}

// ParkStats is a park together with aggregates computed from its reviews at read time.
type ParkStats struct {
	Park
	AvgRating    float64
	ReviewsCount int64
}

// ParkDetail is a park with all of its reviews, newest first.
type ParkDetail struct {
	Park    Park
	Reviews []Review
}
