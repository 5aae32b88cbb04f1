package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/parks-catalog/internal/domain"
	"github.com/Clark-Hu/parks-catalog/internal/testutil"
)

type testEnv struct {
	ctx        context.Context
	pg         *testutil.Postgres
	repository *Repository
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	pg := testutil.StartPostgres(t, "parks_repo_test")
	return &testEnv{
		ctx:        context.Background(),
		pg:         pg,
		repository: NewWithDB(pg.Pool),
	}
}

func strPtr(s string) *string { return &s }

func mustCreatePark(t testing.TB, env *testEnv, name string, city *string) domain.Park {
	t.Helper()
	park, err := env.repository.Parks.Create(env.ctx, ParkParams{Name: name, City: city})
	if err != nil {
		t.Fatalf("create park %q: %v", name, err)
	}
	return park
}

func mustCreateReview(t testing.TB, env *testEnv, parkID int64, rating int) domain.Review {
	t.Helper()
	review, err := env.repository.Reviews.Create(env.ctx, ReviewCreateParams{
		ParkID: parkID,
		Author: domain.DefaultAuthor,
		Rating: rating,
	})
	if err != nil {
		t.Fatalf("create review for park %d: %v", parkID, err)
	}
	return review
}

func TestParksRepository_CreateGetUpdateDelete(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.repository.Parks.Create(env.ctx, ParkParams{
		Name:        "Golden Gate Park",
		City:        strPtr("San Francisco"),
		Description: strPtr("Urban park"),
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Golden Gate Park", created.Name)
	assert.Nil(t, created.ImageURL)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := env.repository.Parks.GetByID(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	require.NotNil(t, got.City)
	assert.Equal(t, "San Francisco", *got.City)

	updated, err := env.repository.Parks.Update(env.ctx, created.ID, ParkParams{
		Name:     "Golden Gate",
		ImageURL: strPtr("https://img.example/ggp.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Golden Gate", updated.Name)
	assert.Nil(t, updated.City, "update replaces every field")
	assert.Nil(t, updated.Description)
	require.NotNil(t, updated.ImageURL)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	require.NoError(t, env.repository.Parks.Delete(env.ctx, created.ID))
	_, err = env.repository.Parks.GetByID(env.ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParksRepository_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.repository.Parks.GetByID(env.ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.repository.Parks.Update(env.ctx, 999, ParkParams{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = env.repository.Parks.Delete(env.ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParksRepository_RejectsBlankName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.repository.Parks.Create(env.ctx, ParkParams{Name: "   "})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestParksRepository_ListWithStats(t *testing.T) {
	env := newTestEnv(t)

	empty, err := env.repository.Parks.ListWithStats(env.ctx, ParkFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first := mustCreatePark(t, env, "Zilker Park", strPtr("Austin"))
	second := mustCreatePark(t, env, "Central Park", strPtr("New York"))
	mustCreateReview(t, env, first.ID, 5)
	mustCreateReview(t, env, first.ID, 4)
	mustCreateReview(t, env, first.ID, 4)

	items, err := env.repository.Parks.ListWithStats(env.ctx, ParkFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Newest first.
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, int64(0), items[0].ReviewsCount)
	assert.Equal(t, 0.0, items[0].AvgRating)

	assert.Equal(t, first.ID, items[1].ID)
	assert.Equal(t, int64(3), items[1].ReviewsCount)
	assert.InDelta(t, 13.0/3.0, items[1].AvgRating, 1e-9)
}

func TestParksRepository_ListWithStatsFilters(t *testing.T) {
	env := newTestEnv(t)

	lake := mustCreatePark(t, env, "Lake Park", strPtr("Chicago"))
	_, err := env.repository.Parks.Create(env.ctx, ParkParams{
		Name:        "Millennium Park",
		City:        strPtr("Chicago"),
		Description: strPtr("Has a lakefront"),
	})
	require.NoError(t, err)
	mustCreatePark(t, env, "100% Park", strPtr("Denver"))
	mustCreatePark(t, env, "Hyde Park", nil)

	tests := []struct {
		name   string
		filter ParkFilter
		want   int
	}{
		{name: "no filter", filter: ParkFilter{}, want: 4},
		{name: "query matches name or description", filter: ParkFilter{Query: strPtr("LAKE")}, want: 2},
		{name: "city is case insensitive", filter: ParkFilter{City: strPtr("chicago")}, want: 2},
		{name: "both constraints", filter: ParkFilter{Query: strPtr("millennium"), City: strPtr("chi")}, want: 1},
		{name: "percent is literal", filter: ParkFilter{Query: strPtr("%")}, want: 1},
		{name: "underscore is literal", filter: ParkFilter{Query: strPtr("_")}, want: 0},
		{name: "no match", filter: ParkFilter{City: strPtr("Paris")}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := env.repository.Parks.ListWithStats(env.ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
		})
	}

	items, err := env.repository.Parks.ListWithStats(env.ctx, ParkFilter{Query: strPtr("lake park")})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, lake.ID, items[0].ID)
}

func TestReviewsRepository_CreateListGetDelete(t *testing.T) {
	env := newTestEnv(t)

	park := mustCreatePark(t, env, "Stanley Park", strPtr("Vancouver"))

	first, err := env.repository.Reviews.Create(env.ctx, ReviewCreateParams{
		ParkID:  park.ID,
		Author:  "Jo",
		Rating:  3,
		Comment: strPtr("fine"),
	})
	require.NoError(t, err)
	assert.Equal(t, park.ID, first.ParkID)
	assert.Equal(t, "Jo", first.Author)
	require.NotNil(t, first.Comment)

	second := mustCreateReview(t, env, park.ID, 5)

	reviews, err := env.repository.Reviews.ListByPark(env.ctx, park.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, second.ID, reviews[0].ID)
	assert.Equal(t, first.ID, reviews[1].ID)

	got, err := env.repository.Reviews.GetByID(env.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rating)

	require.NoError(t, env.repository.Reviews.Delete(env.ctx, first.ID))
	assert.ErrorIs(t, env.repository.Reviews.Delete(env.ctx, first.ID), ErrNotFound)

	_, err = env.repository.Reviews.GetByID(env.ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewsRepository_UnknownParkIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.repository.Reviews.Create(env.ctx, ReviewCreateParams{ParkID: 42, Author: "A", Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)

	reviews, err := env.repository.Reviews.ListByPark(env.ctx, 42)
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestReviewsRepository_RatingOutOfRangeRejected(t *testing.T) {
	env := newTestEnv(t)
	park := mustCreatePark(t, env, "Bounds", nil)

	for _, rating := range []int{0, 6} {
		_, err := env.repository.Reviews.Create(env.ctx, ReviewCreateParams{ParkID: park.ID, Author: "A", Rating: rating})
		assert.Error(t, err, "rating %d", rating)
	}
}

func TestDeleteParkCascadesReviews(t *testing.T) {
	env := newTestEnv(t)

	park := mustCreatePark(t, env, "Cascade", nil)
	review := mustCreateReview(t, env, park.ID, 2)

	require.NoError(t, env.repository.Parks.Delete(env.ctx, park.ID))

	_, err := env.repository.Reviews.GetByID(env.ctx, review.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewsRepository_ConcurrentCreates(t *testing.T) {
	env := newTestEnv(t)
	park := mustCreatePark(t, env, "Busy Park", nil)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			_, err := env.repository.Reviews.Create(env.ctx, ReviewCreateParams{ParkID: park.ID, Author: "A", Rating: rating})
			errs <- err
		}(i%5 + 1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	items, err := env.repository.Parks.ListWithStats(env.ctx, ParkFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(writers), items[0].ReviewsCount)
}
