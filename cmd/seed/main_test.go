package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/parks-catalog/internal/domain"
	"github.com/Clark-Hu/parks-catalog/internal/service"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) CreatePark(ctx context.Context, input service.ParkInput) (domain.Park, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.Park), args.Error(1)
}

func (m *mockCatalog) CreateReview(ctx context.Context, parkID int64, input service.ReviewInput) (domain.Review, error) {
	args := m.Called(ctx, parkID, input)
	return args.Get(0).(domain.Review), args.Error(1)
}

func TestParseSeed_BundledData(t *testing.T) {
	entries, err := parseSeed(defaultData)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Central Park", entries[0].Name)
	require.NotNil(t, entries[0].City)
	assert.Equal(t, "New York", *entries[0].City)
	assert.Len(t, entries[0].Reviews, 2)
	assert.Nil(t, entries[1].Reviews[0].Author)
}

func TestParseSeed_Malformed(t *testing.T) {
	_, err := parseSeed([]byte(`{"name":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse seed data")
}

func TestLoad_CreatesParksThenReviews(t *testing.T) {
	ctx := context.Background()
	svc := new(mockCatalog)
	entries := []seedPark{
		{Name: "Central Park", Reviews: []seedReview{{Rating: 5}, {Rating: 3}}},
		{Name: "Campus Green"},
	}

	svc.On("CreatePark", ctx, service.ParkInput{Name: "Central Park"}).Return(domain.Park{ID: 7, Name: "Central Park"}, nil).Once()
	svc.On("CreatePark", ctx, service.ParkInput{Name: "Campus Green"}).Return(domain.Park{ID: 8, Name: "Campus Green"}, nil).Once()
	svc.On("CreateReview", ctx, int64(7), mock.MatchedBy(func(in service.ReviewInput) bool {
		return in.Rating != nil && (*in.Rating == 5 || *in.Rating == 3)
	})).Return(domain.Review{ParkID: 7}, nil).Twice()

	parks, reviews, err := load(ctx, svc, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, parks)
	assert.Equal(t, 2, reviews)
	svc.AssertExpectations(t)
}

func TestLoad_StopsOnFirstError(t *testing.T) {
	ctx := context.Background()
	svc := new(mockCatalog)
	entries := []seedPark{{Name: "Central Park", Reviews: []seedReview{{Rating: 9}}}, {Name: "Never"}}

	svc.On("CreatePark", ctx, service.ParkInput{Name: "Central Park"}).Return(domain.Park{ID: 1}, nil).Once()
	svc.On("CreateReview", ctx, int64(1), mock.Anything).
		Return(domain.Review{}, errors.New("validation failed: field 'rating' must be at most 5")).Once()

	parks, reviews, err := load(ctx, svc, entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `create review for "Central Park"`)
	assert.Equal(t, 1, parks)
	assert.Equal(t, 0, reviews)
	svc.AssertNotCalled(t, "CreatePark", ctx, service.ParkInput{Name: "Never"})
}
