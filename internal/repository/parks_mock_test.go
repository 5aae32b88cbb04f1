package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithDB(mock), mock
}

var parkRowColumns = []string{"id", "name", "city", "description", "image_url", "created_at"}

func TestParksMock_GetByIDNoRows(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT .+ FROM parks WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Parks.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParksMock_CreateReturnsRow(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()
	city := "Austin"

	mock.ExpectQuery(`INSERT INTO parks`).
		WithArgs("Zilker", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(parkRowColumns).
			AddRow(int64(1), "Zilker", &city, (*string)(nil), (*string)(nil), now))

	park, err := repo.Parks.Create(context.Background(), ParkParams{Name: "Zilker", City: &city})
	require.NoError(t, err)
	assert.Equal(t, int64(1), park.ID)
	require.NotNil(t, park.City)
	assert.Equal(t, "Austin", *park.City)
	assert.Nil(t, park.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParksMock_UpdateMissingIsNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`UPDATE parks`).
		WithArgs(int64(3), "X", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Parks.Update(context.Background(), 3, ParkParams{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParksMock_DeleteRowsAffected(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`DELETE FROM parks WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM parks WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Parks.Delete(context.Background(), 1))
	assert.ErrorIs(t, repo.Parks.Delete(context.Background(), 2), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParksMock_ListWithStatsBuildsFilter(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()
	q := "50%_off"
	city := "Boston"

	mock.ExpectQuery(`WHERE \(p\.name ILIKE \$1 OR p\.description ILIKE \$1\) AND p\.city ILIKE \$2`).
		WithArgs(`%50\%\_off%`, `%Boston%`).
		WillReturnRows(pgxmock.NewRows(append(parkRowColumns, "avg_rating", "reviews_count")).
			AddRow(int64(9), "Common", &city, (*string)(nil), (*string)(nil), now, 4.5, int64(2)))

	items, err := repo.Parks.ListWithStats(context.Background(), ParkFilter{Query: &q, City: &city})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4.5, items[0].AvgRating)
	assert.Equal(t, int64(2), items[0].ReviewsCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParksMock_ListWithStatsQueryError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM parks p`).WillReturnError(errors.New("boom"))

	_, err := repo.Parks.ListWithStats(context.Background(), ParkFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list parks")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%park%", likePattern("park"))
	assert.Equal(t, `%a\%b\_c\\d%`, likePattern(`a%b_c\d`))
}
