package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/parks-catalog/db"
	"github.com/Clark-Hu/parks-catalog/internal/logging"
	"github.com/Clark-Hu/parks-catalog/internal/store"
	pgtest "github.com/Clark-Hu/parks-catalog/internal/testutil"
)

func TestStore_ConnectMigrateAndExport(t *testing.T) {
	pg := pgtest.StartPostgres(t, "parks_store_test")
	ctx := context.Background()

	st, err := store.New(ctx, pg.DSN, store.Options{
		MaxConns:               4,
		MinConns:               1,
		ConnTimeout:            5 * time.Second,
		StatementCacheCapacity: 16,
		Logger:                 logging.Discard(),
	})
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.HealthCheck(ctx))

	// Already applied by the harness; a second run must be a no-op.
	require.NoError(t, st.Migrate(ctx, db.Migrations()))

	var applied int
	require.NoError(t, st.Pool().QueryRow(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 2, applied)

	reg := prometheus.NewRegistry()
	require.NoError(t, st.RegisterMetrics(reg, "parks-api"))
	count, err := testutil.GatherAndCount(reg, "db_pool_max_connections")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NotNil(t, st.Stats())
}

func TestStore_NewRejectsBadURL(t *testing.T) {
	_, err := store.New(context.Background(), "://not-a-url", store.Options{Logger: logging.Discard()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse db url")
}
