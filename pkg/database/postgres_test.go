package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// integrationConfig returns the pool settings for tests running against a
// real database, read from TEST_POSTGRES_* variables
func integrationConfig(t *testing.T) *PostgresConfig {
	t.Helper()

	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	cfg := DefaultPostgresConfig()
	if host := os.Getenv("TEST_POSTGRES_HOST"); host != "" {
		cfg.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("TEST_POSTGRES_PORT")); err == nil {
		cfg.Port = port
	}
	if user := os.Getenv("TEST_POSTGRES_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("TEST_POSTGRES_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("TEST_POSTGRES_DATABASE"); name != "" {
		cfg.Database = name
	}
	return cfg
}

func TestPostgresConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  PostgresConfig
		want string
	}{
		{
			name: "defaults",
			cfg:  *DefaultPostgresConfig(),
			want: "host=localhost port=5432 user=postgres password=postgres dbname=venue sslmode=disable",
		},
		{
			name: "managed instance",
			cfg: PostgresConfig{
				Host:     "seats.db.internal",
				Port:     6432,
				User:     "purchase",
				Password: "s3cret",
				Database: "seats",
				SSLMode:  "require",
			},
			want: "host=seats.db.internal port=6432 user=purchase password=s3cret dbname=seats sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestNewPostgres_RetriesThenFails(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.MinConns = 0
	cfg.MaxRetries = 1
	cfg.RetryInterval = 10 * time.Millisecond
	cfg.ConnectTimeout = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := NewPostgres(ctx, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestNewPostgres_StopsRetryingWhenContextDone(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.MinConns = 0
	cfg.MaxRetries = 5
	cfg.RetryInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := NewPostgres(ctx, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPostgresDB_HealthCheck_Integration(t *testing.T) {
	cfg := integrationConfig(t)
	ctx := context.Background()

	db, err := NewPostgres(ctx, cfg)
	require.NoError(t, err)

	assert.NoError(t, db.HealthCheck(ctx))

	db.Close()
	assert.Error(t, db.HealthCheck(ctx), "health check must fail once the pool is closed")
}

func TestPostgresDB_ConditionalUpdate_Integration(t *testing.T) {
	cfg := integrationConfig(t)
	ctx := context.Background()

	db, err := NewPostgres(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecResult(ctx, `CREATE TABLE IF NOT EXISTS seat_counter (venue_id TEXT PRIMARY KEY, capacity INT, reserved INT)`)
	require.NoError(t, err)
	defer db.ExecResult(ctx, `DROP TABLE IF EXISTS seat_counter`)
	_, err = db.ExecResult(ctx, `DELETE FROM seat_counter`)
	require.NoError(t, err)
	_, err = db.ExecResult(ctx, `INSERT INTO seat_counter VALUES ($1, $2, 0)`, "arena", 3)
	require.NoError(t, err)

	const take = `UPDATE seat_counter SET reserved = reserved + $2 WHERE venue_id = $1 AND capacity - reserved >= $2`

	tag, err := db.ExecResult(ctx, take, "arena", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tag.RowsAffected())

	tag, err = db.ExecResult(ctx, take, "arena", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tag.RowsAffected())

	var reserved int
	require.NoError(t, db.QueryRow(ctx, `SELECT reserved FROM seat_counter WHERE venue_id = $1`, "arena").Scan(&reserved))
	assert.Equal(t, 2, reserved)
}
