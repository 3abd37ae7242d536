// Package integration holds tests that run against real PostgreSQL and
// OpenSearch instances.  They are skipped unless PATLYTICS_INTEGRATION_TEST
// is set, so the default `go test ./...` run stays hermetic.
package integration

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/infrastructure/database/postgres"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patlytics/internal/infrastructure/search/opensearch"
)

const (
	// EnvIntegrationEnabled gates the whole package.
	EnvIntegrationEnabled = "PATLYTICS_INTEGRATION_TEST"

	// EnvPostgresHost and friends override the local-dev defaults.
	EnvPostgresHost   = "PATLYTICS_TEST_POSTGRES_HOST"
	EnvPostgresPort   = "PATLYTICS_TEST_POSTGRES_PORT"
	EnvOpenSearchAddr = "PATLYTICS_TEST_OPENSEARCH_ADDR"

	testTimeout = 60 * time.Second
)

func skipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) == "" {
		t.Skipf("set %s=1 to run integration tests", EnvIntegrationEnabled)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDatabaseConfig() config.DatabaseConfig {
	port, _ := strconv.Atoi(envOr(EnvPostgresPort, "5432"))
	return config.DatabaseConfig{
		Host:           envOr(EnvPostgresHost, "localhost"),
		Port:           port,
		User:           "patlytics",
		Password:       "patlytics",
		Database:       "patlytics_test",
		SSLMode:        "disable",
		MaxConns:       4,
		ConnectTimeout: 5 * time.Second,
		MigrationsPath: "file://../../migrations",
	}
}

func testOpenSearchConfig() config.OpenSearchConfig {
	return config.OpenSearchConfig{
		Addresses:      []string{envOr(EnvOpenSearchAddr, "http://localhost:9200")},
		CompanyIndex:   "it-company-products",
		PatentIndex:    "it-patents",
		RequestTimeout: 10 * time.Second,
	}
}

// connectPostgres migrates the test database and returns a pool.  The test
// is skipped when PostgreSQL is unreachable.
func connectPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	cfg := testDatabaseConfig()
	logger := logging.NewNop()

	if err := postgres.Migrate(cfg, logger); err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	pool, err := postgres.Connect(ctx, cfg, logger)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// connectOpenSearch returns a client against the local test cluster.  The
// test is skipped when the cluster is unreachable.
func connectOpenSearch(t *testing.T, ctx context.Context) *opensearch.Client {
	t.Helper()
	client, err := opensearch.NewClient(ctx, testOpenSearchConfig(), logging.NewNop())
	if err != nil {
		t.Skipf("opensearch not available: %v", err)
	}
	return client
}

// uniqueEmail returns an email address that will not collide across runs.
func uniqueEmail(prefix string) string {
	return strings.ToLower(prefix) + "-" +
		strconv.FormatInt(time.Now().UnixNano(), 36) + "@example.com"
}
