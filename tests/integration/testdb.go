//go:build integration

// Package integration runs the repositories, services and HTTP stack against
// a real PostgreSQL started with testcontainers. The schema comes from the
// embedded SQL migrations, so these tests also prove the migrations match
// the gorm models.
//
// Run with: go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bizledger/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const postgresImage = "postgres:16-alpine"

// shared is the container every test in the package uses. Tests isolate
// themselves by registering their own tenants rather than truncating.
var shared struct {
	once      sync.Once
	container *tcpostgres.PostgresContainer
	dsn       string
	err       error
}

// TestDB is a migrated database handle for one test
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
}

// NewTestDB connects to the shared container, starting and migrating it on
// first use. The test is skipped when docker is unavailable.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	shared.once.Do(func() {
		shared.container, shared.dsn, shared.err = startPostgres(context.Background(), "bizledger_test")
		if shared.err == nil {
			shared.err = migrateUp(shared.dsn)
		}
	})
	if shared.err != nil {
		t.Skipf("PostgreSQL container unavailable: %v", shared.err)
	}

	return connect(t, shared.dsn)
}

// NewEmptyDatabase creates a fresh, unmigrated database inside the shared
// container for tests that drive migrations themselves
func NewEmptyDatabase(t *testing.T, name string) string {
	t.Helper()
	admin := NewTestDB(t)

	require.NoError(t, admin.DB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", name)).Error)
	require.NoError(t, admin.DB.Exec(fmt.Sprintf("CREATE DATABASE %s", name)).Error)

	dsn, err := shared.container.ConnectionString(context.Background(), "sslmode=disable")
	require.NoError(t, err)
	return replaceDatabase(t, dsn, name)
}

// CleanupSharedContainer terminates the shared container. TestMain calls it
// after the package has run.
func CleanupSharedContainer() {
	if shared.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = shared.container.Terminate(ctx)
}

func startPostgres(ctx context.Context, database string) (*tcpostgres.PostgresContainer, string, error) {
	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase(database),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("start container: %w", err)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", fmt.Errorf("connection string: %w", err)
	}
	return container, dsn, nil
}

func migrateUp(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := migration.New(db, migration.Source(""), zap.NewNop())
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}

func connect(t *testing.T, dsn string) *TestDB {
	t.Helper()

	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &TestDB{DB: db, SqlDB: sqlDB, DSN: dsn}
}

func replaceDatabase(t *testing.T, dsn, name string) string {
	t.Helper()
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	u.Path = "/" + name
	return u.String()
}
