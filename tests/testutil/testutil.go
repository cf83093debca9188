// Package testutil holds the fixtures shared by repository, service and
// handler tests: an in-memory database with the schema, stable identifiers,
// signed-in sessions and helpers for driving gin handlers.
package testutil

import (
	"fmt"
	"testing"

	"github.com/bizledger/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fixtureNamespace scopes FixedID so fixture ids never collide with random ones
var fixtureNamespace = uuid.MustParse("0f3c9a52-6d1e-4b8a-9c27-5e4d2b1a7f60")

// NewSQLiteDB opens a private in-memory sqlite database with the full schema
// migrated. The database is closed when the test ends.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	// one connection, so every query sees the same in-memory database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, persistence.AutoMigrate(db), "Failed to migrate schema")
	return db
}

// FixedID derives a stable id from name, for fixtures that must match
// across a test
func FixedID(name string) uuid.UUID {
	return uuid.NewSHA1(fixtureNamespace, []byte(name))
}

// TenantID is the tenant handler tests act as
func TenantID() uuid.UUID {
	return FixedID("tenant")
}
