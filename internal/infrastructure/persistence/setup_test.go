package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// aggregateOpts compare aggregates loaded back from the database
var aggregateOpts = cmp.Options{
	cmpopts.IgnoreUnexported(shared.BaseAggregateRoot{}),
	cmpopts.EquateEmpty(),
}

// setupTestDB opens a migrated in-memory SQLite database. SQLite ignores
// row locks, so FOR UPDATE paths are covered by the sqlmock tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

// setupMockDB opens a postgres-dialect gorm DB over sqlmock
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock, mockDB
}

func newTestGroup(t *testing.T, name string, founderID uuid.UUID) *group.Group {
	t.Helper()
	g, err := group.NewGroup(group.Details{
		Name:         name,
		TotalGoal:    decimal.NewFromInt(1000),
		GoalDeadline: testNow.AddDate(0, 6, 0),
		MaxMembers:   5,
	}, founderID, testNow)
	require.NoError(t, err)
	g.PullDomainEvents()
	return g
}
