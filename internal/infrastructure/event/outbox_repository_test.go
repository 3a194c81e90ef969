package event

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&shared.OutboxEntry{}))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func newEntryAt(t *testing.T, createdAt time.Time) *shared.OutboxEntry {
	t.Helper()
	e := shared.NewOutboxEntry(newTestEvent("A"), []byte(`{"data":"x"}`))
	e.CreatedAt = createdAt
	e.UpdatedAt = createdAt
	return e
}

func TestGormOutboxRepository_FindPendingOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(setupSQLiteDB(t))

	newer := newEntryAt(t, testNow)
	older := newEntryAt(t, testNow.Add(-time.Minute))
	require.NoError(t, repo.Save(ctx, newer, older))
	require.NoError(t, repo.Save(ctx))

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID)
	assert.Equal(t, newer.ID, pending[1].ID)
	assert.Equal(t, []byte(`{"data":"x"}`), pending[0].Payload)

	limited, err := repo.FindPending(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGormOutboxRepository_MarkProcessingClaimsOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(setupSQLiteDB(t))

	a := newEntryAt(t, testNow)
	b := newEntryAt(t, testNow)
	require.NoError(t, repo.Save(ctx, a, b))

	claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Len(t, claimed, 2)
	for _, e := range claimed {
		assert.Equal(t, shared.OutboxStatusProcessing, e.Status)
	}

	again, err := repo.MarkProcessing(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Empty(t, again)

	none, err := repo.MarkProcessing(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGormOutboxRepository_UpdateAndFindDead(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(setupSQLiteDB(t))

	entry := newEntryAt(t, testNow)
	entry.MaxRetries = 1
	require.NoError(t, repo.Save(ctx, entry, newEntryAt(t, testNow)))

	entry.MarkFailed("broker down")
	require.NoError(t, repo.Update(ctx, entry))

	loaded, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.OutboxStatusDead, loaded.Status)
	assert.Equal(t, "broker down", loaded.LastError)

	dead, total, err := repo.FindDead(ctx, shared.DeadLetterFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, dead, 1)
	assert.Equal(t, entry.ID, dead[0].ID)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusDead])
	assert.Equal(t, int64(1), counts[shared.OutboxStatusPending])
}

func killEntry(t *testing.T, repo *GormOutboxRepository, e *shared.OutboxEntry) {
	t.Helper()
	e.MaxRetries = 1
	e.MarkFailed("consumer rejected")
	require.NoError(t, repo.Update(context.Background(), e))
}

func TestGormOutboxRepository_FindDeadFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(setupSQLiteDB(t))

	recorded := shared.NewOutboxEntry(newTestEvent("ContributionRecorded"), []byte(`{}`))
	credited := shared.NewOutboxEntry(newTestEvent("UserCredited"), []byte(`{}`))
	credited.AggregateType = "User"
	alive := shared.NewOutboxEntry(newTestEvent("ContributionRecorded"), []byte(`{}`))
	require.NoError(t, repo.Save(ctx, recorded, credited, alive))
	killEntry(t, repo, recorded)
	killEntry(t, repo, credited)

	byType, total, err := repo.FindDead(ctx, shared.DeadLetterFilter{EventType: "ContributionRecorded"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byType, 1)
	assert.Equal(t, recorded.ID, byType[0].ID)

	byAggregate, total, err := repo.FindDead(ctx, shared.DeadLetterFilter{AggregateType: "User"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byAggregate, 1)
	assert.Equal(t, credited.ID, byAggregate[0].ID)

	page2, total, err := repo.FindDead(ctx, shared.DeadLetterFilter{Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, page2, 1)
}

func TestGormOutboxRepository_FindByAggregate(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(setupSQLiteDB(t))

	groupID := uuid.New()
	var trail []*shared.OutboxEntry
	for i := 0; i < 3; i++ {
		e := newEntryAt(t, testNow.Add(time.Duration(i)*time.Minute))
		e.AggregateID = groupID
		trail = append(trail, e)
	}
	require.NoError(t, repo.Save(ctx, trail[2], trail[0], trail[1], newEntryAt(t, testNow)))

	all, err := repo.FindByAggregate(ctx, groupID, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, e := range all {
		assert.Equal(t, trail[i].ID, e.ID)
	}

	latest, err := repo.FindByAggregate(ctx, groupID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, trail[1].ID, latest[0].ID)
	assert.Equal(t, trail[2].ID, latest[1].ID)
}

func TestGormOutboxRepository_OldestPending(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(setupSQLiteDB(t))

	none, err := repo.OldestPending(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	sent := newEntryAt(t, testNow.Add(-time.Hour))
	sent.MarkSent()
	waiting := newEntryAt(t, testNow.Add(-10*time.Minute))
	require.NoError(t, repo.Save(ctx, sent, waiting, newEntryAt(t, testNow)))

	oldest, err := repo.OldestPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, oldest)
	assert.True(t, oldest.Equal(waiting.CreatedAt), "got %s", oldest)
}

func TestGormOutboxRepository_FindByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_entries" WHERE id = $1`)).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrOutboxEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_CountByStatusQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, count(*) as count FROM "outbox_entries" GROUP BY`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PENDING", 4).
			AddRow("DEAD", 1))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[shared.OutboxStatus]int64{
		shared.OutboxStatusPending: 4,
		shared.OutboxStatusDead:    1,
	}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
