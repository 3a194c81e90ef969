//go:build integration

package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	groupapp "github.com/savings/backend/internal/application/group"
	"github.com/savings/backend/internal/application/ledger"
	"github.com/savings/backend/internal/application/uow"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/infrastructure/event"
	"github.com/savings/backend/internal/infrastructure/migration"
	"github.com/savings/backend/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgres starts a disposable PostgreSQL container and applies the
// embedded migrations to it
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("savings_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { sqlDB.Close() })

	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_ConcurrentContributionsSerializeOnGroupRow(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	log := zap.NewNop()

	scope := NewGormTransactionScope(db, event.NewOutboxPublisher(event.NewSavingsSerializer()))
	users := NewGormUserRepository(db)
	groups := NewGormGroupRepository(db)
	groupService := groupapp.NewService(scope, groups, users, log)
	ledgerService := ledger.NewService(scope, NewGormContributionRepository(db), groups, ledger.DefaultConfig(), log)

	const savers = 8
	founder := newTestUser(t, "founder")
	require.NoError(t, users.Create(ctx, founder))
	created, err := groupService.Create(ctx, founder.ID, groupapp.CreateInput{
		Name:         "Trip fund",
		Privacy:      group.PrivacyPublic,
		MaxMembers:   savers + 1,
		TotalGoal:    decimal.NewFromInt(10000),
		GoalDeadline: time.Now().AddDate(0, 6, 0),
	})
	require.NoError(t, err)

	memberIDs := make([]uuid.UUID, 0, savers)
	for i := 0; i < savers; i++ {
		u := newTestUser(t, "saver"+uuid.NewString()[:8])
		require.NoError(t, users.Create(ctx, u))
		_, err := groupService.Join(ctx, created.ID, u.ID)
		require.NoError(t, err)
		memberIDs = append(memberIDs, u.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, savers)
	for _, id := range memberIDs {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := ledgerService.RecordContribution(ctx, ledger.RecordInput{
				UserID:  userID,
				GroupID: created.ID,
				Amount:  decimal.NewFromInt(125),
			})
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	g, err := groups.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(125*savers).Equal(g.CurrentAmount), "current amount %s", g.CurrentAmount)
	assert.Equal(t, int64(savers), g.TotalContributions)
	assert.True(t, decimal.NewFromInt(10).Equal(g.ProgressPercentage), "progress %s", g.ProgressPercentage)

	for _, id := range memberIDs {
		m, ok := g.Member(id)
		require.True(t, ok)
		assert.True(t, decimal.NewFromInt(125).Equal(m.TotalContributed))

		u, err := users.FindByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(125).Equal(u.TotalSaved))
	}
}

func TestPostgres_RollbackLeavesNoOutboxRows(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	scope := NewGormTransactionScope(db, event.NewOutboxPublisher(event.NewSavingsSerializer()))

	founder := newTestUser(t, "founder")
	require.NoError(t, NewGormUserRepository(db).Create(ctx, founder))
	g := newTestGroup(t, "Rolled back", founder.ID)

	boom := errors.New("boom")
	err := scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.Groups().Create(ctx, g); err != nil {
			return err
		}
		if err := uow.RecordEvents(ctx, repos, g); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, db.Model(&shared.OutboxEntry{}).Count(&n).Error)
	assert.Zero(t, n)
	_, err = NewGormGroupRepository(db).FindByID(ctx, g.ID)
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}
