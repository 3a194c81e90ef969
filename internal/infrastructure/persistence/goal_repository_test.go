package persistence

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/goal"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGoal(t *testing.T, title string, ownerID uuid.UUID, target int64) *goal.Goal {
	t.Helper()
	g, err := goal.NewGoal(goal.Details{
		Title:        title,
		TargetAmount: decimal.NewFromInt(target),
		TargetDate:   testNow.AddDate(1, 0, 0),
		Tags:         []string{"travel", "summer"},
	}, ownerID, nil, testNow)
	require.NoError(t, err)
	g.PullDomainEvents()
	return g
}

func TestGormGoalRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormGoalRepository(setupTestDB(t))

	g := newTestGoal(t, "Japan trip", uuid.New(), 3000)
	_, err := g.AddMilestone("Flights", decimal.NewFromInt(1000), "window seat")
	require.NoError(t, err)
	_, err = g.AddMilestone("Hotel", decimal.NewFromInt(2000), "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g))

	loaded, err := repo.FindByID(ctx, g.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(g, loaded, aggregateOpts); diff != "" {
		t.Errorf("loaded goal mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, loaded.Milestones, 2)
	assert.Equal(t, "Flights", loaded.Milestones[0].Name)
	assert.Equal(t, "Hotel", loaded.Milestones[1].Name)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, goal.ErrGoalNotFound)
}

func TestGormGoalRepository_SaveAchievesMilestones(t *testing.T) {
	ctx := context.Background()
	repo := NewGormGoalRepository(setupTestDB(t))

	owner := uuid.New()
	g := newTestGoal(t, "Laptop", owner, 1000)
	_, err := g.AddMilestone("Half way", decimal.NewFromInt(500), "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g))

	loaded, err := repo.FindByID(ctx, g.ID)
	require.NoError(t, err)
	_, err = loaded.AddContribution(decimal.NewFromInt(600), owner, testNow)
	require.NoError(t, err)
	loaded.Refresh(owner, testNow)
	require.NoError(t, repo.Save(ctx, loaded))
	assert.Equal(t, 2, loaded.Version)

	reloaded, err := repo.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.CurrentAmount.Equal(decimal.NewFromInt(600)))
	assert.True(t, reloaded.ProgressPercentage.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, int64(1), reloaded.TotalContributions)
	require.Len(t, reloaded.AchievedMilestones(), 1)
	assert.NotNil(t, reloaded.Milestones[0].AchievedAt)

	stale, err := repo.FindByID(ctx, g.ID)
	require.NoError(t, err)
	require.NoError(t, reloaded.Pause())
	require.NoError(t, repo.Save(ctx, reloaded))
	require.NoError(t, stale.Complete(owner, testNow))
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)
}

func TestGormGoalRepository_FindAllFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewGormGoalRepository(setupTestDB(t))

	alice, bob := uuid.New(), uuid.New()
	trip := newTestGoal(t, "Trip", alice, 1000)
	car := newTestGoal(t, "Car", alice, 5000)
	car.IsPublic = true
	car.Priority = goal.PriorityHigh
	bike := newTestGoal(t, "Bike", bob, 800)
	require.NoError(t, bike.Pause())
	for _, g := range []*goal.Goal{trip, car, bike} {
		require.NoError(t, repo.Create(ctx, g))
	}

	mine, total, err := repo.FindAll(ctx, goal.Filter{Filter: shared.DefaultFilter(), OwnerID: &alice})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	public, total, err := repo.FindAll(ctx, goal.Filter{Filter: shared.DefaultFilter(), Public: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, car.ID, public[0].ID)

	paused := goal.StatusPaused
	found, _, err := repo.FindAll(ctx, goal.Filter{Filter: shared.DefaultFilter(), Status: &paused})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, bike.ID, found[0].ID)

	byTarget := shared.Filter{Page: 1, PageSize: 2, OrderBy: "target_amount", OrderDir: "desc"}
	top, total, err := repo.FindAll(ctx, goal.Filter{Filter: byTarget})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, top, 2)
	assert.Equal(t, car.ID, top[0].ID)
	assert.Equal(t, trip.ID, top[1].ID)
}

func TestGormGoalRepository_Overview(t *testing.T) {
	ctx := context.Background()
	repo := NewGormGoalRepository(setupTestDB(t))

	owner := uuid.New()
	empty, err := repo.Overview(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalGoals)
	assert.True(t, empty.AverageProgress.IsZero())

	half := newTestGoal(t, "Half", owner, 1000)
	_, err = half.AddContribution(decimal.NewFromInt(500), owner, testNow)
	require.NoError(t, err)
	half.Refresh(owner, testNow)
	done := newTestGoal(t, "Done", owner, 200)
	_, err = done.AddContribution(decimal.NewFromInt(200), owner, testNow)
	require.NoError(t, err)
	done.Refresh(owner, testNow)
	require.Equal(t, goal.StatusCompleted, done.Status)
	other := newTestGoal(t, "Someone else", uuid.New(), 999)
	for _, g := range []*goal.Goal{half, done, other} {
		require.NoError(t, repo.Create(ctx, g))
	}

	o, err := repo.Overview(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), o.TotalGoals)
	assert.Equal(t, int64(1), o.ActiveGoals)
	assert.Equal(t, int64(1), o.CompletedGoals)
	assert.True(t, o.TotalTargetAmount.Equal(decimal.NewFromInt(1200)), o.TotalTargetAmount.String())
	assert.True(t, o.TotalCurrentAmount.Equal(decimal.NewFromInt(700)), o.TotalCurrentAmount.String())
	assert.True(t, o.AverageProgress.Equal(decimal.NewFromInt(75)), o.AverageProgress.String())
	assert.Equal(t, int64(2), o.ByType[goal.TypePersonal])
}

func TestGormGoalRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormGoalRepository(db)

	g := newTestGoal(t, "Delete me", uuid.New(), 100)
	_, err := g.AddMilestone("Start", decimal.NewFromInt(10), "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g))

	require.NoError(t, repo.Delete(ctx, g.ID))
	_, err = repo.FindByID(ctx, g.ID)
	assert.ErrorIs(t, err, goal.ErrGoalNotFound)

	var milestones int64
	require.NoError(t, db.Table("goal_milestones").Count(&milestones).Error)
	assert.Zero(t, milestones)

	assert.ErrorIs(t, repo.Delete(ctx, g.ID), goal.ErrGoalNotFound)
}
