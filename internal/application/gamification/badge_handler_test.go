package gamification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/application/uow/uowtest"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/domain/gamification"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var handledAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newUser(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewUser("saver", "saver@example.com", "Passw0rd1", "Sam", "Saver")
	require.NoError(t, err)
	u.PullDomainEvents()
	return u
}

func confirmedEvent(userID uuid.UUID) *contribution.ContributionConfirmedEvent {
	return &contribution.ContributionConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(contribution.EventTypeContributionConfirmed, contribution.AggregateTypeContribution, uuid.New(), userID),
		UserID:          userID,
		Amount:          decimal.NewFromInt(50),
	}
}

func newHandler() (*BadgeHandler, *uowtest.Scope) {
	scope := uowtest.NewScope()
	h := NewBadgeHandler(scope, zap.NewNop())
	h.now = func() time.Time { return handledAt }
	return h, scope
}

func TestBadgeHandler_EventTypes(t *testing.T) {
	h, _ := newHandler()
	assert.Equal(t, []string{contribution.EventTypeContributionConfirmed}, h.EventTypes())
}

func TestBadgeHandler_AwardsNewlyEarnedBadges(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)
	user.TotalSaved = decimal.NewFromInt(1200)
	user.CurrentStreak = 7

	h, scope := newHandler()
	scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)
	scope.Users.On("Save", ctx, user).Return(nil)

	require.NoError(t, h.Handle(ctx, confirmedEvent(user.ID)))

	assert.True(t, user.Badges.Has("first_contribution"))
	assert.True(t, user.Badges.Has("streak_7"))
	assert.True(t, user.Badges.Has("total_1000"))
	assert.False(t, user.Badges.Has("streak_30"))
	assert.False(t, user.Badges.Has("level_5"))
	for _, b := range user.Badges {
		assert.Equal(t, handledAt, b.EarnedAt)
	}
	assert.Equal(t, []string{
		identity.EventTypeBadgeAwarded,
		identity.EventTypeBadgeAwarded,
		identity.EventTypeBadgeAwarded,
	}, scope.EventTypes())
	scope.AssertExpectations(t)
}

func TestBadgeHandler_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)
	user.TotalSaved = decimal.NewFromInt(10)
	user.AwardBadge(gamification.Badge{Name: "first_contribution", EarnedAt: handledAt.Add(-time.Hour)})
	user.PullDomainEvents()

	h, scope := newHandler()
	scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)

	require.NoError(t, h.Handle(ctx, confirmedEvent(user.ID)))
	require.NoError(t, h.Handle(ctx, confirmedEvent(user.ID)))

	assert.Len(t, user.Badges, 1)
	assert.Equal(t, handledAt.Add(-time.Hour), user.Badges[0].EarnedAt)
	assert.Empty(t, scope.Events())
	scope.Users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBadgeHandler_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)
	user.TotalSaved = decimal.NewFromInt(10)

	h, scope := newHandler()
	scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)
	scope.Users.On("Save", ctx, user).Return(shared.ErrConcurrencyConflict)

	err := h.Handle(ctx, confirmedEvent(user.ID))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	assert.Empty(t, scope.Events())
}

func TestBadgeHandler_UnknownUser(t *testing.T) {
	ctx := context.Background()
	h, scope := newHandler()
	id := uuid.New()
	scope.Users.On("FindByIDForUpdate", ctx, id).Return(nil, identity.ErrUserNotFound)

	err := h.Handle(ctx, confirmedEvent(id))
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestBadgeHandler_RejectsOtherEvents(t *testing.T) {
	h, _ := newHandler()
	other := &group.GroupCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(group.EventTypeGroupCreated, group.AggregateTypeGroup, uuid.New(), uuid.New()),
	}
	assert.Error(t, h.Handle(context.Background(), other))
}
