// Package gamification awards achievement badges in reaction to ledger events.
package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/savings/backend/internal/application/uow"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/domain/gamification"
	"github.com/savings/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BadgeHandler evaluates the achievement catalog for the contributor of every
// confirmed contribution and awards the badges they have newly earned
type BadgeHandler struct {
	scope  uow.TransactionScope
	logger *zap.Logger
	now    func() time.Time
}

// NewBadgeHandler creates a new badge handler
func NewBadgeHandler(scope uow.TransactionScope, logger *zap.Logger) *BadgeHandler {
	return &BadgeHandler{
		scope:  scope,
		logger: logger,
		now:    time.Now,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *BadgeHandler) EventTypes() []string {
	return []string{contribution.EventTypeContributionConfirmed}
}

// Handle processes a ContributionConfirmedEvent
func (h *BadgeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	confirmed, ok := event.(*contribution.ContributionConfirmedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", contribution.EventTypeContributionConfirmed),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			contribution.EventTypeContributionConfirmed, event.EventType())
	}

	var awarded []string
	err := h.scope.Execute(ctx, func(repos uow.Repositories) error {
		user, err := repos.Users().FindByIDForUpdate(ctx, confirmed.UserID)
		if err != nil {
			return err
		}

		earnedAt := h.now()
		for _, a := range gamification.Evaluate(user.Profile(), user.Badges) {
			badge := a.Badge()
			badge.EarnedAt = earnedAt
			if user.AwardBadge(badge) {
				awarded = append(awarded, badge.Name)
			}
		}
		if len(awarded) == 0 {
			return nil
		}

		if err := repos.Users().Save(ctx, user); err != nil {
			return err
		}
		return uow.RecordEvents(ctx, repos, user)
	})
	if err != nil {
		return fmt.Errorf("award badges for user %s: %w", confirmed.UserID, err)
	}

	if len(awarded) > 0 {
		h.logger.Info("badges awarded",
			zap.String("user_id", confirmed.UserID.String()),
			zap.String("contribution_id", confirmed.AggregateID().String()),
			zap.Strings("badges", awarded),
		)
	}
	return nil
}

var _ shared.EventHandler = (*BadgeHandler)(nil)
