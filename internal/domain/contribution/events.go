package contribution

import (
	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Contribution domain event types
const (
	EventTypeContributionRecorded  = "ContributionRecorded"
	EventTypeContributionConfirmed = "ContributionConfirmed"
	EventTypeContributionCancelled = "ContributionCancelled"
	EventTypeContributionRefunded  = "ContributionRefunded"
	EventTypeContributionAdjusted  = "ContributionAdjusted"
)

// ContributionRecordedEvent is published when a contribution is created
type ContributionRecordedEvent struct {
	shared.BaseDomainEvent
	UserID  uuid.UUID       `json:"user_id"`
	GroupID uuid.UUID       `json:"group_id"`
	Amount  decimal.Decimal `json:"amount"`
	Status  Status          `json:"status"`
	Type    Type            `json:"type"`
}

// NewContributionRecordedEvent creates a new ContributionRecordedEvent
func NewContributionRecordedEvent(c *Contribution) *ContributionRecordedEvent {
	return &ContributionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContributionRecorded, AggregateTypeContribution, c.ID, c.UserID),
		UserID:          c.UserID,
		GroupID:         c.GroupID,
		Amount:          c.Amount,
		Status:          c.Status,
		Type:            c.Type,
	}
}

// ContributionConfirmedEvent is published once a contribution has been credited
// to the group and the contributor
type ContributionConfirmedEvent struct {
	shared.BaseDomainEvent
	UserID       uuid.UUID       `json:"user_id"`
	GroupID      uuid.UUID       `json:"group_id"`
	Amount       decimal.Decimal `json:"amount"`
	PointsEarned int64           `json:"points_earned"`
	StreakCount  int             `json:"streak_count"`
}

// NewContributionConfirmedEvent creates a new ContributionConfirmedEvent
func NewContributionConfirmedEvent(c *Contribution) *ContributionConfirmedEvent {
	return &ContributionConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContributionConfirmed, AggregateTypeContribution, c.ID, c.UserID),
		UserID:          c.UserID,
		GroupID:         c.GroupID,
		Amount:          c.Amount,
		PointsEarned:    c.PointsEarned,
		StreakCount:     c.StreakCount,
	}
}

// ContributionCancelledEvent is published when a contribution is cancelled
type ContributionCancelledEvent struct {
	shared.BaseDomainEvent
	GroupID  uuid.UUID       `json:"group_id"`
	Amount   decimal.Decimal `json:"amount"`
	Reversed bool            `json:"reversed"`
}

// NewContributionCancelledEvent creates a new ContributionCancelledEvent
func NewContributionCancelledEvent(c *Contribution, actorID uuid.UUID, reversed bool) *ContributionCancelledEvent {
	return &ContributionCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContributionCancelled, AggregateTypeContribution, c.ID, actorID),
		GroupID:         c.GroupID,
		Amount:          c.Amount,
		Reversed:        reversed,
	}
}

// ContributionRefundedEvent is published when a confirmed contribution is refunded
type ContributionRefundedEvent struct {
	shared.BaseDomainEvent
	GroupID uuid.UUID       `json:"group_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// NewContributionRefundedEvent creates a new ContributionRefundedEvent
func NewContributionRefundedEvent(c *Contribution, actorID uuid.UUID) *ContributionRefundedEvent {
	return &ContributionRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContributionRefunded, AggregateTypeContribution, c.ID, actorID),
		GroupID:         c.GroupID,
		Amount:          c.Amount,
	}
}

// ContributionAdjustedEvent is published when a counted amount changes
type ContributionAdjustedEvent struct {
	shared.BaseDomainEvent
	GroupID uuid.UUID       `json:"group_id"`
	Amount  decimal.Decimal `json:"amount"`
	Delta   decimal.Decimal `json:"delta"`
}

// NewContributionAdjustedEvent creates a new ContributionAdjustedEvent
func NewContributionAdjustedEvent(c *Contribution, actorID uuid.UUID, delta decimal.Decimal) *ContributionAdjustedEvent {
	return &ContributionAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContributionAdjusted, AggregateTypeContribution, c.ID, actorID),
		GroupID:         c.GroupID,
		Amount:          c.Amount,
		Delta:           delta,
	}
}
