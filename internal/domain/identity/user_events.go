package identity

import (
	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/gamification"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered  = "UserRegistered"
	EventTypeUserDeactivated = "UserDeactivated"
	EventTypeUserCredited    = "UserCredited"
	EventTypeUserLeveledUp   = "UserLeveledUp"
	EventTypeBadgeAwarded    = "BadgeAwarded"
)

// UserRegisteredEvent is published when a user registers
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID, user.ID),
		Username:        user.Username,
		Email:           user.Email,
	}
}

// UserDeactivatedEvent is published when a user is soft-deleted
type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserDeactivatedEvent creates a new UserDeactivatedEvent
func NewUserDeactivatedEvent(user *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeactivated, AggregateTypeUser, user.ID, user.ID),
		Username:        user.Username,
	}
}

// UserCreditedEvent is published when a confirmed contribution is credited to a user
type UserCreditedEvent struct {
	shared.BaseDomainEvent
	ContributionID uuid.UUID       `json:"contribution_id"`
	Amount         decimal.Decimal `json:"amount"`
	Points         int64           `json:"points"`
	TotalSaved     decimal.Decimal `json:"total_saved"`
	Experience     int64           `json:"experience"`
	Level          int             `json:"level"`
	CurrentStreak  int             `json:"current_streak"`
}

// NewUserCreditedEvent creates a new UserCreditedEvent
func NewUserCreditedEvent(user *User, contributionID uuid.UUID, amount decimal.Decimal, points int64) *UserCreditedEvent {
	return &UserCreditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCredited, AggregateTypeUser, user.ID, user.ID),
		ContributionID:  contributionID,
		Amount:          amount,
		Points:          points,
		TotalSaved:      user.TotalSaved,
		Experience:      user.Experience,
		Level:           user.Level,
		CurrentStreak:   user.CurrentStreak,
	}
}

// UserLeveledUpEvent is published when experience crosses a level threshold
type UserLeveledUpEvent struct {
	shared.BaseDomainEvent
	PreviousLevel int `json:"previous_level"`
	Level         int `json:"level"`
}

// NewUserLeveledUpEvent creates a new UserLeveledUpEvent
func NewUserLeveledUpEvent(user *User, previousLevel int) *UserLeveledUpEvent {
	return &UserLeveledUpEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserLeveledUp, AggregateTypeUser, user.ID, user.ID),
		PreviousLevel:   previousLevel,
		Level:           user.Level,
	}
}

// BadgeAwardedEvent is published when a user earns a badge
type BadgeAwardedEvent struct {
	shared.BaseDomainEvent
	Badge gamification.Badge `json:"badge"`
}

// NewBadgeAwardedEvent creates a new BadgeAwardedEvent
func NewBadgeAwardedEvent(user *User, badge gamification.Badge) *BadgeAwardedEvent {
	return &BadgeAwardedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBadgeAwarded, AggregateTypeUser, user.ID, uuid.Nil),
		Badge:           badge,
	}
}
