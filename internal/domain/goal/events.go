package goal

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Goal domain event types
const (
	EventTypeGoalCreated       = "GoalCreated"
	EventTypeGoalContributed   = "GoalContributed"
	EventTypeGoalCompleted     = "GoalCompleted"
	EventTypeMilestoneAchieved = "GoalMilestoneAchieved"
)

// GoalCreatedEvent is published when a goal is created
type GoalCreatedEvent struct {
	shared.BaseDomainEvent
	Title        string          `json:"title"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	GroupID      *uuid.UUID      `json:"group_id,omitempty"`
}

// NewGoalCreatedEvent creates a new GoalCreatedEvent
func NewGoalCreatedEvent(g *Goal) *GoalCreatedEvent {
	return &GoalCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGoalCreated, AggregateTypeGoal, g.ID, g.OwnerID),
		Title:           g.Title,
		TargetAmount:    g.TargetAmount,
		GroupID:         g.GroupID,
	}
}

// GoalContributedEvent is published for every contribution credited to a goal
type GoalContributedEvent struct {
	shared.BaseDomainEvent
	Amount        decimal.Decimal `json:"amount"`
	Points        int64           `json:"points"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
}

// NewGoalContributedEvent creates a new GoalContributedEvent
func NewGoalContributedEvent(g *Goal, actorID uuid.UUID, amount decimal.Decimal, points int64) *GoalContributedEvent {
	return &GoalContributedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGoalContributed, AggregateTypeGoal, g.ID, actorID),
		Amount:          amount,
		Points:          points,
		CurrentAmount:   g.CurrentAmount,
	}
}

// GoalCompletedEvent is published when a goal completes
type GoalCompletedEvent struct {
	shared.BaseDomainEvent
	OwnerID     uuid.UUID `json:"owner_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewGoalCompletedEvent creates a new GoalCompletedEvent
func NewGoalCompletedEvent(g *Goal, actorID uuid.UUID) *GoalCompletedEvent {
	e := &GoalCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGoalCompleted, AggregateTypeGoal, g.ID, actorID),
		OwnerID:         g.OwnerID,
	}
	if g.CompletedAt != nil {
		e.CompletedAt = *g.CompletedAt
	}
	return e
}

// MilestoneAchievedEvent is published when a milestone flips to achieved
type MilestoneAchievedEvent struct {
	shared.BaseDomainEvent
	MilestoneID uuid.UUID       `json:"milestone_id"`
	Name        string          `json:"name"`
	Target      decimal.Decimal `json:"target_amount"`
	Reward      string          `json:"reward,omitempty"`
}

// NewMilestoneAchievedEvent creates a new MilestoneAchievedEvent
func NewMilestoneAchievedEvent(g *Goal, m Milestone, actorID uuid.UUID) *MilestoneAchievedEvent {
	return &MilestoneAchievedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMilestoneAchieved, AggregateTypeGoal, g.ID, actorID),
		MilestoneID:     m.ID,
		Name:            m.Name,
		Target:          m.TargetAmount,
		Reward:          m.Reward,
	}
}
