package goal

import (
	"context"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows goal listings
type Filter struct {
	shared.Filter
	OwnerID  *uuid.UUID
	GroupID  *uuid.UUID
	Status   *Status
	Priority *Priority
	Public   bool // only public goals
}

// Overview aggregates an owner's goals
type Overview struct {
	TotalGoals         int64
	ActiveGoals        int64
	CompletedGoals     int64
	TotalTargetAmount  decimal.Decimal
	TotalCurrentAmount decimal.Decimal
	AverageProgress    decimal.Decimal
	ByStatus           map[Status]int64
	ByType             map[Type]int64
}

// Repository persists goals with their milestones
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Goal, error)
	FindAll(ctx context.Context, filter Filter) ([]*Goal, int64, error)
	Create(ctx context.Context, g *Goal) error

	// Save persists changes with an optimistic version check and bumps the version
	Save(ctx context.Context, g *Goal) error

	// Overview aggregates the goals owned by ownerID
	Overview(ctx context.Context, ownerID uuid.UUID) (Overview, error)

	// Delete removes the goal and its milestones
	Delete(ctx context.Context, id uuid.UUID) error
}
