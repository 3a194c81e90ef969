package contribution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows contribution listings
type Filter struct {
	shared.Filter
	UserID   *uuid.UUID
	GroupID  *uuid.UUID
	Status   *Status
	Type     *Type
	DateFrom *time.Time
	DateTo   *time.Time
}

// Stats aggregates confirmed contributions
type Stats struct {
	TotalAmount        decimal.Decimal
	TotalContributions int64
	AverageAmount      decimal.Decimal
	MaxAmount          decimal.Decimal
	MinAmount          decimal.Decimal
}

// Repository persists contributions
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contribution, error)

	// FindByRequestKey returns the contribution a user created with key
	FindByRequestKey(ctx context.Context, userID uuid.UUID, key string) (*Contribution, error)

	FindAll(ctx context.Context, filter Filter) ([]*Contribution, int64, error)

	// Stats summarizes confirmed contributions matching the user/group filter
	Stats(ctx context.Context, userID, groupID *uuid.UUID) (Stats, error)

	Create(ctx context.Context, c *Contribution) error

	// Save persists changes with an optimistic version check and bumps the version
	Save(ctx context.Context, c *Contribution) error
}
