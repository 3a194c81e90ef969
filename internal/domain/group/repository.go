package group

import (
	"context"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
)

// Filter narrows group listings
type Filter struct {
	shared.Filter
	MemberID *uuid.UUID // only groups where this user is an active member
	Privacy  *Privacy
	Status   *Status
	// InvitedEmail matches groups holding a pending invitation for the email
	InvitedEmail string
}

// Repository persists groups together with their members and invitations
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Group, error)

	// FindByIDForUpdate loads the group holding a row lock for the current
	// transaction, so membership and counter checks are re-validated under it
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Group, error)

	FindAll(ctx context.Context, filter Filter) ([]*Group, int64, error)

	Create(ctx context.Context, g *Group) error

	// Save persists changes with an optimistic version check and bumps the version
	Save(ctx context.Context, g *Group) error
}
