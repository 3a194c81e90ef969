package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error

	// Save persists changes with an optimistic version check
	Save(ctx context.Context, user *User) error

	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDForUpdate loads the user holding a row lock for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByLogin finds an active or inactive user by username or email
	FindByLogin(ctx context.Context, login string) (*User, error)

	// FindByIDs returns the users with the given IDs, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// AttachGroup records a group back-reference on the user's profile
	AttachGroup(ctx context.Context, userID, groupID uuid.UUID) error

	// DetachMember removes one user's back-reference to the group
	DetachMember(ctx context.Context, userID, groupID uuid.UUID) error

	// DetachGroup removes the group back-reference from every user profile
	DetachGroup(ctx context.Context, groupID uuid.UUID) (int64, error)
}
