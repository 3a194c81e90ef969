package identity

import "github.com/savings/backend/internal/domain/shared"

// User errors
var (
	ErrUserNotFound       = shared.NewNotFoundError("USER_NOT_FOUND", "User not found")
	ErrUserInactive       = shared.NewInvalidStateError("USER_INACTIVE", "User account is deactivated")
	ErrUsernameTaken      = shared.NewConflictError("USERNAME_TAKEN", "Username is already taken")
	ErrEmailTaken         = shared.NewConflictError("EMAIL_TAKEN", "Email is already registered")
	ErrUserAlreadyExists  = shared.NewConflictError("USER_ALREADY_EXISTS", "Username or email is already registered")
	ErrInvalidCredentials = shared.NewKindError(shared.KindAuthorizationDenied, "INVALID_CREDENTIALS", "Invalid username or password")
)
