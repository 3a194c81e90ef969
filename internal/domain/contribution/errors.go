package contribution

import "github.com/savings/backend/internal/domain/shared"

// Contribution errors
var (
	ErrContributionNotFound = shared.NewNotFoundError("CONTRIBUTION_NOT_FOUND", "Contribution not found")
	ErrAlreadyCancelled     = shared.NewInvalidStateError("ALREADY_CANCELLED", "Contribution is already cancelled")
	ErrNotPending           = shared.NewInvalidStateError("NOT_PENDING", "Only pending contributions can be verified")
	ErrNotConfirmed         = shared.NewInvalidStateError("NOT_CONFIRMED", "Only confirmed contributions can be refunded")
	ErrClosed               = shared.NewInvalidStateError("CONTRIBUTION_CLOSED", "Cancelled or refunded contributions cannot be changed")
	ErrNotContributor       = shared.NewForbiddenError("NOT_CONTRIBUTOR", "Only the contributor can change this contribution")
	ErrInvalidAmount        = shared.NewDomainError("INVALID_AMOUNT", "Contribution amount must be greater than 0")
	ErrAccessDenied         = shared.NewForbiddenError("ACCESS_DENIED", "Only the contributor or a group admin can do this")
	ErrDuplicateRequest     = shared.NewConflictError("DUPLICATE_REQUEST", "A contribution with this request key is still being processed")
)
