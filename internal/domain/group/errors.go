package group

import "github.com/savings/backend/internal/domain/shared"

// Group and membership errors
var (
	ErrGroupNotFound         = shared.NewNotFoundError("GROUP_NOT_FOUND", "Group not found")
	ErrGroupInactive         = shared.NewInvalidStateError("GROUP_INACTIVE", "Group is not active")
	ErrGroupAlreadyCancelled = shared.NewInvalidStateError("GROUP_ALREADY_CANCELLED", "Group is already cancelled")
	ErrGroupPrivate          = shared.NewForbiddenError("GROUP_PRIVATE", "This group is private")
	ErrGroupFull             = shared.NewKindError(shared.KindCapacityExceeded, "GROUP_FULL", "Group is full")
	ErrAlreadyMember         = shared.NewConflictError("ALREADY_MEMBER", "User is already a member of this group")
	ErrNotMember             = shared.NewForbiddenError("NOT_MEMBER", "User is not a member of this group")
	ErrAdminRequired         = shared.NewForbiddenError("ADMIN_REQUIRED", "Group admin access required")
	ErrAlreadyAdmin          = shared.NewConflictError("ALREADY_ADMIN", "User is already an admin")
	ErrLastAdminRemoval      = shared.NewKindError(shared.KindInvariantViolation, "LAST_ADMIN_REMOVAL", "Cannot remove the last admin from the group")
	ErrMaxMembersBelowCount  = shared.NewKindError(shared.KindInvariantViolation, "MAX_MEMBERS_BELOW_COUNT", "Max members cannot be lower than the active member count")

	ErrDuplicateInvitation     = shared.NewConflictError("DUPLICATE_INVITATION", "Invitation already sent to this email")
	ErrInvitationNotFound      = shared.NewNotFoundError("INVITATION_NOT_FOUND", "Invitation not found")
	ErrInvitationEmailMismatch = shared.NewForbiddenError("INVITATION_EMAIL_MISMATCH", "This invitation is not for you")
	ErrInvitationNotPending    = shared.NewInvalidStateError("INVITATION_NOT_PENDING", "Invitation is no longer valid")
	ErrInvitationExpired       = shared.NewInvalidStateError("INVITATION_EXPIRED", "Invitation has expired")

	ErrBelowMinimum = shared.NewDomainError("BELOW_MINIMUM_AMOUNT", "Amount is below the group's minimum contribution")
	ErrAboveMaximum = shared.NewDomainError("ABOVE_MAXIMUM_AMOUNT", "Amount is above the group's maximum contribution")
)
