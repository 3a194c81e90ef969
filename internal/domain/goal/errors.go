package goal

import "github.com/savings/backend/internal/domain/shared"

// Goal errors
var (
	ErrGoalNotFound         = shared.NewNotFoundError("GOAL_NOT_FOUND", "Goal not found")
	ErrGoalNotActive        = shared.NewInvalidStateError("GOAL_NOT_ACTIVE", "Goal is not active")
	ErrGoalAlreadyCompleted = shared.NewInvalidStateError("GOAL_ALREADY_COMPLETED", "Goal is already completed")
	ErrGoalNotResumable     = shared.NewInvalidStateError("GOAL_NOT_RESUMABLE", "Only paused or overdue goals can be resumed")
	ErrGoalAccessDenied     = shared.NewForbiddenError("GOAL_ACCESS_DENIED", "Access to this goal is denied")
	ErrInvalidMilestone     = shared.NewDomainError("INVALID_MILESTONE", "Milestone needs a name and a positive target amount")
	ErrBelowMinimum         = shared.NewDomainError("BELOW_MINIMUM_AMOUNT", "Amount is below the goal's minimum contribution")
	ErrAboveMaximum         = shared.NewDomainError("ABOVE_MAXIMUM_AMOUNT", "Amount is above the goal's maximum contribution")
)
