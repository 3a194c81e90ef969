package event

import (
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/domain/goal"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/identity"
)

// RegisterAllEvents registers every domain event the services record so the
// outbox processor can read them back
func RegisterAllEvents(serializer *EventSerializer) {
	// Users
	serializer.Register(identity.EventTypeUserRegistered, &identity.UserRegisteredEvent{})
	serializer.Register(identity.EventTypeUserDeactivated, &identity.UserDeactivatedEvent{})
	serializer.Register(identity.EventTypeUserCredited, &identity.UserCreditedEvent{})
	serializer.Register(identity.EventTypeUserLeveledUp, &identity.UserLeveledUpEvent{})
	serializer.Register(identity.EventTypeBadgeAwarded, &identity.BadgeAwardedEvent{})

	// Groups
	serializer.Register(group.EventTypeGroupCreated, &group.GroupCreatedEvent{})
	serializer.Register(group.EventTypeGroupCompleted, &group.GroupCompletedEvent{})
	serializer.Register(group.EventTypeGroupCancelled, &group.GroupCancelledEvent{})
	serializer.Register(group.EventTypeMemberJoined, &group.MemberJoinedEvent{})
	serializer.Register(group.EventTypeMemberLeft, &group.MemberLeftEvent{})
	serializer.Register(group.EventTypeMemberPromoted, &group.MemberPromotedEvent{})
	serializer.Register(group.EventTypeInvitationSent, &group.InvitationSentEvent{})

	// Goals
	serializer.Register(goal.EventTypeGoalCreated, &goal.GoalCreatedEvent{})
	serializer.Register(goal.EventTypeGoalContributed, &goal.GoalContributedEvent{})
	serializer.Register(goal.EventTypeGoalCompleted, &goal.GoalCompletedEvent{})
	serializer.Register(goal.EventTypeMilestoneAchieved, &goal.MilestoneAchievedEvent{})

	// Contributions
	serializer.Register(contribution.EventTypeContributionRecorded, &contribution.ContributionRecordedEvent{})
	serializer.Register(contribution.EventTypeContributionConfirmed, &contribution.ContributionConfirmedEvent{})
	serializer.Register(contribution.EventTypeContributionCancelled, &contribution.ContributionCancelledEvent{})
	serializer.Register(contribution.EventTypeContributionRefunded, &contribution.ContributionRefundedEvent{})
	serializer.Register(contribution.EventTypeContributionAdjusted, &contribution.ContributionAdjustedEvent{})
}

// NewSavingsSerializer returns a serializer with every domain event registered
func NewSavingsSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterAllEvents(s)
	return s
}
