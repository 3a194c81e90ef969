package group

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Group domain event types
const (
	EventTypeGroupCreated   = "GroupCreated"
	EventTypeGroupCompleted = "GroupCompleted"
	EventTypeGroupCancelled = "GroupCancelled"
	EventTypeMemberJoined   = "GroupMemberJoined"
	EventTypeMemberLeft     = "GroupMemberLeft"
	EventTypeMemberPromoted = "GroupMemberPromoted"
	EventTypeInvitationSent = "GroupInvitationSent"
)

// GroupCreatedEvent is published when a group is created
type GroupCreatedEvent struct {
	shared.BaseDomainEvent
	Name      string          `json:"name"`
	TotalGoal decimal.Decimal `json:"total_goal"`
	Currency  string          `json:"currency"`
}

// NewGroupCreatedEvent creates a new GroupCreatedEvent
func NewGroupCreatedEvent(g *Group, actorID uuid.UUID) *GroupCreatedEvent {
	return &GroupCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGroupCreated, AggregateTypeGroup, g.ID, actorID),
		Name:            g.Name,
		TotalGoal:       g.TotalGoal,
		Currency:        string(g.Currency),
	}
}

// GroupCompletedEvent is published once when a group reaches its total goal
type GroupCompletedEvent struct {
	shared.BaseDomainEvent
	Name          string          `json:"name"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// NewGroupCompletedEvent creates a new GroupCompletedEvent
func NewGroupCompletedEvent(g *Group, actorID uuid.UUID) *GroupCompletedEvent {
	e := &GroupCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGroupCompleted, AggregateTypeGroup, g.ID, actorID),
		Name:            g.Name,
		CurrentAmount:   g.CurrentAmount,
	}
	if g.CompletedAt != nil {
		e.CompletedAt = *g.CompletedAt
	}
	return e
}

// GroupCancelledEvent is published when a group is soft-deleted
type GroupCancelledEvent struct {
	shared.BaseDomainEvent
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// NewGroupCancelledEvent creates a new GroupCancelledEvent
func NewGroupCancelledEvent(g *Group, actorID uuid.UUID) *GroupCancelledEvent {
	return &GroupCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGroupCancelled, AggregateTypeGroup, g.ID, actorID),
		MemberIDs:       g.AllMemberIDs(),
	}
}

// MemberJoinedEvent is published when a user joins or rejoins
type MemberJoinedEvent struct {
	shared.BaseDomainEvent
	UserID      uuid.UUID `json:"user_id"`
	Role        Role      `json:"role"`
	Reactivated bool      `json:"reactivated"`
}

// NewMemberJoinedEvent creates a new MemberJoinedEvent
func NewMemberJoinedEvent(g *Group, m Member, reactivated bool) *MemberJoinedEvent {
	return &MemberJoinedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberJoined, AggregateTypeGroup, g.ID, m.UserID),
		UserID:          m.UserID,
		Role:            m.Role,
		Reactivated:     reactivated,
	}
}

// MemberLeftEvent is published when a membership is deactivated
type MemberLeftEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewMemberLeftEvent creates a new MemberLeftEvent
func NewMemberLeftEvent(g *Group, userID, actorID uuid.UUID) *MemberLeftEvent {
	return &MemberLeftEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberLeft, AggregateTypeGroup, g.ID, actorID),
		UserID:          userID,
	}
}

// MemberPromotedEvent is published when a member becomes admin
type MemberPromotedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewMemberPromotedEvent creates a new MemberPromotedEvent
func NewMemberPromotedEvent(g *Group, userID, actorID uuid.UUID) *MemberPromotedEvent {
	return &MemberPromotedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberPromoted, AggregateTypeGroup, g.ID, actorID),
		UserID:          userID,
	}
}

// InvitationSentEvent is published when an invitation is created; the
// notification consumer delivers the email.
type InvitationSentEvent struct {
	shared.BaseDomainEvent
	InvitationID uuid.UUID `json:"invitation_id"`
	GroupName    string    `json:"group_name"`
	Email        string    `json:"email"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewInvitationSentEvent creates a new InvitationSentEvent
func NewInvitationSentEvent(g *Group, inv Invitation) *InvitationSentEvent {
	return &InvitationSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvitationSent, AggregateTypeGroup, g.ID, inv.InvitedBy),
		InvitationID:    inv.ID,
		GroupName:       g.Name,
		Email:           inv.Email,
		ExpiresAt:       inv.ExpiresAt,
	}
}
