package group

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/progress"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Membership limits
const (
	DefaultMaxMembers = 10
	MinMaxMembers     = 2
	MaxMaxMembers     = 50
)

// AggregateTypeGroup is the aggregate type for group events
const AggregateTypeGroup = "Group"

// Details are the admin-editable attributes of a group
type Details struct {
	Name         string
	Description  string
	Type         Type
	Privacy      Privacy
	MaxMembers   int
	TotalGoal    decimal.Decimal
	Currency     valueobject.Currency
	GoalDeadline time.Time
	Rules        valueobject.ContributionRules
}

func (d *Details) normalize() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	if d.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Group name is required")
	}
	if len(d.Name) > 50 {
		return shared.NewDomainError("INVALID_NAME", "Group name cannot exceed 50 characters")
	}
	if len(d.Description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if d.Type == "" {
		d.Type = TypeFriends
	}
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Invalid group type")
	}
	if d.Privacy == "" {
		d.Privacy = PrivacyInviteOnly
	}
	if !d.Privacy.IsValid() {
		return shared.NewDomainError("INVALID_PRIVACY", "Invalid group privacy")
	}
	if d.MaxMembers == 0 {
		d.MaxMembers = DefaultMaxMembers
	}
	if d.MaxMembers < MinMaxMembers || d.MaxMembers > MaxMaxMembers {
		return shared.NewDomainError("INVALID_MAX_MEMBERS", "Max members must be between 2 and 50")
	}
	if !d.TotalGoal.IsPositive() {
		return shared.NewDomainError("INVALID_TOTAL_GOAL", "Total goal must be positive")
	}
	if d.Currency == "" {
		d.Currency = valueobject.DefaultCurrency
	}
	if !d.Currency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency")
	}
	if d.GoalDeadline.IsZero() {
		return shared.NewDomainError("INVALID_DEADLINE", "Goal deadline is required")
	}
	d.Rules = d.Rules.WithDefaults()
	if err := d.Rules.Validate(); err != nil {
		return shared.NewDomainError("INVALID_RULES", err.Error())
	}
	return nil
}

// Group is a pooled savings container. Groups are never hard-deleted;
// Cancel is the soft delete.
type Group struct {
	shared.BaseAggregateRoot
	Details
	CreatedBy           uuid.UUID
	CurrentAmount       decimal.Decimal
	ProgressPercentage  decimal.Decimal
	Members             []Member
	Invitations         []Invitation
	Status              Status
	CompletedAt         *time.Time
	TotalContributions  int64
	AverageContribution decimal.Decimal
}

// NewGroup creates a group with the founder as its first admin
func NewGroup(details Details, founderID uuid.UUID, now time.Time) (*Group, error) {
	if err := details.normalize(); err != nil {
		return nil, err
	}
	if founderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FOUNDER", "Founder is required")
	}

	g := &Group{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Details:             details,
		CreatedBy:           founderID,
		CurrentAmount:       decimal.Zero,
		ProgressPercentage:  decimal.Zero,
		Members:             []Member{},
		Invitations:         []Invitation{},
		Status:              StatusActive,
		AverageContribution: decimal.Zero,
	}
	if _, err := g.AddMember(founderID, RoleAdmin, now); err != nil {
		return nil, err
	}
	g.ClearDomainEvents()
	g.AddDomainEvent(NewGroupCreatedEvent(g, founderID))
	return g, nil
}

// Lifecycle implements shared.LifecycleAware
func (g *Group) Lifecycle() shared.Lifecycle {
	return shared.LifecycleSoftDelete
}

// UpdateDetails replaces the editable attributes
func (g *Group) UpdateDetails(details Details, actorID uuid.UUID, now time.Time) error {
	if g.Status == StatusCancelled {
		return ErrGroupInactive
	}
	if err := details.normalize(); err != nil {
		return err
	}
	if details.MaxMembers < g.ActiveMemberCount() {
		return ErrMaxMembersBelowCount
	}
	g.Details = details
	g.Touch()
	g.Recalculate(actorID, now)
	return nil
}

// Recalculate recomputes progress and applies auto-completion. A group that
// reaches 100% while active completes once; completion is never undone.
func (g *Group) Recalculate(actorID uuid.UUID, now time.Time) {
	g.ProgressPercentage = progress.PercentComplete(g.CurrentAmount, g.TotalGoal)
	if g.Status == StatusActive && progress.IsComplete(g.ProgressPercentage) {
		g.Status = StatusCompleted
		if g.CompletedAt == nil {
			g.CompletedAt = &now
		}
		g.AddDomainEvent(NewGroupCompletedEvent(g, actorID))
	}
}

// EnsureAcceptsContributions returns ErrGroupInactive unless the group is active
func (g *Group) EnsureAcceptsContributions() error {
	if !g.Status.AcceptsContributions() {
		return ErrGroupInactive
	}
	return nil
}

// ValidateAmount checks the amount against the group's contribution rules
func (g *Group) ValidateAmount(amount decimal.Decimal) error {
	switch err := g.Rules.Check(amount); {
	case errors.Is(err, valueobject.ErrBelowMinimum):
		return ErrBelowMinimum
	case errors.Is(err, valueobject.ErrAboveMaximum):
		return ErrAboveMaximum
	}
	return nil
}

// ApplyContribution credits a confirmed contribution to the group and the member
func (g *Group) ApplyContribution(userID uuid.UUID, amount decimal.Decimal, now time.Time) error {
	m := g.activeMember(userID)
	if m == nil {
		return ErrNotMember
	}
	m.TotalContributed = m.TotalContributed.Add(amount)
	m.LastContribution = &now

	g.CurrentAmount = g.CurrentAmount.Add(amount)
	g.TotalContributions++
	g.recomputeAverage()
	g.Touch()
	g.Recalculate(userID, now)
	return nil
}

// AdjustContribution applies an amount delta for an edited confirmed contribution.
// The contribution count is unchanged.
func (g *Group) AdjustContribution(userID uuid.UUID, delta decimal.Decimal, now time.Time) {
	if m := g.memberRecord(userID); m != nil {
		m.TotalContributed = nonNegative(m.TotalContributed.Add(delta))
	}
	g.CurrentAmount = nonNegative(g.CurrentAmount.Add(delta))
	g.recomputeAverage()
	g.Touch()
	g.Recalculate(userID, now)
}

// ReverseContribution subtracts a previously confirmed contribution from the
// group and the member record (active or not).
func (g *Group) ReverseContribution(userID uuid.UUID, amount decimal.Decimal, now time.Time) {
	g.AdjustContribution(userID, amount.Neg(), now)
}

func (g *Group) recomputeAverage() {
	if g.TotalContributions <= 0 {
		g.AverageContribution = decimal.Zero
		return
	}
	g.AverageContribution = g.CurrentAmount.Div(decimal.NewFromInt(g.TotalContributions)).Round(2)
}

// Pause stops accepting contributions
func (g *Group) Pause() error {
	if g.Status != StatusActive {
		return ErrGroupInactive
	}
	g.Status = StatusPaused
	g.Touch()
	return nil
}

// Resume reopens a paused group
func (g *Group) Resume(actorID uuid.UUID, now time.Time) error {
	if g.Status != StatusPaused {
		return shared.NewInvalidStateError("GROUP_NOT_PAUSED", "Only paused groups can be resumed")
	}
	g.Status = StatusActive
	g.Touch()
	g.Recalculate(actorID, now)
	return nil
}

// Cancel soft-deletes the group and expires its pending invitations
func (g *Group) Cancel(actorID uuid.UUID) error {
	if g.Status == StatusCancelled {
		return ErrGroupAlreadyCancelled
	}
	g.Status = StatusCancelled
	for i := range g.Invitations {
		if g.Invitations[i].Status == InvitationPending {
			g.Invitations[i].Status = InvitationExpired
		}
	}
	g.Touch()
	g.AddDomainEvent(NewGroupCancelledEvent(g, actorID))
	return nil
}

// Stats is the read model of group progress
type Stats struct {
	TotalGoal           decimal.Decimal
	CurrentAmount       decimal.Decimal
	ProgressPercentage  decimal.Decimal
	MemberCount         int
	DaysRemaining       int
	IsCompleted         bool
	IsOverdue           bool
	EstimatedCompletion *time.Time
	TotalContributions  int64
	AverageContribution decimal.Decimal
	Status              Status
	GoalDeadline        time.Time
	CreatedAt           time.Time
}

// Stats computes the group's progress read model at now
func (g *Group) Stats(now time.Time) Stats {
	pct := progress.PercentComplete(g.CurrentAmount, g.TotalGoal)
	completed := progress.IsComplete(pct) || g.Status == StatusCompleted
	s := Stats{
		TotalGoal:           g.TotalGoal,
		CurrentAmount:       g.CurrentAmount,
		ProgressPercentage:  pct,
		MemberCount:         g.ActiveMemberCount(),
		DaysRemaining:       progress.DaysRemaining(g.GoalDeadline, now),
		IsCompleted:         completed,
		IsOverdue:           now.After(g.GoalDeadline) && !completed,
		TotalContributions:  g.TotalContributions,
		AverageContribution: g.AverageContribution,
		Status:              g.Status,
		GoalDeadline:        g.GoalDeadline,
		CreatedAt:           g.CreatedAt,
	}
	if eta, ok := progress.EstimatedCompletionDate(progress.Estimate{
		Current:     g.CurrentAmount,
		Target:      g.TotalGoal,
		Start:       g.CreatedAt,
		CompletedAt: g.CompletedAt,
		Now:         now,
	}); ok {
		s.EstimatedCompletion = &eta
	}
	return s
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
