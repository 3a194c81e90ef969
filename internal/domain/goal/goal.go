package goal

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/gamification"
	"github.com/savings/backend/internal/domain/progress"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AggregateTypeGoal is the aggregate type for goal events
const AggregateTypeGoal = "Goal"

const (
	maxTitleLength       = 100
	maxDescriptionLength = 500
	maxTagLength         = 20
)

// Details are the owner-editable attributes of a goal
type Details struct {
	Title        string
	Description  string
	TargetAmount decimal.Decimal
	Currency     valueobject.Currency
	Type         Type
	Category     Category
	StartDate    time.Time
	TargetDate   time.Time
	Rules        valueobject.ContributionRules
	IsPublic     bool
	Priority     Priority
	Tags         []string
}

func (d *Details) normalize(now time.Time) error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Goal title is required")
	}
	if len(d.Title) > maxTitleLength {
		return shared.NewDomainError("INVALID_TITLE", "Goal title cannot exceed 100 characters")
	}
	if len(d.Description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if !d.TargetAmount.IsPositive() {
		return shared.NewDomainError("INVALID_TARGET_AMOUNT", "Target amount must be greater than 0")
	}
	if d.Currency == "" {
		d.Currency = valueobject.DefaultCurrency
	}
	if !d.Currency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency")
	}
	if d.Type == "" {
		d.Type = TypePersonal
	}
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Invalid goal type")
	}
	if d.Category == "" {
		d.Category = CategorySavings
	}
	if !d.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Invalid goal category")
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if !d.Priority.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Invalid goal priority")
	}
	if d.StartDate.IsZero() {
		d.StartDate = now
	}
	if d.TargetDate.IsZero() {
		return shared.NewDomainError("INVALID_TARGET_DATE", "Target date is required")
	}
	tags := make([]string, 0, len(d.Tags))
	for _, tag := range d.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(tag) > maxTagLength {
			return shared.NewDomainError("INVALID_TAG", "Tag cannot exceed 20 characters")
		}
		tags = append(tags, tag)
	}
	d.Tags = tags
	d.Rules = d.Rules.WithDefaults()
	if err := d.Rules.Validate(); err != nil {
		return shared.NewDomainError("INVALID_RULES", err.Error())
	}
	return nil
}

// Milestone is an intermediate target inside a goal. Once achieved it stays achieved.
type Milestone struct {
	ID           uuid.UUID
	Name         string
	TargetAmount decimal.Decimal
	IsAchieved   bool
	AchievedAt   *time.Time
	Reward       string
}

// Goal is a savings target owned by one user, optionally linked to a group
type Goal struct {
	shared.BaseAggregateRoot
	Details
	OwnerID             uuid.UUID
	GroupID             *uuid.UUID // weak reference; the group may be cancelled independently
	CurrentAmount       decimal.Decimal
	ProgressPercentage  decimal.Decimal
	Status              Status
	CompletedAt         *time.Time
	Milestones          []Milestone
	Points              int64
	TotalContributions  int64
	AverageContribution decimal.Decimal
	LastContribution    *time.Time
}

// NewGoal creates an active goal for ownerID
func NewGoal(details Details, ownerID uuid.UUID, groupID *uuid.UUID, now time.Time) (*Goal, error) {
	if err := details.normalize(now); err != nil {
		return nil, err
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Goal owner is required")
	}
	if groupID != nil && details.Type == TypePersonal {
		details.Type = TypeGroup
	}

	g := &Goal{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Details:             details,
		OwnerID:             ownerID,
		GroupID:             groupID,
		CurrentAmount:       decimal.Zero,
		ProgressPercentage:  decimal.Zero,
		Status:              StatusActive,
		Milestones:          []Milestone{},
		AverageContribution: decimal.Zero,
	}
	g.AddDomainEvent(NewGoalCreatedEvent(g))
	return g, nil
}

// Lifecycle implements shared.LifecycleAware
func (g *Goal) Lifecycle() shared.Lifecycle {
	return shared.LifecycleHardDelete
}

// IsOwner reports whether userID owns the goal
func (g *Goal) IsOwner(userID uuid.UUID) bool {
	return g.OwnerID == userID
}

// UpdateDetails replaces the editable attributes of a goal that is not completed
func (g *Goal) UpdateDetails(details Details, now time.Time) error {
	if g.Status == StatusCompleted {
		return ErrGoalAlreadyCompleted
	}
	if details.StartDate.IsZero() {
		details.StartDate = g.StartDate
	}
	if err := details.normalize(now); err != nil {
		return err
	}
	g.Details = details
	g.Touch()
	return nil
}

// ValidateAmount checks the amount against the goal's contribution rules
func (g *Goal) ValidateAmount(amount decimal.Decimal) error {
	switch err := g.Rules.Check(amount); {
	case errors.Is(err, valueobject.ErrBelowMinimum):
		return ErrBelowMinimum
	case errors.Is(err, valueobject.ErrAboveMaximum):
		return ErrAboveMaximum
	}
	return nil
}

// AddContribution credits amount to an active goal and returns the points earned
func (g *Goal) AddContribution(amount decimal.Decimal, actorID uuid.UUID, now time.Time) (int64, error) {
	if g.Status != StatusActive {
		return 0, ErrGoalNotActive
	}
	if !amount.IsPositive() {
		return 0, shared.NewDomainError("INVALID_AMOUNT", "Valid contribution amount is required")
	}
	if err := g.ValidateAmount(amount); err != nil {
		return 0, err
	}

	points := gamification.GoalPoints(amount)
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	g.TotalContributions++
	g.AverageContribution = g.CurrentAmount.Div(decimal.NewFromInt(g.TotalContributions)).Round(2)
	g.LastContribution = &now
	g.Points += points
	g.Touch()
	g.AddDomainEvent(NewGoalContributedEvent(g, actorID, amount, points))
	return points, nil
}

// Pause stops an active goal
func (g *Goal) Pause() error {
	if g.Status == StatusCompleted {
		return ErrGoalAlreadyCompleted
	}
	if !g.Status.CanPause() {
		return ErrGoalNotActive
	}
	g.Status = StatusPaused
	g.Touch()
	return nil
}

// Resume reactivates a paused or overdue goal
func (g *Goal) Resume() error {
	if g.Status == StatusCompleted {
		return ErrGoalAlreadyCompleted
	}
	if !g.Status.CanResume() {
		return ErrGoalNotResumable
	}
	g.Status = StatusActive
	g.Touch()
	return nil
}

// Complete marks the goal completed regardless of its balance
func (g *Goal) Complete(actorID uuid.UUID, now time.Time) error {
	if g.Status == StatusCompleted {
		return ErrGoalAlreadyCompleted
	}
	g.markCompleted(actorID, now)
	return nil
}

func (g *Goal) markCompleted(actorID uuid.UUID, now time.Time) {
	g.Status = StatusCompleted
	g.ProgressPercentage = progress.Complete()
	if g.CompletedAt == nil {
		g.CompletedAt = &now
	}
	g.Touch()
	g.AddDomainEvent(NewGoalCompletedEvent(g, actorID))
}

// AddMilestone appends an unachieved milestone
func (g *Goal) AddMilestone(name string, target decimal.Decimal, reward string) (*Milestone, error) {
	name = strings.TrimSpace(name)
	if name == "" || !target.IsPositive() {
		return nil, ErrInvalidMilestone
	}
	g.Milestones = append(g.Milestones, Milestone{
		ID:           uuid.New(),
		Name:         name,
		TargetAmount: target,
		Reward:       strings.TrimSpace(reward),
	})
	g.Touch()
	return &g.Milestones[len(g.Milestones)-1], nil
}

// Refresh recomputes derived state before a write: progress, then auto-completion,
// then milestone achievement, then the overdue transition. Milestones never
// revert and a completed goal keeps reading 100%.
func (g *Goal) Refresh(actorID uuid.UUID, now time.Time) {
	g.Settle(actorID, now)
	if g.Status == StatusActive && now.After(g.TargetDate) {
		g.Status = StatusOverdue
		g.Touch()
	}
}

// Settle is Refresh without the overdue transition. The write that resumes an
// overdue goal settles instead of refreshing, so the goal leaves that write
// active; the next write past the target date marks it overdue again.
func (g *Goal) Settle(actorID uuid.UUID, now time.Time) {
	if g.Status == StatusCompleted {
		g.ProgressPercentage = progress.Complete()
	} else {
		g.ProgressPercentage = progress.PercentComplete(g.CurrentAmount, g.TargetAmount)
	}

	if g.Status == StatusActive && progress.IsComplete(g.ProgressPercentage) {
		g.markCompleted(actorID, now)
	}

	for i := range g.Milestones {
		m := &g.Milestones[i]
		if m.IsAchieved || g.CurrentAmount.LessThan(m.TargetAmount) {
			continue
		}
		at := now
		m.IsAchieved = true
		m.AchievedAt = &at
		g.AddDomainEvent(NewMilestoneAchievedEvent(g, *m, actorID))
	}
}

// AchievedMilestones returns the milestones already reached
func (g *Goal) AchievedMilestones() []Milestone {
	out := make([]Milestone, 0, len(g.Milestones))
	for _, m := range g.Milestones {
		if m.IsAchieved {
			out = append(out, m)
		}
	}
	return out
}

// PendingMilestones returns the milestones not yet reached
func (g *Goal) PendingMilestones() []Milestone {
	out := make([]Milestone, 0, len(g.Milestones))
	for _, m := range g.Milestones {
		if !m.IsAchieved {
			out = append(out, m)
		}
	}
	return out
}

// Summary is the derived read model of a goal
type Summary struct {
	DaysRemaining       int
	DaysElapsed         int
	IsCompleted         bool
	IsOverdue           bool
	EstimatedCompletion *time.Time
}

// Summary computes the goal's derived values at now
func (g *Goal) Summary(now time.Time) Summary {
	pct := progress.PercentComplete(g.CurrentAmount, g.TargetAmount)
	completed := progress.IsComplete(pct) || g.Status == StatusCompleted
	s := Summary{
		DaysRemaining: progress.DaysRemaining(g.TargetDate, now),
		DaysElapsed:   progress.DaysElapsed(g.StartDate, now),
		IsCompleted:   completed,
		IsOverdue:     now.After(g.TargetDate) && !completed,
	}
	if eta, ok := progress.EstimatedCompletionDate(progress.Estimate{
		Current:     g.CurrentAmount,
		Target:      g.TargetAmount,
		Start:       g.StartDate,
		CompletedAt: g.CompletedAt,
		Now:         now,
	}); ok {
		s.EstimatedCompletion = &eta
	}
	return s
}
