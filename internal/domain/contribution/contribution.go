package contribution

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/gamification"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AggregateTypeContribution is the aggregate type for contribution events
const AggregateTypeContribution = "Contribution"

const (
	maxDescriptionLength = 200
	maxNotesLength       = 500
)

// Metadata is the caller-supplied description of a contribution
type Metadata struct {
	Type             Type
	Category         Category
	Currency         valueobject.Currency
	Description      string
	Notes            string
	PaymentMethod    PaymentMethod
	PaymentReference string
	ContributionDate time.Time
	IsMilestone      bool
	MilestoneType    MilestoneType
	Pending          bool   // record as pending awaiting admin verification
	RequestKey       string // client deduplication key, unique per user
}

func (m *Metadata) normalize(now time.Time) error {
	m.Description = strings.TrimSpace(m.Description)
	m.Notes = strings.TrimSpace(m.Notes)
	m.RequestKey = strings.TrimSpace(m.RequestKey)
	if m.Type == "" {
		m.Type = TypeRegular
	}
	if !m.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Invalid contribution type")
	}
	if m.Category == "" {
		m.Category = CategorySavings
	}
	if !m.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Invalid contribution category")
	}
	if m.PaymentMethod == "" {
		m.PaymentMethod = PaymentBankTransfer
	}
	if !m.PaymentMethod.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if m.MilestoneType != "" && !m.MilestoneType.IsValid() {
		return shared.NewDomainError("INVALID_MILESTONE_TYPE", "Invalid milestone type")
	}
	if len(m.Description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 200 characters")
	}
	if len(m.Notes) > maxNotesLength {
		return shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 500 characters")
	}
	if m.ContributionDate.IsZero() {
		m.ContributionDate = now
	}
	return nil
}

// Contribution is a single deposit by a member into a group. It is never
// deleted; cancelled and refunded are terminal.
type Contribution struct {
	shared.BaseAggregateRoot
	Metadata
	UserID              uuid.UUID
	GroupID             uuid.UUID
	Amount              decimal.Decimal
	Status              Status
	PointsEarned        int64
	StreakCount         int
	GroupProgressBefore decimal.Decimal
	GroupProgressAfter  decimal.Decimal
	VerifiedBy          *uuid.UUID
	VerifiedAt          *time.Time
}

// Points computes floor(amount * 10 * typeMultiplier * milestoneFlag)
func Points(amount decimal.Decimal, t Type, isMilestone bool) int64 {
	multipliers := []gamification.Multiplier{t.Multiplier()}
	if isMilestone {
		multipliers = append(multipliers, gamification.MultiplierMilestoneFlag)
	}
	return gamification.ContributionPoints(amount, multipliers...)
}

// NewContribution creates a confirmed contribution, or a pending one when
// meta.Pending is set
func NewContribution(userID, groupID uuid.UUID, amount decimal.Decimal, meta Metadata, now time.Time) (*Contribution, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := meta.normalize(now); err != nil {
		return nil, err
	}

	status := StatusConfirmed
	if meta.Pending {
		status = StatusPending
	}
	c := &Contribution{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Metadata:            meta,
		UserID:              userID,
		GroupID:             groupID,
		Amount:              amount,
		Status:              status,
		PointsEarned:        Points(amount, meta.Type, meta.IsMilestone),
		GroupProgressBefore: decimal.Zero,
		GroupProgressAfter:  decimal.Zero,
	}
	c.AddDomainEvent(NewContributionRecordedEvent(c))
	return c, nil
}

// Lifecycle implements shared.LifecycleAware
func (c *Contribution) Lifecycle() shared.Lifecycle {
	return shared.LifecycleRetained
}

// IsContributor reports whether userID made the contribution
func (c *Contribution) IsContributor(userID uuid.UUID) bool {
	return c.UserID == userID
}

// RecordProgress stores the group progress snapshots around crediting
func (c *Contribution) RecordProgress(before, after decimal.Decimal) {
	c.GroupProgressBefore = before
	c.GroupProgressAfter = after
}

// Confirmed records the outcome of crediting the contributor and emits the
// ContributionConfirmed event consumed by badge evaluation
func (c *Contribution) Confirmed(streak int) {
	c.StreakCount = streak
	c.AddDomainEvent(NewContributionConfirmedEvent(c))
}

// Cancel moves the contribution to cancelled. wasCounted reports whether the
// amount had been included in the totals and must be reversed by the caller.
func (c *Contribution) Cancel(actorID uuid.UUID) (wasCounted bool, err error) {
	switch c.Status {
	case StatusCancelled:
		return false, ErrAlreadyCancelled
	case StatusRefunded:
		return false, ErrClosed
	}
	wasCounted = c.Status.IsCounted()
	c.Status = StatusCancelled
	c.Touch()
	c.AddDomainEvent(NewContributionCancelledEvent(c, actorID, wasCounted))
	return wasCounted, nil
}

// Verify confirms a pending contribution
func (c *Contribution) Verify(verifierID uuid.UUID, now time.Time) error {
	if c.Status != StatusPending {
		return ErrNotPending
	}
	c.Status = StatusConfirmed
	c.VerifiedBy = &verifierID
	c.VerifiedAt = &now
	c.Touch()
	return nil
}

// Refund reverses a confirmed contribution
func (c *Contribution) Refund(actorID uuid.UUID) error {
	if c.Status != StatusConfirmed {
		return ErrNotConfirmed
	}
	c.Status = StatusRefunded
	c.Touch()
	c.AddDomainEvent(NewContributionRefundedEvent(c, actorID))
	return nil
}

// UpdateAmount changes the amount and returns the delta the caller applies to
// the group when the contribution is counted. A pending contribution has its
// points recomputed; a counted one keeps the points already credited.
func (c *Contribution) UpdateAmount(actorID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !c.IsContributor(actorID) {
		return decimal.Zero, ErrNotContributor
	}
	if c.Status.IsTerminal() {
		return decimal.Zero, ErrClosed
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	delta := amount.Sub(c.Amount)
	if delta.IsZero() {
		return delta, nil
	}
	c.Amount = amount
	c.Touch()
	if !c.Status.IsCounted() {
		c.PointsEarned = Points(amount, c.Type, c.IsMilestone)
		return decimal.Zero, nil
	}
	c.AddDomainEvent(NewContributionAdjustedEvent(c, actorID, delta))
	return delta, nil
}

// UpdateNotes replaces the free-text fields
func (c *Contribution) UpdateNotes(description, notes string) error {
	if c.Status.IsTerminal() {
		return ErrClosed
	}
	meta := c.Metadata
	meta.Description = description
	meta.Notes = notes
	if err := meta.normalize(c.CreatedAt); err != nil {
		return err
	}
	c.Metadata = meta
	c.Touch()
	return nil
}
