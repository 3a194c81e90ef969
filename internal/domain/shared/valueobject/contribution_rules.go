package valueobject

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Frequency is the expected contribution cadence
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyFlexible Frequency = "flexible"
)

// IsValid checks if the frequency is a valid Frequency
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyFlexible:
		return true
	}
	return false
}

// Contribution rule violations
var (
	ErrBelowMinimum = errors.New("amount is below the minimum contribution")
	ErrAboveMaximum = errors.New("amount is above the maximum contribution")
)

// ContributionRules constrain contributions to a group or goal
type ContributionRules struct {
	MinimumAmount decimal.Decimal  `json:"minimum_amount"`
	MaximumAmount *decimal.Decimal `json:"maximum_amount,omitempty"`
	Frequency     Frequency        `json:"frequency"`
	ReminderDays  []int            `json:"reminder_days"` // 0 = Sunday ... 6 = Saturday
}

// DefaultContributionRules returns min 1, no max, flexible frequency
func DefaultContributionRules() ContributionRules {
	return ContributionRules{
		MinimumAmount: decimal.NewFromInt(1),
		Frequency:     FrequencyFlexible,
		ReminderDays:  []int{},
	}
}

// IsZero reports whether no rule field was set
func (r ContributionRules) IsZero() bool {
	return r.Frequency == "" && r.MinimumAmount.IsZero() && r.MaximumAmount == nil && len(r.ReminderDays) == 0
}

// WithDefaults returns the defaults for zero rules and fills a missing frequency
func (r ContributionRules) WithDefaults() ContributionRules {
	if r.IsZero() {
		return DefaultContributionRules()
	}
	if r.Frequency == "" {
		r.Frequency = FrequencyFlexible
	}
	if r.ReminderDays == nil {
		r.ReminderDays = []int{}
	}
	return r
}

// Validate checks the rules are self-consistent
func (r ContributionRules) Validate() error {
	if r.MinimumAmount.IsNegative() {
		return errors.New("minimum amount cannot be negative")
	}
	if r.MaximumAmount != nil && r.MaximumAmount.LessThan(r.MinimumAmount) {
		return errors.New("maximum amount cannot be lower than the minimum")
	}
	if !r.Frequency.IsValid() {
		return errors.New("invalid contribution frequency")
	}
	for _, d := range r.ReminderDays {
		if d < 0 || d > 6 {
			return errors.New("reminder days must be between 0 and 6")
		}
	}
	return nil
}

// Check returns ErrBelowMinimum or ErrAboveMaximum when the amount breaks the rules
func (r ContributionRules) Check(amount decimal.Decimal) error {
	if amount.LessThan(r.MinimumAmount) {
		return ErrBelowMinimum
	}
	if r.MaximumAmount != nil && amount.GreaterThan(*r.MaximumAmount) {
		return ErrAboveMaximum
	}
	return nil
}
