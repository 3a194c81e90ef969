package contribution

import "github.com/savings/backend/internal/domain/gamification"

// Status represents the state of a contribution
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for cancelled and refunded contributions
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// IsCounted returns true if the amount is included in group and user totals
func (s Status) IsCounted() bool {
	return s == StatusConfirmed
}

// Type is the kind of contribution; it drives the points multiplier
type Type string

const (
	TypeRegular   Type = "regular"
	TypeBonus     Type = "bonus"
	TypeCatchUp   Type = "catch-up"
	TypeMilestone Type = "milestone"
	TypePenalty   Type = "penalty"
)

// IsValid checks if the type is a valid Type
func (t Type) IsValid() bool {
	switch t {
	case TypeRegular, TypeBonus, TypeCatchUp, TypeMilestone, TypePenalty:
		return true
	}
	return false
}

// Multiplier returns the points multiplier for the type
func (t Type) Multiplier() gamification.Multiplier {
	switch t {
	case TypeBonus:
		return gamification.MultiplierBonus
	case TypeMilestone:
		return gamification.MultiplierMilestone
	case TypeCatchUp:
		return gamification.MultiplierCatchUp
	}
	return gamification.MultiplierRegular
}

// Category describes what the money is for
type Category string

const (
	CategorySavings    Category = "savings"
	CategoryEmergency  Category = "emergency"
	CategoryVacation   Category = "vacation"
	CategoryEducation  Category = "education"
	CategoryGift       Category = "gift"
	CategoryInvestment Category = "investment"
	CategoryOther      Category = "other"
)

// IsValid checks if the category is a valid Category
func (c Category) IsValid() bool {
	switch c {
	case CategorySavings, CategoryEmergency, CategoryVacation, CategoryEducation,
		CategoryGift, CategoryInvestment, CategoryOther:
		return true
	}
	return false
}

// PaymentMethod is how the money was moved
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
	PaymentUPI           PaymentMethod = "upi"
	PaymentCard          PaymentMethod = "card"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
	PaymentOther         PaymentMethod = "other"
)

// IsValid checks if the payment method is a valid PaymentMethod
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentBankTransfer, PaymentUPI, PaymentCard, PaymentDigitalWallet, PaymentOther:
		return true
	}
	return false
}

// MilestoneType tags a milestone contribution
type MilestoneType string

const (
	MilestoneFirstContribution MilestoneType = "first_contribution"
	MilestoneWeeklyGoal        MilestoneType = "weekly_goal"
	MilestoneMonthlyGoal       MilestoneType = "monthly_goal"
	MilestoneHalfwayMark       MilestoneType = "halfway_mark"
	MilestoneFinalPush         MilestoneType = "final_push"
	MilestoneStreakBonus       MilestoneType = "streak_bonus"
)

// IsValid checks if the milestone type is a valid MilestoneType
func (m MilestoneType) IsValid() bool {
	switch m {
	case MilestoneFirstContribution, MilestoneWeeklyGoal, MilestoneMonthlyGoal,
		MilestoneHalfwayMark, MilestoneFinalPush, MilestoneStreakBonus:
		return true
	}
	return false
}
