package goal

// Status represents the lifecycle status of a goal
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled" // reserved; goals are hard-deleted instead
	StatusOverdue   Status = "overdue"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusCancelled, StatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanPause returns true if the goal can be paused
func (s Status) CanPause() bool {
	return s == StatusActive
}

// CanResume returns true if the goal can be resumed
func (s Status) CanResume() bool {
	return s == StatusPaused || s == StatusOverdue
}

// Type classifies the purpose of a goal
type Type string

const (
	TypePersonal    Type = "personal"
	TypeGroup       Type = "group"
	TypeEmergency   Type = "emergency"
	TypeVacation    Type = "vacation"
	TypeEducation   Type = "education"
	TypeInvestment  Type = "investment"
	TypePurchase    Type = "purchase"
	TypeDebtPayment Type = "debt_payment"
)

// IsValid checks if the type is a valid Type
func (t Type) IsValid() bool {
	switch t {
	case TypePersonal, TypeGroup, TypeEmergency, TypeVacation, TypeEducation,
		TypeInvestment, TypePurchase, TypeDebtPayment:
		return true
	}
	return false
}

// Category groups goals for display
type Category string

const (
	CategorySavings    Category = "savings"
	CategoryEmergency  Category = "emergency"
	CategoryVacation   Category = "vacation"
	CategoryEducation  Category = "education"
	CategoryGift       Category = "gift"
	CategoryInvestment Category = "investment"
	CategoryDebt       Category = "debt"
	CategoryOther      Category = "other"
)

// IsValid checks if the category is a valid Category
func (c Category) IsValid() bool {
	switch c {
	case CategorySavings, CategoryEmergency, CategoryVacation, CategoryEducation,
		CategoryGift, CategoryInvestment, CategoryDebt, CategoryOther:
		return true
	}
	return false
}

// Priority orders a user's goals
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is a valid Priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
