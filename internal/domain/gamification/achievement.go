package gamification

import (
	"github.com/savings/backend/internal/domain/progress"
	"github.com/shopspring/decimal"
)

// Profile is the slice of a user's state achievements are evaluated against
type Profile struct {
	TotalSaved    decimal.Decimal
	Experience    int64
	Level         int
	CurrentStreak int
}

// Achievement categories
const (
	CategoryMilestone = "milestone"
	CategoryStreak    = "streak"
	CategoryLevel     = "level"
	CategoryTotal     = "total"
)

// Achievement is a badge template plus the measure that earns it
type Achievement struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Category    string
	Requirement decimal.Decimal
	current     func(p Profile) decimal.Decimal
}

// Current returns the profile's value for this achievement's measure
func (a Achievement) Current(p Profile) decimal.Decimal {
	return a.current(p)
}

// Earned reports whether the measure has reached the requirement
func (a Achievement) Earned(p Profile) bool {
	return a.current(p).GreaterThanOrEqual(a.Requirement)
}

// Progress returns the clamped percentage towards the requirement
func (a Achievement) Progress(p Profile) decimal.Decimal {
	return progress.PercentComplete(a.current(p), a.Requirement)
}

// Badge builds the badge awarded for this achievement
func (a Achievement) Badge() Badge {
	return Badge{Name: a.ID, Description: a.Description, Icon: a.Icon}
}

func streak(p Profile) decimal.Decimal { return decimal.NewFromInt(int64(p.CurrentStreak)) }
func level(p Profile) decimal.Decimal  { return decimal.NewFromInt(int64(p.Level)) }

// Catalog returns the built-in achievements
func Catalog() []Achievement {
	return []Achievement{
		{
			ID: "first_contribution", Title: "First Steps", Description: "Make your first contribution",
			Icon: "🎯", Category: CategoryMilestone, Requirement: decimal.NewFromInt(1),
			current: func(p Profile) decimal.Decimal {
				if p.TotalSaved.IsPositive() {
					return decimal.NewFromInt(1)
				}
				return decimal.Zero
			},
		},
		{
			ID: "streak_7", Title: "Week Warrior", Description: "Maintain a 7-contribution streak",
			Icon: "🔥", Category: CategoryStreak, Requirement: decimal.NewFromInt(7), current: streak,
		},
		{
			ID: "streak_30", Title: "Monthly Master", Description: "Maintain a 30-contribution streak",
			Icon: "💪", Category: CategoryStreak, Requirement: decimal.NewFromInt(30), current: streak,
		},
		{
			ID: "level_5", Title: "Rising Star", Description: "Reach level 5",
			Icon: "⭐", Category: CategoryLevel, Requirement: decimal.NewFromInt(5), current: level,
		},
		{
			ID: "level_10", Title: "Super Saver", Description: "Reach level 10",
			Icon: "🌟", Category: CategoryLevel, Requirement: decimal.NewFromInt(10), current: level,
		},
		{
			ID: "total_1000", Title: "Thousandaire", Description: "Save a total of 1,000",
			Icon: "💰", Category: CategoryTotal, Requirement: decimal.NewFromInt(1000),
			current: func(p Profile) decimal.Decimal { return p.TotalSaved },
		},
	}
}

// Evaluate returns the catalog achievements the profile has earned and the set does not hold yet
func Evaluate(p Profile, held BadgeSet) []Achievement {
	var earned []Achievement
	for _, a := range Catalog() {
		if !held.Has(a.ID) && a.Earned(p) {
			earned = append(earned, a)
		}
	}
	return earned
}
