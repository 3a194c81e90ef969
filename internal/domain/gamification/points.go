// Package gamification implements experience, levels, streaks and badges.
package gamification

import (
	"github.com/shopspring/decimal"
)

// ExperiencePerLevel is the experience needed to advance one level
const ExperiencePerLevel = 1000

var (
	pointsPerUnit       = decimal.NewFromInt(10)
	milestoneFlagFactor = decimal.RequireFromString("1.3")
)

// Multiplier scales the base points of a contribution
type Multiplier decimal.Decimal

// Base multipliers per contribution type
var (
	MultiplierRegular   = Multiplier(decimal.NewFromInt(1))
	MultiplierBonus     = Multiplier(decimal.RequireFromString("1.5"))
	MultiplierMilestone = Multiplier(decimal.NewFromInt(2))
	MultiplierCatchUp   = Multiplier(decimal.RequireFromString("1.2"))
	// MultiplierMilestoneFlag applies on top of the type multiplier when a
	// contribution is flagged as a milestone
	MultiplierMilestoneFlag = Multiplier(milestoneFlagFactor)
)

// ContributionPoints returns floor(amount * 10 * m1 * m2 ...).
// Multipliers compose in exact decimal arithmetic and the result is floored once.
func ContributionPoints(amount decimal.Decimal, multipliers ...Multiplier) int64 {
	if !amount.IsPositive() {
		return 0
	}
	points := amount.Mul(pointsPerUnit)
	for _, m := range multipliers {
		points = points.Mul(decimal.Decimal(m))
	}
	return points.Floor().IntPart()
}

// GoalPoints returns floor(amount * 10), the points a goal earns per contribution
func GoalPoints(amount decimal.Decimal) int64 {
	return ContributionPoints(amount)
}

// LevelFor returns floor(experience / 1000) + 1
func LevelFor(experience int64) int {
	if experience < 0 {
		return 1
	}
	return int(experience/ExperiencePerLevel) + 1
}
