// Package progress holds the pure calculations shared by groups and goals:
// percentage complete, day counts, overdue detection and completion estimates.
package progress

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

var (
	hundred = decimal.NewFromInt(100)
	// Percentages are truncated to two decimal places so 99.999 never reads as complete
	percentScale int32 = 2
)

// Complete is the percentage at which a target is reached
func Complete() decimal.Decimal {
	return hundred
}

// PercentComplete returns current/target*100 clamped to [0, 100] and truncated
// to two decimal places, the precision progress is stored at. A non-positive
// target yields 0.
func PercentComplete(current, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	pct := current.Div(target).Mul(hundred)
	switch {
	case pct.IsNegative():
		return decimal.Zero
	case pct.GreaterThan(hundred):
		return hundred
	}
	return pct.Truncate(percentScale)
}

// IsComplete reports whether a percentage has reached 100
func IsComplete(percent decimal.Decimal) bool {
	return percent.GreaterThanOrEqual(hundred)
}

// DaysRemaining returns the whole days left until targetDate, rounded up, never negative
func DaysRemaining(targetDate, now time.Time) int {
	if !targetDate.After(now) {
		return 0
	}
	return int(math.Ceil(float64(targetDate.Sub(now)) / float64(day)))
}

// DaysElapsed returns the whole days since start, rounded down, never negative
func DaysElapsed(start, now time.Time) int {
	if !now.After(start) {
		return 0
	}
	return int(now.Sub(start) / day)
}

// IsOverdue reports whether the target date has passed without reaching 100%
func IsOverdue(targetDate, now time.Time, percent decimal.Decimal) bool {
	return now.After(targetDate) && !IsComplete(percent)
}

// Estimate is the input for EstimatedCompletionDate
type Estimate struct {
	Current     decimal.Decimal
	Target      decimal.Decimal
	Start       time.Time
	CompletedAt *time.Time
	Now         time.Time
}

// EstimatedCompletionDate projects when the target will be reached at the
// average daily rate observed since Start. ok is false when no estimate
// can be made: less than one day elapsed, or a non-positive rate.
func EstimatedCompletionDate(in Estimate) (time.Time, bool) {
	if IsComplete(PercentComplete(in.Current, in.Target)) {
		if in.CompletedAt != nil {
			return *in.CompletedAt, true
		}
		return in.Now, true
	}

	elapsed := DaysElapsed(in.Start, in.Now)
	if elapsed < 1 {
		return time.Time{}, false
	}
	rate := in.Current.Div(decimal.NewFromInt(int64(elapsed)))
	if !rate.IsPositive() {
		return time.Time{}, false
	}

	remaining := in.Target.Sub(in.Current)
	daysNeeded := remaining.Div(rate).Ceil().IntPart()
	return in.Now.Add(time.Duration(daysNeeded) * day), true
}
