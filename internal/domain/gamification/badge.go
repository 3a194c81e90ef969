package gamification

import (
	"time"
)

// Badge is an earned achievement, unique by Name within a user's collection
type Badge struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	EarnedAt    time.Time `json:"earned_at"`
}

// BadgeSet is an append-only list of badges
type BadgeSet []Badge

// Has reports whether a badge with the given name is held
func (s BadgeSet) Has(name string) bool {
	for _, b := range s {
		if b.Name == name {
			return true
		}
	}
	return false
}

// Award appends the badge unless one with the same name is already held.
// It returns the resulting set and whether the badge was newly added.
func (s BadgeSet) Award(b Badge) (BadgeSet, bool) {
	if b.Name == "" || s.Has(b.Name) {
		return s, false
	}
	if b.EarnedAt.IsZero() {
		b.EarnedAt = time.Now()
	}
	return append(s, b), true
}
