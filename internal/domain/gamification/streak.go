package gamification

// Streak counts consecutive credited contributions.
//
// Advance increments unconditionally: a skipped calendar day does not reset
// the count on the ledger path. Day-based decay is an open product decision.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Advance credits one contribution and raises Longest when exceeded
func (s Streak) Advance() Streak {
	s.Current++
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return s
}
