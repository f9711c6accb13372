// Package dice provides the randomness abstraction used by the combat engine
// for flee checks and encounter selection.
package dice

import "fmt"

// Source is the randomness provider for all game rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// CheckResult records a single percentile check.
//
// Postcondition: Success == (Roll < Percent).
type CheckResult struct {
	Reason  string
	Percent int
	Roll    int
	Success bool
}

// String returns an audit line such as "flee 50% → 37 success".
func (r CheckResult) String() string {
	outcome := "failure"
	if r.Success {
		outcome = "success"
	}
	return fmt.Sprintf("%s %d%% → %d %s", r.Reason, r.Percent, r.Roll, outcome)
}

// Check performs a percentile check against src: a roll in [0, 100) succeeds
// when it is below percent. Percent values are clamped to [0, 100].
//
// Precondition: src must be non-nil.
// Postcondition: percent <= 0 never succeeds; percent >= 100 always succeeds.
func Check(src Source, reason string, percent int) CheckResult {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	roll := src.Intn(100)
	return CheckResult{Reason: reason, Percent: percent, Roll: roll, Success: roll < percent}
}
