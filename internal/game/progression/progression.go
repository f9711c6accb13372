// Package progression holds the level tables: cumulative experience thresholds
// and per-level base stats. Everything here is pure.
package progression

import (
	"errors"
	"fmt"
	"math"
)

// Unreachable is the threshold reported for levels outside the table.
// The level-up loop treats it as a hard stop.
const Unreachable = math.MaxInt

// DefaultThresholds is the built-in cumulative experience table, indexed by level-1.
var DefaultThresholds = []int{0, 20, 50, 100, 180}

// ErrInvalidTable is returned by NewTable for malformed threshold lists.
var ErrInvalidTable = errors.New("invalid experience table")

// Table maps level to the cumulative experience required to reach it.
//
// Invariant: thresholds[0] == 0 and thresholds is strictly increasing.
type Table struct {
	thresholds []int
}

// NewTable builds a Table from cumulative thresholds for levels 1..len(thresholds).
//
// Precondition: thresholds[0] == 0; each entry greater than the previous.
// Postcondition: Returns a Table or an error wrapping ErrInvalidTable.
func NewTable(thresholds []int) (*Table, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("%w: no levels", ErrInvalidTable)
	}
	if thresholds[0] != 0 {
		return nil, fmt.Errorf("%w: level 1 must require 0 experience, got %d", ErrInvalidTable, thresholds[0])
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, fmt.Errorf("%w: level %d threshold %d does not exceed level %d threshold %d",
				ErrInvalidTable, i+1, thresholds[i], i, thresholds[i-1])
		}
	}
	cp := make([]int, len(thresholds))
	copy(cp, thresholds)
	return &Table{thresholds: cp}, nil
}

// Default returns the built-in table.
func Default() *Table {
	t, err := NewTable(DefaultThresholds)
	if err != nil {
		panic("progression: default table invalid: " + err.Error())
	}
	return t
}

// ExperienceThreshold returns the cumulative experience needed to reach level.
//
// Postcondition: Returns Unreachable when level is outside [1, MaxLevel()].
func (t *Table) ExperienceThreshold(level int) int {
	if level < 1 || level > len(t.thresholds) {
		return Unreachable
	}
	return t.thresholds[level-1]
}

// MaxLevel returns the highest level with a defined threshold.
func (t *Table) MaxLevel() int {
	return len(t.thresholds)
}

// LevelFor returns the largest level whose threshold is at most xp, capped at MaxLevel.
//
// Postcondition: 1 <= result <= MaxLevel().
func (t *Table) LevelFor(xp int) int {
	level := 1
	for level < t.MaxLevel() && t.ExperienceThreshold(level+1) <= xp {
		level++
	}
	return level
}

// Stats is the set of base combat stats granted by a level.
type Stats struct {
	MaxHP   int
	Attack  int
	Defense int
}

// MaxHPForLevel returns the base maximum HP at level.
func MaxHPForLevel(level int) int { return 40 + level*10 }

// AttackForLevel returns the base attack power at level.
func AttackForLevel(level int) int { return 8 + level*2 }

// DefenseForLevel returns the base defense power at level.
func DefenseForLevel(level int) int { return 4 + level }

// StatsForLevel bundles the three growth functions.
func StatsForLevel(level int) Stats {
	return Stats{
		MaxHP:   MaxHPForLevel(level),
		Attack:  AttackForLevel(level),
		Defense: DefenseForLevel(level),
	}
}
