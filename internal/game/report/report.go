// Package report records the outcome of each finished battle.
package report

import (
	"context"
	"time"
)

// DefaultRecentLimit is the number of reports returned when no limit is given.
const DefaultRecentLimit = 20

// Report is one finished battle.
type Report struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	DungeonID        string    `json:"dungeon_id"`
	Enemy            string    `json:"enemy"`
	Result           string    `json:"result"`
	ExperienceGained int       `json:"experience_gained"`
	CoinsGained      int       `json:"coins_gained"`
	Turns            int       `json:"turns"`
	CreatedAt        time.Time `json:"created_at"`
}

// Repository persists battle reports.
type Repository interface {
	// Create stores r and fills in its ID and CreatedAt.
	Create(ctx context.Context, r *Report) error
	// ListRecent returns up to limit reports for userID, newest first.
	ListRecent(ctx context.Context, userID int64, limit int) ([]Report, error)
}

// NormalizeLimit clamps limit to [1, 100], using DefaultRecentLimit for non-positive values.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	if limit > 100 {
		return 100
	}
	return limit
}
