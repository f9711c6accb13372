package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/catquest/internal/game/report"
	"github.com/cory-johannsen/catquest/internal/user"
)

// ReportRepository implements report.Repository on PostgreSQL.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a ReportRepository backed by the given pool.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create stores rep and sets its ID and CreatedAt.
//
// Postcondition: Returns an error wrapping user.ErrNotFound when rep.UserID does not exist.
func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO battle_reports
		   (user_id, dungeon_id, enemy, result, experience_gained, coins_gained, turns)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		rep.UserID, rep.DungeonID, rep.Enemy, rep.Result, rep.ExperienceGained, rep.CoinsGained, rep.Turns,
	).Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("battle report for user %d: %w", rep.UserID, user.ErrNotFound)
		}
		return fmt.Errorf("inserting battle report: %w", err)
	}
	return nil
}

// ListRecent returns up to limit reports for userID, newest first.
func (r *ReportRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]report.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, dungeon_id, enemy, result, experience_gained, coins_gained, turns, created_at
		 FROM battle_reports WHERE user_id = $1 ORDER BY id DESC LIMIT $2`,
		userID, report.NormalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle reports: %w", err)
	}
	defer rows.Close()

	out := []report.Report{}
	for rows.Next() {
		var rep report.Report
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.DungeonID, &rep.Enemy, &rep.Result,
			&rep.ExperienceGained, &rep.CoinsGained, &rep.Turns, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning battle report: %w", err)
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
