package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cory-johannsen/catquest/internal/game/report"
)

// ReportRepository implements report.Repository on SQLite.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a ReportRepository.
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db.SQL()}
}

// Create stores r and sets its ID and CreatedAt.
func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) error {
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO battle_reports
		   (user_id, dungeon_id, enemy, result, experience_gained, coins_gained, turns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.UserID, rep.DungeonID, rep.Enemy, rep.Result,
		rep.ExperienceGained, rep.CoinsGained, rep.Turns, toMillis(rep.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting battle report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading battle report id: %w", err)
	}
	rep.ID = id
	return nil
}

// ListRecent returns up to limit reports for userID, newest first.
func (r *ReportRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]report.Report, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, dungeon_id, enemy, result, experience_gained, coins_gained, turns, created_at
		 FROM battle_reports WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, report.NormalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle reports: %w", err)
	}
	defer rows.Close()

	out := []report.Report{}
	for rows.Next() {
		var rep report.Report
		var created int64
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.DungeonID, &rep.Enemy, &rep.Result,
			&rep.ExperienceGained, &rep.CoinsGained, &rep.Turns, &created); err != nil {
			return nil, fmt.Errorf("scanning battle report: %w", err)
		}
		rep.CreatedAt = fromMillis(created)
		out = append(out, rep)
	}
	return out, rows.Err()
}
