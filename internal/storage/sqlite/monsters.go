package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cory-johannsen/catquest/internal/game/content"
)

// MonsterRepository implements content.MonsterStore on SQLite.
type MonsterRepository struct {
	db *sql.DB
}

// NewMonsterRepository creates a MonsterRepository.
func NewMonsterRepository(db *DB) *MonsterRepository {
	return &MonsterRepository{db: db.SQL()}
}

const monsterColumns = `id, name, type, image, hp, attack, defense, experience, gold, description`

func scanMonster(row interface{ Scan(...any) error }) (content.Monster, error) {
	var m content.Monster
	err := row.Scan(&m.ID, &m.Name, &m.Type, &m.Image, &m.HP, &m.Attack, &m.Defense, &m.Experience, &m.Gold, &m.Description)
	return m, err
}

// UpsertAll inserts or replaces monsters in one transaction.
func (r *MonsterRepository) UpsertAll(ctx context.Context, monsters []content.Monster) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO monsters (`+monsterColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name, type = excluded.type, image = excluded.image,
		   hp = excluded.hp, attack = excluded.attack, defense = excluded.defense,
		   experience = excluded.experience, gold = excluded.gold, description = excluded.description`)
	if err != nil {
		return fmt.Errorf("preparing monster upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range monsters {
		if _, err := stmt.ExecContext(ctx, m.ID, m.Name, m.Type, m.Image, m.HP, m.Attack, m.Defense, m.Experience, m.Gold, m.Description); err != nil {
			return fmt.Errorf("upserting monster %d: %w", m.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing monsters: %w", err)
	}
	return nil
}

// List returns every monster ordered by id.
func (r *MonsterRepository) List(ctx context.Context) ([]content.Monster, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+monsterColumns+` FROM monsters ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing monsters: %w", err)
	}
	defer rows.Close()

	out := []content.Monster{}
	for rows.Next() {
		m, err := scanMonster(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning monster: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Get returns the monster with id.
//
// Postcondition: Returns content.ErrMonsterNotFound when absent.
func (r *MonsterRepository) Get(ctx context.Context, id int) (content.Monster, error) {
	m, err := scanMonster(r.db.QueryRowContext(ctx, `SELECT `+monsterColumns+` FROM monsters WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.Monster{}, fmt.Errorf("monster %d: %w", id, content.ErrMonsterNotFound)
		}
		return content.Monster{}, fmt.Errorf("querying monster %d: %w", id, err)
	}
	return m, nil
}
