package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/catquest/internal/game/content"
)

// MonsterRepository implements content.MonsterStore on PostgreSQL.
type MonsterRepository struct {
	db *pgxpool.Pool
}

// NewMonsterRepository creates a MonsterRepository backed by the given pool.
func NewMonsterRepository(db *pgxpool.Pool) *MonsterRepository {
	return &MonsterRepository{db: db}
}

const monsterColumns = `id, name, type, image, hp, attack, defense, experience, gold, description`

const upsertMonster = `INSERT INTO monsters (` + monsterColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
	  name = EXCLUDED.name, type = EXCLUDED.type, image = EXCLUDED.image,
	  hp = EXCLUDED.hp, attack = EXCLUDED.attack, defense = EXCLUDED.defense,
	  experience = EXCLUDED.experience, gold = EXCLUDED.gold, description = EXCLUDED.description`

func scanMonster(row pgx.Row) (content.Monster, error) {
	var m content.Monster
	err := row.Scan(&m.ID, &m.Name, &m.Type, &m.Image, &m.HP, &m.Attack, &m.Defense, &m.Experience, &m.Gold, &m.Description)
	return m, err
}

// UpsertAll inserts or replaces monsters in one batched transaction.
func (r *MonsterRepository) UpsertAll(ctx context.Context, monsters []content.Monster) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, m := range monsters {
			batch.Queue(upsertMonster, m.ID, m.Name, m.Type, m.Image, m.HP, m.Attack, m.Defense, m.Experience, m.Gold, m.Description)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upserting monsters: %w", err)
		}
		return nil
	})
}

// List returns every monster ordered by id.
func (r *MonsterRepository) List(ctx context.Context) ([]content.Monster, error) {
	rows, err := r.db.Query(ctx, `SELECT `+monsterColumns+` FROM monsters ORDER BY id ASC`)
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
	m, err := scanMonster(r.db.QueryRow(ctx, `SELECT `+monsterColumns+` FROM monsters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return content.Monster{}, fmt.Errorf("monster %d: %w", id, content.ErrMonsterNotFound)
		}
		return content.Monster{}, fmt.Errorf("querying monster %d: %w", id, err)
	}
	return m, nil
}
