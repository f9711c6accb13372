package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/catquest/internal/user"
)

// UserRepository implements user.Repository on SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a UserRepository.
//
// Precondition: db must be an open, migrated handle.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SQL()}
}

const userColumns = `id, name, level, breed, experience_points, cat_coins`

func scanUser(row interface{ Scan(...any) error }) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Name, &u.Level, &u.Breed, &u.ExperiencePoints, &u.CatCoins); err != nil {
		return nil, err
	}
	return &u, nil
}

// Current returns the lowest-id user.
//
// Postcondition: Returns user.ErrNotFound when the table is empty.
func (r *UserRepository) Current(ctx context.Context) (*user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id ASC LIMIT 1`))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("querying current user: %w", err)
	}
	return u, nil
}

// Create inserts a user and returns it with its ID set.
func (r *UserRepository) Create(ctx context.Context, f user.Fields) (*user.User, error) {
	now := toMillis(time.Now())
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, level, breed, experience_points, cat_coins, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.Name, f.Level, f.Breed, f.ExperiencePoints, f.CatCoins, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}
	return &user.User{
		ID:               id,
		Name:             f.Name,
		Level:            f.Level,
		Breed:            f.Breed,
		ExperiencePoints: f.ExperiencePoints,
		CatCoins:         f.CatCoins,
	}, nil
}

// UpdateBreed sets the breed of user id.
//
// Postcondition: Returns user.ErrNotFound when no row matched.
func (r *UserRepository) UpdateBreed(ctx context.Context, id int64, breed string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET breed = ?, updated_at = ? WHERE id = ?`,
		breed, toMillis(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating breed: %w", err)
	}
	return expectOneRow(res, id)
}

// Update overwrites every mutable column of u.
//
// Postcondition: Returns user.ErrNotFound when no row matched.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, level = ?, breed = ?, experience_points = ?, cat_coins = ?, updated_at = ?
		 WHERE id = ?`,
		u.Name, u.Level, u.Breed, u.ExperiencePoints, u.CatCoins, toMillis(time.Now()), u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return expectOneRow(res, u.ID)
}

// List returns every user ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, user.ErrNotFound)
	}
	return nil
}
