package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/catquest/internal/user"
)

// UserRepository provides user persistence operations.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a UserRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, level, breed, experience_points, cat_coins`

func scanUser(row pgx.Row) (*user.User, error) {
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
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC LIMIT 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("querying current user: %w", err)
	}
	return u, nil
}

// Create inserts a user.
//
// Postcondition: Returns the created user with ID set.
func (r *UserRepository) Create(ctx context.Context, f user.Fields) (*user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (name, level, breed, experience_points, cat_coins)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		f.Name, f.Level, f.Breed, f.ExperiencePoints, f.CatCoins,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

// UpdateBreed sets the breed of user id.
//
// Postcondition: Returns user.ErrNotFound when no row matched.
func (r *UserRepository) UpdateBreed(ctx context.Context, id int64, breed string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET breed = $1, updated_at = NOW() WHERE id = $2`, breed, id)
	if err != nil {
		return fmt.Errorf("updating breed: %w", err)
	}
	return expectOneRow(tag, id)
}

// Update overwrites every mutable column of u.
//
// Postcondition: Returns user.ErrNotFound when no row matched.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET name = $1, level = $2, breed = $3, experience_points = $4, cat_coins = $5, updated_at = NOW()
		 WHERE id = $6`,
		u.Name, u.Level, u.Breed, u.ExperiencePoints, u.CatCoins, u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return expectOneRow(tag, u.ID)
}

// List returns every user ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
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

func expectOneRow(tag pgconn.CommandTag, id int64) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, user.ErrNotFound)
	}
	return nil
}
