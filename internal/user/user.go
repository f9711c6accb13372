// Package user holds the single player profile: its record, the storage
// contract, and the live state holder the front ends observe.
package user

import (
	"context"
	"errors"
)

// BreedUnset is the stored breed value before the player has chosen one.
const BreedUnset = "null"

// MaxNameLength is the longest accepted display name, in runes.
const MaxNameLength = 32

var (
	// ErrNotFound is returned by Repository.Current when no user exists yet.
	ErrNotFound = errors.New("user not found")
	// ErrNotLoaded is returned by Service methods called before LoadOrCreate succeeded.
	ErrNotLoaded = errors.New("user not loaded")
	// ErrInvalidName is returned for blank or overlong names.
	ErrInvalidName = errors.New("invalid user name")
	// ErrInvalidBreed is returned for a blank breed.
	ErrInvalidBreed = errors.New("invalid breed")
)

// User is the persisted player profile.
//
// Invariant: Level >= 1; ExperiencePoints >= 0; CatCoins >= 0.
type User struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Level            int    `json:"level"`
	Breed            string `json:"breed"`
	ExperiencePoints int    `json:"experience_points"`
	CatCoins         int    `json:"cat_coins"`
}

// HasBreed reports whether a breed has been chosen.
func (u User) HasBreed() bool {
	return u.Breed != "" && u.Breed != BreedUnset
}

// Fields are the values used to create a user.
type Fields struct {
	Name             string
	Level            int
	Breed            string
	ExperiencePoints int
	CatCoins         int
}

// DefaultFields returns the first-run record for name.
func DefaultFields(name string) Fields {
	return Fields{Name: name, Level: 1, Breed: BreedUnset}
}

// Repository persists the canonical user record.
type Repository interface {
	// Current returns the canonical user, or ErrNotFound when none exists.
	Current(ctx context.Context) (*User, error)
	// Create inserts a user. Callers check Current first.
	Create(ctx context.Context, f Fields) (*User, error)
	// UpdateBreed sets the breed of user id.
	UpdateBreed(ctx context.Context, id int64, breed string) error
	// Update overwrites every field of u.
	Update(ctx context.Context, u *User) error
	// List returns every stored user ordered by id.
	List(ctx context.Context) ([]*User, error)
}

// Publisher fans out user changes beyond this process.
type Publisher interface {
	PublishUser(ctx context.Context, u User) error
}
