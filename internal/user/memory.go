package user

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryRepository is an in-process Repository used by tests and by the
// terminal driver when no database is wanted.
type MemoryRepository struct {
	mu     sync.Mutex
	users  map[int64]User
	nextID int64
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[int64]User), nextID: 1}
}

func (r *MemoryRepository) Current(_ context.Context) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first *User
	for _, u := range r.users {
		if first == nil || u.ID < first.ID {
			cp := u
			first = &cp
		}
	}
	if first == nil {
		return nil, ErrNotFound
	}
	return first, nil
}

func (r *MemoryRepository) Create(_ context.Context, f Fields) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := User{
		ID:               r.nextID,
		Name:             f.Name,
		Level:            f.Level,
		Breed:            f.Breed,
		ExperiencePoints: f.ExperiencePoints,
		CatCoins:         f.CatCoins,
	}
	r.nextID++
	r.users[u.ID] = u
	return &u, nil
}

func (r *MemoryRepository) UpdateBreed(_ context.Context, id int64, breed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("updating breed of user %d: %w", id, ErrNotFound)
	}
	u.Breed = breed
	r.users[id] = u
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return fmt.Errorf("updating user %d: %w", u.ID, ErrNotFound)
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		cp := u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
