package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/game/progression"
	"github.com/cory-johannsen/catquest/internal/observe"
)

// Outcome is the progress a finished battle commits to the profile.
// Gains are deltas so battles fought side by side all count.
type Outcome struct {
	// Level is the level the player reached in the battle.
	Level            int
	ExperienceGained int
	CoinsGained      int
}

// Service owns the in-memory copy of the user and keeps observers current.
//
// Persistence failures are logged and returned. The in-memory value is kept
// as the visible state and is not rolled back.
type Service struct {
	mu          sync.Mutex
	repo        Repository
	pub         Publisher
	defaultName string
	logger      *zap.Logger
	loaded      bool
	table       *progression.Table
	subject     *observe.Subject[User]
}

// NewService creates a Service.
//
// Precondition: repo and logger must be non-nil; pub may be nil.
func NewService(repo Repository, pub Publisher, defaultName string, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		pub:         pub,
		defaultName: defaultName,
		logger:      logger,
		table:       progression.Default(),
		subject:     observe.NewSubject(User{}),
	}
}

// UseTable sets the experience table used to derive levels from experience.
//
// Precondition: t must be non-nil; call before the service is shared.
func (s *Service) UseTable(t *progression.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
}

// LoadOrCreate reads the canonical user, creating the default record on first run.
//
// Postcondition: On success the returned user is also the current value.
func (s *Service) LoadOrCreate(ctx context.Context) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.repo.Current(ctx)
	switch {
	case err == nil:
		s.logger.Debug("user loaded", zap.Int64("user_id", u.ID), zap.String("name", u.Name))
	case errors.Is(err, ErrNotFound):
		s.logger.Info("no user found, creating default", zap.String("name", s.defaultName))
		u, err = s.repo.Create(ctx, DefaultFields(s.defaultName))
		if err != nil {
			s.logger.Error("creating default user", zap.Error(err))
			return User{}, fmt.Errorf("creating default user: %w", err)
		}
	default:
		s.logger.Error("loading user", zap.Error(err))
		return User{}, fmt.Errorf("loading user: %w", err)
	}

	s.loaded = true
	s.set(ctx, *u)
	return *u, nil
}

// Current returns a snapshot of the in-memory user.
//
// Postcondition: ok is false until LoadOrCreate has succeeded.
func (s *Service) Current() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subject.Value(), s.loaded
}

// Watch subscribes to user changes; the current value is delivered first.
func (s *Service) Watch(buf int) (<-chan User, func()) {
	return s.subject.Subscribe(buf)
}

// Register sets the display name.
//
// Precondition: name is non-blank and at most MaxNameLength runes.
func (s *Service) Register(ctx context.Context, name string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return s.mutate(ctx, "register", func(u *User) error {
		u.Name = name
		return s.repo.Update(ctx, u)
	})
}

// SelectBreed records the chosen breed.
//
// Precondition: breed is non-blank.
func (s *Service) SelectBreed(ctx context.Context, breed string) (User, error) {
	breed = strings.TrimSpace(breed)
	if breed == "" {
		return User{}, ErrInvalidBreed
	}
	return s.mutate(ctx, "select breed", func(u *User) error {
		u.Breed = breed
		return s.repo.UpdateBreed(ctx, u.ID, breed)
	})
}

// ApplyOutcome commits battle progress. Experience and coins are added to the
// current totals; the level never drops and covers the new experience total.
//
// Postcondition: ExperiencePoints and CatCoins never decrease.
func (s *Service) ApplyOutcome(ctx context.Context, o Outcome) (User, error) {
	return s.mutate(ctx, "apply outcome", func(u *User) error {
		u.ExperiencePoints += max(0, o.ExperienceGained)
		u.CatCoins += max(0, o.CoinsGained)
		u.Level = max(u.Level, o.Level, s.table.LevelFor(u.ExperiencePoints))
		return s.repo.Update(ctx, u)
	})
}

// Sync writes the in-memory user back to the repository. It is the manual
// retry after a failed write.
func (s *Service) Sync(ctx context.Context) (User, error) {
	return s.mutate(ctx, "sync", func(u *User) error {
		return s.repo.Update(ctx, u)
	})
}

// Adopt replaces the in-memory user with u as received from another process.
// Nothing is persisted or republished.
//
// Postcondition: Returns true iff a user is loaded and u has the same ID.
func (s *Service) Adopt(u User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || s.subject.Value().ID != u.ID {
		return false
	}
	s.subject.Publish(u)
	s.logger.Debug("adopted remote user change", zap.Int64("user_id", u.ID))
	return true
}

// mutate applies fn to a copy of the current user, publishes the result
// whether or not persistence succeeded, and returns the persistence error.
func (s *Service) mutate(ctx context.Context, op string, fn func(u *User) error) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return User{}, ErrNotLoaded
	}

	u := s.subject.Value()
	err := fn(&u)
	s.set(ctx, u)
	if err != nil {
		s.logger.Error("persisting user", zap.String("op", op), zap.Int64("user_id", u.ID), zap.Error(err))
		return u, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Debug("user updated", zap.String("op", op), zap.Int64("user_id", u.ID))
	return u, nil
}

// set must be called with s.mu held.
func (s *Service) set(ctx context.Context, u User) {
	s.subject.Publish(u)
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishUser(ctx, u); err != nil {
		s.logger.Warn("publishing user change", zap.Int64("user_id", u.ID), zap.Error(err))
	}
}

// Close ends every Watch subscription.
func (s *Service) Close() {
	s.subject.Close()
}
