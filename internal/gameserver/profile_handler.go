package gameserver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/game/content"
	"github.com/cory-johannsen/catquest/internal/game/report"
	"github.com/cory-johannsen/catquest/internal/user"
)

// ErrUnknownBreed is returned when selecting a breed missing from a non-empty catalog.
var ErrUnknownBreed = errors.New("unknown breed")

// Screen names a navigation destination shared by the front ends.
type Screen string

const (
	ScreenWelcome          Screen = "welcome"
	ScreenRegistration     Screen = "user_registration"
	ScreenBreedSelection   Screen = "breed_selection"
	ScreenDungeonSelection Screen = "dungeon_selection"
)

// CombatRoute returns the destination for a battle in dungeonID fought by breedName.
func CombatRoute(dungeonID, breedName string) string {
	return "combat/" + url.PathEscape(dungeonID) + "/" + url.PathEscape(breedName)
}

// ParseCombatRoute splits a destination built by CombatRoute.
//
// Postcondition: ok is false when route is not a combat destination.
func ParseCombatRoute(route string) (dungeonID, breedName string, ok bool) {
	rest, found := strings.CutPrefix(route, "combat/")
	if !found {
		return "", "", false
	}
	d, b, found := strings.Cut(rest, "/")
	if !found {
		return "", "", false
	}
	var err error
	if dungeonID, err = url.PathUnescape(d); err != nil {
		return "", "", false
	}
	if breedName, err = url.PathUnescape(b); err != nil {
		return "", "", false
	}
	return dungeonID, breedName, true
}

// ProfileHandler serves the screens before a battle: the welcome load,
// registration, breed selection, dungeon selection, and battle history.
type ProfileHandler struct {
	users   *user.Service
	catalog *content.Catalog
	reports report.Repository
	logger  *zap.Logger
}

// NewProfileHandler creates a ProfileHandler.
//
// Precondition: users and catalog must be non-nil; reports may be nil.
func NewProfileHandler(users *user.Service, catalog *content.Catalog, reports report.Repository, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, catalog: catalog, reports: reports, logger: logger}
}

// Welcome loads or creates the user and names the screen to show next.
//
// Postcondition: On error the returned screen is ScreenWelcome.
func (h *ProfileHandler) Welcome(ctx context.Context) (user.User, Screen, error) {
	u, err := h.users.LoadOrCreate(ctx)
	if err != nil {
		return user.User{}, ScreenWelcome, err
	}
	return u, NextScreen(u), nil
}

// NextScreen is the first screen the user still has to pass.
func NextScreen(u user.User) Screen {
	if !u.HasBreed() {
		return ScreenBreedSelection
	}
	return ScreenDungeonSelection
}

// Current returns the loaded user.
func (h *ProfileHandler) Current() (user.User, bool) {
	return h.users.Current()
}

// Watch subscribes to user changes.
func (h *ProfileHandler) Watch(buf int) (<-chan user.User, func()) {
	return h.users.Watch(buf)
}

// Register renames the user.
func (h *ProfileHandler) Register(ctx context.Context, name string) (user.User, error) {
	return h.users.Register(ctx, name)
}

// Sync retries persisting the in-memory user after a failed write.
func (h *ProfileHandler) Sync(ctx context.Context) (user.User, error) {
	return h.users.Sync(ctx)
}

// Breeds lists the selectable breeds.
func (h *ProfileHandler) Breeds() []content.Breed {
	return h.catalog.Breeds()
}

// SelectBreed records name as the user's breed. When the catalog lists breeds,
// name must be one of them.
func (h *ProfileHandler) SelectBreed(ctx context.Context, name string) (user.User, error) {
	name = strings.TrimSpace(name)
	if len(h.catalog.Breeds()) > 0 {
		if _, ok := h.catalog.Breed(name); !ok {
			return user.User{}, fmt.Errorf("selecting breed %q: %w", name, ErrUnknownBreed)
		}
	}
	return h.users.SelectBreed(ctx, name)
}

// Dungeons lists the selectable dungeons.
func (h *ProfileHandler) Dungeons() []content.Dungeon {
	return h.catalog.Dungeons()
}

// Reports lists the user's most recent battles, newest first.
//
// Precondition: the user must be loaded.
func (h *ProfileHandler) Reports(ctx context.Context, limit int) ([]report.Report, error) {
	u, ok := h.users.Current()
	if !ok {
		return nil, user.ErrNotLoaded
	}
	if h.reports == nil {
		return []report.Report{}, nil
	}
	reps, err := h.reports.ListRecent(ctx, u.ID, limit)
	if err != nil {
		h.logger.Error("listing battle reports", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, err
	}
	return reps, nil
}
