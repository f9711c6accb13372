package gameserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/game/content"
	"github.com/cory-johannsen/catquest/internal/game/report"
	"github.com/cory-johannsen/catquest/internal/user"
)

func newProfileHandler(t *testing.T, catalog *content.Catalog) (*ProfileHandler, *report.MemoryRepository) {
	t.Helper()
	users := user.NewService(user.NewMemoryRepository(), nil, "プレイヤー", zap.NewNop())
	reports := report.NewMemoryRepository()
	return NewProfileHandler(users, catalog, reports, zap.NewNop()), reports
}

func TestProfileHandler_Flow(t *testing.T) {
	ctx := context.Background()
	h, _ := newProfileHandler(t, testCatalog())

	_, err := h.Reports(ctx, 5)
	assert.ErrorIs(t, err, user.ErrNotLoaded)

	u, next, err := h.Welcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, "プレイヤー", u.Name)
	assert.Equal(t, ScreenBreedSelection, next)

	u, err = h.Register(ctx, "  Sawa ")
	require.NoError(t, err)
	assert.Equal(t, "Sawa", u.Name)

	assert.Len(t, h.Breeds(), 2)
	_, err = h.SelectBreed(ctx, "Calico")
	assert.ErrorIs(t, err, ErrUnknownBreed)

	u, err = h.SelectBreed(ctx, "Tama")
	require.NoError(t, err)
	assert.Equal(t, "Tama", u.Breed)
	assert.Equal(t, ScreenDungeonSelection, NextScreen(u))

	require.Len(t, h.Dungeons(), 1)
	assert.Equal(t, "first_cave", h.Dungeons()[0].ID)

	reps, err := h.Reports(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, reps)
}

func TestProfileHandler_EmptyCatalogAcceptsAnyBreed(t *testing.T) {
	ctx := context.Background()
	h, _ := newProfileHandler(t, content.NewCatalog(nil, nil, nil, zap.NewNop()))
	_, _, err := h.Welcome(ctx)
	require.NoError(t, err)

	assert.Empty(t, h.Breeds())
	assert.Empty(t, h.Dungeons())
	u, err := h.SelectBreed(ctx, "Calico")
	require.NoError(t, err)
	assert.Equal(t, "Calico", u.Breed)
}
