package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/catquest/internal/game/combat"
)

func TestEngine_StartAndGet(t *testing.T) {
	e := combat.NewEngine()
	b, err := e.Start("b1", goblinSetup(), combat.DefaultOptions())
	require.NoError(t, err)

	got, err := e.Get("b1")
	require.NoError(t, err)
	assert.Same(t, b, got)
	assert.Equal(t, 1, e.Len())
}

func TestEngine_StartDuplicate(t *testing.T) {
	e := combat.NewEngine()
	_, err := e.Start("b1", goblinSetup(), combat.DefaultOptions())
	require.NoError(t, err)
	_, err = e.Start("b1", goblinSetup(), combat.DefaultOptions())
	assert.ErrorIs(t, err, combat.ErrBattleExists)
}

func TestEngine_End(t *testing.T) {
	e := combat.NewEngine()
	_, err := e.Start("b1", goblinSetup(), combat.DefaultOptions())
	require.NoError(t, err)
	e.End("b1")
	e.End("missing")
	_, err = e.Get("b1")
	assert.ErrorIs(t, err, combat.ErrBattleNotFound)
	assert.Equal(t, 0, e.Len())
}

func TestEngine_BattlesAreIndependent(t *testing.T) {
	e := combat.NewEngine()
	a, err := e.Start("a", goblinSetup(), combat.DefaultOptions())
	require.NoError(t, err)
	b, err := e.Start("b", goblinSetup(), combat.DefaultOptions())
	require.NoError(t, err)

	require.True(t, a.Submit("attack"))
	assert.Equal(t, 28, a.Snapshot().Enemy.CurrentHP)
	assert.Equal(t, 40, b.Snapshot().Enemy.CurrentHP)
}
