package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/catquest/internal/game/dice"
)

func TestCheck_Boundaries(t *testing.T) {
	src := dice.NewFixedSource(0, 49, 50, 99)
	assert.True(t, dice.Check(src, "flee", 50).Success)
	assert.True(t, dice.Check(src, "flee", 50).Success)
	assert.False(t, dice.Check(src, "flee", 50).Success)
	assert.False(t, dice.Check(src, "flee", 50).Success)
}

func TestCheck_ClampsPercent(t *testing.T) {
	src := dice.NewFixedSource(0, 99)
	r := dice.Check(src, "never", -5)
	assert.Equal(t, 0, r.Percent)
	assert.False(t, r.Success)
	r = dice.Check(src, "always", 250)
	assert.Equal(t, 100, r.Percent)
	assert.True(t, r.Success)
}

func TestCheckResult_String(t *testing.T) {
	r := dice.CheckResult{Reason: "flee", Percent: 50, Roll: 37, Success: true}
	assert.Equal(t, "flee 50% → 37 success", r.String())
}

func TestFixedSource_CyclesAndReduces(t *testing.T) {
	src := dice.NewFixedSource(7, -1)
	assert.Equal(t, 2, src.Intn(5))
	assert.Equal(t, 4, src.Intn(5))
	assert.Equal(t, 7, src.Intn(10))
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSources_PanicOnNonPositive(t *testing.T) {
	for name, src := range map[string]dice.Source{
		"crypto": dice.NewCryptoSource(),
		"seeded": dice.NewSeededSource(1),
		"fixed":  dice.NewFixedSource(1),
	} {
		assert.Panics(t, func() { src.Intn(0) }, name)
	}
}

func TestCryptoSource_Property_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		v := src.Intn(n)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, n)
	})
}

func TestCheck_Property_SuccessMatchesRoll(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		roll := rapid.IntRange(0, 99).Draw(rt, "roll")
		percent := rapid.IntRange(0, 100).Draw(rt, "percent")
		r := dice.Check(dice.NewFixedSource(roll), "x", percent)
		assert.Equal(rt, roll < percent, r.Success)
	})
}

func TestRoller_LogsChecks(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(dice.NewFixedSource(10, 3), zap.New(core))

	res := r.Chance("flee", 50)
	assert.True(t, res.Success)
	assert.Equal(t, 3, r.Pick("encounter", 4))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "dice check", entries[0].Message)
	assert.Equal(t, "flee", entries[0].ContextMap()["reason"])
	assert.Equal(t, "dice pick", entries[1].Message)
}
