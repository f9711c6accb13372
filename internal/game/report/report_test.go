package report_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/catquest/internal/game/report"
)

var _ report.Repository = (*report.MemoryRepository)(nil)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, report.DefaultRecentLimit, report.NormalizeLimit(0))
	assert.Equal(t, report.DefaultRecentLimit, report.NormalizeLimit(-3))
	assert.Equal(t, 7, report.NormalizeLimit(7))
	assert.Equal(t, 100, report.NormalizeLimit(1000))
}

func TestMemoryRepository_NewestFirstPerUser(t *testing.T) {
	ctx := context.Background()
	repo := report.NewMemoryRepository()
	for i, uid := range []int64{1, 2, 1, 1} {
		require.NoError(t, repo.Create(ctx, &report.Report{UserID: uid, Turns: i}))
	}
	got, err := repo.ListRecent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Turns)
	assert.Equal(t, 2, got[1].Turns)
}

func TestNormalizeLimit_Property_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := report.NormalizeLimit(rapid.Int().Draw(rt, "limit"))
		assert.GreaterOrEqual(rt, n, 1)
		assert.LessOrEqual(rt, n, 100)
	})
}
