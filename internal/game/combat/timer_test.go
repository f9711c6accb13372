package combat_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cory-johannsen/catquest/internal/game/combat"
)

func TestTurnTimer_Fires(t *testing.T) {
	var called atomic.Int32
	tt := combat.NewTurnTimer()
	tt.Schedule(20*time.Millisecond, func() {
		called.Add(1)
	})
	time.Sleep(60 * time.Millisecond)
	if called.Load() != 1 {
		t.Fatalf("expected callback called once, got %d", called.Load())
	}
}

func TestTurnTimer_Stop_PreventsCallback(t *testing.T) {
	var called atomic.Int32
	tt := combat.NewTurnTimer()
	tt.Schedule(50*time.Millisecond, func() {
		called.Add(1)
	})
	tt.Stop()
	time.Sleep(80 * time.Millisecond)
	if called.Load() != 0 {
		t.Fatalf("expected callback not called, got %d", called.Load())
	}
}

func TestTurnTimer_Reschedule_ReplacesPending(t *testing.T) {
	var first, second atomic.Int32
	tt := combat.NewTurnTimer()
	tt.Schedule(30*time.Millisecond, func() { first.Add(1) })
	tt.Schedule(30*time.Millisecond, func() { second.Add(1) })
	time.Sleep(80 * time.Millisecond)
	if first.Load() != 0 || second.Load() != 1 {
		t.Fatalf("expected only the second callback, got first=%d second=%d", first.Load(), second.Load())
	}
}

func TestTurnTimer_StopIdempotent(t *testing.T) {
	tt := combat.NewTurnTimer()
	tt.Stop()
	tt.Schedule(50*time.Millisecond, func() {})
	tt.Stop()
	tt.Stop()
}
