package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	stopCh  chan struct{}
	once    sync.Once
	startFn func(ctx context.Context) error
	order   *[]string
	mu      *sync.Mutex
	name    string
}

func newMockService(name string, order *[]string, mu *sync.Mutex) *mockService {
	return &mockService{stopCh: make(chan struct{}), order: order, mu: mu, name: name}
}

func (m *mockService) Start(ctx context.Context) error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn(ctx)
	}
	<-m.stopCh
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
	if m.order != nil {
		m.mu.Lock()
		*m.order = append(*m.order, m.name)
		m.mu.Unlock()
	}
	m.once.Do(func() { close(m.stopCh) })
}

func TestLifecycleStartsAndStopsInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var order []string
	var mu sync.Mutex
	svc1 := newMockService("http", &order, &mu)
	svc2 := newMockService("listener", &order, &mu)
	lc.Add("http", svc1)
	lc.Add("listener", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"listener", "http"}, order)
}

func TestLifecycleReturnsServiceFailure(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("bind: address in use")
	failing := &mockService{stopCh: make(chan struct{}), startFn: func(context.Context) error { return boom }}
	steady := newMockService("steady", nil, nil)
	lc.Add("failing", failing)
	lc.Add("steady", steady)

	err := lc.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "service failing")
	assert.True(t, steady.stopped.Load())
}

func TestLifecycleContextAwareService(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var exited atomic.Bool
	lc.Add("listener", &FuncService{StartFn: func(ctx context.Context) error {
		<-ctx.Done()
		exited.Store(true)
		return ctx.Err()
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, lc.Run(ctx))
	assert.True(t, exited.Load(), "Run waits for Start to return")
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func(context.Context) error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	assert.NoError(t, svc.Start(context.Background()))
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)

	(&FuncService{StartFn: svc.StartFn}).Stop()
}
