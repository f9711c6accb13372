package observe_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/catquest/internal/observe"
)

func TestSubject_CurrentValueFirst(t *testing.T) {
	s := observe.NewSubject(1)
	ch, cancel := s.Subscribe(4)
	defer cancel()

	assert.Equal(t, 1, <-ch)
	s.Publish(2)
	s.Publish(3)
	assert.Equal(t, 2, <-ch)
	assert.Equal(t, 3, <-ch)
	assert.Equal(t, 3, s.Value())
}

func TestSubject_CancelClosesChannel(t *testing.T) {
	s := observe.NewSubject("a")
	ch, cancel := s.Subscribe(1)
	<-ch
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, s.Subscribers())
}

func TestSubject_SlowSubscriberSeesLatest(t *testing.T) {
	s := observe.NewSubject(0)
	ch, cancel := s.Subscribe(1)
	defer cancel()
	for i := 1; i <= 10; i++ {
		s.Publish(i)
	}
	assert.Equal(t, 10, <-ch)
}

func TestSubject_Close(t *testing.T) {
	s := observe.NewSubject(0)
	ch, _ := s.Subscribe(2)
	s.Close()
	<-ch
	_, ok := <-ch
	assert.False(t, ok)

	late, cancel := s.Subscribe(1)
	defer cancel()
	_, ok = <-late
	assert.False(t, ok)

	s.Publish(5)
	assert.Equal(t, 0, s.Value())
}

func TestSubject_ConcurrentPublish(t *testing.T) {
	s := observe.NewSubject(0)
	ch, cancel := s.Subscribe(8)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			s.Publish(v)
		}(i)
	}
	wg.Wait()
	require.Equal(t, 1, s.Subscribers())
	assert.NotEmpty(t, ch)
}

func TestSubject_Property_LastPublishedWins(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOfN(rapid.Int(), 1, 50).Draw(rt, "values")
		buf := rapid.IntRange(1, 8).Draw(rt, "buf")
		s := observe.NewSubject(0)
		ch, cancel := s.Subscribe(buf)
		defer cancel()
		for _, v := range values {
			s.Publish(v)
		}
		var last int
		for len(ch) > 0 {
			last = <-ch
		}
		assert.Equal(rt, values[len(values)-1], last)
		assert.Equal(rt, values[len(values)-1], s.Value())
	})
}
