package application

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownTicksToZero(t *testing.T) {
	countdown := NewCountdown(3, 5*time.Millisecond)

	var (
		mu    sync.Mutex
		ticks []int
	)
	done := make(chan struct{})
	countdown.Start(func(remaining int) {
		mu.Lock()
		defer mu.Unlock()
		ticks = append(ticks, remaining)
	}, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countdown did not reach zero")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.False(t, countdown.Running())
}

func TestCountdownCancelResetsAndSuppressesZero(t *testing.T) {
	countdown := NewCountdown(3, 20*time.Millisecond)

	var zero atomic.Bool
	countdown.Start(nil, func() { zero.Store(true) })
	require.True(t, countdown.Running())

	countdown.Cancel()
	time.Sleep(100 * time.Millisecond)

	assert.False(t, zero.Load())
	assert.False(t, countdown.Running())
	assert.Equal(t, 3, countdown.Remaining())
}

func TestCountdownStartReplacesRunningCountdown(t *testing.T) {
	countdown := NewCountdown(2, 10*time.Millisecond)

	var first, second atomic.Int32
	countdown.Start(nil, func() { first.Add(1) })
	countdown.Start(nil, func() { second.Add(1) })

	require.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}
