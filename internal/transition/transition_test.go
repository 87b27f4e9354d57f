package transition

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualSchedulerRunsInDueOrder(t *testing.T) {
	ms := NewManualScheduler()
	var got []string
	ms.After(200*time.Millisecond, func() { got = append(got, "hide") })
	ms.After(10*time.Millisecond, func() { got = append(got, "fade") })
	ms.After(10*time.Millisecond, func() { got = append(got, "fit") })

	ms.Advance(5 * time.Millisecond)
	assert.Empty(t, got)
	assert.Equal(t, 3, ms.Pending())

	ms.Advance(5 * time.Millisecond)
	assert.Equal(t, []string{"fade", "fit"}, got)

	ms.Advance(time.Second)
	assert.Equal(t, []string{"fade", "fit", "hide"}, got)
	assert.Zero(t, ms.Pending())
}

func TestManualSchedulerCancel(t *testing.T) {
	ms := NewManualScheduler()
	ran := false
	h := ms.After(10*time.Millisecond, func() { ran = true })

	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel(), "second cancel reports nothing pending")

	ms.Advance(time.Second)
	assert.False(t, ran)
}

func TestManualSchedulerCancelAfterFire(t *testing.T) {
	ms := NewManualScheduler()
	h := ms.After(time.Millisecond, func() {})
	ms.Advance(time.Millisecond)
	assert.False(t, h.Cancel())
}

func TestManualSchedulerNestedSchedule(t *testing.T) {
	ms := NewManualScheduler()
	var got []int
	ms.After(10*time.Millisecond, func() {
		got = append(got, 1)
		ms.After(10*time.Millisecond, func() { got = append(got, 2) })
	})
	ms.Advance(15 * time.Millisecond)
	assert.Equal(t, []int{1}, got)
	ms.Advance(5 * time.Millisecond)
	assert.Equal(t, []int{1, 2}, got)
}

func TestTimerSchedulerFires(t *testing.T) {
	ts := NewTimerScheduler(nil)
	done := make(chan struct{})
	ts.After(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not fire")
	}
}

func TestTimerSchedulerCancel(t *testing.T) {
	var mu sync.Mutex
	ran := false
	ts := NewTimerScheduler(nil)
	h := ts.After(50*time.Millisecond, func() {
		mu.Lock()
		ran = true
		mu.Unlock()
	})
	require.True(t, h.Cancel())

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, ran)
}

func TestTimerSchedulerCancelWhileQueued(t *testing.T) {
	// Dispatch holds callbacks until released, like a busy UI event queue.
	queue := make(chan func(), 1)
	ts := NewTimerScheduler(func(fn func()) { queue <- fn })

	ran := false
	h := ts.After(time.Millisecond, func() { ran = true })

	var queued func()
	select {
	case queued = <-queue:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never dispatched")
	}

	assert.True(t, h.Cancel())
	queued()
	assert.False(t, ran)
}
