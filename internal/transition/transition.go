// Package transition schedules deferred visual changes (fade in, hide after
// fade out) as callbacks that can be cancelled before they fire.
package transition

import (
	"sort"
	"sync"
	"time"
)

// Handle is a pending callback.
type Handle interface {
	// Cancel stops the callback. It reports true if the callback had not yet run.
	Cancel() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	After(d time.Duration, fn func()) Handle
}

// TimerScheduler fires callbacks from time.AfterFunc and hands them to Dispatch,
// which should marshal them onto the UI goroutine (fyne.Do in the app).
type TimerScheduler struct {
	Dispatch func(func())
}

// NewTimerScheduler creates a TimerScheduler. A nil dispatch runs callbacks
// directly on the timer goroutine.
func NewTimerScheduler(dispatch func(func())) *TimerScheduler {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &TimerScheduler{Dispatch: dispatch}
}

type timerHandle struct {
	mu       sync.Mutex
	timer    *time.Timer
	canceled bool
	fired    bool
}

// After implements Scheduler.
func (ts *TimerScheduler) After(d time.Duration, fn func()) Handle {
	h := &timerHandle{}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timer = time.AfterFunc(d, func() {
		ts.Dispatch(func() {
			// The cancel check happens on the dispatch side: a timer that already
			// fired but whose callback is still queued must not run.
			h.mu.Lock()
			if h.canceled {
				h.mu.Unlock()
				return
			}
			h.fired = true
			h.mu.Unlock()
			fn()
		})
	})
	return h
}

func (h *timerHandle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.canceled || h.fired {
		return false
	}
	h.canceled = true
	h.timer.Stop()
	return true
}

// ManualScheduler is a Scheduler driven by Advance, for tests and headless use.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualHandle
}

type manualHandle struct {
	s        *ManualScheduler
	due      time.Duration
	seq      int
	fn       func()
	canceled bool
	fired    bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// After implements Scheduler.
func (ms *ManualScheduler) After(d time.Duration, fn func()) Handle {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.seq++
	h := &manualHandle{s: ms, due: ms.now + d, seq: ms.seq, fn: fn}
	ms.pending = append(ms.pending, h)
	return h
}

func (h *manualHandle) Cancel() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.canceled || h.fired {
		return false
	}
	h.canceled = true
	return true
}

// Advance moves virtual time forward and runs every callback that came due,
// in due order. Callbacks run without the scheduler lock held, so they may
// schedule or cancel further work.
func (ms *ManualScheduler) Advance(d time.Duration) {
	ms.mu.Lock()
	target := ms.now + d
	ms.mu.Unlock()

	for {
		ms.mu.Lock()
		next := ms.nextDue(target)
		if next == nil {
			ms.now = target
			ms.mu.Unlock()
			return
		}
		ms.now = next.due
		next.fired = true
		ms.mu.Unlock()
		next.fn()
	}
}

func (ms *ManualScheduler) nextDue(limit time.Duration) *manualHandle {
	live := ms.pending[:0]
	for _, h := range ms.pending {
		if !h.canceled && !h.fired {
			live = append(live, h)
		}
	}
	ms.pending = live
	sort.SliceStable(ms.pending, func(i, j int) bool {
		if ms.pending[i].due != ms.pending[j].due {
			return ms.pending[i].due < ms.pending[j].due
		}
		return ms.pending[i].seq < ms.pending[j].seq
	})
	if len(ms.pending) == 0 || ms.pending[0].due > limit {
		return nil
	}
	return ms.pending[0]
}

// Pending is the number of callbacks still waiting to run.
func (ms *ManualScheduler) Pending() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	n := 0
	for _, h := range ms.pending {
		if !h.canceled && !h.fired {
			n++
		}
	}
	return n
}
