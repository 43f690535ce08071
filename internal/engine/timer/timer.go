// Package timer provides the periodic-callback primitive a host offers to
// simulation components. Timers are advanced by the host frame loop and fire
// on the loop's goroutine.
package timer

import (
	"sort"
	"sync"
	"time"
)

// Handle identifies a registered timer. The zero Handle is never issued.
type Handle uint64

// IsValid reports whether h was issued by a manager.
func (h Handle) IsValid() bool {
	return h != 0
}

// Manager registers and cancels periodic callbacks.
type Manager interface {
	// SetTimer registers fn to run every rate. It returns an invalid Handle if
	// rate is not positive.
	SetTimer(fn func(), rate time.Duration) Handle
	// ResetTimer changes the rate of an active timer, keeping the time already
	// elapsed towards the next firing. It reports false for unknown handles.
	ResetTimer(h Handle, rate time.Duration) bool
	// ClearTimer cancels h. Once it returns, no later Advance calls fn. A
	// firing already picked up by an Advance running on another goroutine
	// may still complete; callers that need a hard stop guard fn themselves.
	ClearTimer(h Handle)
	// IsActive reports whether h is registered.
	IsActive(h Handle) bool
}

type entry struct {
	fn      func()
	rate    time.Duration
	elapsed time.Duration
}

// FrameTimers is a Manager driven by Advance calls from the host loop.
type FrameTimers struct {
	mu     sync.Mutex
	next   Handle
	timers map[Handle]*entry
}

var _ Manager = (*FrameTimers)(nil)

// NewFrameTimers creates an empty timer manager.
func NewFrameTimers() *FrameTimers {
	return &FrameTimers{timers: make(map[Handle]*entry)}
}

// SetTimer implements Manager.
func (m *FrameTimers) SetTimer(fn func(), rate time.Duration) Handle {
	if rate <= 0 || fn == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.timers[m.next] = &entry{fn: fn, rate: rate}
	return m.next
}

// ResetTimer implements Manager.
func (m *FrameTimers) ResetTimer(h Handle, rate time.Duration) bool {
	if rate <= 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.timers[h]
	if !ok {
		return false
	}
	e.rate = rate
	return true
}

// ClearTimer implements Manager.
func (m *FrameTimers) ClearTimer(h Handle) {
	m.mu.Lock()
	delete(m.timers, h)
	m.mu.Unlock()
}

// IsActive implements Manager.
func (m *FrameTimers) IsActive(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[h]
	return ok
}

// Active returns the number of registered timers.
func (m *FrameTimers) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves every timer forward by dt and runs the ones that are due, in
// registration order. A timer fires at most once per Advance; if dt spans
// several periods the surplus is dropped rather than replayed in a burst.
// Callbacks may set or clear timers, including their own.
func (m *FrameTimers) Advance(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}

	m.mu.Lock()
	due := make([]Handle, 0, len(m.timers))
	for h, e := range m.timers {
		e.elapsed += dt
		if e.elapsed >= e.rate {
			e.elapsed -= e.rate
			if e.elapsed >= e.rate {
				e.elapsed = 0
			}
			due = append(due, h)
		}
	}
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })

	fired := 0
	for _, h := range due {
		m.mu.Lock()
		e, ok := m.timers[h]
		m.mu.Unlock()
		// cleared by an earlier callback in this pass
		if !ok {
			continue
		}
		e.fn()
		fired++
	}
	return fired
}
