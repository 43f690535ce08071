package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSetTimerRejectsNonPositiveRate(t *testing.T) {
	m := NewFrameTimers()

	for _, rate := range []time.Duration{0, -time.Second} {
		if h := m.SetTimer(func() {}, rate); h.IsValid() {
			t.Errorf("rate %v: expected invalid handle, got %d", rate, h)
		}
	}
	if h := m.SetTimer(nil, time.Second); h.IsValid() {
		t.Error("nil callback accepted")
	}
	if m.Active() != 0 {
		t.Errorf("expected no active timers, got %d", m.Active())
	}
}

func TestAdvanceFiresAtRate(t *testing.T) {
	m := NewFrameTimers()
	calls := 0
	h := m.SetTimer(func() { calls++ }, 100*time.Millisecond)

	frame := 16 * time.Millisecond
	for i := 0; i < 60; i++ { // 960ms
		m.Advance(frame)
	}
	if calls != 9 {
		t.Errorf("expected 9 firings in 960ms at 100ms, got %d", calls)
	}
	if !m.IsActive(h) {
		t.Error("looping timer should stay active")
	}
}

func TestAdvanceDropsSurplusPeriods(t *testing.T) {
	m := NewFrameTimers()
	calls := 0
	m.SetTimer(func() { calls++ }, 10*time.Millisecond)

	if fired := m.Advance(time.Second); fired != 1 {
		t.Errorf("expected a single firing for a long frame, got %d", fired)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestClearTimer(t *testing.T) {
	m := NewFrameTimers()
	calls := 0
	h := m.SetTimer(func() { calls++ }, time.Millisecond)

	m.ClearTimer(h)
	m.Advance(time.Second)

	if calls != 0 {
		t.Errorf("cleared timer fired %d times", calls)
	}
	if m.IsActive(h) {
		t.Error("cleared timer still active")
	}
	// clearing twice or clearing the zero handle is harmless
	m.ClearTimer(h)
	m.ClearTimer(0)
}

func TestClearFromEarlierCallback(t *testing.T) {
	m := NewFrameTimers()
	var second Handle
	secondCalls := 0

	m.SetTimer(func() { m.ClearTimer(second) }, time.Millisecond)
	second = m.SetTimer(func() { secondCalls++ }, time.Millisecond)

	m.Advance(time.Millisecond)
	if secondCalls != 0 {
		t.Errorf("timer cleared earlier in the same pass still fired")
	}
}

func TestClearFromOtherGoroutine(t *testing.T) {
	m := NewFrameTimers()
	var calls atomic.Int32
	h := m.SetTimer(func() { calls.Add(1) }, time.Millisecond)

	m.Advance(time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.ClearTimer(h)
	}()
	wg.Wait()

	for i := 0; i < 3; i++ {
		m.Advance(time.Millisecond)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if m.IsActive(h) {
		t.Error("timer still active after ClearTimer")
	}
}

func TestCallbackCanReplaceItself(t *testing.T) {
	m := NewFrameTimers()
	var h Handle
	calls := 0
	h = m.SetTimer(func() {
		calls++
		m.ClearTimer(h)
		h = m.SetTimer(func() { calls += 10 }, time.Millisecond)
	}, time.Millisecond)

	m.Advance(time.Millisecond)
	if calls != 1 || m.Active() != 1 {
		t.Fatalf("calls=%d active=%d", calls, m.Active())
	}
	m.Advance(time.Millisecond)
	if calls != 11 {
		t.Errorf("replacement timer did not fire, calls=%d", calls)
	}
}

func TestResetTimerKeepsElapsed(t *testing.T) {
	m := NewFrameTimers()
	calls := 0
	h := m.SetTimer(func() { calls++ }, time.Second)

	m.Advance(600 * time.Millisecond)
	if !m.ResetTimer(h, 500*time.Millisecond) {
		t.Fatal("ResetTimer failed on active handle")
	}
	// 600ms already elapsed >= new 500ms rate
	m.Advance(0)
	if calls != 1 {
		t.Errorf("expected immediate firing after shortening the rate, got %d", calls)
	}

	if m.ResetTimer(h, 0) {
		t.Error("ResetTimer accepted zero rate")
	}
	m.ClearTimer(h)
	if m.ResetTimer(h, time.Second) {
		t.Error("ResetTimer succeeded on cleared handle")
	}
}

func TestAdvanceOrder(t *testing.T) {
	m := NewFrameTimers()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		m.SetTimer(func() { order = append(order, i) }, time.Millisecond)
	}
	m.Advance(time.Millisecond)
	for i, v := range order {
		if v != i {
			t.Fatalf("timers fired out of registration order: %v", order)
		}
	}
}

func TestAdvanceNegativeDelta(t *testing.T) {
	m := NewFrameTimers()
	calls := 0
	m.SetTimer(func() { calls++ }, 10*time.Millisecond)

	m.Advance(-time.Hour)
	m.Advance(9 * time.Millisecond)
	if calls != 0 {
		t.Errorf("negative delta should not count as elapsed time")
	}
}
