package params

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Console variable names.
const (
	VarSmoothTime   = "sdn.SmoothTime"
	VarDayLength    = "sdn.DayLength"
	VarSeasonLength = "sdn.SeasonLength"
	VarTimeStep     = "sdn.TimeStep"
	VarLatitude     = "sdn.Latitude"
	VarAxialTilt    = "sdn.AxialTilt"
	VarUpdateMode   = "sdn.UpdateMode"
)

// ErrUnknownVariable is returned by Set for names the store does not own.
var ErrUnknownVariable = errors.New("unknown variable")

// Listener receives the previous and the new snapshot after a change.
type Listener func(prev, next Snapshot)

// Store owns the current parameter values.
type Store struct {
	mu        sync.RWMutex
	current   Snapshot
	listeners map[int]Listener
	nextID    int

	// serializes notification so listeners observe changes in order
	notifyMu sync.Mutex
}

// NewStore creates a store holding initial.
func NewStore(initial Snapshot) *Store {
	return &Store{
		current:   initial,
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the current values.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Update applies fn to a copy of the current snapshot and publishes the result.
// Listeners run synchronously on the caller's goroutine, outside the store lock,
// and must not call Update themselves.
// Update reports whether anything changed.
func (s *Store) Update(fn func(*Snapshot)) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	prev := s.current
	next := prev
	fn(&next)
	if next == prev {
		s.mu.Unlock()
		return false
	}
	s.current = next
	listeners := s.sortedListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
	return true
}

func (s *Store) sortedListeners() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

// Set parses value and assigns it to the named console variable. Range checks
// are left to the consumer; only syntax errors are reported here.
func (s *Store) Set(name, value string) error {
	value = strings.TrimSpace(value)

	var apply func(*Snapshot)
	switch name {
	case VarSmoothTime:
		smooth, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		apply = func(p *Snapshot) {
			if smooth {
				p.UpdateMode = Continuous
			} else {
				p.UpdateMode = Stepped
			}
		}
	case VarUpdateMode:
		mode := ParseUpdateMode(value)
		apply = func(p *Snapshot) { p.UpdateMode = mode }
	case VarTimeStep:
		d, err := parseSeconds(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		apply = func(p *Snapshot) { p.SteppedTimeRate = d }
	case VarDayLength, VarSeasonLength, VarLatitude, VarAxialTilt:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		apply = func(p *Snapshot) { *floatField(p, name) = f }
	default:
		return fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}

	s.Update(apply)
	return nil
}

// Get formats the named console variable.
func (s *Store) Get(name string) (string, error) {
	p := s.Snapshot()
	switch name {
	case VarSmoothTime:
		if p.UpdateMode == Stepped {
			return "0", nil
		}
		return "1", nil
	case VarUpdateMode:
		return string(p.UpdateMode), nil
	case VarTimeStep:
		return strconv.FormatFloat(p.SteppedTimeRate.Seconds(), 'g', -1, 64), nil
	case VarDayLength, VarSeasonLength, VarLatitude, VarAxialTilt:
		return strconv.FormatFloat(*floatField(&p, name), 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
}

// Variables lists the console variable names in display order.
func Variables() []string {
	return []string{
		VarSmoothTime, VarUpdateMode, VarTimeStep,
		VarDayLength, VarSeasonLength, VarLatitude, VarAxialTilt,
	}
}

func floatField(p *Snapshot, name string) *float64 {
	switch name {
	case VarDayLength:
		return &p.LengthOfDay
	case VarSeasonLength:
		return &p.SeasonLength
	case VarLatitude:
		return &p.Latitude
	default:
		return &p.AxialTilt
	}
}

// parseSeconds accepts a bare number of seconds ("0.5") or a Go duration ("500ms").
func parseSeconds(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}
