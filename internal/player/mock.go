// internal/player/mock.go
package player

import (
	"sync"
	"time"
)

type pendingSeek struct {
	pos  time.Duration
	done func(bool)
}

// Mock is a test double for Player.
//
// Seek completions are held until CompleteSeeks is called, unless
// SetAutoCompleteSeeks(true) was used, in which case each completion runs
// on its own goroutine.
type Mock struct {
	mu           sync.Mutex
	state        State
	locator      string
	rate         float64
	position     time.Duration
	duration     time.Duration
	durations    map[string]time.Duration
	loadErr      error
	loadCalls    []string
	rateCalls    []float64
	seekCalls    []time.Duration
	stopCalls    int
	pending      []pendingSeek
	autoComplete bool
	finishedCh   chan struct{}
	closed       bool
}

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{
		state:      Stopped,
		durations:  make(map[string]time.Duration),
		finishedCh: make(chan struct{}, 1),
	}
}

func (m *Mock) Load(locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls = append(m.loadCalls, locator)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.locator = locator
	m.state = Paused
	m.rate = 0
	m.position = 0
	if d, ok := m.durations[locator]; ok {
		m.duration = d
	}
	return nil
}

func (m *Mock) Locator() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locator
}

func (m *Mock) SetRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateCalls = append(m.rateCalls, rate)
	m.rate = rate
	if m.state != Stopped {
		m.state = stateForRate(rate)
	}
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Seek(pos, _, _ time.Duration, done func(bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos)
	m.position = pos
	if done == nil {
		return
	}
	if m.autoComplete {
		go done(true)
		return
	}
	m.pending = append(m.pending, pendingSeek{pos: pos, done: done})
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.state = Stopped
	m.locator = ""
	m.position = 0
}

func (m *Mock) FinishedChan() <-chan struct{} {
	return m.finishedCh
}

func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.state = Stopped
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

// SetDurationFor sets the duration reported after loading locator.
func (m *Mock) SetDurationFor(locator string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[locator] = d
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) SetAutoCompleteSeeks(auto bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoComplete = auto
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *Mock) RateCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.rateCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// PendingSeeks returns how many seek completions are waiting.
func (m *Mock) PendingSeeks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// CompleteSeeks delivers every pending seek completion with ok, in the
// order the seeks were issued. Returns the number delivered.
func (m *Mock) CompleteSeeks(ok bool) int {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, p := range pending {
		p.done(ok)
	}
	return len(pending)
}

// SimulateFinished simulates the loaded source reaching its end.
func (m *Mock) SimulateFinished() {
	select {
	case m.finishedCh <- struct{}{}:
	default:
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
