// internal/state/mock.go
package state

import (
	"context"
	"sync"

	"github.com/llehouerou/reprise/internal/playback"
)

// Mock is a test double for Manager.
type Mock struct {
	mu       sync.Mutex
	snapshot *playback.Snapshot
	saves    []playback.Snapshot
	loadErr  error
	saveErr  error
	block    chan struct{}
	closed   bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) LoadSnapshot(_ context.Context) (*playback.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snapshot == nil {
		return nil, nil
	}
	snap := *m.snapshot
	return &snap, nil
}

func (m *Mock) SaveSnapshot(ctx context.Context, snap playback.Snapshot) error {
	m.mu.Lock()
	block := m.block
	m.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves = append(m.saves, snap)
	m.snapshot = &snap
	return nil
}

func (m *Mock) ClearSnapshot(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetSnapshot(snap *playback.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snap
}

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// BlockSaves makes SaveSnapshot wait until the returned function is called.
func (m *Mock) BlockSaves() (release func()) {
	ch := make(chan struct{})
	m.mu.Lock()
	m.block = ch
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.block = nil
			m.mu.Unlock()
			close(ch)
		})
	}
}

// Saves returns every snapshot written so far.
func (m *Mock) Saves() []playback.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]playback.Snapshot(nil), m.saves...)
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
