package relay

import "sync"

// FakeDriver records every commanded state for tests.
type FakeDriver struct {
	mu sync.Mutex

	// History holds every state pushed through Set, in order.
	History []bool

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, will be returned by Set().
	SetError error
}

// NewFakeDriver creates an empty FakeDriver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Set records the commanded state.
func (f *FakeDriver) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.History = append(f.History, on)
	return nil
}

// Last returns the most recent commanded state, or false if none.
func (f *FakeDriver) Last() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.History) == 0 {
		return false
	}
	return f.History[len(f.History)-1]
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
