package sensor

import (
	"sync"
	"time"

	"github.com/autogarden/thermctl/internal/climate"
)

// FakeReader is a test double that returns a settable temperature.
type FakeReader struct {
	mu     sync.Mutex
	tempF  float64
	valid  bool
	closed bool
}

// NewFakeReader creates a FakeReader starting at the given temperature.
func NewFakeReader(tempF float64) *FakeReader {
	return &FakeReader{tempF: tempF, valid: true}
}

// Set changes the temperature returned by subsequent reads.
func (f *FakeReader) Set(tempF float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tempF = tempF
	f.valid = true
}

// Fail makes subsequent reads report an invalid reading.
func (f *FakeReader) Fail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valid = false
}

// Read returns the current scripted reading.
func (f *FakeReader) Read() climate.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	return climate.Reading{TempF: f.tempF, Valid: f.valid, At: time.Now()}
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
