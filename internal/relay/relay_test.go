package relay

import (
	"errors"
	"testing"
)

func TestFakeDriverRecordsHistory(t *testing.T) {
	f := NewFakeDriver()

	if f.Last() {
		t.Error("Last() on fresh driver = true, want false")
	}

	for _, on := range []bool{true, true, false} {
		if err := f.Set(on); err != nil {
			t.Fatalf("Set(%v) error: %v", on, err)
		}
	}

	want := []bool{true, true, false}
	if len(f.History) != len(want) {
		t.Fatalf("History length = %d, want %d", len(f.History), len(want))
	}
	for i := range want {
		if f.History[i] != want[i] {
			t.Errorf("History[%d] = %v, want %v", i, f.History[i], want[i])
		}
	}
	if f.Last() {
		t.Error("Last() = true, want false")
	}
}

func TestFakeDriverSetError(t *testing.T) {
	f := NewFakeDriver()
	f.SetError = errors.New("gpio busy")

	if err := f.Set(true); err == nil {
		t.Error("Set() with SetError = nil, want error")
	}
	if len(f.History) != 0 {
		t.Errorf("failed Set must not record history, got %v", f.History)
	}
}

func TestFakeDriverClose(t *testing.T) {
	f := NewFakeDriver()
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !f.Closed {
		t.Error("Closed = false after Close()")
	}
}
