package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autogarden/thermctl/internal/climate"
)

type captureSink struct {
	mu     sync.Mutex
	name   string
	events []climate.Event
	err    error
}

func (c *captureSink) Name() string { return c.name }

func (c *captureSink) Send(e climate.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, e)
	return nil
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDispatcherDeliversToAllSinks(t *testing.T) {
	a := &captureSink{name: "a"}
	b := &captureSink{name: "b"}
	d := NewDispatcher(a, b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Notify(climate.Event{Type: climate.EventStartup, Message: "online"})
	d.Notify(climate.Event{Type: climate.EventActuator, Message: "cooling turned ON"})

	waitFor(t, func() bool { return a.count() == 2 && b.count() == 2 })
	a.mu.Lock()
	defer a.mu.Unlock()
	assert.Equal(t, "online", a.events[0].Message)
}

func TestDispatcherSinkFailureDoesNotStopOthers(t *testing.T) {
	broken := &captureSink{name: "broken", err: errors.New("webhook down")}
	ok := &captureSink{name: "ok"}
	d := NewDispatcher(broken, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Notify(climate.Event{Type: climate.EventTempAlert, Message: "too hot"})

	waitFor(t, func() bool { return ok.count() == 1 })
}

func TestDispatcherNotifyNeverBlocks(t *testing.T) {
	// No Run goroutine draining: the queue fills and overflow is dropped.
	d := NewDispatcher(&captureSink{name: "idle"})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			d.Notify(climate.Event{Type: climate.EventActuator})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}
}

func TestDispatcherRegister(t *testing.T) {
	d := NewDispatcher()
	late := &captureSink{name: "late"}
	d.Register(late)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Notify(climate.Event{Type: climate.EventModeChange})
	waitFor(t, func() bool { return late.count() == 1 })
	require.Equal(t, 1, late.count())
}
