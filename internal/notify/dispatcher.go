// Package notify fans controller events out to the configured channels:
// Discord webhook, MQTT broker, the event log, and the live websocket feed.
// Delivery is fire-and-forget; a slow or broken channel never stalls the
// control loop.
package notify

import (
	"context"

	"github.com/autogarden/thermctl/internal/climate"
	"github.com/autogarden/thermctl/internal/log"
)

// Sink delivers one event to a single channel. Send may block; the
// dispatcher calls it from its own goroutine.
type Sink interface {
	Name() string
	Send(climate.Event) error
}

// Dispatcher implements climate.Notifier by queueing events and delivering
// them to every registered sink off the control loop's path.
type Dispatcher struct {
	sinks  []Sink
	events chan climate.Event
}

// NewDispatcher creates a dispatcher with the given sinks.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:  sinks,
		events: make(chan climate.Event, 256),
	}
}

// Register adds a sink. Not safe to call after Run has started.
func (d *Dispatcher) Register(s Sink) {
	d.sinks = append(d.sinks, s)
}

// Notify implements climate.Notifier. It never blocks: if the queue is
// full the event is dropped with a warning.
func (d *Dispatcher) Notify(e climate.Event) {
	select {
	case d.events <- e:
	default:
		log.Warn("Notification queue full, dropping %s event", e.Type)
	}
}

// Run delivers queued events until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-d.events:
			for _, s := range d.sinks {
				if err := s.Send(e); err != nil {
					log.Warn("Failed to deliver %s event to %s: %v", e.Type, s.Name(), err)
				}
			}
		}
	}
}
