package climate

import "time"

// EventType identifies a discrete controller event.
type EventType string

const (
	EventStartup         EventType = "startup"
	EventActuator        EventType = "actuator"
	EventScheduleApplied EventType = "schedule_applied"
	EventScheduleChanged EventType = "schedule_changed"
	EventTargetsChanged  EventType = "targets_changed"
	EventModeChange      EventType = "mode_change"
	EventHoldExpired     EventType = "hold_expired"
	EventSensorFault     EventType = "sensor_fault"
	EventSensorRecovered EventType = "sensor_recovered"
	EventTempAlert       EventType = "temp_alert"
	EventError           EventType = "error"
)

// Event is a fully-formed, fire-and-forget notification payload. The
// controller never retries or batches these.
type Event struct {
	Time    time.Time              `json:"time"`
	Type    EventType              `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Notifier receives controller events. Implementations must not block; slow
// deliveries belong behind a buffer.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify implements Notifier.
func (f NotifierFunc) Notify(e Event) { f(e) }
