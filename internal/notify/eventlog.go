package notify

import (
	"github.com/autogarden/thermctl/internal/climate"
	"github.com/autogarden/thermctl/internal/storage"
)

// EventLogSink records controller events in the database event log.
type EventLogSink struct {
	db *storage.DB
}

// NewEventLogSink creates a sink writing to the given database.
func NewEventLogSink(db *storage.DB) *EventLogSink {
	return &EventLogSink{db: db}
}

// Name implements Sink.
func (s *EventLogSink) Name() string { return "event_log" }

// Send implements Sink.
func (s *EventLogSink) Send(e climate.Event) error {
	source, eventType := classify(e.Type)
	return s.db.LogEvent(source, eventType, e.Message, e.Details)
}

// classify maps a controller event onto the event log's source/type axes.
func classify(t climate.EventType) (storage.EventSource, storage.EventType) {
	switch t {
	case climate.EventActuator:
		return storage.EventSourceController, storage.EventTypeActuator
	case climate.EventModeChange, climate.EventHoldExpired:
		return storage.EventSourceController, storage.EventTypeModeChange
	case climate.EventScheduleApplied, climate.EventScheduleChanged:
		return storage.EventSourceController, storage.EventTypeSchedule
	case climate.EventTargetsChanged:
		return storage.EventSourceUser, storage.EventTypeTempChange
	case climate.EventSensorFault, climate.EventSensorRecovered:
		return storage.EventSourceSensor, storage.EventTypeError
	case climate.EventTempAlert:
		return storage.EventSourceSensor, storage.EventTypeAlert
	case climate.EventError:
		return storage.EventSourceController, storage.EventTypeError
	default:
		return storage.EventSourceSystem, storage.EventTypeInfo
	}
}
