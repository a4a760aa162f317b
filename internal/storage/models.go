package storage

import (
	"encoding/json"
	"time"
)

// EventSource represents the origin of a logged event.
type EventSource string

const (
	EventSourceController EventSource = "controller"
	EventSourceSensor     EventSource = "sensor"
	EventSourceUser       EventSource = "user"
	EventSourceSystem     EventSource = "system"
)

// EventType represents the type of event
type EventType string

const (
	EventTypeActuator   EventType = "actuator"
	EventTypeModeChange EventType = "mode_change"
	EventTypeSchedule   EventType = "schedule"
	EventTypeTempChange EventType = "temp_change"
	EventTypeAlert      EventType = "alert"
	EventTypeError      EventType = "error"
	EventTypeInfo       EventType = "info"
)

// EventLog represents a log entry
type EventLog struct {
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Source    EventSource     `json:"source"`
	EventType EventType       `json:"event_type"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details,omitempty"`
}

// EventLogFilter for querying events
type EventLogFilter struct {
	Source    *EventSource
	EventType *EventType
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}
