package climate

import (
	"fmt"
	"time"
)

// Reading is a single temperature sample from the sensing layer. Valid is
// false when acquisition failed or the value fell outside the plausible
// range; the control loop treats an invalid reading as "no new information".
type Reading struct {
	TempF float64   `json:"temp_f"`
	Valid bool      `json:"valid"`
	At    time.Time `json:"at"`
}

// TargetPair holds the cooling and heating setpoints plus their swing
// (dead-band) widths, all in degrees Fahrenheit.
type TargetPair struct {
	CoolTarget float64 `json:"cool_target"`
	HeatTarget float64 `json:"heat_target"`
	CoolSwing  float64 `json:"cool_swing"`
	HeatSwing  float64 `json:"heat_swing"`
}

// Validate checks that the pair is internally consistent.
func (p TargetPair) Validate() error {
	if p.CoolSwing <= 0 || p.HeatSwing <= 0 {
		return &ValidationError{Field: "swing", Reason: "swing must be positive"}
	}
	if p.HeatTarget >= p.CoolTarget {
		return &ValidationError{
			Field:  "targets",
			Reason: fmt.Sprintf("heat target %.1f must be below cool target %.1f", p.HeatTarget, p.CoolTarget),
		}
	}
	return nil
}

// ClockMinute is a time of day expressed as minutes since midnight.
type ClockMinute int

// ParseClock converts an "HH:MM" string to a ClockMinute.
func ParseClock(s string) (ClockMinute, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("invalid clock time %q", s)}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("clock time %q out of range", s)}
	}
	return ClockMinute(h*60 + m), nil
}

// ClockOf returns the ClockMinute for a wall-clock instant in its location.
func ClockOf(t time.Time) ClockMinute {
	return ClockMinute(t.Hour()*60 + t.Minute())
}

func (c ClockMinute) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalText implements encoding.TextMarshaler so schedule entries
// round-trip through JSON as "HH:MM".
func (c ClockMinute) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockMinute) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ScheduleEntry is one time-of-day slot in the daily schedule. Swing widths
// are not per-entry; they carry over from the current TargetPair.
type ScheduleEntry struct {
	Time       ClockMinute `json:"time"`
	Name       string      `json:"name"`
	CoolTarget float64     `json:"cool_target"`
	HeatTarget float64     `json:"heat_target"`
}

// ScheduleSize is the fixed number of schedule entries.
const ScheduleSize = 4

// Mode is the scheduling mode of the controller. Exactly one mode is active
// at any instant.
type Mode int

const (
	ModeAutomatic Mode = iota
	ModeTemporaryHold
	ModePermanentHold
)

func (m Mode) String() string {
	switch m {
	case ModeAutomatic:
		return "automatic"
	case ModeTemporaryHold:
		return "temporary_hold"
	case ModePermanentHold:
		return "permanent_hold"
	default:
		return "unknown"
	}
}

// ActuatorState is the commanded state of one relay output. It is owned by
// its Actuator and mutated only through Actuator.Decide.
type ActuatorState struct {
	On         bool      `json:"on"`
	LastChange time.Time `json:"last_change"`
}

// ControlConfig is the persisted aggregate of everything the controller is
// authoritative over. It is stored as a single record and replaced whole.
type ControlConfig struct {
	Targets          TargetPair      `json:"targets"`
	ScheduleEnabled  bool            `json:"schedule_enabled"`
	Schedule         []ScheduleEntry `json:"schedule"`
	TempHoldDuration time.Duration   `json:"temp_hold_duration"`
}

// DefaultControlConfig returns the settings used on first boot, before
// anything has been persisted.
func DefaultControlConfig() ControlConfig {
	return ControlConfig{
		Targets: TargetPair{
			CoolTarget: 77.0,
			HeatTarget: 68.0,
			CoolSwing:  1.0,
			HeatSwing:  1.0,
		},
		ScheduleEnabled: false,
		Schedule: []ScheduleEntry{
			{Time: 6 * 60, Name: "Morning", CoolTarget: 76.0, HeatTarget: 69.0},
			{Time: 9 * 60, Name: "Day", CoolTarget: 78.0, HeatTarget: 67.0},
			{Time: 17 * 60, Name: "Evening", CoolTarget: 76.0, HeatTarget: 69.0},
			{Time: 22 * 60, Name: "Night", CoolTarget: 79.0, HeatTarget: 65.0},
		},
		TempHoldDuration: 2 * time.Hour,
	}
}

// Snapshot is a read-only view of the controller for reporting layers.
type Snapshot struct {
	Mode            Mode           `json:"-"`
	ModeName        string         `json:"mode"`
	Reading         Reading        `json:"reading"`
	Effective       TargetPair     `json:"effective_targets"`
	Cooling         ActuatorState  `json:"cooling"`
	Heating         ActuatorState  `json:"heating"`
	ScheduleEnabled bool           `json:"schedule_enabled"`
	ActiveEntry     *ScheduleEntry `json:"active_entry,omitempty"`
	HoldRemaining   time.Duration  `json:"hold_remaining,omitempty"`
}
