package climate

import "time"

// DriveFunc pushes a commanded state to the physical output. It is invoked
// only on an actual transition, never on a no-op decision.
type DriveFunc func(on bool) error

// Actuator wraps a single on/off output with short-cycle protection: a
// minimum run time before it may turn off and a minimum off time before it
// may turn on again.
type Actuator struct {
	name   string
	minRun time.Duration
	minOff time.Duration
	state  ActuatorState
	drive  DriveFunc
}

// NewActuator creates an actuator that starts off, with the dwell timers
// anchored at startedAt so protection applies from boot.
func NewActuator(name string, minRun, minOff time.Duration, startedAt time.Time, drive DriveFunc) *Actuator {
	return &Actuator{
		name:   name,
		minRun: minRun,
		minOff: minOff,
		state:  ActuatorState{On: false, LastChange: startedAt},
		drive:  drive,
	}
}

// Name returns the actuator's label, used in events and logs.
func (a *Actuator) Name() string { return a.name }

// State returns the current commanded state.
func (a *Actuator) State() ActuatorState { return a.state }

// Decide applies the desired state if the dwell-time rules allow it and
// returns the state actually in force afterwards. A blocked transition is
// not queued; the caller re-derives desired from the next reading.
func (a *Actuator) Decide(desired bool, now time.Time) ActuatorState {
	if desired == a.state.On {
		return a.state
	}

	elapsed := now.Sub(a.state.LastChange)
	if a.state.On {
		// Turning off: enforce minimum run time.
		if elapsed < a.minRun {
			return a.state
		}
	} else {
		// Turning on: enforce minimum off time.
		if elapsed < a.minOff {
			return a.state
		}
	}

	a.state.On = desired
	a.state.LastChange = now
	if a.drive != nil {
		a.drive(desired)
	}
	return a.state
}

// ForceOff turns the output off immediately, bypassing the dwell timers.
// Reserved for shutdown and safety paths; regular control goes through
// Decide.
func (a *Actuator) ForceOff(now time.Time) {
	if !a.state.On {
		return
	}
	a.state.On = false
	a.state.LastChange = now
	if a.drive != nil {
		a.drive(false)
	}
}
