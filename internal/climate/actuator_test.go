package climate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestActuatorStartsOff(t *testing.T) {
	a := NewActuator("cooling", 30*time.Second, 5*time.Second, t0, nil)
	state := a.State()
	assert.False(t, state.On)
	assert.Equal(t, t0, state.LastChange)
}

func TestActuatorMinOffTime(t *testing.T) {
	a := NewActuator("cooling", 30*time.Second, 5*time.Second, t0, nil)

	// Too soon after boot to turn on.
	state := a.Decide(true, t0.Add(3*time.Second))
	assert.False(t, state.On)

	// After min off time the transition goes through.
	state = a.Decide(true, t0.Add(5*time.Second))
	assert.True(t, state.On)
	assert.Equal(t, t0.Add(5*time.Second), state.LastChange)
}

func TestActuatorMinRunTime(t *testing.T) {
	// min_run_time=30s, turns on at t=0, desired=off at t=10 is held, the
	// same desired=off at t=31 is honored.
	a := NewActuator("cooling", 30*time.Second, 0, t0, nil)

	state := a.Decide(true, t0)
	require.True(t, state.On)

	state = a.Decide(false, t0.Add(10*time.Second))
	assert.True(t, state.On, "still on, min run not reached")

	state = a.Decide(false, t0.Add(31*time.Second))
	assert.False(t, state.On)
}

func TestActuatorNoOpKeepsTimestamp(t *testing.T) {
	a := NewActuator("heating", 30*time.Second, 5*time.Second, t0, nil)

	a.Decide(true, t0.Add(5*time.Second))
	state := a.Decide(true, t0.Add(20*time.Second))
	assert.Equal(t, t0.Add(5*time.Second), state.LastChange, "no-op decision must not reset the dwell timer")
}

func TestActuatorDriveOnlyOnTransition(t *testing.T) {
	var calls []bool
	a := NewActuator("cooling", 0, 0, t0, func(on bool) error {
		calls = append(calls, on)
		return nil
	})

	a.Decide(false, t0.Add(time.Second))
	a.Decide(true, t0.Add(2*time.Second))
	a.Decide(true, t0.Add(3*time.Second))
	a.Decide(false, t0.Add(4*time.Second))

	assert.Equal(t, []bool{true, false}, calls, "callback fires only on real transitions")
}

func TestActuatorBlockedTransitionNotQueued(t *testing.T) {
	a := NewActuator("cooling", 0, 10*time.Second, t0, nil)

	// Blocked turn-on attempt.
	state := a.Decide(true, t0.Add(5*time.Second))
	require.False(t, state.On)

	// Desired went away; nothing deferred fires later.
	state = a.Decide(false, t0.Add(15*time.Second))
	assert.False(t, state.On)
	assert.Equal(t, t0, state.LastChange)
}

func TestActuatorForceOffBypassesDwell(t *testing.T) {
	var calls []bool
	a := NewActuator("heating", time.Hour, 0, t0, func(on bool) error {
		calls = append(calls, on)
		return nil
	})

	a.Decide(true, t0)
	a.ForceOff(t0.Add(time.Second))
	assert.False(t, a.State().On)
	assert.Equal(t, []bool{true, false}, calls)

	// ForceOff on an already-off actuator is a no-op.
	a.ForceOff(t0.Add(2 * time.Second))
	assert.Equal(t, []bool{true, false}, calls)
}
