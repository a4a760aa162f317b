// Package sensor provides temperature acquisition with hardware abstraction.
// The real implementation reads a DS18B20 over the Linux 1-wire sysfs bus.
// The fake implementation allows testing without hardware.
package sensor

import (
	"time"

	"github.com/autogarden/thermctl/internal/climate"
)

// Reader produces one temperature sample per call.
type Reader interface {
	// Read returns the current reading. Acquisition failures and values
	// outside the plausible window come back with Valid=false, never as a
	// hard error; the control loop degrades instead of crashing.
	Read() climate.Reading

	// Close releases sensor resources.
	Close() error
}

// Window bounds physically plausible readings in degrees Fahrenheit.
// Anything outside is rejected as a sensor fault.
type Window struct {
	MinF float64
	MaxF float64
}

// Check stamps and validates a raw Celsius value.
func (w Window) Check(tempC float64, err error, now time.Time) climate.Reading {
	if err != nil {
		return climate.Reading{Valid: false, At: now}
	}
	tempF := tempC*9/5 + 32
	if tempF < w.MinF || tempF > w.MaxF {
		return climate.Reading{TempF: tempF, Valid: false, At: now}
	}
	return climate.Reading{TempF: tempF, Valid: true, At: now}
}
