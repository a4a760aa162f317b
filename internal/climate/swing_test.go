package climate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func reading(tempF float64) Reading {
	return Reading{TempF: tempF, Valid: true, At: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func invalidReading() Reading {
	return Reading{Valid: false, At: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestCoolingHysteresis(t *testing.T) {
	// Target 77 with swing 1: turn on above 78, off below 76, sticky between.
	tests := []struct {
		name      string
		temp      float64
		currentOn bool
		want      bool
	}{
		{"well below band stays off", 75.0, false, false},
		{"well below band turns off", 75.0, true, false},
		{"inside band stays off", 77.0, false, false},
		{"inside band stays on", 77.0, true, true},
		{"above band turns on", 79.0, false, true},
		{"above band stays on", 79.0, true, true},
		{"upper boundary is inside the band", 78.0, false, false},
		{"lower boundary is inside the band", 76.0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coolingDesired(77.0, 1.0, reading(tt.temp), tt.currentOn)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoolingReadingSequence(t *testing.T) {
	// 75 -> 79 -> 77 -> 75.5 from off: off, on, on (sticky), off.
	on := false
	var got []bool
	for _, temp := range []float64{75, 79, 77, 75.5} {
		on = coolingDesired(77.0, 1.0, reading(temp), on)
		got = append(got, on)
	}
	assert.Equal(t, []bool{false, true, true, false}, got)
}

func TestHeatingHysteresis(t *testing.T) {
	// Target 70 with swing 1: turn on below 69, off above 71.
	tests := []struct {
		name      string
		temp      float64
		currentOn bool
		want      bool
	}{
		{"well above band stays off", 72.0, false, false},
		{"well above band turns off", 72.0, true, false},
		{"inside band stays off", 70.0, false, false},
		{"inside band stays on", 70.0, true, true},
		{"below band turns on", 68.0, false, true},
		{"lower boundary is inside the band", 69.0, false, false},
		{"upper boundary is inside the band", 71.0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := heatingDesired(70.0, 1.0, reading(tt.temp), tt.currentOn)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidReadingHoldsState(t *testing.T) {
	assert.True(t, coolingDesired(77.0, 1.0, invalidReading(), true))
	assert.False(t, coolingDesired(77.0, 1.0, invalidReading(), false))
	assert.True(t, heatingDesired(70.0, 1.0, invalidReading(), true))
	assert.False(t, heatingDesired(70.0, 1.0, invalidReading(), false))
}
