package climate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArbitrateNormalOperation(t *testing.T) {
	pair := TargetPair{CoolTarget: 77, HeatTarget: 68, CoolSwing: 1, HeatSwing: 1}

	cool, heat := arbitrate(pair, reading(80), false, false)
	assert.True(t, cool)
	assert.False(t, heat)

	cool, heat = arbitrate(pair, reading(65), false, false)
	assert.False(t, cool)
	assert.True(t, heat)

	cool, heat = arbitrate(pair, reading(72), false, false)
	assert.False(t, cool)
	assert.False(t, heat)
}

func TestArbitrateCoolingWinsDoubleOn(t *testing.T) {
	// Misconfigured pair where both curves can desire on at once: heat
	// target above cool target. Heating must lose, deterministically.
	pair := TargetPair{CoolTarget: 65, HeatTarget: 72, CoolSwing: 2, HeatSwing: 2}

	cool, heat := arbitrate(pair, reading(69), true, false)
	assert.True(t, cool, "cooling stays on")
	assert.False(t, heat, "heating suppressed even though 69 < 72-2")
}

func TestArbitrateNeverBothOn(t *testing.T) {
	pairs := []TargetPair{
		{CoolTarget: 77, HeatTarget: 68, CoolSwing: 1, HeatSwing: 1},
		{CoolTarget: 70, HeatTarget: 70, CoolSwing: 3, HeatSwing: 3},
		{CoolTarget: 60, HeatTarget: 80, CoolSwing: 5, HeatSwing: 5},
	}
	for _, pair := range pairs {
		for temp := 40.0; temp <= 110.0; temp += 0.5 {
			for _, coolOn := range []bool{false, true} {
				for _, heatOn := range []bool{false, true} {
					cool, heat := arbitrate(pair, reading(temp), coolOn, heatOn)
					assert.False(t, cool && heat,
						"both on for pair %+v temp %.1f coolOn=%v heatOn=%v", pair, temp, coolOn, heatOn)
				}
			}
		}
	}
}

func TestArbitrateInvalidReading(t *testing.T) {
	pair := TargetPair{CoolTarget: 77, HeatTarget: 68, CoolSwing: 1, HeatSwing: 1}

	cool, heat := arbitrate(pair, invalidReading(), true, false)
	assert.True(t, cool)
	assert.False(t, heat)

	cool, heat = arbitrate(pair, invalidReading(), false, true)
	assert.False(t, cool)
	assert.True(t, heat)
}
