package climate

// coolingDesired applies cooling hysteresis: turn on above target+swing,
// turn off below target-swing, hold inside the dead band. Boundary values
// are inside the band (strict comparisons). An invalid reading never
// changes the answer.
func coolingDesired(target, swing float64, r Reading, currentOn bool) bool {
	if !r.Valid {
		return currentOn
	}
	switch {
	case r.TempF > target+swing:
		return true
	case r.TempF < target-swing:
		return false
	default:
		return currentOn
	}
}

// heatingDesired is the mirror image: turn on below target-swing, turn off
// above target+swing.
func heatingDesired(target, swing float64, r Reading, currentOn bool) bool {
	if !r.Valid {
		return currentOn
	}
	switch {
	case r.TempF < target-swing:
		return true
	case r.TempF > target+swing:
		return false
	default:
		return currentOn
	}
}
