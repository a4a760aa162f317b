package climate

// arbitrate runs both hysteresis curves for one reading and guarantees the
// outputs are never both on. If a misconfigured pair makes both curves
// desire on (heat target within the cooling band), cooling wins and heating
// is suppressed; the tie-break is deterministic so the two dead bands can
// never fight.
func arbitrate(pair TargetPair, r Reading, coolOn, heatOn bool) (coolDesired, heatDesired bool) {
	coolDesired = coolingDesired(pair.CoolTarget, pair.CoolSwing, r, coolOn)
	heatDesired = heatingDesired(pair.HeatTarget, pair.HeatSwing, r, heatOn)

	if coolDesired && heatDesired {
		heatDesired = false
	}
	return coolDesired, heatDesired
}
