package climate

import "sort"

// ValidateSchedule checks a full schedule replacement: exactly four entries,
// pairwise-distinct times, and heat target below cool target in every entry.
// Any violation rejects the whole write.
func ValidateSchedule(entries []ScheduleEntry) error {
	if len(entries) != ScheduleSize {
		return &ValidationError{Field: "schedule", Reason: "schedule must have exactly four entries"}
	}
	seen := make(map[ClockMinute]bool, len(entries))
	for _, e := range entries {
		if e.Time < 0 || e.Time >= 24*60 {
			return &ValidationError{Field: "schedule", Reason: "entry time out of range"}
		}
		if seen[e.Time] {
			return &ValidationError{Field: "schedule", Reason: "duplicate entry time " + e.Time.String()}
		}
		seen[e.Time] = true
		if e.HeatTarget >= e.CoolTarget {
			return &ValidationError{Field: "schedule", Reason: "heat target must be below cool target in entry " + e.Time.String()}
		}
	}
	return nil
}

// sortSchedule returns the entries in temporal order. Insertion order is
// irrelevant; the resolved order is authoritative.
func sortSchedule(entries []ScheduleEntry) []ScheduleEntry {
	sorted := make([]ScheduleEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return sorted
}

// ResolveSchedule picks the entry in force at the given time of day: the
// latest entry at or before now. Before the first slot of the day, the last
// slot still applies (yesterday's schedule carries over midnight), so the
// table is circular and resolution is total.
func ResolveSchedule(entries []ScheduleEntry, now ClockMinute) ScheduleEntry {
	sorted := sortSchedule(entries)

	var active *ScheduleEntry
	for i := range sorted {
		if sorted[i].Time <= now {
			active = &sorted[i]
		}
	}
	if active == nil {
		active = &sorted[len(sorted)-1]
	}
	return *active
}
