package climate

import (
	"fmt"
	"sync"
	"time"

	"github.com/autogarden/thermctl/internal/log"
)

// Store persists the ControlConfig aggregate as a single record, replaced
// whole. A failed save is reported, not fatal; in-memory state stays
// authoritative.
type Store interface {
	LoadControlConfig() (*ControlConfig, error)
	SaveControlConfig(*ControlConfig) error
}

// Options carries the fixed (non-persisted) controller settings.
type Options struct {
	// Short-cycle protection per actuator.
	CoolMinRun time.Duration
	CoolMinOff time.Duration
	HeatMinRun time.Duration
	HeatMinOff time.Duration

	// Alert thresholds in degrees Fahrenheit; zero disables the alert.
	AlertHigh float64
	AlertLow  float64

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Controller is the climate control and scheduling state machine. All state
// changes happen under one mutex, so human commands land atomically between
// ticks. Nothing here blocks: persistence and notification failures degrade,
// never stall the loop.
type Controller struct {
	mu          sync.Mutex
	cfg         ControlConfig
	mode        Mode
	holdStarted time.Time

	cooling *Actuator
	heating *Actuator

	lastReading Reading
	lastApplied *ScheduleEntry
	faulted     bool
	alertState  int // -1 low, 0 none, 1 high
	dirty       bool

	store    Store
	notifier Notifier
	opts     Options
	now      func() time.Time
}

// New builds a controller from persisted settings. Mode always cold-starts
// as Automatic regardless of what was persisted: holds never survive a
// restart. Both actuators start off with dwell timers anchored at boot.
func New(store Store, notifier Notifier, coolDrive, heatDrive DriveFunc, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	now := opts.Now()

	cfg := DefaultControlConfig()
	if store != nil {
		loaded, err := store.LoadControlConfig()
		if err != nil {
			log.Error("Failed to load control config, using defaults: %v", err)
		} else if loaded != nil {
			if verr := ValidateSchedule(loaded.Schedule); verr != nil {
				log.Warn("Persisted schedule invalid (%v), keeping default schedule", verr)
				loaded.Schedule = cfg.Schedule
			}
			if verr := loaded.Targets.Validate(); verr != nil {
				log.Warn("Persisted targets invalid (%v), keeping defaults", verr)
				loaded.Targets = cfg.Targets
			}
			if loaded.TempHoldDuration <= 0 {
				loaded.TempHoldDuration = cfg.TempHoldDuration
			}
			cfg = *loaded
		}
	}

	c := &Controller{
		cfg:      cfg,
		mode:     ModeAutomatic,
		store:    store,
		notifier: notifier,
		opts:     opts,
		now:      opts.Now,
	}
	c.cooling = NewActuator("cooling", opts.CoolMinRun, opts.CoolMinOff, now, coolDrive)
	c.heating = NewActuator("heating", opts.HeatMinRun, opts.HeatMinOff, now, heatDrive)

	c.notify(Event{Time: now, Type: EventStartup, Message: "Climate controller online"})
	return c
}

// Tick runs one control cycle against the given reading and returns the
// resulting snapshot. It is synchronous and deterministic in (state, now,
// reading); the caller owns the cadence.
func (c *Controller) Tick(reading Reading) Snapshot {
	c.mu.Lock()
	now := c.now()
	var events []Event

	// Hold expiry is derived, never an independent flag. At most one tick
	// of overshoot.
	if c.mode == ModeTemporaryHold && !now.Before(c.holdStarted.Add(c.cfg.TempHoldDuration)) {
		events = append(events, Event{
			Time: now, Type: EventHoldExpired,
			Message: "Temporary hold expired, resuming schedule",
		})
		events = append(events, c.setModeLocked(ModeAutomatic, now))
	}

	events = append(events, c.trackReadingLocked(reading, now)...)

	effective, active := c.effectiveLocked(now)
	if active != nil && (c.lastApplied == nil || c.lastApplied.Time != active.Time) {
		events = append(events, Event{
			Time: now, Type: EventScheduleApplied,
			Message: fmt.Sprintf("Schedule %q applied - Cool: %.1f°F | Heat: %.1f°F",
				active.Name, active.CoolTarget, active.HeatTarget),
			Details: map[string]interface{}{
				"entry":       active.Name,
				"time":        active.Time.String(),
				"cool_target": active.CoolTarget,
				"heat_target": active.HeatTarget,
			},
		})
		c.lastApplied = active
	}

	coolDesired, heatDesired := arbitrate(effective, reading, c.cooling.State().On, c.heating.State().On)

	events = append(events, c.applyLocked(c.cooling, coolDesired, now)...)
	events = append(events, c.applyLocked(c.heating, heatDesired, now)...)

	// The arbiter makes a double-on unreachable; if one ever shows up
	// anyway, heating loses, bypassing its dwell timer.
	if c.cooling.State().On && c.heating.State().On {
		log.Error("Mutual exclusion violated, forcing heating off")
		c.heating.ForceOff(now)
		events = append(events, Event{
			Time: now, Type: EventError,
			Message: "Mutual exclusion violated, heating forced off",
		})
	}

	c.lastReading = reading
	snap := c.snapshotLocked(now, reading, effective, active)
	dirty := c.dirty
	cfg := c.cfg
	c.mu.Unlock()

	if dirty {
		c.persist(cfg)
	}
	c.notify(events...)
	return snap
}

// Snapshot returns a read-only view of the controller. Safe to call from
// any goroutine at any cadence.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	effective, active := c.effectiveLocked(now)
	return c.snapshotLocked(now, c.lastReading, effective, active)
}

// SetManualTargets replaces the manual TargetPair. Nil swings keep the
// current swing widths. In Automatic mode this is a manual override and
// enters TemporaryHold; an existing temporary hold restarts its countdown.
func (c *Controller) SetManualTargets(coolTarget, heatTarget float64, coolSwing, heatSwing *float64) error {
	c.mu.Lock()
	pair := TargetPair{
		CoolTarget: coolTarget,
		HeatTarget: heatTarget,
		CoolSwing:  c.cfg.Targets.CoolSwing,
		HeatSwing:  c.cfg.Targets.HeatSwing,
	}
	if coolSwing != nil {
		pair.CoolSwing = *coolSwing
	}
	if heatSwing != nil {
		pair.HeatSwing = *heatSwing
	}
	if err := pair.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}

	now := c.now()
	c.cfg.Targets = pair
	var events []Event
	events = append(events, Event{
		Time: now, Type: EventTargetsChanged,
		Message: fmt.Sprintf("Targets updated - Cool: %.1f°F ± %.1f°F | Heat: %.1f°F ± %.1f°F",
			pair.CoolTarget, pair.CoolSwing, pair.HeatTarget, pair.HeatSwing),
		Details: map[string]interface{}{
			"cool_target": pair.CoolTarget, "cool_swing": pair.CoolSwing,
			"heat_target": pair.HeatTarget, "heat_swing": pair.HeatSwing,
		},
	})
	switch c.mode {
	case ModeAutomatic:
		events = append(events, c.setModeLocked(ModeTemporaryHold, now))
	case ModeTemporaryHold:
		c.holdStarted = now
	}
	cfg := c.cfg
	c.mu.Unlock()

	c.persist(cfg)
	c.notify(events...)
	return nil
}

// RequestTemporaryHold suspends the schedule for the configured hold
// duration, pinning the targets in force right now.
func (c *Controller) RequestTemporaryHold() error {
	return c.requestHold(ModeTemporaryHold)
}

// RequestPermanentHold suspends the schedule until an explicit resume.
func (c *Controller) RequestPermanentHold() error {
	return c.requestHold(ModePermanentHold)
}

func (c *Controller) requestHold(mode Mode) error {
	c.mu.Lock()
	now := c.now()
	var events []Event

	// Pin whatever pair is currently effective as the manual hold pair, so
	// a hold entered during a schedule slot keeps that slot's targets.
	effective, _ := c.effectiveLocked(now)
	c.cfg.Targets = effective
	if c.mode != mode {
		events = append(events, c.setModeLocked(mode, now))
	} else if mode == ModeTemporaryHold {
		c.holdStarted = now
	}
	cfg := c.cfg
	c.mu.Unlock()

	c.persist(cfg)
	c.notify(events...)
	return nil
}

// ResumeAutomatic ends any hold. The schedule is resolved immediately on
// the next tick; nothing waits for a schedule boundary.
func (c *Controller) ResumeAutomatic() error {
	c.mu.Lock()
	now := c.now()
	var events []Event
	if c.mode != ModeAutomatic {
		events = append(events, c.setModeLocked(ModeAutomatic, now))
	}
	cfg := c.cfg
	c.mu.Unlock()

	c.persist(cfg)
	c.notify(events...)
	return nil
}

// UpdateSchedule replaces all four schedule entries atomically. A rejected
// write leaves the prior schedule untouched.
func (c *Controller) UpdateSchedule(entries []ScheduleEntry) error {
	if err := ValidateSchedule(entries); err != nil {
		return err
	}

	c.mu.Lock()
	now := c.now()
	c.cfg.Schedule = sortSchedule(entries)
	c.lastApplied = nil // force re-application on the next tick
	cfg := c.cfg
	c.mu.Unlock()

	c.persist(cfg)
	c.notify(Event{
		Time: now, Type: EventScheduleChanged,
		Message: "Schedule replaced",
		Details: map[string]interface{}{"entries": len(entries)},
	})
	return nil
}

// SetScheduleEnabled toggles schedule-driven targets. Enabling the schedule
// also ends a permanent hold, which is the documented way out of one.
func (c *Controller) SetScheduleEnabled(enabled bool) error {
	c.mu.Lock()
	now := c.now()
	c.cfg.ScheduleEnabled = enabled
	var events []Event
	if enabled && c.mode != ModeAutomatic {
		events = append(events, c.setModeLocked(ModeAutomatic, now))
	}
	cfg := c.cfg
	c.mu.Unlock()

	c.persist(cfg)
	c.notify(events...)
	return nil
}

// SetHoldDuration changes how long a temporary hold lasts.
func (c *Controller) SetHoldDuration(d time.Duration) error {
	if d <= 0 {
		return &ValidationError{Field: "hold_duration", Reason: "duration must be positive"}
	}
	c.mu.Lock()
	c.cfg.TempHoldDuration = d
	cfg := c.cfg
	c.mu.Unlock()

	c.persist(cfg)
	return nil
}

// Config returns a copy of the persisted settings.
func (c *Controller) Config() ControlConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Shutdown forces both outputs off, bypassing dwell timers. Called once on
// process exit.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	now := c.now()
	c.cooling.ForceOff(now)
	c.heating.ForceOff(now)
	c.mu.Unlock()
}

// setModeLocked performs a mode transition and returns the event for it.
func (c *Controller) setModeLocked(mode Mode, now time.Time) Event {
	old := c.mode
	c.mode = mode
	if mode == ModeTemporaryHold {
		c.holdStarted = now
	}
	if mode == ModeAutomatic {
		// Force immediate schedule re-application on resume.
		c.lastApplied = nil
	}
	return Event{
		Time: now, Type: EventModeChange,
		Message: fmt.Sprintf("Mode changed from %s to %s", old, mode),
		Details: map[string]interface{}{"old_mode": old.String(), "new_mode": mode.String()},
	}
}

// effectiveLocked derives the TargetPair in force right now. It is
// recomputed every tick, never cached, so a schedule boundary crossing
// takes effect on the very next tick.
func (c *Controller) effectiveLocked(now time.Time) (TargetPair, *ScheduleEntry) {
	if c.mode == ModeAutomatic && c.cfg.ScheduleEnabled && len(c.cfg.Schedule) > 0 {
		entry := ResolveSchedule(c.cfg.Schedule, ClockOf(now))
		return TargetPair{
			CoolTarget: entry.CoolTarget,
			HeatTarget: entry.HeatTarget,
			CoolSwing:  c.cfg.Targets.CoolSwing,
			HeatSwing:  c.cfg.Targets.HeatSwing,
		}, &entry
	}
	return c.cfg.Targets, nil
}

// trackReadingLocked handles sensor fault edges and temperature alerts.
// Both are edge-triggered so a stuck sensor or a hot afternoon produces one
// event, not one per tick.
func (c *Controller) trackReadingLocked(r Reading, now time.Time) []Event {
	var events []Event

	if !r.Valid && !c.faulted {
		c.faulted = true
		events = append(events, Event{
			Time: now, Type: EventSensorFault,
			Message: "Temperature reading rejected, holding last state",
		})
	} else if r.Valid && c.faulted {
		c.faulted = false
		events = append(events, Event{
			Time: now, Type: EventSensorRecovered,
			Message: fmt.Sprintf("Temperature sensor recovered at %.1f°F", r.TempF),
		})
	}

	if !r.Valid {
		return events
	}

	alert := 0
	if c.opts.AlertHigh != 0 && r.TempF > c.opts.AlertHigh {
		alert = 1
	} else if c.opts.AlertLow != 0 && r.TempF < c.opts.AlertLow {
		alert = -1
	}
	if alert != c.alertState {
		switch alert {
		case 1:
			events = append(events, Event{
				Time: now, Type: EventTempAlert,
				Message: fmt.Sprintf("High temperature alert: %.1f°F above %.1f°F", r.TempF, c.opts.AlertHigh),
				Details: map[string]interface{}{"temp": r.TempF, "threshold": c.opts.AlertHigh},
			})
		case -1:
			events = append(events, Event{
				Time: now, Type: EventTempAlert,
				Message: fmt.Sprintf("Low temperature alert: %.1f°F below %.1f°F", r.TempF, c.opts.AlertLow),
				Details: map[string]interface{}{"temp": r.TempF, "threshold": c.opts.AlertLow},
			})
		case 0:
			events = append(events, Event{
				Time: now, Type: EventTempAlert,
				Message: fmt.Sprintf("Temperature back in range: %.1f°F", r.TempF),
				Details: map[string]interface{}{"temp": r.TempF},
			})
		}
		c.alertState = alert
	}

	return events
}

// applyLocked pushes a desired state through one actuator and reports a
// transition event if the dwell rules let it through.
func (c *Controller) applyLocked(a *Actuator, desired bool, now time.Time) []Event {
	before := a.State().On
	after := a.Decide(desired, now).On
	if before == after {
		return nil
	}
	state := "OFF"
	if after {
		state = "ON"
	}
	return []Event{{
		Time: now, Type: EventActuator,
		Message: fmt.Sprintf("%s turned %s", a.Name(), state),
		Details: map[string]interface{}{"actuator": a.Name(), "on": after},
	}}
}

func (c *Controller) snapshotLocked(now time.Time, reading Reading, effective TargetPair, active *ScheduleEntry) Snapshot {
	snap := Snapshot{
		Mode:            c.mode,
		ModeName:        c.mode.String(),
		Reading:         reading,
		Effective:       effective,
		Cooling:         c.cooling.State(),
		Heating:         c.heating.State(),
		ScheduleEnabled: c.cfg.ScheduleEnabled,
	}
	if active != nil {
		entry := *active
		snap.ActiveEntry = &entry
	}
	if c.mode == ModeTemporaryHold {
		remaining := c.holdStarted.Add(c.cfg.TempHoldDuration).Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		snap.HoldRemaining = remaining
	}
	return snap
}

// persist writes the config aggregate through the store. Failures are
// reported and the change stays in memory, to be flushed on the next tick
// or state-changing command.
func (c *Controller) persist(cfg ControlConfig) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveControlConfig(&cfg); err != nil {
		log.Error("Failed to persist control config: %v", err)
		c.mu.Lock()
		c.dirty = true
		c.mu.Unlock()
		return
	}
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
}

func (c *Controller) notify(events ...Event) {
	if c.notifier == nil {
		return
	}
	for _, e := range events {
		c.notifier.Notify(e)
	}
}
