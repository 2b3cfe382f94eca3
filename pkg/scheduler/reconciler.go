package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/powersched/powersched/internal/models"
	"github.com/powersched/powersched/pkg/schedule"
	"github.com/powersched/powersched/pkg/timezone"
)

// disabledUntilLayouts are the timestamp forms accepted for the
// PowerScheduleDisabledUntil tag. Times without an offset are UTC.
var disabledUntilLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Reconciler turns an instance snapshot and the current UTC time into
// an ActionDecision. It holds no state between instances or cycles;
// desired state is re-derived from live tags every run.
type Reconciler struct {
	resolver *timezone.Resolver
	logger   zerolog.Logger
}

// NewReconciler creates a Reconciler using the given region resolver.
func NewReconciler(resolver *timezone.Resolver, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		resolver: resolver,
		logger:   logger.With().Str("component", "reconciler").Logger(),
	}
}

// Reconcile decides the action for one instance. A non-nil error means
// the instance's tags could not be interpreted; the returned decision
// is then action none and the caller counts the error. An instance
// without schedule tags yields action none with a nil error.
func (r *Reconciler) Reconcile(inst models.InstanceSnapshot, nowUTC time.Time) (models.ActionDecision, error) {
	decision := models.ActionDecision{
		Instance: inst,
		Action:   models.ActionNone,
	}

	if !inst.HasSchedule() {
		decision.Skipped = true
		decision.Reason = "no power schedule tags found"
		return decision, nil
	}

	if until, ok := r.disabledUntil(inst); ok && nowUTC.Before(until) {
		decision.Skipped = true
		decision.Reason = fmt.Sprintf("scheduling disabled until %s", until.Format("2006-01-02 15:04:05 UTC"))
		return decision, nil
	}

	onTime, err := schedule.ParseTime(inst.OnTimeRaw)
	if err != nil {
		decision.Reason = "unparsable on-time tag"
		return decision, fmt.Errorf("parsing on-time tag: %w", err)
	}
	offTime, err := schedule.ParseTime(inst.OffTimeRaw)
	if err != nil {
		decision.Reason = "unparsable off-time tag"
		return decision, fmt.Errorf("parsing off-time tag: %w", err)
	}
	decision.Window = schedule.Window{On: onTime, Off: offTime}

	loc, fellBack := r.resolver.Resolve(inst.Region)
	if fellBack {
		r.logger.Warn().
			Str("instance_id", inst.InstanceID).
			Str("region", inst.Region).
			Str("timezone", loc.String()).
			Msg("No timezone mapping for region, using fallback")
	}
	decision.Zone = loc.String()
	decision.ZoneFallback = fellBack
	decision.LocalNow = nowUTC.In(loc)

	localTime := schedule.TimeOfDayFrom(decision.LocalNow)
	shouldRun := decision.Window.Contains(localTime)
	if shouldRun {
		decision.Desired = models.StateRunning
	} else {
		decision.Desired = models.StateStopped
	}
	decision.NextChange = nextChange(decision.Window, decision.LocalNow, shouldRun)

	decision.Action, decision.Reason = resolveAction(inst.State, shouldRun, decision.Window, localTime)
	return decision, nil
}

// disabledUntil parses the PowerScheduleDisabledUntil tag. An
// unparsable value is logged and treated as absent, matching the
// fail-safe handling of other tag errors without blocking the
// schedule itself.
func (r *Reconciler) disabledUntil(inst models.InstanceSnapshot) (time.Time, bool) {
	raw := inst.DisabledUntilRaw
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range disabledUntilLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	r.logger.Warn().
		Str("instance_id", inst.InstanceID).
		Str("time_string", raw).
		Msg("Unparsable disabled-until tag, ignoring")
	return time.Time{}, false
}

// resolveAction maps desired vs. observed state to the single action
// for this cycle.
func resolveAction(state models.InstanceState, shouldRun bool, w schedule.Window, now schedule.TimeOfDay) (models.Action, string) {
	if state.Transitional() {
		return models.ActionNone, fmt.Sprintf("instance is %s, deferring to next cycle", state)
	}

	switch {
	case shouldRun && state == models.StateStopped:
		return models.ActionStart,
			fmt.Sprintf("current time %s is within ON period %s-%s", now, w.On, w.Off)
	case !shouldRun && state == models.StateRunning:
		return models.ActionStop,
			fmt.Sprintf("current time %s is outside ON period %s-%s", now, w.On, w.Off)
	default:
		return models.ActionNone, "instance is already in correct state"
	}
}

// nextChange computes the next local moment the desired state flips.
// Nil for a degenerate window, which never turns on.
func nextChange(w schedule.Window, localNow time.Time, running bool) *time.Time {
	if w.On.Equal(w.Off) {
		return nil
	}

	boundary := w.On
	if running {
		boundary = w.Off
	}

	next := time.Date(localNow.Year(), localNow.Month(), localNow.Day(),
		boundary.Hour, boundary.Minute, 0, 0, localNow.Location())
	if !next.After(localNow) {
		next = next.AddDate(0, 0, 1)
	}
	return &next
}
