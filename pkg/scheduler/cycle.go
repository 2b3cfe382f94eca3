package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/powersched/powersched/internal/models"
)

// InstanceService lists the schedulable instances of one region and
// actuates the decisions made against them. Implemented by the EC2
// client; faked in tests.
type InstanceService interface {
	Region() string
	ListScheduledInstances(ctx context.Context) ([]models.InstanceSnapshot, error)
	StartInstance(ctx context.Context, instanceID string) error
	StopInstance(ctx context.Context, instanceID string) error
}

// Notifier tells an instance's stakeholders about an applied power
// state change. Notification is best-effort: failures are logged and
// never retried or rolled back.
type Notifier interface {
	Notify(ctx context.Context, decision models.ActionDecision, atUTC time.Time) error
}

// Runner drives one evaluation cycle across all configured regions.
type Runner struct {
	reconciler *Reconciler
	services   []InstanceService
	notifier   Notifier // nil disables notifications
	clock      func() time.Time
	dryRun     bool
	logger     zerolog.Logger
}

// NewRunner assembles a cycle runner. A nil notifier disables
// stakeholder notifications.
func NewRunner(reconciler *Reconciler, services []InstanceService, notifier Notifier, dryRun bool, logger zerolog.Logger) *Runner {
	return &Runner{
		reconciler: reconciler,
		services:   services,
		notifier:   notifier,
		clock:      time.Now,
		dryRun:     dryRun,
		logger:     logger.With().Str("component", "scheduler").Logger(),
	}
}

// RunCycle evaluates every instance once and converges those whose
// observed state disagrees with their schedule. Per-instance failures
// are counted and logged; the returned error is non-nil only when no
// region could be listed at all.
func (r *Runner) RunCycle(ctx context.Context) (models.CycleOutcome, []models.ActionDecision, error) {
	nowUTC := r.clock().UTC()

	r.logger.Info().
		Str("current_time", nowUTC.Format("15:04")).
		Int("regions", len(r.services)).
		Bool("dry_run", r.dryRun).
		Msg("Starting power schedule cycle")

	var outcome models.CycleOutcome
	var decisions []models.ActionDecision

	if len(r.services) == 0 {
		return outcome, decisions, errors.New("no regions to evaluate")
	}

	var listErrs []error
	listed := false

	for _, svc := range r.services {
		instances, err := svc.ListScheduledInstances(ctx)
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("region", svc.Region()).
				Msg("Failed to list instances")
			listErrs = append(listErrs, err)
			continue
		}
		listed = true

		for _, inst := range instances {
			decision := r.processInstance(ctx, svc, inst, nowUTC, &outcome)
			decisions = append(decisions, decision)
		}
	}

	if !listed && len(listErrs) > 0 {
		return outcome, decisions, errors.Join(listErrs...)
	}

	r.logger.Info().
		Int("instances_processed", outcome.Processed).
		Int("instances_started", outcome.Started).
		Int("instances_stopped", outcome.Stopped).
		Int("errors", outcome.Errors).
		Msg("Power schedule cycle completed")

	return outcome, decisions, nil
}

func (r *Runner) processInstance(ctx context.Context, svc InstanceService, inst models.InstanceSnapshot, nowUTC time.Time, outcome *models.CycleOutcome) models.ActionDecision {
	log := r.logger.With().
		Str("component", "instance_processing").
		Str("instance_name", inst.Name).
		Str("instance_id", inst.InstanceID).
		Str("current_state", string(inst.State)).
		Str("region", inst.Region).
		Logger()

	decision, err := r.reconciler.Reconcile(inst, nowUTC)
	if err != nil {
		outcome.Errors++
		log.Error().
			Err(err).
			Str("start_time", inst.OnTimeRaw).
			Str("stop_time", inst.OffTimeRaw).
			Msg("Skipping instance with unparsable schedule tags")
		return decision
	}

	if decision.Skipped {
		if !inst.HasSchedule() {
			log.Debug().
				Bool("schedule_found", false).
				Str("reason", decision.Reason).
				Msg("Skipping instance without schedule")
		} else {
			log.Info().
				Str("disabled_until", inst.DisabledUntilRaw).
				Str("reason", decision.Reason).
				Msg("Skipping instance with scheduling disabled")
		}
		return decision
	}

	outcome.Processed++
	log.Info().
		Bool("schedule_found", true).
		Str("start_time", decision.Window.On.String()).
		Str("stop_time", decision.Window.Off.String()).
		Str("current_time", decision.LocalNow.Format("15:04")).
		Str("timezone", decision.Zone).
		Bool("should_run", decision.Desired == models.StateRunning).
		Str("action", string(decision.Action)).
		Str("reason", decision.Reason).
		Msg("Processed instance")

	if decision.Action == models.ActionNone {
		return decision
	}

	if r.dryRun {
		log.Info().
			Str("action", string(decision.Action)).
			Msg("Dry run, not actuating")
		return decision
	}

	if err := r.actuate(ctx, svc, decision); err != nil {
		outcome.Errors++
		log.Error().
			Err(err).
			Str("action", string(decision.Action)).
			Msg("Failed to change instance power state")
		return decision
	}

	switch decision.Action {
	case models.ActionStart:
		outcome.Started++
	case models.ActionStop:
		outcome.Stopped++
	}
	log.Info().
		Str("component", "instance_action").
		Str("action", string(decision.Action)).
		Str("reason", decision.Reason).
		Msg("Changed instance power state")

	r.notify(ctx, decision, nowUTC, log)
	return decision
}

func (r *Runner) actuate(ctx context.Context, svc InstanceService, decision models.ActionDecision) error {
	switch decision.Action {
	case models.ActionStart:
		return svc.StartInstance(ctx, decision.Instance.InstanceID)
	case models.ActionStop:
		return svc.StopInstance(ctx, decision.Instance.InstanceID)
	default:
		return nil
	}
}

func (r *Runner) notify(ctx context.Context, decision models.ActionDecision, nowUTC time.Time, log zerolog.Logger) {
	if r.notifier == nil || len(decision.Instance.Stakeholders) == 0 {
		return
	}
	if err := r.notifier.Notify(ctx, decision, nowUTC); err != nil {
		// Best-effort: the state change already happened.
		log.Error().
			Err(err).
			Str("component", "stakeholder_notification").
			Msg("Failed to notify stakeholders")
	}
}
