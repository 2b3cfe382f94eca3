package models

import (
	"time"

	"github.com/powersched/powersched/pkg/schedule"
)

// InstanceState is the lifecycle state last reported by EC2.
type InstanceState string

const (
	StateRunning  InstanceState = "running"
	StateStopped  InstanceState = "stopped"
	StatePending  InstanceState = "pending"
	StateStopping InstanceState = "stopping"
	StateOther    InstanceState = "other"
)

// Transitional reports whether the instance is mid start/stop. No
// action is issued against a transitional instance; it is picked up
// again on the next cycle.
func (s InstanceState) Transitional() bool {
	return s == StatePending || s == StateStopping
}

// Action is the actuation a reconciliation cycle decided on.
type Action string

const (
	ActionStart Action = "start"
	ActionStop  Action = "stop"
	ActionNone  Action = "none"
)

// InstanceSnapshot is one instance's observed state and schedule tags
// as of a single evaluation cycle. Snapshots are rebuilt fresh every
// cycle and never mutated.
type InstanceSnapshot struct {
	InstanceID       string
	Name             string
	InstanceType     string
	Region           string
	AvailabilityZone string
	State            InstanceState

	// Raw tag values; empty string when the tag is absent.
	OnTimeRaw        string
	OffTimeRaw       string
	DisabledUntilRaw string

	// Slack member IDs from the Stakeholders tag.
	Stakeholders []string
}

// HasSchedule reports whether both power schedule tags are present.
func (s InstanceSnapshot) HasSchedule() bool {
	return s.OnTimeRaw != "" && s.OffTimeRaw != ""
}

// ActionDecision is the outcome of reconciling one instance: the state
// the schedule wants and the single idempotent action (if any) that
// converges the instance toward it.
type ActionDecision struct {
	Instance InstanceSnapshot
	Window   schedule.Window
	Desired  InstanceState
	Action   Action

	// Skipped is true when the instance was never evaluated against a
	// window: no schedule tags, or scheduling disabled by tag. Skipped
	// instances are not counted as processed.
	Skipped bool

	// Evaluation context, for logging and the plan table.
	LocalNow     time.Time
	Zone         string
	ZoneFallback bool
	NextChange   *time.Time
	Reason       string
}

// CycleOutcome aggregates per-cycle counters for the summary log line.
type CycleOutcome struct {
	Processed int
	Started   int
	Stopped   int
	Errors    int
}
