package scheduler

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powersched/powersched/internal/models"
	"github.com/powersched/powersched/pkg/schedule"
	"github.com/powersched/powersched/pkg/timezone"
)

func newTestReconciler(t *testing.T) *Reconciler {
	t.Helper()
	resolver, err := timezone.NewResolver("UTC")
	require.NoError(t, err)
	return NewReconciler(resolver, zerolog.Nop())
}

func testInstance(state models.InstanceState) models.InstanceSnapshot {
	return models.InstanceSnapshot{
		InstanceID: "i-1234567890abcdef0",
		Name:       "TestInstance",
		Region:     "us-west-2",
		State:      state,
		OnTimeRaw:  "09:00",
		OffTimeRaw: "17:00",
	}
}

// 2023-01-01 18:00 UTC is 10:00 in Los Angeles, inside 09:00-17:00.
var insideWindowUTC = time.Date(2023, 1, 1, 18, 0, 0, 0, time.UTC)

// 2023-01-02 02:00 UTC is 18:00 the previous day in Los Angeles.
var outsideWindowUTC = time.Date(2023, 1, 2, 2, 0, 0, 0, time.UTC)

func TestReconcileStartsStoppedInstanceInWindow(t *testing.T) {
	r := newTestReconciler(t)

	decision, err := r.Reconcile(testInstance(models.StateStopped), insideWindowUTC)
	require.NoError(t, err)

	assert.Equal(t, models.StateRunning, decision.Desired)
	assert.Equal(t, models.ActionStart, decision.Action)
	assert.Equal(t, "America/Los_Angeles", decision.Zone)
	assert.False(t, decision.ZoneFallback)
	assert.Equal(t, "10:00", decision.LocalNow.Format("15:04"))
}

func TestReconcileStopsRunningInstanceOutsideWindow(t *testing.T) {
	r := newTestReconciler(t)

	decision, err := r.Reconcile(testInstance(models.StateRunning), outsideWindowUTC)
	require.NoError(t, err)

	assert.Equal(t, models.StateStopped, decision.Desired)
	assert.Equal(t, models.ActionStop, decision.Action)
}

func TestReconcileNoActionWhenConverged(t *testing.T) {
	r := newTestReconciler(t)

	decision, err := r.Reconcile(testInstance(models.StateRunning), insideWindowUTC)
	require.NoError(t, err)
	assert.Equal(t, models.ActionNone, decision.Action)

	decision, err = r.Reconcile(testInstance(models.StateStopped), outsideWindowUTC)
	require.NoError(t, err)
	assert.Equal(t, models.ActionNone, decision.Action)
}

func TestReconcileDefersTransitionalStates(t *testing.T) {
	r := newTestReconciler(t)

	for _, state := range []models.InstanceState{models.StatePending, models.StateStopping} {
		decision, err := r.Reconcile(testInstance(state), insideWindowUTC)
		require.NoError(t, err)
		assert.Equal(t, models.ActionNone, decision.Action, "state=%s", state)
	}
}

func TestReconcileSkipsMissingSchedule(t *testing.T) {
	r := newTestReconciler(t)

	inst := testInstance(models.StateRunning)
	inst.OnTimeRaw = ""

	decision, err := r.Reconcile(inst, insideWindowUTC)
	require.NoError(t, err)
	assert.Equal(t, models.ActionNone, decision.Action)
	assert.Equal(t, "no power schedule tags found", decision.Reason)
}

func TestReconcileRejectsUnparsableTags(t *testing.T) {
	r := newTestReconciler(t)

	inst := testInstance(models.StateRunning)
	inst.OffTimeRaw = "25:00"

	decision, err := r.Reconcile(inst, insideWindowUTC)
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrInvalidTimeFormat)
	assert.Equal(t, models.ActionNone, decision.Action)
}

func TestReconcileOvernightWindow(t *testing.T) {
	r := newTestReconciler(t)

	inst := testInstance(models.StateStopped)
	inst.OnTimeRaw = "22:00"
	inst.OffTimeRaw = "06:00"

	// 07:00 UTC on 2023-01-01 is 23:00 PST the previous day.
	decision, err := r.Reconcile(inst, time.Date(2023, 1, 1, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.ActionStart, decision.Action)

	// 20:00 UTC is 12:00 PST, outside the overnight window.
	inst.State = models.StateRunning
	decision, err = r.Reconcile(inst, time.Date(2023, 1, 1, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.ActionStop, decision.Action)
}

func TestReconcileUnknownRegionFallsBack(t *testing.T) {
	r := newTestReconciler(t)

	inst := testInstance(models.StateStopped)
	inst.Region = "mars-north-1"

	// Fallback is UTC, so 10:00 UTC is inside the window.
	decision, err := r.Reconcile(inst, time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, decision.ZoneFallback)
	assert.Equal(t, "UTC", decision.Zone)
	assert.Equal(t, models.ActionStart, decision.Action)
}

func TestReconcileDisabledUntil(t *testing.T) {
	r := newTestReconciler(t)

	inst := testInstance(models.StateStopped)
	inst.DisabledUntilRaw = "2025-01-01T00:00:00Z"

	decision, err := r.Reconcile(inst, insideWindowUTC)
	require.NoError(t, err)
	assert.True(t, decision.Skipped)
	assert.Equal(t, models.ActionNone, decision.Action)
	assert.Contains(t, decision.Reason, "scheduling disabled until")

	// Expired disable windows are ignored.
	inst.DisabledUntilRaw = "2022-01-01 00:00:00"
	decision, err = r.Reconcile(inst, insideWindowUTC)
	require.NoError(t, err)
	assert.False(t, decision.Skipped)
	assert.Equal(t, models.ActionStart, decision.Action)

	// Unparsable values are ignored too.
	inst.DisabledUntilRaw = "whenever"
	decision, err = r.Reconcile(inst, insideWindowUTC)
	require.NoError(t, err)
	assert.Equal(t, models.ActionStart, decision.Action)
}

func TestReconcileNextChange(t *testing.T) {
	r := newTestReconciler(t)

	// Inside the window: the next change is today's off time.
	decision, err := r.Reconcile(testInstance(models.StateRunning), insideWindowUTC)
	require.NoError(t, err)
	require.NotNil(t, decision.NextChange)
	assert.Equal(t, "17:00", decision.NextChange.Format("15:04"))
	assert.Equal(t, decision.LocalNow.Day(), decision.NextChange.Day())

	// After the window: the next change is tomorrow's on time.
	decision, err = r.Reconcile(testInstance(models.StateRunning), outsideWindowUTC)
	require.NoError(t, err)
	require.NotNil(t, decision.NextChange)
	assert.Equal(t, "09:00", decision.NextChange.Format("15:04"))
	assert.True(t, decision.NextChange.After(decision.LocalNow))

	// Degenerate windows never change state.
	inst := testInstance(models.StateStopped)
	inst.OnTimeRaw = "09:00"
	inst.OffTimeRaw = "9am"
	decision, err = r.Reconcile(inst, insideWindowUTC)
	require.NoError(t, err)
	assert.Nil(t, decision.NextChange)
	assert.Equal(t, models.StateStopped, decision.Desired)
}
