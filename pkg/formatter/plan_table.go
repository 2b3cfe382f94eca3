package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/powersched/powersched/internal/models"
)

// PrintDecisionsTable prints a formatted table of per-instance
// schedule decisions, typically after a dry run.
func PrintDecisionsTable(out io.Writer, decisions []models.ActionDecision, scanTime time.Time, scanDuration time.Duration) {
	if len(decisions) == 0 {
		fmt.Fprintln(out, "No instances with power schedules found.")
		return
	}

	// Actionable instances first, then by region and name
	sort.Slice(decisions, func(i, j int) bool {
		di, dj := decisions[i], decisions[j]
		if (di.Action != models.ActionNone) != (dj.Action != models.ActionNone) {
			return di.Action != models.ActionNone
		}
		if di.Instance.Region != dj.Instance.Region {
			return di.Instance.Region < dj.Instance.Region
		}
		return di.Instance.Name < dj.Instance.Name
	})

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)

	fmt.Fprintf(w, "Scan time: %s (completed in %.2f seconds)\n",
		scanTime.Format("2006-01-02 15:04:05"),
		scanDuration.Seconds())

	fmt.Fprintln(w, "INSTANCE ID\tNAME\tREGION\tSTATE\tON\tOFF\tLOCAL TIME\tTIMEZONE\tDESIRED\tACTION\tNEXT CHANGE")

	for _, d := range decisions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Instance.InstanceID,
			d.Instance.Name,
			d.Instance.Region,
			d.Instance.State,
			windowBound(d, d.Window.On.String()),
			windowBound(d, d.Window.Off.String()),
			localTime(d),
			zoneName(d),
			desired(d),
			d.Action,
			nextChange(d),
		)
	}

	w.Flush()
}

// PrintOutcomeSummary displays the cycle counters.
func PrintOutcomeSummary(out io.Writer, outcome models.CycleOutcome) {
	fmt.Fprintln(out, "\n## Power Schedule Cycle Summary")

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "PROCESSED\tSTARTED\tSTOPPED\tERRORS")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\n",
		outcome.Processed, outcome.Started, outcome.Stopped, outcome.Errors)
	w.Flush()
}

// Instances without a parsable schedule have no window to show
func windowBound(d models.ActionDecision, s string) string {
	if !d.Instance.HasSchedule() || d.LocalNow.IsZero() {
		return "-"
	}
	return s
}

func localTime(d models.ActionDecision) string {
	if d.LocalNow.IsZero() {
		return "-"
	}
	return d.LocalNow.Format("15:04")
}

func zoneName(d models.ActionDecision) string {
	if d.Zone == "" {
		return "-"
	}
	if d.ZoneFallback {
		return d.Zone + " (fallback)"
	}
	return d.Zone
}

func desired(d models.ActionDecision) string {
	if d.Desired == "" {
		return "-"
	}
	return string(d.Desired)
}

func nextChange(d models.ActionDecision) string {
	if d.NextChange == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)",
		d.NextChange.Format("15:04"),
		humanize.RelTime(d.LocalNow, *d.NextChange, "from now", "ago"))
}
