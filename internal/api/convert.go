package api

import (
	"time"

	"showsync/internal/history"
	"showsync/internal/organizer"
)

// FromRun converts a history run to its API representation.
func FromRun(run history.Run) Run {
	return Run{
		ID:         run.ID,
		Trigger:    run.Trigger,
		StartedAt:  formatTime(run.StartedAt),
		FinishedAt: formatTime(run.FinishedAt),
		Moved:      run.Moved,
		Failures:   run.Failures,
		Error:      run.Error,
	}
}

// FromRuns converts history runs, preserving order.
func FromRuns(runs []history.Run) []Run {
	out := make([]Run, 0, len(runs))
	for _, run := range runs {
		out = append(out, FromRun(run))
	}
	return out
}

// FromPlacement converts a history placement to its API representation.
func FromPlacement(p history.Placement) Placement {
	return Placement{
		RunID:      p.RunID,
		Show:       p.Show,
		Season:     p.Season,
		Episode:    p.Episode,
		SourcePath: p.SourcePath,
		DestPath:   p.DestPath,
		Renamed:    p.Renamed,
		PlacedAt:   formatTime(p.PlacedAt),
	}
}

// FromPlacements converts history placements, preserving order.
func FromPlacements(placements []history.Placement) []Placement {
	out := make([]Placement, 0, len(placements))
	for _, p := range placements {
		out = append(out, FromPlacement(p))
	}
	return out
}

// FromReport summarises an organizer report. A nil report yields nil.
func FromReport(report *organizer.Report) *PassSummary {
	if report == nil {
		return nil
	}
	summary := &PassSummary{
		RunID:      report.RunID,
		StartedAt:  formatTime(report.StartedAt),
		FinishedAt: formatTime(report.FinishedAt),
		Tasks:      report.Tasks,
		Shows:      report.Shows,
		Moved:      report.Moved,
	}
	for _, f := range report.Failures {
		failure := Failure{Task: f.Task, Show: f.Show}
		if f.Err != nil {
			failure.Error = f.Err.Error()
		}
		summary.Failures = append(summary.Failures, failure)
	}
	return summary
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
