package api

import (
	"errors"
	"testing"
	"time"

	"showsync/internal/history"
	"showsync/internal/organizer"
)

func TestFromRunFormatsTimes(t *testing.T) {
	started := time.Date(2026, 3, 4, 5, 6, 7, 8_000_000, time.FixedZone("CST", 8*3600))
	run := FromRun(history.Run{ID: "r1", Trigger: "interval", StartedAt: started, Moved: 2})

	if run.StartedAt != "2026-03-03T21:06:07.008Z" {
		t.Fatalf("unexpected startedAt %q", run.StartedAt)
	}
	if run.FinishedAt != "" {
		t.Fatalf("expected unfinished run to omit finishedAt, got %q", run.FinishedAt)
	}
	if run.Moved != 2 || run.Trigger != "interval" {
		t.Fatalf("unexpected run: %+v", run)
	}
}

func TestFromReportCarriesFailures(t *testing.T) {
	report := &organizer.Report{
		RunID: "r2",
		Moved: 3,
		Failures: []organizer.ShowFailure{
			{Task: "/src", Show: "Lost", Err: errors.New("no tmdb match")},
		},
	}
	summary := FromReport(report)
	if summary.RunID != "r2" || summary.Moved != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Error != "no tmdb match" || summary.Failures[0].Show != "Lost" {
		t.Fatalf("unexpected failures: %+v", summary.Failures)
	}
	if FromReport(nil) != nil {
		t.Fatal("expected nil summary for nil report")
	}
}

func TestFromPlacementsPreservesOrder(t *testing.T) {
	placements := FromPlacements([]history.Placement{
		{Show: "A", Episode: 2},
		{Show: "A", Episode: 1},
	})
	if len(placements) != 2 || placements[0].Episode != 2 || placements[1].Episode != 1 {
		t.Fatalf("unexpected placements: %+v", placements)
	}
}
