package organizer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"showsync/internal/config"
	"showsync/internal/filestore"
	"showsync/internal/history"
	"showsync/internal/logging"
	"showsync/internal/metadata"
	"showsync/internal/naming"
	"showsync/internal/organizer"
	"showsync/internal/services"
)

type stubResolver struct {
	shows map[string]metadata.ShowInfo
	calls []string
}

func (s *stubResolver) Resolve(_ context.Context, id naming.ShowIdentity) (metadata.ShowInfo, error) {
	s.calls = append(s.calls, id.Title)
	info, ok := s.shows[id.Title]
	if !ok {
		return metadata.ShowInfo{}, services.Wrap(services.ErrNotFound, "metadata", "search", "no match for "+id.Title, nil)
	}
	return info, nil
}

type stubNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (s *stubNotifier) Send(_ context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return s.err
}

func (s *stubNotifier) Channel() string { return "stub" }

type stubRecorder struct {
	placements []history.Placement
}

func (s *stubRecorder) RecordPlacement(_ context.Context, p history.Placement) error {
	s.placements = append(s.placements, p)
	return nil
}

func writeFiles(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := fs.MkdirAll(path.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path.Dir(p), err)
		}
		if err := afero.WriteFile(fs, p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

func assertExists(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		ok, err := afero.Exists(fs, p)
		if err != nil || !ok {
			t.Errorf("expected %s to exist (err=%v)", p, err)
		}
	}
}

func assertMissing(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if ok, _ := afero.Exists(fs, p); ok {
			t.Errorf("expected %s to be gone", p)
		}
	}
}

var breakingBad = metadata.ShowInfo{ID: 1396, Name: "Breaking Bad", Year: 2008, SeasonCount: 5}

func newOrganizer(fs afero.Fs, resolver organizer.ShowResolver, notifier *stubNotifier, opts ...organizer.Option) *organizer.Organizer {
	return organizer.New(filestore.NewLocal(fs), resolver, notifier, logging.NewNop(), opts...)
}

var task = config.Task{SourceDir: "/src", DestDir: "/dst"}

func TestRunAllPlacesEpisodesAndIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs,
		"/src/Breaking Bad (2008)/Breaking.Bad.S01E01.mkv",
		"/src/Breaking Bad (2008)/BB.S01E02.mkv",
		"/src/Breaking Bad (2008)/notes.txt",
		"/src/Breaking Bad (2008)/Season 2/E01.mkv",
		"/src/Breaking Bad (2008)/Season 2/E02.mp4",
	)
	resolver := &stubResolver{shows: map[string]metadata.ShowInfo{"Breaking Bad": breakingBad}}
	notifier := &stubNotifier{}
	recorder := &stubRecorder{}
	org := newOrganizer(fs, resolver, notifier, organizer.WithRecorder(recorder))

	ctx := services.WithRunID(context.Background(), "run-1")
	report, err := org.RunAll(ctx, []config.Task{task})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if report.Moved != 4 || report.Shows != 1 || report.Tasks != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.RunID != "run-1" {
		t.Fatalf("expected run id from context, got %q", report.RunID)
	}

	assertExists(t, fs,
		"/dst/Breaking Bad (2008)/Season 01/Breaking Bad.S01.E01.mkv",
		"/dst/Breaking Bad (2008)/Season 01/Breaking Bad.S01.E02.mkv",
		"/dst/Breaking Bad (2008)/Season 02/Breaking Bad.S02.E01.mkv",
		"/dst/Breaking Bad (2008)/Season 02/Breaking Bad.S02.E02.mp4",
		"/src/Breaking Bad (2008)/notes.txt",
	)
	assertMissing(t, fs,
		"/src/Breaking Bad (2008)/Breaking.Bad.S01E01.mkv",
		"/src/Breaking Bad (2008)/Season 2/E01.mkv",
	)

	want := []string{
		"Breaking Bad season 1 episodes 1–2 ready",
		"Breaking Bad season 2 episodes 1–2 ready",
	}
	if !slices.Equal(notifier.messages, want) {
		t.Fatalf("messages = %q, want %q", notifier.messages, want)
	}
	if len(recorder.placements) != 4 {
		t.Fatalf("expected 4 placements, got %d", len(recorder.placements))
	}
	first := recorder.placements[0]
	if first.RunID != "run-1" || first.Show != "Breaking Bad" || !first.Renamed {
		t.Fatalf("unexpected placement: %+v", first)
	}

	report, err = org.RunAll(ctx, []config.Task{task})
	if err != nil {
		t.Fatalf("second RunAll: %v", err)
	}
	if report.Moved != 0 {
		t.Fatalf("second pass moved %d files", report.Moved)
	}
	if len(notifier.messages) != 2 {
		t.Fatalf("second pass sent notifications: %q", notifier.messages[2:])
	}
}

func TestRunAllLeavesExistingEpisodesInSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs,
		"/src/Breaking Bad (2008)/S01E01.mkv",
		"/src/Breaking Bad (2008)/S01E02.mkv",
		"/dst/Breaking Bad (2008)/Season 01/Breaking Bad.S01.E01.mkv",
	)
	resolver := &stubResolver{shows: map[string]metadata.ShowInfo{"Breaking Bad": breakingBad}}
	notifier := &stubNotifier{}
	org := newOrganizer(fs, resolver, notifier)

	report, err := org.RunAll(context.Background(), []config.Task{task})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if report.Moved != 1 {
		t.Fatalf("expected one move, got %d", report.Moved)
	}
	if report.RunID == "" {
		t.Fatal("expected generated run id")
	}
	assertExists(t, fs,
		"/src/Breaking Bad (2008)/S01E01.mkv",
		"/dst/Breaking Bad (2008)/Season 01/Breaking Bad.S01.E02.mkv",
	)
	if want := []string{"Breaking Bad season 1 episode 2 ready"}; !slices.Equal(notifier.messages, want) {
		t.Fatalf("messages = %q, want %q", notifier.messages, want)
	}
}

func TestRootFallbackDependsOnSeasonCount(t *testing.T) {
	tests := []struct {
		name    string
		seasons int
		placed  bool
	}{
		{name: "single season", seasons: 1, placed: true},
		{name: "multi season", seasons: 3, placed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFiles(t, fs, "/src/Chernobyl (2019)/E03.mkv")
			info := metadata.ShowInfo{Name: "Chernobyl", Year: 2019, SeasonCount: tt.seasons}
			resolver := &stubResolver{shows: map[string]metadata.ShowInfo{"Chernobyl": info}}
			org := newOrganizer(fs, resolver, &stubNotifier{})

			if _, err := org.RunAll(context.Background(), []config.Task{task}); err != nil {
				t.Fatalf("RunAll: %v", err)
			}
			ok, _ := afero.Exists(fs, "/dst/Chernobyl (2019)/Season 01/Chernobyl.S01.E03.mkv")
			if ok != tt.placed {
				t.Fatalf("placed = %v, want %v", ok, tt.placed)
			}
			stillInSource, _ := afero.Exists(fs, "/src/Chernobyl (2019)/E03.mkv")
			if stillInSource == tt.placed {
				t.Fatalf("source presence = %v, want %v", stillInSource, !tt.placed)
			}
		})
	}
}

func TestRunAllContinuesAfterShowFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs,
		"/src/Unknown Show/S01E01.mkv",
		"/src/Breaking Bad (2008)/S01E01.mkv",
	)
	resolver := &stubResolver{shows: map[string]metadata.ShowInfo{"Breaking Bad": breakingBad}}
	org := newOrganizer(fs, resolver, &stubNotifier{})

	report, err := org.RunAll(context.Background(), []config.Task{task})
	if err == nil {
		t.Fatal("expected joined failure")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found in %v", err)
	}
	if len(report.Failures) != 1 || report.Failures[0].Show != "Unknown Show" {
		t.Fatalf("unexpected failures: %+v", report.Failures)
	}
	assertExists(t, fs, "/dst/Breaking Bad (2008)/Season 01/Breaking Bad.S01.E01.mkv")
}

func TestRunAllSkipsEmptyAndUnparsableShows(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/src/Empty Show (2020)", 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, fs, "/src/(2001)/S01E01.mkv", "/src/loose.S01E01.mkv")
	resolver := &stubResolver{}
	org := newOrganizer(fs, resolver, &stubNotifier{})

	report, err := org.RunAll(context.Background(), []config.Task{task})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(resolver.calls) != 0 {
		t.Fatalf("resolver should not be consulted, got %q", resolver.calls)
	}
	if report.Moved != 0 {
		t.Fatalf("unexpected moves: %d", report.Moved)
	}
}

func TestUnparsableShowNameLogsWarning(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/src/(2005) Title/S01E01.mkv")
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	org := organizer.New(filestore.NewLocal(fs), &stubResolver{}, &stubNotifier{}, logger)

	if _, err := org.RunAll(context.Background(), []config.Task{task}); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry["event_type"] != "show_name_unparsed" {
			continue
		}
		found = true
		if entry["level"] != "warn" {
			t.Fatalf("expected warn level, got %v", entry["level"])
		}
		if entry["directory"] != "(2005) Title" {
			t.Fatalf("expected skipped directory in log, got %v", entry["directory"])
		}
	}
	if !found {
		t.Fatalf("expected show_name_unparsed warning, got %s", buf.String())
	}
}

func TestNotificationFailureDoesNotFailPass(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/src/Breaking Bad (2008)/S01E01.mkv")
	resolver := &stubResolver{shows: map[string]metadata.ShowInfo{"Breaking Bad": breakingBad}}
	notifier := &stubNotifier{err: errors.New("push down")}
	org := newOrganizer(fs, resolver, notifier)

	report, err := org.RunAll(context.Background(), []config.Task{task})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if report.Moved != 1 || len(notifier.messages) != 1 {
		t.Fatalf("unexpected outcome: moved=%d messages=%d", report.Moved, len(notifier.messages))
	}
}

// failingMoveStore fails every move after the first.
type failingMoveStore struct {
	filestore.Store
	moves int
}

func (s *failingMoveStore) Move(ctx context.Context, srcDir, dstDir, name string) error {
	s.moves++
	if s.moves > 1 {
		return errors.New("move refused")
	}
	return s.Store.Move(ctx, srcDir, dstDir, name)
}

func TestPartialSeasonStillAnnouncesPlacedEpisodes(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs,
		"/src/Breaking Bad (2008)/S01E01.mkv",
		"/src/Breaking Bad (2008)/S01E02.mkv",
	)
	resolver := &stubResolver{shows: map[string]metadata.ShowInfo{"Breaking Bad": breakingBad}}
	notifier := &stubNotifier{}
	store := &failingMoveStore{Store: filestore.NewLocal(fs)}
	org := organizer.New(store, resolver, notifier, logging.NewNop())

	report, err := org.RunAll(context.Background(), []config.Task{task})
	if err == nil {
		t.Fatal("expected move failure")
	}
	if report.Moved != 1 {
		t.Fatalf("expected one move, got %d", report.Moved)
	}
	if want := []string{"Breaking Bad season 1 episode 1 ready"}; !slices.Equal(notifier.messages, want) {
		t.Fatalf("messages = %q, want %q", notifier.messages, want)
	}
}

func TestRunAllStopsOnCancelledContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/src/Breaking Bad (2008)/S01E01.mkv")
	resolver := &stubResolver{shows: map[string]metadata.ShowInfo{"Breaking Bad": breakingBad}}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	org := newOrganizer(fs, resolver, &stubNotifier{}, organizer.WithClock(func() time.Time { return now }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := org.RunAll(ctx, []config.Task{task})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Tasks != 0 || !report.FinishedAt.Equal(now) {
		t.Fatalf("unexpected report: %+v", report)
	}
}

type stubRefresher struct {
	calls int
	err   error
}

func (s *stubRefresher) RefreshLibrary(context.Context) error {
	s.calls++
	return s.err
}

func TestLibraryRefreshOnlyAfterPlacements(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/src/Breaking Bad (2008)/S01E01.mkv")
	resolver := &stubResolver{shows: map[string]metadata.ShowInfo{"Breaking Bad": breakingBad}}
	refresher := &stubRefresher{err: errors.New("jellyfin offline")}
	org := newOrganizer(fs, resolver, &stubNotifier{}, organizer.WithLibraryRefresher(refresher))

	if _, err := org.RunAll(context.Background(), []config.Task{task}); err != nil {
		t.Fatalf("refresh failure must not fail the pass: %v", err)
	}
	if refresher.calls != 1 {
		t.Fatalf("expected one refresh, got %d", refresher.calls)
	}

	if _, err := org.RunAll(context.Background(), []config.Task{task}); err != nil {
		t.Fatalf("second RunAll: %v", err)
	}
	if refresher.calls != 1 {
		t.Fatalf("idle pass should not refresh, got %d calls", refresher.calls)
	}
}
