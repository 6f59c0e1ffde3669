package filestore_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"showsync/internal/filestore"
	"showsync/internal/services"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, code int, message string, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"code": code, "message": message, "data": data}); err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
}

func newOpenList(t *testing.T, handler http.HandlerFunc) *filestore.OpenList {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	store, err := filestore.NewOpenList(server.URL+"/", "secret", filestore.WithHTTPClient(server.Client()), filestore.WithRetry(2, time.Millisecond))
	if err != nil {
		t.Fatalf("NewOpenList: %v", err)
	}
	return store
}

func TestOpenListList(t *testing.T) {
	store := newOpenList(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/fs/list" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "secret" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["path"] != "/tv/Show" {
			t.Fatalf("unexpected list path %v", body["path"])
		}
		writeEnvelope(t, w, 200, "success", map[string]any{
			"content": []map[string]any{
				{"name": "Season 1", "is_dir": true},
				{"name": "Show.S01E01.mkv", "is_dir": false, "size": 1024},
			},
			"total": 2,
		})
	})

	entries, err := store.List(context.Background(), "/tv/Show")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 || !entries[0].IsDir || entries[1].Name != "Show.S01E01.mkv" || entries[1].Size != 1024 {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestOpenListListMissingDirIsEmpty(t *testing.T) {
	store := newOpenList(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, 500, "failed get objs: failed get dir: object not found", nil)
	})
	entries, err := store.List(context.Background(), "/missing")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil listing, got %#v", entries)
	}
}

func TestOpenListNullContentIsEmpty(t *testing.T) {
	store := newOpenList(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, 200, "success", map[string]any{"content": nil, "total": 0})
	})
	entries, err := store.List(context.Background(), "/empty")
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty listing, got %v %v", entries, err)
	}
}

func TestOpenListRetriesListOnInternalError(t *testing.T) {
	var calls atomic.Int32
	store := newOpenList(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		writeEnvelope(t, w, 200, "success", map[string]any{"content": []any{}})
	})
	if _, err := store.List(context.Background(), "/tv"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestOpenListMoveAndRenamePayloads(t *testing.T) {
	var seen []string
	store := newOpenList(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		seen = append(seen, r.URL.Path)
		switch r.URL.Path {
		case "/api/fs/rename":
			if body["path"] != "/src/a.mkv" || body["name"] != "Show.S01.E01.mkv" {
				t.Fatalf("unexpected rename body %v", body)
			}
		case "/api/fs/move":
			names, _ := body["names"].([]any)
			if body["src_dir"] != "/src" || body["dst_dir"] != "/dst" || len(names) != 1 || names[0] != "Show.S01.E01.mkv" {
				t.Fatalf("unexpected move body %v", body)
			}
		case "/api/fs/mkdir":
			if body["path"] != "/dst" {
				t.Fatalf("unexpected mkdir body %v", body)
			}
		}
		writeEnvelope(t, w, 200, "success", nil)
	})

	ctx := context.Background()
	if err := store.Mkdir(ctx, "/dst"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := store.Rename(ctx, "/src/a.mkv", "Show.S01.E01.mkv"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := store.Move(ctx, "/src", "/dst", "Show.S01.E01.mkv"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("unexpected calls %v", seen)
	}
}

func TestOpenListErrorClassification(t *testing.T) {
	var calls atomic.Int32
	store := newOpenList(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/api/fs/rename" {
			writeEnvelope(t, w, 500, "object not found", nil)
			return
		}
		writeEnvelope(t, w, 403, "permission denied", nil)
	})

	err := store.Rename(context.Background(), "/x", "y")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	err = store.Move(context.Background(), "/a", "/b", "c")
	if !errors.Is(err, services.ErrInternal) {
		t.Fatalf("expected internal, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("rename and move must not be retried, got %d calls", calls.Load())
	}
}

func TestNewOpenListRequiresBaseURL(t *testing.T) {
	_, err := filestore.NewOpenList(" ", "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
