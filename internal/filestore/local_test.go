package filestore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/spf13/afero"

	"showsync/internal/filestore"
	"showsync/internal/services"
)

func TestLocalStoreOperations(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/src/Show/raw.S01E01.mkv", []byte("x"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := filestore.NewLocal(fsys)
	ctx := context.Background()

	entries, err := store.List(ctx, "/src/Show")
	if err != nil || len(entries) != 1 || entries[0].Name != "raw.S01E01.mkv" {
		t.Fatalf("unexpected listing %v %v", entries, err)
	}

	missing, err := store.List(ctx, "/nope")
	if err != nil || missing == nil || len(missing) != 0 {
		t.Fatalf("expected empty listing for missing dir, got %#v %v", missing, err)
	}

	if err := store.Mkdir(ctx, "/dst/Show (2020)/Season 01"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := store.Mkdir(ctx, "/dst/Show (2020)/Season 01"); err != nil {
		t.Fatalf("Mkdir must be idempotent: %v", err)
	}
	if err := store.Rename(ctx, "/src/Show/raw.S01E01.mkv", "Show.S01.E01.mkv"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := store.Move(ctx, "/src/Show", "/dst/Show (2020)/Season 01", "Show.S01.E01.mkv"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if ok, _ := afero.Exists(fsys, "/dst/Show (2020)/Season 01/Show.S01.E01.mkv"); !ok {
		t.Fatal("expected file at destination")
	}
	if ok, _ := afero.Exists(fsys, "/src/Show/Show.S01.E01.mkv"); ok {
		t.Fatal("expected file gone from source")
	}

	if err := store.Rename(ctx, "/src/Show/ghost.mkv", "x.mkv"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing rename source, got %v", err)
	}
	if err := store.Move(ctx, "/src/Show", "/dst", "ghost.mkv"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing move source, got %v", err)
	}
}

func TestNewLocalDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "tv", "Show"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	store, err := filestore.NewLocalDir(root)
	if err != nil {
		t.Fatalf("NewLocalDir: %v", err)
	}
	entries, err := store.List(context.Background(), "/tv")
	if err != nil || len(entries) != 1 || !entries[0].IsDir {
		t.Fatalf("unexpected listing %v %v", entries, err)
	}

	if _, err := filestore.NewLocalDir(filepath.Join(root, "missing")); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

type crossDeviceFs struct {
	afero.Fs
}

func (c crossDeviceFs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: syscall.EXDEV}
}

func TestLocalMoveAcrossDevices(t *testing.T) {
	fsys := crossDeviceFs{afero.NewMemMapFs()}
	_ = afero.WriteFile(fsys, "/downloads/Dark/E01.mkv", []byte("payload"), 0o644)
	_ = fsys.MkdirAll("/media/Dark (2017)/Season 01", 0o755)

	store := filestore.NewLocal(fsys)
	if err := store.Move(context.Background(), "/downloads/Dark", "/media/Dark (2017)/Season 01", "E01.mkv"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if ok, _ := afero.Exists(fsys, "/downloads/Dark/E01.mkv"); ok {
		t.Fatal("source should be gone after a cross-device move")
	}
	got, err := afero.ReadFile(fsys, "/media/Dark (2017)/Season 01/E01.mkv")
	if err != nil || string(got) != "payload" {
		t.Fatalf("unexpected destination %q: %v", got, err)
	}
}
