package filestore

import (
	"context"
	"path"
	"time"
)

// Entry is one item in a remote directory listing.
type Entry struct {
	Name     string
	IsDir    bool
	Size     int64
	Modified time.Time
}

// Store is the remote file tree the reconciler works against. Paths are
// absolute and slash separated.
//
// List returns an empty slice for a directory that does not exist. Mkdir is
// idempotent. Rename changes only the last path element in place. Move
// relocates the named file from srcDir into dstDir keeping its name.
type Store interface {
	List(ctx context.Context, dir string) ([]Entry, error)
	Mkdir(ctx context.Context, dir string) error
	Rename(ctx context.Context, filePath, newName string) error
	Move(ctx context.Context, srcDir, dstDir, name string) error
}

// Join builds a remote path.
func Join(elem ...string) string {
	return path.Join(elem...)
}
