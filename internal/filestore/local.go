package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"showsync/internal/fileutil"
	"showsync/internal/services"
)

// Local is a Store over an afero filesystem. With an OsFs rooted through
// NewLocalDir it serves a mounted library; with a MemMapFs it backs tests.
type Local struct {
	fs afero.Fs
}

var _ Store = (*Local)(nil)

// NewLocal wraps an existing afero filesystem.
func NewLocal(fsys afero.Fs) *Local {
	return &Local{fs: fsys}
}

// NewLocalDir serves the directory tree under root; remote paths are resolved
// relative to it.
func NewLocalDir(root string) (*Local, error) {
	if strings.TrimSpace(root) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "local store", "init", "root required", nil)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "local store", "init", "stat root", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "local store", "init", root+" is not a directory", nil)
	}
	return NewLocal(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// FS exposes the underlying filesystem.
func (l *Local) FS() afero.Fs {
	return l.fs
}

func (l *Local) List(_ context.Context, dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(l.fs, clean(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, services.Wrap(services.ErrInternal, "local store", "list", dir, err)
	}
	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{
			Name:     info.Name(),
			IsDir:    info.IsDir(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	return entries, nil
}

func (l *Local) Mkdir(_ context.Context, dir string) error {
	if err := l.fs.MkdirAll(clean(dir), 0o755); err != nil {
		return services.Wrap(services.ErrInternal, "local store", "mkdir", dir, err)
	}
	return nil
}

func (l *Local) Rename(_ context.Context, filePath, newName string) error {
	src := clean(filePath)
	if err := l.requireExists(src); err != nil {
		return err
	}
	dst := path.Join(path.Dir(src), newName)
	if err := l.fs.Rename(src, dst); err != nil {
		return services.Wrap(services.ErrInternal, "local store", "rename", filePath, err)
	}
	return nil
}

func (l *Local) Move(_ context.Context, srcDir, dstDir, name string) error {
	src := path.Join(clean(srcDir), name)
	if err := l.requireExists(src); err != nil {
		return err
	}
	dstDir = clean(dstDir)
	if ok, err := afero.DirExists(l.fs, dstDir); err != nil || !ok {
		return services.Wrap(services.ErrNotFound, "local store", "move", "destination "+dstDir+" not found", err)
	}
	if err := fileutil.Move(l.fs, src, path.Join(dstDir, name)); err != nil {
		return services.Wrap(services.ErrInternal, "local store", "move", src, err)
	}
	return nil
}

func (l *Local) requireExists(p string) error {
	ok, err := afero.Exists(l.fs, p)
	if err != nil {
		return services.Wrap(services.ErrInternal, "local store", "stat", p, err)
	}
	if !ok {
		return services.Wrap(services.ErrNotFound, "local store", "stat", p+" not found", nil)
	}
	return nil
}

func clean(p string) string {
	p = path.Clean("/" + strings.TrimPrefix(p, "/"))
	return p
}
