package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/afero"
)

// CopyVerified copies src to dst inside fsys, then re-reads dst and compares
// its size and SHA-256 with the source. A mismatched dst is removed.
func CopyVerified(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	srcHash := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHash))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = fsys.Remove(dst)
		return fmt.Errorf("copy: %w", err)
	}

	if written != info.Size() {
		_ = fsys.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	dstSum, err := fileSum(fsys, dst)
	if err != nil {
		_ = fsys.Remove(dst)
		return err
	}
	if !bytes.Equal(srcHash.Sum(nil), dstSum) {
		_ = fsys.Remove(dst)
		return errors.New("copy hash mismatch: destination differs from source")
	}
	return nil
}

// Move renames src to dst, falling back to a verified copy plus removal of
// src when the two sit on different devices.
func Move(fsys afero.Fs, src, dst string) error {
	err := fsys.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := CopyVerified(fsys, src, dst); err != nil {
		return fmt.Errorf("copy across devices: %w", err)
	}
	if err := fsys.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

func fileSum(fsys afero.Fs, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open destination: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash destination: %w", err)
	}
	return h.Sum(nil), nil
}
