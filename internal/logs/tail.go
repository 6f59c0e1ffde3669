package logs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
)

// Tailer reads a log file that lumberjack may rotate underneath it.
// Only complete lines are returned; a trailing partial line stays pending
// until its newline arrives.
type Tailer struct {
	fs     afero.Fs
	path   string
	offset int64
}

// NewTailer creates a tailer positioned at the start of path.
func NewTailer(fs afero.Fs, path string) *Tailer {
	return &Tailer{fs: fs, path: path}
}

// Offset is the byte position of the next unread line.
func (t *Tailer) Offset() int64 { return t.offset }

// Last returns up to n trailing lines and positions the tailer after them.
// n <= 0 skips to the end without returning anything.
func (t *Tailer) Last(n int) ([]string, error) {
	file, err := t.fs.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			t.offset = 0
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var (
		ring  = make([]string, max(n, 0))
		count int
		read  int64
	)
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 && line[len(line)-1] == '\n' {
			read += int64(len(line))
			if n > 0 {
				ring[count%n] = string(bytes.TrimRight(line, "\r\n"))
				count++
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read log file: %w", err)
		}
	}
	t.offset = read

	if count == 0 {
		return nil, nil
	}
	kept := min(count, n)
	lines := make([]string, 0, kept)
	for i := count - kept; i < count; i++ {
		lines = append(lines, ring[i%n])
	}
	return lines, nil
}

// Next returns complete lines written since the last call. When the file
// shrinks below the current offset it was rotated, and reading restarts
// from the top of the new file.
func (t *Tailer) Next() ([]string, error) {
	info, err := t.fs.Stat(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			t.offset = 0
			return nil, nil
		}
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("log path %q is a directory", t.path)
	}
	if info.Size() < t.offset {
		t.offset = 0
	}
	if info.Size() == t.offset {
		return nil, nil
	}

	file, err := t.fs.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()
	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek log file: %w", err)
	}
	chunk, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	end := bytes.LastIndexByte(chunk, '\n')
	if end < 0 {
		return nil, nil
	}
	t.offset += int64(end + 1)

	var lines []string
	for _, line := range bytes.Split(chunk[:end], []byte{'\n'}) {
		lines = append(lines, string(bytes.TrimRight(line, "\r")))
	}
	return lines, nil
}

// Follow polls for new lines until ctx is cancelled, handing each to emit.
func (t *Tailer) Follow(ctx context.Context, every time.Duration, emit func(string)) error {
	if every <= 0 {
		every = 500 * time.Millisecond
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		lines, err := t.Next()
		if err != nil {
			return err
		}
		for _, line := range lines {
			emit(line)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
