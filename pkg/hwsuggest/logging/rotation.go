package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultMaxSize is the log file size that triggers rotation.
	DefaultMaxSize = 10 * 1000 * 1000

	// DefaultMaxBackups is the number of rotated files kept.
	DefaultMaxBackups = 3
)

// RotationConfig bounds the size of the log file. Rotated files are kept
// next to it as <path>.1 (newest) through <path>.N.
type RotationConfig struct {
	// MaxSize is the size in bytes at which the file is rotated.
	// Zero means DefaultMaxSize.
	MaxSize int64

	// MaxBackups is the number of rotated files to keep.
	// Zero means DefaultMaxBackups.
	MaxBackups int
}

// withDefaults fills zero fields.
func (c RotationConfig) withDefaults() RotationConfig {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = DefaultMaxBackups
	}
	return c
}

// ParseSize parses a human-readable size such as "10MB" or "512 KiB".
// An empty string means DefaultMaxSize.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultMaxSize, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid log size %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid log size %q: must be greater than zero", s)
	}
	return int64(n), nil
}

// rotatingFile is an append-only log file shared by concurrent hwsuggest
// runs. Writes hold an exclusive file lock, and a file rotated away by
// another process is detected and reopened.
type rotatingFile struct {
	mu   sync.Mutex
	path string
	cfg  RotationConfig
	file *os.File
	size int64
}

func openRotatingFile(path string, cfg RotationConfig) (*rotatingFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &rotatingFile{path: path, cfg: cfg.withDefaults()}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends p, rotating first when p would push the file past MaxSize.
func (w *rotatingFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, fs.ErrClosed
	}

	locked := w.file
	if err := lockFile(locked); err != nil {
		return 0, fmt.Errorf("locking log file: %w", err)
	}
	defer unlockFile(locked)

	if err := w.refresh(); err != nil {
		return 0, err
	}

	if w.size > 0 && w.size+int64(len(p)) > w.cfg.MaxSize {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing log file: %w", err)
	}
	return n, nil
}

// Close syncs and closes the file.
func (w *rotatingFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	syncErr := w.file.Sync()
	closeErr := w.file.Close()
	w.file = nil

	if syncErr != nil {
		return fmt.Errorf("syncing log file: %w", syncErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing log file: %w", closeErr)
	}
	return nil
}

func (w *rotatingFile) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	w.file = file
	w.size = info.Size()
	return nil
}

// refresh updates the cached size and reopens the path when another
// process has rotated the file we hold.
func (w *rotatingFile) refresh() error {
	held, err := w.file.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}

	current, err := os.Stat(w.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("stat log file: %w", err)
	case os.SameFile(held, current):
		w.size = held.Size()
		return nil
	}

	_ = w.file.Close()
	w.file = nil
	return w.open()
}

// rotate shifts <path>.i to <path>.i+1, dropping the oldest, moves the
// current file to <path>.1 and opens a fresh file.
func (w *rotatingFile) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing current file: %w", err)
	}
	w.file = nil

	_ = os.Remove(w.backup(w.cfg.MaxBackups))
	for i := w.cfg.MaxBackups - 1; i >= 1; i-- {
		if err := os.Rename(w.backup(i), w.backup(i+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("renaming %s: %w", w.backup(i), err)
		}
	}
	if err := os.Rename(w.path, w.backup(1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("renaming log file: %w", err)
	}

	return w.open()
}

func (w *rotatingFile) backup(i int) string {
	return fmt.Sprintf("%s.%d", w.path, i)
}
