package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotatingFileWriter is an io.Writer over a log file that rolls the
// file into numbered backups (file.1 newest .. file.N oldest) once it
// grows past the size limit.
type RotatingFileWriter struct {
	mu      sync.Mutex
	path    string
	limit   int64
	backups int
	file    *os.File
	written int64
}

func NewRotatingFileWriter(path string, limit int64, backups int) (*RotatingFileWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("size limit must be positive")
	}
	if backups < 0 {
		backups = 0
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	w := &RotatingFileWriter{path: path, limit: limit, backups: backups}
	if err := w.open(); err != nil {
		return nil, err
	}

	// A leftover oversized file from a previous run rolls right away.
	if w.written > w.limit {
		if err := w.roll(); err != nil {
			w.file.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *RotatingFileWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	w.written = 0
	if stat, err := f.Stat(); err == nil {
		w.written = stat.Size()
	}
	return nil
}

func (w *RotatingFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	// A single entry larger than the limit still gets written into a
	// fresh file rather than rolling in a loop.
	if w.written > 0 && w.written+int64(len(p)) > w.limit {
		if err := w.roll(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *RotatingFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// roll closes the live file, shuffles the backup chain up by one and
// reopens an empty live file. Callers must hold the mutex.
func (w *RotatingFileWriter) roll() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return err
		}
		w.file = nil
	}

	if w.backups == 0 {
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			return err
		}
	} else if err := w.shift(); err != nil {
		return err
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	w.written = 0
	return nil
}

func (w *RotatingFileWriter) shift() error {
	if err := removeIfExists(w.backup(w.backups)); err != nil {
		return err
	}

	for i := w.backups - 1; i >= 1; i-- {
		src := w.backup(i)
		if _, err := os.Stat(src); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		dst := w.backup(i + 1)
		if err := removeIfExists(dst); err != nil {
			return err
		}
		if err := os.Rename(src, dst); err != nil {
			return err
		}
	}

	if _, err := os.Stat(w.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := removeIfExists(w.backup(1)); err != nil {
		return err
	}
	return os.Rename(w.path, w.backup(1))
}

func (w *RotatingFileWriter) backup(i int) string {
	return fmt.Sprintf("%s.%d", w.path, i)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
