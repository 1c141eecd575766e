package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyFile writes to <dir>/<YYYY-MM-DD>.log and switches files when the
// date of the clock changes. The directory is created on first write.
type DailyFile struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

// NewDailyFile returns a DailyFile under dir. A nil now uses time.Now.
func NewDailyFile(dir string, now func() time.Time) *DailyFile {
	if now == nil {
		now = time.Now
	}
	return &DailyFile{dir: dir, now: now}
}

// Path returns the file written for t.
func (f *DailyFile) Path(t time.Time) string {
	return filepath.Join(f.dir, t.Format(time.DateOnly)+".log")
}

func (f *DailyFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.now()
	if day := t.Format(time.DateOnly); f.file == nil || day != f.day {
		if err := f.open(t); err != nil {
			return 0, err
		}
	}
	return f.file.Write(p)
}

func (f *DailyFile) open(t time.Time) error {
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(f.Path(t), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	f.file = file
	f.day = t.Format(time.DateOnly)
	return nil
}

// Close closes the current file. A later Write opens it again.
func (f *DailyFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
