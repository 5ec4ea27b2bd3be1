// Package logger provides the line-capped file writer behind session logs.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// lineWindow keeps the most recent lines written to a log file.
type lineWindow struct {
	lines   []string
	next    int // Slot that receives the next line
	count   int // Lines currently held
	pending int // Lines written since the file was last compacted
}

func newLineWindow(capacity int) *lineWindow {
	return &lineWindow{lines: make([]string, capacity)}
}

func (w *lineWindow) push(line string) {
	w.lines[w.next] = line
	w.next = (w.next + 1) % len(w.lines)
	w.count = min(w.count+1, len(w.lines))
	w.pending++
}

// snapshot returns the held lines, oldest first.
func (w *lineWindow) snapshot() []string {
	out := make([]string, 0, w.count)
	start := (w.next - w.count + len(w.lines)) % len(w.lines)
	for i := range w.count {
		out = append(out, w.lines[(start+i)%len(w.lines)])
	}
	return out
}

// Rotator is an io.Writer that appends to a log file and compacts the file
// down to its newest maxLines lines once twice that many have been written.
type Rotator struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	window   *lineWindow
	maxLines int
}

// NewRotator opens path for appending. A maxLines of 0 or less disables
// compaction.
func NewRotator(path string, maxLines int) (*Rotator, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	r := &Rotator{file: file, path: path, maxLines: maxLines}
	if maxLines > 0 {
		r.window = newLineWindow(maxLines)
	}

	return r, nil
}

// Write implements io.Writer.
func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.file.Write(p)
	if err != nil || r.window == nil {
		return n, err
	}

	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		r.window.push(line)
	}

	if r.window.pending >= 2*r.maxLines {
		if err := r.compact(); err != nil {
			return n, fmt.Errorf("failed to compact log file: %w", err)
		}
	}

	return n, nil
}

// Sync flushes the file.
func (r *Rotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Sync()
}

// Close closes the file.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}

// compact replaces the file with the lines held in the window.
func (r *Rotator) compact() error {
	temp, err := os.CreateTemp(filepath.Dir(r.path), "compact-*.log")
	if err != nil {
		return err
	}
	tempPath := temp.Name()

	content := strings.Join(r.window.snapshot(), "\n") + "\n"
	if _, err := io.WriteString(temp, content); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return err
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	r.file.Close()
	if err := os.Rename(tempPath, r.path); err != nil {
		return err
	}

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	r.file = file
	r.window.pending = r.window.count
	return nil
}
