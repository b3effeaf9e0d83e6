package jsonstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	lockSuffix  = ".lock"
	lockTimeout = 500 * time.Millisecond
	minBackoff  = 5 * time.Millisecond
	maxBackoff  = 50 * time.Millisecond
)

// ErrLocked is returned when another process keeps a document locked
// past the timeout.
var ErrLocked = errors.New("document is locked")

// docLock is an exclusive OS lock on the sidecar file of one JSON document.
// The OS drops it when the holding process exits.
type docLock struct {
	doc  string
	file *os.File
}

func newDocLock(doc string) *docLock {
	return &docLock{doc: doc}
}

func (l *docLock) path() string { return l.doc + lockSuffix }

// WithLock runs fn while holding the write lock for the document at path.
func WithLock(path string, fn func() error) error {
	l := newDocLock(path)
	if err := l.acquire(lockTimeout); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	defer l.release()
	return fn()
}

// acquire polls for the lock with exponential backoff until timeout.
// On timeout the error names the document and whoever holds it.
func (l *docLock) acquire(timeout time.Duration) error {
	f, err := os.OpenFile(l.path(), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path(), err)
	}
	l.file = f

	deadline := time.Now().Add(timeout)
	for wait := minBackoff; ; wait = min(wait*2, maxBackoff) {
		if l.tryLock() == nil {
			l.stamp()
			return nil
		}
		if time.Now().After(deadline) {
			h := readHolder(l.path())
			l.file.Close()
			l.file = nil
			return fmt.Errorf("%w: %s held by %s for over %v", ErrLocked, filepath.Base(l.doc), h, timeout)
		}
		time.Sleep(wait)
	}
}

func (l *docLock) release() {
	if l.file == nil {
		return
	}
	l.file.Truncate(0)
	l.unlock()
	l.file.Close()
	l.file = nil
}

// holder identifies the process writing a document
type holder struct {
	pid   int
	cmd   string
	since time.Time
}

func (h holder) String() string {
	if h.pid == 0 {
		return "an unknown process"
	}
	s := fmt.Sprintf("pid %d", h.pid)
	if h.cmd != "" {
		s += " (" + h.cmd + ")"
	}
	if !h.since.IsZero() {
		s += " since " + h.since.Format(time.TimeOnly)
	}
	if !isProcessAlive(h.pid) {
		s += ", process gone"
	}
	return s
}

// stamp records this process as the holder
func (l *docLock) stamp() {
	cmd := filepath.Base(os.Args[0])
	if len(os.Args) > 1 {
		cmd += " " + os.Args[1]
	}
	l.file.Truncate(0)
	l.file.Seek(0, 0)
	fmt.Fprintf(l.file, "pid=%d\ncmd=%s\nsince=%s\n", os.Getpid(), cmd, time.Now().Format(time.RFC3339))
	l.file.Sync()
}

// readHolder parses the holder stamp in a lock file
func readHolder(lockPath string) holder {
	var h holder
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return h
	}
	for _, line := range strings.Split(string(data), "\n") {
		k, v, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch k {
		case "pid":
			h.pid, _ = strconv.Atoi(v)
		case "cmd":
			h.cmd = v
		case "since":
			h.since, _ = time.Parse(time.RFC3339, v)
		}
	}
	return h
}
