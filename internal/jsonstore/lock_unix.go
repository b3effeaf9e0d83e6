//go:build unix

package jsonstore

import (
	"golang.org/x/sys/unix"
)

// tryLock takes an exclusive flock without blocking
func (l *docLock) tryLock() error {
	return unix.Flock(int(l.file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func (l *docLock) unlock() {
	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
}

func isProcessAlive(pid int) bool {
	// Signal 0 only checks that the process exists
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
