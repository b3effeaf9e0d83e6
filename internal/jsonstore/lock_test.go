//go:build unix

package jsonstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDocLockStampsHolder(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "key_map.json")

	l := newDocLock(doc)
	if err := l.acquire(500 * time.Millisecond); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer l.release()

	h := readHolder(doc + lockSuffix)
	if h.pid != os.Getpid() {
		t.Errorf("holder pid = %d, want %d", h.pid, os.Getpid())
	}
	if h.cmd == "" || h.since.IsZero() {
		t.Errorf("holder missing cmd or time: %+v", h)
	}
}

func TestDocLockSerializesWriters(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "switch_info.json")

	const writers = 5
	const rounds = 10

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				l := newDocLock(doc)
				if err := l.acquire(5 * time.Second); err != nil {
					t.Errorf("acquire: %v", err)
					return
				}
				val := atomic.LoadInt64(&counter)
				time.Sleep(time.Millisecond)
				atomic.StoreInt64(&counter, val+1)
				l.release()
			}
		}()
	}
	wg.Wait()

	if counter != writers*rounds {
		t.Errorf("counter = %d, want %d", counter, writers*rounds)
	}
}

func TestDocLockTimeoutNamesDocument(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "key_map.json")

	first := newDocLock(doc)
	if err := first.acquire(500 * time.Millisecond); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer first.release()

	second := newDocLock(doc)
	err := second.acquire(50 * time.Millisecond)
	if err == nil {
		second.release()
		t.Fatal("expected the second lock to time out")
	}
	if !errors.Is(err, ErrLocked) {
		t.Errorf("err = %v, want ErrLocked", err)
	}
	for _, want := range []string{"key_map.json", "pid "} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestWithLockWrapsIOFailure(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "key_map.json")

	first := newDocLock(doc)
	if err := first.acquire(500 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	defer first.release()

	ran := false
	err := WithLock(doc, func() error { ran = true; return nil })
	if ran {
		t.Error("fn ran without the lock")
	}
	if !errors.Is(err, ErrIOFailure) || !errors.Is(err, ErrLocked) {
		t.Errorf("err = %v, want ErrIOFailure and ErrLocked", err)
	}
}

func TestDocLockReleaseLetsOthersIn(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "key_map.json")

	first := newDocLock(doc)
	if err := first.acquire(500 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	first.release()

	second := newDocLock(doc)
	if err := second.acquire(500 * time.Millisecond); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	second.release()
}

func TestHolderString(t *testing.T) {
	if got := (holder{}).String(); got != "an unknown process" {
		t.Errorf("empty holder = %q", got)
	}
	h := holder{pid: os.Getpid(), cmd: "keytester bind"}
	got := h.String()
	if !strings.Contains(got, "keytester bind") || strings.Contains(got, "gone") {
		t.Errorf("live holder = %q", got)
	}
}
