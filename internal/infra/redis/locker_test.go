package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestLockerSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	locker := NewLocker(newClient(mr), time.Minute)
	unlock, err := locker.Lock(context.Background(), "learner:1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !mr.Exists("lock:learner:1") {
		t.Fatalf("expected redis key to be set")
	}

	unlock()
	if mr.Exists("lock:learner:1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestLockerBlocksSecondHolder(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	locker := NewLocker(newClient(mr), time.Minute)
	unlock, err := locker.Lock(context.Background(), "learner:1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "learner:1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	unlock()
	unlock2, err := locker.Lock(context.Background(), "learner:1")
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	unlock2()
}

func TestLockerDoesNotReleaseForeignToken(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	locker := NewLocker(newClient(mr), time.Minute)
	unlock, _ := locker.Lock(context.Background(), "learner:1")

	// Simulate expiry and takeover by another instance.
	if err := mr.Set("lock:learner:1", "someone-else"); err != nil {
		t.Fatalf("set: %v", err)
	}
	unlock()

	got, err := mr.Get("lock:learner:1")
	if err != nil || got != "someone-else" {
		t.Fatalf("expected foreign lock to survive, got %q %v", got, err)
	}
}
