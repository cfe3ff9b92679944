package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedisStore struct {
	values map[string]string
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}}
}

func (f *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, held := f.values[key]; held {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeRedisStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestWorkerLockKeyIsNamespacedPerEnvironment(t *testing.T) {
	if got := WorkerLockKey("production"); got != "tip:cron-worker:lock:production" {
		t.Fatalf("key = %q", got)
	}
	if got := WorkerLockKey(""); got != "tip:cron-worker:lock:local" {
		t.Fatalf("empty env key = %q", got)
	}
}

func TestRedisLockSecondAcquireBlocked(t *testing.T) {
	store := newFakeRedisStore()
	key := WorkerLockKey("test")

	first, err := NewRedisLock(store, key, time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	second, err := NewRedisLock(store, key, time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}

	ok, err := first.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, err = second.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second worker must not take a held lock")
	}
}

func TestRedisLockReleaseOnlyByOwner(t *testing.T) {
	store := newFakeRedisStore()
	key := WorkerLockKey("test")

	holder, err := NewRedisLock(store, key, time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	if ok, err := holder.Acquire(context.Background()); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	// a lock that never acquired must not delete the holder's key
	bystander, err := NewRedisLock(store, key, time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	if err := bystander.Release(context.Background()); err != nil {
		t.Fatalf("bystander release: %v", err)
	}
	if _, held := store.values[key]; !held {
		t.Fatal("bystander release removed the holder's lock")
	}

	if err := holder.Release(context.Background()); err != nil {
		t.Fatalf("holder release: %v", err)
	}
	if _, held := store.values[key]; held {
		t.Fatal("holder release left the lock behind")
	}
}
