package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"rubrics_backend/internal/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestLocalInstanceLock(t *testing.T) {
	lock := NewInstanceLock(nil, "", time.Second)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, 1)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := lock.Acquire(ctx, 1); !errors.Is(err, util.ErrInstanceBusy) {
		t.Fatalf("second acquire err = %v, want ErrInstanceBusy", err)
	}

	other, err := lock.Acquire(ctx, 2)
	if err != nil {
		t.Fatalf("different instance blocked: %v", err)
	}
	other()

	release()
	release()
	again, err := lock.Acquire(ctx, 1)
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	again()
}

func TestRedisInstanceLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	lock := NewInstanceLock(rdb, "test", 5*time.Second)
	ctx := context.Background()
	const key = "test:instance:7:lock"

	release, err := lock.Acquire(ctx, 7)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !mr.Exists(key) {
		t.Fatalf("key %s not set", key)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("ttl %v", ttl)
	}
	if _, err := lock.Acquire(ctx, 7); !errors.Is(err, util.ErrInstanceBusy) {
		t.Fatalf("second acquire err = %v, want ErrInstanceBusy", err)
	}

	// 另一个进程使用同一个 Redis
	peer := NewInstanceLock(rdb, "test", 5*time.Second)
	if _, err := peer.Acquire(ctx, 7); !errors.Is(err, util.ErrInstanceBusy) {
		t.Fatalf("peer acquire err = %v, want ErrInstanceBusy", err)
	}

	release()
	if mr.Exists(key) {
		t.Fatal("key still set after release")
	}
	again, err := peer.Acquire(ctx, 7)
	if err != nil {
		t.Fatalf("peer acquire after release: %v", err)
	}
	again()
}

func TestRedisInstanceLockExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	lock := NewInstanceLock(rdb, "test", 2*time.Second)
	ctx := context.Background()
	const key = "test:instance:9:lock"

	stale, err := lock.Acquire(ctx, 9)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// 持有者超时，锁被其他请求重新获取
	mr.FastForward(3 * time.Second)
	fresh, err := lock.Acquire(ctx, 9)
	if err != nil {
		t.Fatalf("acquire after expiry: %v", err)
	}
	holder, _ := mr.Get(key)

	stale()
	if got, _ := mr.Get(key); got != holder {
		t.Fatalf("stale release removed current holder: %q != %q", got, holder)
	}

	fresh()
	if mr.Exists(key) {
		t.Fatal("key still set after release")
	}
}

func TestRedisInstanceLockUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	lock := NewInstanceLock(rdb, "", time.Second)

	mr.SetError("ERR server unavailable")
	_, err := lock.Acquire(context.Background(), 1)
	if err == nil || errors.Is(err, util.ErrInstanceBusy) {
		t.Fatalf("acquire with failing redis: %v", err)
	}
}
