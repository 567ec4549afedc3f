package idempotency

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryStore_ClaimOnce(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	ok, err := s.Claim(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, _ = s.Claim(ctx, "k1")
	if ok {
		t.Error("second claim must fail")
	}

	if err := s.Release(ctx, "k1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, _ = s.Claim(ctx, "k1")
	if !ok {
		t.Error("claim after release must succeed")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if ok, _ := s.Claim(ctx, "k"); !ok {
		t.Fatal("first claim failed")
	}
	now = now.Add(2 * time.Minute)
	if ok, _ := s.Claim(ctx, "k"); !ok {
		t.Error("claim after expiry must succeed")
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.Claim(context.Background(), "same"); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins.Load())
	}
}

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisStore_ClaimOnce(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	s := NewRedisStore(client, time.Minute)
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	defer client.Del(ctx, keyPrefix+key)

	ok, err := s.Claim(ctx, key)
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = s.Claim(ctx, key)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if ok {
		t.Error("second claim must fail")
	}

	ttl, _ := client.TTL(ctx, keyPrefix+key).Result()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("unexpected ttl %s", ttl)
	}

	if err := s.Release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := s.Claim(ctx, key); !ok {
		t.Error("claim after release must succeed")
	}
}
