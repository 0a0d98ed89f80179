package ratelimit

import (
	"context"
	"testing"
	"time"

	domain "github.com/example/task-manager/domain/ratelimit"
	"github.com/redis/go-redis/v9"
)

// newTestClient connects to a local Redis, skipping the test when none is
// reachable.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skip("Redis not available, skipping integration test")
	}

	t.Cleanup(func() { client.Close() })
	return client
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	testPrefix := "test:ratelimit:allow:"
	defer client.Del(ctx, testPrefix+"test-key", testPrefix+"test-key:counter")

	limiter := NewSlidingWindowLimiter(client, domain.Config{
		RequestsPerWindow: 5,
		WindowSize:        time.Minute,
	}, testPrefix)

	for i := 0; i < 5; i++ {
		result, err := limiter.Allow(ctx, "test-key")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !result.Allowed {
			t.Errorf("request %d denied, want allowed", i+1)
		}
		if result.Remaining != 5-i-1 {
			t.Errorf("result.Remaining = %d, want %d", result.Remaining, 5-i-1)
		}
	}

	result, err := limiter.Allow(ctx, "test-key")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if result.Allowed {
		t.Error("6th request allowed, want denied")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("result.RetryAfter = %v, want > 0 when denied", result.RetryAfter)
	}
}

func TestSlidingWindowLimiter_IndependentKeys(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	testPrefix := "test:ratelimit:keys:"
	defer client.Del(ctx,
		testPrefix+"key-a", testPrefix+"key-a:counter",
		testPrefix+"key-b", testPrefix+"key-b:counter",
	)

	limiter := NewSlidingWindowLimiter(client, domain.Config{
		RequestsPerWindow: 1,
		WindowSize:        time.Minute,
	}, testPrefix)

	if result, err := limiter.Allow(ctx, "key-a"); err != nil || !result.Allowed {
		t.Fatalf("Allow(key-a) = %v, %v, want allowed", result, err)
	}
	if result, err := limiter.Allow(ctx, "key-a"); err != nil || result.Allowed {
		t.Fatalf("second Allow(key-a) allowed, want denied")
	}

	// Exhausting one key must not affect another.
	if result, err := limiter.Allow(ctx, "key-b"); err != nil || !result.Allowed {
		t.Fatalf("Allow(key-b) = %v, %v, want allowed", result, err)
	}
}

func TestSlidingWindowLimiter_WindowSlides(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	testPrefix := "test:ratelimit:slide:"
	defer client.Del(ctx, testPrefix+"slide-key", testPrefix+"slide-key:counter")

	limiter := NewSlidingWindowLimiter(client, domain.Config{
		RequestsPerWindow: 2,
		WindowSize:        200 * time.Millisecond,
	}, testPrefix)

	for i := 0; i < 2; i++ {
		if result, err := limiter.Allow(ctx, "slide-key"); err != nil || !result.Allowed {
			t.Fatalf("request %d = %v, %v, want allowed", i+1, result, err)
		}
	}
	if result, err := limiter.Allow(ctx, "slide-key"); err != nil || result.Allowed {
		t.Fatal("request over limit allowed, want denied")
	}

	time.Sleep(250 * time.Millisecond)

	if result, err := limiter.Allow(ctx, "slide-key"); err != nil || !result.Allowed {
		t.Fatalf("request after window slide = %v, %v, want allowed", result, err)
	}
}
