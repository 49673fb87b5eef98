package llm

import (
	"context"
	"time"
)

// RateLimiter is a token bucket shared across all provider operations. The
// bucket is refilled to capacity once per minute.
type RateLimiter struct {
	requestsPerMinute int
	tokens            chan struct{}
	stop              chan struct{}
}

// NewRateLimiter creates a limiter allowing rpm requests per minute. A
// non-positive rpm falls back to 10.
func NewRateLimiter(rpm int) *RateLimiter {
	if rpm <= 0 {
		rpm = 10
	}

	rl := &RateLimiter{
		requestsPerMinute: rpm,
		tokens:            make(chan struct{}, rpm),
		stop:              make(chan struct{}),
	}

	for i := 0; i < rpm; i++ {
		rl.tokens <- struct{}{}
	}

	go rl.refillLoop()

	return rl
}

// Wait blocks until a token is available or the context ends.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	select {
	case <-rl.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a token without blocking.
func (rl *RateLimiter) TryAcquire() bool {
	select {
	case <-rl.tokens:
		return true
	default:
		return false
	}
}

// Available reports how many tokens remain in the current window.
func (rl *RateLimiter) Available() int {
	return len(rl.tokens)
}

// Close stops the refill goroutine.
func (rl *RateLimiter) Close() {
	close(rl.stop)
}

func (rl *RateLimiter) refillLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.refill()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) refill() {
	for i := 0; i < rl.requestsPerMinute; i++ {
		select {
		case rl.tokens <- struct{}{}:
		default:
			return
		}
	}
}
