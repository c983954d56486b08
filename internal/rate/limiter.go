package rate

import (
	"context"
	"fmt"
	"time"
)

// Limiter gates outbound mail-provider calls so a single statistics
// request cannot blow through the provider quota.
type Limiter interface {
	Wait(ctx context.Context) error
}

// TokenBucket releases up to rps calls per second.
type TokenBucket struct {
	tokens chan struct{}
	stop   chan struct{}
}

func NewTokenBucket(rps int) *TokenBucket {
	if rps <= 0 {
		rps = 1
	}
	tb := &TokenBucket{
		tokens: make(chan struct{}, rps),
		stop:   make(chan struct{}),
	}
	// let the first call through without waiting a tick
	tb.tokens <- struct{}{}
	go tb.refill(time.Second / time.Duration(rps))
	return tb
}

func (t *TokenBucket) refill(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			select {
			case t.tokens <- struct{}{}:
			default:
			}
		}
	}
}

// Wait blocks until a token is available or the context is canceled.
func (t *TokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate wait canceled: %w", ctx.Err())
	case <-t.tokens:
		return nil
	}
}

// Stop terminates the refill goroutine.
func (t *TokenBucket) Stop() {
	close(t.stop)
}

var _ Limiter = (*TokenBucket)(nil)

// Unlimited is a no-op limiter for tests.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
