package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketFirstCallImmediate(t *testing.T) {
	tb := NewTokenBucket(1)
	defer tb.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, tb.Wait(ctx))
}

func TestTokenBucketWaitHonorsCancellation(t *testing.T) {
	tb := NewTokenBucket(1)
	defer tb.Stop()

	// drain the ready token
	require.NoError(t, tb.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnlimited(t *testing.T) {
	assert.NoError(t, Unlimited{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Unlimited{}.Wait(ctx), context.Canceled)
}
