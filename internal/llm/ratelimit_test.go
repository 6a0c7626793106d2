package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRateLimiterAllowsBurstUpToLimit(t *testing.T) {
	rl := NewRateLimiter(5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, rl.Wait(ctx))
	}
}

func TestRateLimiterWaitCancelled(t *testing.T) {
	rl := NewRateLimiter(1)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimitedClientPassesThrough(t *testing.T) {
	backend := &fakeClient{reply: "LABEL: SAFE"}
	client := NewRateLimitedClient(backend, 10, zap.NewNop())

	got, err := client.Complete(context.Background(), Request{User: "snippet"})
	require.NoError(t, err)
	assert.Equal(t, "LABEL: SAFE", got)
	assert.Equal(t, backend.ModelVersion(), client.ModelVersion())
}
