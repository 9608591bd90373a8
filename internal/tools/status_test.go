package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stevedore/internal/api"
	"stevedore/internal/locking"
)

func TestLockStatusEmpty(t *testing.T) {
	provider := NewStatusProvider(locking.NewRegistry())

	result, err := provider.ExecuteTool(context.Background(), "lock_status", map[string]interface{}{})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, contentString(t, result.Content), `"count": 0`)
}

func TestLockStatusShowsHeldLock(t *testing.T) {
	locks := locking.NewRegistry()
	provider := NewStatusProvider(locks)

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = locks.WithLock(context.Background(), "docker:push:app:v1", time.Second, func() error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	result, err := provider.ExecuteTool(context.Background(), "lock_status", map[string]interface{}{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := contentString(t, result.Content)
	assert.Contains(t, text, "docker:push:app:v1")
	assert.Contains(t, text, `"held": true`)
}

func TestStatusProviderUnknownTool(t *testing.T) {
	provider := NewStatusProvider(locking.NewRegistry())

	_, err := provider.ExecuteTool(context.Background(), "lock_break", map[string]interface{}{})
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}
