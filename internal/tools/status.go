package tools

import (
	"context"
	"fmt"

	"stevedore/internal/api"
	"stevedore/internal/locking"
)

// StatusProvider exposes the lock registry for monitoring. It is only
// registered when monitoring is enabled in the configuration.
type StatusProvider struct {
	locks *locking.Registry
}

// NewStatusProvider creates the status tool provider.
func NewStatusProvider(locks *locking.Registry) *StatusProvider {
	return &StatusProvider{locks: locks}
}

// GetTools returns metadata for the status tools.
func (p *StatusProvider) GetTools() []api.ToolMetadata {
	return []api.ToolMetadata{
		{
			Name:        "lock_status",
			Description: "Show all currently tracked operation locks with holder and waiter counts",
			Args:        []api.ArgMetadata{},
		},
	}
}

// ExecuteTool executes a status tool by name.
func (p *StatusProvider) ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*api.CallToolResult, error) {
	switch toolName {
	case "lock_status":
		return p.handleLockStatus()
	default:
		return nil, &api.NotFoundError{
			ResourceType: "tool",
			ResourceName: toolName,
			Message:      fmt.Sprintf("unknown status tool: %s", toolName),
		}
	}
}

// handleLockStatus snapshots the registry. The snapshot never waits on
// any key's lock, so this is safe while operations are in flight.
func (p *StatusProvider) handleLockStatus() (*api.CallToolResult, error) {
	locks := p.locks.Snapshot()
	return jsonResult(map[string]interface{}{
		"locks": locks,
		"count": len(locks),
	}), nil
}
