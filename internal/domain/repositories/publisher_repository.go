package repositories

import (
	"context"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
)

// WorkspaceItem is an item that already exists in the target workspace.
type WorkspaceItem struct {
	ID          string
	DisplayName string
	Type        string
}

// PublisherRepository publishes repository items into a Fabric workspace.
// The service owns diffing, reference resolution, and retries; this contract
// only exposes publish-one-item plus the lookups the tool needs.
type PublisherRepository interface {
	// WorkspaceID returns the target workspace GUID.
	WorkspaceID() string
	// ListItems returns the items currently present in the workspace.
	ListItems(ctx context.Context) ([]WorkspaceItem, error)
	// PublishItem creates or updates one item from its repository definition.
	PublishItem(ctx context.Context, item entities.Item) error
	// WarehouseConnectionString resolves the SQL endpoint of a warehouse
	// item, or an error if the warehouse is not reachable yet.
	WarehouseConnectionString(ctx context.Context, warehouseName string) (string, error)
}

// PublisherFactory builds a publisher for a workspace using the configured
// credentials. Registered in the container; invoked once per run.
type PublisherFactory func(workspaceID string, auth entities.AuthSettings) (PublisherRepository, error)
