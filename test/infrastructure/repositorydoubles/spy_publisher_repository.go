//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations — no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	"github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// SpyPublisherRepository implements repositories.PublisherRepository as a
// configurable spy. Configure the response fields for the methods your test
// exercises, then inspect the call-tracking fields to verify behavior.
type SpyPublisherRepository struct {
	// --- identity ---
	ID string

	// --- ListItems ---
	Items        []repositories.WorkspaceItem
	ListItemsErr error

	// --- PublishItem ---
	PublishErr    error
	PublishErrFor map[string]error // item key "<name>.<type>" -> error
	// spy: items received, in call order
	PublishedItems []entities.Item

	// --- WarehouseConnectionString ---
	ConnectionString    string
	ConnectionStringErr error
	// spy: warehouse names requested
	RequestedWarehouses []string
}

var _ repositories.PublisherRepository = (*SpyPublisherRepository)(nil)

func (p *SpyPublisherRepository) WorkspaceID() string { return p.ID }

func (p *SpyPublisherRepository) ListItems(
	_ context.Context,
) ([]repositories.WorkspaceItem, error) {
	return p.Items, p.ListItemsErr
}

func (p *SpyPublisherRepository) PublishItem(_ context.Context, item entities.Item) error {
	p.PublishedItems = append(p.PublishedItems, item)
	if p.PublishErrFor != nil {
		if err, ok := p.PublishErrFor[item.String()]; ok {
			return err
		}
	}
	return p.PublishErr
}

func (p *SpyPublisherRepository) WarehouseConnectionString(
	_ context.Context, warehouseName string,
) (string, error) {
	p.RequestedWarehouses = append(p.RequestedWarehouses, warehouseName)
	if p.ConnectionStringErr != nil {
		return "", p.ConnectionStringErr
	}
	if p.ConnectionString == "" {
		return "", fmt.Errorf("warehouse not found: %s", warehouseName)
	}
	return p.ConnectionString, nil
}

// DummyPublisherRepository is a no-op implementation of repositories.PublisherRepository.
type DummyPublisherRepository struct{}

var _ repositories.PublisherRepository = (*DummyPublisherRepository)(nil)

func (d *DummyPublisherRepository) WorkspaceID() string { return "" }

func (d *DummyPublisherRepository) ListItems(
	_ context.Context,
) ([]repositories.WorkspaceItem, error) {
	return nil, nil
}

func (d *DummyPublisherRepository) PublishItem(_ context.Context, _ entities.Item) error {
	return nil
}

func (d *DummyPublisherRepository) WarehouseConnectionString(
	_ context.Context, _ string,
) (string, error) {
	return "", nil
}
