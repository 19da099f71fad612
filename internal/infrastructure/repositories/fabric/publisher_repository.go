package fabric

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	domainRepos "github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// PublisherRepository implements repositories.PublisherRepository against the
// Fabric REST API. Items are created when absent and have their definition
// updated when already present in the workspace.
type PublisherRepository struct {
	client      *Client
	workspaceID string

	inventory map[string]string // "<type>/<name>" -> item id
}

// NewPublisherRepository creates a publisher for the given workspace. Service
// principal credentials from the settings take precedence; otherwise the
// ambient Azure credential chain is used (CLI login, managed identity, env).
func NewPublisherRepository(
	workspaceID string,
	auth entities.AuthSettings,
) (domainRepos.PublisherRepository, error) {
	if _, err := uuid.Parse(workspaceID); err != nil {
		return nil, fmt.Errorf("workspace id %q is not a valid GUID: %w", workspaceID, err)
	}

	credential, err := buildCredential(auth)
	if err != nil {
		return nil, err
	}

	return &PublisherRepository{
		client:      NewClient(credential),
		workspaceID: workspaceID,
		inventory:   nil,
	}, nil
}

func buildCredential(auth entities.AuthSettings) (azcore.TokenCredential, error) {
	if auth.ServicePrincipal() {
		logger.Info("Authentication: service principal")
		cred, err := azidentity.NewClientSecretCredential(
			auth.TenantID, auth.ClientID, auth.ClientSecret, nil,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build service principal credential: %w", err)
		}
		return cred, nil
	}

	logger.Info("Authentication: default Azure credential chain")
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build default Azure credential: %w", err)
	}
	return cred, nil
}

// WorkspaceID returns the target workspace GUID.
func (it *PublisherRepository) WorkspaceID() string { return it.workspaceID }

// ListItems returns the items currently present in the workspace.
func (it *PublisherRepository) ListItems(ctx context.Context) ([]domainRepos.WorkspaceItem, error) {
	var items []domainRepos.WorkspaceItem
	token := ""

	for {
		path := fmt.Sprintf("/workspaces/%s/items", it.workspaceID)
		if token != "" {
			path += "?continuationToken=" + url.QueryEscape(token)
		}

		data, err := it.client.Do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list workspace items: %w", err)
		}

		var page struct {
			Value []struct {
				ID          string `json:"id"`
				DisplayName string `json:"displayName"`
				Type        string `json:"type"`
			} `json:"value"`
			ContinuationToken string `json:"continuationToken"`
		}
		if unmarshalErr := json.Unmarshal(data, &page); unmarshalErr != nil {
			return nil, fmt.Errorf("unexpected item list response: %w", unmarshalErr)
		}

		for _, v := range page.Value {
			items = append(items, domainRepos.WorkspaceItem{
				ID:          v.ID,
				DisplayName: v.DisplayName,
				Type:        v.Type,
			})
		}

		if page.ContinuationToken == "" {
			return items, nil
		}
		token = page.ContinuationToken
	}
}

type definitionPart struct {
	Path        string `json:"path"`
	Payload     string `json:"payload"`
	PayloadType string `json:"payloadType"`
}

type itemDefinition struct {
	Parts []definitionPart `json:"parts"`
}

// PublishItem creates or updates one item from its repository definition.
func (it *PublisherRepository) PublishItem(ctx context.Context, item entities.Item) error {
	parts, err := definitionParts(item.Path)
	if err != nil {
		return fmt.Errorf("failed to read definition of %s: %w", item, err)
	}

	if invErr := it.ensureInventory(ctx); invErr != nil {
		return invErr
	}

	definition := itemDefinition{Parts: parts}
	key := item.Type + "/" + item.Name

	if existingID, found := it.inventory[key]; found {
		logger.Debugf("Updating %s (%s)", item, existingID)
		path := fmt.Sprintf(
			"/workspaces/%s/items/%s/updateDefinition?updateMetadata=True",
			it.workspaceID, existingID,
		)
		body := map[string]any{"definition": definition}
		if _, doErr := it.client.Do(ctx, http.MethodPost, path, body); doErr != nil {
			return fmt.Errorf("failed to update %s: %w", item, doErr)
		}
		return nil
	}

	logger.Debugf("Creating %s", item)
	body := map[string]any{
		"displayName": item.Name,
		"type":        item.Type,
		"definition":  definition,
	}
	data, doErr := it.client.Do(
		ctx, http.MethodPost,
		fmt.Sprintf("/workspaces/%s/items", it.workspaceID), body,
	)
	if doErr != nil {
		return fmt.Errorf("failed to create %s: %w", item, doErr)
	}

	var created struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(data, &created) == nil && created.ID != "" {
		it.inventory[key] = created.ID
	}
	return nil
}

// WarehouseConnectionString resolves the SQL endpoint of a warehouse item.
func (it *PublisherRepository) WarehouseConnectionString(
	ctx context.Context,
	warehouseName string,
) (string, error) {
	if err := it.refreshInventory(ctx); err != nil {
		return "", err
	}

	warehouseID, found := it.inventory["Warehouse/"+warehouseName]
	if !found {
		return "", fmt.Errorf("warehouse %q not found in workspace %s", warehouseName, it.workspaceID)
	}

	data, err := it.client.Do(
		ctx, http.MethodGet,
		fmt.Sprintf("/workspaces/%s/warehouses/%s", it.workspaceID, warehouseID), nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to read warehouse %q: %w", warehouseName, err)
	}

	var warehouse struct {
		Properties struct {
			ConnectionString string `json:"connectionString"`
		} `json:"properties"`
	}
	if unmarshalErr := json.Unmarshal(data, &warehouse); unmarshalErr != nil {
		return "", fmt.Errorf("unexpected warehouse response: %w", unmarshalErr)
	}
	if warehouse.Properties.ConnectionString == "" {
		return "", fmt.Errorf("warehouse %q has no SQL endpoint yet", warehouseName)
	}
	return warehouse.Properties.ConnectionString, nil
}

// ensureInventory lists workspace items once and caches them by type/name.
func (it *PublisherRepository) ensureInventory(ctx context.Context) error {
	if it.inventory != nil {
		return nil
	}
	return it.refreshInventory(ctx)
}

func (it *PublisherRepository) refreshInventory(ctx context.Context) error {
	existing, err := it.ListItems(ctx)
	if err != nil {
		return err
	}
	inventory := make(map[string]string, len(existing))
	for _, item := range existing {
		inventory[item.Type+"/"+item.DisplayName] = item.ID
	}
	it.inventory = inventory
	return nil
}

// definitionParts reads every file of an item folder into base64 parts.
func definitionParts(itemPath string) ([]definitionPart, error) {
	var parts []definitionPart

	walkErr := filepath.WalkDir(itemPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(itemPath, path)
		if relErr != nil {
			return relErr
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}

		parts = append(parts, definitionPart{
			Path:        filepath.ToSlash(rel),
			Payload:     base64.StdEncoding.EncodeToString(data),
			PayloadType: "InlineBase64",
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("item folder %q has no definition files", itemPath)
	}
	return parts, nil
}
