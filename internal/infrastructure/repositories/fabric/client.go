package fabric

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.fabric.microsoft.com/v1"
	tokenScope     = "https://api.fabric.microsoft.com/.default"

	defaultPollInterval = 2 * time.Second
	requestTimeout      = 2 * time.Minute
)

// Client is a minimal Fabric REST API client: authenticated JSON requests
// plus long-running-operation polling. Retry and diff logic live in the
// service, not here.
type Client struct {
	baseURL    string
	httpClient *http.Client
	credential azcore.TokenCredential
}

// NewClient creates a client using the given Azure credential.
func NewClient(credential azcore.TokenCredential) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		credential: credential,
	}
}

// apiError is a failed Fabric API response.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("fabric API returned %d: %s", e.Status, e.Body)
}

// Do sends an authenticated JSON request. A 202 response is followed until
// the operation reaches a terminal state. The response body is returned for
// 2xx results.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fabric API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read fabric API response: %w", readErr)
	}

	switch {
	case resp.StatusCode == http.StatusAccepted:
		return c.awaitOperation(ctx, resp)
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return data, nil
	default:
		return nil, &apiError{Status: resp.StatusCode, Body: string(data)}
	}
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	//nolint:exhaustruct // only Scopes is required for a token request
	token, err := c.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{tokenScope},
	})
	if err != nil {
		return fmt.Errorf("failed to acquire Fabric API token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Token)
	return nil
}

// awaitOperation polls the Location of a 202 response until the operation
// succeeds or fails, honoring Retry-After.
func (c *Client) awaitOperation(ctx context.Context, accepted *http.Response) ([]byte, error) {
	location := accepted.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("operation accepted but no Location header returned")
	}

	interval := retryAfter(accepted, defaultPollInterval)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		if err := c.authorize(ctx, req); err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("operation poll failed: %w", err)
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &apiError{Status: resp.StatusCode, Body: string(data)}
		}

		var op struct {
			Status string `json:"status"`
			Error  struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if unmarshalErr := json.Unmarshal(data, &op); unmarshalErr != nil {
			// Some operations answer with the final resource directly.
			return data, nil
		}

		switch op.Status {
		case "Succeeded":
			return data, nil
		case "Failed":
			return nil, fmt.Errorf("operation failed: %s", op.Error.Message)
		default:
			logger.Debugf("Operation %s, polling again in %s", op.Status, interval)
			interval = retryAfter(resp, interval)
		}
	}
}

func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
