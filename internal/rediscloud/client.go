package rediscloud

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the Redis Cloud management REST API. It covers the
// diagnostics subset the tool provider needs rather than the full surface.
//
// Lookups return (nil, nil) when the API answers 404, so callers can
// distinguish "does not exist" from transport or server failures.
type Client struct {
	baseURL    string
	apiKey     string
	secretKey  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client bound to the given base URL and credential pair.
// A non-nil tlsConfig overrides the default transport's trust roots.
func NewClient(baseURL, apiKey, secretKey string, timeout time.Duration, tlsConfig *tls.Config, logger zerolog.Logger) *Client {
	httpClient := &http.Client{
		Timeout: timeout,
	}
	if tlsConfig != nil {
		httpClient.Transport = &http.Transport{TLSClientConfig: tlsConfig}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		secretKey:  secretKey,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "rediscloud-client").Logger(),
	}
}

// APIError is returned when the API answers with an unexpected status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("redis cloud API returned %d: %s", e.StatusCode, e.Body)
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// get performs an authenticated GET and decodes the JSON body.
// 404 maps to (nil, nil); any other non-2xx status maps to *APIError.
func (c *Client) get(ctx context.Context, path string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", path, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("x-api-secret-key", c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("path", path).Msg("redis cloud API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("redis cloud API request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response from %s: %w", path, err)
	}
	return result, nil
}

// Account returns the current account details.
func (c *Client) Account(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "/")
}

// Subscriptions lists Pro subscriptions.
func (c *Client) Subscriptions(ctx context.Context) ([]map[string]any, error) {
	result, err := c.get(ctx, "/subscriptions")
	if err != nil {
		return nil, err
	}
	return listField(result, "subscription"), nil
}

// FixedSubscriptions lists Essentials (fixed plan) subscriptions.
func (c *Client) FixedSubscriptions(ctx context.Context) ([]map[string]any, error) {
	result, err := c.get(ctx, "/fixed/subscriptions")
	if err != nil {
		return nil, err
	}
	return listField(result, "subscriptions"), nil
}

// Subscription fetches a Pro subscription by id, nil if it does not exist.
func (c *Client) Subscription(ctx context.Context, id int) (map[string]any, error) {
	return c.get(ctx, fmt.Sprintf("/subscriptions/%d", id))
}

// FixedSubscription fetches an Essentials subscription by id, nil if it does not exist.
func (c *Client) FixedSubscription(ctx context.Context, id int) (map[string]any, error) {
	return c.get(ctx, fmt.Sprintf("/fixed/subscriptions/%d", id))
}

// Databases lists databases in a Pro subscription. The API nests them as
// {"subscription":[{"databases":[...]}]}; entries are flattened in order.
func (c *Client) Databases(ctx context.Context, subscriptionID int) ([]map[string]any, error) {
	result, err := c.get(ctx, fmt.Sprintf("/subscriptions/%d/databases", subscriptionID))
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	var databases []map[string]any
	for _, entry := range listField(result, "subscription") {
		databases = append(databases, listField(entry, "databases")...)
	}
	return databases, nil
}

// FixedDatabases lists databases in an Essentials subscription. The API nests
// them as {"subscription":{"databases":[...]}}.
func (c *Client) FixedDatabases(ctx context.Context, subscriptionID int) ([]map[string]any, error) {
	result, err := c.get(ctx, fmt.Sprintf("/fixed/subscriptions/%d/databases", subscriptionID))
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	sub, _ := result["subscription"].(map[string]any)
	return listField(sub, "databases"), nil
}

// Database fetches a Pro database by id, nil if it does not exist.
func (c *Client) Database(ctx context.Context, subscriptionID, databaseID int) (map[string]any, error) {
	return c.get(ctx, fmt.Sprintf("/subscriptions/%d/databases/%d", subscriptionID, databaseID))
}

// FixedDatabase fetches an Essentials database by id, nil if it does not exist.
func (c *Client) FixedDatabase(ctx context.Context, subscriptionID, databaseID int) (map[string]any, error) {
	return c.get(ctx, fmt.Sprintf("/fixed/subscriptions/%d/databases/%d", subscriptionID, databaseID))
}

// Users lists the account's users.
func (c *Client) Users(ctx context.Context) ([]map[string]any, error) {
	result, err := c.get(ctx, "/users")
	if err != nil {
		return nil, err
	}
	return listField(result, "users"), nil
}

// Tasks lists the account's async tasks.
func (c *Client) Tasks(ctx context.Context) ([]map[string]any, error) {
	result, err := c.get(ctx, "/tasks")
	if err != nil {
		return nil, err
	}
	return listField(result, "tasks"), nil
}

// Task fetches a single async task by id, nil if it does not exist.
func (c *Client) Task(ctx context.Context, id string) (map[string]any, error) {
	return c.get(ctx, "/tasks/"+url.PathEscape(id))
}

// CloudAccounts lists the configured cloud provider accounts.
func (c *Client) CloudAccounts(ctx context.Context) ([]map[string]any, error) {
	result, err := c.get(ctx, "/cloud-accounts")
	if err != nil {
		return nil, err
	}
	return listField(result, "cloudAccounts"), nil
}

// listField extracts a list of objects from a decoded JSON value.
// Missing keys and non-map elements yield nil / are skipped.
func listField(v any, key string) []map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}

	var items []map[string]any
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			items = append(items, obj)
		}
	}
	return items
}
