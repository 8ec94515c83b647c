// Package catalog is the single point of contact with the upstream commerce
// API. It owns pagination, visibility filtering, caching, and graceful
// degradation to stale data when upstream is unavailable.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/orussy/online-menu/pkg/cache"
)

// DefaultTTL is the cache freshness window for catalog data.
const DefaultTTL = 5 * time.Hour

const defaultTimeout = 30 * time.Second

// CacheStore is the slice of the cache store contract the client needs.
// *cache.Store satisfies it.
type CacheStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool)
	GetStale(ctx context.Context, key string) (json.RawMessage, bool)
	Set(ctx context.Context, key string, payload json.RawMessage, ttl time.Duration)
}

// Config holds the catalog client configuration.
type Config struct {
	// BaseURL is the upstream API root, e.g. "https://api.foodics.com/v5/".
	BaseURL string

	// Token is the bearer token sent on every request.
	Token string

	// Cache backs all cached operations.
	Cache CacheStore

	// TTL overrides the cache freshness window (default DefaultTTL).
	TTL time.Duration

	// Timeout bounds each upstream request (default 30s). A hung upstream
	// call counts as a fetch failure and triggers the stale fallback.
	Timeout time.Duration

	// HTTPClient overrides the HTTP client (for testing).
	HTTPClient *http.Client
}

// Client fetches categories, products, and modifiers from upstream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cache      CacheStore
	ttl        time.Duration
	logger     zerolog.Logger
}

// envelope is the upstream response wrapper. Data is an array for list
// endpoints and an object for detail endpoints.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

// New creates a catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("catalog API token is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache store is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		token:      cfg.Token,
		cache:      cfg.Cache,
		ttl:        ttl,
		logger:     log.With().Str("component", "catalog").Logger(),
	}, nil
}

// ListCategories returns all visible categories, served from cache unless
// forceRefresh is set or the entry is expired.
func (c *Client) ListCategories(ctx context.Context, forceRefresh bool) ([]Category, error) {
	if !forceRefresh {
		var cached []Category
		if c.fromCache(ctx, cache.KeyCategories, &cached) {
			return cached, nil
		}
	}

	categories, err := c.fetchCategories(ctx)
	if err != nil {
		var stale []Category
		if c.fromStale(ctx, cache.KeyCategories, "categories", err, &stale) {
			return stale, nil
		}
		return nil, err
	}

	c.store(ctx, cache.KeyCategories, categories)
	return categories, nil
}

// ListProductsByCategory returns the visible products of one category.
func (c *Client) ListProductsByCategory(ctx context.Context, categoryID string, forceRefresh bool) ([]Product, error) {
	key := cache.KeyProductsByCategory(categoryID)

	if !forceRefresh {
		var cached []Product
		if c.fromCache(ctx, key, &cached) {
			return cached, nil
		}
	}

	env, err := c.fetch(ctx, "categories/"+categoryID)
	if err != nil {
		var stale []Product
		if c.fromStale(ctx, key, "products_category", err, &stale) {
			return stale, nil
		}
		return nil, err
	}

	var detail struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		merr := &MalformedResponseError{Endpoint: "categories/" + categoryID, Err: err}
		var stale []Product
		if c.fromStale(ctx, key, "products_category", merr, &stale) {
			return stale, nil
		}
		return nil, merr
	}

	products := make([]Product, 0, len(detail.Products))
	for _, p := range detail.Products {
		if p.Visible() {
			products = append(products, p)
		}
	}

	c.store(ctx, key, products)
	return products, nil
}

// ListAllProducts pages through every product live, bypassing the cache.
// Used by admin and full-sync paths.
func (c *Client) ListAllProducts(ctx context.Context) ([]Product, error) {
	var all []Product
	for page := 1; ; page++ {
		env, err := c.fetch(ctx, fmt.Sprintf("products?page=%d", page))
		if err != nil {
			return nil, err
		}

		var products []Product
		if err := json.Unmarshal(env.Data, &products); err != nil {
			return nil, &MalformedResponseError{Endpoint: "products", Err: err}
		}
		for _, p := range products {
			if p.Visible() {
				all = append(all, p)
			}
		}

		if env.Links.Next == "" {
			return all, nil
		}
	}
}

// GetProduct returns one product's details including its modifier list.
func (c *Client) GetProduct(ctx context.Context, productID string, forceRefresh bool) (*Product, error) {
	key := cache.KeyProduct(productID)

	if !forceRefresh {
		var cached Product
		if c.fromCache(ctx, key, &cached) {
			return &cached, nil
		}
	}

	env, err := c.fetch(ctx, "products/"+productID)
	if err != nil {
		var stale Product
		if c.fromStale(ctx, key, "product", err, &stale) {
			return &stale, nil
		}
		return nil, err
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}

	var product Product
	if err := json.Unmarshal(env.Data, &product); err != nil {
		merr := &MalformedResponseError{Endpoint: "products/" + productID, Err: err}
		var stale Product
		if c.fromStale(ctx, key, "product", merr, &stale) {
			return &stale, nil
		}
		return nil, merr
	}

	c.store(ctx, key, &product)
	return &product, nil
}

// ListAllModifiers pages through every modifier live, bypassing the cache.
func (c *Client) ListAllModifiers(ctx context.Context) ([]Modifier, error) {
	var all []Modifier
	for page := 1; ; page++ {
		env, err := c.fetch(ctx, fmt.Sprintf("modifiers?page=%d", page))
		if err != nil {
			return nil, err
		}

		var modifiers []Modifier
		if err := json.Unmarshal(env.Data, &modifiers); err != nil {
			return nil, &MalformedResponseError{Endpoint: "modifiers", Err: err}
		}
		for _, m := range modifiers {
			if m.Visible() {
				all = append(all, m)
			}
		}

		if env.Links.Next == "" {
			return all, nil
		}
	}
}

// GetModifier returns one modifier's details with its options filtered the
// same way as every other entity.
func (c *Client) GetModifier(ctx context.Context, modifierID string, forceRefresh bool) (*Modifier, error) {
	key := cache.KeyModifier(modifierID)

	if !forceRefresh {
		var cached Modifier
		if c.fromCache(ctx, key, &cached) {
			return &cached, nil
		}
	}

	env, err := c.fetch(ctx, "modifiers/"+modifierID)
	if err != nil {
		var stale Modifier
		if c.fromStale(ctx, key, "modifier", err, &stale) {
			return &stale, nil
		}
		return nil, err
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("modifier %s: %w", modifierID, ErrNotFound)
	}

	var modifier Modifier
	if err := json.Unmarshal(env.Data, &modifier); err != nil {
		merr := &MalformedResponseError{Endpoint: "modifiers/" + modifierID, Err: err}
		var stale Modifier
		if c.fromStale(ctx, key, "modifier", merr, &stale) {
			return &stale, nil
		}
		return nil, merr
	}

	filterModifierOptions(&modifier)
	c.store(ctx, key, &modifier)
	return &modifier, nil
}

// fetchCategories pages through the category list applying the visibility
// filter to every page.
func (c *Client) fetchCategories(ctx context.Context) ([]Category, error) {
	var all []Category
	for page := 1; ; page++ {
		env, err := c.fetch(ctx, fmt.Sprintf("categories?page=%d", page))
		if err != nil {
			return nil, err
		}

		var categories []Category
		if err := json.Unmarshal(env.Data, &categories); err != nil {
			return nil, &MalformedResponseError{Endpoint: "categories", Err: err}
		}
		for _, cat := range categories {
			if cat.Visible() {
				all = append(all, cat)
			}
		}

		if env.Links.Next == "" {
			return all, nil
		}
	}
}

// fetch performs one upstream request and decodes the response envelope.
func (c *Client) fetch(ctx context.Context, endpoint string) (*envelope, error) {
	label := endpointLabel(endpoint)
	start := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := &TransportError{Endpoint: endpoint, Err: err}
		upstreamErrorsTotal.WithLabelValues(errorClass(terr)).Inc()
		upstreamRequestsTotal.WithLabelValues(label, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Upstream request failed")
		return nil, terr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := &TransportError{Endpoint: endpoint, Err: err}
		upstreamErrorsTotal.WithLabelValues(errorClass(terr)).Inc()
		upstreamRequestsTotal.WithLabelValues(label, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Failed to read upstream response")
		return nil, terr
	}

	upstreamRequestsTotal.WithLabelValues(label, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		serr := &UpstreamStatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(body),
		}
		upstreamErrorsTotal.WithLabelValues(errorClass(serr)).Inc()

		if serr.Unauthorized() {
			c.logger.Error().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("message", serr.Message).
				Msg("Upstream rejected credentials - token invalid or expired")
		} else {
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("message", serr.Message).
				Msg("Upstream returned error status")
		}
		return nil, serr
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		merr := &MalformedResponseError{Endpoint: endpoint, Err: err}
		upstreamErrorsTotal.WithLabelValues(errorClass(merr)).Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Upstream returned invalid JSON")
		return nil, merr
	}
	return &env, nil
}

// fromCache loads and decodes a fresh cache entry into dst.
func (c *Client) fromCache(ctx context.Context, key string, dst any) bool {
	payload, ok := c.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Undecodable cache entry, refetching")
		return false
	}
	return true
}

// fromStale attempts the stale-read fallback after a fetch failure. Returns
// true when a previous value, expired or not, was recovered.
func (c *Client) fromStale(ctx context.Context, key, operation string, fetchErr error, dst any) bool {
	payload, ok := c.cache.GetStale(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Undecodable stale cache entry")
		return false
	}
	staleFallbacksTotal.WithLabelValues(operation).Inc()
	c.logger.Warn().
		Err(fetchErr).
		Str("key", key).
		Str("operation", operation).
		Msg("Upstream failed, serving cached data")
	return true
}

// store caches a successful result under key with the client TTL.
func (c *Client) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("Failed to encode result for caching")
		return
	}
	c.cache.Set(ctx, key, payload, c.ttl)
}

// endpointLabel strips query parameters so page numbers don't explode the
// metric label space.
func endpointLabel(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}

// upstreamMessage pulls the human-readable message out of an upstream error
// body when the body is parseable.
func upstreamMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.Error
}

// Refresh forces a refetch of the category list, warming the cache. Used by
// the sync surfaces.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.ListCategories(ctx, true)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error().Err(err).Msg("Cache warm failed")
	}
	return err
}
