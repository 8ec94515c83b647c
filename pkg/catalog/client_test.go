package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/orussy/online-menu/internal/testutil"
	"github.com/orussy/online-menu/pkg/cache"
)

// memCache is an in-memory CacheStore for unit tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	payload   json.RawMessage
	expiresAt time.Time
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]memEntry)}
}

func (m *memCache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.payload, true
}

func (m *memCache) GetStale(ctx context.Context, key string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return e.payload, true
}

func (m *memCache) Set(ctx context.Context, key string, payload json.RawMessage, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{payload: payload, expiresAt: time.Now().Add(ttl)}
}

// expire marks a key as stale without removing it.
func (m *memCache) expire(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		e.expiresAt = time.Now().Add(-time.Minute)
		m.entries[key] = e
	}
}

func newTestClient(t *testing.T, mock *testutil.MockCatalogAPI, store CacheStore) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL: mock.URL(),
		Token:   "test-token",
		Cache:   store,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	store := newMemCache()

	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", Config{BaseURL: "https://api.example.com/v5/", Token: "t", Cache: store}, true},
		{"missing base URL", Config{Token: "t", Cache: store}, false},
		{"missing token", Config{BaseURL: "https://api.example.com/v5/", Cache: store}, false},
		{"missing cache", Config{BaseURL: "https://api.example.com/v5/", Token: "t"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.ok && err != nil {
				t.Errorf("New failed: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestListCategories_PaginationAndFiltering(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()

	mock.HandlePages("/categories", []string{
		`[{"id":"c1","name":"Burgers"},{"id":"c2","name":"Old","deleted_at":"2024-01-01 00:00:00"}]`,
		`[{"id":"c3","name":"Hidden","is_active":false},{"id":"c4","name":"Drinks","is_active":true}]`,
		`[{"id":"c5","name":"Desserts"}]`,
	})

	c := newTestClient(t, mock, newMemCache())
	categories, err := c.ListCategories(context.Background(), false)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}

	// Deleted c2 and inactive c3 dropped; page order preserved.
	want := []string{"c1", "c4", "c5"}
	if len(categories) != len(want) {
		t.Fatalf("got %d categories, want %d", len(categories), len(want))
	}
	for i, id := range want {
		if categories[i].ID != id {
			t.Errorf("categories[%d].ID = %s, want %s", i, categories[i].ID, id)
		}
	}

	if got := mock.Requests(); got != 3 {
		t.Errorf("upstream requests = %d, want 3", got)
	}
}

func TestListCategories_BearerToken(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandlePages("/categories", []string{`[]`})

	c := newTestClient(t, mock, newMemCache())
	if _, err := c.ListCategories(context.Background(), false); err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}

	if mock.LastAuthorization != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", mock.LastAuthorization, "Bearer test-token")
	}
}

func TestListCategories_SecondCallServedFromCache(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandlePages("/categories", []string{`[{"id":"c1","name":"Burgers"}]`})

	c := newTestClient(t, mock, newMemCache())
	ctx := context.Background()

	first, err := c.ListCategories(ctx, false)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	requestsAfterFirst := mock.Requests()

	second, err := c.ListCategories(ctx, false)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if mock.Requests() != requestsAfterFirst {
		t.Errorf("second call hit upstream: %d requests, want %d", mock.Requests(), requestsAfterFirst)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("cached result differs: %s vs %s", a, b)
	}
}

func TestListCategories_ForceRefreshBypassesCache(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandlePages("/categories", []string{`[{"id":"c1","name":"Burgers"}]`})

	c := newTestClient(t, mock, newMemCache())
	ctx := context.Background()

	if _, err := c.ListCategories(ctx, false); err != nil {
		t.Fatal(err)
	}
	before := mock.Requests()

	if _, err := c.ListCategories(ctx, true); err != nil {
		t.Fatal(err)
	}
	if mock.Requests() <= before {
		t.Error("force refresh should hit upstream")
	}
}

func TestListCategories_StaleFallback(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandlePages("/categories", []string{`[{"id":"c1","name":"Burgers"}]`})

	store := newMemCache()
	c := newTestClient(t, mock, store)
	ctx := context.Background()

	if _, err := c.ListCategories(ctx, false); err != nil {
		t.Fatal(err)
	}

	// Entry expired and upstream is down: the stale value must be served.
	store.expire(cache.KeyCategories)
	mock.SetDown(true)

	categories, err := c.ListCategories(ctx, false)
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != "c1" {
		t.Errorf("stale result = %+v", categories)
	}
}

func TestListCategories_ColdMissPropagates(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.SetDown(true)

	c := newTestClient(t, mock, newMemCache())

	_, err := c.ListCategories(context.Background(), false)
	if err == nil {
		t.Fatal("expected error with empty cache and failing upstream")
	}
	var statusErr *UpstreamStatusError
	if !errors.As(err, &statusErr) {
		t.Errorf("error = %v, want *UpstreamStatusError", err)
	}
}

func TestListCategories_MalformedJSON(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandleJSON("/categories", http.StatusOK, `{"data": [not json`)

	c := newTestClient(t, mock, newMemCache())

	_, err := c.ListCategories(context.Background(), false)
	if err == nil {
		t.Fatal("expected error for malformed body")
	}
	var merr *MalformedResponseError
	if !errors.As(err, &merr) {
		t.Errorf("error = %v, want *MalformedResponseError", err)
	}
}

func TestListProductsByCategory(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandleData("/categories/c1", `{
		"id":"c1","name":"Burgers",
		"products":[
			{"id":"p1","name":"Classic","price":50},
			{"id":"p2","name":"Gone","price":40,"deleted_at":"2024-01-01 00:00:00"},
			{"id":"p3","name":"Off","price":30,"is_active":false}
		]
	}`)

	c := newTestClient(t, mock, newMemCache())
	products, err := c.ListProductsByCategory(context.Background(), "c1", false)
	if err != nil {
		t.Fatalf("ListProductsByCategory failed: %v", err)
	}

	if len(products) != 1 || products[0].ID != "p1" {
		t.Errorf("products = %+v, want only p1", products)
	}
}

func TestGetProduct_CachesDetails(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandleData("/products/p1", `{"id":"p1","name":"Classic","price":50,
		"modifiers":[{"id":"m1","name":"Size"}]}`)

	c := newTestClient(t, mock, newMemCache())
	ctx := context.Background()

	p, err := c.GetProduct(ctx, "p1", false)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if p.ID != "p1" || len(p.Modifiers) != 1 {
		t.Errorf("product = %+v", p)
	}

	before := mock.Requests()
	if _, err := c.GetProduct(ctx, "p1", false); err != nil {
		t.Fatal(err)
	}
	if mock.Requests() != before {
		t.Error("second GetProduct should be served from cache")
	}
}

func TestGetProduct_NotFoundData(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandleJSON("/products/p1", http.StatusOK, `{"data":null}`)

	c := newTestClient(t, mock, newMemCache())

	_, err := c.GetProduct(context.Background(), "p1", false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetModifier_FiltersOptions(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandleData("/modifiers/m1", `{
		"id":"m1","name":"Size",
		"options":[
			{"id":"o1","name":"Small","price":20},
			{"id":"o2","name":"Gone","price":10,"deleted_at":"2024-01-01 00:00:00"},
			{"id":"o3","name":"Off","price":15,"is_active":false},
			{"id":"o4","name":"Large","price":30}
		]
	}`)

	c := newTestClient(t, mock, newMemCache())
	m, err := c.GetModifier(context.Background(), "m1", false)
	if err != nil {
		t.Fatalf("GetModifier failed: %v", err)
	}

	if len(m.Options) != 2 {
		t.Fatalf("got %d options, want 2", len(m.Options))
	}
	if m.Options[0].ID != "o1" || m.Options[1].ID != "o4" {
		t.Errorf("options = %+v", m.Options)
	}
}

func TestGetModifier_StaleFallback(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandleData("/modifiers/m1", `{"id":"m1","name":"Size",
		"options":[{"id":"o1","name":"Small","price":20}]}`)

	store := newMemCache()
	c := newTestClient(t, mock, store)
	ctx := context.Background()

	if _, err := c.GetModifier(ctx, "m1", false); err != nil {
		t.Fatal(err)
	}

	store.expire(cache.KeyModifier("m1"))
	mock.SetDown(true)

	m, err := c.GetModifier(ctx, "m1", false)
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if m.ID != "m1" || len(m.Options) != 1 {
		t.Errorf("stale modifier = %+v", m)
	}
}

func TestListAllProducts_Uncached(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandlePages("/products", []string{
		`[{"id":"p1","name":"A","price":10}]`,
		`[{"id":"p2","name":"B","price":20},{"id":"p3","name":"C","price":30,"is_active":false}]`,
	})

	c := newTestClient(t, mock, newMemCache())
	ctx := context.Background()

	products, err := c.ListAllProducts(ctx)
	if err != nil {
		t.Fatalf("ListAllProducts failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}

	before := mock.Requests()
	if _, err := c.ListAllProducts(ctx); err != nil {
		t.Fatal(err)
	}
	if mock.Requests() == before {
		t.Error("ListAllProducts must always hit upstream")
	}
}

func TestListAllModifiers_Uncached(t *testing.T) {
	mock := testutil.NewMockCatalogAPI()
	defer mock.Close()
	mock.HandlePages("/modifiers", []string{
		`[{"id":"m1","name":"Size"},{"id":"m2","name":"Old","deleted_at":"2024-01-01 00:00:00"}]`,
	})

	c := newTestClient(t, mock, newMemCache())
	modifiers, err := c.ListAllModifiers(context.Background())
	if err != nil {
		t.Fatalf("ListAllModifiers failed: %v", err)
	}
	if len(modifiers) != 1 || modifiers[0].ID != "m1" {
		t.Errorf("modifiers = %+v", modifiers)
	}
}
