// Package testutil provides test doubles for the online-menu packages.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// MockCatalogAPI is a configurable mock of the upstream commerce API.
type MockCatalogAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	down     bool

	// RequestCount is the total number of requests served.
	RequestCount int

	// LastAuthorization is the Authorization header of the last request.
	LastAuthorization string
}

// NewMockCatalogAPI starts a mock upstream server. Unregistered paths return
// a 404 with an upstream-style error body.
func NewMockCatalogAPI() *MockCatalogAPI {
	mock := &MockCatalogAPI{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastAuthorization = r.Header.Get("Authorization")
		down := mock.down
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if down {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"upstream unavailable"}`)
			return
		}

		if exists {
			handler(w, r)
			return
		}

		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"resource not found"}`)
	}))

	return mock
}

// URL returns the mock server's base URL.
func (m *MockCatalogAPI) URL() string {
	return m.server.URL
}

// Close shuts the mock server down.
func (m *MockCatalogAPI) Close() {
	m.server.Close()
}

// Requests returns the total number of requests served so far.
func (m *MockCatalogAPI) Requests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// Handle registers a raw handler for a path.
func (m *MockCatalogAPI) Handle(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// HandleJSON registers a fixed JSON response for a path.
func (m *MockCatalogAPI) HandleJSON(path string, status int, body string) {
	m.Handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	})
}

// HandleData registers a single-page envelope response: {"data": <data>}.
func (m *MockCatalogAPI) HandleData(path, data string) {
	m.HandleJSON(path, http.StatusOK, `{"data":`+data+`}`)
}

// HandlePages registers a paginated list endpoint. Each element of pages is
// the JSON data array of one page; the links.next field is populated for
// every page but the last, mirroring the upstream envelope.
func (m *MockCatalogAPI) HandlePages(path string, pages []string) {
	m.Handle(path, func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		if page > len(pages) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":[],"links":{}}`)
			return
		}

		next := ""
		if page < len(pages) {
			next = fmt.Sprintf(`%s?page=%d`, path, page+1)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":%s,"links":{"next":%q}}`, pages[page-1], next)
	})
}

// SetDown makes every request fail with a 500 until cleared. Used to test
// the stale-cache fallback.
func (m *MockCatalogAPI) SetDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}
