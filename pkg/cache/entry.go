package cache

import (
	"encoding/json"
	"time"
)

// Entry is the stored envelope around a cached payload.
type Entry struct {
	// Payload is the cached value, opaque to the store.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is when the entry was written.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the entry stops being fresh. Always CreatedAt + TTL.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its freshness window.
func (e *Entry) Expired() bool {
	return !time.Now().Before(e.ExpiresAt)
}

// Age returns how long ago the entry was written.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// Info describes one cache entry for the admin status surface.
type Info struct {
	Key      string        `json:"key"`
	Age      time.Duration `json:"-"`
	AgeHours float64       `json:"age_hours"`
	Expired  bool          `json:"expired"`
	Size     int           `json:"size"`
}
