// Package cache provides the menu cache store: a Redis-backed key-value
// store with logical per-key expiry and stale-read support.
//
// Entries are kept past their expiry so callers can fall back to the last
// known value when the upstream catalog API is unreachable. Freshness is
// therefore enforced on read, not via Redis key TTL; the Redis TTL only
// bounds how long a stale entry is retained at all.
//
// Storage failures never propagate: a failed read reports a miss and a
// failed write is a logged no-op. The cache must never turn an otherwise
// successful request into a failure.
package cache
