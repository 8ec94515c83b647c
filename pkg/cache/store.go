package cache

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// keyPrefix namespaces every menu cache entry in Redis.
	keyPrefix = "menu:cache:"

	// defaultRetention bounds how long an entry stays readable for stale
	// fallback after its freshness window ends.
	defaultRetention = 7 * 24 * time.Hour

	scanBatch = 100
)

// Store is a Redis-backed cache store with logical expiry.
type Store struct {
	redis     *redis.Client
	retention time.Duration
	logger    zerolog.Logger
}

// New creates a cache store on top of the given Redis client.
func New(redisClient *redis.Client) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Store{
		redis:     redisClient,
		retention: defaultRetention,
		logger:    log.With().Str("component", "cache").Logger(),
	}
}

// Get returns the payload for key if a fresh entry exists.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	entry := s.load(ctx, key)
	if entry == nil || entry.Expired() {
		CacheMisses.Inc()
		return nil, false
	}
	CacheHits.Inc()
	return entry.Payload, true
}

// GetStale returns the payload for key regardless of expiry. Used as the
// fallback when an upstream refresh fails.
func (s *Store) GetStale(ctx context.Context, key string) (json.RawMessage, bool) {
	entry := s.load(ctx, key)
	if entry == nil {
		CacheMisses.Inc()
		return nil, false
	}
	if entry.Expired() {
		CacheStaleHits.Inc()
		s.logger.Debug().
			Str("key", key).
			Dur("age", entry.Age()).
			Msg("Serving expired cache entry")
	} else {
		CacheHits.Inc()
	}
	return entry.Payload, true
}

// Set upserts the payload under key with the given freshness TTL. The write
// is a full replace of the entry; failures are logged and dropped.
func (s *Store) Set(ctx context.Context, key string, payload json.RawMessage, ttl time.Duration) {
	now := time.Now()
	entry := Entry{
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(&entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	// Redis retention must outlive the freshness TTL or stale reads break.
	retention := s.retention
	if ttl > retention {
		retention = ttl + defaultRetention
	}

	if err := s.redis.Set(ctx, keyPrefix+key, data, retention).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// Clear removes the entry for key. Returns the number of entries removed.
func (s *Store) Clear(ctx context.Context, key string) int64 {
	n, err := s.redis.Del(ctx, keyPrefix+key).Result()
	if err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache clear failed")
		return 0
	}
	return n
}

// ClearAll removes every menu cache entry. Returns the number removed.
func (s *Store) ClearAll(ctx context.Context) int64 {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	n, err := s.redis.Del(ctx, keys...).Result()
	if err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		s.logger.Warn().Err(err).Msg("Cache clear-all failed")
		return 0
	}
	return n
}

// SweepExpired removes entries whose freshness window has ended. Returns the
// number removed. Entries kept only for stale fallback are reclaimed here.
func (s *Store) SweepExpired(ctx context.Context) int64 {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return 0
	}

	var removed int64
	for _, fullKey := range keys {
		key := fullKey[len(keyPrefix):]
		entry := s.load(ctx, key)
		if entry == nil || !entry.Expired() {
			continue
		}
		n, err := s.redis.Del(ctx, fullKey).Result()
		if err != nil {
			CacheErrors.WithLabelValues("sweep").Inc()
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache sweep delete failed")
			continue
		}
		removed += n
	}
	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Msg("Swept expired cache entries")
	}
	return removed
}

// Entries reports every cache entry with its age and expiry state, sorted by
// key. Used by the admin status surface.
func (s *Store) Entries(ctx context.Context) []Info {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil
	}

	infos := make([]Info, 0, len(keys))
	for _, fullKey := range keys {
		key := fullKey[len(keyPrefix):]
		entry := s.load(ctx, key)
		if entry == nil {
			continue
		}
		age := entry.Age()
		infos = append(infos, Info{
			Key:      key,
			Age:      age,
			AgeHours: age.Hours(),
			Expired:  entry.Expired(),
			Size:     len(entry.Payload),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// load fetches and decodes an entry. Any storage or decode failure is
// degraded to a miss; corrupt entries are deleted on sight.
func (s *Store) load(ctx context.Context, key string) *Entry {
	data, err := s.redis.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			CacheErrors.WithLabelValues("get").Inc()
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return nil
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Corrupt cache entry, dropping")
		_ = s.redis.Del(ctx, keyPrefix+key).Err()
		return nil
	}
	return &entry
}

func (s *Store) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.redis.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("scan").Inc()
		s.logger.Warn().Err(err).Msg("Cache key scan failed")
		return nil, err
	}
	return keys, nil
}
