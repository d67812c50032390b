package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Sternrassler/datatable-client/pkg/page"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PutResult reports the outcome of a best-effort cache write.
type PutResult int

const (
	// PutStored means the page was written.
	PutStored PutResult = iota

	// PutQuotaExceeded means the store was full; nothing was written.
	PutQuotaExceeded

	// PutFailed means the write failed for another reason.
	PutFailed
)

// String returns the result name used in logs.
func (r PutResult) String() string {
	switch r {
	case PutStored:
		return "stored"
	case PutQuotaExceeded:
		return "quota_exceeded"
	default:
		return "failed"
	}
}

// Manager is the page cache. It owns every entry in its Store; callers read
// and write pages through it and never touch the store directly.
type Manager struct {
	store  Store
	logger zerolog.Logger
}

// NewManager creates a page cache over store.
func NewManager(store Store) *Manager {
	if store == nil {
		panic("cache store cannot be nil")
	}
	return &Manager{
		store:  store,
		logger: log.With().Str("component", "page-cache").Logger(),
	}
}

// Get returns the cached page for key. The second result is false on a
// miss and also when the entry is unreadable, fails its checksum or no
// longer passes shape validation; broken entries are removed.
func (m *Manager) Get(ctx context.Context, key PageKey) (*page.Page, bool) {
	cacheKey := key.String()

	raw, err := m.store.Get(ctx, cacheKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			CacheErrors.WithLabelValues("get").Inc()
			m.logger.Warn().Err(err).Str("key", cacheKey).Msg("Cache get error")
		}
		CacheMisses.Inc()
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil || !entry.Valid() {
		CacheErrors.WithLabelValues("get").Inc()
		m.logger.Warn().Str("key", cacheKey).Msg("Discarding corrupt cache entry")
		m.Invalidate(ctx, key)
		CacheMisses.Inc()
		return nil, false
	}

	p, err := page.Decode(entry.Data)
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		m.logger.Warn().Err(err).Str("key", cacheKey).Msg("Discarding invalid cached page")
		m.Invalidate(ctx, key)
		CacheMisses.Inc()
		return nil, false
	}

	CacheHits.Inc()
	m.logger.Debug().Str("key", cacheKey).Dur("age", entry.Age()).Msg("Cache hit")
	return p, true
}

// Put serializes p and stores it under key. Failures never propagate: a
// full store is logged at debug and skipped, anything else at warn.
func (m *Manager) Put(ctx context.Context, key PageKey, p *page.Page) PutResult {
	cacheKey := key.String()

	data, err := page.Encode(p)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		m.logger.Warn().Err(err).Str("key", cacheKey).Msg("Failed to encode page")
		return PutFailed
	}

	raw, err := json.Marshal(NewEntry(data))
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		m.logger.Warn().Err(err).Str("key", cacheKey).Msg("Failed to encode cache entry")
		return PutFailed
	}

	if err := m.store.Set(ctx, cacheKey, raw); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			CacheQuotaRejections.Inc()
			m.logger.Debug().Str("key", cacheKey).Int("bytes", len(raw)).Msg("Cache quota exceeded, skipping write")
			return PutQuotaExceeded
		}
		CacheErrors.WithLabelValues("set").Inc()
		m.logger.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache page")
		return PutFailed
	}

	CacheStoredBytes.Add(float64(len(raw)))
	m.logger.Debug().Str("key", cacheKey).Int("bytes", len(raw)).Msg("Cached page")
	return PutStored
}

// Invalidate removes the entry for key.
func (m *Manager) Invalidate(ctx context.Context, key PageKey) {
	CacheInvalidations.WithLabelValues("entry").Inc()
	if err := m.store.Delete(ctx, key.String()); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		m.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to invalidate cache entry")
	}
}

// InvalidateAll clears the whole store.
func (m *Manager) InvalidateAll(ctx context.Context) error {
	CacheInvalidations.WithLabelValues("all").Inc()
	if err := m.store.Clear(ctx); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return err
	}
	m.logger.Info().Msg("Page cache cleared")
	return nil
}
