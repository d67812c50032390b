// Package cache provides the session-scoped page cache for the data table
// client.
//
// The page cache has the following features:
//
// - Deterministic, collision-free page keys (run, dataset, page, page size)
// - Pluggable session storage: in-memory with a byte quota, or Redis
// - Best-effort writes: a full store never fails a fetch
// - Checksummed entries; corrupt or malformed entries read as a miss
// - Wholesale invalidation when the run identifier changes
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Create a session store and the page cache over it
//	manager := cache.NewManager(cache.NewMemoryStore(cache.DefaultMemoryQuota))
//
//	// Bind keys to the current run
//	keyer := cache.NewKeyer(runID)
//	key := keyer.Key("Natural_Questions_Base", 2, 10)
//
//	// Get from cache
//	p, ok := manager.Get(ctx, key)
//	if !ok {
//		// Cache miss - fetch from the data API
//	}
//
//	// Store, ignoring a full store
//	if res := manager.Put(ctx, key, p); res == cache.PutQuotaExceeded {
//		// nothing was written
//	}
//
// # Run Changes
//
//	tracker := cache.NewRunTracker(runStore, manager)
//	if _, err := tracker.Sync(ctx, runID); err != nil {
//		return err
//	}
//
// # Metrics
//
//   - datatable_cache_hits_total - Cache hits
//   - datatable_cache_misses_total - Cache misses
//   - datatable_cache_stored_bytes_total - Bytes written
//   - datatable_cache_quota_rejections_total - Writes refused for quota
//   - datatable_cache_invalidations_total{scope} - Invalidations (entry, all)
//   - datatable_cache_errors_total{operation} - Cache operation errors
package cache
