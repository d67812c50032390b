package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Sternrassler/datatable-client/internal/testutil"
	"github.com/Sternrassler/datatable-client/pkg/cache"
	"github.com/Sternrassler/datatable-client/pkg/client"
	"github.com/Sternrassler/datatable-client/pkg/render"
	"github.com/Sternrassler/datatable-client/pkg/runstore"
	"github.com/Sternrassler/datatable-client/pkg/viewer"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func newClient(t *testing.T, mock *testutil.MockAPI, manager *cache.Manager, runID string) *client.Client {
	t.Helper()

	c, err := client.New(client.DefaultConfig(mock.URL()), manager, cache.NewKeyer(runID))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// TestFullFetchFlow tests Cache Miss → Data API → Cache Store → Cache Hit
// against a real Redis page store.
func TestFullFetchFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(25))

	ctx := context.Background()
	manager := cache.NewManager(cache.NewRedisStore(redisClient, "", 0))
	c := newClient(t, mock, manager, "run-1")
	req := client.Request{Dataset: "ds1", Page: 2, PageSize: 10}

	// Request 1: cache miss, network fetch, stored
	p1, err := c.FetchPage(ctx, req)
	if err != nil {
		t.Fatalf("Request 1 failed: %v", err)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("After request 1: API requests = %d, want 1", mock.GetRequestCount())
	}

	n, err := redisClient.Exists(ctx, cache.DefaultRedisPrefix+c.Key(req).String()).Result()
	if err != nil || n != 1 {
		t.Fatalf("page not stored in Redis: n=%d err=%v", n, err)
	}

	// Request 2: served from Redis
	p2, err := c.FetchPage(ctx, req)
	if err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("After request 2: API requests = %d, want 1", mock.GetRequestCount())
	}
	if p1.CurrentPage != p2.CurrentPage || len(p1.Data) != len(p2.Data) || p1.Data[0] != p2.Data[0] {
		t.Errorf("cached page differs: %+v vs %+v", p1, p2)
	}
}

// TestRunChangeClearsRedis tests that a new run id purges every session
// entry but leaves foreign keys alone.
func TestRunChangeClearsRedis(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(30))

	ctx := context.Background()
	if err := redisClient.Set(ctx, "unrelated", "keep", 0).Err(); err != nil {
		t.Fatalf("seed unrelated key: %v", err)
	}

	runs, err := runstore.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open run store: %v", err)
	}
	defer runs.Close()

	manager := cache.NewManager(cache.NewRedisStore(redisClient, "", 0))
	tracker := cache.NewRunTracker(runs, manager)

	if _, err := tracker.Sync(ctx, "run-1"); err != nil {
		t.Fatalf("Sync(run-1) error: %v", err)
	}
	c1 := newClient(t, mock, manager, "run-1")
	for page := 1; page <= 3; page++ {
		if _, err := c1.FetchPage(ctx, client.Request{Dataset: "ds1", Page: page, PageSize: 10}); err != nil {
			t.Fatalf("FetchPage(%d) error: %v", page, err)
		}
	}

	changed, err := tracker.Sync(ctx, "run-2")
	if err != nil || !changed {
		t.Fatalf("Sync(run-2) = %v, %v; want change", changed, err)
	}

	keys, err := redisClient.Keys(ctx, cache.DefaultRedisPrefix+"*").Result()
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("session keys after run change = %v, want none", keys)
	}
	if v, _ := redisClient.Get(ctx, "unrelated").Result(); v != "keep" {
		t.Errorf("unrelated key = %q, want keep", v)
	}

	mock.Reset()
	c2 := newClient(t, mock, manager, "run-2")
	if _, err := c2.FetchPage(ctx, client.Request{Dataset: "ds1", Page: 1, PageSize: 10}); err != nil {
		t.Fatalf("FetchPage after run change error: %v", err)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("requests after run change = %d, want 1", mock.GetRequestCount())
	}

	stored, err := runs.LoadRunID(ctx)
	if err != nil || stored != "run-2" {
		t.Errorf("stored run id = %q, %v; want run-2", stored, err)
	}
}

// TestQuotaExceeded tests that a full Redis refuses the write without
// failing the fetch.
func TestQuotaExceeded(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(10))

	ctx := context.Background()
	if err := redisClient.ConfigSet(ctx, "maxmemory-policy", "noeviction").Err(); err != nil {
		t.Fatalf("set policy: %v", err)
	}
	if err := redisClient.ConfigSet(ctx, "maxmemory", "1").Err(); err != nil {
		t.Fatalf("set maxmemory: %v", err)
	}

	manager := cache.NewManager(cache.NewRedisStore(redisClient, "", 0))
	c := newClient(t, mock, manager, "run-1")
	req := client.Request{Dataset: "ds1", Page: 1, PageSize: 10}

	p, err := c.FetchPage(ctx, req)
	if err != nil {
		t.Fatalf("FetchPage with full store error: %v", err)
	}
	if len(p.Data) != 10 {
		t.Errorf("rows = %d, want 10", len(p.Data))
	}

	if res := manager.Put(ctx, c.Key(req), p); res != cache.PutQuotaExceeded {
		t.Errorf("Put() = %v, want %v", res, cache.PutQuotaExceeded)
	}
}

// TestViewerRefreshAgainstRedis tests that refresh only drops the current
// page from the shared store.
func TestViewerRefreshAgainstRedis(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(30))

	ctx := context.Background()
	manager := cache.NewManager(cache.NewRedisStore(redisClient, "", 0))
	c := newClient(t, mock, manager, "run-1")
	v := viewer.New(c, manager, render.NewState("ds1", 10), viewer.Options{})

	if err := v.Load(ctx); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := v.GoToPage(ctx, 2); err != nil {
		t.Fatalf("GoToPage(2) error: %v", err)
	}
	if err := v.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got := mock.GetRequestCount(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}

	key1 := cache.DefaultRedisPrefix + c.Key(client.Request{Dataset: "ds1", Page: 1, PageSize: 10}).String()
	if n, _ := redisClient.Exists(ctx, key1).Result(); n != 1 {
		t.Error("page 1 should remain in Redis after refreshing page 2")
	}
}
