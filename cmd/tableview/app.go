package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/datatable-client/internal/config"
	"github.com/Sternrassler/datatable-client/pkg/cache"
	"github.com/Sternrassler/datatable-client/pkg/client"
	"github.com/Sternrassler/datatable-client/pkg/runstore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app holds the wired fetch path shared by all subcommands.
type app struct {
	cfg     config.Config
	client  *client.Client
	manager *cache.Manager
	redis   *redis.Client
	runID   string
	logger  zerolog.Logger
	closers []func() error
}

// newApp builds the page store, run tracking and data fetcher from cfg.
func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var store cache.Store
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, a.redis.Close)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
		store = cache.NewRedisStore(a.redis, "", cfg.CacheTTL)
	} else {
		store = cache.NewMemoryStore(cfg.CacheQuota)
	}
	a.manager = cache.NewManager(store)

	var runs cache.RunStore
	if cfg.RunDB != "" {
		db, err := runstore.Open(cfg.RunDB)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		runs = db
	} else {
		runs = runstore.NewMemoryStore()
	}

	a.runID = cfg.RunID
	if a.runID == "" {
		a.runID = runstore.NewRunID()
	}
	if _, err := cache.NewRunTracker(runs, a.manager).Sync(ctx, a.runID); err != nil {
		a.Close()
		return nil, fmt.Errorf("sync run: %w", err)
	}

	c, err := client.New(cfg.ClientConfig(), a.manager, cache.NewKeyer(a.runID))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create data client: %w", err)
	}
	a.client = c

	logger.Debug().
		Str("endpoint", cfg.Endpoint()).
		Str("run_id", a.runID).
		Msg("Data client ready")

	return a, nil
}

// ready reports whether the page store is reachable.
func (a *app) ready(ctx context.Context) error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Ping(ctx).Err()
}

// Close releases the store connections in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
