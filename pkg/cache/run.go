package cache

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunStore persists the last-seen run identifier across sessions.
type RunStore interface {
	// LoadRunID returns the stored run id, or "" if none was stored.
	LoadRunID(ctx context.Context) (string, error)

	// SaveRunID replaces the stored run id.
	SaveRunID(ctx context.Context, runID string) error
}

// RunTracker purges the page cache when the run identifier changes.
type RunTracker struct {
	runs   RunStore
	cache  *Manager
	logger zerolog.Logger
}

// NewRunTracker creates a tracker that clears cache whenever the run id
// persisted in runs differs from the current one.
func NewRunTracker(runs RunStore, cache *Manager) *RunTracker {
	return &RunTracker{
		runs:   runs,
		cache:  cache,
		logger: log.With().Str("component", "run-tracker").Logger(),
	}
}

// Sync compares currentRunID with the stored one. When they differ
// (including the first start, when nothing is stored) the page cache is
// cleared and currentRunID is stored. It reports whether a change was seen.
func (t *RunTracker) Sync(ctx context.Context, currentRunID string) (bool, error) {
	stored, err := t.runs.LoadRunID(ctx)
	if err != nil {
		return false, fmt.Errorf("load run id: %w", err)
	}
	if stored == currentRunID {
		t.logger.Debug().Str("run_id", currentRunID).Msg("Run unchanged, keeping cache")
		return false, nil
	}

	t.logger.Info().
		Str("previous_run_id", stored).
		Str("run_id", currentRunID).
		Msg("New run detected, clearing page cache")

	if err := t.cache.InvalidateAll(ctx); err != nil {
		return true, fmt.Errorf("clear page cache: %w", err)
	}
	if err := t.runs.SaveRunID(ctx, currentRunID); err != nil {
		return true, fmt.Errorf("save run id: %w", err)
	}
	return true, nil
}
