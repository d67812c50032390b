// Package viewer drives the fetch, render and progress cycle for one data
// table. It replaces the browser's event handlers: each exported method
// corresponds to a user action and produces a new View.
package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Sternrassler/datatable-client/pkg/cache"
	"github.com/Sternrassler/datatable-client/pkg/client"
	"github.com/Sternrassler/datatable-client/pkg/logging"
	"github.com/Sternrassler/datatable-client/pkg/page"
	"github.com/Sternrassler/datatable-client/pkg/progress"
	"github.com/Sternrassler/datatable-client/pkg/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// User-visible failure messages.
const (
	MsgLoadFailed  = "Could not load data"
	MsgInvalidData = "Received invalid data"
)

var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datatable_viewer_loads_total",
		Help: "Total viewer loads by result",
	}, []string{"result"}) // "ok", "error", "stale"
)

// Fetcher resolves pages. *client.Client implements it.
type Fetcher interface {
	FetchPage(ctx context.Context, req client.Request) (*page.Page, error)
	Key(req client.Request) cache.PageKey
}

// Invalidator drops a single cached page. *cache.Manager implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, key cache.PageKey)
}

// View is the rendered output of the last applied load.
type View struct {
	PaginationHTML string
	TableHTML      string
	Page           *page.Page

	// Err is the message of the most recent failed load, empty after a
	// successful one. The previous tables stay in place on failure.
	Err string
}

// Options configures a Viewer. Zero values select the defaults.
type Options struct {
	Table      *render.TableRenderer
	Pagination *render.PaginationRenderer
	Progress   *progress.Indicator
}

// Viewer owns the current selection and the last rendered view.
type Viewer struct {
	fetcher     Fetcher
	invalidator Invalidator
	table       *render.TableRenderer
	pagination  *render.PaginationRenderer
	progress    *progress.Indicator
	logger      zerolog.Logger

	mu      sync.Mutex
	state   render.State
	view    View
	seq     uint64 // last issued load
	applied uint64 // last load whose result was applied
}

// New creates a viewer for the initial selection. invalidator may be nil,
// in which case Refresh only refetches.
func New(fetcher Fetcher, invalidator Invalidator, initial render.State, opts Options) *Viewer {
	if fetcher == nil {
		panic("viewer: fetcher is required")
	}
	if opts.Table == nil {
		opts.Table = render.NewTableRenderer()
	}
	if opts.Pagination == nil {
		opts.Pagination = render.NewPaginationRenderer()
	}
	if opts.Progress == nil {
		opts.Progress = progress.New(progress.DefaultConfig(), nil)
	}
	if initial.CurrentPage < 1 {
		initial.CurrentPage = 1
	}
	return &Viewer{
		fetcher:     fetcher,
		invalidator: invalidator,
		table:       opts.Table,
		pagination:  opts.Pagination,
		progress:    opts.Progress,
		logger:      logging.NewLogger(logging.ComponentViewer),
		state:       initial,
	}
}

// State returns the current selection.
func (v *Viewer) State() render.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Current returns the last applied view.
func (v *Viewer) Current() View {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.view
}

// Progress returns the viewer's loading indicator.
func (v *Viewer) Progress() *progress.Indicator {
	return v.progress
}

// Load fetches and renders the current selection.
func (v *Viewer) Load(ctx context.Context) error {
	return v.load(ctx, func(s render.State) render.State { return s })
}

// SelectDataset switches dataset and loads its first page.
func (v *Viewer) SelectDataset(ctx context.Context, id string) error {
	return v.load(ctx, func(s render.State) render.State { return s.WithDataset(id) })
}

// SetPageSize changes the page size and loads the first page.
func (v *Viewer) SetPageSize(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: page size must be >= 1", client.ErrInvalidRequest)
	}
	return v.load(ctx, func(s render.State) render.State { return s.WithPageSize(n) })
}

// GoToPage loads page n of the current dataset.
func (v *Viewer) GoToPage(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: page must be >= 1", client.ErrInvalidRequest)
	}
	return v.load(ctx, func(s render.State) render.State { return s.WithPage(n) })
}

// Refresh drops the cached copy of the current page and fetches it again.
// Other cached pages are left untouched.
func (v *Viewer) Refresh(ctx context.Context) error {
	if v.invalidator != nil {
		st := v.State()
		key := v.fetcher.Key(request(st))
		v.invalidator.Invalidate(ctx, key)
		v.logger.Debug().Str("key", key.String()).Msg("Refreshing page")
	}
	return v.Load(ctx)
}

func (v *Viewer) load(ctx context.Context, next func(render.State) render.State) error {
	v.mu.Lock()
	v.state = next(v.state)
	v.seq++
	seq := v.seq
	req := request(v.state)
	v.mu.Unlock()

	v.progress.Start()
	defer v.completeIfLatest(seq)

	p, err := v.fetcher.FetchPage(ctx, req)
	if err != nil {
		return v.fail(seq, req, err)
	}

	size := p.PageSize
	if size <= 0 {
		size = req.PageSize
	}

	var pag, tbl bytes.Buffer
	if err := v.pagination.Render(ctx, &pag, p.CurrentPage, p.TotalPages); err != nil {
		return v.fail(seq, req, err)
	}
	if err := v.table.Render(ctx, &tbl, p.Data, p.CurrentPage, size); err != nil {
		return v.fail(seq, req, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq < v.applied {
		v.discardLocked(seq)
		return nil
	}
	v.applied = seq
	v.view = View{
		PaginationHTML: pag.String(),
		TableHTML:      tbl.String(),
		Page:           p,
	}
	if seq == v.seq {
		v.state.CurrentPage = p.CurrentPage
	}
	loadsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (v *Viewer) fail(seq uint64, req client.Request, err error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq < v.applied {
		v.discardLocked(seq)
		return err
	}
	v.applied = seq
	v.view.Err = UserMessage(err)
	loadsTotal.WithLabelValues("error").Inc()
	v.logger.Warn().
		Err(err).
		Str("dataset", req.Dataset).
		Int("page", req.Page).
		Uint64("seq", seq).
		Msg("Load failed")
	return err
}

func (v *Viewer) discardLocked(seq uint64) {
	loadsTotal.WithLabelValues("stale").Inc()
	v.logger.Debug().
		Uint64("seq", seq).
		Uint64("applied", v.applied).
		Msg("Discarding stale result")
}

func (v *Viewer) completeIfLatest(seq uint64) {
	v.mu.Lock()
	latest := seq == v.seq
	v.mu.Unlock()
	if latest {
		v.progress.Complete()
	}
}

func request(s render.State) client.Request {
	return client.Request{Dataset: s.Dataset, Page: s.CurrentPage, PageSize: s.PageSize}
}

// UserMessage maps a load failure to the message shown to the user.
func UserMessage(err error) string {
	if errors.Is(err, client.ErrInvalidData) {
		return MsgInvalidData
	}
	return MsgLoadFailed
}
