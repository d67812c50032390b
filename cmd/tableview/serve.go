package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/datatable-client/pkg/client"
	"github.com/Sternrassler/datatable-client/pkg/metrics"
	"github.com/Sternrassler/datatable-client/pkg/page"
	"github.com/Sternrassler/datatable-client/pkg/render"
	"github.com/Sternrassler/datatable-client/pkg/viewer"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the table viewer over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cmd.Flags().Changed("port") {
				port = a.cfg.Port
			}
			srv := newServer(a, root.tableRenderer())
			return srv.listenAndServe(cmd.Context(), ":"+strconv.Itoa(port))
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "listen port (default: PORT)")

	return cmd
}

// server renders the viewer page from query parameters. Each request is
// one load: ?dataset=..&page=..&page_size=..[&refresh=1].
type server struct {
	app    *app
	table  *render.TableRenderer
	logger zerolog.Logger
}

func newServer(a *app, table *render.TableRenderer) *server {
	return &server{app: a, table: table, logger: a.logger}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func (s *server) listenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Str("endpoint", s.app.cfg.Endpoint()).Msg("Starting table viewer")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.app.ready(ctx); err != nil {
		http.Error(w, "page store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// stateFromQuery reads the selection, falling back to configured defaults
// for missing or invalid values.
func (s *server) stateFromQuery(r *http.Request) render.State {
	q := r.URL.Query()

	dataset := q.Get("dataset")
	if dataset == "" {
		dataset = s.app.cfg.DefaultDataset()
	}
	size, err := strconv.Atoi(q.Get("page_size"))
	if err != nil || size < 1 {
		size = s.app.cfg.PageSize
	}
	n, err := strconv.Atoi(q.Get("page"))
	if err != nil || n < 1 {
		n = 1
	}
	return render.NewState(dataset, size).WithPage(n)
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	st := s.stateFromQuery(r)

	data := render.DocumentData{
		Datasets: s.app.cfg.Datasets,
		State:    st,
	}
	status := http.StatusOK

	if st.Dataset != "" {
		req := client.Request{Dataset: st.Dataset, Page: st.CurrentPage, PageSize: st.PageSize}
		if r.URL.Query().Get("refresh") == "1" {
			s.app.manager.Invalidate(ctx, s.app.client.Key(req))
		}

		p, err := s.app.client.FetchPage(ctx, req)
		if err != nil {
			status = http.StatusBadGateway
			data.Error = viewer.UserMessage(err)
		} else {
			s.fill(&data, p)
		}
	}

	var buf bytes.Buffer
	if err := render.Document(data).Render(ctx, &buf); err != nil {
		s.logger.Error().Err(err).Msg("Render page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *server) fill(data *render.DocumentData, p *page.Page) {
	st := data.State.WithPage(p.CurrentPage)
	data.State = st
	data.TotalPages = p.TotalPages

	href := func(n int) string {
		return "?" + render.StateQuery(st.WithPage(n)).Encode()
	}
	data.Pagination = render.NewLinkedPaginationRenderer(href).Component(p.CurrentPage, p.TotalPages)
	data.Rows = s.table.Rows(p.Data, p.CurrentPage, p.PageSize)
}
