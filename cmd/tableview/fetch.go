package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/Sternrassler/datatable-client/pkg/pagination"
	"github.com/Sternrassler/datatable-client/pkg/progress"
	"github.com/Sternrassler/datatable-client/pkg/render"
	"github.com/Sternrassler/datatable-client/pkg/viewer"
	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"
)

type fetchOptions struct {
	dataset  string
	page     int
	pageSize int
	out      string
	all      bool
	refresh  bool
	quiet    bool
}

func newFetchCmd(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one page and print its pagination and table HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if opts.dataset == "" {
				opts.dataset = a.cfg.DefaultDataset()
			}
			if !cmd.Flags().Changed("page-size") {
				opts.pageSize = a.cfg.PageSize
			}

			out := cmd.OutOrStdout()
			if opts.out != "" {
				f, err := os.Create(opts.out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}

			var bar io.Writer
			if !opts.quiet {
				bar = cmd.ErrOrStderr()
			}
			if opts.all {
				return runFetchAll(cmd, a, root.tableRenderer(), opts, out, bar)
			}
			return runFetch(cmd, a, root.tableRenderer(), opts, out, bar)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dataset, "dataset", "", "dataset identifier (default: first of DATATABLE_DATASETS)")
	f.IntVar(&opts.page, "page", 1, "page number")
	f.IntVar(&opts.pageSize, "page-size", 10, "rows per page")
	f.StringVar(&opts.out, "out", "", "write HTML to file instead of stdout")
	f.BoolVar(&opts.all, "all", false, "fetch every page and print all rows")
	f.BoolVar(&opts.refresh, "refresh", false, "drop the cached copy before fetching")
	f.BoolVar(&opts.quiet, "quiet", false, "no progress bar")

	return cmd
}

func runFetch(cmd *cobra.Command, a *app, table *render.TableRenderer, opts *fetchOptions, out, bar io.Writer) error {
	ctx := cmd.Context()

	var observer progress.Observer
	if bar != nil {
		observer = progressPrinter(bar)
	}
	ind := progress.New(progress.DefaultConfig(), observer)
	defer ind.Stop()

	initial := render.NewState(opts.dataset, opts.pageSize).WithPage(opts.page)
	v := viewer.New(a.client, a.manager, initial, viewer.Options{
		Table:    table,
		Progress: ind,
	})

	load := v.Load
	if opts.refresh {
		load = v.Refresh
	}
	err := load(ctx)
	if bar != nil {
		fmt.Fprintln(bar)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", v.Current().Err, err)
	}

	view := v.Current()
	_, err = fmt.Fprintf(out, "%s\n%s\n", view.PaginationHTML, view.TableHTML)
	return err
}

func runFetchAll(cmd *cobra.Command, a *app, table *render.TableRenderer, opts *fetchOptions, out, bar io.Writer) error {
	ctx := cmd.Context()

	cfg := pagination.DefaultConfig()
	if bar != nil {
		model := newBar()
		cfg.OnProgress = func(done, total int) {
			fmt.Fprintf(bar, "\r%s", model.ViewAs(float64(done)/float64(total)))
		}
	}

	pages, fetchErr := pagination.NewBatchFetcher(a.client, cfg).FetchAll(ctx, opts.dataset, opts.pageSize)
	if bar != nil {
		fmt.Fprintln(bar)
	}
	if len(pages) == 0 {
		return fmt.Errorf("%s: %w", viewer.UserMessage(fetchErr), fetchErr)
	}

	var buf bytes.Buffer
	for _, p := range pages {
		if err := table.Render(ctx, &buf, p.Data, p.CurrentPage, p.PageSize); err != nil {
			return err
		}
		buf.WriteByte('\n')
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return err
	}
	return fetchErr
}

func newBar() bprogress.Model {
	return bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(40))
}

// progressPrinter draws indicator snapshots as a terminal progress bar.
func progressPrinter(w io.Writer) progress.Observer {
	model := newBar()
	return func(s progress.Snapshot) {
		if s.State == progress.Idle {
			fmt.Fprint(w, "\r\x1b[K")
			return
		}
		fmt.Fprintf(w, "\r%s", model.ViewAs(float64(s.Percent)/100))
	}
}
