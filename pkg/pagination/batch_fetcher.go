package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/datatable-client/pkg/client"
	"github.com/Sternrassler/datatable-client/pkg/page"
	"github.com/rs/zerolog/log"
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel page requests.
	MaxConcurrency int

	// Timeout per page fetch.
	Timeout time.Duration

	// OnProgress, when set, is called after each page with the number of
	// pages done so far, failed pages included. Calls are serialized.
	OnProgress func(done, total int)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
	}
}

// PageFetcher fetches one page. *client.Client implements it.
type PageFetcher interface {
	FetchPage(ctx context.Context, req client.Request) (*page.Page, error)
}

// PageResult is the outcome of fetching a single page.
type PageResult struct {
	PageNumber int
	Page       *page.Page
	Error      error
}

// BatchFetcher fetches every page of a dataset with a worker pool.
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
}

// NewBatchFetcher creates a new batch fetcher.
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll fetches page 1 to learn the page count, then the remaining
// pages in parallel. Returned pages are in page order. When some pages
// fail, the successful ones are returned with an error naming the count.
func (bf *BatchFetcher) FetchAll(ctx context.Context, dataset string, pageSize int) ([]*page.Page, error) {
	start := time.Now()

	first, err := bf.fetchOne(ctx, client.Request{Dataset: dataset, Page: 1, PageSize: pageSize})
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}

	total := max(first.TotalPages, 1)
	bf.progress(1, total)

	log.Info().
		Str("dataset", dataset).
		Int("total_pages", total).
		Msg("Starting batch page fetch")

	pages := make([]*page.Page, total)
	pages[0] = first
	if total == 1 {
		return pages, nil
	}

	queue := make(chan int)
	results := make(chan PageResult)

	go func() {
		defer close(queue)
		for n := 2; n <= total; n++ {
			select {
			case queue <- n:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < min(bf.config.MaxConcurrency, total-1); i++ {
		wg.Add(1)
		go bf.worker(ctx, dataset, pageSize, queue, results, &wg)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	done, failed := 1, 0
	var firstErr error
	for res := range results {
		done++
		if res.Error != nil {
			failed++
			if firstErr == nil {
				firstErr = res.Error
			}
		} else {
			pages[res.PageNumber-1] = res.Page
		}
		bf.progress(done, total)
	}

	if err := ctx.Err(); err != nil {
		return compact(pages), fmt.Errorf("batch fetch cancelled after %d/%d pages: %w", done, total, err)
	}
	if failed > 0 {
		return compact(pages), fmt.Errorf("%d of %d pages failed: %w", failed, total, firstErr)
	}

	log.Info().
		Str("dataset", dataset).
		Int("pages", total).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	return pages, nil
}

func (bf *BatchFetcher) worker(ctx context.Context, dataset string, pageSize int, queue <-chan int, results chan<- PageResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for n := range queue {
		p, err := bf.fetchOne(ctx, client.Request{Dataset: dataset, Page: n, PageSize: pageSize})
		if err != nil {
			log.Warn().
				Err(err).
				Str("dataset", dataset).
				Int("page", n).
				Msg("Page fetch failed")
		}

		select {
		case results <- PageResult{PageNumber: n, Page: p, Error: err}:
		case <-ctx.Done():
			return
		}
	}
}

func (bf *BatchFetcher) fetchOne(ctx context.Context, req client.Request) (*page.Page, error) {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()
	return bf.fetcher.FetchPage(pageCtx, req)
}

func (bf *BatchFetcher) progress(done, total int) {
	if bf.config.OnProgress != nil {
		bf.config.OnProgress(done, total)
	}
}

func compact(pages []*page.Page) []*page.Page {
	out := pages[:0:0]
	for _, p := range pages {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
