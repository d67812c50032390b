// Package pagination fetches every page of a dataset in parallel.
//
// The data API reports totalPages on each page, so the first page is
// fetched alone and the rest are distributed over a small worker pool.
// Pages go through the regular fetcher, which means they also land in the
// page cache:
//
//	bf := pagination.NewBatchFetcher(dataClient, pagination.DefaultConfig())
//	pages, err := bf.FetchAll(ctx, "faq.parquet", 25)
//
// Failed pages are logged and skipped; FetchAll returns the pages it got
// together with an error.
package pagination
