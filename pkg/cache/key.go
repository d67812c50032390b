package cache

import (
	"net/url"
	"strconv"
	"strings"
)

// KeyPrefix namespaces every page key.
const KeyPrefix = "pagedata"

// PageKey identifies one cached page.
type PageKey struct {
	// RunID is the deployment/session epoch the page was fetched in
	RunID string

	// Dataset is the dataset (table) identifier
	Dataset string

	// Page is the 1-based page number
	Page int

	// PageSize is the number of rows per page
	PageSize int
}

// String generates a deterministic cache key string.
// Format: pagedata:<run>:<dataset>:<page>:<page_size>
//
// Run and dataset are query-escaped so neither can contain the separator,
// which keeps distinct keys distinct.
//
// Example:
//
//	pagedata:3f1c...:Natural_Questions_Base:2:10
func (k PageKey) String() string {
	parts := []string{
		KeyPrefix,
		url.QueryEscape(k.RunID),
		url.QueryEscape(k.Dataset),
		strconv.Itoa(k.Page),
		strconv.Itoa(k.PageSize),
	}
	return strings.Join(parts, ":")
}

// Keyer derives page keys for a fixed run identifier.
type Keyer struct {
	runID string
}

// NewKeyer returns a Keyer bound to runID.
func NewKeyer(runID string) Keyer {
	return Keyer{runID: runID}
}

// RunID returns the bound run identifier.
func (k Keyer) RunID() string {
	return k.runID
}

// Key returns the cache key for one page of dataset.
func (k Keyer) Key(dataset string, page, pageSize int) PageKey {
	return PageKey{
		RunID:    k.runID,
		Dataset:  dataset,
		Page:     page,
		PageSize: pageSize,
	}
}
