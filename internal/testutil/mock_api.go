// Package testutil provides testing utilities for the data table client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/datatable-client/pkg/page"
)

// DataPath is the path the mock serves pages on.
const DataPath = "/data"

// MockResponse overrides the response for requests to one page.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockAPI is a configurable mock of the paginated data API. Datasets are
// sliced into pages the way the Flask backend does it.
type MockAPI struct {
	server       *httptest.Server
	mu           sync.RWMutex
	datasets     map[string][]page.Row
	overrides    map[int]MockResponse
	datasetParam string

	// Tracking
	RequestCount int
	LastQuery    map[string]string
}

// NewMockAPI creates a new mock data API reading the dataset identifier
// from the "dataset" query parameter.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		datasets:     make(map[string][]page.Row),
		overrides:    make(map[int]MockResponse),
		datasetParam: "dataset",
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the data endpoint URL.
func (m *MockAPI) URL() string {
	return m.server.URL + DataPath
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastQuery = nil
}

// SetDatasetParam changes the query parameter naming the dataset.
func (m *MockAPI) SetDatasetParam(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasetParam = name
}

// SetDataset registers rows for dataset.
func (m *MockAPI) SetDataset(dataset string, rows []page.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[dataset] = rows
}

// SetPageResponse overrides the response for a page number, for any dataset.
func (m *MockAPI) SetPageResponse(pageNum int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[pageNum] = resp
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastQuery returns the query parameters of the most recent request.
func (m *MockAPI) GetLastQuery() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

func (m *MockAPI) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	m.mu.Lock()
	m.RequestCount++
	m.LastQuery = map[string]string{
		"dataset":   q.Get(m.datasetParam),
		"page":      q.Get("page"),
		"page_size": q.Get("page_size"),
	}
	param := m.datasetParam
	m.mu.Unlock()

	if r.URL.Path != DataPath {
		http.NotFound(w, r)
		return
	}

	pageNum, err := strconv.Atoi(q.Get("page"))
	if err != nil || pageNum < 1 {
		pageNum = 1
	}
	pageSize, err := strconv.Atoi(q.Get("page_size"))
	if err != nil || pageSize < 1 {
		pageSize = 10
	}

	m.mu.RLock()
	override, hasOverride := m.overrides[pageNum]
	rows, known := m.datasets[q.Get(param)]
	m.mu.RUnlock()

	if hasOverride {
		if override.Delay > 0 {
			time.Sleep(override.Delay)
		}
		if override.StatusCode != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(override.StatusCode)
			w.Write([]byte(override.Body))
			return
		}
	}

	if !known {
		http.Error(w, `{"error":"unknown dataset"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Paginate(rows, pageNum, pageSize))
}

// Paginate slices rows into the page shape the backend returns.
func Paginate(rows []page.Row, pageNum, pageSize int) *page.Page {
	total := len(rows)
	totalPages := (total + pageSize - 1) / pageSize

	start := (pageNum - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	data := make([]page.Row, end-start)
	copy(data, rows[start:end])

	return &page.Page{
		CurrentPage:  pageNum,
		TotalPages:   totalPages,
		PageSize:     pageSize,
		TotalRecords: total,
		Data:         data,
	}
}

// Rows builds n rows with predictable content. Every third row has a long
// answer and every other row a short answer.
func Rows(n int) []page.Row {
	rows := make([]page.Row, n)
	for i := range rows {
		num := strconv.Itoa(i + 1)
		rows[i].Question = "Q" + num
		if i%3 == 0 {
			rows[i].LongAnswers = "<p>Long answer " + num + "</p>"
		}
		if i%2 == 0 {
			rows[i].ShortAnswers = "A" + num
		}
	}
	return rows
}
