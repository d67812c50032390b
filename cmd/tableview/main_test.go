package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sternrassler/datatable-client/internal/config"
	"github.com/Sternrassler/datatable-client/internal/testutil"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, mock *testutil.MockAPI) *server {
	t.Helper()

	cfg, err := config.LoadFrom(map[string]string{
		"DATATABLE_LOCAL_ENDPOINT": mock.URL(),
		"DATATABLE_DATASETS":       "ds1,ds2",
	})
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	a, err := newApp(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	return newServer(a, (&rootOptions{sanitize: true}).tableRenderer())
}

func get(t *testing.T, h http.Handler, target string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReadyEndpoint_MemoryStore(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	status, body := get(t, newTestServer(t, mock).routes(), "/ready")
	if status != http.StatusOK || body != "OK" {
		t.Errorf("GET /ready = %d %q, want 200 OK", status, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(5))

	h := newTestServer(t, mock).routes()
	get(t, h, "/?dataset=ds1")

	status, body := get(t, h, "/metrics")
	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if !strings.Contains(body, "# HELP") || !strings.Contains(body, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
	for _, name := range []string{"datatable_cache_misses_total", "datatable_fetches_total", "datatable_requests_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected metrics output to contain %s", name)
		}
	}
}

func TestIndex(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(25))

	h := newTestServer(t, mock).routes()

	status, body := get(t, h, "/?dataset=ds1&page=2&page_size=10")
	if status != http.StatusOK {
		t.Fatalf("GET / = %d, want 200\n%s", status, body)
	}
	for _, want := range []string{
		`<option value="ds1" selected>ds1</option>`,
		`<option value="10" selected>10</option>`,
		`<tbody id="data-rows"><tr><td>11</td><td>Q11</td>`,
		`href="?dataset=ds1&amp;page=3&amp;page_size=10" data-page="3">3</a>`,
		`<li class="page-item active"><a class="page-link" href="?dataset=ds1&amp;page=2&amp;page_size=10" data-page="2">2</a></li>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "alert-danger") {
		t.Error("page should not show an error")
	}
}

func TestIndex_DefaultsAndCache(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(25))

	h := newTestServer(t, mock).routes()

	// defaults: first dataset, page 1, configured page size
	if status, _ := get(t, h, "/?page=abc"); status != http.StatusOK {
		t.Fatalf("GET / = %d, want 200", status)
	}
	q := mock.GetLastQuery()
	if q["dataset"] != "ds1" || q["page"] != "1" || q["page_size"] != "10" {
		t.Errorf("last query = %v", q)
	}

	get(t, h, "/?dataset=ds1")
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("requests after cached reload = %d, want 1", got)
	}

	get(t, h, "/?dataset=ds1&refresh=1")
	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("requests after refresh = %d, want 2", got)
	}
}

func TestIndex_Errors(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(40))
	mock.SetPageResponse(2, testutil.MockResponse{StatusCode: http.StatusOK, Body: `{"data":"nope"}`})

	h := newTestServer(t, mock).routes()

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"unknown dataset", "/?dataset=missing", "Could not load data"},
		{"invalid data", "/?dataset=ds1&page=2", "Received invalid data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, h, tt.target)
			if status != http.StatusBadGateway {
				t.Errorf("status = %d, want 502", status)
			}
			if !strings.Contains(body, `<div class="alert alert-danger" role="alert">`+tt.want+`</div>`) {
				t.Errorf("body missing alert %q", tt.want)
			}
		})
	}

	if status, _ := get(t, h, "/nope"); status != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", status)
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestFetchCommand(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(25))
	t.Setenv("DATATABLE_LOG_LEVEL", "error")

	stdout, _, err := runCLI(t, "fetch", "--endpoint", mock.URL(), "--dataset", "ds1", "--page", "2", "--quiet")
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if !strings.Contains(stdout, `<ul class="pagination">`) {
		t.Error("output missing pagination")
	}
	if !strings.Contains(stdout, "<tr><td>11</td><td>Q11</td>") {
		t.Errorf("output missing row 11:\n%s", stdout)
	}
	if q := mock.GetLastQuery(); q["page"] != "2" || q["page_size"] != "10" {
		t.Errorf("last query = %v", q)
	}
}

func TestFetchCommand_ProgressAndOutFile(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(5))
	t.Setenv("DATATABLE_LOG_LEVEL", "error")

	out := filepath.Join(t.TempDir(), "table.html")
	stdout, stderr, err := runCLI(t, "fetch", "--endpoint", mock.URL(), "--dataset", "ds1", "--out", out)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty with --out", stdout)
	}
	if !strings.Contains(stderr, "%") {
		t.Errorf("stderr should show a progress bar, got %q", stderr)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "<td>Q5</td>") {
		t.Errorf("output file missing rows:\n%s", data)
	}
}

func TestFetchCommand_All(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(25))
	t.Setenv("DATATABLE_LOG_LEVEL", "error")

	stdout, _, err := runCLI(t, "fetch", "--endpoint", mock.URL(), "--dataset", "ds1", "--all", "--quiet")
	if err != nil {
		t.Fatalf("fetch --all error: %v", err)
	}
	for _, want := range []string{"<tr><td>1</td>", "<tr><td>11</td>", "<tr><td>25</td>"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if got := mock.GetRequestCount(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestFetchCommand_Error(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	t.Setenv("DATATABLE_LOG_LEVEL", "error")

	_, _, err := runCLI(t, "fetch", "--endpoint", mock.URL(), "--dataset", "missing", "--quiet")
	if err == nil || !strings.Contains(err.Error(), "Could not load data") {
		t.Errorf("fetch error = %v, want 'Could not load data'", err)
	}
}

func TestFetchCommand_RunDB(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetDataset("ds1", testutil.Rows(5))
	t.Setenv("DATATABLE_LOG_LEVEL", "error")

	db := filepath.Join(t.TempDir(), "runs.db")
	for _, run := range []string{"run-a", "run-b"} {
		if _, _, err := runCLI(t, "fetch", "--endpoint", mock.URL(), "--dataset", "ds1", "--quiet", "--run-db", db, "--run-id", run); err != nil {
			t.Fatalf("fetch with run %s error: %v", run, err)
		}
	}
	if _, err := os.Stat(db); err != nil {
		t.Errorf("run db not created: %v", err)
	}
}
