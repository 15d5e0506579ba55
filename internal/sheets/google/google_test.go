package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	ports "bilancio/internal/sheets"

	goption "google.golang.org/api/option"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Budget", 2025, "2025 Budget"},
		{" Budget ", 2024, "2024 Budget"},
		{"2023 Budget", 2025, "2023 Budget"},
		{"", 2025, ""},
		{"12345", 2025, "2025 12345"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}

func sampleRows() ([]ports.SummaryRow, budget.DashboardKPIs) {
	lines := []core.BudgetLine{
		{Type: core.Income, Allocated: core.Cents(100000), AllocatedLow: core.Cents(60000).Ptr(), Actual: core.Cents(100000).Ptr()},
		{Type: core.Expense, Allocated: core.Cents(80000), Actual: core.Cents(85000).Ptr()},
	}
	rows := []ports.SummaryRow{
		{Entity: core.Entity{ID: "e1", Name: "Sagra", Kind: core.KindEvent, Status: core.StatusConfirmed}, Summary: budget.Summarize("e1", lines)},
		{Entity: core.Entity{ID: "e2", Name: "Archivio", Kind: core.KindProject, Status: core.StatusDraft}, Summary: budget.Summarize("e2", nil)},
	}
	return rows, budget.Rollup([]budget.EntityBudgetSummary{rows[0].Summary, rows[1].Summary})
}

func TestBuildRows(t *testing.T) {
	rows, kpis := sampleRows()
	values := buildRows(rows, kpis)

	if len(values) != 1+len(rows)+6 {
		t.Fatalf("got %d rows", len(values))
	}
	first := values[1]
	if first[0] != "Sagra" || first[3] != -200.0 || first[4] != 200.0 || first[6] != 150.0 || first[7] != 2 {
		t.Errorf("unexpected entity row %v", first)
	}
	if values[2][4] != 0.0 || values[2][7] != 0 {
		t.Errorf("entity without lines should export zeros, got %v", values[2])
	}
	if len(values[3]) != 0 {
		t.Errorf("expected blank separator row, got %v", values[3])
	}
	if got := values[len(values)-1]; got[0] != "Copertura" || got[1] != 0.5 {
		t.Errorf("unexpected coverage row %v", got)
	}
}

func TestNew_RequiresSpreadsheetAndCredentials(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil || !strings.Contains(err.Error(), "spreadsheet") {
		t.Errorf("expected missing spreadsheet error, got %v", err)
	}
	_, err := New(context.Background(), Options{SpreadsheetID: "abc"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("expected missing credentials error, got %v", err)
	}
	_, err = New(context.Background(), Options{SpreadsheetID: "abc", CredentialsFile: "/does/not/exist.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("expected file read error, got %v", err)
	}
}

type fakeSheetsAPI struct {
	mu      sync.Mutex
	titles  []string
	calls   []string
	written [][]any
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "get")
		var sheets []map[string]any
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "batchUpdate")
		_, _ = io.WriteString(w, `{}`)
	case strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.written = body.Values
		_, _ = io.WriteString(w, `{}`)
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, api *fakeSheetsAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-id",
		SheetName:     "Budget",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithoutAuthentication(),
			goption.WithHTTPClient(srv.Client()),
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestExportSummaries_CreatesMissingSheet(t *testing.T) {
	api := &fakeSheetsAPI{titles: []string{"2024 Budget"}}
	c := newTestClient(t, api)
	rows, kpis := sampleRows()

	ref, err := c.ExportSummaries(context.Background(), 2025, rows, kpis)
	if err != nil {
		t.Fatalf("ExportSummaries: %v", err)
	}
	if ref != "2025 Budget!A1:H9" {
		t.Errorf("ref = %q", ref)
	}
	if got := strings.Join(api.calls, ","); got != "get,batchUpdate,clear,update" {
		t.Errorf("calls = %s", got)
	}
	if len(api.written) != 9 || api.written[1][0] != "Sagra" {
		t.Errorf("unexpected written values %v", api.written)
	}
}

func TestExportSummaries_ReusesExistingSheet(t *testing.T) {
	api := &fakeSheetsAPI{titles: []string{"2025 Budget"}}
	c := newTestClient(t, api)
	rows, kpis := sampleRows()

	if _, err := c.ExportSummaries(context.Background(), 2025, rows, kpis); err != nil {
		t.Fatalf("ExportSummaries: %v", err)
	}
	if got := strings.Join(api.calls, ","); got != "get,clear,update" {
		t.Errorf("calls = %s", got)
	}
}

func TestExportSummaries_NilService(t *testing.T) {
	if _, err := (&Client{}).ExportSummaries(context.Background(), 2025, nil, budget.DashboardKPIs{}); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
}
