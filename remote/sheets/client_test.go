package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gridkv/gridkv/remote"
)

// newTestClient creates a client pointed at a local test server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := remote.TableConfig{
		SpreadsheetID: "doc123",
		Sheet:         "Sheet1",
		TimeoutSecond: 5,
		RetryCount:    3,
	}
	client, err := New(config, server.Client(), nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	client.baseURL = server.URL
	return client
}

// TestNewValidation tests that incomplete configurations are rejected
func TestNewValidation(t *testing.T) {
	if _, err := New(remote.TableConfig{Sheet: "Sheet1"}, nil, nil); err == nil {
		t.Errorf("Expected error for missing spreadsheet id")
	}
	if _, err := New(remote.TableConfig{SpreadsheetID: "doc123"}, nil, nil); err == nil {
		t.Errorf("Expected error for missing sheet title")
	}
}

// TestFetchAll tests the full-table fetch including non-string cells
func TestFetchAll(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s, want GET", r.Method)
		}
		if want := "/doc123/values/'Sheet1'"; r.URL.Path != want {
			t.Errorf("Path = %q, want %q", r.URL.Path, want)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"values": [][]any{
				{"key", "value"},
				{"a", "1"},
				{"n", 42},
				{"empty", nil},
			},
		})
	}))

	rows, err := client.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	want := [][]string{
		{"key", "value"},
		{"a", "1"},
		{"n", "42"},
		{"empty", ""},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("FetchAll = %v, want %v", rows, want)
	}
}

// TestAppendRow tests the append request shape
func TestAppendRow(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if want := "/doc123/values/'Sheet1':append"; r.URL.Path != want {
			t.Errorf("Path = %q, want %q", r.URL.Path, want)
		}
		query := r.URL.Query()
		if query.Get("valueInputOption") != "RAW" || query.Get("insertDataOption") != "INSERT_ROWS" {
			t.Errorf("Query = %v, want RAW input inserted as rows", query)
		}

		var body struct {
			Values [][]string `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		if !reflect.DeepEqual(body.Values, [][]string{{"k", `{"x":1}`}}) {
			t.Errorf("Body values = %v", body.Values)
		}

		_, _ = w.Write([]byte("{}"))
	}))

	if err := client.AppendRow(context.Background(), []string{"k", `{"x":1}`}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
}

// TestUpdateCell tests A1 addressing of single-cell updates
func TestUpdateCell(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Method = %s, want PUT", r.Method)
		}
		if want := "/doc123/values/'Sheet1'!B3"; r.URL.Path != want {
			t.Errorf("Path = %q, want %q", r.URL.Path, want)
		}
		if r.URL.Query().Get("valueInputOption") != "RAW" {
			t.Errorf("Query = %v, want RAW input", r.URL.Query())
		}

		var body struct {
			Values [][]string `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if !reflect.DeepEqual(body.Values, [][]string{{"updated"}}) {
			t.Errorf("Body values = %v", body.Values)
		}

		_, _ = w.Write([]byte("{}"))
	}))

	if err := client.UpdateCell(context.Background(), 3, 1, "updated"); err != nil {
		t.Fatalf("UpdateCell failed: %v", err)
	}

	if err := client.UpdateCell(context.Background(), 0, 0, "x"); err == nil {
		t.Errorf("Expected error for row 0")
	}
}

// TestDeleteRows tests sheet id resolution and the batchUpdate request
func TestDeleteRows(t *testing.T) {
	metaCalls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/doc123":
			metaCalls++
			if r.URL.Query().Get("fields") != "sheets.properties" {
				t.Errorf("Meta query = %v", r.URL.Query())
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"sheets": []map[string]any{
					{"properties": map[string]any{"sheetId": 77, "title": "Other"}},
					{"properties": map[string]any{"sheetId": 42, "title": "Sheet1"}},
				},
			})

		case r.Method == http.MethodPost && r.URL.Path == "/doc123:batchUpdate":
			var body struct {
				Requests []struct {
					DeleteDimension struct {
						Range struct {
							SheetID    int64  `json:"sheetId"`
							Dimension  string `json:"dimension"`
							StartIndex int    `json:"startIndex"`
							EndIndex   int    `json:"endIndex"`
						} `json:"range"`
					} `json:"deleteDimension"`
				} `json:"requests"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("Failed to decode body: %v", err)
			}
			if len(body.Requests) != 1 {
				t.Fatalf("Requests = %d, want 1", len(body.Requests))
			}
			rng := body.Requests[0].DeleteDimension.Range
			if rng.SheetID != 42 || rng.Dimension != "ROWS" || rng.StartIndex != 1 || rng.EndIndex != 2 {
				t.Errorf("Range = %+v, want sheet 42 rows [1,2)", rng)
			}
			_, _ = w.Write([]byte("{}"))

		default:
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	// deleting remote row 2 translates to 0-based [1,2)
	if err := client.DeleteRows(context.Background(), 2, 3); err != nil {
		t.Fatalf("DeleteRows failed: %v", err)
	}

	// the sheet id is cached across deletions
	if err := client.DeleteRows(context.Background(), 2, 3); err != nil {
		t.Fatalf("Second DeleteRows failed: %v", err)
	}
	if metaCalls != 1 {
		t.Errorf("Metadata fetched %d times, want 1", metaCalls)
	}

	// an empty range needs no request
	if err := client.DeleteRows(context.Background(), 2, 2); err != nil {
		t.Errorf("DeleteRows with empty range = %v, want nil", err)
	}
	if err := client.DeleteRows(context.Background(), 3, 2); err == nil {
		t.Errorf("Expected error for inverted range")
	}
}

// TestDeleteRowsUnknownTab tests the error for a missing tab title
func TestDeleteRowsUnknownTab(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sheets": []map[string]any{
				{"properties": map[string]any{"sheetId": 1, "title": "Other"}},
			},
		})
	}))

	err := client.DeleteRows(context.Background(), 2, 3)
	if err == nil || !strings.Contains(err.Error(), "no tab named") {
		t.Errorf("DeleteRows = %v, want missing-tab error", err)
	}
}

// TestRetry tests that rate limits are retried and client errors are not
func TestRetry(t *testing.T) {
	attempts := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"values": [][]any{{"key", "value"}}})
	}))

	if _, err := client.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed despite retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Attempts = %d, want 3", attempts)
	}

	// a client error fails immediately
	attempts = 0
	client = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"no access","status":"PERMISSION_DENIED"}}`))
	}))

	_, err := client.FetchAll(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("FetchAll = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Status != "PERMISSION_DENIED" || apiErr.Message != "no access" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if attempts != 1 {
		t.Errorf("Attempts = %d, want 1 for a client error", attempts)
	}
}

// TestRetryExhausted tests that persistent server failures surface
func TestRetryExhausted(t *testing.T) {
	attempts := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.FetchAll(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("FetchAll = %v, want the final 500", err)
	}
	if attempts != 3 {
		t.Errorf("Attempts = %d, want the configured 3", attempts)
	}
}

// TestColName tests the column letter arithmetic
func TestColName(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, tt := range tests {
		if got := colName(tt.col); got != tt.want {
			t.Errorf("colName(%d) = %q, want %q", tt.col, got, tt.want)
		}
	}
}
