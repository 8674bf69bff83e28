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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheetsAPI answers the handful of Sheets endpoints the client uses.
type fakeSheetsAPI struct {
	mu      sync.Mutex
	titles  []string
	calls   []string
	written *gsheet.ValueRange
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/spreadsheets/sheet-id"):
		f.calls = append(f.calls, "get")
		sheets := make([]map[string]any, 0, len(f.titles))
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-id", "sheets": sheets})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "add")
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Requests) == 1 && req.Requests[0].AddSheet != nil {
			f.titles = append(f.titles, req.Requests[0].AddSheet.Properties.Title)
		}
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		f.calls = append(f.calls, "update")
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.written = &vr
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, api *fakeSheetsAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewWithService(svc, "sheet-id")
}

func TestWriteTable_CreatesMissingSheetOnce(t *testing.T) {
	api := &fakeSheetsAPI{titles: []string{"Sheet1"}}
	c := newTestClient(t, api)
	ctx := context.Background()

	header := []string{"month", "isPaid"}
	rows := [][]string{{"4", "true"}, {"5", "false"}}
	require.NoError(t, c.WriteTable(ctx, "2025 Payroll", header, rows))
	require.NoError(t, c.WriteTable(ctx, "2025 Payroll", header, rows[:1]))

	assert.Equal(t, []string{"get", "add", "clear", "update", "clear", "update"}, api.calls)
	assert.Contains(t, api.titles, "2025 Payroll")
	require.NotNil(t, api.written)
	require.Len(t, api.written.Values, 2)
	assert.Equal(t, []any{"month", "isPaid"}, api.written.Values[0])
}

func TestWriteTable_ExistingSheet(t *testing.T) {
	api := &fakeSheetsAPI{titles: []string{"2025 Cash"}}
	c := newTestClient(t, api)

	require.NoError(t, c.WriteTable(context.Background(), "2025 Cash", []string{"category"}, nil))
	assert.Equal(t, []string{"get", "clear", "update"}, api.calls)
}

func TestWriteTable_Errors(t *testing.T) {
	c := &Client{}
	err := c.WriteTable(context.Background(), "x", nil, nil)
	assert.EqualError(t, err, "sheets service not initialized")

	c = newTestClient(t, &fakeSheetsAPI{})
	assert.Error(t, c.WriteTable(context.Background(), "  ", nil, nil))
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.EqualError(t, err, "missing GOOGLE_SPREADSHEET_ID")
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'2025 Cash'", quoteSheet("2025 Cash"))
	assert.Equal(t, "'Bob''s'", quoteSheet("Bob's"))
}
