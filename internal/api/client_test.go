package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/tally/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, nil), srv
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	c.Tokens().Seed("tok-123")

	if _, err := c.ListBudgets(context.Background()); err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if v := got.Get("Authorization"); v != "Bearer tok-123" {
		t.Errorf("Authorization = %q", v)
	}
	if v := got.Get("X-Request-ID"); len(v) != 36 {
		t.Errorf("X-Request-ID = %q, want a uuid", v)
	}
	if v := got.Get("User-Agent"); v != userAgent {
		t.Errorf("User-Agent = %q", v)
	}
	if v := got.Get("Content-Type"); v != "" {
		t.Errorf("GET should not send Content-Type, got %q", v)
	}
}

func TestNoTokenNoAuthorization(t *testing.T) {
	var auth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})
	if _, err := c.ListBudgets(context.Background()); err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want empty", auth)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"detail":"Not authenticated"}`, ErrUnauthorized},
		{http.StatusForbidden, `{"detail":"nope"}`, ErrForbidden},
		{http.StatusNotFound, `{"detail":"Budget not found"}`, ErrNotFound},
		{http.StatusTooManyRequests, ``, ErrRateLimited},
	}
	for _, tt := range tests {
		c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		})
		_, err := c.GetBudget(context.Background(), 1)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
	}
}

func TestUnauthorizedClearsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	tokens := NewTokenStore(path)
	if err := tokens.Set("stale"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, tokens)
	if _, err := c.ListBudgets(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if tokens.LoggedIn() {
		t.Error("token still present after 401")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("token file still exists: %v", err)
	}
}

func TestValidationDetail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","income_cents"],"msg":"must be positive"},{"loc":["body","month"],"msg":"out of range"}]}`))
	})
	_, err := c.GetBudget(context.Background(), 1)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d", apiErr.Status)
	}
	want := "income_cents: must be positive; month: out of range"
	if apiErr.Detail != want {
		t.Errorf("Detail = %q, want %q", apiErr.Detail, want)
	}
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"Budget is not balanced"}`, "Budget is not balanced"},
		{`{"detail":[{"msg":"bad"}]}`, "bad"},
		{`plain text`, "plain text"},
		{`{"other":1}`, `{"other":1}`},
	}
	for _, tt := range tests {
		if got := parseDetail([]byte(tt.body)); got != tt.want {
			t.Errorf("parseDetail(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestLoginStoresToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
	})
	if err := c.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := c.Tokens().Get(); got != "abc" {
		t.Errorf("token = %q, want abc", got)
	}
}

func TestLogoutClearsEvenOnFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c.Tokens().Seed("abc")
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if c.Tokens().LoggedIn() {
		t.Error("still logged in")
	}
}

func TestDownloadFilename(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/pdf") {
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="INV-0001.pdf"`)
			_, _ = w.Write([]byte("%PDF-1.4"))
			return
		}
		_, _ = w.Write([]byte("id,amount\n"))
	})

	blob, err := c.InvoicePDF(context.Background(), 7)
	if err != nil {
		t.Fatalf("InvoicePDF: %v", err)
	}
	if blob.Filename != "INV-0001.pdf" {
		t.Errorf("Filename = %q", blob.Filename)
	}
	if string(blob.Body) != "%PDF-1.4" {
		t.Errorf("Body = %q", blob.Body)
	}

	blob, err = c.ExportTransactionsCSV(context.Background(), ExportFilters{})
	if err != nil {
		t.Fatalf("ExportTransactionsCSV: %v", err)
	}
	if blob.Filename == "" {
		t.Error("expected fallback filename")
	}
}

func TestDownloadTimeoutCoversHeadersOnly(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("id,"))
		w.(http.Flusher).Flush()
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("amount\n"))
	})
	c.timeout = 50 * time.Millisecond

	blob, err := c.ExportTransactionsCSV(context.Background(), ExportFilters{})
	if err != nil {
		t.Fatalf("slow body should not time out: %v", err)
	}
	if string(blob.Body) != "id,amount\n" {
		t.Errorf("Body = %q", blob.Body)
	}
}

func TestDownloadHeaderTimeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	c.timeout = 50 * time.Millisecond

	if _, err := c.ExportTransactionsCSV(context.Background(), ExportFilters{}); err == nil {
		t.Fatal("expected a timeout waiting for headers")
	}
}

func TestImportCategoriesMultipart(t *testing.T) {
	var (
		path, fileName, fileBody string
		skip, update             string
	)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		skip = r.FormValue("skip_duplicates")
		update = r.FormValue("update_existing")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer func() { _ = f.Close() }()
		data, _ := io.ReadAll(f)
		fileName, fileBody = hdr.Filename, string(data)
		_, _ = w.Write([]byte(`{"updated_count":2,"errors":[],"success":true}`))
	})

	csv := "name,allocated_cents\nRent,100000\nFood,50000\n"
	res, err := c.ImportCategories(context.Background(), 9, strings.NewReader(csv), "cats.csv",
		ImportOptions{SkipDuplicates: true})
	if err != nil {
		t.Fatalf("ImportCategories: %v", err)
	}
	if path != "/api/budgets/9/categories/import" {
		t.Errorf("path = %q", path)
	}
	if fileName != "cats.csv" || fileBody != csv {
		t.Errorf("file = %q %q", fileName, fileBody)
	}
	if skip != "true" || update != "false" {
		t.Errorf("skip_duplicates = %q, update_existing = %q", skip, update)
	}
	if res.UpdatedCount != 2 || !res.Success {
		t.Errorf("result = %+v", res)
	}
}

func TestCategoryAnalyticsQuery(t *testing.T) {
	var query map[string][]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"most_used":[{"name":"Rent","usage_count":12}],` +
			`"avg_allocations":[{"name":"Rent","avg_allocation":150000.5}],` +
			`"group_totals":[{"group":"Housing","total_allocated":1800000}]}`))
	})

	a, err := c.CategoryAnalytics(context.Background(), AnalyticsQuarter, "Housing")
	if err != nil {
		t.Fatalf("CategoryAnalytics: %v", err)
	}
	if got := query["period"]; len(got) != 1 || got[0] != "quarter" {
		t.Errorf("period = %v", got)
	}
	if got := query["category_group"]; len(got) != 1 || got[0] != "Housing" {
		t.Errorf("category_group = %v", got)
	}
	if len(a.MostUsed) != 1 || a.MostUsed[0].UsageCount != 12 {
		t.Errorf("most_used = %+v", a.MostUsed)
	}
	if len(a.AvgAllocations) != 1 || a.AvgAllocations[0].AvgAllocation != 150000.5 {
		t.Errorf("avg_allocations = %+v", a.AvgAllocations)
	}
	if len(a.GroupTotals) != 1 || a.GroupTotals[0].TotalAllocated != 1800000 {
		t.Errorf("group_totals = %+v", a.GroupTotals)
	}

	if _, err := c.CategoryAnalytics(context.Background(), "", ""); err != nil {
		t.Fatalf("CategoryAnalytics: %v", err)
	}
	if len(query) != 0 {
		t.Errorf("empty filters sent %v", query)
	}
}

func TestFilenameFrom(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "fallback.csv"},
		{`attachment; filename="a.csv"`, "a.csv"},
		{`attachment; filename=b c.csv`, "b c.csv"},
		{`attachment`, "fallback.csv"},
	}
	for _, tt := range tests {
		if got := filenameFrom(tt.header, "fallback.csv"); got != tt.want {
			t.Errorf("filenameFrom(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestSuggestSendsLimit(t *testing.T) {
	var limit string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		limit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`{"suggestions":[{"category_id":4,"category_name":"Groceries","confidence":0.9,"reason":"keyword_match"}]}`))
	})
	got, err := c.SuggestCategories(context.Background(), model.SuggestionRequest{BudgetID: 1, Notes: "whole foods"}, 0)
	if err != nil {
		t.Fatalf("SuggestCategories: %v", err)
	}
	if limit != "3" {
		t.Errorf("limit = %q, want 3", limit)
	}
	if len(got) != 1 || got[0].CategoryName != "Groceries" {
		t.Errorf("suggestions = %+v", got)
	}
}
