package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/store"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	store      *store.Memory
	cache      *MemoryCache
	dispatcher *finance.Dispatcher
	handler    http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	n := 0
	engine := &finance.Engine{
		Today: func() date.Date { return date.New(2026, 1, 15) },
		NewID: func() string { n++; return fmt.Sprintf("id-%d", n) },
	}
	f := &fixture{store: store.NewMemory(), cache: NewMemoryCache()}
	f.dispatcher = finance.NewDispatcher(engine, engine.Normalize(nil), store.Hook(f.store), Invalidate(f.cache))
	t.Cleanup(f.dispatcher.Close)
	srv := New(engine, f.dispatcher, f.store, f.cache, Options{Currency: "USD", CORSOrigins: []string{"http://localhost:5173"}})
	srv.now = func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) }
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "GET", "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"cycle":"2026-01"`) {
		t.Errorf("GET /health = %d %s", w.Code, w.Body)
	}
}

func TestPostCommand(t *testing.T) {
	f := newFixture(t)
	before := len(f.dispatcher.State().Transactions)
	w := f.do(t, "POST", "/api/commands", `{"type":"ADD_TRANSACTION","payload":{"type":"income","amount":2500,"toAccount":"acc-1","categoryId":"cat-salary","date":"2026-01-14"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/commands = %d %s", w.Code, w.Body)
	}
	var resp struct {
		Changed bool           `json:"changed"`
		State   *finance.State `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Changed || len(resp.State.Transactions) != before+1 {
		t.Errorf("response = %+v", resp)
	}
	saved, err := store.LoadState(context.Background(), f.store)
	if err != nil || !strings.Contains(string(saved), `"amount":2500`) {
		t.Errorf("the committed state was not saved: %v", err)
	}

	// commands without effect are accepted.
	w = f.do(t, "POST", "/api/commands", `{"type":"DELETE_TRANSACTION","payload":{"id":"nope"}}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"changed":false`) {
		t.Errorf("no-op command = %d %s", w.Code, w.Body)
	}
}

func TestPostCommand_Invalid(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{`{"type":"DROP_TABLE"}`, `not json`, `{"type":"ADD_ACCOUNT","payload":[1]}`} {
		if w := f.do(t, "POST", "/api/commands", body); w.Code != http.StatusBadRequest {
			t.Errorf("POST %s = %d, want 400", body, w.Code)
		}
	}
}

func TestGetCycles(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "GET", "/api/cycles?n=1&cycle=2026-02-10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/cycles = %d %s", w.Code, w.Body)
	}
	var cycles []struct{ ID, From, To string }
	if err := json.Unmarshal(w.Body.Bytes(), &cycles); err != nil {
		t.Fatal(err)
	}
	if len(cycles) != 3 || cycles[0].ID != "2026-01" || cycles[2].ID != "2026-03" || cycles[1].From != "2026-01-27" || cycles[1].To != "2026-02-26" {
		t.Errorf("cycles = %+v", cycles)
	}
	for _, path := range []string{"/api/cycles?n=-1", "/api/cycles?n=x", "/api/cycles?cycle=soon"} {
		if w := f.do(t, "GET", path, ""); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", path, w.Code)
		}
	}
}

func TestSelectors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		path string
		want string
	}{
		{"/api/transactions", `"title":"Yakiniku Like"`},
		{"/api/transactions?cycle=2025-12", `[]`},
		{"/api/accounts?cycle=all", `"name":"BK Bank"`},
		{"/api/budget?cycle=2026-01", `"categoryId":"cat-food-and-drinks"`},
		{"/api/state", `"planningCosts"`},
	}
	for _, tt := range tests {
		w := f.do(t, "GET", tt.path, "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), tt.want) {
			t.Errorf("GET %s = %d, want a body containing %s, got %s", tt.path, w.Code, tt.want, w.Body)
		}
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := f.do(t, "GET", "/api/dashboard?format=html", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("GET /api/dashboard = %d %s", w.Code, w.Header())
	}
	if body := w.Body.String(); !strings.Contains(body, "<h1>Dashboard for 2026-01") || !strings.Contains(body, "<table>") {
		t.Errorf("html dashboard = %s", body)
	}
	if _, ok := f.cache.Get(ctx, "dashboard:2026-01:html"); !ok {
		t.Errorf("the rendered view was not cached")
	}

	w = f.do(t, "GET", "/api/dashboard?cycle=2026-01", "")
	var kpis finance.KPIs
	if err := json.Unmarshal(w.Body.Bytes(), &kpis); err != nil {
		t.Fatalf("json dashboard: %v", err)
	}
	if kpis.Cycle != "2026-01" || !kpis.CashFlow.Outflow.IsPositive() {
		t.Errorf("kpis = %+v", kpis)
	}

	// a commit invalidates the cache.
	f.do(t, "POST", "/api/commands", `{"type":"ADD_ACCOUNT","payload":{"name":"Savings"}}`)
	if _, ok := f.cache.Get(ctx, "dashboard:2026-01:html"); ok {
		t.Errorf("the cache was not flushed by the commit")
	}

	if w := f.do(t, "GET", "/api/dashboard?format=pdf", ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown format = %d, want 400", w.Code)
	}
}

func TestExportImport(t *testing.T) {
	f := newFixture(t)
	f.do(t, "POST", "/api/commands", `{"type":"ADD_ACCOUNT","payload":{"name":"Savings","balance":10}}`)

	w := f.do(t, "GET", "/api/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/export = %d %s", w.Code, w.Body)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="finance-export-2026-01-15.json"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	envelope := w.Body.String()

	if w := f.do(t, "POST", "/api/import", `{"version":"one","state":{}}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid import = %d, want 400", w.Code)
	}

	w = f.do(t, "POST", "/api/import", `{"version":1,"state":{"accounts":[{"id":"a","name":"Only","balance":5}]}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/import = %d %s", w.Code, w.Body)
	}
	if s := f.dispatcher.State(); len(s.Accounts) != 1 || s.Account("a") == nil {
		t.Errorf("imported state = %+v", s.Accounts)
	}
	backup, err := f.store.Get(context.Background(), store.BackupKey)
	if err != nil || !strings.Contains(string(backup), `"Savings"`) {
		t.Errorf("the previous state was not backed up: %v", err)
	}

	// importing the export restores the previous state.
	if w := f.do(t, "POST", "/api/import", envelope); w.Code != http.StatusOK {
		t.Fatalf("re-import = %d %s", w.Code, w.Body)
	}
	if f.dispatcher.State().Account("a") != nil {
		t.Errorf("the export was not restored")
	}
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest("OPTIONS", "/api/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestMemoryCache_Expires(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	c.Set(context.Background(), "k", "v", time.Minute)
	if v, ok := c.Get(context.Background(), "k"); !ok || v != "v" {
		t.Errorf("Get() = %q, %v", v, ok)
	}
	now = now.Add(time.Minute)
	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Errorf("the entry must expire after its ttl")
	}
}

func TestImport_ClosedDispatcher(t *testing.T) {
	f := newFixture(t)
	f.do(t, "POST", "/api/commands", `{"type":"ADD_ACCOUNT","payload":{"name":"Savings","balance":10}}`)
	before, err := f.store.Get(context.Background(), store.StateKey)
	if err != nil {
		t.Fatal(err)
	}

	f.dispatcher.Close()
	w := f.do(t, "POST", "/api/import", `{"version":1,"state":{"accounts":[{"id":"a","name":"Only","balance":5}]}}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("POST /api/import = %d, want 503", w.Code)
	}
	// the store keeps the state the dispatcher holds.
	after, err := f.store.Get(context.Background(), store.StateKey)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(before) {
		t.Errorf("the store was written by an import that was not applied")
	}
}
