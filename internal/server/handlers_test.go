package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bobmcallan/risklens/internal/app"
	"github.com/bobmcallan/risklens/internal/common"
	"github.com/bobmcallan/risklens/internal/models"
	"github.com/bobmcallan/risklens/internal/services/report"
)

// mockIndex implements interfaces.IndexService
type mockIndex struct {
	results     []models.SymbolRecord
	peers       []models.SymbolRecord
	gotQuery    string
	gotLimit    int
	invalidated bool
}

func (m *mockIndex) LoadFullIndex(ctx context.Context) []models.SymbolRecord { return m.results }

func (m *mockIndex) Search(ctx context.Context, query string, limit int) []models.SymbolRecord {
	m.gotQuery = query
	m.gotLimit = limit
	return m.results
}

func (m *mockIndex) PeersByIndustry(ctx context.Context, industry, excludeCode string, limit int) []models.SymbolRecord {
	return m.peers
}

func (m *mockIndex) Invalidate() { m.invalidated = true }

// mockReport implements interfaces.ReportService
type mockReport struct {
	report *models.RiskReport
	err    error
}

func (m *mockReport) BuildReport(ctx context.Context, code string) (*models.RiskReport, error) {
	return m.report, m.err
}

func newTestServer(index *mockIndex, rep *mockReport) *Server {
	a := &app.App{
		Config:        common.NewDefaultConfig(),
		Logger:        common.NewSilentLogger(),
		IndexService:  index,
		ReportService: rep,
	}
	return NewServer(a)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&mockIndex{}, &mockReport{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestHandleSearch(t *testing.T) {
	index := &mockIndex{results: []models.SymbolRecord{
		models.NewSymbolRecord("600519", "贵州茅台", "酿酒行业"),
	}}
	srv := newTestServer(index, &mockReport{})

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=茅台&limit=5", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if index.gotQuery != "茅台" || index.gotLimit != 5 {
		t.Errorf("search called with %q / %d", index.gotQuery, index.gotLimit)
	}

	var body struct {
		Query   string                `json:"query"`
		Count   int                   `json:"count"`
		Results []models.SymbolRecord `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 1 || body.Results[0].Symbol != "600519" {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleSearch_DefaultLimit(t *testing.T) {
	index := &mockIndex{}
	srv := newTestServer(index, &mockReport{})

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=abc", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if index.gotLimit != common.NewDefaultConfig().SearchLimit {
		t.Errorf("limit = %d, want configured default", index.gotLimit)
	}
}

func TestHandleSearch_BadLimit(t *testing.T) {
	srv := newTestServer(&mockIndex{}, &mockReport{})

	for _, raw := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/search?q=x&limit="+raw, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%q: status = %d, want 400", raw, rec.Code)
		}
	}
}

func TestHandleStockReport(t *testing.T) {
	rep := &mockReport{report: &models.RiskReport{
		Code: "600519",
		Name: "贵州茅台",
		Assessment: &models.RiskAssessment{
			HasRegulatoryRisk: true,
		},
	}}
	srv := newTestServer(&mockIndex{}, rep)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/600519/report", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var body models.RiskReport
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "600519" || body.Name != "贵州茅台" {
		t.Errorf("report = %+v", body)
	}
	if body.Assessment == nil || !body.Assessment.HasRegulatoryRisk {
		t.Error("assessment lost in transit")
	}
}

func TestHandleStockReport_MarketUnavailable(t *testing.T) {
	srv := newTestServer(&mockIndex{}, &mockReport{err: report.ErrMarketUnavailable})

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/600519/report", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHandleStockPeers(t *testing.T) {
	index := &mockIndex{peers: []models.SymbolRecord{
		models.NewSymbolRecord("000858", "五粮液", "酿酒行业"),
	}}
	srv := newTestServer(index, &mockReport{})

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/600519/peers?industry=酿酒行业", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Code  string                `json:"code"`
		Count int                   `json:"count"`
		Peers []models.SymbolRecord `json:"peers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "600519" || body.Count != 1 || body.Peers[0].Symbol != "000858" {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleStockPeers_MissingIndustry(t *testing.T) {
	srv := newTestServer(&mockIndex{}, &mockReport{})

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/600519/peers", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRouteStocks_UnknownAction(t *testing.T) {
	srv := newTestServer(&mockIndex{}, &mockReport{})

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/600519/chart", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleIndexInvalidate(t *testing.T) {
	index := &mockIndex{}
	srv := newTestServer(index, &mockReport{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/stock-index/invalidate", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !index.invalidated {
		t.Error("Invalidate not called")
	}

	// Wrong method rejected
	req = httptest.NewRequest(http.MethodGet, "/api/admin/stock-index/invalidate", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&mockIndex{}, &mockReport{})

	req := httptest.NewRequest(http.MethodPost, "/api/search", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(&mockIndex{}, &mockReport{})

	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
