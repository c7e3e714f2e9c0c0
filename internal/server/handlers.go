package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/risklens/internal/common"
	"github.com/bobmcallan/risklens/internal/services/report"
)

// handleHealth responds to GET/HEAD /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds to GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleSearch handles GET /api/search?q=<query>&limit=<n>.
// An empty query browses the head of the index.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("q")
	limit := s.app.Config.SearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results := s.app.IndexService.Search(r.Context(), query, limit)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// routeStocks dispatches /api/stocks/{code}/* to the appropriate handler.
func (s *Server) routeStocks(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/stocks/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "stock code is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	code := parts[0]
	action := ""
	if len(parts) == 2 {
		action = strings.Trim(parts[1], "/")
	}

	switch action {
	case "report":
		s.handleStockReport(w, r, code)
	case "peers":
		s.handleStockPeers(w, r, code)
	default:
		WriteError(w, http.StatusNotFound, "unknown stock resource: "+action)
	}
}

// handleStockReport handles GET /api/stocks/{code}/report.
func (s *Server) handleStockReport(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rep, err := s.app.ReportService.BuildReport(r.Context(), code)
	if err != nil {
		if errors.Is(err, report.ErrMarketUnavailable) {
			WriteError(w, http.StatusBadGateway, "market data unavailable, check vendor connectivity")
			return
		}
		s.logger.Error().Str("code", code).Err(err).Msg("Failed to build risk report")
		WriteError(w, http.StatusInternalServerError, "failed to build risk report")
		return
	}

	WriteJSON(w, http.StatusOK, rep)
}

// handleStockPeers handles GET /api/stocks/{code}/peers?industry=<tag>&limit=<n>.
func (s *Server) handleStockPeers(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	industry := r.URL.Query().Get("industry")
	if industry == "" {
		WriteError(w, http.StatusBadRequest, "industry query parameter is required")
		return
	}
	limit := report.DefaultPeerLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	peers := s.app.IndexService.PeersByIndustry(r.Context(), industry, code, limit)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"code":  code,
		"count": len(peers),
		"peers": peers,
	})
}

// handleIndexInvalidate handles POST /api/admin/stock-index/invalidate.
func (s *Server) handleIndexInvalidate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	s.app.IndexService.Invalidate()
	s.logger.Info().Msg("Stock index cache invalidated")
	WriteJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}
