package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spreadview/internal/chart"
	"spreadview/internal/domain"
	"spreadview/internal/market"
	"spreadview/internal/spread"
	"spreadview/internal/store"
	"spreadview/internal/ticker"
	"spreadview/internal/upstream"
)

// Requested surface dimensions outside these bounds are clamped; the
// browser drives resizes by re-requesting the chart with new dimensions.
const (
	minSurfaceDim = 64
	maxSurfaceDim = 4096
)

// DashboardServer serves the dashboard HTTP API.
type DashboardServer struct {
	analysis *upstream.Client
	bars     market.BarSource
	claims   *store.ClaimStore
	loc      *time.Location
	log      *slog.Logger

	// Default drawing-surface size when the request specifies none.
	chartWidth  int
	chartHeight int
}

// NewDashboardServer creates a new dashboard HTTP server.
func NewDashboardServer(
	analysis *upstream.Client,
	bars market.BarSource,
	claims *store.ClaimStore,
	chartWidth, chartHeight int,
	loc *time.Location,
	log *slog.Logger,
) *DashboardServer {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardServer{
		analysis:    analysis,
		bars:        bars,
		claims:      claims,
		loc:         loc,
		log:         log,
		chartWidth:  chartWidth,
		chartHeight: chartHeight,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *DashboardServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/spread/{ticker}", s.handleSpread)
	mux.HandleFunc("GET /api/intraday/{ticker}", s.handleIntraday)
	mux.HandleFunc("GET /api/chart/{ticker}", s.handleChart)
	mux.HandleFunc("GET /api/claims", s.handleListClaims)
	mux.HandleFunc("POST /api/claims", s.handleCreateClaim)
	mux.HandleFunc("GET /api/claims/{id}", s.handleGetClaim)
	mux.HandleFunc("DELETE /api/claims/{id}", s.handleDeleteClaim)
}

// Handler returns an http.Handler with CORS middleware.
func (s *DashboardServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// respondError maps the error taxonomy to HTTP statuses, always naming the
// ticker so failures are reproducible from the message alone.
func (s *DashboardServer) respondError(w http.ResponseWriter, symbol string, err error) {
	var re *domain.ResolutionError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("no qualifying spread found for %s", symbol))
	case errors.As(err, &re):
		writeError(w, http.StatusUnprocessableEntity, re.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			s.log.Error("upstream fetch failed", "symbol", symbol, "error", err)
			writeError(w, http.StatusBadGateway, fe.Error())
			return
		}
		s.log.Error("request failed", "symbol", symbol, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// requestLocation exposes the request URL to the resolver as an explicit
// navigation location.
func requestLocation(r *http.Request) ticker.Location {
	return ticker.Location{Path: r.URL.Path, Query: r.URL.Query()}
}

func (s *DashboardServer) handleSpread(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("ticker"))
	trend := r.URL.Query().Get("trend")

	raw, err := s.analysis.GetSpreadAnalysis(r.Context(), symbol, trend)
	if err != nil {
		s.respondError(w, symbol, err)
		return
	}

	analysis, err := spread.Normalize(spread.Classify(raw), requestLocation(r))
	if err != nil {
		s.respondError(w, symbol, err)
		return
	}

	qty := spread.ClampQuantity(r.URL.Query().Get("qty"), 1)
	writeJSON(w, SpreadResponse{
		Analysis:        convertAnalysis(analysis),
		Quantity:        qty,
		TotalInvestment: spread.TotalInvestment(analysis.MaxRisk, qty),
		IncomePotential: spread.IncomePotential(analysis.NetCredit, qty),
	})
}

func (s *DashboardServer) handleIntraday(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("ticker"))
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "5m"
	}

	series, err := s.bars.Intraday(r.Context(), symbol, interval, queryFloat(r, "sell_strike"), queryFloat(r, "buy_strike"))
	if err != nil {
		s.respondError(w, symbol, err)
		return
	}
	writeJSON(w, series)
}

func (s *DashboardServer) handleChart(w http.ResponseWriter, r *http.Request) {
	// The chart is addressed as /api/chart/{ticker}.png; the wildcard
	// captures the whole segment.
	symbol := strings.ToUpper(strings.TrimSuffix(r.PathValue("ticker"), ".png"))
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "5m"
	}

	series, err := s.bars.Intraday(r.Context(), symbol, interval, queryFloat(r, "sell_strike"), queryFloat(r, "buy_strike"))
	if err != nil {
		s.respondError(w, symbol, err)
		return
	}

	width := clampDim(queryInt(r, "width"), s.chartWidth)
	height := clampDim(queryInt(r, "height"), s.chartHeight)

	renderer := chart.NewRenderer(width, height, s.loc)
	png, err := renderer.RenderPNG(series.Points, series.Benchmarks)
	if err != nil {
		s.respondError(w, symbol, err)
		return
	}

	// A stale request is one whose client has gone; do not write a body
	// the dead connection will discard half-way.
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func (s *DashboardServer) handleListClaims(w http.ResponseWriter, r *http.Request) {
	records, err := s.claims.ListClaims(r.Context())
	if err != nil {
		s.respondError(w, "", err)
		return
	}

	claims := make([]ClaimJSON, 0, len(records))
	for _, rec := range records {
		claims = append(claims, s.convertClaim(rec, requestLocation(r)))
	}
	writeJSON(w, ClaimsResponse{Claims: claims})
}

func (s *DashboardServer) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid claim body: "+err.Error())
		return
	}

	symbol, ok := ticker.Validate(req.Symbol)
	if !ok {
		symbol, ok = ticker.Validate(req.SpreadData.Ticker)
	}
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("claim symbol %q is not a valid ticker", req.Symbol))
		return
	}

	data, err := json.Marshal(spread.SavedRecordFromAnalysis(req.SpreadData))
	if err != nil {
		writeError(w, http.StatusBadRequest, "encoding spread data: "+err.Error())
		return
	}

	rec := &store.ClaimRecord{Symbol: symbol, SpreadData: string(data)}
	if err := s.claims.SaveClaim(r.Context(), rec); err != nil {
		s.respondError(w, symbol, err)
		return
	}

	s.log.Info("spread claimed", "id", rec.ID, "symbol", symbol)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, s.convertClaim(*rec, requestLocation(r)))
}

func (s *DashboardServer) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	rec, err := s.claims.GetClaim(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r.PathValue("id"), err)
		return
	}
	writeJSON(w, s.convertClaim(*rec, requestLocation(r)))
}

func (s *DashboardServer) handleDeleteClaim(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.claims.DeleteClaim(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("claim %s not found", id))
			return
		}
		s.respondError(w, id, err)
		return
	}
	s.log.Info("claim deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// convertClaim normalizes one journal entry for the response. Claims with
// unusable spread data still list, with zero-valued analysis fields.
func (s *DashboardServer) convertClaim(rec store.ClaimRecord, loc ticker.Location) ClaimJSON {
	saved := &spread.SavedClaim{
		ID:         rec.ID,
		Symbol:     rec.Symbol,
		SpreadData: json.RawMessage(rec.SpreadData),
		ClaimedAt:  rec.ClaimedAt,
	}

	out := ClaimJSON{ID: rec.ID, Symbol: rec.Symbol, ClaimedAt: rec.ClaimedAt}
	analysis, err := spread.Normalize(spread.Payload{Kind: spread.KindSaved, Saved: saved}, loc)
	if err != nil {
		s.log.Warn("claim failed to normalize", "id", rec.ID, "symbol", rec.Symbol, "error", err)
		return out
	}
	out.Analysis = convertAnalysis(analysis)
	return out
}

func queryFloat(r *http.Request, key string) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	if err != nil {
		return 0
	}
	return v
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

func clampDim(requested, fallback int) int {
	if requested == 0 {
		return fallback
	}
	if requested < minSurfaceDim {
		return minSurfaceDim
	}
	if requested > maxSurfaceDim {
		return maxSurfaceDim
	}
	return requested
}
