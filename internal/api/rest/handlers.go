package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fortuna/rinkstats/internal/ingest"
	"github.com/fortuna/rinkstats/internal/parser"
	"github.com/fortuna/rinkstats/internal/store"
)

// MaxReportBytes caps the size of a posted report.
const MaxReportBytes = 10 << 20

// SeasonStore is the read side of the season repository
type SeasonStore interface {
	List(ctx context.Context) ([]*store.SeasonSummary, error)
	GetByLabel(ctx context.Context, label string) (*parser.SeasonRecord, error)
	Find(ctx context.Context, year int, season parser.SeasonName, level parser.LeagueTier) (*parser.SeasonRecord, error)
}

// HealthChecker reports whether a dependency is reachable. store.Database
// and cache.RedisCache implement it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type namedCheck struct {
	name  string
	check HealthChecker
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	seasons  SeasonStore
	ingester *ingest.Ingester
	opts     parser.Options
	version  string
	checks   []namedCheck
}

// NewHandler creates a new handler. seasons may be nil, in which case the
// season routes answer 503. Without an ingester, posted reports are parsed
// but not cached, stored or published.
func NewHandler(seasons SeasonStore, ingester *ingest.Ingester, opts parser.Options, version string) *Handler {
	return &Handler{
		seasons:  seasons,
		ingester: ingester,
		opts:     opts,
		version:  version,
	}
}

// AddHealthCheck makes /health report on a dependency
func (h *Handler) AddHealthCheck(name string, check HealthChecker) {
	h.checks = append(h.checks, namedCheck{name: name, check: check})
}

// HealthCheck handles health check requests. Any failing dependency turns
// the answer into a 503 with status "degraded".
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "rinkstats",
		"version": h.version,
	}
	status := http.StatusOK

	if len(h.checks) > 0 {
		results := make(map[string]string, len(h.checks))
		for _, c := range h.checks {
			if err := c.check.HealthCheck(r.Context()); err != nil {
				results[c.name] = err.Error()
				status = http.StatusServiceUnavailable
				response["status"] = "degraded"
				continue
			}
			results[c.name] = "ok"
		}
		response["checks"] = results
	}

	respondJSON(w, status, response)
}

// ParseReport handles POST /api/v1/parse. The body is report text, or a
// saved page when sent as text/html. strategy and workers override the
// configured parser options.
func (h *Handler) ParseReport(w http.ResponseWriter, r *http.Request) {
	opts := h.opts
	query := r.URL.Query()

	if s := query.Get("strategy"); s != "" {
		strategy, err := parser.ParseStrategy(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid strategy", err)
			return
		}
		opts.Strategy = strategy
	}
	if s := query.Get("workers"); s != "" {
		workers, err := strconv.Atoi(s)
		if err != nil || workers < 1 || workers > 64 {
			respondError(w, http.StatusBadRequest, "Invalid workers (1-64)", err)
			return
		}
		opts.Workers = workers
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxReportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Report too large", err)
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	text := string(body)
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "text/html" {
		if text, err = ingest.TextFromHTML(strings.NewReader(text)); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid HTML", err)
			return
		}
	}

	var seasons parser.Seasons
	if h.ingester != nil {
		seasons, err = h.ingester.Ingest(r.Context(), ingest.TextSource{Label: "api", Text: text}, opts)
	} else {
		seasons, err = parser.New(opts).ParseContext(r.Context(), text)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to parse report", err)
		return
	}

	respondJSON(w, http.StatusOK, seasons)
}

// ListSeasons handles GET /api/v1/seasons
func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	summaries, err := h.seasons.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch seasons", err)
		return
	}
	if summaries == nil {
		summaries = []*store.SeasonSummary{}
	}

	respondJSON(w, http.StatusOK, summaries)
}

// GetSeason handles GET /api/v1/seasons/{label}
func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	label := mux.Vars(r)["label"]

	rec, err := h.seasons.GetByLabel(r.Context(), label)
	h.respondSeason(w, rec, err, fmt.Sprintf("season %q", label))
}

// FindSeason handles GET /api/v1/seasons/{year}/{season}/{level}, e.g.
// /api/v1/seasons/2023/fall/c
func (h *Handler) FindSeason(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	vars := mux.Vars(r)

	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	season, ok := parser.ParseSeasonName(vars["season"])
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid season (spring, summer, fall, fall-winter)", nil)
		return
	}
	level, ok := parser.ParseLeagueTier(vars["level"])
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid level (c, rec)", nil)
		return
	}

	rec, err := h.seasons.Find(r.Context(), year, season, level)
	h.respondSeason(w, rec, err, fmt.Sprintf("%s %d %s", season, year, level))
}

func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.seasons == nil {
		respondError(w, http.StatusServiceUnavailable, "Season storage not configured", nil)
		return false
	}
	return true
}

func (h *Handler) respondSeason(w http.ResponseWriter, rec *parser.SeasonRecord, err error, what string) {
	if errors.Is(err, store.ErrSeasonNotFound) {
		respondError(w, http.StatusNotFound, "Season not found", fmt.Errorf("%s: %w", what, err))
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch season", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]*parser.SeasonRecord{rec.Label: rec})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
