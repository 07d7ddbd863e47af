// Package server fronts the curation pipeline as an HTTP endpoint.
//
// GET /api/trending accepts region, days, maxViews, pageToken and
// category query parameters and returns the filtered, ranked batch plus
// the catalog's continuation token. Upstream catalog errors surface
// with their message verbatim; transport failures surface as a generic
// connectivity error. A missing YT_API_KEY is a configuration error
// reported with status 500 and is never retried.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"alttube/internal/curation"
	"alttube/internal/youtube"
)

// Defaults applied when a query parameter is absent.
const (
	defaultRegion     = "US"
	defaultMaxViews   = 200000
	defaultMaxAgeDays = 14
)

// PageFetcher produces curated pages; implemented by curation.Pipeline.
type PageFetcher interface {
	FetchPage(ctx context.Context, cfg curation.FilterConfig, pageToken string) (*curation.Page, error)
}

// TrendingHandler serves curated trending batches.
type TrendingHandler struct {
	pipeline PageFetcher
	logger   *slog.Logger
	now      func() time.Time
}

// NewTrendingHandler creates the handler. A nil pipeline means the
// server is running without credentials; requests then fail with a
// configuration error.
func NewTrendingHandler(pipeline PageFetcher, logger *slog.Logger) *TrendingHandler {
	return &TrendingHandler{pipeline: pipeline, logger: logger, now: time.Now}
}

// NewRouter builds the HTTP routing table.
func NewRouter(handler *TrendingHandler, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	r.HandleFunc("/api/trending", handler.GetTrending).Methods(http.MethodGet)

	r.Use(requestLogging(logger))

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// trendingItem is a curated video enriched with the figures the clients
// would otherwise recompute.
type trendingItem struct {
	youtube.Video
	DurationSeconds int     `json:"duration_seconds"`
	Score           float64 `json:"score"`
}

type trendingResponse struct {
	Items         []trendingItem `json:"items"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetTrending handles GET /api/trending.
func (h *TrendingHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	if h.pipeline == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Server YT_API_KEY is missing"})
		return
	}

	query := r.URL.Query()

	region := query.Get("region")
	if region == "" {
		region = defaultRegion
	}

	cfg := curation.FilterConfig{
		Region:     region,
		CategoryID: query.Get("category"),
		MaxViews:   int64(intParam(query.Get("maxViews"), defaultMaxViews)),
		MaxAgeDays: intParam(query.Get("days"), defaultMaxAgeDays),
	}

	page, err := h.pipeline.FetchPage(r.Context(), cfg, query.Get("pageToken"))
	if err != nil {
		var apiErr *youtube.APIError
		if errors.As(err, &apiErr) {
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: apiErr.Message})
			return
		}
		h.logger.Error("trending fetch failed", "region", region, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "could not reach the video catalog"})
		return
	}

	now := h.now()
	items := make([]trendingItem, 0, len(page.Items))
	for _, v := range page.Items {
		items = append(items, trendingItem{
			Video:           v,
			DurationSeconds: youtube.ParseDuration(v.Duration),
			Score:           curation.Score(v, now),
		})
	}

	writeJSON(w, http.StatusOK, trendingResponse{Items: items, NextPageToken: page.NextToken})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogging(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start).Round(time.Millisecond).String(),
			)
		})
	}
}
