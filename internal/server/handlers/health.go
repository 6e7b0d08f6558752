package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"empires-server/internal/shared/response"
)

type HealthResponse struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	Database       string `json:"database"`
	Cache          string `json:"cache"`
	CacheBackend   string `json:"cache_backend"`
	Strategy       string `json:"strategy"`
	RulesetVersion string `json:"ruleset_version"`
}

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Health(ctx context.Context) error
}

// CachePinger is the battle cache as seen by the health check.
type CachePinger interface {
	Ping(ctx context.Context) error
	Backend() string
}

type HealthHandler struct {
	db             Pinger
	cache          CachePinger
	strategy       string
	rulesetVersion string
}

func NewHealthHandler(db Pinger, cache CachePinger, strategy, rulesetVersion string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, strategy: strategy, rulesetVersion: rulesetVersion}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"

	dbStatus := "disconnected"
	if err := h.db.Health(ctx); err == nil {
		dbStatus = "connected"
	} else {
		logger.Warn("Database ping failed", "error", err)
		status = "degraded"
	}

	cacheStatus := "connected"
	if err := h.cache.Ping(ctx); err != nil {
		logger.Warn("Cache ping failed", "error", err)
		cacheStatus = "disconnected"
		status = "degraded"
	}

	resp := HealthResponse{
		Status:         status,
		Timestamp:      time.Now().Format(time.RFC3339),
		Database:       dbStatus,
		Cache:          cacheStatus,
		CacheBackend:   h.cache.Backend(),
		Strategy:       h.strategy,
		RulesetVersion: h.rulesetVersion,
	}

	response.Success(w, http.StatusOK, resp)
}
