package server

import (
	"log/slog"
	"net/http"

	"empires-server/internal/battle"
	battleHandlers "empires-server/internal/battle/handlers"
	"empires-server/internal/empire"
	empireHandlers "empires-server/internal/empire/handlers"
	"empires-server/internal/middleware"
	serverHandlers "empires-server/internal/server/handlers"
)

type Routes struct {
	health        http.Handler
	empireService *empire.Service
	battleService *battle.Service
	auth          *middleware.Authenticator
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func NewRoutes(health *serverHandlers.HealthHandler, empireService *empire.Service, battleService *battle.Service, auth *middleware.Authenticator, rateLimiter *middleware.RateLimiter, logger *slog.Logger) *Routes {
	return &Routes{
		health:        health,
		empireService: empireService,
		battleService: battleService,
		auth:          auth,
		rateLimiter:   rateLimiter,
		logger:        logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := r.logger.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	empireHandler := empireHandlers.NewEmpireHandler(r.empireService)
	battleHandler := battleHandlers.NewBattleHandler(r.battleService)
	coalitionHandler := battleHandlers.NewCoalitionHandler(r.battleService)
	empireAccess := middleware.NewEmpireAccessMiddleware(r.auth, r.empireService)

	// Public endpoints
	mux.Handle("GET /api/server/health", r.health)
	mux.HandleFunc("GET /api/empires", empireHandler.List)
	mux.HandleFunc("GET /api/empires/{id}", empireHandler.Get)
	mux.HandleFunc("GET /api/battles/{id}", battleHandler.GetReport)
	mux.HandleFunc("GET /api/turns/current", empireHandler.CurrentTurn)
	mux.HandleFunc("GET /api/turns/{turn}/raids", coalitionHandler.TurnRaids)

	// Rate-limited computation endpoints
	mux.Handle("POST /api/battles/simulate", r.rateLimiter.Middleware(http.HandlerFunc(battleHandler.Simulate)))
	mux.Handle("POST /api/coalitions/detect", r.rateLimiter.Middleware(http.HandlerFunc(coalitionHandler.Detect)))

	// Commander endpoints (authenticated, own empire or admin)
	mux.Handle("POST /api/empires/{id}/battles", empireAccess.Require(http.HandlerFunc(battleHandler.Engage)))
	mux.Handle("POST /api/empires/{id}/stance", empireAccess.Require(http.HandlerFunc(empireHandler.SetStance)))

	// Admin-only endpoints
	mux.Handle("POST /api/turns/{turn}/advance", r.auth.RequireAdmin(http.HandlerFunc(empireHandler.AdvanceTurn)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/empires", "/api/empires/{id}", "/api/battles/{id}", "/api/turns/current", "/api/turns/{turn}/raids"},
		"rate_limited_endpoints", []string{"/api/battles/simulate", "/api/coalitions/detect"},
		"protected_endpoints", []string{"/api/empires/{id}/battles", "/api/empires/{id}/stance"},
		"admin_endpoints", []string{"/api/turns/{turn}/advance"},
	)

	return mux
}
