package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"empires-server/internal/battle"
	"empires-server/internal/combat"
	"empires-server/internal/empire"
	"empires-server/internal/middleware"
	"empires-server/internal/server"
	serverHandlers "empires-server/internal/server/handlers"
	"empires-server/internal/shared/config"
	"empires-server/internal/shared/database"
	"empires-server/internal/shared/logger"
	"empires-server/internal/shared/redis"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init()

	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.GlobalConfig
	log := slog.With("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, rules, err := loadCombatData(cfg.Combat)
	if err != nil {
		return err
	}
	log.Info("Combat data loaded",
		"ruleset", rules.Version,
		"unit_types", len(profiles.Units()),
		"strategy", cfg.Combat.Strategy)

	db, err := database.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	redisClient, err := redis.Connect(cfg.Redis, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis", "error", err)
		}
	}()

	cache := battle.NewCache(redisClient, slog.Default())

	empireRepo := empire.NewRepository(db, slog.Default())
	empireService := empire.NewService(empireRepo, db, rules.Effectiveness, slog.Default())

	battleRepo := battle.NewRepository(db, slog.Default())
	battleService, err := battle.NewService(battleRepo, empireRepo, db, cache, profiles, rules, cfg.Combat, slog.Default())
	if err != nil {
		return err
	}

	health := serverHandlers.NewHealthHandler(db, cache, cfg.Combat.Strategy, rules.Version)
	authenticator := middleware.NewAuthenticator(cfg.Auth.JWTSecret)
	rateLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimit)
	cors := middleware.NewCORS(cfg.Frontend)

	routes := server.NewRoutes(health, empireService, battleService, authenticator, rateLimiter, slog.Default())
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      cors.Middleware(routes.Setup()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Empires server starting", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

func loadCombatData(cfg config.CombatConfig) (*combat.ProfileTable, combat.Ruleset, error) {
	profiles := combat.DefaultProfiles()
	if cfg.ProfilesPath != "" {
		loaded, err := combat.LoadProfilesFile(cfg.ProfilesPath)
		if err != nil {
			return nil, combat.Ruleset{}, fmt.Errorf("failed to load unit profiles: %w", err)
		}
		profiles = loaded
	}

	rules := combat.DefaultRuleset()
	if cfg.RulesetPath != "" {
		loaded, err := combat.LoadRulesetFile(cfg.RulesetPath)
		if err != nil {
			return nil, combat.Ruleset{}, fmt.Errorf("failed to load ruleset: %w", err)
		}
		rules = loaded
	}

	return profiles, rules, nil
}
