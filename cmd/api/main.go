package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rosterhub/rosterhub/internal/auth"
	"github.com/rosterhub/rosterhub/internal/cache"
	"github.com/rosterhub/rosterhub/internal/config"
	"github.com/rosterhub/rosterhub/internal/db"
	httpx "github.com/rosterhub/rosterhub/internal/http"
	"github.com/rosterhub/rosterhub/internal/http/handlers"
	"github.com/rosterhub/rosterhub/internal/http/middlewares"
	"github.com/rosterhub/rosterhub/internal/observability"
	"github.com/rosterhub/rosterhub/internal/repo/postgres"
	"github.com/rosterhub/rosterhub/internal/repo/redisstore"
	"github.com/rosterhub/rosterhub/internal/security"
	"github.com/rosterhub/rosterhub/internal/session"
	"github.com/rosterhub/rosterhub/internal/teams"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	log = slog.New(observability.NewTraceHandler(log.Handler()))
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, "rosterhub-api", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracing disabled", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	// metrics
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// stores
	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	sessionsStore, err := redisstore.New(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}

	defer sessionsStore.Close()

	usersRepo := postgres.NewUsersRepo(pool, prom)
	teamsRepo := postgres.NewTeamsRepo(pool, prom)
	membershipsRepo := postgres.NewMembershipsRepo(pool, prom)
	matchesRepo := postgres.NewMatchesRepo(pool, prom)
	announcementsRepo := postgres.NewAnnouncementsRepo(pool, prom)

	// services
	hasher := security.NewHasher(cfg.HashWorkers)
	sessions := session.NewManager(usersRepo, sessionsStore, hasher, log, cfg.SessionTTL).WithMetrics(prom)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	registry := teams.NewRegistry(teamsRepo, membershipsRepo, log, cache.New(30*time.Second))

	if err := db.EnsureSuperuser(ctx, pool, hasher, cfg); err != nil {
		log.Error("superuser seed failed", "err", err)
		os.Exit(1)
	}

	// http wiring
	authMW := middlewares.NewAuthMiddleware(sessions, jwtManager, membershipsRepo)
	csrfMW := middlewares.NewCSRFMiddleware(log, prom)

	router := httpx.NewRouter(httpx.RouterDeps{
		Cfg:  cfg,
		Prom: prom,
		Reg:  reg,

		Auth: authMW,
		CSRF: csrfMW,

		AuthHandler:          handlers.NewAuthHandler(usersRepo, sessions, hasher, jwtManager, cfg.JWTTTL, cfg).WithMetrics(prom),
		TeamsHandler:         handlers.NewTeamsHandler(registry, teamsRepo),
		MembersHandler:       handlers.NewMembersHandler(registry, membershipsRepo, usersRepo),
		MatchesHandler:       handlers.NewMatchesHandler(matchesRepo),
		AnnouncementsHandler: handlers.NewAnnouncementsHandler(announcementsRepo),
		AdminHandler:         handlers.NewAdminHandler(usersRepo, teamsRepo),
		HealthHandler:        handlers.NewHealthHandler(pingerFunc(pool.Ping), sessionsStore),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
}

// pingerFunc adapts pgxpool's Ping to the health handler's interface.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
