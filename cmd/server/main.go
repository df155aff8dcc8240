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

	specpkg "github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/api"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/alert"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/handler"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/app"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/dynamo"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/proxy"
)

const rateLimiterIdle = 10 * time.Minute

func main() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	app.BootstrapLogger()

	env, err := app.LoadEnvironment(ctx)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := env.Config

	app.SetupLogger(cfg.LogLevel)

	stores, err := app.OpenStores(ctx, env)
	if err != nil {
		slog.Error("failed to open stores", "error", err)
		os.Exit(1)
	}
	defer stores.DB.Close()

	proxyCfg, err := proxy.LoadConfig(cfg.ProxyConfigPath)
	if err != nil {
		slog.Error("failed to load proxy configuration", "error", err)
		os.Exit(1)
	}
	upstreams, err := proxy.NewRegistry(proxyCfg, handler.UpstreamError)
	if err != nil {
		slog.Error("failed to build upstream registry", "error", err)
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.StartEviction(ctx, rateLimiterIdle)

	if cfg.AlertSweepInterval > 0 {
		go alert.NewSweeper(stores.Alerts, cfg.AlertSweepInterval).Start(ctx)
	}

	router := api.NewRouter(api.RouterDeps{
		HealthChecks: map[string]handler.Pinger{
			"postgres": stores.DB,
			"dynamodb": dynamo.NewPinger(stores.Dynamo),
		},
		Version:             cfg.Version,
		OpenAPISpec:         specpkg.OpenAPISpec,
		AuthService:         stores.Auth,
		UserRepo:            stores.Users,
		TeamRepo:            stores.Teams,
		TeamRoleRepo:        stores.TeamRoles,
		OrgMemberRepo:       stores.OrgMembers,
		NotificationService: stores.Notifications,
		AlertRepo:           stores.Alerts,
		AtomicRepo:          stores.Atomic,
		Mailer:              stores.Mailer,
		Upstreams:           upstreams,
		AllowedReferer:      cfg.AllowedReferer,
		CORSOrigins:         cfg.CORSOrigins,
		RateLimiter:         limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting Nexus API server", "port", cfg.Port, "version", cfg.Version, "upstreams", upstreams.Names())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
