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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/daap14/teamhub/internal/api"
	"github.com/daap14/teamhub/internal/auth"
	"github.com/daap14/teamhub/internal/config"
	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/entitlement"
	"github.com/daap14/teamhub/internal/event"
	"github.com/daap14/teamhub/internal/invitation"
	"github.com/daap14/teamhub/internal/member"
	"github.com/daap14/teamhub/internal/plan"
	"github.com/daap14/teamhub/internal/subscription"
	"github.com/daap14/teamhub/internal/sweeper"
	"github.com/daap14/teamhub/internal/team"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database migrations applied")
	}

	plans, err := plan.Load(cfg.PlansFile, cfg.FreePlan)
	if err != nil {
		slog.Error("failed to load plans", "error", err, "file", cfg.PlansFile)
		os.Exit(1)
	}
	slog.Info("plans loaded", "plans", plans.Names(), "free", cfg.FreePlan)

	events, closeEvents, err := initPublisher(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize event sink", "error", err, "sink", cfg.EventSink)
		os.Exit(1)
	}
	defer closeEvents()

	directory := team.NewDirectory(team.NewRepository(db), db)
	resolver := subscription.NewResolver(subscription.NewRepository(db), plans, directory, db, events)
	invitations := invitation.NewRepository(db)
	ledger := member.NewLedger(member.NewRepository(db), directory, resolver, invitations, db, events)
	workflow := invitation.NewWorkflow(invitations, ledger, db, cfg.InvitationTTL)
	evaluator := entitlement.NewEvaluator(directory, ledger, resolver)

	userRepo := auth.NewRepository(db)
	authService := auth.NewService(userRepo, cfg.BcryptCost)
	if cfg.JWTSecret != "" {
		authService = authService.WithTokens(cfg.JWTSecret, cfg.TokenTTL)
	}

	if _, err := authService.BootstrapSuperuser(ctx, cfg.SuperuserEmail); err != nil {
		slog.Error("failed to bootstrap superuser", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	go sweeper.New(workflow, cfg.SweepInterval, registry).Start(ctx)

	router := api.NewRouter(api.RouterDeps{
		DBPinger:      db,
		Version:       cfg.Version,
		Authenticator: authService,
		Teams:         directory,
		Ledger:        ledger,
		Invitations:   workflow,
		Authorizer:    evaluator,
		Subscriptions: resolver,
		Users:         authService,
		UserStore:     userRepo,
		Registry:      registry,
		OpenAPISpec:   api.OpenAPISpec,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting teamhub server", "port", cfg.Port, "version", cfg.Version)
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

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// initPublisher builds the configured event sink. The returned func releases
// any connection it holds.
func initPublisher(ctx context.Context, cfg *config.Config) (event.Publisher, func(), error) {
	switch cfg.EventSink {
	case "", "log":
		return event.NewLogPublisher(slog.Default()), func() {}, nil
	case "redis":
		client, err := event.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return event.NewRedisPublisher(client, cfg.RedisChannel), func() { _ = client.Close() }, nil
	case "webhook":
		if cfg.WebhookURL == "" {
			return nil, nil, fmt.Errorf("WEBHOOK_URL is required when EVENT_SINK=webhook")
		}
		return event.NewWebhookPublisher(cfg.WebhookURL), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown event sink %q", cfg.EventSink)
	}
}
