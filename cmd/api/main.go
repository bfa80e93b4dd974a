// @title           Loanbook API
// @version         1.0
// @description     Personal loan and shared expense ledger.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	_ "github.com/fkhayef/loanbook/docs"
	"github.com/fkhayef/loanbook/internal/auth"
	"github.com/fkhayef/loanbook/internal/backup"
	"github.com/fkhayef/loanbook/internal/config"
	"github.com/fkhayef/loanbook/internal/database"
	"github.com/fkhayef/loanbook/internal/expense"
	expensesplit "github.com/fkhayef/loanbook/internal/expense/split"
	"github.com/fkhayef/loanbook/internal/ledger"
	"github.com/fkhayef/loanbook/internal/notification"
	"github.com/fkhayef/loanbook/internal/person"
	"github.com/fkhayef/loanbook/internal/sharelink"
	"github.com/fkhayef/loanbook/pkg/logging"
	mw "github.com/fkhayef/loanbook/pkg/middleware"
	"github.com/fkhayef/loanbook/pkg/response"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Snapshot storage is optional; the ledger itself lives in memory
	var repo *backup.Repository
	db, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	switch {
	case errors.Is(err, database.ErrNoDatabase):
		slog.Warn("Running without snapshot storage")
	case err != nil:
		fatal("Failed to connect to database", err)
	default:
		defer db.Close()
		repo = backup.NewRepository(db)
		slog.Info("Connected to database", "driver", db.Driver)
	}

	book := ledger.New(ledger.WithPolicy(ledger.Policy{CountScheduledPayments: cfg.CountScheduledPayments}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := book.RegisterMetrics(reg); err != nil {
		fatal("Failed to register ledger metrics", err)
	}
	httpMetrics, err := mw.NewMetrics(reg)
	if err != nil {
		fatal("Failed to register HTTP metrics", err)
	}
	linkMetrics, err := sharelink.NewMetrics(reg)
	if err != nil {
		fatal("Failed to register share link metrics", err)
	}

	// Auth feature
	credentials, err := auth.NewCredentials(cfg.AuthUsername, cfg.AuthPassword)
	if err != nil {
		fatal("Invalid credentials configuration", err)
	}
	jwtManager := auth.NewJWTManager(cfg.SessionSecret, cfg.SessionTTL)
	authHandler := auth.NewHandler(credentials, jwtManager)

	// People, transactions and installment plans
	personHandler := person.NewHandler(person.NewService(book))

	// Split expense feature (with split factory injected)
	splitFactory := expensesplit.NewSplitStrategyFactory()
	expenseHandler := expense.NewHandler(expense.NewService(book, splitFactory))

	// Share links
	signer := sharelink.NewSigner(cfg.ShareSecret)
	linkHandler := sharelink.NewHandler(sharelink.NewService(book, signer, cfg.PublicBaseURL, cfg.SharePassword, linkMetrics))

	// Backup feature
	backupService := backup.NewService(book, repo)
	backupHandler := backup.NewHandler(backupService)
	if err := backupService.LoadLatest(ctx); err != nil {
		fatal("Failed to restore latest snapshot", err)
	}

	// Notification feature
	notificationHandler := notification.NewHandler(notification.NewService(book))

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(httpMetrics.Handler)
	r.Use(mw.RequireAuth(jwtManager,
		"/health",
		"/metrics",
		"/swagger/*",
		"/api/v1/auth/login",
		"/api/v1/shared/*",
	))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Mount feature routers
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/people", personHandler.Routes())
		r.Mount("/installments", personHandler.InstallmentRoutes())
		r.Mount("/split-expenses", expenseHandler.Routes())
		r.Mount("/share-links", linkHandler.Routes())
		r.Mount("/shared", linkHandler.PublicRoutes())
		r.Mount("/backup", backupHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	// HTTP/2 without TLS for clients behind a terminating proxy
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Server failed to start", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}

	if cfg.SnapshotOnShutdown && repo != nil {
		if _, err := backupService.SaveSnapshot(shutdownCtx, backup.ReasonShutdown); err != nil {
			slog.Error("Failed to save shutdown snapshot", "error", err)
		}
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
