package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/auth"
	"github.com/mmynk/billbuddy/internal/config"
	"github.com/mmynk/billbuddy/internal/metrics"
	"github.com/mmynk/billbuddy/internal/middleware"
	"github.com/mmynk/billbuddy/internal/notify"
	"github.com/mmynk/billbuddy/internal/receipt"
	"github.com/mmynk/billbuddy/internal/service"
	"github.com/mmynk/billbuddy/internal/storage"
	"github.com/mmynk/billbuddy/internal/storage/postgres"
	"github.com/mmynk/billbuddy/internal/storage/sqlite"
	"github.com/mmynk/billbuddy/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	m := metrics.New()
	hub := notify.NewHub()
	var publisher notify.Publisher = hub

	// With Redis, events go out through the channel and come back in through the relay, so every
	// server instance delivers them to its own watchers.
	if cfg.Redis.Addr != "" {
		client := notify.NewRedisClient(cfg.Redis.Addr)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}

		publisher = notify.NewRedisPublisher(client, cfg.Redis.Channel)
		relay := notify.NewRelay(client, cfg.Redis.Channel, hub)
		ready := make(chan struct{})
		relayErr := make(chan error, 1)
		go func() {
			err := relay.Run(ctx, ready)
			if err != nil {
				slog.Error("Notification relay stopped", "error", err)
			}
			relayErr <- err
		}()
		select {
		case <-ready:
		case err := <-relayErr:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	} else {
		slog.Info("Redis not configured, notifications stay in-process")
	}

	var scanner receipt.Scanner
	if cfg.Receipt.GeminiAPIKey != "" {
		gemini, err := receipt.NewGeminiScanner(ctx, cfg.Receipt.GeminiAPIKey, cfg.Receipt.Model, cfg.Currency)
		if err != nil {
			return err
		}
		scanner = gemini
		slog.Info("Receipt scanning enabled", "model", cfg.Receipt.Model)
	} else {
		slog.Warn("Receipt scanning disabled; set BILLBUDDY_RECEIPT_GEMINI_API_KEY to enable it")
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	// Auth runs first so the logging interceptor sees the caller's identity.
	interceptors := connect.WithInterceptors(
		middleware.NewAuthInterceptor(jwtManager, api.PublicProcedures...),
		middleware.NewLoggingInterceptor(m),
	)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	r.Mount(api.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, store), interceptors))
	r.Mount(api.NewRoomServiceHandler(service.NewRoomService(store, hub, publisher, m), interceptors))
	r.Mount(api.NewActivityServiceHandler(service.NewActivityService(store, publisher, scanner, m), interceptors))
	r.Mount(api.NewSplitServiceHandler(service.NewSplitService(store, publisher, m, service.RetryPolicy{
		MaxRetries: cfg.Split.MaxRetries,
		Base:       cfg.Split.RetryBase,
	}), interceptors))
	r.Mount(api.NewSettlementServiceHandler(service.NewSettlementService(store, service.SettlementPolicy{
		NetThreshold: cfg.Settlement.NetThresholdDecimal(),
		PlanFloor:    cfg.Settlement.PlanFloorDecimal(),
		Currency:     cfg.Currency,
	}), interceptors))
	r.Mount(api.NewProfileServiceHandler(service.NewProfileService(store), interceptors))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())

	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		return fmt.Errorf("failed to resolve static path: %w", err)
	}
	slog.Info("Serving static files", "path", staticDir)
	r.NotFound(staticHandler(staticDir))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "db_driver", cfg.DB.Driver)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.DB) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.Driver)
		return store, nil
	default:
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.Driver, "database", cfg.Path)
		return store, nil
	}
}

// staticHandler serves the frontend. Unknown paths fall back to index.html.
func staticHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/billbuddy.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
