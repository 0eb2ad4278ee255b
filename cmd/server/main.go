package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/twbrandon7/lexi-connect/internal/config"
	"github.com/twbrandon7/lexi-connect/internal/gateway"
	"github.com/twbrandon7/lexi-connect/internal/pkg/middleware"
	"github.com/twbrandon7/lexi-connect/internal/pkg/router"
	"github.com/twbrandon7/lexi-connect/internal/rest"
	"github.com/twbrandon7/lexi-connect/internal/service"
	"github.com/twbrandon7/lexi-connect/internal/store"
	"github.com/twbrandon7/lexi-connect/internal/token"
	"github.com/twbrandon7/lexi-connect/internal/watch"
)

func run(ctx context.Context) error {
	slog.Info("starting lexi-connect")

	cfg := config.FromEnv()
	pgs, err := store.NewPostgresStore(store.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer pgs.Close()

	hub := watch.NewHub()
	var notify watch.Notifier = hub
	if cfg.Redis.Enabled() {
		bridge := watch.NewRedisBridge(watch.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		}, hub)
		if err := bridge.Run(ctx); err != nil {
			return fmt.Errorf("failed to start watch bridge: %w", err)
		}
		defer bridge.Close()
		notify = bridge
	}

	llm := gateway.NewClient(gateway.Config{
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
		TTSModel: cfg.AI.TTSModel,
		Voice:    cfg.AI.Voice,
		Timeout:  cfg.AI.Timeout,
	})

	discovery := service.NewDiscoveryService(llm, service.DiscoveryServiceConfig{
		DetailCacheKeys: cfg.DetailCacheKeys,
		DetailCacheCost: cfg.DetailCacheCost,
	})

	issuer := token.NewIssuer(token.IssuerConfig{
		Secret: []byte(cfg.AuthSecret),
		Issuer: cfg.TokenIssuer,
		TTL:    cfg.TokenTTL,
	})

	api := rest.NewAPI(
		service.NewSessionService(pgs, notify),
		service.NewCardService(pgs, discovery, notify),
		service.NewBankService(pgs, notify),
		discovery,
		issuer,
		hub,
	)

	rt := router.New()
	rt.Use(middleware.Recover(), middleware.Log())

	rt.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rt.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rt.HandleFunc("POST /auth/anonymous", api.HandleAnonymousSignIn)

	apiRt := rt.SubRouter("/api/v1")
	apiRt.Use(middleware.Auth([]byte(cfg.AuthSecret)))
	apiRt.Handle("/", api)

	httpSrv := &http.Server{
		Addr:         cfg.Http.ListenAddr,
		IdleTimeout:  cfg.Http.IdleTimeout,
		ReadTimeout:  cfg.Http.ReadTimeout,
		WriteTimeout: cfg.Http.WriteTimeout,
		Handler:      rt,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("lexi-connect terminated with error", "error", err)
		os.Exit(1)
	}
}
