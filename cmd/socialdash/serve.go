package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"social-dashboard-backend/internal/chat"
	"social-dashboard-backend/internal/config"
	"social-dashboard-backend/internal/engagement"
	"social-dashboard-backend/internal/server"
	"social-dashboard-backend/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  "Serve the dashboard API. Uses Postgres when DATABASE_URL is set and caches views in Redis when REDIS_URL is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize dataset store
	var datasets store.DatasetStore = store.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := store.OpenDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
		datasets = store.NewPostgresStore(db)
	} else {
		log.Println("DATABASE_URL not set, keeping datasets in memory")
	}

	// Initialize Redis
	var cache *store.Cache
	if cfg.RedisURL != "" {
		cache, err = store.NewCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
			log.Println("Continuing without Redis cache...")
			cache = nil
		}
		defer cache.Close()
	}

	var sender chat.Sender
	if cfg.LangflowURL != "" {
		sender = chat.NewClient(cfg.LangflowURL,
			chat.WithHTTPClient(&http.Client{Timeout: cfg.ChatTimeout}),
			chat.WithToken(cfg.LangflowToken),
			chat.WithPayload(cfg.LangflowPayload),
			chat.WithTweaks(cfg.LangflowTweaks),
		)
	} else {
		log.Println("LANGFLOW_URL not set, chat endpoints are disabled")
	}

	srv := server.New(server.Options{
		Store:          datasets,
		Cache:          cache,
		Sender:         sender,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	err = srv.Restore(ctx, engagement.GenerateMock(cfg.MockCount, cfg.MockSeed))
	cancel()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ChatTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
