package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/fentz26/todo/internal/audit"
	"github.com/fentz26/todo/internal/server"
	"github.com/fentz26/todo/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the task API server",
	Long:  `Starts the HTTP task service backed by SQLite or PostgreSQL.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("listen", "127.0.0.1:8080", "Listen address for the API server")
	serveCmd.Flags().String("db", "", "SQLite path or postgres:// URL (default ~/.todo/todo.db)")
}

func runServe(cmd *cobra.Command, args []string) error {
	gin.SetMode(gin.ReleaseMode)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log.Info("starting todo service", "version", version, "db", redactDSN(cfg.DB))

	// Initialize store
	s, err := store.Open(ctx, cfg.DB,
		store.WithMaxConns(cfg.Postgres.MaxConns),
		store.WithMaxConnIdleTime(cfg.Postgres.MaxConnIdleTime),
	)
	if err != nil {
		return err
	}

	service := server.NewService(s, audit.NewRecorder(s), log)
	srv := server.NewServer(service, cfg.Listen,
		server.WithLogger(log),
		server.WithCORSOrigins(cfg.CORSOrigins),
		server.WithVersion(version),
	)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		err := srv.Start()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			log.Error("server error", "error", err)
			s.Close()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", "error", err)
	}
	if err := s.Close(); err != nil {
		log.Error("database close error", "error", err)
	}

	log.Info("shutdown complete")
	return nil
}

// redactDSN hides credentials in postgres URLs before logging.
func redactDSN(dsn string) string {
	if !store.IsPostgresDSN(dsn) {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "postgres://***"
	}
	return u.Redacted()
}
