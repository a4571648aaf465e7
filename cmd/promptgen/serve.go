package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/system-prompt-generator/internal/async"
	"github.com/joseph-ayodele/system-prompt-generator/internal/export"
	"github.com/joseph-ayodele/system-prompt-generator/internal/repository"
	"github.com/joseph-ayodele/system-prompt-generator/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and the optional gRPC health service)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := openDB(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()
			repo := repository.NewGenerationRepository(db, logger)

			proc, renderer, err := newProcessor(ctx, cfg, repo, logger)
			if err != nil {
				return err
			}
			if cfg.Prompt.Watch && cfg.Prompt.TemplatePath != "" {
				if err := renderer.Watch(ctx); err != nil {
					return err
				}
			}

			queue := async.NewProcessorQueue(proc, logger,
				async.WithWorkers(cfg.Queue.Workers),
				async.WithQueueSize(cfg.Queue.Size),
				async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
			)

			api := server.New(server.Deps{
				Generator: proc,
				Repo:      repo,
				Queue:     queue,
				Export:    export.NewService(repo, logger),
				DB:        db,
				Config:    cfg.Server,
				Logger:    logger,
			})
			httpServer := &http.Server{
				Addr:         cfg.Server.HTTPAddr,
				Handler:      api.Handler(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  60 * time.Second,
			}

			serverErrors := make(chan error, 2)
			go func() {
				logger.Info("http server starting", "addr", cfg.Server.HTTPAddr, "provider", cfg.LLM.Provider)
				serverErrors <- httpServer.ListenAndServe()
			}()

			var health *server.HealthServer
			if cfg.Server.GRPCAddr != "" {
				lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
				if err != nil {
					return err
				}
				health = server.NewHealthServer(logger)
				go func() { serverErrors <- health.Serve(lis) }()
			}

			var runErr error
			select {
			case err := <-serverErrors:
				if !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", "error", err)
					runErr = err
				}
			case <-ctx.Done():
				logger.Info("shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if health != nil {
				health.SetServing(false)
			}
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("http shutdown error", "error", err)
				if err := httpServer.Close(); err != nil {
					logger.Error("http close error", "error", err)
				}
			}
			queue.Shutdown(shutdownCtx)
			if health != nil {
				health.Stop(shutdownCtx)
			}
			logger.Info("server stopped gracefully")
			return runErr
		},
	}
}
