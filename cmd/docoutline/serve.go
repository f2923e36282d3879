package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction HTTP API",
	Long: `Serve accepts uploads on POST /api/extract, processes them on a worker
pool, and serves the outline, segments and section documents of each
completed job from memory. Requests need "Authorization: Bearer <api_key>".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
		if err := cfg.ValidateServe(); err != nil {
			log.Error("invalid configuration", "error", err)
			return err
		}

		ctx := cmd.Context()
		stats := pipeline.NewStageStats(time.Hour)
		orch := pipeline.NewOrchestrator(cfg, stats, log)
		orch.Start(ctx)

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      api.NewServer(orch, log, cfg),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			log.Info("shutting down...")

			orch.Stop()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting docoutline", "port", cfg.Port, "workers", cfg.WorkerCount)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "8090", "HTTP listen port")
}
