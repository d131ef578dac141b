package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/billbatista/chama360/api"
	"github.com/billbatista/chama360/config"
	"github.com/billbatista/chama360/eventlogger"
	"github.com/billbatista/chama360/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context(), config.FromContext(cmd.Context()))
		},
	}
}

func serveRun(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var evtlogger eventlogger.EventLogger
	if cfg.DatabaseURL != "" {
		db, err := openDatabase(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		sqlLogger := eventlogger.NewSqlEventLogger(db)
		if err := sqlLogger.EnsureSchema(ctx); err != nil {
			return err
		}
		evtlogger = sqlLogger
	} else {
		slog.Warn("no databaseUrl configured, events are kept in memory")
		evtlogger = eventlogger.NewMemoryEventLogger()
	}

	worker := eventlogger.NewWorker(evtlogger, cfg.EventBufferSize)
	worker.Start()
	defer worker.Shutdown()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := service.New(
		service.WithJournal(worker),
		service.WithMetrics(service.NewMetrics(reg)),
		service.WithVotingTTL(cfg.VotingTTL),
		service.WithInviteTTL(cfg.InviteTTL),
		service.WithLoanTerm(cfg.LoanTerm),
	)

	server := &http.Server{
		Addr: cfg.ListenAddress,
		Handler: api.NewRouter(svc, api.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			MetricsPath:    cfg.MetricsPath,
			Gatherer:       reg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "address", cfg.ListenAddress)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
