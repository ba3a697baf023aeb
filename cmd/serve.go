package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/KotFed0t/invest_tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/invest_tracker/internal/httpServer"
	"github.com/KotFed0t/invest_tracker/internal/persistence"
	"github.com/KotFed0t/invest_tracker/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/invest_tracker/internal/scheduler"
	"github.com/KotFed0t/invest_tracker/internal/service/reportService"
	"github.com/KotFed0t/invest_tracker/internal/transport/httpApi"
	"github.com/google/subcommands"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	cfg  *config.Config
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API with background price refresh" }
func (*serveCmd) Usage() string {
	return `serve [-addr <host:port>]

  Restores saved portfolios, refreshes prices on a schedule and serves the
  HTTP and websocket API until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address, overrides HTTP_ADDR")
}

func (c *serveCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.addr != "" {
		c.cfg.HTTP.Addr = c.addr
	}
	if err := c.serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *serveCmd) serve() error {
	cfg := c.cfg

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	writer := persistence.NewWriter(a.store, cfg.Jobs.PersistRetryBackoff)
	writerCtx, stopWriter := context.WithCancel(context.Background())
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writer.Run(writerCtx)
	}()
	// the writer flushes whatever is pending once stopped
	defer func() {
		stopWriter()
		<-writerDone
	}()

	manager, err := a.startManager(ctx, cfg, writer)
	if err != nil {
		return err
	}
	if err = manager.Revalue(ctx); err != nil {
		slog.Error("initial revalue failed", slog.String("err", err.Error()))
	}

	var storage reportService.CloudStorage
	if cfg.GoogleDrive.CredentialsFile != "" {
		drive, err := googleDriveApi.New(ctx, cfg.GoogleDrive.CredentialsFile, cfg.GoogleDrive.FileTTL)
		if err != nil {
			return fmt.Errorf("google drive: %w", err)
		}
		storage = drive
	}
	reports := reportService.New(manager, xlsxGenerator.New(), storage)

	sched, err := scheduler.New(cfg.API.Timeout * 3)
	if err != nil {
		return err
	}
	err = sched.Add(
		scheduler.Job{
			Name:             "refresh prices",
			Interval:         cfg.Jobs.RefreshPricesInterval,
			StartImmediately: true,
			Fn:               manager.RefreshPrices,
		},
		scheduler.Job{
			Name:     "revalue portfolios",
			Interval: cfg.Jobs.RevalueInterval,
			Fn:       manager.Revalue,
		},
		scheduler.Job{
			Name:    "delete old reports",
			Crontab: cfg.Jobs.DeleteOldReportsCron,
			Fn:      reports.DeleteOldReports,
		},
	)
	if err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			slog.Error("scheduler shutdown failed", slog.String("err", err.Error()))
		}
	}()

	ctrl := httpApi.NewController(manager, reports, a.feed, cfg.HTTP.AllowedOrigins)
	srv := httpServer.New(cfg, httpApi.NewRouter(ctrl, cfg))
	if err = srv.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Stop(shutdownCtx)
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt

	slog.Info("shutting down")
	return nil
}
