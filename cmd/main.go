package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/google/subcommands"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&serveCmd{cfg: cfg}, "")
	commander.Register(&summaryCmd{cfg: cfg}, "")
	commander.Register(&exportCmd{cfg: cfg}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// stdout is reserved for command output
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
