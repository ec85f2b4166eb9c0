package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/casegraph/internal/cli"
	"github.com/dmitrijs2005/casegraph/internal/logging"
	"github.com/dmitrijs2005/casegraph/internal/server"
	"github.com/dmitrijs2005/casegraph/internal/server/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg := config.LoadConfig()

	level, levelErr := logging.ParseLevel(cfg.LogLevel)
	// stdout carries command output, so logs go to stderr.
	logger := logging.NewJSONLogger(os.Stderr, level)
	if levelErr != nil {
		logger.Warn(ctx, "falling back to info logging", "error", levelErr)
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, err.Error())
		return 1
	}
	defer app.Close()

	err = cli.New(app, os.Stdin, os.Stdout).Run(ctx, os.Args[1:])
	if mErr := app.WriteMetrics(); mErr != nil {
		logger.Error(ctx, mErr.Error())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
