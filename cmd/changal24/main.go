package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"changal24/internal/app"
	"changal24/internal/config"
	"changal24/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	command := "run"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	switch command {
	case "fetch":
		err = application.RunIntake(ctx)
	case "publish":
		err = application.RunPublish(ctx)
	case "serve":
		err = application.Serve(ctx)
	case "run":
		err = application.Run(ctx)
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [fetch|publish|serve|run]\n", os.Args[0])
		os.Exit(2)
	}

	if err != nil {
		logger.Error("run failed", "command", command, "error", err)
		os.Exit(1)
	}
}
