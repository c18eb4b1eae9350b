package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"medscribe/internal/cli"
	"medscribe/internal/config"
	"medscribe/internal/logger"
	"medscribe/internal/output"
)

func main() {
	if err := run(); err != nil {
		output.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, true, os.Stderr)

	deps := &cli.Dependencies{Config: cfg}
	defer deps.Close()

	return cli.NewRootCmd(deps).ExecuteContext(context.Background())
}
