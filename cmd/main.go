package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/portx/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("PORTX_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config, err := shared.LoadConfig(configPath)
	switch {
	case errors.Is(err, shared.ErrMissingConfig):
		logger.Debug("no config file, using defaults", "path", configPath)
		config = shared.DefaultConfig()
	case err != nil:
		logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		config = shared.DefaultConfig()
	}
	shared.SetLogLevel(logger, config.LogLevel())

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		HTTPClient: shared.NewHTTPClient(config.HTTP),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "portx",
		Usage:    "Move photo albums between services with resumable, idempotent import jobs",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
