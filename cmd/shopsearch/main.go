package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/config"
	logpkg "github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    "shopsearch",
		Usage:   "Faceted product search over an Elasticsearch/OpenSearch catalog",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name, selects config/<env>.yaml and the log format",
				Value:   "local",
				Sources: cli.EnvVars("ENV"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Explicit configuration file path (overrides --env lookup)",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			queryCommand(),
			trainingDataCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config selected by --config or --env.
func loadConfig(c *cli.Command) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path) //nolint:wrapcheck // config errors carry the path
	}
	return config.Load(c.String("env")) //nolint:wrapcheck // config errors carry the path
}

// newLogger builds the process logger for --env with an optional level override.
func newLogger(c *cli.Command, level string) (*zap.Logger, error) {
	logger, err := logpkg.NewLogger(c.String("env"), level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(_ context.Context, c *cli.Command) error {
			_, err := fmt.Fprintln(c.Root().Writer, "shopsearch", version.String())
			return err //nolint:wrapcheck // stdout write
		},
	}
}
