package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/catalog"
)

func trainingDataCommand() *cli.Command {
	return &cli.Command{
		Name:  "training-data",
		Usage: "Write fastText category training data from product XML files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Usage: "Directory with product XML files",
				Value: "/workspace/datasets/product_data/products/",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "The file to write",
				Value: "/workspace/datasets/fasttext/output.fasttext",
			},
			&cli.IntFlag{
				Name:  "min-product-names",
				Usage: "Minimum number of products per category",
				Value: catalog.DefaultMinPerCategory,
			},
			&cli.IntFlag{
				Name:  "max-product-names",
				Usage: "Maximum number of products per category",
				Value: catalog.DefaultMaxPerCategory,
			},
			&cli.BoolFlag{
				Name:  "normalize",
				Usage: "Lowercase product names and strip punctuation",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger, err := newLogger(c, "")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return writeTrainingData(ctx, logger, c.String("input"), c.String("output"), catalog.Options{
				MinPerCategory: c.Int("min-product-names"),
				MaxPerCategory: c.Int("max-product-names"),
				Normalize:      c.Bool("normalize"),
			})
		},
	}
}

func writeTrainingData(ctx context.Context, logger *zap.Logger, input, output string, opts catalog.Options) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	collector := catalog.NewCollector()
	if err := catalog.ReadDir(ctx, input, logger, collector.Add); err != nil {
		return fmt.Errorf("read products: %w", err)
	}
	products := collector.Select(opts)

	f, err := os.Create(filepath.Clean(output))
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	logger.Info("Writing training data",
		zap.String("output", output),
		zap.Int("products", len(products)),
		zap.Int("categories_seen", collector.Categories()),
	)
	if err := catalog.WriteFastText(f, products); err != nil {
		return fmt.Errorf("write training data: %w", err)
	}
	return f.Close() //nolint:wrapcheck // close error surfaces a failed flush
}
