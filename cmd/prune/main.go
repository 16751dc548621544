// Command prune shrinks the FPA FOD wildfire table to the dashboard's column
// set and writes it as a gzip-compressed CSV.
//
// Usage:
//
//	go run ./cmd/prune --in data.csv --out "data compressed.csv.gz" --since 2010
//	go run ./cmd/prune --source sqlite --in FPA_FOD_20170508.sqlite --out fires.csv.gz
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/csvgz"
	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/sqlite"
	"github.com/couchcryptid/wildfire-dashboard/internal/prune"
)

var CLI struct {
	In      string `short:"i" help:"Input CSV (optionally gzip) or SQLite database" required:"" type:"existingfile"`
	Out     string `short:"o" help:"Output gzip-compressed CSV" default:"data compressed.csv.gz"`
	Source  string `help:"Input format" enum:"csv,sqlite" default:"csv"`
	Table   string `help:"SQLite table to read" default:"Fires"`
	Since   int    `help:"Keep rows with FIRE_YEAR at or after this year (0 keeps all)" default:"0"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
}

type source interface {
	prune.Source
	io.Closer
}

func main() {
	kong.Parse(&CLI,
		kong.Name("prune"),
		kong.Description("Project a wildfire table to the dashboard columns and gzip it."),
	)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("prune failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) (err error) {
	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := csvgz.Create(CLI.Out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", cerr))
		}
		if err != nil {
			// Never leave a truncated dataset behind.
			_ = os.Remove(CLI.Out)
		}
	}()

	stats, err := prune.Run(ctx, src, dst, prune.Options{SinceYear: CLI.Since}, logger)
	if err != nil {
		return err
	}

	logger.Info("prune complete",
		"in", CLI.In,
		"out", CLI.Out,
		"read", stats.Read,
		"written", stats.Written,
		"filtered", stats.Filtered,
	)
	return nil
}

func openSource(ctx context.Context) (source, error) {
	switch CLI.Source {
	case "sqlite":
		return sqlite.OpenSource(ctx, CLI.In, CLI.Table)
	default:
		return csvgz.OpenSource(CLI.In)
	}
}
