// Package prune projects a wide wildfire source table down to the dashboard's
// fixed column set, optionally filtering by year.
package prune

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// Source yields rows of a source table. Next returns io.EOF when exhausted.
type Source interface {
	Header() []string
	Next(ctx context.Context) ([]string, error)
}

// RowWriter receives projected rows in contract column order.
type RowWriter interface {
	WriteRow(row []string) error
}

// Options controls row filtering.
type Options struct {
	// SinceYear drops rows with FIRE_YEAR below it. Zero keeps every row.
	SinceYear int
}

// Stats summarizes a prune run.
type Stats struct {
	Read     int
	Written  int
	Filtered int
}

// Run copies the contract columns of every accepted source row to dst.
func Run(ctx context.Context, src Source, dst RowWriter, opts Options, logger *slog.Logger) (Stats, error) {
	positions, err := project(src.Header())
	if err != nil {
		return Stats{}, err
	}
	yearPos := positions[0]

	var stats Stats
	out := make([]string, len(positions))
	for {
		if stats.Read%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		row, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}
		stats.Read++

		if opts.SinceYear > 0 {
			year, err := parseYear(cell(row, yearPos))
			if err != nil {
				return stats, fmt.Errorf("row %d: parse %s: %w", stats.Read, domain.ColFireYear, err)
			}
			if year < opts.SinceYear {
				stats.Filtered++
				continue
			}
		}

		for i, p := range positions {
			out[i] = cell(row, p)
		}
		if err := dst.WriteRow(out); err != nil {
			return stats, err
		}
		stats.Written++
	}

	logger.Info("prune complete",
		"read", stats.Read,
		"written", stats.Written,
		"filtered", stats.Filtered,
		"since_year", opts.SinceYear,
	)
	return stats, nil
}

// project maps each contract column to its source position.
func project(header []string) ([]int, error) {
	idx, err := domain.IndexHeader(header)
	if err != nil {
		return nil, fmt.Errorf("project source columns: %w", err)
	}
	positions := make([]int, len(domain.Columns))
	for i, c := range domain.Columns {
		positions[i] = idx[c]
	}
	return positions, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func parseYear(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
