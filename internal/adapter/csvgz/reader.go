// Package csvgz reads and writes the gzip-compressed CSV files that carry
// wildfire records between the prune tooling and the dashboard.
package csvgz

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Reader loads fire records from a dataset file.
// It implements pipeline.Extractor.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the dataset at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Path returns the dataset location.
func (r *Reader) Path() string { return r.path }

// Extract reads every record in the dataset. Any malformed row aborts the load.
func (r *Reader) Extract(ctx context.Context) ([]domain.FireRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", r.path, err)
	}
	r.logger.Info("dataset read", "path", r.path, "rows", len(records))
	return records, nil
}

// Open wraps r in a CSV reader, transparently decompressing gzip input.
func Open(r io.Reader) (*csv.Reader, io.Closer, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("peek header: %w", err)
	}

	var src io.Reader = br
	var closer io.Closer = io.NopCloser(nil)
	if len(magic) == 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip: %w", err)
		}
		src, closer = zr, zr
	}

	cr := csv.NewReader(src)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	return cr, closer, nil
}

// ReadRecords parses a dataset stream. The header must contain every contract
// column; extra columns are ignored.
func ReadRecords(ctx context.Context, r io.Reader) ([]domain.FireRecord, error) {
	cr, closer, err := Open(r)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty dataset: no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := domain.IndexHeader(header)
	if err != nil {
		return nil, err
	}

	var records []domain.FireRecord //nolint:prealloc // row count unknown until EOF
	for line := 2; ; line++ {
		if line%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		rec, err := domain.ParseRecord(row, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
