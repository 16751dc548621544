package csvgz

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// Writer streams rows with the contract header into a gzip-compressed CSV.
type Writer struct {
	zw   *gzip.Writer
	cw   *csv.Writer
	file *os.File
	rows int
}

// NewWriter writes the contract header to w and returns a Writer for rows.
func NewWriter(w io.Writer) (*Writer, error) {
	zw := gzip.NewWriter(w)
	cw := csv.NewWriter(zw)
	if err := cw.Write(domain.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &Writer{zw: zw, cw: cw}, nil
}

// Create opens path for writing, truncating any existing file.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// WriteRow writes one row already projected to contract column order.
func (w *Writer) WriteRow(row []string) error {
	if len(row) != len(domain.Columns) {
		return fmt.Errorf("row has %d columns, want %d", len(row), len(domain.Columns))
	}
	if err := w.cw.Write(row); err != nil {
		return fmt.Errorf("write row %d: %w", w.rows+1, err)
	}
	w.rows++
	return nil
}

// WriteRecord writes a parsed record.
func (w *Writer) WriteRecord(rec domain.FireRecord) error {
	return w.WriteRow(rec.Row())
}

// Rows returns the number of data rows written so far.
func (w *Writer) Rows() int { return w.rows }

// Close flushes the CSV and gzip streams and closes the file, if any.
func (w *Writer) Close() error {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("close gzip: %w", err)
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
