package csvgz

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Source streams rows of an uncompressed or gzip-compressed CSV file.
// It implements prune.Source.
type Source struct {
	f      *os.File
	cr     *csv.Reader
	closer io.Closer
	header []string
}

// OpenSource opens the CSV at path and reads its header row.
func OpenSource(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	cr, closer, err := Open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	header, err := cr.Read()
	if err != nil {
		closer.Close()
		f.Close()
		return nil, fmt.Errorf("read source header: %w", err)
	}
	return &Source{f: f, cr: cr, closer: closer, header: append([]string(nil), header...)}, nil
}

// Header returns the source column names.
func (s *Source) Header() []string { return s.header }

// Next returns the next row, or io.EOF when the source is exhausted.
// The returned slice is only valid until the following call.
func (s *Source) Next(_ context.Context) ([]string, error) {
	row, err := s.cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read source row: %w", err)
	}
	return row, nil
}

// Close releases the underlying file.
func (s *Source) Close() error {
	s.closer.Close()
	return s.f.Close()
}
