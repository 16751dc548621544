package prune_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-dashboard/internal/prune"
)

// sliceSource serves rows from memory.
type sliceSource struct {
	header []string
	rows   [][]string
	pos    int
}

func (s *sliceSource) Header() []string { return s.header }

func (s *sliceSource) Next(_ context.Context) ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	s.pos++
	return s.rows[s.pos-1], nil
}

type collectWriter struct {
	rows [][]string
}

func (c *collectWriter) WriteRow(row []string) error {
	c.rows = append(c.rows, append([]string(nil), row...))
	return nil
}

// wideHeader mimics the FPA FOD Fires table: contract columns interleaved with
// columns the dashboard drops, in a different order.
var wideHeader = []string{
	"OBJECTID", "FOD_ID", "Shape", "FIRE_NAME", "FIRE_YEAR", "DISCOVERY_DATE", "DISCOVERY_DOY",
	"STAT_CAUSE_CODE", "STAT_CAUSE_DESCR", "CONT_DATE", "FIRE_SIZE", "FIRE_SIZE_CLASS",
	"LATITUDE", "LONGITUDE", "OWNER_DESCR", "STATE", "COUNTY", "FIPS_NAME",
}

func wideRow(year, doy, state string) []string {
	return []string{
		"1", "1001", "blob", "FOUNTAIN", year, "2453403.5", doy,
		"9", "Miscellaneous", "2453403.5", "0.1", "A",
		"40.03694444", "-121.00583333", "USFS", state, "63", "Plumas",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ProjectsContractColumns(t *testing.T) {
	src := &sliceSource{header: wideHeader, rows: [][]string{wideRow("2005", "33", "CA")}}
	dst := &collectWriter{}

	stats, err := prune.Run(context.Background(), src, dst, prune.Options{}, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, prune.Stats{Read: 1, Written: 1}, stats)
	require.Len(t, dst.rows, 1)
	assert.Equal(t, []string{
		"2005", "33", "9", "Miscellaneous", "-121.00583333", "40.03694444", "0.1", "A", "CA", "63", "blob",
	}, dst.rows[0])
	assert.Len(t, dst.rows[0], len(domain.Columns))
}

func TestRun_SinceYearFilter(t *testing.T) {
	src := &sliceSource{header: wideHeader, rows: [][]string{
		wideRow("2008", "10", "CA"),
		wideRow("2010", "10", "OR"),
		wideRow("2015.0", "10", "WA"),
		wideRow("2009", "10", "NV"),
	}}
	dst := &collectWriter{}

	stats, err := prune.Run(context.Background(), src, dst, prune.Options{SinceYear: 2010}, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, prune.Stats{Read: 4, Written: 2, Filtered: 2}, stats)
	require.Len(t, dst.rows, 2)
	assert.Equal(t, "OR", dst.rows[0][8])
	assert.Equal(t, "WA", dst.rows[1][8])
}

func TestRun_MissingColumn(t *testing.T) {
	src := &sliceSource{header: []string{"FIRE_YEAR", "STATE"}}

	_, err := prune.Run(context.Background(), src, &collectWriter{}, prune.Options{}, discardLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingColumn))
}

func TestRun_BadYearWithFilter(t *testing.T) {
	src := &sliceSource{header: wideHeader, rows: [][]string{wideRow("unknown", "10", "CA")}}

	_, err := prune.Run(context.Background(), src, &collectWriter{}, prune.Options{SinceYear: 2010}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &sliceSource{header: wideHeader, rows: [][]string{wideRow("2010", "10", "CA")}}

	_, err := prune.Run(ctx, src, &collectWriter{}, prune.Options{}, discardLogger())
	require.ErrorIs(t, err, context.Canceled)
}
