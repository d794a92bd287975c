// Package load reads the standardized wide respirometry CSV layout:
// one row per second with a timestamp, a phase label, and per-chamber
// temperature and DO columns (Temp.1, Ox.1, Temp.2, Ox.2, ...).
//
// Vendor-specific logger formats are not handled here; loggers are expected
// to be exported to this layout first.
package load

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-resp/resp/core"
)

// Errors returned by the readers.
var (
	ErrEmptyFile     = errors.New("load: no data rows")
	ErrColumnLayout  = errors.New("load: header does not match the wide layout")
	ErrUnknownOrder  = errors.New("load: unknown date order")
	ErrMalformedCell = errors.New("load: malformed cell")
)

// Config controls CSV parsing.
type Config struct {
	DateOrder string // "DMY", "MDY", or "YMD"
	Comma     rune
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns sensible defaults: day/month/year dates,
// comma-separated fields.
func DefaultConfig() Config {
	return Config{
		DateOrder: "DMY",
		Comma:     ',',
	}
}

// WithDateOrder sets the day/month/year ordering of timestamps.
func WithDateOrder(order string) Option {
	return func(cfg *Config) {
		if order != "" {
			cfg.DateOrder = order
		}
	}
}

// WithComma sets the field separator.
func WithComma(comma rune) Option {
	return func(cfg *Config) {
		if comma != 0 {
			cfg.Comma = comma
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// layouts maps a date order to its time layout. Separators are normalized
// to '/' before parsing.
var layouts = map[string]string{
	"DMY": "02/01/2006 15:04:05",
	"MDY": "01/02/2006 15:04:05",
	"YMD": "2006/01/02 15:04:05",
}

func parseTime(cell, order string) (time.Time, error) {
	layout, ok := layouts[strings.ToUpper(order)]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownOrder, order)
	}

	normalized := strings.NewReplacer("-", "/", ".", "/").Replace(strings.TrimSpace(cell))

	t, err := time.Parse(layout, normalized)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrMalformedCell, cell, err)
	}

	return t, nil
}

// readWide parses the shared wide layout and returns times, phase labels,
// and per-chamber temperature and DO columns.
func readWide(r io.Reader, cfg Config) ([]time.Time, []string, [][]float64, [][]float64, error) {
	cr := csv.NewReader(r)
	cr.Comma = cfg.Comma
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load: %w", err)
	}

	if len(rows) < 2 {
		return nil, nil, nil, nil, ErrEmptyFile
	}

	header := rows[0]
	if len(header) < 4 || (len(header)-2)%2 != 0 {
		return nil, nil, nil, nil, fmt.Errorf("%w: %d columns", ErrColumnLayout, len(header))
	}

	n := (len(header) - 2) / 2
	if n > core.MaxChambers {
		return nil, nil, nil, nil, fmt.Errorf("%w: %d", core.ErrChamberCount, n)
	}

	data := rows[1:]
	times := make([]time.Time, len(data))
	phases := make([]string, len(data))

	temps := make([][]float64, n)
	dos := make([][]float64, n)

	for c := 0; c < n; c++ {
		temps[c] = make([]float64, len(data))
		dos[c] = make([]float64, len(data))
	}

	for i, row := range data {
		if len(row) != len(header) {
			return nil, nil, nil, nil, fmt.Errorf("%w: row %d has %d columns", ErrColumnLayout, i+2, len(row))
		}

		times[i], err = parseTime(row[0], cfg.DateOrder)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		phases[i] = strings.TrimSpace(row[1])

		for c := 0; c < n; c++ {
			temps[c][i], err = parseFloat(row[2+2*c])
			if err != nil {
				return nil, nil, nil, nil, fmt.Errorf("row %d: %w", i+2, err)
			}

			dos[c][i], err = parseFloat(row[3+2*c])
			if err != nil {
				return nil, nil, nil, nil, fmt.Errorf("row %d: %w", i+2, err)
			}
		}
	}

	return times, phases, temps, dos, nil
}

// parseFloat reads a numeric cell. Empty cells and "NA" become NaN so the
// extractor's missing-value policy can decide what to do with them.
func parseFloat(cell string) (float64, error) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" || strings.EqualFold(trimmed, "NA") {
		return math.NaN(), nil
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCell, cell)
	}

	return v, nil
}

// ReadSeries reads a measurement file into the wide series the corrector
// consumes.
func ReadSeries(r io.Reader, opts ...Option) (*core.Series, error) {
	cfg := ApplyOptions(opts...)

	times, phases, temps, dos, err := readWide(r, cfg)
	if err != nil {
		return nil, err
	}

	series := &core.Series{Time: times, Phase: phases, Temp: temps, DO: dos}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	return series, nil
}

// ReadReference reads a background reference test (pre-test or post-test).
// The phase column is ignored: a reference test is one continuous
// measurement. Elapsed seconds restart at 1 and delta DO is derived against
// each chamber's first reading.
func ReadReference(r io.Reader, opts ...Option) (*core.ReferenceSeries, error) {
	cfg := ApplyOptions(opts...)

	_, _, temps, dos, err := readWide(r, cfg)
	if err != nil {
		return nil, err
	}

	rows := 0
	if len(dos) > 0 {
		rows = len(dos[0])
	}

	seconds := make([]int, rows)
	for i := range seconds {
		seconds[i] = i + 1
	}

	delta := make([][]float64, len(dos))
	for c := range dos {
		delta[c] = make([]float64, rows)
		for i := range dos[c] {
			delta[c][i] = dos[c][i] - dos[c][0]
		}
	}

	ref := &core.ReferenceSeries{Second: seconds, Temp: temps, DO: dos, DeltaDO: delta}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	return ref, nil
}

// ReadChambers reads the chamber metadata table: one row per chamber with
// id, individual, mass (g), volume (mL), and DO unit columns.
func ReadChambers(r io.Reader, opts ...Option) ([]core.Chamber, error) {
	cfg := ApplyOptions(opts...)

	cr := csv.NewReader(r)
	cr.Comma = cfg.Comma
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	if len(rows) < 2 {
		return nil, ErrEmptyFile
	}

	if len(rows[0]) != 5 {
		return nil, fmt.Errorf("%w: chamber table needs 5 columns, has %d", ErrColumnLayout, len(rows[0]))
	}

	chambers := make([]core.Chamber, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if len(row) != 5 {
			return nil, fmt.Errorf("%w: row %d has %d columns", ErrColumnLayout, i+2, len(row))
		}

		mass, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %q", i+2, ErrMalformedCell, row[2])
		}

		volume, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %q", i+2, ErrMalformedCell, row[3])
		}

		chambers = append(chambers, core.Chamber{
			ID:         strings.TrimSpace(row[0]),
			Individual: strings.TrimSpace(row[1]),
			MassG:      mass,
			VolumeML:   volume,
			Unit:       strings.TrimSpace(row[4]),
		})
	}

	return chambers, nil
}
