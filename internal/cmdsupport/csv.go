// Package cmdsupport holds the small amount of glue the cmd/ binaries
// share (CSV bar loading) that does not belong in
// the core. Reading a local bar file for a CLI run is not the data-ingest
// pipeline the spec scopes out; it is a thin convenience so the binaries
// in this repository have something to point at.
package cmdsupport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/bikeshrana/quant-research-platform/internal/quanterrors"
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
)

// LoadBarCSV reads a bar.Series from a CSV file with header
// timestamp,open,high,low,close,volume. timestamp must be RFC3339.
func LoadBarCSV(path, symbol, timeframe string) (bar.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return bar.Series{}, quanterrors.Wrap(quanterrors.ProviderErrorKind, err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return bar.Series{}, quanterrors.Wrap(quanterrors.InvalidInput, err, "read header of %s", path)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return bar.Series{}, quanterrors.Wrap(quanterrors.InvalidInput, err, "%s", path)
	}

	var bars []bar.Bar
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return bar.Series{}, quanterrors.Wrap(quanterrors.InvalidInput, err, "read row of %s", path)
		}
		b, err := parseRow(record, cols)
		if err != nil {
			return bar.Series{}, quanterrors.Wrap(quanterrors.InvalidInput, err, "%s", path)
		}
		bars = append(bars, b)
	}

	series, err := bar.New(symbol, timeframe, bars)
	if err != nil {
		return bar.Series{}, err
	}
	return series, nil
}

type columns struct {
	timestamp, open, high, low, close, volume int
}

func columnIndex(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	c := columns{}
	var ok bool
	for _, field := range []struct {
		name string
		dst  *int
	}{
		{"timestamp", &c.timestamp},
		{"open", &c.open},
		{"high", &c.high},
		{"low", &c.low},
		{"close", &c.close},
		{"volume", &c.volume},
	} {
		*field.dst, ok = idx[field.name]
		if !ok {
			return columns{}, fmt.Errorf("missing required column %q", field.name)
		}
	}
	return c, nil
}

func parseRow(record []string, c columns) (bar.Bar, error) {
	ts, err := time.Parse(time.RFC3339, record[c.timestamp])
	if err != nil {
		return bar.Bar{}, fmt.Errorf("parse timestamp %q: %w", record[c.timestamp], err)
	}
	open, err := strconv.ParseFloat(record[c.open], 64)
	if err != nil {
		return bar.Bar{}, fmt.Errorf("parse open %q: %w", record[c.open], err)
	}
	high, err := strconv.ParseFloat(record[c.high], 64)
	if err != nil {
		return bar.Bar{}, fmt.Errorf("parse high %q: %w", record[c.high], err)
	}
	low, err := strconv.ParseFloat(record[c.low], 64)
	if err != nil {
		return bar.Bar{}, fmt.Errorf("parse low %q: %w", record[c.low], err)
	}
	closePrice, err := strconv.ParseFloat(record[c.close], 64)
	if err != nil {
		return bar.Bar{}, fmt.Errorf("parse close %q: %w", record[c.close], err)
	}
	volume, err := strconv.ParseFloat(record[c.volume], 64)
	if err != nil {
		return bar.Bar{}, fmt.Errorf("parse volume %q: %w", record[c.volume], err)
	}
	return bar.Bar{
		Timestamp: ts.UTC(),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}
