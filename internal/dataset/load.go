package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Column headers of the input table, matched case-insensitively.
const (
	ColYear        = "Year"
	ColRGDP        = "RGDP"
	ColCPI         = "CPI"
	ColRate        = "i"
	ColExchange    = "e"
	ColForeignRate = "i_foreign"
	ColForeignCPI  = "CPI_foreign"
	ColNDA         = "NDA"
)

// Columns lists every required header in canonical order.
var Columns = []string{ColYear, ColRGDP, ColCPI, ColRate, ColExchange, ColForeignRate, ColForeignCPI, ColNDA}

// LoadCSV opens path and parses it with Load.
func LoadCSV(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Load reads a CSV table with one row per year. Column order is free and
// extra columns are ignored.
func Load(r io.Reader) (*Series, error) {
	obs, err := ReadObservations(r)
	if err != nil {
		return nil, err
	}
	return New(obs)
}

// ReadObservations parses the raw rows without transforming them.
func ReadObservations(r io.Reader) ([]Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrInvalidData)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var obs []Observation
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++
		if len(record) != len(header) {
			return nil, &RowError{Row: row, Column: "*",
				Err: fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidData, len(header), len(record))}
		}

		o, err := parseRecord(row, record, index)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}

	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrInvalidData)
	}
	return obs, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(Columns))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, c := range Columns {
			if strings.EqualFold(name, c) {
				index[c] = i
			}
		}
	}

	var missing []string
	for _, c := range Columns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrInvalidData, strings.Join(missing, ", "))
	}
	return index, nil
}

func parseRecord(row int, record []string, index map[string]int) (Observation, error) {
	var o Observation

	yearStr := strings.TrimSpace(record[index[ColYear]])
	yearVal, err := strconv.ParseFloat(yearStr, 64)
	if err != nil || yearVal != math.Trunc(yearVal) {
		return o, &RowError{Row: row, Column: ColYear,
			Err: fmt.Errorf("%w: invalid year %q", ErrInvalidData, yearStr)}
	}
	o.Year = int(yearVal)

	fields := []struct {
		column string
		dst    *float64
	}{
		{ColRGDP, &o.RGDP},
		{ColCPI, &o.CPI},
		{ColRate, &o.Rate},
		{ColExchange, &o.Exchange},
		{ColForeignRate, &o.ForeignRate},
		{ColForeignCPI, &o.ForeignCPI},
		{ColNDA, &o.NDA},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(record[index[f.column]])
		if raw == "" {
			return o, &RowError{Row: row, Year: o.Year, Column: f.column,
				Err: fmt.Errorf("%w: missing value", ErrInvalidData)}
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return o, &RowError{Row: row, Year: o.Year, Column: f.column,
				Err: fmt.Errorf("%w: parse %q: %v", ErrInvalidData, raw, err)}
		}
		*f.dst = v
	}
	return o, nil
}
