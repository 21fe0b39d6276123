package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/spboyer/safegrade/internal/models"
)

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers (column names).
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := records[0]
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = record[j]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// RosterEntry is one vehicle line in a roster file: a make/model plus the
// model years the generator may sample from.
type RosterEntry struct {
	Make  string
	Model string
	Years []string
}

// LoadRoster reads a vehicle roster CSV with make, model and years columns,
// years being a pipe-separated list (e.g. "2020|2021|2022").
func LoadRoster(path string) ([]RosterEntry, error) {
	rows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}

	entries := make([]RosterEntry, 0, len(rows))
	for i, row := range rows {
		entry := RosterEntry{
			Make:  strings.TrimSpace(row["make"]),
			Model: strings.TrimSpace(row["model"]),
		}
		if entry.Make == "" || entry.Model == "" {
			return nil, fmt.Errorf("csv: roster row %d is missing make or model", i+2)
		}
		for _, y := range strings.Split(row["years"], "|") {
			if y = strings.TrimSpace(y); y != "" {
				entry.Years = append(entry.Years, y)
			}
		}
		if len(entry.Years) == 0 {
			return nil, fmt.Errorf("csv: roster row %d (%s %s) has no years", i+2, entry.Make, entry.Model)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Vehicles expands a roster entry into one Vehicle per year.
func (e RosterEntry) Vehicles() []models.Vehicle {
	out := make([]models.Vehicle, 0, len(e.Years))
	for _, y := range e.Years {
		out = append(out, models.Vehicle{Make: e.Make, Model: e.Model, Year: y})
	}
	return out
}
