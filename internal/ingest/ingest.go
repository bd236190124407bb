// Package ingest loads population data from CSV and JSON sources into the
// generic row form the sampling engine consumes.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/auditsample/internal/sampling"
	"github.com/banshee-data/auditsample/internal/security"
)

// ReadCSV parses CSV data into rows. The first record is treated as the
// header. Cell values that parse as numbers become float64 so numeric
// stratification fields normalize consistently; everything else stays a
// trimmed string. Empty cells become nil so they collapse into the missing
// value stratum.
func ReadCSV(r io.Reader) ([]sampling.Row, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var rows []sampling.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row %d: %w", len(rows)+2, err)
		}

		row := make(sampling.Row, len(headers))
		for i, val := range record {
			if i >= len(headers) {
				break
			}
			val = strings.TrimSpace(val)
			switch {
			case val == "":
				row[headers[i]] = nil
			default:
				if f, err := strconv.ParseFloat(val, 64); err == nil {
					row[headers[i]] = f
				} else {
					row[headers[i]] = val
				}
			}
		}
		rows = append(rows, row)
	}

	return rows, headers, nil
}

// ReadJSON parses a JSON array of objects into rows.
func ReadJSON(r io.Reader) ([]sampling.Row, error) {
	var rows []sampling.Row
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse JSON rows: %w", err)
	}
	return rows, nil
}

// LoadFile reads a population file from disk. The path must resolve inside
// dataDir and carry a .csv or .json extension. maxBytes guards against
// accidentally loading oversized files; pass 0 for no limit.
func LoadFile(path, dataDir string, maxBytes int64) ([]sampling.Row, error) {
	cleanPath := filepath.Clean(path)

	if err := security.ValidatePathWithinDirectory(cleanPath, dataDir); err != nil {
		return nil, err
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat population file: %w", err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("population file too large: %d bytes (max %d)", info.Size(), maxBytes)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open population file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(cleanPath)); ext {
	case ".csv":
		rows, _, err := ReadCSV(f)
		return rows, err
	case ".json":
		return ReadJSON(f)
	default:
		return nil, fmt.Errorf("unsupported population file extension %q (want .csv or .json)", ext)
	}
}
