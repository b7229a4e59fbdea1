package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"urbansense/internal/features"
)

var csvHeader = append([]string{"latitude", "longitude", "label"}, features.Names...)

// WriteCSV persists samples as a flat tabular file, one row per sample.
func WriteCSV(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating dataset file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("error writing dataset header: %w", err)
	}

	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.Latitude, 'f', -1, 64),
			strconv.FormatFloat(s.Longitude, 'f', -1, 64),
			s.Label,
		}
		for _, v := range s.Features.Values() {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("error writing dataset row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadCSV loads a dataset file. Columns are resolved by header name, and
// missing or unparsable feature values are imputed as 0.
func ReadCSV(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening dataset file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading dataset file %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset file %s has no samples", path)
	}

	colIdx := map[string]int{}
	for i, name := range records[0] {
		colIdx[name] = i
	}
	for _, required := range []string{"latitude", "longitude", "label"} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("dataset file %s is missing column %q", path, required)
		}
	}

	samples := make([]Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		values := make([]float64, len(features.Names))
		for i, name := range features.Names {
			values[i] = floatColumn(record, colIdx, name)
		}
		vector, err := features.FromValues(values)
		if err != nil {
			return nil, err
		}

		samples = append(samples, Sample{
			Latitude:  floatColumn(record, colIdx, "latitude"),
			Longitude: floatColumn(record, colIdx, "longitude"),
			Label:     record[colIdx["label"]],
			Features:  vector,
		})
	}
	return samples, nil
}

func floatColumn(record []string, colIdx map[string]int, name string) float64 {
	idx, ok := colIdx[name]
	if !ok || idx >= len(record) {
		return 0
	}
	v, err := strconv.ParseFloat(record[idx], 64)
	if err != nil {
		return 0
	}
	return v
}
