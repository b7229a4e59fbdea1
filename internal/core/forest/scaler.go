package forest

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers features to zero mean and unit variance, fitted on
// the training split only.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

func FitScaler(rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty dataset")
	}

	dims := len(rows[0])
	scaler := &StandardScaler{
		Mean: make([]float64, dims),
		Std:  make([]float64, dims),
	}

	column := make([]float64, len(rows))
	for d := 0; d < dims; d++ {
		for i, row := range rows {
			column[i] = row[d]
		}
		mean, std := stat.MeanStdDev(column, nil)
		if std == 0 {
			// Constant feature, leave it centered but unscaled.
			std = 1
		}
		scaler.Mean[d] = mean
		scaler.Std[d] = std
	}

	return scaler, nil
}

// Transform returns a scaled copy of the input row.
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - s.Mean[i]) / s.Std[i]
	}
	return out
}

func (s *StandardScaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}
