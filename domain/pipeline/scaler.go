package pipeline

import "github.com/montanaflynn/stats"

// StandardScaler standardizes a numeric column to zero mean and unit
// variance using fit-time statistics. A constant column scales to zero.
type StandardScaler struct {
	Mean   float64
	Std    float64
	Fitted bool
}

// Fit records the column mean and population standard deviation.
func (s *StandardScaler) Fit(values []float64) {
	mean, err := stats.Mean(values)
	if err == nil {
		s.Mean = mean
	}
	std, err := stats.StandardDeviation(values)
	if err == nil {
		s.Std = std
	}
	if s.Std == 0 {
		s.Std = 1
	}
	s.Fitted = true
}

// Transform standardizes values with the frozen fit-time statistics.
func (s *StandardScaler) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.Mean) / s.Std
	}
	return out
}
