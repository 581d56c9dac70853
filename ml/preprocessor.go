package ml

import "errors"

// FeatureStats holds per-column min/max computed on the training set, used
// to scale every vector into [0, 1] before training and prediction.
type FeatureStats struct {
	Mins []float64 `json:"mins"`
	Maxs []float64 `json:"maxs"`
}

func ComputeStats(vectors [][]float64) (*FeatureStats, error) {
	if len(vectors) == 0 {
		return nil, errors.New("vectors is empty")
	}
	width := len(vectors[0])
	stats := &FeatureStats{
		Mins: append([]float64(nil), vectors[0]...),
		Maxs: append([]float64(nil), vectors[0]...),
	}
	for _, vector := range vectors[1:] {
		if len(vector) != width {
			return nil, errors.New("ragged feature vectors")
		}
		for i, value := range vector {
			if value < stats.Mins[i] {
				stats.Mins[i] = value
			}
			if value > stats.Maxs[i] {
				stats.Maxs[i] = value
			}
		}
	}
	return stats, nil
}

func (s *FeatureStats) Normalize(vector []float64) ([]float64, error) {
	return NormalizeVector(vector, s.Mins, s.Maxs)
}

func NormalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}

func NormalizeVector(values []float64, mins []float64, maxs []float64) ([]float64, error) {
	if len(values) != len(mins) || len(values) != len(maxs) {
		return nil, errors.New("values/mins/maxs length mismatch")
	}
	result := make([]float64, len(values))
	for i := range values {
		result[i] = NormalizeFeature(values[i], mins[i], maxs[i])
	}
	return result, nil
}
