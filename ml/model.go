package ml

import "fmt"

// Model is a trainable classifier over encoded feature vectors. Predict
// returns the class index and a confidence in [0, 1].
type Model interface {
	Train(features [][]float64, labels []int) error
	Predict(features []float64) (int, float64, error)
	Name() string
}

// TrainingError reports that a model could not be fitted: empty input,
// mismatched features/labels, or degenerate data.
type TrainingError struct {
	Reason string
}

func (e *TrainingError) Error() string {
	return "training failed: " + e.Reason
}

// ModelLoadError reports a missing or unusable model artifact, including
// an artifact whose feature schema does not match the configured one.
type ModelLoadError struct {
	Path   string
	Reason string
}

func (e *ModelLoadError) Error() string {
	if e.Path == "" {
		return "model load failed: " + e.Reason
	}
	return fmt.Sprintf("model load failed: %s: %s", e.Path, e.Reason)
}
