package ml

import (
	"fmt"

	"fatiguecast/dataset"
)

// Prediction is the result for one observation. Ephemeral unless the
// caller persists it.
type Prediction struct {
	ClassIndex int     `json:"class_index"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Predictor applies a loaded artifact to raw (unnormalized) feature
// vectors. Safe for concurrent use: the model is read-only after load.
type Predictor struct {
	artifact *Artifact
	model    Model
}

func NewPredictor(artifact *Artifact) (*Predictor, error) {
	model, err := artifact.openModel()
	if err != nil {
		return nil, err
	}
	if artifact.Stats == nil {
		return nil, &ModelLoadError{Reason: "artifact has no feature stats"}
	}
	return &Predictor{artifact: artifact, model: model}, nil
}

// OpenPredictor loads an artifact from disk and validates it against the
// configured schema.
func OpenPredictor(path string, schema dataset.Schema) (*Predictor, error) {
	artifact, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	if err := artifact.CheckSchema(schema); err != nil {
		return nil, err
	}
	return NewPredictor(artifact)
}

func (p *Predictor) Artifact() *Artifact {
	return p.artifact
}

func (p *Predictor) Predict(raw []float64) (Prediction, error) {
	if len(raw) != len(p.artifact.FeatureNames) {
		return Prediction{}, &ModelLoadError{Reason: fmt.Sprintf(
			"observation has %d features, model expects %d", len(raw), len(p.artifact.FeatureNames))}
	}
	normalized, err := p.artifact.Stats.Normalize(raw)
	if err != nil {
		return Prediction{}, err
	}
	class, confidence, err := p.model.Predict(normalized)
	if err != nil {
		return Prediction{}, err
	}
	label := fmt.Sprintf("class_%d", class)
	if class >= 0 && class < len(p.artifact.LabelClasses) {
		label = p.artifact.LabelClasses[class]
	}
	return Prediction{ClassIndex: class, Label: label, Confidence: confidence}, nil
}

// PredictTable returns one prediction per observation.
func (p *Predictor) PredictTable(table *dataset.Table) ([]Prediction, error) {
	if len(table.Schema.Features) != len(p.artifact.FeatureNames) {
		return nil, &ModelLoadError{Reason: fmt.Sprintf(
			"table has %d features, model expects %d", len(table.Schema.Features), len(p.artifact.FeatureNames))}
	}
	predictions := make([]Prediction, 0, table.Len())
	for _, obs := range table.Observations {
		prediction, err := p.Predict(obs.Values)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, prediction)
	}
	return predictions, nil
}
