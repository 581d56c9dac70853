package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fatiguecast/dataset"
)

// Artifact is the persisted output of a training run: the serialized model
// plus everything needed to validate and apply it later. The feature names
// and label classes recorded here are checked against the configured schema
// on load, so a stale artifact fails loudly instead of predicting garbage.
type Artifact struct {
	ModelType    string          `json:"model_type"`
	FeatureNames []string        `json:"feature_names"`
	LabelClasses []string        `json:"label_classes"`
	Stats        *FeatureStats   `json:"stats"`
	TrainedAt    time.Time       `json:"trained_at"`
	DataPoints   int             `json:"data_points"`
	Payload      json.RawMessage `json:"payload"`
}

func (a *Artifact) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func LoadArtifact(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ModelLoadError{Path: path, Reason: "artifact not found"}
		}
		return nil, &ModelLoadError{Path: path, Reason: err.Error()}
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, &ModelLoadError{Path: path, Reason: "corrupt artifact: " + err.Error()}
	}
	if artifact.ModelType == "" || len(artifact.FeatureNames) == 0 || len(artifact.Payload) == 0 {
		return nil, &ModelLoadError{Path: path, Reason: "incomplete artifact"}
	}
	return &artifact, nil
}

// CheckSchema verifies the artifact was trained on the configured feature
// set and label classes, in the same order.
func (a *Artifact) CheckSchema(schema dataset.Schema) error {
	if len(a.FeatureNames) != len(schema.Features) {
		return &ModelLoadError{Reason: fmt.Sprintf(
			"artifact has %d features, schema has %d", len(a.FeatureNames), len(schema.Features))}
	}
	for i, name := range a.FeatureNames {
		if name != schema.Features[i] {
			return &ModelLoadError{Reason: fmt.Sprintf(
				"feature %d is %q in artifact but %q in schema", i, name, schema.Features[i])}
		}
	}
	if len(a.LabelClasses) != len(schema.LabelClasses) {
		return &ModelLoadError{Reason: fmt.Sprintf(
			"artifact has %d label classes, schema has %d", len(a.LabelClasses), len(schema.LabelClasses))}
	}
	for i, class := range a.LabelClasses {
		if class != schema.LabelClasses[i] {
			return &ModelLoadError{Reason: fmt.Sprintf(
				"label class %d is %q in artifact but %q in schema", i, class, schema.LabelClasses[i])}
		}
	}
	return nil
}

func (a *Artifact) openModel() (Model, error) {
	model, err := emptyModel(a.ModelType)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(a.Payload, model); err != nil {
		return nil, &ModelLoadError{Reason: "corrupt model payload: " + err.Error()}
	}
	return model, nil
}
