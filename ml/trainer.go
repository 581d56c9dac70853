package ml

import (
	"encoding/json"
	"math"
	"math/rand"
	"time"

	"fatiguecast/dataset"
)

type TrainConfig struct {
	ModelType string  `yaml:"type" json:"model_type"`
	K         int     `yaml:"k" json:"k,omitempty"`
	MaxDepth  int     `yaml:"max_depth" json:"max_depth,omitempty"`
	TestRatio float64 `yaml:"test_ratio" json:"test_ratio"`
	Seed      int64   `yaml:"seed" json:"seed"`
}

type Evaluation struct {
	Accuracy  float64            `json:"accuracy"`
	Precision map[string]float64 `json:"precision"`
	Recall    map[string]float64 `json:"recall"`
	TestSize  int                `json:"test_size"`
}

type TrainResult struct {
	Model      Model
	Artifact   *Artifact
	Evaluation Evaluation
}

// Train fits a model on a labeled table and wraps it in an artifact.
// The split permutation and every supported model family are deterministic
// for a fixed seed.
func Train(table *dataset.Table, config TrainConfig) (*TrainResult, error) {
	if table == nil || table.Len() == 0 {
		return nil, &TrainingError{Reason: "dataset is empty"}
	}
	labels := table.Labels()
	if labels == nil {
		return nil, &TrainingError{Reason: "dataset has no label column"}
	}

	vectors := table.Vectors()
	stats, err := ComputeStats(vectors)
	if err != nil {
		return nil, &TrainingError{Reason: err.Error()}
	}
	normalized := make([][]float64, len(vectors))
	for i, vector := range vectors {
		normalized[i], err = stats.Normalize(vector)
		if err != nil {
			return nil, &TrainingError{Reason: err.Error()}
		}
	}

	trainX, trainY, testX, testY := splitDataset(normalized, labels, config.TestRatio, config.Seed)
	if len(trainX) == 0 {
		return nil, &TrainingError{Reason: "no training rows after split"}
	}

	model, err := NewModel(config)
	if err != nil {
		return nil, &TrainingError{Reason: err.Error()}
	}
	if err := model.Train(trainX, trainY); err != nil {
		return nil, err
	}

	evaluation := Evaluate(model, table.Schema, testX, testY)

	payload, err := json.Marshal(model)
	if err != nil {
		return nil, &TrainingError{Reason: "serialize model: " + err.Error()}
	}

	artifact := &Artifact{
		ModelType:    model.Name(),
		FeatureNames: append([]string(nil), table.Schema.Features...),
		LabelClasses: append([]string(nil), table.Schema.LabelClasses...),
		Stats:        stats,
		TrainedAt:    time.Now().UTC(),
		DataPoints:   table.Len(),
		Payload:      payload,
	}

	return &TrainResult{Model: model, Artifact: artifact, Evaluation: evaluation}, nil
}

func splitDataset(features [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio < 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

// Evaluate computes accuracy plus per-class precision and recall on a
// held-out set. All zeroes when the set is empty.
func Evaluate(model Model, schema dataset.Schema, testX [][]float64, testY []int) Evaluation {
	evaluation := Evaluation{
		Precision: make(map[string]float64),
		Recall:    make(map[string]float64),
		TestSize:  len(testX),
	}
	if len(testX) == 0 {
		return evaluation
	}

	correct := 0
	truePositive := make(map[int]int)
	predicted := make(map[int]int)
	actual := make(map[int]int)

	for i, features := range testX {
		label, _, err := model.Predict(features)
		if err != nil {
			continue
		}
		if label == testY[i] {
			correct++
			truePositive[label]++
		}
		predicted[label]++
		actual[testY[i]]++
	}

	evaluation.Accuracy = float64(correct) / float64(len(testX))
	for class := range actual {
		name := schema.LabelName(class)
		if predicted[class] > 0 {
			evaluation.Precision[name] = float64(truePositive[class]) / float64(predicted[class])
		}
		evaluation.Recall[name] = float64(truePositive[class]) / float64(actual[class])
	}
	return evaluation
}
