package ml

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"fatiguecast/dataset"
)

func fatigueSchema() dataset.Schema {
	return dataset.Schema{
		Features:     []string{"decisions_made", "sleep_hours", "task_switches"},
		LabelColumn:  "fatigue_label",
		LabelClasses: []string{"high", "low", "moderate"},
	}
}

func fatigueTable(t *testing.T) *dataset.Table {
	t.Helper()
	csv := "decisions_made,sleep_hours,task_switches,fatigue_label\n" +
		"40,6,12,high\n" +
		"10,8,2,low\n" +
		"25,7,6,moderate\n"
	table, err := dataset.ReadCSV(strings.NewReader(csv), "inline", fatigueSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

func TestTrainSaveLoadPredict(t *testing.T) {
	table := fatigueTable(t)
	config := TrainConfig{ModelType: ModelTypeKNN, K: 1, TestRatio: 0, Seed: 42}

	result, err := Train(table, config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Artifact.DataPoints != 3 {
		t.Fatalf("expected 3 data points, got %d", result.Artifact.DataPoints)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := result.Artifact.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	predictor, err := OpenPredictor(path, table.Schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prediction, err := predictor.Predict([]float64{38, 6, 11})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prediction.Label != "high" {
		t.Fatalf("expected label high, got %q", prediction.Label)
	}
	if prediction.Confidence <= 0 || prediction.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", prediction.Confidence)
	}
}

func TestTrainDeterministic(t *testing.T) {
	table := fatigueTable(t)
	config := TrainConfig{ModelType: ModelTypeKNN, K: 1, TestRatio: 0, Seed: 42}

	var first Prediction
	for i := 0; i < 5; i++ {
		result, err := Train(table, config)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		predictor, err := NewPredictor(result.Artifact)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		prediction, err := predictor.Predict([]float64{38, 6, 11})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i == 0 {
			first = prediction
			continue
		}
		if prediction != first {
			t.Fatalf("run %d diverged: %+v vs %+v", i, prediction, first)
		}
	}
}

func TestTrainDecisionTree(t *testing.T) {
	table := fatigueTable(t)
	config := TrainConfig{ModelType: ModelTypeDecisionTree, MaxDepth: 4, TestRatio: 0, Seed: 7}

	result, err := Train(table, config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Artifact.ModelType != ModelTypeDecisionTree {
		t.Fatalf("expected model type %q, got %q", ModelTypeDecisionTree, result.Artifact.ModelType)
	}
	predictor, err := NewPredictor(result.Artifact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := predictor.Predict([]float64{38, 6, 11}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTrainEmptyDataset(t *testing.T) {
	table := &dataset.Table{Schema: fatigueSchema()}
	_, err := Train(table, TrainConfig{ModelType: ModelTypeKNN, K: 1})
	var trainErr *TrainingError
	if !errors.As(err, &trainErr) {
		t.Fatalf("expected TrainingError, got %v", err)
	}
}

func TestTrainUnlabeledDataset(t *testing.T) {
	table := &dataset.Table{
		Schema: fatigueSchema(),
		Observations: []dataset.Observation{
			{Values: []float64{40, 6, 12}},
			{Values: []float64{10, 8, 2}},
		},
	}
	_, err := Train(table, TrainConfig{ModelType: ModelTypeKNN, K: 1})
	var trainErr *TrainingError
	if !errors.As(err, &trainErr) {
		t.Fatalf("expected TrainingError, got %v", err)
	}
}

func TestTrainUnknownModelType(t *testing.T) {
	table := fatigueTable(t)
	_, err := Train(table, TrainConfig{ModelType: "svm"})
	var trainErr *TrainingError
	if !errors.As(err, &trainErr) {
		t.Fatalf("expected TrainingError, got %v", err)
	}
}

func TestOpenPredictorSchemaMismatch(t *testing.T) {
	table := fatigueTable(t)
	result, err := Train(table, TrainConfig{ModelType: ModelTypeKNN, K: 1, TestRatio: 0, Seed: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := result.Artifact.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := fatigueSchema()
	other.Features = []string{"decisions_made", "sleep_hours"}
	_, err = OpenPredictor(path, other)
	var loadErr *ModelLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected ModelLoadError, got %v", err)
	}
}

func TestOpenPredictorMissingArtifact(t *testing.T) {
	_, err := OpenPredictor(filepath.Join(t.TempDir(), "missing.json"), fatigueSchema())
	var loadErr *ModelLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected ModelLoadError, got %v", err)
	}
}

func TestEvaluateHoldout(t *testing.T) {
	csv := "decisions_made,sleep_hours,task_switches,fatigue_label\n"
	rows := []string{
		"40,6,12,high", "42,5,13,high", "39,6,11,high", "41,5,12,high",
		"10,8,2,low", "9,9,1,low", "11,8,3,low", "10,9,2,low",
		"25,7,6,moderate", "24,7,7,moderate", "26,7,6,moderate", "25,8,7,moderate",
	}
	table, err := dataset.ReadCSV(strings.NewReader(csv+strings.Join(rows, "\n")+"\n"), "inline", fatigueSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := Train(table, TrainConfig{ModelType: ModelTypeKNN, K: 3, TestRatio: 0.25, Seed: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Evaluation.TestSize != 3 {
		t.Fatalf("expected 3 held-out rows, got %d", result.Evaluation.TestSize)
	}
	if result.Evaluation.Accuracy < 0 || result.Evaluation.Accuracy > 1 {
		t.Fatalf("accuracy out of range: %v", result.Evaluation.Accuracy)
	}
}
