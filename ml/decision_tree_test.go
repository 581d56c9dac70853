package ml

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecisionTreeTrainPredict(t *testing.T) {
	features := [][]float64{
		{0.1, 0.2},
		{0.2, 0.1},
		{0.9, 0.8},
		{0.8, 0.9},
	}
	labels := []int{0, 0, 2, 2}

	model := NewDecisionTree(2)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, confidence, err := model.Predict([]float64{0.15, 0.15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	if confidence <= 0 {
		t.Fatalf("expected confidence > 0")
	}
}

func TestDecisionTreePureLeafConfidence(t *testing.T) {
	features := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}}
	labels := []int{0, 0, 1, 1}

	model := NewDecisionTree(3)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, confidence, err := model.Predict([]float64{0.1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confidence != 1 {
		t.Fatalf("expected confidence 1 for pure leaf, got %v", confidence)
	}
}

func TestDecisionTreeMultiLevelSplits(t *testing.T) {
	// Three classes force an internal node inside a subtree, so child
	// indices must survive the subtree concatenation.
	features := [][]float64{{0.0}, {0.1}, {0.2}, {0.3}, {0.8}, {0.9}}
	labels := []int{0, 0, 1, 1, 2, 2}

	model := NewDecisionTree(6)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, vector := range features {
		done := make(chan struct{})
		var label int
		var err error
		go func() {
			label, _, err = model.Predict(vector)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("Predict(%v) did not return", vector)
		}
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", vector, err)
		}
		if label != labels[i] {
			t.Fatalf("Predict(%v) = %d, expected %d", vector, label, labels[i])
		}
	}
}

func TestDecisionTreeSerializationRoundTrip(t *testing.T) {
	features := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}}
	labels := []int{0, 0, 1, 1}

	model := NewDecisionTree(3)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload, err := json.Marshal(model)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored := &DecisionTree{}
	if err := json.Unmarshal(payload, restored); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, _, err := restored.Predict([]float64{0.85})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1 after round trip, got %d", label)
	}
}
