package ml

import "fmt"

const (
	ModelTypeKNN          = "knn"
	ModelTypeDecisionTree = "decision_tree"
)

func NewModel(config TrainConfig) (Model, error) {
	switch config.ModelType {
	case ModelTypeKNN, "":
		return NewKNN(config.K), nil
	case ModelTypeDecisionTree:
		return NewDecisionTree(config.MaxDepth), nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", config.ModelType)
	}
}

func emptyModel(modelType string) (Model, error) {
	switch modelType {
	case ModelTypeKNN:
		return &KNN{}, nil
	case ModelTypeDecisionTree:
		return &DecisionTree{}, nil
	default:
		return nil, &ModelLoadError{Reason: fmt.Sprintf("unsupported model type %q", modelType)}
	}
}
