package http

import (
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"fatiguecast/dataset"
	"fatiguecast/db"
	"fatiguecast/ml"
)

type TrainingConfig struct {
	DataPath  string         `yaml:"data_path" json:"data_path"`
	ModelPath string         `yaml:"model_path" json:"model_path"`
	Clean     bool           `yaml:"clean" json:"clean"`
	Train     ml.TrainConfig `yaml:"train" json:"train"`
}

// TrainModel runs the full training pipeline: load, optionally clean,
// fit, persist the artifact and record the run.
func TrainModel(schema dataset.Schema, config TrainingConfig) (*ml.TrainResult, error) {
	if config.DataPath == "" {
		return nil, errors.New("data path is required")
	}
	if config.ModelPath == "" {
		return nil, errors.New("model path is required")
	}

	table, err := dataset.LoadCSV(config.DataPath, schema)
	if err != nil {
		return nil, err
	}

	if config.Clean {
		cleaner := dataset.NewCleaner()
		cleaned, issues := cleaner.Clean(table)
		if len(issues) > 0 {
			zap.S().Warnw("dataset rows rejected during cleaning",
				"rejected", table.Len()-cleaned.Len(), "kept", cleaned.Len())
		}
		table = cleaned
	}

	result, err := ml.Train(table, config.Train)
	if err != nil {
		return nil, err
	}

	if err := result.Artifact.Save(config.ModelPath); err != nil {
		return nil, err
	}

	if err := db.SaveObservations(table, filepath.Base(config.DataPath)); err != nil {
		zap.S().Debugw("observations not persisted", "err", err)
	}
	if err := db.RecordTraining(result); err != nil {
		zap.S().Debugw("training run not recorded", "err", err)
	}

	zap.S().Infow("model trained",
		"model", result.Artifact.ModelType,
		"rows", result.Artifact.DataPoints,
		"accuracy", result.Evaluation.Accuracy,
		"test_size", result.Evaluation.TestSize,
		"artifact", config.ModelPath,
	)

	return result, nil
}
