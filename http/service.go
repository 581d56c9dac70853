package http

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"fatiguecast/dataset"
	"fatiguecast/db"
	"fatiguecast/ml"
	"fatiguecast/monitoring"
)

const predictionCacheSize = 1024

// PredictorService owns the loaded model artifact. The predictor is
// swapped atomically on reload, so in-flight predictions always see a
// consistent model. Identical observations are served from an LRU cache
// that is purged on every reload.
type PredictorService struct {
	schema       dataset.Schema
	artifactPath string
	hub          *monitoring.WebSocketHub

	mu        sync.RWMutex
	predictor *ml.Predictor

	cache *lru.Cache[string, ml.Prediction]
}

func NewPredictorService(schema dataset.Schema, artifactPath string, hub *monitoring.WebSocketHub) (*PredictorService, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	cache, err := lru.New[string, ml.Prediction](predictionCacheSize)
	if err != nil {
		return nil, err
	}
	return &PredictorService{
		schema:       schema,
		artifactPath: artifactPath,
		hub:          hub,
		cache:        cache,
	}, nil
}

func (s *PredictorService) Schema() dataset.Schema {
	return s.schema
}

func (s *PredictorService) ArtifactPath() string {
	return s.artifactPath
}

// Reload loads the artifact from disk and swaps it in. The prediction
// cache is invalidated because cached results belong to the old model.
func (s *PredictorService) Reload() error {
	predictor, err := ml.OpenPredictor(s.artifactPath, s.schema)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.predictor = predictor
	s.mu.Unlock()
	s.cache.Purge()

	artifact := predictor.Artifact()
	zap.S().Infow("model loaded",
		"path", s.artifactPath,
		"type", artifact.ModelType,
		"trained_at", artifact.TrainedAt,
		"data_points", artifact.DataPoints,
	)
	if s.hub != nil {
		s.hub.Publish(monitoring.ModelReloaded, map[string]interface{}{
			"model_type":  artifact.ModelType,
			"trained_at":  artifact.TrainedAt,
			"data_points": artifact.DataPoints,
		})
	}
	return nil
}

func (s *PredictorService) Artifact() (*ml.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.predictor == nil {
		return nil, &ml.ModelLoadError{Path: s.artifactPath, Reason: "no model loaded"}
	}
	return s.predictor.Artifact(), nil
}

// Predict encodes one observation row, applies the loaded model, stores
// the result and pushes it to connected dashboard clients.
func (s *PredictorService) Predict(row map[string]interface{}) (ml.Prediction, error) {
	vector, err := dataset.EncodeRow(&s.schema, row)
	if err != nil {
		return ml.Prediction{}, err
	}

	key := vectorKey(vector)
	if prediction, ok := s.cache.Get(key); ok {
		return prediction, nil
	}

	s.mu.RLock()
	predictor := s.predictor
	s.mu.RUnlock()
	if predictor == nil {
		return ml.Prediction{}, &ml.ModelLoadError{Path: s.artifactPath, Reason: "no model loaded"}
	}

	prediction, err := predictor.Predict(vector)
	if err != nil {
		return ml.Prediction{}, err
	}
	s.cache.Add(key, prediction)

	features := make(map[string]float64, len(s.schema.Features))
	for i, name := range s.schema.Features {
		features[name] = vector[i]
	}
	if err := db.SavePrediction(features, prediction, "api"); err != nil {
		zap.S().Debugw("prediction not persisted", "err", err)
	}
	if s.hub != nil {
		s.hub.Publish(monitoring.PredictionEvent, map[string]interface{}{
			"label":      prediction.Label,
			"confidence": prediction.Confidence,
			"features":   features,
		})
	}

	return prediction, nil
}

func vectorKey(vector []float64) string {
	var b strings.Builder
	for _, value := range vector {
		fmt.Fprintf(&b, "%.9g|", value)
	}
	return b.String()
}
