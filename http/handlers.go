package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"fatiguecast/dataset"
	"fatiguecast/db"
	"fatiguecast/ml"
	"fatiguecast/monitoring"
)

var (
	predictorService *PredictorService
	wsHub            *monitoring.WebSocketHub

	defaultTraining TrainingConfig
	trainMu         sync.Mutex
)

func SetPredictorService(service *PredictorService) {
	predictorService = service
}

func SetHub(hub *monitoring.WebSocketHub) {
	wsHub = hub
}

func SetTrainingConfig(config TrainingConfig) {
	defaultTraining = config
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/schema", handleSchema)
	mux.HandleFunc("GET /api/model", handleModelInfo)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("POST /api/predict/batch", handlePredictBatch)
	mux.HandleFunc("GET /api/predictions", handleRecentPredictions)
	mux.HandleFunc("GET /api/training/log", handleTrainingLog)
	mux.HandleFunc("POST /api/train", handleTrain)
	mux.HandleFunc("GET /api/ws/dashboard", handleDashboardWS)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func handleSchema(w http.ResponseWriter, r *http.Request) {
	if predictorService == nil {
		http.Error(w, `{"error":"service not initialized"}`, http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, predictorService.Schema())
}

func handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if predictorService == nil {
		http.Error(w, `{"error":"service not initialized"}`, http.StatusServiceUnavailable)
		return
	}
	artifact, err := predictorService.Artifact()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, map[string]interface{}{
		"model_type":    artifact.ModelType,
		"feature_names": artifact.FeatureNames,
		"label_classes": artifact.LabelClasses,
		"trained_at":    artifact.TrainedAt,
		"data_points":   artifact.DataPoints,
	})
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	if predictorService == nil {
		http.Error(w, `{"error":"service not initialized"}`, http.StatusServiceUnavailable)
		return
	}

	var row map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	prediction, err := predictorService.Predict(row)
	if err != nil {
		respondError(w, err)
		return
	}
	zap.S().Debugw("prediction served",
		"id", GetRequestID(r.Context()),
		"label", prediction.Label,
		"confidence", prediction.Confidence,
	)

	respondJSON(w, predictionResponse(prediction))
}

func handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	if predictorService == nil {
		http.Error(w, `{"error":"service not initialized"}`, http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Rows []map[string]interface{} `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if len(req.Rows) == 0 {
		http.Error(w, `{"error":"rows is empty"}`, http.StatusBadRequest)
		return
	}

	results := make([]map[string]interface{}, 0, len(req.Rows))
	for _, row := range req.Rows {
		prediction, err := predictorService.Predict(row)
		if err != nil {
			respondError(w, err)
			return
		}
		results = append(results, predictionResponse(prediction))
	}

	respondJSON(w, map[string]interface{}{
		"predictions": results,
		"count":       len(results),
	})
}

func handleRecentPredictions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	records, err := db.RecentPredictions(limit)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]interface{}{
		"predictions": records,
		"count":       len(records),
	})
}

func handleTrainingLog(w http.ResponseWriter, r *http.Request) {
	logs, err := db.LoadTrainingLog()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]interface{}{
		"runs":  logs,
		"count": len(logs),
	})
}

func handleTrain(w http.ResponseWriter, r *http.Request) {
	if predictorService == nil {
		http.Error(w, `{"error":"service not initialized"}`, http.StatusServiceUnavailable)
		return
	}
	if defaultTraining.DataPath == "" {
		http.Error(w, `{"error":"no training dataset configured"}`, http.StatusServiceUnavailable)
		return
	}

	config := defaultTraining
	if r.ContentLength > 0 {
		var overrides ml.TrainConfig
		if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if overrides.ModelType != "" {
			config.Train.ModelType = overrides.ModelType
		}
		if overrides.K > 0 {
			config.Train.K = overrides.K
		}
		if overrides.MaxDepth > 0 {
			config.Train.MaxDepth = overrides.MaxDepth
		}
		if overrides.TestRatio > 0 && overrides.TestRatio < 1 {
			config.Train.TestRatio = overrides.TestRatio
		}
		if overrides.Seed != 0 {
			config.Train.Seed = overrides.Seed
		}
	}

	// Only one training run at a time; the artifact is a single file.
	trainMu.Lock()
	defer trainMu.Unlock()

	result, err := TrainModel(predictorService.Schema(), config)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := predictorService.Reload(); err != nil {
		respondError(w, err)
		return
	}

	if wsHub != nil {
		wsHub.Publish(monitoring.TrainingEvent, result.Evaluation)
	}

	respondJSON(w, map[string]interface{}{
		"model_type":  result.Artifact.ModelType,
		"data_points": result.Artifact.DataPoints,
		"trained_at":  result.Artifact.TrainedAt,
		"evaluation":  result.Evaluation,
	})
}

func handleDashboardWS(w http.ResponseWriter, r *http.Request) {
	if wsHub == nil {
		http.Error(w, `{"error":"websocket hub not initialized"}`, http.StatusServiceUnavailable)
		return
	}
	wsHub.HandleWebSocket(w, r)
}

func predictionResponse(prediction ml.Prediction) map[string]interface{} {
	return map[string]interface{}{
		"label":         prediction.Label,
		"display_label": displayLabel(prediction.Label),
		"class_index":   prediction.ClassIndex,
		"confidence":    prediction.Confidence,
		"advice":        adviceFor(prediction.Label),
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var formatErr *dataset.FormatError
	var loadErr *ml.ModelLoadError
	var trainErr *ml.TrainingError
	switch {
	case errors.As(err, &formatErr):
		status = http.StatusBadRequest
	case errors.As(err, &loadErr):
		status = http.StatusServiceUnavailable
	case errors.As(err, &trainErr):
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// respondJSON 统一JSON响应
func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.S().Warnw("failed to encode response", "err", err)
	}
}
