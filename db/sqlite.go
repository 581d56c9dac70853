package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"fatiguecast/dataset"
	"fatiguecast/ml"
	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB initializes the SQLite database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS observations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        features TEXT NOT NULL,
        label VARCHAR(50),
        source VARCHAR(100),
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        label VARCHAR(50) NOT NULL,
        class_index INTEGER NOT NULL,
        confidence REAL NOT NULL,
        features TEXT NOT NULL,
        source VARCHAR(50),
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50),
        accuracy REAL,
        precision REAL,
        recall REAL,
        trained_at DATETIME,
        data_points INTEGER
    );
    `

	_, err = database.Exec(query)
	return err
}

// Close closes the database handle
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// SaveObservations stores every row of a loaded table, feature values
// keyed by column name so the stored rows survive schema changes.
func SaveObservations(table *dataset.Table, source string) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if table.Len() == 0 {
		return nil
	}

	stmt, err := database.Prepare(`
        INSERT INTO observations (features, label, source) VALUES (?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, obs := range table.Observations {
		features := make(map[string]float64, len(table.Schema.Features))
		for i, name := range table.Schema.Features {
			features[name] = obs.Values[i]
		}
		payload, err := json.Marshal(features)
		if err != nil {
			return err
		}
		label := ""
		if obs.HasLabel {
			label = table.Schema.LabelName(obs.Label)
		}
		if _, err := stmt.Exec(string(payload), label, source); err != nil {
			return err
		}
	}
	return nil
}

// PredictionRecord is one persisted prediction.
type PredictionRecord struct {
	Label      string             `json:"label"`
	ClassIndex int                `json:"class_index"`
	Confidence float64            `json:"confidence"`
	Features   map[string]float64 `json:"features"`
	Source     string             `json:"source"`
	CreatedAt  time.Time          `json:"created_at"`
}

func SavePrediction(features map[string]float64, prediction ml.Prediction, source string) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	payload, err := json.Marshal(features)
	if err != nil {
		return err
	}
	_, err = database.Exec(`
        INSERT INTO predictions (label, class_index, confidence, features, source, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		prediction.Label, prediction.ClassIndex, prediction.Confidence,
		string(payload), source, time.Now().UTC())
	return err
}

func RecentPredictions(limit int) ([]PredictionRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := database.Query(`
        SELECT label, class_index, confidence, features, source, created_at
        FROM predictions
        ORDER BY created_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var record PredictionRecord
		var features string
		if err := rows.Scan(&record.Label, &record.ClassIndex, &record.Confidence,
			&features, &record.Source, &record.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(features), &record.Features); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type TrainingLog struct {
	ModelName  string    `json:"model_name"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	TrainedAt  time.Time `json:"trained_at"`
	DataPoints int       `json:"data_points"`
}

// RecordTraining stores one training run with macro-averaged precision
// and recall.
func RecordTraining(result *ml.TrainResult) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_log (model_name, accuracy, precision, recall, trained_at, data_points)
        VALUES (?, ?, ?, ?, ?, ?)`,
		result.Artifact.ModelType,
		result.Evaluation.Accuracy,
		macroAverage(result.Evaluation.Precision),
		macroAverage(result.Evaluation.Recall),
		result.Artifact.TrainedAt,
		result.Artifact.DataPoints,
	)
	return err
}

func LoadTrainingLog() ([]TrainingLog, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT model_name, accuracy, precision, recall, trained_at, data_points
        FROM training_log
        ORDER BY trained_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		if err := rows.Scan(&log.ModelName, &log.Accuracy, &log.Precision, &log.Recall, &log.TrainedAt, &log.DataPoints); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func macroAverage(values map[string]float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}
