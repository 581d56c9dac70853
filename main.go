package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"fatiguecast/dataset"
	"fatiguecast/db"
	qhttp "fatiguecast/http"
	"fatiguecast/logging"
	"fatiguecast/ml"
	"fatiguecast/monitoring"
)

type Config struct {
	Dataset struct {
		Path   string         `yaml:"path"`
		Clean  bool           `yaml:"clean"`
		Schema dataset.Schema `yaml:"schema"`
	} `yaml:"dataset"`
	Model struct {
		Path           string `yaml:"path"`
		ml.TrainConfig `yaml:",inline"`
	} `yaml:"model"`
	Http     qhttp.ServerConfig `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log logging.Config `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logging
	logger, err := logging.Setup(config.Log)
	if err != nil {
		panic("failed to initialize logging: " + err.Error())
	}
	defer logger.Sync()

	// 3. Initialize database
	if err := db.InitDB(config.Database.Path); err != nil {
		zap.S().Fatalw("failed to initialize database", "err", err)
	}
	defer db.Close()
	zap.S().Infow("database initialized", "path", config.Database.Path)

	// 4. Resolve feature schema
	schema := config.Dataset.Schema
	if len(schema.Features) == 0 {
		schema = dataset.DefaultSchema()
	}
	if err := schema.Validate(); err != nil {
		zap.S().Fatalw("invalid dataset schema", "err", err)
	}

	// 5. Start websocket hub and predictor service
	hub := monitoring.NewWebSocketHub()
	go hub.Start()

	service, err := qhttp.NewPredictorService(schema, config.Model.Path, hub)
	if err != nil {
		zap.S().Fatalw("failed to create predictor service", "err", err)
	}

	training := qhttp.TrainingConfig{
		DataPath:  config.Dataset.Path,
		ModelPath: config.Model.Path,
		Clean:     config.Dataset.Clean,
		Train:     config.Model.TrainConfig,
	}
	qhttp.SetPredictorService(service)
	qhttp.SetHub(hub)
	qhttp.SetTrainingConfig(training)

	// 6. Load the model, training it first when no artifact exists yet
	if err := service.Reload(); err != nil {
		var loadErr *ml.ModelLoadError
		if errors.As(err, &loadErr) && config.Dataset.Path != "" {
			zap.S().Infow("no usable model artifact, training from dataset",
				"dataset", config.Dataset.Path)
			if _, err := qhttp.TrainModel(schema, training); err != nil {
				zap.S().Fatalw("initial training failed", "err", err)
			}
			if err := service.Reload(); err != nil {
				zap.S().Fatalw("failed to load freshly trained model", "err", err)
			}
		} else {
			zap.S().Warnw("starting without a model", "err", err)
		}
	}

	// 7. Hot-reload the artifact on change
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := service.WatchArtifact(ctx); err != nil {
		zap.S().Warnw("artifact watcher unavailable", "err", err)
	}

	// 8. Start HTTP server
	server := qhttp.NewServer(config.Http)
	go func() {
		if err := server.Start(); err != nil {
			zap.S().Fatalw("http server failed", "err", err)
		}
	}()

	// 9. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down")

	cancel()
	if err := server.Stop(); err != nil {
		zap.S().Warnw("server forced to shutdown", "err", err)
	}
	hub.Stop()

	zap.S().Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
