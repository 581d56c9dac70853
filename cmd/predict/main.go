package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"

	"fatiguecast/dataset"
	"fatiguecast/ml"
)

func main() {
	modelPath := flag.String("model_path", "./models/fatigue.model", "trained model artifact")
	inputPath := flag.String("input", "", "input csv with the model's feature columns")
	outputPath := flag.String("output", "", "output csv path (default: stdout)")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("input is required")
	}

	artifact, err := ml.LoadArtifact(*modelPath)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}

	// The input only needs the feature columns the model was trained on;
	// a label column, if present, is ignored.
	defaults := dataset.DefaultSchema()
	encodings := make(map[string]map[string]int)
	for _, name := range artifact.FeatureNames {
		if mapping, ok := defaults.Encodings[name]; ok {
			encodings[name] = mapping
		}
	}
	schema := dataset.Schema{
		Features:  artifact.FeatureNames,
		Encodings: encodings,
	}

	table, err := dataset.LoadCSV(*inputPath, schema)
	if err != nil {
		log.Fatalf("failed to load input: %v", err)
	}

	predictor, err := ml.NewPredictor(artifact)
	if err != nil {
		log.Fatalf("failed to open model: %v", err)
	}

	predictions, err := predictor.PredictTable(table)
	if err != nil {
		log.Fatalf("prediction failed: %v", err)
	}

	out := os.Stdout
	if *outputPath != "" {
		file, err := os.Create(*outputPath)
		if err != nil {
			log.Fatalf("failed to create output: %v", err)
		}
		defer file.Close()
		out = file
	}

	writer := csv.NewWriter(out)
	writer.Write([]string{"label", "confidence"})
	for _, prediction := range predictions {
		writer.Write([]string{prediction.Label, fmt.Sprintf("%.4f", prediction.Confidence)})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Fatalf("failed to write output: %v", err)
	}
}
