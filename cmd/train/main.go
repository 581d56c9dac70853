package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"fatiguecast/dataset"
	"fatiguecast/db"
	"fatiguecast/ml"
)

func main() {
	dataPath := flag.String("data", "", "training dataset (csv)")
	features := flag.String("features", "", "comma-separated feature columns (default: behavioral set)")
	labelColumn := flag.String("label", "", "label column name (default: recommendation)")
	classes := flag.String("classes", "", "comma-separated label classes (default: inferred from data)")
	modelType := flag.String("model_type", "knn", "model family: knn or decision_tree")
	modelPath := flag.String("model_path", "./models/fatigue.model", "model output path")
	k := flag.Int("k", 5, "number of neighbors (knn)")
	maxDepth := flag.Int("max_depth", 6, "max tree depth (decision_tree)")
	testRatio := flag.Float64("test_ratio", 0.2, "held-out test ratio")
	seed := flag.Int64("seed", 42, "random seed for the train/test split")
	clean := flag.Bool("clean", false, "apply cleaning rules before training")
	dbPath := flag.String("db", "", "optional sqlite path to record the run")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("data is required")
	}

	schema, err := buildSchema(*dataPath, *features, *labelColumn, *classes)
	if err != nil {
		log.Fatalf("failed to build schema: %v", err)
	}

	table, err := dataset.LoadCSV(*dataPath, schema)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	log.Printf("loaded %d observations from %s", table.Len(), *dataPath)

	if *clean {
		cleaner := dataset.NewCleaner()
		cleaned, issues := cleaner.Clean(table)
		if len(issues) > 0 {
			log.Printf("cleaning rejected %d rows", table.Len()-cleaned.Len())
		}
		table = cleaned
	}

	result, err := ml.Train(table, ml.TrainConfig{
		ModelType: *modelType,
		K:         *k,
		MaxDepth:  *maxDepth,
		TestRatio: *testRatio,
		Seed:      *seed,
	})
	if err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	if result.Evaluation.TestSize > 0 {
		log.Printf("accuracy=%.2f precision=%.2f recall=%.2f (test rows=%d)",
			result.Evaluation.Accuracy,
			macroAverage(result.Evaluation.Precision),
			macroAverage(result.Evaluation.Recall),
			result.Evaluation.TestSize)
	}

	if err := result.Artifact.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	if *dbPath != "" {
		if err := db.InitDB(*dbPath); err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := db.SaveObservations(table, *dataPath); err != nil {
			log.Printf("failed to save observations: %v", err)
		}
		if err := db.RecordTraining(result); err != nil {
			log.Printf("failed to record training run: %v", err)
		}
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}

// buildSchema starts from the default behavioral schema and applies the
// command-line overrides. Label classes are read from the data file when
// not given explicitly.
func buildSchema(dataPath, features, labelColumn, classes string) (dataset.Schema, error) {
	schema := dataset.DefaultSchema()

	if features != "" {
		names := splitList(features)
		encodings := make(map[string]map[string]int)
		for _, name := range names {
			if mapping, ok := schema.Encodings[name]; ok {
				encodings[name] = mapping
			}
		}
		schema.Features = names
		schema.Encodings = encodings
	}
	if labelColumn != "" {
		schema.LabelColumn = labelColumn
		schema.LabelClasses = nil
	}
	if classes != "" {
		schema.LabelClasses = splitList(classes)
	}
	if len(schema.LabelClasses) == 0 {
		inferred, err := scanLabelClasses(dataPath, schema.LabelColumn)
		if err != nil {
			return dataset.Schema{}, err
		}
		schema.LabelClasses = inferred
	}

	return schema, schema.Validate()
}

// scanLabelClasses reads just the label column and assigns codes in
// alphabetical order, like a standard label encoder.
func scanLabelClasses(path, labelColumn string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	column := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), labelColumn) {
			column = i
			break
		}
	}
	if column == -1 {
		return nil, fmt.Errorf("label column %q not found", labelColumn)
	}

	var values []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		values = append(values, record[column])
	}

	encoding := dataset.AlphabeticalEncoding(values)
	classes := make([]string, len(encoding))
	for name, code := range encoding {
		classes[code] = name
	}
	return classes, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
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
