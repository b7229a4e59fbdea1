package main

import (
	"log"

	"github.com/caarlos0/env/v11"

	"urbansense/cmd"
	"urbansense/internal/core/forest"
	"urbansense/internal/dataset"
	"urbansense/internal/features"
)

type TrainConfig struct {
	DatasetPath  string  `env:"DATASET_PATH" envDefault:"poi_data.csv"`
	ModelPath    string  `env:"MODEL_PATH" envDefault:"model.gob"`
	NumTrees     int     `env:"NUM_TREES" envDefault:"100"`
	MaxDepth     int     `env:"MAX_DEPTH" envDefault:"16"`
	TestFraction float64 `env:"TEST_FRACTION" envDefault:"0.2"`
	Seed         int64   `env:"SEED" envDefault:"42"`
}

func main() {
	cmd.LoadEnvFile()

	var cfg TrainConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	samples, err := dataset.ReadCSV(cfg.DatasetPath)
	if err != nil {
		log.Fatalf("Failed to load dataset (run the generator first?): %v", err)
	}
	log.Printf("Loaded %d samples from %s", len(samples), cfg.DatasetPath)

	rows, labels := dataset.ToMatrix(samples)

	forestCfg := forest.DefaultConfig()
	forestCfg.NumTrees = cfg.NumTrees
	forestCfg.MaxDepth = cfg.MaxDepth
	forestCfg.Seed = cfg.Seed

	pipeline, report, err := forest.TrainPipeline(rows, labels, features.Names, cfg.TestFraction, forestCfg)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	log.Printf("Model accuracy: %.4f (train=%d, test=%d)", report.Accuracy, report.TrainSize, report.TestSize)
	for _, m := range report.PerClass {
		log.Printf("  %-12s precision=%.3f recall=%.3f f1=%.3f support=%d", m.Class, m.Precision, m.Recall, m.F1, m.Support)
	}

	if err := pipeline.Save(cfg.ModelPath); err != nil {
		log.Fatalf("Failed to save model artifact: %v", err)
	}
	log.Printf("Saved model to %s", cfg.ModelPath)
}
