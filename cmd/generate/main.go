package main

import (
	"context"
	"log"

	"github.com/caarlos0/env/v11"

	"urbansense/cmd"
	"urbansense/internal/dataset"
	"urbansense/internal/features"
)

type GenerateConfig struct {
	OutputPath  string `env:"DATASET_PATH" envDefault:"poi_data.csv"`
	ProfilePath string `env:"CITY_PROFILE" envDefault:""`
	Extractor   string `env:"EXTRACTOR" envDefault:"synthetic"`
	OverpassURL string `env:"OVERPASS_URL" envDefault:"https://overpass-api.de/api/interpreter"`
	Seed        int64  `env:"SEED" envDefault:"42"`
}

func main() {
	cmd.LoadEnvFile()

	var cfg GenerateConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	profile := cmd.LoadProfile(cfg.ProfilePath)

	var extractor features.Extractor
	switch cfg.Extractor {
	case "synthetic":
		extractor = features.NewSyntheticExtractor(profile, cfg.Seed)
	case "overpass":
		extractor = features.NewOverpassExtractor(cfg.OverpassURL, profile, cfg.Seed)
	default:
		log.Fatalf("Invalid extractor type: %s. Must be either 'synthetic' or 'overpass'", cfg.Extractor)
	}

	generator := dataset.NewGenerator(profile, extractor, true)
	samples, err := generator.Generate(context.Background())
	if err != nil {
		log.Fatalf("Failed to generate dataset: %v", err)
	}

	if err := dataset.WriteCSV(cfg.OutputPath, samples); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}

	log.Printf("Wrote %d samples to %s", len(samples), cfg.OutputPath)
}
