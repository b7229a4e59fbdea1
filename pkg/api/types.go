package api

import (
	"time"

	"github.com/google/uuid"
)

type PredictRequest struct {
	Latitude  float64 `json:"latitude" schema:"latitude"`
	Longitude float64 `json:"longitude" schema:"longitude"`
}

type PredictResponse struct {
	Id               uuid.UUID          `json:"id"`
	Prediction       string             `json:"prediction"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	Why              string             `json:"why"`
	Features         map[string]float64 `json:"features"`
	Cached           bool               `json:"cached"`
}

type ModelInfo struct {
	Classes      []string  `json:"classes"`
	FeatureNames []string  `json:"feature_names"`
	NumTrees     int       `json:"num_trees"`
	TrainedAt    time.Time `json:"trained_at"`
	Accuracy     float64   `json:"accuracy"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
