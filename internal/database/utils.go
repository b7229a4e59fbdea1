package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavePrediction records a served prediction. Logging only on failure; the
// prediction log is best effort and must not fail requests.
func SavePrediction(ctx context.Context, db *gorm.DB, id uuid.UUID, lat, lon float64, label string, confidence float64, cached bool) {
	prediction := Prediction{
		Id:           id,
		Latitude:     lat,
		Longitude:    lon,
		Label:        label,
		Confidence:   confidence,
		Cached:       cached,
		CreationTime: time.Now().UTC(),
	}

	if err := db.WithContext(ctx).Create(&prediction).Error; err != nil {
		slog.Error("error saving prediction record", "id", id, "error", err)
	}
}
