package database

import (
	"time"

	"github.com/google/uuid"
)

// CacheEntry is a persisted feature-cache record keyed by the rounded
// coordinate. Features holds the JSON-encoded feature vector.
type CacheEntry struct {
	Key       string `gorm:"primaryKey"`
	Latitude  float64
	Longitude float64
	Features  []byte
	CreatedAt time.Time
}

// Prediction records one served prediction for later inspection.
type Prediction struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Latitude     float64
	Longitude    float64
	Label        string `gorm:"size:32;not null"`
	Confidence   float64
	Cached       bool
	CreationTime time.Time
}
