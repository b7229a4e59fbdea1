package core

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"urbansense/internal/cache"
	"urbansense/internal/core/forest"
	"urbansense/internal/features"
	"urbansense/internal/geo"
)

var (
	ErrInvalidCoordinate = errors.New("coordinate is not a finite number")
	ErrOutOfBounds       = errors.New("coordinate is outside the supported region")
)

// Result is one prediction, constructed per request and not retained.
type Result struct {
	Point    orb.Point
	Label    string
	Scores   map[string]float64
	Features features.Vector
	Why      string
	Cached   bool
}

// Predictor serves development-type predictions. The pipeline is loaded once
// and read-only, so Predict is safe for concurrent use; the feature cache
// handles its own locking.
type Predictor struct {
	profile   *geo.Profile
	pipeline  *forest.Pipeline
	extractor features.Extractor
	cache     *cache.FeatureCache
}

func NewPredictor(profile *geo.Profile, pipeline *forest.Pipeline, extractor features.Extractor, featureCache *cache.FeatureCache) *Predictor {
	return &Predictor{
		profile:   profile,
		pipeline:  pipeline,
		extractor: extractor,
		cache:     featureCache,
	}
}

func (p *Predictor) Pipeline() *forest.Pipeline {
	return p.pipeline
}

// Predict validates the coordinate, resolves its feature vector through the
// cache, and runs the model.
func (p *Predictor) Predict(ctx context.Context, lat, lon float64) (*Result, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return nil, ErrInvalidCoordinate
	}

	point := geo.Round(orb.Point{lon, lat})
	if !p.profile.Bounds.Contains(point) {
		return nil, fmt.Errorf("%w: (%.4f, %.4f)", ErrOutOfBounds, lat, lon)
	}

	vector, cached := p.cache.Get(ctx, point)
	if !cached {
		var err error
		vector, err = p.extractor.Extract(ctx, point)
		if err != nil {
			return nil, fmt.Errorf("error extracting features: %w", err)
		}
		p.cache.Put(ctx, point, vector)
	}

	scores, label, err := p.pipeline.PredictProba(vector.Values())
	if err != nil {
		return nil, fmt.Errorf("error running model: %w", err)
	}

	return &Result{
		Point:    point,
		Label:    label,
		Scores:   scores,
		Features: vector,
		Why:      Explain(label, vector),
		Cached:   cached,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
