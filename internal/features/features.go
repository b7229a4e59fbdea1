package features

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
)

// Names lists the model features in training order. The order is part of the
// model artifact contract; changing it invalidates existing artifacts.
var Names = []string{
	"nearby_cafes",
	"nearby_groceries",
	"nearby_schools",
	"nearby_houses",
	"nearby_parks",
	"nearby_clinics",
	"foot_traffic_score",
	"distance_to_main_road",
}

// Vector is the fixed-size numeric summary of a location used as classifier
// input. POI counts are stored as float64 so the vector feeds the model
// directly.
type Vector struct {
	NearbyCafes        float64 `json:"nearby_cafes"`
	NearbyGroceries    float64 `json:"nearby_groceries"`
	NearbySchools      float64 `json:"nearby_schools"`
	NearbyHouses       float64 `json:"nearby_houses"`
	NearbyParks        float64 `json:"nearby_parks"`
	NearbyClinics      float64 `json:"nearby_clinics"`
	FootTrafficScore   float64 `json:"foot_traffic_score"`
	DistanceToMainRoad float64 `json:"distance_to_main_road"`
}

// Values returns the vector in training order.
func (v Vector) Values() []float64 {
	return []float64{
		v.NearbyCafes,
		v.NearbyGroceries,
		v.NearbySchools,
		v.NearbyHouses,
		v.NearbyParks,
		v.NearbyClinics,
		v.FootTrafficScore,
		v.DistanceToMainRoad,
	}
}

// Map returns the vector keyed by feature name, for API responses.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(Names))
	for i, val := range v.Values() {
		m[Names[i]] = val
	}
	return m
}

// FromValues builds a vector from values in training order.
func FromValues(values []float64) (Vector, error) {
	if len(values) != len(Names) {
		return Vector{}, fmt.Errorf("expected %d feature values, got %d", len(Names), len(values))
	}
	return Vector{
		NearbyCafes:        values[0],
		NearbyGroceries:    values[1],
		NearbySchools:      values[2],
		NearbyHouses:       values[3],
		NearbyParks:        values[4],
		NearbyClinics:      values[5],
		FootTrafficScore:   values[6],
		DistanceToMainRoad: values[7],
	}, nil
}

// Extractor computes the feature vector for a coordinate.
type Extractor interface {
	Extract(ctx context.Context, point orb.Point) (Vector, error)
}

// EstimateFootTraffic derives a 1-100 foot traffic score from POI density.
// A stand-in for real pedestrian counts; schools and cafés draw the most
// traffic per unit, housing the least.
func EstimateFootTraffic(v Vector, jitter float64) float64 {
	const base = 30.0

	poiFactor := v.NearbyCafes*15 +
		v.NearbyGroceries*12 +
		v.NearbySchools*20 +
		v.NearbyHouses*0.5 +
		v.NearbyParks*10 +
		v.NearbyClinics*15

	score := base + poiFactor*jitter
	if score < 1 {
		return 1
	}
	if score > 100 {
		return 100
	}
	return float64(int(score))
}
