package dataset

import (
	"urbansense/internal/features"
)

// Development types the classifier chooses between.
const (
	LabelCafe        = "Café"
	LabelPark        = "Park"
	LabelClinic      = "Clinic"
	LabelResidential = "Residential"
)

// Sample is one labeled training example. Immutable once generated.
type Sample struct {
	Latitude  float64
	Longitude float64
	Label     string
	Features  features.Vector
}

// Label assigns a development type from the feature vector using the
// rule-of-thumb thresholds the dataset was designed around. Busy spots with
// cafés already nearby suggest café demand; green low-density areas suggest
// parks; clinics cluster where there is traffic to serve.
func Label(v features.Vector) string {
	switch {
	case v.NearbyCafes >= 2 && v.FootTrafficScore > 70:
		return LabelCafe
	case v.NearbyParks >= 1 && v.NearbyHouses <= 5:
		return LabelPark
	case v.NearbyClinics >= 1 && v.FootTrafficScore > 50:
		return LabelClinic
	default:
		return LabelResidential
	}
}

// ToMatrix splits samples into feature rows and label strings for training.
func ToMatrix(samples []Sample) ([][]float64, []string) {
	rows := make([][]float64, len(samples))
	labels := make([]string, len(samples))
	for i, s := range samples {
		rows[i] = s.Features.Values()
		labels[i] = s.Label
	}
	return rows, labels
}
