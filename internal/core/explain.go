package core

import (
	"fmt"

	"urbansense/internal/dataset"
	"urbansense/internal/features"
)

// Explain builds the human-readable reason shown next to a prediction. It
// names the features that dominate for the predicted label and then lists
// the full vector so the map popup can show its working.
func Explain(label string, v features.Vector) string {
	return fmt.Sprintf("Recommended '%s' %s: cafes=%.0f, groceries=%.0f, schools=%.0f, houses=%.0f, parks=%.0f, clinics=%.0f, foot traffic=%.0f, dist. to road=%.0fm.",
		label,
		driver(label, v),
		v.NearbyCafes,
		v.NearbyGroceries,
		v.NearbySchools,
		v.NearbyHouses,
		v.NearbyParks,
		v.NearbyClinics,
		v.FootTrafficScore,
		v.DistanceToMainRoad,
	)
}

func driver(label string, v features.Vector) string {
	switch label {
	case dataset.LabelCafe:
		return fmt.Sprintf("for the high foot traffic (%.0f/100) around existing cafes", v.FootTrafficScore)
	case dataset.LabelPark:
		return "for the green, low-density surroundings"
	case dataset.LabelClinic:
		return "for the steady foot traffic near existing health services"
	default:
		return "based on nearby features"
	}
}
