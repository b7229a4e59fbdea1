package dataset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbansense/internal/features"
	"urbansense/internal/geo"
)

func testProfile() *geo.Profile {
	profile := geo.DefaultProfile()
	// Coarser grid keeps tests fast.
	profile.GridSpacing = 0.002
	return profile
}

func TestLabelHeuristic(t *testing.T) {
	tests := []struct {
		name   string
		vector features.Vector
		want   string
	}{
		{"busy cafe spot", features.Vector{NearbyCafes: 2, FootTrafficScore: 75}, LabelCafe},
		{"cafes but quiet", features.Vector{NearbyCafes: 3, FootTrafficScore: 40}, LabelResidential},
		{"green low density", features.Vector{NearbyParks: 1, NearbyHouses: 3}, LabelPark},
		{"parks but dense housing", features.Vector{NearbyParks: 2, NearbyHouses: 12}, LabelResidential},
		{"clinic with traffic", features.Vector{NearbyClinics: 1, FootTrafficScore: 60}, LabelClinic},
		{"clinic without traffic", features.Vector{NearbyClinics: 1, FootTrafficScore: 30}, LabelResidential},
		{"nothing around", features.Vector{}, LabelResidential},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Label(tc.vector))
		})
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	profile := testProfile()

	first, err := NewGenerator(profile, features.NewSyntheticExtractor(profile, 42), false).Generate(context.Background())
	require.NoError(t, err)
	second, err := NewGenerator(profile, features.NewSyntheticExtractor(profile, 42), false).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// A different seed produces different noise somewhere.
	other, err := NewGenerator(profile, features.NewSyntheticExtractor(profile, 7), false).Generate(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestGenerateCoversGridWithAllFields(t *testing.T) {
	profile := testProfile()
	generator := NewGenerator(profile, features.NewSyntheticExtractor(profile, 42), false)

	samples, err := generator.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, len(profile.Bounds.GridPoints(profile.GridSpacing)))

	labels := map[string]bool{}
	for _, s := range samples {
		assert.True(t, profile.Bounds.Contains(orb.Point{s.Longitude, s.Latitude}))
		assert.NotEmpty(t, s.Label)
		assert.GreaterOrEqual(t, s.Features.FootTrafficScore, 1.0)
		assert.LessOrEqual(t, s.Features.FootTrafficScore, 100.0)
		labels[s.Label] = true
	}
	// The spatial patterns should produce more than one development type.
	assert.Greater(t, len(labels), 1)
}

func TestCSVRoundtrip(t *testing.T) {
	profile := testProfile()
	generator := NewGenerator(profile, features.NewSyntheticExtractor(profile, 42), false)

	samples, err := generator.Generate(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, WriteCSV(path, samples))

	loaded, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(samples))

	for i := range samples {
		assert.InDelta(t, samples[i].Latitude, loaded[i].Latitude, 1e-9)
		assert.InDelta(t, samples[i].Longitude, loaded[i].Longitude, 1e-9)
		assert.Equal(t, samples[i].Label, loaded[i].Label)
		assert.Equal(t, samples[i].Features, loaded[i].Features)
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestToMatrix(t *testing.T) {
	samples := []Sample{
		{Label: LabelPark, Features: features.Vector{NearbyParks: 2}},
		{Label: LabelCafe, Features: features.Vector{NearbyCafes: 3, FootTrafficScore: 80}},
	}

	rows, labels := ToMatrix(samples)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{LabelPark, LabelCafe}, labels)
	assert.Equal(t, samples[0].Features.Values(), rows[0])
}
