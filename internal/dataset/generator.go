package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"urbansense/internal/features"
	"urbansense/internal/geo"
)

// Generator produces a labeled dataset by walking the profile's sampling grid
// and extracting a feature vector per point. With a synthetic extractor this
// is instantaneous; with the Overpass extractor it performs live queries and
// can take a long time.
type Generator struct {
	profile   *geo.Profile
	extractor features.Extractor
	progress  bool
}

func NewGenerator(profile *geo.Profile, extractor features.Extractor, progress bool) *Generator {
	return &Generator{profile: profile, extractor: extractor, progress: progress}
}

func (g *Generator) Generate(ctx context.Context) ([]Sample, error) {
	points := g.profile.Bounds.GridPoints(g.profile.GridSpacing)
	slog.Info("generating dataset", "profile", g.profile.Name, "points", len(points))

	var bar *progressbar.ProgressBar
	if g.progress {
		bar = progressbar.Default(int64(len(points)), "sampling grid")
	}

	samples := make([]Sample, 0, len(points))
	for _, point := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vector, err := g.extractor.Extract(ctx, point)
		if err != nil {
			return nil, fmt.Errorf("error extracting features at (%.4f, %.4f): %w", point.Lat(), point.Lon(), err)
		}

		samples = append(samples, Sample{
			Latitude:  point.Lat(),
			Longitude: point.Lon(),
			Label:     Label(vector),
			Features:  vector,
		})

		if bar != nil {
			bar.Add(1) //nolint:errcheck
		}
	}

	distribution := map[string]int{}
	for _, s := range samples {
		distribution[s.Label]++
	}
	slog.Info("dataset generated", "samples", len(samples), "distribution", fmt.Sprint(distribution))

	return samples, nil
}
