package features

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/paulmach/orb"

	"urbansense/internal/geo"
)

const (
	overpassMaxRetries = 3
	overpassRetryDelay = 10 * time.Second
)

// poiQueries maps a POI category to an Overpass count query template. The
// placeholders are radius in meters, then lat, lon repeated per clause.
var poiQueries = map[string]string{
	"cafes":     `[out:json];(node["amenity"~"cafe|restaurant"](around:%d,%f,%f);way["amenity"~"cafe|restaurant"](around:%d,%f,%f););out count;`,
	"groceries": `[out:json];(node["shop"~"convenience|supermarket|grocery"](around:%d,%f,%f);way["shop"~"convenience|supermarket|grocery"](around:%d,%f,%f););out count;`,
	"schools":   `[out:json];(node["amenity"~"school|kindergarten|college|university"](around:%d,%f,%f);way["amenity"~"school|kindergarten|college|university"](around:%d,%f,%f););out count;`,
	"houses":    `[out:json];(node["building"~"house|residential|apartments"](around:%d,%f,%f);way["building"~"house|residential|apartments"](around:%d,%f,%f););out count;`,
	"parks":     `[out:json];(node["leisure"~"park|garden"](around:%d,%f,%f);way["leisure"~"park|garden"](around:%d,%f,%f););out count;`,
	"clinics":   `[out:json];(node["amenity"~"clinic|doctors|hospital|pharmacy"](around:%d,%f,%f);way["amenity"~"clinic|doctors|hospital|pharmacy"](around:%d,%f,%f););out count;`,
}

// OverpassExtractor computes feature vectors from live OpenStreetMap data via
// an Overpass endpoint. POI counts come from count queries around the point;
// foot traffic is estimated from POI density and road distance from the city
// profile, since neither is available from OSM.
type OverpassExtractor struct {
	client  *resty.Client
	profile *geo.Profile
	seed    int64
}

func NewOverpassExtractor(endpoint string, profile *geo.Profile, seed int64) *OverpassExtractor {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(60 * time.Second)

	return &OverpassExtractor{client: client, profile: profile, seed: seed}
}

func (e *OverpassExtractor) Extract(ctx context.Context, point orb.Point) (Vector, error) {
	counts := make(map[string]float64, len(poiQueries))
	for category, template := range poiQueries {
		count, err := e.countPOIs(ctx, point, category, template)
		if err != nil {
			return Vector{}, fmt.Errorf("error counting %s near (%.4f, %.4f): %w", category, point.Lat(), point.Lon(), err)
		}
		counts[category] = float64(count)
	}

	v := Vector{
		NearbyCafes:     counts["cafes"],
		NearbyGroceries: counts["groceries"],
		NearbySchools:   counts["schools"],
		NearbyHouses:    counts["houses"],
		NearbyParks:     counts["parks"],
		NearbyClinics:   counts["clinics"],
	}

	rng := pointRand(e.seed, point)
	v.FootTrafficScore = EstimateFootTraffic(v, 0.8+0.4*rng.Float64())
	v.DistanceToMainRoad = e.profile.DistanceToMainRoad(point)

	return v, nil
}

type overpassResponse struct {
	Elements []struct {
		Type string            `json:"type"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

func (e *OverpassExtractor) countPOIs(ctx context.Context, point orb.Point, category, template string) (int, error) {
	radius := e.profile.POIRadiusM
	query := fmt.Sprintf(template,
		radius, point.Lat(), point.Lon(),
		radius, point.Lat(), point.Lon())

	var lastErr error
	for attempt := 1; attempt <= overpassMaxRetries; attempt++ {
		var parsed overpassResponse
		res, err := e.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "text/plain").
			SetBody(query).
			SetResult(&parsed).
			Post("")

		switch {
		case err != nil:
			lastErr = err
		case res.IsSuccess():
			count := 0
			for _, element := range parsed.Elements {
				if element.Type != "count" {
					continue
				}
				if total, convErr := strconv.Atoi(element.Tags["total"]); convErr == nil {
					count += total
				}
			}
			return count, nil
		case res.StatusCode() == 429 || res.StatusCode() >= 500:
			lastErr = fmt.Errorf("overpass returned status %d", res.StatusCode())
		default:
			return 0, fmt.Errorf("overpass returned status %d: %s", res.StatusCode(), res.String())
		}

		if attempt < overpassMaxRetries {
			wait := overpassRetryDelay * time.Duration(attempt)
			slog.Warn("overpass query failed, retrying", "category", category, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	return 0, fmt.Errorf("overpass query failed after %d attempts: %w", overpassMaxRetries, lastErr)
}
