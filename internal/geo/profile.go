package geo

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"gopkg.in/yaml.v2"
)

// Bounds is the rectangular region the service makes predictions for.
type Bounds struct {
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
}

func (b Bounds) Contains(p orb.Point) bool {
	return b.Bound().Contains(p)
}

func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

func (b Bounds) Center() orb.Point {
	return b.Bound().Center()
}

// Normalize maps a point to (x, y) in [0, 1] relative to the bounds,
// x along longitude and y along latitude.
func (b Bounds) Normalize(p orb.Point) (x, y float64) {
	x = (p.Lon() - b.MinLon) / (b.MaxLon - b.MinLon)
	y = (p.Lat() - b.MinLat) / (b.MaxLat - b.MinLat)
	return x, y
}

// GridPoints returns points covering the bounds at the given spacing in
// degrees, south-west to north-east in row-major order.
func (b Bounds) GridPoints(spacing float64) []orb.Point {
	var points []orb.Point
	for lat := b.MinLat; lat <= b.MaxLat+1e-12; lat += spacing {
		for lon := b.MinLon; lon <= b.MaxLon+1e-12; lon += spacing {
			points = append(points, orb.Point{lon, lat})
		}
	}
	return points
}

// Road is a main road approximated as a straight line of constant latitude
// or longitude. Good enough for the road-proximity feature.
type Road struct {
	Name     string  `yaml:"name"`
	Axis     string  `yaml:"axis"` // "lat" or "lon"
	Position float64 `yaml:"position"`
}

// Profile describes the city a deployment serves: the prediction region,
// the sampling grid, and the main roads used for the road-distance feature.
type Profile struct {
	Name        string  `yaml:"name"`
	Bounds      Bounds  `yaml:"bounds"`
	GridSpacing float64 `yaml:"grid_spacing"`
	POIRadiusM  int     `yaml:"poi_radius_m"`
	Roads       []Road  `yaml:"roads"`
}

//go:embed hulhumale.yaml
var defaultProfileYAML []byte

// DefaultProfile returns the built-in Hulhumalé profile.
func DefaultProfile() *Profile {
	profile, err := parseProfile(defaultProfileYAML)
	if err != nil {
		// The embedded profile is validated by tests; this cannot happen at runtime.
		panic(fmt.Sprintf("invalid embedded city profile: %v", err))
	}
	return profile
}

// LoadProfile reads a city profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading city profile %s: %w", path, err)
	}
	return parseProfile(raw)
}

func parseProfile(raw []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("error parsing city profile: %w", err)
	}
	if profile.Bounds.MinLat >= profile.Bounds.MaxLat || profile.Bounds.MinLon >= profile.Bounds.MaxLon {
		return nil, fmt.Errorf("city profile has empty bounds")
	}
	if profile.GridSpacing <= 0 {
		return nil, fmt.Errorf("city profile grid_spacing must be positive")
	}
	for _, road := range profile.Roads {
		if road.Axis != "lat" && road.Axis != "lon" {
			return nil, fmt.Errorf("road %q has invalid axis %q", road.Name, road.Axis)
		}
	}
	return &profile, nil
}

// DistanceToMainRoad returns the distance in meters from the point to the
// nearest main road in the profile.
func (p *Profile) DistanceToMainRoad(pt orb.Point) float64 {
	nearest := math.Inf(1)
	for _, road := range p.Roads {
		var onRoad orb.Point
		switch road.Axis {
		case "lon":
			onRoad = orb.Point{road.Position, pt.Lat()}
		case "lat":
			onRoad = orb.Point{pt.Lon(), road.Position}
		}
		if d := orbgeo.Distance(pt, onRoad); d < nearest {
			nearest = d
		}
	}
	if math.IsInf(nearest, 1) {
		return 0
	}
	return nearest
}
