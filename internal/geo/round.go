package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// CachePrecision is the number of decimal places coordinates are rounded to
// before cache lookups. Four decimals is roughly an 11m cell, finer than the
// sampling grid, so nearby clicks share an entry without merging distinct
// grid points.
const CachePrecision = 4

// Round snaps a point to the cache precision.
func Round(p orb.Point) orb.Point {
	return orb.Point{roundTo(p.Lon(), CachePrecision), roundTo(p.Lat(), CachePrecision)}
}

// CacheKey returns the cache key for a point, e.g. "4.2090_73.5350".
func CacheKey(p orb.Point) string {
	r := Round(p)
	return fmt.Sprintf("%.*f_%.*f", CachePrecision, r.Lat(), CachePrecision, r.Lon())
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}
