// Package geo provides the minimal geographic primitives used by source
// distance filtering: validated locations and a fast horizontal distance.
package geo

import (
	"fmt"
	"math"
)

// Coordinate bounds in decimal degrees and kilometers.
const (
	MinLat   = -90.0
	MaxLat   = 90.0
	MinLon   = -180.0
	MaxLon   = 180.0
	MinDepth = -5.0
	MaxDepth = 700.0
)

// earthRadius is the mean radius of the earth in kilometers.
const earthRadius = 6371.0072

// Location is an immutable geographic position: latitude and longitude in
// decimal degrees, depth in kilometers (positive down).
type Location struct {
	lat, lon, depth float64
}

// NewLocation creates a surface location, validating coordinate ranges.
// Invalid coordinates are a configuration error detected at model build time.
func NewLocation(lat, lon float64) (Location, error) {
	return NewLocationWithDepth(lat, lon, 0)
}

// NewLocationWithDepth creates a location at depth, validating all ranges.
func NewLocationWithDepth(lat, lon, depth float64) (Location, error) {
	if math.IsNaN(lat) || lat < MinLat || lat > MaxLat {
		return Location{}, fmt.Errorf("latitude %.5f outside [%.1f, %.1f]", lat, MinLat, MaxLat)
	}
	if math.IsNaN(lon) || lon < MinLon || lon > MaxLon {
		return Location{}, fmt.Errorf("longitude %.5f outside [%.1f, %.1f]", lon, MinLon, MaxLon)
	}
	if math.IsNaN(depth) || depth < MinDepth || depth > MaxDepth {
		return Location{}, fmt.Errorf("depth %.5f outside [%.1f, %.1f]", depth, MinDepth, MaxDepth)
	}
	return Location{lat: lat, lon: lon, depth: depth}, nil
}

// Lat returns the latitude in decimal degrees.
func (l Location) Lat() float64 { return l.lat }

// Lon returns the longitude in decimal degrees.
func (l Location) Lon() float64 { return l.lon }

// Depth returns the depth in kilometers.
func (l Location) Depth() float64 { return l.depth }

// String renders the location as "lat,lon,depth" with 5-decimal precision.
func (l Location) String() string {
	return fmt.Sprintf("%.5f,%.5f,%.5f", l.lat, l.lon, l.depth)
}

// Distance returns the horizontal surface distance between two locations in
// kilometers using an equirectangular approximation. Adequate for distance
// filtering at the scales hazard models operate over; depth is ignored.
func Distance(a, b Location) float64 {
	latA := a.lat * math.Pi / 180
	latB := b.lat * math.Pi / 180
	dLat := latB - latA
	dLon := (b.lon - a.lon) * math.Pi / 180 * math.Cos((latA+latB)/2)
	return earthRadius * math.Hypot(dLat, dLon)
}
