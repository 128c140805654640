// internal/models/location.go
package models

import (
	"fmt"
	"math"
	"time"
)

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Format renders the coordinate as "lat, lng" with six decimals. It is the
// address label of last resort.
func (c Coordinate) Format() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

// Valid reports whether both components are finite and in range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// SourceStage records which acquisition stage produced a fix.
type SourceStage string

const (
	SourceCached   SourceStage = "CACHED"
	SourceFreshGPS SourceStage = "FRESH_GPS"
	SourceMapTap   SourceStage = "MAP_TAP"
)

// LocationFix is the outcome of one acquisition. Address is never empty.
type LocationFix struct {
	Coordinate Coordinate  `json:"coordinate"`
	Address    string      `json:"address"`
	Source     SourceStage `json:"source"`
	AcquiredAt time.Time   `json:"acquiredAt"`
}

// NewLocationFix builds a fix, substituting the formatted coordinate for an
// empty address.
func NewLocationFix(coord Coordinate, address string, source SourceStage, at time.Time) LocationFix {
	if address == "" {
		address = coord.Format()
	}
	return LocationFix{
		Coordinate: coord,
		Address:    address,
		Source:     source,
		AcquiredAt: at,
	}
}

// Geocoded reports whether the address came from a geocoder rather than
// the coordinate fallback.
func (f LocationFix) Geocoded() bool {
	return f.Address != f.Coordinate.Format()
}
