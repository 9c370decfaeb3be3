package models

import (
	"fmt"
	"math"
)

// Location is the coordinate attached to a to-do.
type Location struct {
	Latitude  float64
	Longitude float64
}

// DefaultLocation is used when the user never picked a point (Seoul City Hall).
var DefaultLocation = Location{Latitude: 37.5665, Longitude: 126.9780}

// NewLocation falls back to DefaultLocation for each missing coordinate and
// validates the result.
func NewLocation(lat, lon *float64) (Location, error) {
	loc := DefaultLocation
	if lat != nil {
		loc.Latitude = *lat
	}
	if lon != nil {
		loc.Longitude = *lon
	}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// Validate checks latitude is in [-90, 90] and longitude in [-180, 180].
// NaN and infinities are rejected: a NaN coordinate never compares equal,
// not even to itself.
func (l Location) Validate() error {
	if !finite(l.Latitude) || !finite(l.Longitude) {
		return fmt.Errorf("coordinate (%v, %v) is not a finite number", l.Latitude, l.Longitude)
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", l.Longitude)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
