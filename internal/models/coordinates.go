package models

import "math"

// Coordinates represents a geographical point defined by its longitude and latitude.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
}

// Valid reports whether both components are finite numbers.
func (c Coordinates) Valid() bool {
	return isFinite(c.Latitude) && isFinite(c.Longitude)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
