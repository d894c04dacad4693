package models

import "fmt"

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports an ErrConfig when either value is outside its geographic range.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrConfig, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrConfig, c.Longitude)
	}
	return nil
}

// String formats the point for log lines.
func (c Coordinates) String() string {
	return fmt.Sprintf("lat: %.4f lon: %.4f", c.Latitude, c.Longitude)
}
