package models

import (
	"encoding/json"
	"math"
)

// Readings is an hourly value series. JSON nulls decode to NaN so a missing hour
// keeps its slot instead of reading as zero.
type Readings []float64

// UnmarshalJSON accepts an array of numbers and nulls.
func (r *Readings) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*r = nil
		return nil
	}

	out := make(Readings, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*r = out
	return nil
}

// Hourly is the hourly block of a forecast response. Only Time and Temperature2m
// are consumed; the remaining series are carried in Raw untouched.
type Hourly struct {
	Time          []string `json:"time"`
	Temperature2m Readings `json:"temperature_2m"`
	Precipitation Readings `json:"precipitation,omitempty"`
	WindSpeed10m  Readings `json:"wind_speed_10m,omitempty"`
}

// WeatherResponse keeps the forecast body verbatim next to the parsed hourly block.
// Hourly is nil when the body has no "hourly" member.
type WeatherResponse struct {
	Raw    []byte
	Hourly *Hourly
}
