package models

import "fmt"

// ForecastQuery selects the location and variable sets requested from the forecast API.
type ForecastQuery struct {
	Coordinates Coordinates
	Current     bool
	Hourly      []string
	Daily       []string
	Timezone    string
}

// RequestParams summarizes the query for logging.
func (q *ForecastQuery) RequestParams() string {
	return fmt.Sprintf("%s hourly: %v daily: %v tz: %s", q.Coordinates, q.Hourly, q.Daily, q.Timezone)
}
