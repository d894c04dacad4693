package models

// Artifacts describes what a successful run produced.
type Artifacts struct {
	DatedJSON  string `json:"dated_json"`
	DatedPNG   string `json:"dated_png"`
	LatestJSON string `json:"latest_json"`
	LatestPNG  string `json:"latest_png"`
	Place      string `json:"place"`
	Points     int    `json:"points"`
}
