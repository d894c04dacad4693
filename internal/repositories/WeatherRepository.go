package repositories

import (
	"context"
	"net/http"

	"weather-snapshot/config"
	"weather-snapshot/internal/models"
	"weather-snapshot/pkg/logger"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type WeatherRepository interface {
	Name() string
	FetchForecast(ctx context.Context, query models.ForecastQuery) (models.WeatherResponse, error)
}

type PlaceRepository interface {
	Name() string
	ReversePlace(ctx context.Context, coords models.Coordinates) (string, error)
}

// InitRepositories builds the forecast repository and, when geocoding is enabled,
// the place repository. The returned PlaceRepository is nil otherwise.
func InitRepositories(cfg *config.Config, l *logger.Logger, httpClient HTTPClient) (WeatherRepository, PlaceRepository) {
	forecasts := NewOpenMeteoRepository(cfg.Forecast.BaseURL, l, httpClient)

	if !cfg.Geocoder.Enabled {
		return forecasts, nil
	}

	return forecasts, NewNominatimRepository(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, l, httpClient)
}
