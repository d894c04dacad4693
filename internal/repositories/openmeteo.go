package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"weather-snapshot/internal/models"
	"weather-snapshot/pkg/logger"
)

const (
	OpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

	// errorBodyLimit caps how much of a failed response ends up in the error.
	errorBodyLimit = 512
)

type OpenMeteoRepository struct {
	baseURL    string
	httpClient HTTPClient
	l          *logger.Logger
}

func NewOpenMeteoRepository(baseURL string, l *logger.Logger, httpClient HTTPClient) *OpenMeteoRepository {
	if baseURL == "" {
		baseURL = OpenMeteoBaseURL
	}

	return &OpenMeteoRepository{
		baseURL:    baseURL,
		httpClient: httpClient,
		l:          l,
	}
}

func (o *OpenMeteoRepository) Name() string {
	return "open-meteo"
}

type OpenMeteoErrorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// FetchForecast makes exactly one request. The body is returned verbatim in Raw;
// a body without an hourly block is not an error here.
func (o *OpenMeteoRepository) FetchForecast(ctx context.Context, query models.ForecastQuery) (models.WeatherResponse, error) {
	var forecast models.WeatherResponse

	reqURL := o.buildURL(query)

	o.l.Info("making openmeteo API request", map[string]any{
		"params": query.RequestParams(),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return forecast, fmt.Errorf("%w: failed to create request: %w", models.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return forecast, fmt.Errorf("%w: failed to do request: %w", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	o.l.Info("received openmeteo API response", map[string]any{
		"status":     resp.StatusCode,
		"statusText": resp.Status,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return forecast, fmt.Errorf("%w: failed to read response body: %w", models.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp OpenMeteoErrorResponse
		if jsonErr := json.Unmarshal(body, &errorResp); jsonErr == nil && errorResp.Error {
			return forecast, fmt.Errorf("%w: API error (status %d): %s", models.ErrTransport, resp.StatusCode, errorResp.Reason)
		}
		return forecast, fmt.Errorf("%w: HTTP error (status %d): %s", models.ErrTransport, resp.StatusCode, excerpt(body))
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return forecast, fmt.Errorf("%w: response is not a JSON object: %s", models.ErrParse, excerpt(body))
	}

	var response struct {
		Hourly *models.Hourly `json:"hourly"`
	}

	if err = json.Unmarshal(body, &response); err != nil {
		return forecast, fmt.Errorf("%w: failed to parse JSON response: %w", models.ErrParse, err)
	}

	hours := 0
	if response.Hourly != nil {
		hours = len(response.Hourly.Time)
	}
	o.l.Info("parsed API response", map[string]any{
		"bytes": len(body),
		"hours": hours,
	})

	forecast.Raw = body
	forecast.Hourly = response.Hourly

	return forecast, nil
}

func (o *OpenMeteoRepository) buildURL(query models.ForecastQuery) string {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(query.Coordinates.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(query.Coordinates.Longitude, 'f', -1, 64))
	if query.Current {
		values.Set("current_weather", "true")
	}
	if len(query.Hourly) > 0 {
		values.Set("hourly", strings.Join(query.Hourly, ","))
	}
	if len(query.Daily) > 0 {
		values.Set("daily", strings.Join(query.Daily, ","))
	}
	if query.Timezone != "" {
		values.Set("timezone", query.Timezone)
	}

	return fmt.Sprintf("%s?%s", o.baseURL, values.Encode())
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > errorBodyLimit {
		return s[:errorBodyLimit] + "..."
	}
	return s
}
