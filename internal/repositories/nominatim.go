package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"weather-snapshot/internal/models"
	"weather-snapshot/pkg/logger"
)

const NominatimBaseURL = "https://nominatim.openstreetmap.org/reverse"

type NominatimRepository struct {
	baseURL    string
	userAgent  string
	httpClient HTTPClient
	l          *logger.Logger
}

func NewNominatimRepository(baseURL, userAgent string, l *logger.Logger, httpClient HTTPClient) *NominatimRepository {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}

	return &NominatimRepository{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		l:          l,
	}
}

func (n *NominatimRepository) Name() string {
	return "nominatim"
}

type NominatimAddress struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	State   string `json:"state"`
	Suburb  string `json:"suburb"`
	County  string `json:"county"`
}

type NominatimResponse struct {
	DisplayName string           `json:"display_name"`
	Address     NominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

// PlaceName picks the most specific populated name, or "" when none is set.
func (a NominatimAddress) PlaceName() string {
	for _, name := range []string{a.City, a.Town, a.Village, a.State, a.Suburb, a.County} {
		if name != "" {
			return name
		}
	}
	return ""
}

// ReversePlace resolves coordinates to a place name. An address with no usable name
// yields "" and no error.
func (n *NominatimRepository) ReversePlace(ctx context.Context, coords models.Coordinates) (string, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("format", "json")

	n.l.Info("making nominatim reverse request", map[string]any{
		"params": coords.String(),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", models.ErrTransport, err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to do request: %w", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %w", models.ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP error (status %d): %s", models.ErrTransport, resp.StatusCode, excerpt(body))
	}

	var response NominatimResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%w: failed to parse JSON response: %w", models.ErrParse, err)
	}

	// nominatim reports "Unable to geocode" with a 200
	if response.Error != "" {
		n.l.Warning("nominatim returned no address", map[string]any{"reason": response.Error})
		return "", nil
	}

	place := response.Address.PlaceName()

	n.l.Debug("resolved place", map[string]any{
		"place":        place,
		"display_name": response.DisplayName,
	})

	return place, nil
}
