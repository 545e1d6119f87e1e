package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/ampere/internal/models"
	"golang.org/x/time/rate"
)

// MapboxBaseURL -- Mapbox forward geocoding endpoint (mapbox.places dataset).
const MapboxBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Common errors for Mapbox provider.
var (
	ErrMapboxEmptyResponse = errors.New("mapbox API returned empty response")
	ErrMapboxEmptyPlace    = errors.New("mapbox provider got empty place")
	ErrMapboxInvalidCoords = errors.New("mapbox API returned invalid coordinates")
	ErrMapboxUnauthorized  = errors.New("mapbox API unauthorized (invalid access token)")
)

// MapboxProvider implements geocoding using the Mapbox Geocoding API.
type MapboxProvider struct {
	client  HTTPClient
	baseURL string
	token   string
	country string
	limiter *rate.Limiter
	log     *slog.Logger
}

type mapboxResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"` // [lon, lat]
	} `json:"features"`
}

// NewMapboxProvider creates a new Mapbox geocoding provider.
func NewMapboxProvider(token, country string, rateLimit int, log *slog.Logger) *MapboxProvider {
	const timeout = 10

	return NewMapboxProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		token,
		country,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewMapboxProviderWithClient allows injecting custom HTTP client.
func NewMapboxProviderWithClient(
	client HTTPClient,
	token, country string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *MapboxProvider {
	return &MapboxProvider{
		client:  client,
		baseURL: MapboxBaseURL,
		token:   token,
		country: country,
		limiter: limiter,
		log:     log,
	}
}

// Geocode converts a place name into coordinates using the Mapbox API.
func (mp *MapboxProvider) Geocode(ctx context.Context, place string) (*models.Coordinates, error) {
	const centerLength = 2

	place = strings.TrimSpace(place)
	if place == "" {
		return nil, ErrMapboxEmptyPlace
	}

	if err := mp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	mp.log.DebugContext(ctx, "Geocoding using Mapbox", "place", place)

	reqURL, err := url.Parse(mp.baseURL + "/" + url.PathEscape(place) + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("access_token", mp.token)
	query.Set("limit", "1")
	if mp.country != "" {
		query.Set("country", mp.country)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := mp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrMapboxUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		mp.log.ErrorContext(ctx, "Mapbox API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("mapbox API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result mapboxResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode mapbox response: %w", err)
	}

	if len(result.Features) == 0 {
		return nil, ErrMapboxEmptyResponse
	}

	feature := result.Features[0]
	if len(feature.Center) != centerLength {
		return nil, ErrMapboxInvalidCoords
	}

	coords := models.Coordinates{Latitude: feature.Center[1], Longitude: feature.Center[0]}
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrMapboxInvalidCoords, coords)
	}

	mp.log.DebugContext(ctx, "Mapbox found result", "place", place, "match", feature.PlaceName,
		"lat", coords.Latitude, "lon", coords.Longitude)

	return &coords, nil
}
