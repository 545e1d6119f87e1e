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
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/ampere/internal/models"
	"golang.org/x/time/rate"
)

const (
	// NominatimBaseURL -- public Nominatim search endpoint.
	NominatimBaseURL = "https://nominatim.openstreetmap.org/search"
	// NominatimUserAgent must include valid contact info per Nominatim usage policy:
	// https://operations.osmfoundation.org/policies/nominatim/
	NominatimUserAgent = "Ampere-Station-Resolver/1.0 (https://github.com/UnknownOlympus/ampere)"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
// Every request, fallbacks included, waits on the limiter.
type NominatimProvider struct {
	client       HTTPClient
	baseURL      string
	userAgent    string
	countryCodes string // optional comma separated ISO 3166-1 alpha-2 filter
	limiter      *rate.Limiter
	log          *slog.Logger
}

type nominatimResponse struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// NewNominatimProvider creates a new Nominatim geocoding provider.
// A non-positive rateLimit means the public instance policy of one request per second.
func NewNominatimProvider(countryCodes string, rateLimit int, log *slog.Logger) *NominatimProvider {
	const timeout = 10

	limit := rate.Every(time.Second)
	if rateLimit > 0 {
		limit = rate.Limit(rateLimit)
	}

	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		countryCodes,
		rate.NewLimiter(limit, 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client and limiter.
func NewNominatimProviderWithClient(
	client HTTPClient,
	countryCodes string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *NominatimProvider {
	return &NominatimProvider{
		client:       client,
		baseURL:      NominatimBaseURL,
		userAgent:    NominatimUserAgent,
		countryCodes: countryCodes,
		limiter:      limiter,
		log:          log,
	}
}

// Geocode converts a place name to geographic coordinates using the Nominatim API.
//
// Free-text places typed by drivers are often too specific for OSM ("Langata Road,
// Langata, Nairobi"), so components are dropped from the front one at a time until
// Nominatim finds something:
// 1. "Langata Road, Langata, Nairobi"
// 2. "Langata, Nairobi"
// 3. "Nairobi"
func (np *NominatimProvider) Geocode(ctx context.Context, place string) (*models.Coordinates, error) {
	np.log.DebugContext(ctx, "Geocoding using Nominatim", "place", place)

	variations := placeFallbacks(place)
	for idx, variation := range variations {
		coords, err := np.search(ctx, variation)
		if err == nil {
			if idx > 0 {
				np.log.InfoContext(ctx, "Geocoded using fallback place",
					"original", place, "fallback", variation, "fallback_level", idx)
			}
			return coords, nil
		}

		if !errors.Is(err, ErrNominatimEmptyResponse) {
			return nil, err
		}

		np.log.DebugContext(ctx, "Place variation returned no results", "variation", variation, "fallback_level", idx)
	}

	np.log.WarnContext(ctx, "All place fallbacks exhausted", "place", place, "variations_tried", len(variations))
	return nil, ErrNominatimEmptyResponse
}

// placeFallbacks returns place followed by progressively broader variations of it.
func placeFallbacks(place string) []string {
	parts := strings.Split(place, ",")
	cleaned := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			cleaned = append(cleaned, part)
		}
	}

	if len(cleaned) == 0 {
		return []string{strings.TrimSpace(place)}
	}

	variations := make([]string, 0, len(cleaned))
	for i := range cleaned {
		variations = append(variations, strings.Join(cleaned[i:], ", "))
	}

	return variations
}

// search performs a single geocoding request without fallback logic.
func (np *NominatimProvider) search(ctx context.Context, place string) (*models.Coordinates, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", place)
	query.Set("format", "json")
	query.Set("limit", "1")
	if np.countryCodes != "" {
		query.Set("countrycodes", np.countryCodes)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	coords := models.Coordinates{Latitude: lat, Longitude: lon}
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrNominatimInvalidCoords, coords)
	}

	return &coords, nil
}
