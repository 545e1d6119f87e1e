package stations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/ampere/internal/geo"
	"github.com/UnknownOlympus/ampere/internal/models"
	"golang.org/x/time/rate"
)

const (
	// NominatimSearchURL -- public Nominatim search endpoint.
	NominatimSearchURL = "https://nominatim.openstreetmap.org/search"
	// NominatimUserAgent must include contact info per Nominatim usage policy.
	NominatimUserAgent = "Ampere-Station-Resolver/1.0 (https://github.com/UnknownOlympus/ampere)"
)

// NominatimPOISource searches OpenStreetMap for charging stations around a point.
// Nominatim allows 1 request/second for fair use, so the limiter defaults to that.
type NominatimPOISource struct {
	name       string
	client     HTTPClient
	baseURL    string
	userAgent  string
	maxResults int
	limiter    *rate.Limiter
	log        *slog.Logger
}

type nominatimPlace struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// NewNominatimPOISource creates a POI source against the public Nominatim API.
func NewNominatimPOISource(name string, maxResults int, log *slog.Logger) *NominatimPOISource {
	const timeout = 10

	return NewNominatimPOISourceWithClient(
		&http.Client{Timeout: timeout * time.Second},
		name,
		maxResults,
		rate.NewLimiter(rate.Every(time.Second), 1),
		log,
	)
}

// NewNominatimPOISourceWithClient creates a POI source with a custom HTTP client and limiter.
func NewNominatimPOISourceWithClient(
	client HTTPClient,
	name string,
	maxResults int,
	limiter *rate.Limiter,
	log *slog.Logger,
) *NominatimPOISource {
	return &NominatimPOISource{
		name:       name,
		client:     client,
		baseURL:    NominatimSearchURL,
		userAgent:  NominatimUserAgent,
		maxResults: maxResults,
		limiter:    limiter,
		log:        log,
	}
}

func (n *NominatimPOISource) Name() string { return n.name }

func (n *NominatimPOISource) Kind() models.SourceKind { return models.SourceGeocodingPOI }

// QueryStations runs a bounded "charging station" search in the box around the circle.
// Entries whose coordinates cannot be parsed are skipped.
func (n *NominatimPOISource) QueryStations(
	ctx context.Context,
	center models.Coordinates,
	radiusKm float64,
) ([]models.StationCandidate, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(n.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	box := geo.BoundingBox(center, radiusKm)
	query := reqURL.Query()
	query.Set("q", "charging station")
	query.Set("format", "json")
	query.Set("limit", strconv.Itoa(n.maxResults))
	query.Set("viewbox", fmt.Sprintf("%s,%s,%s,%s",
		formatDegrees(box.MinLon), formatDegrees(box.MaxLat), formatDegrees(box.MaxLon), formatDegrees(box.MinLat)))
	query.Set("bounded", "1")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute nominatim search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var places []nominatimPlace
	if err = json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	candidates := make([]models.StationCandidate, 0, len(places))
	for _, place := range places {
		lat, errLat := strconv.ParseFloat(place.Lat, 64)
		lon, errLon := strconv.ParseFloat(place.Lon, 64)
		if errLat != nil || errLon != nil {
			n.log.DebugContext(ctx, "Skipping Nominatim place with bad coordinates",
				"place_id", place.PlaceID, "lat", place.Lat, "lon", place.Lon)
			continue
		}

		candidates = append(candidates, models.StationCandidate{
			Name:        placeName(place),
			Coordinates: models.Coordinates{Latitude: lat, Longitude: lon},
			Source:      models.SourceGeocodingPOI,
			SourceName:  n.name,
		})
	}

	return withinRadius(center, radiusKm, candidates), nil
}

func placeName(place nominatimPlace) string {
	if name := strings.TrimSpace(place.Name); name != "" {
		return name
	}

	first, _, _ := strings.Cut(place.DisplayName, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}

	return "Charging station"
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
