package stations

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

// OpenChargeMapBaseURL -- Open Charge Map POI endpoint.
const OpenChargeMapBaseURL = "https://api.openchargemap.io/v3/poi"

// Common errors for Open Charge Map source.
var (
	ErrOpenChargeMapUnauthorized = errors.New("open charge map API unauthorized (invalid API key)")
	ErrOpenChargeMapNoAPIKey     = errors.New("API key is required for Open Charge Map source")
)

// OpenChargeMapSource queries the Open Charge Map directory of charging points.
type OpenChargeMapSource struct {
	name       string
	client     HTTPClient
	baseURL    string
	apiKey     string
	maxResults int
	limiter    *rate.Limiter
	log        *slog.Logger
}

type ocmPOI struct {
	ID          int `json:"ID"`
	AddressInfo *struct {
		Title     string   `json:"Title"`
		Latitude  *float64 `json:"Latitude"`
		Longitude *float64 `json:"Longitude"`
	} `json:"AddressInfo"`
	NumberOfPoints *int `json:"NumberOfPoints"`
	Connections    []struct {
		ConnectionType *struct {
			Title string `json:"Title"`
		} `json:"ConnectionType"`
		StatusType *struct {
			Title string `json:"Title"`
		} `json:"StatusType"`
		PowerKW  *float64 `json:"PowerKW"`
		Quantity *int     `json:"Quantity"`
	} `json:"Connections"`
}

// NewOpenChargeMapSource creates a source using the public Open Charge Map endpoint.
func NewOpenChargeMapSource(name, apiKey string, maxResults, rateLimit int, log *slog.Logger) *OpenChargeMapSource {
	const timeout = 10

	return NewOpenChargeMapSourceWithClient(
		&http.Client{Timeout: timeout * time.Second},
		name,
		apiKey,
		maxResults,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewOpenChargeMapSourceWithClient allows injecting custom HTTP client and limiter.
func NewOpenChargeMapSourceWithClient(
	client HTTPClient,
	name, apiKey string,
	maxResults int,
	limiter *rate.Limiter,
	log *slog.Logger,
) *OpenChargeMapSource {
	return &OpenChargeMapSource{
		name:       name,
		client:     client,
		baseURL:    OpenChargeMapBaseURL,
		apiKey:     apiKey,
		maxResults: maxResults,
		limiter:    limiter,
		log:        log,
	}
}

func (o *OpenChargeMapSource) Name() string { return o.name }

func (o *OpenChargeMapSource) Kind() models.SourceKind { return models.SourceChargingNetwork }

// QueryStations asks Open Charge Map for the charging points within radiusKm of center.
func (o *OpenChargeMapSource) QueryStations(
	ctx context.Context,
	center models.Coordinates,
	radiusKm float64,
) ([]models.StationCandidate, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(o.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("output", "json")
	query.Set("latitude", strconv.FormatFloat(center.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(center.Longitude, 'f', -1, 64))
	query.Set("distance", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	query.Set("distanceunit", "KM")
	query.Set("maxresults", strconv.Itoa(o.maxResults))
	query.Set("compact", "false")
	query.Set("verbose", "false")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute open charge map request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrOpenChargeMapUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("open charge map API returned status %d: %s", resp.StatusCode, string(body))
	}

	var pois []ocmPOI
	if err = json.NewDecoder(resp.Body).Decode(&pois); err != nil {
		return nil, fmt.Errorf("failed to decode open charge map response: %w", err)
	}

	candidates := make([]models.StationCandidate, 0, len(pois))
	for _, poi := range pois {
		candidate, ok := o.toCandidate(poi)
		if !ok {
			o.log.DebugContext(ctx, "Skipping Open Charge Map entry without coordinates", "id", poi.ID)
			continue
		}
		candidates = append(candidates, candidate)
	}

	o.log.DebugContext(ctx, "Open Charge Map stations found", "received", len(pois), "usable", len(candidates))

	return candidates, nil
}

func (o *OpenChargeMapSource) toCandidate(poi ocmPOI) (models.StationCandidate, bool) {
	if poi.AddressInfo == nil || poi.AddressInfo.Latitude == nil || poi.AddressInfo.Longitude == nil {
		return models.StationCandidate{}, false
	}

	name := strings.TrimSpace(poi.AddressInfo.Title)
	if name == "" {
		name = fmt.Sprintf("Open Charge Map #%d", poi.ID)
	}

	candidate := models.StationCandidate{
		Name: name,
		Coordinates: models.Coordinates{
			Latitude:  *poi.AddressInfo.Latitude,
			Longitude: *poi.AddressInfo.Longitude,
		},
		Source:     models.SourceChargingNetwork,
		SourceName: o.name,
	}

	if poi.NumberOfPoints != nil && *poi.NumberOfPoints >= 0 {
		count := *poi.NumberOfPoints
		candidate.ConnectorCount = &count
	}

	for _, conn := range poi.Connections {
		var parts []string
		if conn.Quantity != nil && *conn.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%dx", *conn.Quantity))
		}
		if conn.ConnectionType != nil && conn.ConnectionType.Title != "" {
			parts = append(parts, conn.ConnectionType.Title)
		}
		if conn.PowerKW != nil && *conn.PowerKW > 0 {
			parts = append(parts, strconv.FormatFloat(*conn.PowerKW, 'f', -1, 64)+" kW")
		}
		if conn.StatusType != nil && conn.StatusType.Title != "" {
			parts = append(parts, conn.StatusType.Title)
		}
		if len(parts) > 0 {
			candidate.Connections = append(candidate.Connections, strings.Join(parts, " "))
		}
	}

	return candidate, true
}
