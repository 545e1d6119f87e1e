package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/ampere/internal/evrange"
	"github.com/UnknownOlympus/ampere/internal/models"
	"github.com/UnknownOlympus/ampere/internal/resolver"
	"github.com/UnknownOlympus/ampere/internal/service"
)

// MaxK is the largest number of stations a single request may ask for.
const MaxK = 50

var errBadRequest = errors.New("bad request")

// StationFinder finds the stations nearest to a place or a point.
type StationFinder interface {
	FindNearestByPlace(ctx context.Context, place string, k int) (*service.Lookup, error)
	FindNearest(ctx context.Context, coords models.Coordinates, k int) (*service.Lookup, error)
}

// RangeEstimator estimates how far a vehicle can drive.
type RangeEstimator interface {
	Estimate(vehicleType string, capacityKWh, chargePercent float64) (*models.RangeEstimate, error)
}

// HealthChecker reports whether a dependency answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	log       *slog.Logger
	finder    StationFinder
	estimator RangeEstimator
	health    HealthChecker
	defaultK  int
}

// NewHandler creates a Handler. health may be nil when the service runs without a database.
func NewHandler(
	log *slog.Logger,
	finder StationFinder,
	estimator RangeEstimator,
	health HealthChecker,
	defaultK int,
) *Handler {
	if defaultK <= 0 {
		defaultK = resolver.DefaultK
	}

	return &Handler{
		log:       log,
		finder:    finder,
		estimator: estimator,
		health:    health,
		defaultK:  defaultK,
	}
}

type stationResponse struct {
	Name           string            `json:"name"`
	Latitude       float64           `json:"latitude"`
	Longitude      float64           `json:"longitude"`
	Source         models.SourceKind `json:"source"`
	SourceName     string            `json:"source_name"`
	DistanceKm     float64           `json:"distance_km"`
	ConnectorCount *int              `json:"connector_count,omitempty"`
	Connections    []string          `json:"connections,omitempty"`
}

type nearestResponse struct {
	Place    string                   `json:"place,omitempty"`
	Query    models.Coordinates       `json:"query"`
	Stations []stationResponse        `json:"stations"`
	Failures []resolver.SourceFailure `json:"failures,omitempty"`
}

type rangeRequest struct {
	VehicleType        string  `json:"vehicle_type"`
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`
	ChargePercent      float64 `json:"charge_percent"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Nearest answers GET /api/v1/stations/nearest with either ?place= or ?lat=&lon=.
func (h *Handler) Nearest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	k, err := h.parseK(query.Get("k"))
	if err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	var lookup *service.Lookup
	place := strings.TrimSpace(query.Get("place"))
	lat, lon := query.Get("lat"), query.Get("lon")

	switch {
	case place != "" && (lat != "" || lon != ""):
		h.writeError(ctx, w, http.StatusBadRequest, "use either place or lat/lon, not both")
		return
	case place != "":
		lookup, err = h.finder.FindNearestByPlace(ctx, place, k)
	default:
		coords, errCoords := parseCoordinates(lat, lon)
		if errCoords != nil {
			h.writeError(ctx, w, http.StatusBadRequest, errCoords.Error())
			return
		}
		lookup, err = h.finder.FindNearest(ctx, coords, k)
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlaceNotFound):
			h.writeError(ctx, w, http.StatusNotFound, "no charging stations found nearby")
		case errors.Is(err, resolver.ErrInvalidArgument):
			h.writeError(ctx, w, http.StatusBadRequest, err.Error())
		default:
			h.log.ErrorContext(ctx, "Failed to find nearest stations", "error", err)
			h.writeError(ctx, w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, toNearestResponse(lookup))
}

// Range answers POST /api/v1/range.
func (h *Handler) Range(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req rangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "invalid JSON")
		return
	}

	estimate, err := h.estimator.Estimate(req.VehicleType, req.BatteryCapacityKWh, req.ChargePercent)
	if err != nil {
		switch {
		case errors.Is(err, evrange.ErrInvalidArgument), errors.Is(err, evrange.ErrUnknownVehicle):
			h.writeError(ctx, w, http.StatusBadRequest, err.Error())
		default:
			h.log.ErrorContext(ctx, "Failed to estimate range", "error", err)
			h.writeError(ctx, w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, estimate)
}

// Health answers GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	if h.health != nil {
		if err := h.health.Ping(ctx); err != nil {
			h.log.WarnContext(ctx, "Health check failed", "error", err)
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		h.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}

	h.log.DebugContext(ctx, "Health checks completed", "status", status)
}

func (h *Handler) parseK(raw string) (int, error) {
	if raw == "" {
		return h.defaultK, nil
	}

	k, err := strconv.Atoi(raw)
	if err != nil || k <= 0 || k > MaxK {
		return 0, fmt.Errorf("%w: k must be an integer between 1 and %d", errBadRequest, MaxK)
	}

	return k, nil
}

func parseCoordinates(rawLat, rawLon string) (models.Coordinates, error) {
	if rawLat == "" || rawLon == "" {
		return models.Coordinates{}, fmt.Errorf("%w: place or both lat and lon are required", errBadRequest)
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: lat must be a number", errBadRequest)
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: lon must be a number", errBadRequest)
	}

	coords := models.Coordinates{Latitude: lat, Longitude: lon}
	if !coords.Valid() {
		return models.Coordinates{}, fmt.Errorf("%w: coordinates out of range", errBadRequest)
	}

	return coords, nil
}

func toNearestResponse(lookup *service.Lookup) nearestResponse {
	resp := nearestResponse{
		Place:    lookup.Place,
		Query:    lookup.Query,
		Stations: make([]stationResponse, len(lookup.Stations)),
		Failures: lookup.Failures,
	}

	for i, station := range lookup.Stations {
		resp.Stations[i] = stationResponse{
			Name:           station.Name,
			Latitude:       station.Coordinates.Latitude,
			Longitude:      station.Coordinates.Longitude,
			Source:         station.Source,
			SourceName:     station.SourceName,
			DistanceKm:     station.DistanceKm,
			ConnectorCount: station.ConnectorCount,
			Connections:    station.Connections,
		}
	}

	return resp
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	h.writeJSON(ctx, w, status, errorResponse{Error: msg})
}
