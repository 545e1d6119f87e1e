package evrange

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/UnknownOlympus/ampere/internal/models"
)

// Common errors for range estimation.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownVehicle  = errors.New("unknown vehicle type")
)

// DefaultEfficiency is the km/kWh table used when configuration provides none.
var DefaultEfficiency = EfficiencyTable{
	"car":        5,
	"motorcycle": 10,
	"tuk-tuk":    7,
}

// EfficiencyTable maps a vehicle category to its efficiency in km per kWh.
type EfficiencyTable map[string]float64

// EstimateRange returns how far the vehicle goes on usableKWh at the given efficiency.
func EstimateRange(usableKWh, efficiencyKmPerKWh float64) (float64, error) {
	if math.IsNaN(usableKWh) || usableKWh < 0 {
		return 0, fmt.Errorf("%w: usable energy must be non-negative, got %v", ErrInvalidArgument, usableKWh)
	}
	if math.IsNaN(efficiencyKmPerKWh) || efficiencyKmPerKWh <= 0 {
		return 0, fmt.Errorf("%w: efficiency must be positive, got %v", ErrInvalidArgument, efficiencyKmPerKWh)
	}

	return usableKWh * efficiencyKmPerKWh, nil
}

// UsableEnergy returns the energy left in a battery of capacityKWh charged to chargePercent.
func UsableEnergy(capacityKWh, chargePercent float64) (float64, error) {
	if math.IsNaN(capacityKWh) || capacityKWh <= 0 {
		return 0, fmt.Errorf("%w: battery capacity must be positive, got %v", ErrInvalidArgument, capacityKWh)
	}
	if math.IsNaN(chargePercent) || chargePercent < 0 || chargePercent > 100 {
		return 0, fmt.Errorf("%w: charge must be within [0, 100], got %v", ErrInvalidArgument, chargePercent)
	}

	return capacityKWh * (chargePercent / 100), nil
}

// Estimator computes range estimates from an efficiency table supplied by configuration.
type Estimator struct {
	table EfficiencyTable
}

// NewEstimator creates an Estimator. Category keys are matched case-insensitively.
func NewEstimator(table EfficiencyTable) (*Estimator, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: efficiency table is empty", ErrInvalidArgument)
	}

	normalized := make(EfficiencyTable, len(table))
	for category, rate := range table {
		if math.IsNaN(rate) || rate <= 0 {
			return nil, fmt.Errorf("%w: efficiency for %q must be positive", ErrInvalidArgument, category)
		}
		normalized[normalizeCategory(category)] = rate
	}

	return &Estimator{table: normalized}, nil
}

// Categories lists the vehicle categories the estimator knows about, sorted.
func (e *Estimator) Categories() []string {
	out := make([]string, 0, len(e.table))
	for category := range e.table {
		out = append(out, category)
	}
	slices.Sort(out)

	return out
}

// Estimate computes the range of a vehicle of the given category.
func (e *Estimator) Estimate(vehicleType string, capacityKWh, chargePercent float64) (*models.RangeEstimate, error) {
	category := normalizeCategory(vehicleType)
	rate, ok := e.table[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q, expected one of %s",
			ErrUnknownVehicle, vehicleType, strings.Join(e.Categories(), ", "))
	}

	usable, err := UsableEnergy(capacityKWh, chargePercent)
	if err != nil {
		return nil, err
	}

	rangeKm, err := EstimateRange(usable, rate)
	if err != nil {
		return nil, err
	}

	return &models.RangeEstimate{
		VehicleType:        category,
		UsableKWh:          usable,
		EfficiencyKmPerKWh: rate,
		RangeKm:            rangeKm,
	}, nil
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
