package models

// RangeEstimate is the outcome of a range calculation for one vehicle.
type RangeEstimate struct {
	VehicleType        string  `json:"vehicle_type"`
	UsableKWh          float64 `json:"usable_kwh"`
	EfficiencyKmPerKWh float64 `json:"efficiency_km_per_kwh"`
	RangeKm            float64 `json:"range_km"`
}
