package models

// SourceKind tells which family of source observed a station.
type SourceKind string

const (
	// SourceHardcoded is a static list shipped with configuration or stored in the catalogue.
	SourceHardcoded SourceKind = "hardcoded"
	// SourceGeocodingPOI is a general purpose places/POI search.
	SourceGeocodingPOI SourceKind = "geocoding_poi"
	// SourceChargingNetwork is a charging network directory API.
	SourceChargingNetwork SourceKind = "charging_network"
)

// StationCandidate is one observation of a charging station made by one source.
type StationCandidate struct {
	Name           string      `json:"name"`
	Coordinates    Coordinates `json:"coordinates"`
	Source         SourceKind  `json:"source"`
	SourceName     string      `json:"source_name"`
	ConnectorCount *int        `json:"connector_count,omitempty"`
	Connections    []string    `json:"connections,omitempty"`
}

// HasConnectorInfo reports whether the source told anything about the connectors.
func (s StationCandidate) HasConnectorInfo() bool {
	return s.ConnectorCount != nil || len(s.Connections) > 0
}

// RankedStation is a candidate that survived the merge, with its distance to the query point.
type RankedStation struct {
	StationCandidate

	DistanceKm float64 `json:"distance_km"`
	Priority   int     `json:"priority"` // index of the source in the resolution order
}

// PendingStation is a catalogue station imported with an address but no coordinates yet.
type PendingStation struct {
	ID      int    // ID is the catalogue identifier of the station.
	Name    string // Name is the display name of the station.
	Address string // Address is the location to be geocoded.
}
