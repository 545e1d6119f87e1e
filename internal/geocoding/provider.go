package geocoding

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/ampere/internal/models"
)

// Provider is an interface that defines a method for geocoding a free-text place name.
// The Geocode method returns the coordinates of the best match, or an error when the
// place is unknown or the provider could not be reached.
type Provider interface {
	Geocode(ctx context.Context, place string) (*models.Coordinates, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
