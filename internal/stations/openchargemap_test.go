package stations_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/ampere/internal/models"
	"github.com/UnknownOlympus/ampere/internal/stations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

const ocmResponse = `[
	{
		"ID": 101,
		"AddressInfo": {"Title": "Westlands Hub", "Latitude": -1.2676, "Longitude": 36.8108},
		"NumberOfPoints": 4,
		"Connections": [
			{
				"ConnectionType": {"Title": "Type 2 (Socket Only)"},
				"StatusType": {"Title": "Operational"},
				"PowerKW": 22,
				"Quantity": 2
			},
			{
				"ConnectionType": {"Title": "CCS (Type 2)"},
				"PowerKW": 50,
				"Quantity": 1
			},
			{}
		]
	},
	{
		"ID": 102,
		"AddressInfo": {"Title": "", "Latitude": -1.3000, "Longitude": 36.8000}
	},
	{
		"ID": 103,
		"AddressInfo": {"Title": "No coordinates"}
	},
	{
		"ID": 104
	}
]`

func newOCM(client stations.HTTPClient) *stations.OpenChargeMapSource {
	return stations.NewOpenChargeMapSourceWithClient(
		client, "openchargemap", "ocm-key", 20, rate.NewLimiter(rate.Inf, 1), slog.Default(),
	)
}

func TestOpenChargeMapSource(t *testing.T) {
	t.Parallel()

	t.Run("maps points and connections", func(t *testing.T) {
		t.Parallel()
		client := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "api.openchargemap.io/v3/poi")
				assert.Equal(t, "ocm-key", req.Header.Get("X-API-Key"))

				query := req.URL.Query()
				assert.Equal(t, "-1.2921", query.Get("latitude"))
				assert.Equal(t, "36.8219", query.Get("longitude"))
				assert.Equal(t, "25", query.Get("distance"))
				assert.Equal(t, "KM", query.Get("distanceunit"))
				assert.Equal(t, "20", query.Get("maxresults"))

				return jsonResponse(http.StatusOK, ocmResponse), nil
			},
		}

		source := newOCM(client)
		found, err := source.QueryStations(t.Context(), nairobiCBD, 25)

		require.NoError(t, err)
		require.Len(t, found, 2, "entries without coordinates are dropped")

		hub := found[0]
		assert.Equal(t, "Westlands Hub", hub.Name)
		assert.Equal(t, models.Coordinates{Latitude: -1.2676, Longitude: 36.8108}, hub.Coordinates)
		assert.Equal(t, models.SourceChargingNetwork, hub.Source)
		assert.Equal(t, "openchargemap", hub.SourceName)
		require.NotNil(t, hub.ConnectorCount)
		assert.Equal(t, 4, *hub.ConnectorCount)
		assert.Equal(t, []string{
			"2x Type 2 (Socket Only) 22 kW Operational",
			"CCS (Type 2) 50 kW",
		}, hub.Connections)

		unnamed := found[1]
		assert.Equal(t, "Open Charge Map #102", unnamed.Name)
		assert.Nil(t, unnamed.ConnectorCount)
		assert.Empty(t, unnamed.Connections)
		assert.False(t, unnamed.HasConnectorInfo())

		assert.Equal(t, models.SourceChargingNetwork, source.Kind())
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()
		client := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusForbidden, `REJECTED_APIKEY_INVALID`), nil
			},
		}

		_, err := newOCM(client).QueryStations(t.Context(), nairobiCBD, 25)

		require.ErrorIs(t, err, stations.ErrOpenChargeMapUnauthorized)
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()
		client := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusBadGateway, `upstream down`), nil
			},
		}

		_, err := newOCM(client).QueryStations(t.Context(), nairobiCBD, 25)

		require.ErrorContains(t, err, "open charge map API returned status 502: upstream down")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		t.Parallel()
		client := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"not":"a list"}`), nil
			},
		}

		_, err := newOCM(client).QueryStations(t.Context(), nairobiCBD, 25)

		require.ErrorContains(t, err, "failed to decode open charge map response")
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()
		client := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		_, err := newOCM(client).QueryStations(t.Context(), nairobiCBD, 25)

		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("canceled while waiting for the limiter", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		source := stations.NewOpenChargeMapSourceWithClient(
			&mockHTTPClient{}, "openchargemap", "ocm-key", 20, rate.NewLimiter(1, 1), slog.Default(),
		)
		_, err := source.QueryStations(ctx, nairobiCBD, 25)

		require.ErrorContains(t, err, "rate limit exceeded")
	})
}
