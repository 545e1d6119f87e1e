package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/UnknownOlympus/ampere/internal/geocoding"
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

func TestNominatimProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "Langata", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Equal(t, "ke", req.URL.Query().Get("countrycodes"))
				assert.Equal(t, geocoding.NominatimUserAgent, req.Header.Get("User-Agent"))

				return jsonResponse(http.StatusOK, `[{"lat":"-1.3621","lon":"36.7519"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "ke", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Langata")

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.InEpsilon(t, -1.3621, coords.Latitude, 0.0001)
		assert.InEpsilon(t, 36.7519, coords.Longitude, 0.0001)
	})

	t.Run("no country filter", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.False(t, req.URL.Query().Has("countrycodes"))
				return jsonResponse(http.StatusOK, `[{"lat":"-1.2921","lon":"36.8219"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		_, err := provider.Geocode(ctx, "Nairobi")

		require.NoError(t, err)
	})

	t.Run("empty response from API", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Atlantis")

		require.Nil(t, coords)
		assert.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Langata")

		require.Nil(t, coords)
		require.ErrorContains(t, err, "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `invalid json`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Langata")

		require.Nil(t, coords)
		require.ErrorContains(t, err, "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"invalid","lon":"36.7519"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Langata")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"-1.3621","lon":"invalid"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Langata")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid longitude")
	})

	t.Run("coordinates out of range", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"95","lon":"36.7519"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Langata")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Langata")

		require.Nil(t, coords)
		require.ErrorContains(t, err, "failed to execute geocoding request")
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("context cancellation", func(t *testing.T) {
		newCtx, cancel := context.WithCancel(context.Background())
		cancel()

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, req.Context().Err()
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(newCtx, "Langata")

		require.Nil(t, coords)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNominatimProvider_PlaceFallback(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("fallback to the broader place when the full one fails", func(t *testing.T) {
		var queries []string
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				query := req.URL.Query().Get("q")
				queries = append(queries, query)

				switch query {
				case "Kiambu Road Shell, Ridgeways, Nairobi", "Ridgeways, Nairobi":
					return jsonResponse(http.StatusOK, `[]`), nil
				case "Nairobi":
					return jsonResponse(http.StatusOK, `[{"lat":"-1.2921","lon":"36.8219"}]`), nil
				}

				t.Fatalf("Unexpected query: %s", query)
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Kiambu Road Shell, Ridgeways,  Nairobi")

		require.NoError(t, err)
		assert.InEpsilon(t, -1.2921, coords.Latitude, 0.0001)
		assert.Equal(t,
			[]string{"Kiambu Road Shell, Ridgeways, Nairobi", "Ridgeways, Nairobi", "Nairobi"},
			queries)
	})

	t.Run("success on first try", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return jsonResponse(http.StatusOK, `[{"lat":"-1.2676","lon":"36.8108"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Westlands, Nairobi")

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.Equal(t, 1, requestCount, "should succeed on first try")
	})

	t.Run("http error stops the fallback", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return jsonResponse(http.StatusServiceUnavailable, `down`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		_, err := provider.Geocode(ctx, "Westlands, Nairobi")

		require.ErrorContains(t, err, "nominatim API returned status 503")
		assert.Equal(t, 1, requestCount)
	})

	t.Run("all fallbacks fail", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		coords, err := provider.Geocode(ctx, "Nowhere Street, Unknown Town, Atlantis")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
		assert.Equal(t, 3, requestCount)
	})

	t.Run("single-part place no fallback", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", rate.NewLimiter(rate.Inf, 1), logger)
		_, err := provider.Geocode(ctx, "Kisumu")

		require.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
		assert.Equal(t, 1, requestCount, "single-part place should only try once")
	})

	t.Run("fallbacks are throttled", func(t *testing.T) {
		var sentAt []time.Time
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				sentAt = append(sentAt, time.Now())
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		interval := 20 * time.Millisecond
		provider := geocoding.NewNominatimProviderWithClient(
			mockClient, "", rate.NewLimiter(rate.Every(interval), 1), logger,
		)
		_, err := provider.Geocode(ctx, "A Road, B Estate, C Ward, Nairobi")

		require.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
		require.Len(t, sentAt, 4)
		for i := 1; i < len(sentAt); i++ {
			assert.GreaterOrEqual(t, sentAt[i].Sub(sentAt[i-1]), interval-2*time.Millisecond)
		}
	})

	t.Run("rate limiter honours context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		provider := geocoding.NewNominatimProviderWithClient(
			&mockHTTPClient{}, "", rate.NewLimiter(1, 1), logger,
		)

		coords, err := provider.Geocode(canceled, "Langata, Nairobi")

		require.Nil(t, coords)
		require.ErrorIs(t, err, context.Canceled)
		require.ErrorContains(t, err, "rate limit exceeded")
	})
}

func TestNewNominatimProvider(t *testing.T) {
	provider := geocoding.NewNominatimProvider("ke", 0, slog.Default())

	require.NotNil(t, provider)
}
