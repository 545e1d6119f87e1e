package geocoding

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewProvider_RateLimitDefaults(t *testing.T) {
	t.Run("mapbox falls back to the default on non-positive limits", func(t *testing.T) {
		for _, limit := range []int{0, -1} {
			provider, err := NewProvider(ProviderConfig{
				Type:      ProviderTypeMapbox,
				APIKey:    "pk.test-token",
				RateLimit: limit,
				Logger:    slog.Default(),
			})

			require.NoError(t, err)
			mapbox, ok := provider.(*MapboxProvider)
			require.True(t, ok, "expected *MapboxProvider")
			assert.Equal(t, rate.Limit(10), mapbox.limiter.Limit(), "rate limit %d", limit)
		}
	})

	t.Run("nominatim defaults to one request per second", func(t *testing.T) {
		for _, limit := range []int{0, -1} {
			provider, err := NewProvider(ProviderConfig{
				Type:      ProviderTypeNominatim,
				RateLimit: limit,
				Logger:    slog.Default(),
			})

			require.NoError(t, err)
			nominatim, ok := provider.(*NominatimProvider)
			require.True(t, ok, "expected *NominatimProvider")
			assert.Equal(t, rate.Every(time.Second), nominatim.limiter.Limit(), "rate limit %d", limit)
			assert.Equal(t, 1, nominatim.limiter.Burst())
		}
	})

	t.Run("nominatim honours a configured limit", func(t *testing.T) {
		provider, err := NewProvider(ProviderConfig{
			Type:      ProviderTypeNominatim,
			RateLimit: 4,
			Logger:    slog.Default(),
		})

		require.NoError(t, err)
		nominatim, ok := provider.(*NominatimProvider)
		require.True(t, ok, "expected *NominatimProvider")
		assert.Equal(t, rate.Limit(4), nominatim.limiter.Limit())
	})
}
