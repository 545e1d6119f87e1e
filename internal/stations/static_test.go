package stations_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/ampere/internal/geo"
	"github.com/UnknownOlympus/ampere/internal/models"
	"github.com/UnknownOlympus/ampere/internal/stations"
	"github.com/UnknownOlympus/ampere/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var nairobiCBD = models.Coordinates{Latitude: -1.2921, Longitude: 36.8219}

func TestStaticSource(t *testing.T) {
	t.Parallel()

	t.Run("filters by radius and tags the source", func(t *testing.T) {
		t.Parallel()
		list := []models.StationCandidate{
			{Name: "Near", Coordinates: models.Coordinates{Latitude: -1.2950, Longitude: 36.8200}},
			{Name: "Far", Coordinates: models.Coordinates{Latitude: -4.0435, Longitude: 39.6682}},
		}
		source := stations.NewStaticSource("my-list", list, slog.Default())

		found, err := source.QueryStations(t.Context(), nairobiCBD, 25)

		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Near", found[0].Name)
		assert.Equal(t, models.SourceHardcoded, found[0].Source)
		assert.Equal(t, "my-list", found[0].SourceName)
		assert.Equal(t, "my-list", source.Name())
		assert.Equal(t, models.SourceHardcoded, source.Kind())
	})

	t.Run("no radius returns everything", func(t *testing.T) {
		t.Parallel()
		source := stations.NewStaticSource("static", stations.DefaultStaticStations, slog.Default())

		found, err := source.QueryStations(t.Context(), models.Coordinates{Latitude: 51.5, Longitude: -0.12}, 0)

		require.NoError(t, err)
		assert.Len(t, found, len(stations.DefaultStaticStations))
	})

	t.Run("callers cannot modify the list", func(t *testing.T) {
		t.Parallel()
		list := []models.StationCandidate{
			{Name: "Original", Coordinates: nairobiCBD},
		}
		source := stations.NewStaticSource("static", list, slog.Default())
		list[0].Name = "Changed by config owner"

		found, err := source.QueryStations(t.Context(), nairobiCBD, 1)
		require.NoError(t, err)
		found[0].Name = "Changed by caller"

		again, err := source.QueryStations(t.Context(), nairobiCBD, 1)
		require.NoError(t, err)
		assert.Equal(t, "Original", again[0].Name)
		assert.Empty(t, stations.DefaultStaticStations[0].SourceName, "defaults stay untagged")
	})

	t.Run("default list covers Nairobi", func(t *testing.T) {
		t.Parallel()
		source := stations.NewStaticSource("static", stations.DefaultStaticStations, slog.Default())

		found, err := source.QueryStations(t.Context(), nairobiCBD, 25)

		require.NoError(t, err)
		want := map[string]models.Coordinates{
			"Karen Charging Hub":    {Latitude: -1.317, Longitude: 36.707},
			"Junction Mall Charger": {Latitude: -1.312, Longitude: 36.782},
			"Galleria EV Point":     {Latitude: -1.329, Longitude: 36.721},
		}
		require.Len(t, found, len(want))
		for _, station := range found {
			coords, ok := want[station.Name]
			require.True(t, ok, "unexpected default station %q", station.Name)
			assert.Equal(t, coords, station.Coordinates)
			assert.Equal(t, models.SourceHardcoded, station.Source)
		}
	})
}

func TestCatalogueSource(t *testing.T) {
	t.Parallel()

	t.Run("queries the bounding box and trims the corners", func(t *testing.T) {
		t.Parallel()
		store := mocks.NewStationStore(t)
		box := geo.BoundingBox(nairobiCBD, 10)
		store.On("FetchStationsInBox", mock.Anything, box).Return([]models.StationCandidate{
			{Name: "Inside", Coordinates: models.Coordinates{Latitude: -1.2950, Longitude: 36.8200}},
			// inside the box corner but more than 10 km away
			{Name: "Corner", Coordinates: models.Coordinates{Latitude: box.MinLat + 0.001, Longitude: box.MinLon + 0.001}},
		}, nil).Once()

		source := stations.NewCatalogueSource("catalogue", store, slog.Default())
		found, err := source.QueryStations(t.Context(), nairobiCBD, 10)

		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Inside", found[0].Name)
		assert.Equal(t, models.SourceHardcoded, found[0].Source)
		assert.Equal(t, "catalogue", found[0].SourceName)
	})

	t.Run("no radius loads the whole world", func(t *testing.T) {
		t.Parallel()
		store := mocks.NewStationStore(t)
		world := geo.Box{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}
		store.On("FetchStationsInBox", mock.Anything, world).Return(nil, nil).Once()

		source := stations.NewCatalogueSource("catalogue", store, slog.Default())
		found, err := source.QueryStations(t.Context(), nairobiCBD, 0)

		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()
		store := mocks.NewStationStore(t)
		store.On("FetchStationsInBox", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

		source := stations.NewCatalogueSource("catalogue", store, slog.Default())
		found, err := source.QueryStations(t.Context(), nairobiCBD, 10)

		require.Nil(t, found)
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to load catalogue stations")
	})
}
