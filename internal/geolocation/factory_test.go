package geolocation_test

import (
	"testing"

	"github.com/UnknownOlympus/icarus/internal/geolocation"
	"github.com/UnknownOlympus/icarus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	t.Run("client source has no poller", func(t *testing.T) {
		source, err := geolocation.NewSource(geolocation.SourceConfig{Type: geolocation.SourceTypeClient})

		require.NoError(t, err)
		assert.Nil(t, source)
	})

	t.Run("static source", func(t *testing.T) {
		source, err := geolocation.NewSource(geolocation.SourceConfig{
			Type:   geolocation.SourceTypeStatic,
			Static: models.Coordinate{Latitude: 40, Longitude: -74},
		})

		require.NoError(t, err)
		assert.IsType(t, &geolocation.StaticSource{}, source)
	})

	t.Run("static source rejects invalid coordinates", func(t *testing.T) {
		_, err := geolocation.NewSource(geolocation.SourceConfig{
			Type:   geolocation.SourceTypeStatic,
			Static: models.Coordinate{Latitude: 100},
		})

		require.Error(t, err)
	})

	t.Run("google source", func(t *testing.T) {
		source, err := geolocation.NewSource(geolocation.SourceConfig{
			Type:      geolocation.SourceTypeGoogle,
			APIKey:    "AIzaFakeKeyForTests",
			RateLimit: 5,
		})

		require.NoError(t, err)
		assert.IsType(t, &geolocation.GoogleSource{}, source)
	})

	t.Run("google source without key", func(t *testing.T) {
		_, err := geolocation.NewSource(geolocation.SourceConfig{Type: geolocation.SourceTypeGoogle})

		require.ErrorIs(t, err, geolocation.ErrMissingAPIKey)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := geolocation.NewSource(geolocation.SourceConfig{Type: "gps"})

		require.ErrorIs(t, err, geolocation.ErrUnknownSource)
	})
}
