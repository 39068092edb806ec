package geofence

import (
	"testing"

	"github.com/simha10/SAMS-sub000/internal/domain/office"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	hq := office.Office{ID: "hq", Name: "HQ", Latitude: 26.9136, Longitude: 80.9535, RadiusM: 100, IsActive: true}
	branch := office.Office{ID: "branch", Name: "Branch", Latitude: 26.9500, Longitude: 80.9999, RadiusM: 50, IsActive: true}

	t.Run("nil when no offices", func(t *testing.T) {
		assert.Nil(t, Resolve(Position{Latitude: 26.9136, Longitude: 80.9535}, nil))
	})

	t.Run("nil when all offices inactive", func(t *testing.T) {
		inactive := hq
		inactive.IsActive = false
		assert.Nil(t, Resolve(Position{Latitude: 26.9136, Longitude: 80.9535}, []office.Office{inactive}))
	})

	t.Run("picks the nearest office", func(t *testing.T) {
		m := Resolve(Position{Latitude: 26.9137, Longitude: 80.9534}, []office.Office{branch, hq})
		require.NotNil(t, m)
		assert.Equal(t, "hq", m.Office.ID)
		assert.True(t, m.WithinRadius)
	})

	t.Run("boundary distance counts as inside", func(t *testing.T) {
		m := Resolve(Position{Latitude: hq.Latitude, Longitude: hq.Longitude}, []office.Office{hq})
		require.NotNil(t, m)
		assert.True(t, m.WithinRadius)
		assert.Equal(t, 0.0, m.DistanceM)
	})

	t.Run("outside every radius still resolves nearest", func(t *testing.T) {
		m := Resolve(Position{Latitude: 28.6139, Longitude: 77.2090}, []office.Office{hq, branch})
		require.NotNil(t, m)
		assert.False(t, m.WithinRadius)
		assert.Greater(t, m.DistanceM, 100.0)
	})

	t.Run("equidistant ties break to the first declared", func(t *testing.T) {
		a := office.Office{ID: "a", Latitude: 10, Longitude: 10, RadiusM: 100, IsActive: true}
		b := office.Office{ID: "b", Latitude: 10, Longitude: 10, RadiusM: 100, IsActive: true}
		m := Resolve(Position{Latitude: 10, Longitude: 10}, []office.Office{a, b})
		require.NotNil(t, m)
		assert.Equal(t, "a", m.Office.ID)
	})

	t.Run("skips inactive even when nearest", func(t *testing.T) {
		near := office.Office{ID: "near", Latitude: 26.9136, Longitude: 80.9535, RadiusM: 100, IsActive: false}
		m := Resolve(Position{Latitude: 26.9136, Longitude: 80.9535}, []office.Office{near, branch})
		require.NotNil(t, m)
		assert.Equal(t, "branch", m.Office.ID)
	})
}
