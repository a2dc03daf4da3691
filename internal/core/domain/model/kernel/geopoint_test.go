package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid manila", 14.5995, 120.9842, false},
		{"valid boundary south pole", -90, 0, false},
		{"valid boundary date line", 0, 180, false},
		{"latitude too high", 90.01, 0, true},
		{"latitude too low", -90.01, 0, true},
		{"longitude too high", 0, 180.01, true},
		{"longitude too low", 0, -180.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := kernel.NewGeoPoint(tt.lat, tt.lon)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, p.Validate())
			assert.InDelta(t, tt.lat, p.Lat(), 1e-9)
			assert.InDelta(t, tt.lon, p.Lon(), 1e-9)
		})
	}
}

func TestGeoPoint_Validate_ZeroValue(t *testing.T) {
	var p kernel.GeoPoint
	require.Error(t, p.Validate())
}

func TestGeoPoint_DistanceKm(t *testing.T) {
	t.Run("known distance between Manila and Quezon City", func(t *testing.T) {
		manila, err := kernel.NewGeoPoint(14.5995, 120.9842)
		require.NoError(t, err)
		quezon, err := kernel.NewGeoPoint(14.6760, 121.0437)
		require.NoError(t, err)

		km, err := manila.DistanceKm(quezon)
		require.NoError(t, err)
		// About 10.7 km as the crow flies.
		assert.InDelta(t, 10.7, km, 0.5)
	})

	t.Run("distance to self is zero", func(t *testing.T) {
		p, err := kernel.NewGeoPoint(14.5995, 120.9842)
		require.NoError(t, err)

		km, err := p.DistanceKm(p)
		require.NoError(t, err)
		assert.InDelta(t, 0, km, 1e-9)
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		a, _ := kernel.NewGeoPoint(14.5995, 120.9842)
		b, _ := kernel.NewGeoPoint(10.3157, 123.8854)

		ab, err := a.DistanceKm(b)
		require.NoError(t, err)
		ba, err := b.DistanceKm(a)
		require.NoError(t, err)
		assert.InDelta(t, ab, ba, 1e-9)
	})

	t.Run("unconstructed point fails", func(t *testing.T) {
		var zero kernel.GeoPoint
		p, _ := kernel.NewGeoPoint(1, 1)

		_, err := p.DistanceKm(zero)
		require.Error(t, err)
	})
}

func TestGeoPoint_RoundedKey(t *testing.T) {
	p, err := kernel.NewGeoPoint(14.599512345, 120.984298765)
	require.NoError(t, err)
	assert.Equal(t, "14.59951,120.98430", p.RoundedKey())
}

func TestGeoPoint_IsEqual(t *testing.T) {
	a, _ := kernel.NewGeoPoint(14.5995, 120.9842)
	b, _ := kernel.NewGeoPoint(14.5995, 120.9842)
	c, _ := kernel.NewGeoPoint(14.6, 120.9842)

	equal, err := a.IsEqual(b)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = a.IsEqual(c)
	require.NoError(t, err)
	assert.False(t, equal)
}
