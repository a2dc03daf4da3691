package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	t.Run("line only", func(t *testing.T) {
		a, err := kernel.NewAddress("123 Session Rd, Baguio", "", "", "")
		require.NoError(t, err)
		require.NoError(t, a.Validate())
		assert.Equal(t, "123 Session Rd, Baguio", a.Line())
		assert.Empty(t, a.City())
		assert.Nil(t, a.Point())
	})

	t.Run("structured components are trimmed", func(t *testing.T) {
		a, err := kernel.NewAddress("1 Ayala Ave", " Makati ", "Metro Manila", " NCR ")
		require.NoError(t, err)
		assert.Equal(t, "Makati", a.City())
		assert.Equal(t, "Metro Manila", a.Province())
		assert.Equal(t, "NCR", a.Region())
	})

	t.Run("empty line is rejected", func(t *testing.T) {
		_, err := kernel.NewAddress("   ", "Makati", "", "")
		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var a kernel.Address
		require.Error(t, a.Validate())
	})
}

func TestAddress_WithPoint(t *testing.T) {
	a, err := kernel.NewAddress("1 Ayala Ave", "Makati", "Metro Manila", "NCR")
	require.NoError(t, err)

	p, err := kernel.NewGeoPoint(14.5547, 121.0244)
	require.NoError(t, err)

	resolved, err := a.WithPoint(p)
	require.NoError(t, err)
	require.NotNil(t, resolved.Point())
	assert.InDelta(t, 14.5547, resolved.Point().Lat(), 1e-9)

	// Original is untouched.
	assert.Nil(t, a.Point())
}

func TestAddress_Normalized(t *testing.T) {
	a, err := kernel.NewAddress("  123  Session   Rd,  BAGUIO ", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "123 session rd, baguio", a.Normalized())
}

func TestNormalizeAddressLine(t *testing.T) {
	assert.Equal(t, "1 ayala ave makati", kernel.NormalizeAddressLine(" 1  Ayala\tAve   Makati "))
}
