package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidVelocity(t *testing.T) {
	assert.True(t, IsValidVelocity(MPS))
	assert.True(t, IsValidVelocity(KMPS))
	assert.True(t, IsValidVelocity(Percent))
	assert.False(t, IsValidVelocity("furlongs/fortnight"))
	assert.False(t, IsValidVelocity(""))
}

func TestVelocityScale(t *testing.T) {
	tests := []struct {
		from, to string
		want     float64
		wantErr  bool
	}{
		{KMPS, MPS, 1e3, false},
		{MPS, KMPS, 1e-3, false},
		{MPS, MPS, 1, false},
		{Percent, Percent, 1, false},
		{Percent, MPS, 0, true},
		{"bogus", MPS, 0, true},
	}

	for _, tt := range tests {
		got, err := VelocityScale(tt.from, tt.to)
		if tt.wantErr {
			assert.Error(t, err, "%s -> %s", tt.from, tt.to)
			continue
		}
		require.NoError(t, err, "%s -> %s", tt.from, tt.to)
		assert.Equal(t, tt.want, got)
	}
}

func TestDepthRadiusRoundTrip(t *testing.T) {
	const earthRadius = 6371e3

	r := DepthToRadius(earthRadius, 660)
	assert.Equal(t, 5711e3, r)
	assert.Equal(t, 660.0, RadiusToDepth(earthRadius, r))
}
