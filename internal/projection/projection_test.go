package projection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWGS84ToProjectedPassthrough(t *testing.T) {
	x, y, z, err := WGS84ToProjected(EPSGWGS84, 50.0, 14.5, 200.0)
	require.NoError(t, err)
	require.Equal(t, int32(14.5*16), x)
	require.Equal(t, int32(50.0*16), y)
	require.Equal(t, int32(200.0*16), z)
}

func TestWGS84ToProjectedMercator(t *testing.T) {
	x, y, _, err := WGS84ToProjected(EPSGWebMercator, 0, 0, 0)
	require.NoError(t, err)
	require.InDelta(t, 0, x, 1)
	require.InDelta(t, 0, y, 1)
}

func TestWGS84ToProjectedUnsupportedEPSG(t *testing.T) {
	_, _, _, err := WGS84ToProjected(9999, 0, 0, 0)
	require.Error(t, err)
	var target *ErrUnsupportedEPSG
	require.ErrorAs(t, err, &target)
}
