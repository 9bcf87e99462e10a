package waypoints

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEmptyPath(t *testing.T) {
	p := New("morning ride")
	require.Equal(t, "morning ride", p.Name)
	require.Empty(t, p.Waypoints)
}

func TestAppendOrdersWaypoints(t *testing.T) {
	p := New("")
	p.Append(Waypoint{Lat: 52.1, Lon: 5.1, Alt: math.NaN()})
	p.Append(Waypoint{Lat: 52.2, Lon: 5.2, Alt: 10})

	require.Len(t, p.Waypoints, 2)
	require.Equal(t, 52.1, p.Waypoints[0].Lat)
	require.True(t, math.IsNaN(p.Waypoints[0].Alt))
	require.Equal(t, 52.2, p.Waypoints[1].Lat)
	require.Equal(t, 10.0, p.Waypoints[1].Alt)
}

func TestAppendNamedWaypoint(t *testing.T) {
	p := New("")
	p.Append(Waypoint{Lat: 1, Lon: 2, Name: "camp"})
	require.Equal(t, "camp", p.Waypoints[0].Name)
}
