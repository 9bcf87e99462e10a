// Package waypoints models a named path of pre-parsed WGS84 waypoints
// — the in-memory shape the waypoints overlay layer renders. Grounded
// on original_source/xqx_waypoints.[ch]'s struct xqx_path/xqx_waypoint.
// GeoJSON parsing (xqx_path_geojson and friends) is out of scope: a
// waypoints layer here is handed an already-parsed Path, matching
// spec.md's "Holds a pre-parsed list of (lat,lon) points."
package waypoints

// Waypoint is one point on a Path, in WGS84 degrees/meters. Alt is
// math.NaN() when the source data carries no altitude.
type Waypoint struct {
	Lat, Lon, Alt float64
	Name          string
}

// Path is a named, ordered sequence of waypoints — xqx_path.
type Path struct {
	Name      string
	Waypoints []Waypoint
}

// New creates an empty, optionally-named path.
func New(name string) *Path {
	return &Path{Name: name}
}

// Append adds a waypoint to the end of the path. An unset altitude
// should be math.NaN(), not 0 — matching xqx_waypoint_new's handling
// of GeoJSON's optional third coordinate.
func (p *Path) Append(w Waypoint) {
	p.Waypoints = append(p.Waypoints, w)
}
