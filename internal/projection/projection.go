// Package projection implements the Projection collaborator contract
// from spec.md §6: wgs84_to_projected(epsg, lat, lon, alt) -> (x, y, z)
// in 28.4 fixed-point meters. Grounded on original_source/
// xqx_projection.c, which wraps PROJ to reproject WGS84 into an
// arbitrary EPSG CRS and multiplies by 16. This port narrows PROJ's
// arbitrary-CRS generality to the two cases the retrieved pack's own
// map examples actually use — EPSG:3857 (Web Mercator) and EPSG:4326
// (geographic passthrough) — via github.com/paulmach/orb/project,
// since no pure-Go library in the pack offers general PROJ-equivalent
// reprojection (documented in DESIGN.md).
package projection

import (
	"fmt"

	"github.com/LaPingvino/tilepilot/internal/fixedpoint"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	EPSGWebMercator = 3857
	EPSGWGS84       = 4326
)

// ErrUnsupportedEPSG is returned for any EPSG code other than the two
// this port implements.
type ErrUnsupportedEPSG struct {
	EPSG uint32
}

func (e *ErrUnsupportedEPSG) Error() string {
	return fmt.Sprintf("projection: unsupported EPSG:%d", e.EPSG)
}

// WGS84ToProjected reprojects a (lat,lon,alt) fix into the given EPSG
// CRS, returning 28.4 fixed-point meters — the exact contract and
// scale factor (*16) of xqx_wgs84_to_coords.
func WGS84ToProjected(epsg uint32, lat, lon, alt float64) (x, y, z int32, err error) {
	switch epsg {
	case EPSGWebMercator:
		m := project.WGS84ToMercator(orb.Point{lon, lat})
		return fixedpoint.NarrowClamp(int64(m[0] * 16)),
			fixedpoint.NarrowClamp(int64(m[1] * 16)),
			fixedpoint.NarrowClamp(int64(alt * 16)),
			nil
	case EPSGWGS84:
		return fixedpoint.NarrowClamp(int64(lon * 16)),
			fixedpoint.NarrowClamp(int64(lat * 16)),
			fixedpoint.NarrowClamp(int64(alt * 16)),
			nil
	default:
		return 0, 0, 0, &ErrUnsupportedEPSG{EPSG: epsg}
	}
}
