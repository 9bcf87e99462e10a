package overlay

import (
	"github.com/LaPingvino/tilepilot/internal/projection"
	"github.com/LaPingvino/tilepilot/internal/view"
	"github.com/LaPingvino/tilepilot/internal/waypoints"
	"github.com/LaPingvino/tilepilot/internal/widgethost"
)

// Waypoints is the path overlay layer: a polyline through a path's
// waypoints with a dot at each one, reprojected into the active map's
// coordinate system on every render. Grounded on
// original_source/xqx_waypoints_layer.c.
type Waypoints struct {
	path *waypoints.Path

	PointRadius, LineRadius int
	PointColor, LineColor   uint32
}

var _ view.Layer = (*Waypoints)(nil)

// NewWaypoints creates a Waypoints layer over path, with the same
// default styling as xqx_make_waypoints_layer (3px point dot over a
// 1px connecting line, blue points, black line).
func NewWaypoints(path *waypoints.Path) *Waypoints {
	return &Waypoints{
		path:        path,
		PointRadius: 3,
		LineRadius:  1,
		PointColor:  0x0000ff,
		LineColor:   0x000000,
	}
}

// Notify is a no-op: the layer carries no geometry state that survives
// across frames, matching the original's lack of a notify callback.
func (w *Waypoints) Notify(vw *view.View, change view.LayerChange) {}

// Render reprojects every waypoint into screen pixels and draws a dot at
// each vertex followed by the line segment back to the previous vertex,
// so the segments lie over the dots — waypoints_layer_render.
func (w *Waypoints) Render(vw *view.View, dst widgethost.Pixmap, rect view.Rectangle) {
	if w.path == nil || len(w.path.Waypoints) == 0 {
		return
	}

	epsg := vw.ActiveMapEPSG()
	if epsg == 0 {
		return
	}

	scalePX, scalePY, scaleCX, scaleCY := vw.ScaleFactors()
	scaleMain := vw.ScaleMain()
	if scaleMain == 0 || scaleCX == 0 || scaleCY == 0 {
		return
	}
	cx, cy := vw.Center()
	ww, wh := vw.Size()

	first := true
	var px, py int

	for _, wp := range w.path.Waypoints {
		tx, ty, _, err := projection.WGS84ToProjected(epsg, wp.Lat, wp.Lon, wp.Alt)
		if err != nil {
			continue
		}

		x := int64(tx) - cx
		x = x * scalePX / scaleCX / scaleMain
		x += int64(ww) / 2

		y := int64(ty) - cy
		y = y * scalePY / scaleCY / scaleMain
		y += int64(wh) / 2

		ix, iy := int(x), int(y)

		dst.FillCircle(ix, iy, w.PointRadius, w.PointColor)
		dst.FillCircle(ix, iy, w.LineRadius, w.LineColor)

		if first {
			first = false
			px, py = ix, iy
			continue
		}

		dst.Line(ix, iy, px, py, w.LineColor)
		px, py = ix, iy
	}
}
