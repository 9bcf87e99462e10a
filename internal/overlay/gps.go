package overlay

import (
	"github.com/LaPingvino/tilepilot/internal/gpsclient"
	"github.com/LaPingvino/tilepilot/internal/projection"
	"github.com/LaPingvino/tilepilot/internal/view"
	"github.com/LaPingvino/tilepilot/internal/widgethost"
)

const gpsRingColor = 0xff0000

// GPS is the position-ring overlay layer: it subscribes to a
// gpsclient.Client's notify bus, reprojects each FIX into the active
// map's coordinate system, and — while Locked — recenters the view on
// every fix. Grounded on original_source/xqx_gps_layer.c.
type GPS struct {
	client *gpsclient.Client
	unsub  func()

	vw *view.View

	state int // gps fix mode: 0=unknown, 1=no fix, 2=2D, 3=3D — gl->state
	px, py int64
	epx, epy float64

	Locked bool // gl->locked; recenter the view on every fix while true
}

var _ view.Layer = (*GPS)(nil)

// NewGPS creates a GPS overlay subscribed to client. Locked defaults to
// true, matching xqx_make_gps_layer's gl->locked = 1.
func NewGPS(client *gpsclient.Client) *GPS {
	g := &GPS{client: client, Locked: true}
	g.unsub = client.Subscribe(g.onMessage)
	return g
}

// Discard unregisters from the notify bus — xqx_discard_gps_layer.
func (g *GPS) Discard() {
	if g.unsub != nil {
		g.unsub()
	}
}

// Notify records the attached view so onMessage can recenter it; the
// GPS layer itself carries no geometry that depends on INIT/SCALE/MOVE.
func (g *GPS) Notify(vw *view.View, change view.LayerChange) {
	g.vw = vw
}

// onMessage is gps_msg_cb: only FIX messages matter, and only when the
// active map carries a georeference (epsg != 0). On a sub-2D fix only
// the state is recorded and the position is left as it was; Render skips
// only state 0, so the ring stays at the previously recorded position. On
// 2D/3D it reprojects and, if locked, recenters the view.
func (g *GPS) onMessage(msg gpsclient.Message) {
	if msg.Type != gpsclient.Fix || msg.Fix == nil {
		return
	}
	if g.vw == nil {
		return
	}
	epsg := g.vw.ActiveMapEPSG()
	if epsg == 0 {
		return
	}

	g.state = msg.Fix.Mode
	if msg.Fix.Mode < 2 {
		return
	}

	x, y, _, err := projection.WGS84ToProjected(epsg, msg.Fix.Lat, msg.Fix.Lon, msg.Fix.Alt)
	if err != nil {
		return
	}
	g.px, g.py = int64(x), int64(y)
	g.epx, g.epy = msg.Fix.Epx, msg.Fix.Epy

	if g.Locked {
		g.vw.SetCenter(g.px, g.py)
	}
}

// Render draws a filled ring at the fix's projected screen position,
// sized by the reported horizontal error — gps_layer_render.
func (g *GPS) Render(vw *view.View, dst widgethost.Pixmap, rect view.Rectangle) {
	if g.state == 0 {
		return
	}

	scalePX, scalePY, scaleCX, scaleCY := vw.ScaleFactors()
	cx, cy := vw.Center()
	w, h := vw.Size()
	scaleMain := vw.ScaleMain()
	if scaleMain == 0 || scaleCX == 0 || scaleCY == 0 {
		return
	}

	x := g.px - cx
	x = x * scalePX / scaleCX / scaleMain
	x += int64(w) / 2

	ex := int64(g.epx*16) * scalePX / scaleCX / scaleMain
	ex = absInt64(ex)

	y := g.py - cy
	y = y * scalePY / scaleCY / scaleMain
	y += int64(h) / 2

	ey := int64(g.epy*16) * scalePY / scaleCY / scaleMain
	ey = absInt64(ey)

	r := maxInt64(4, maxInt64(ex+1, ey+1))

	dst.Ring(int(x), int(y), int(r), gpsRingColor)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
