package view

import (
	"testing"

	"github.com/LaPingvino/tilepilot/internal/widgethost"
	"github.com/stretchr/testify/require"
)

type fakeLayer struct {
	notified []LayerChange
}

func (l *fakeLayer) Notify(vw *View, change LayerChange) { l.notified = append(l.notified, change) }
func (l *fakeLayer) Render(vw *View, dst widgethost.Pixmap, rect Rectangle) {}

type fakeMapSource struct {
	geo MapGeometry
	lr  *fakeLayer
}

func (m *fakeMapSource) Geometry() MapGeometry { return m.geo }
func (m *fakeMapSource) NewLayer(vw *View) Layer {
	m.lr = &fakeLayer{}
	return m.lr
}

type fakeRedrawHost struct {
	calls [][4]int
}

func (h *fakeRedrawHost) RequestRedraw(lx, ly, hx, hy int) {
	h.calls = append(h.calls, [4]int{lx, ly, hx, hy})
}

func newTestView(t *testing.T, levels int) (*View, *fakeMapSource) {
	t.Helper()
	vw := New(&fakeRedrawHost{})
	vw.Resize(256, 256)
	src := &fakeMapSource{geo: MapGeometry{
		WidthPx: 1024, HeightPx: 1024,
		GeoPOX: 0, GeoPOY: 0,
		GeoPSX: 1, GeoPSY: 1,
		GeoCOX: 0, GeoCOY: 0,
		GeoCSX: 1, GeoCSY: 1,
		Levels: levels,
	}}
	vw.ChooseMap(src)
	return vw, src
}

func TestChooseMapSeedsCenterAndScaleOnFirstAttach(t *testing.T) {
	vw, _ := newTestView(t, 3)
	cx, cy := vw.Center()
	require.Equal(t, int64(512), cx)
	require.Equal(t, int64(512), cy)
	// levels=3 > 2, so scale_main = 1<<(3-2) = 2.
	require.Equal(t, int64(2), vw.ScaleMain())
}

// Scenario F: starting at scale_main=4 (levels=3 => smax=4), zoom_in
// twice halves it to 1, a third leaves it clamped at 1.
func TestScenarioF_ZoomInSequence(t *testing.T) {
	vw, _ := newTestView(t, 3)
	vw.SetScale(4)
	require.Equal(t, int64(4), vw.ScaleMain())

	vw.ZoomIn(2048)
	require.Equal(t, int64(2), vw.ScaleMain())

	vw.ZoomIn(2048)
	require.Equal(t, int64(1), vw.ScaleMain())

	vw.ZoomIn(2048)
	require.Equal(t, int64(1), vw.ScaleMain())
}

func TestSetScaleClampsToLevelRange(t *testing.T) {
	vw, _ := newTestView(t, 3)
	vw.SetScale(0)
	require.Equal(t, int64(1), vw.ScaleMain())

	vw.SetScale(100)
	require.Equal(t, int64(4), vw.ScaleMain()) // smax = 1<<(3-1) = 4
}

// Invariant 6: pixels_to_coords(coords_to_pixels(cx,cy)) agrees with
// (cx,cy) within +/-1 pixel-unit at unit scale, for viewports up to
// 4096x4096.
func TestInvariant6_PixelCoordRoundTrip(t *testing.T) {
	vw, _ := newTestView(t, 3)
	vw.SetScale(1)
	vw.Resize(4096, 4096)

	for _, coord := range [][2]int64{{512, 512}, {0, 0}, {2000, -1000}, {100, 4000}} {
		px, py := vw.CoordsToPixels(coord[0], coord[1])
		cx, cy := vw.PixelsToCoords(int(px), int(py))
		require.InDelta(t, coord[0], cx, 1)
		require.InDelta(t, coord[1], cy, 1)
	}
}

func TestSetCenterNotifiesLayersAndInvalidates(t *testing.T) {
	vw, src := newTestView(t, 3)
	host := vw.host.(*fakeRedrawHost)
	before := len(host.calls)

	vw.SetCenter(10, 20)

	cx, cy := vw.Center()
	require.Equal(t, int64(10), cx)
	require.Equal(t, int64(20), cy)
	require.Contains(t, src.lr.notified, Move)
	require.Greater(t, len(host.calls), before)
}

func TestMoveIsRelativeSetCenter(t *testing.T) {
	vw, _ := newTestView(t, 3)
	vw.SetCenter(100, 100)
	vw.Move(5, -5)
	cx, cy := vw.Center()
	require.Equal(t, int64(105), cx)
	require.Equal(t, int64(95), cy)
}

func TestPrependAppendRemoveLayer(t *testing.T) {
	vw := New(nil)
	vw.Resize(10, 10)

	overlay := &fakeLayer{}
	vw.PrependLayer(overlay)
	require.Contains(t, overlay.notified, Init)

	vw.RemoveLayer(overlay)
	require.Contains(t, overlay.notified, Finish)
}

func TestRequestRedrawClampsToViewport(t *testing.T) {
	host := &fakeRedrawHost{}
	vw := New(host)
	vw.Resize(100, 100)

	vw.RequestRedraw(-10, -10, 200, 200)
	require.Equal(t, [4]int{0, 0, 100, 100}, host.calls[len(host.calls)-1])
}
