package maplayer

import (
	"testing"

	"github.com/LaPingvino/tilepilot/internal/tilecache"
	"github.com/LaPingvino/tilepilot/internal/tilecodec"
	"github.com/LaPingvino/tilepilot/internal/view"
	"github.com/LaPingvino/tilepilot/internal/widgethost"
	"github.com/stretchr/testify/require"
)

// fakeMap is a 3-level, 256x256-tile pyramid with tile counts (4,4),
// (2,2), (1,1) for a 1000x1000 image (scenario B's exact geometry,
// rounded up from 1000/256 = 4).
type fakeMap struct {
	nx, ny [3]int
}

func newFakeMap() *fakeMap {
	return &fakeMap{nx: [3]int{4, 2, 1}, ny: [3]int{4, 2, 1}}
}

func (m *fakeMap) TileSize() (int, int) { return 256, 256 }
func (m *fakeMap) NumLevels() int       { return 3 }
func (m *fakeMap) PixelSize() (int64, int64) {
	return 1000, 1000
}
func (m *fakeMap) NumTiles(level int) (int, int) { return m.nx[level], m.ny[level] }
func (m *fakeMap) Georeference() (pox, poy, psx, psy, cox, coy, csx, csy int64) {
	return 0, 0, 1, 1, 0, 0, 1, 1
}

type fakePixmap struct {
	blits     [][5]int // dstX,dstY,w,h,0
	fillRects [][5]int // lx,ly,hx,hy,rgb
}

func (p *fakePixmap) Width() int  { return 1024 }
func (p *fakePixmap) Height() int { return 1024 }
func (p *fakePixmap) Blit(dstX, dstY, w, h int, src *tilecodec.Pixmap) {
	p.blits = append(p.blits, [5]int{dstX, dstY, w, h, 0})
}
func (p *fakePixmap) FillCircle(cx, cy, radius int, rgb uint32) {}
func (p *fakePixmap) FillRect(lx, ly, hx, hy int, rgb uint32) {
	p.fillRects = append(p.fillRects, [5]int{lx, ly, hx, hy, int(rgb)})
}
func (p *fakePixmap) Line(x1, y1, x2, y2 int, rgb uint32)    {}
func (p *fakePixmap) Ring(cx, cy, radius int, rgb uint32)    {}
func (p *fakePixmap) Text(x, y int, s string, rgb uint32)    {}

var _ widgethost.Pixmap = (*fakePixmap)(nil)

func newTestSetup(t *testing.T) (*tilecache.Cache, *tilecache.MapHandle, *Layer, *fakeMap) {
	t.Helper()
	cache := tilecache.New(1<<30, 1<<30, nil)
	m := newFakeMap()
	var mh *tilecache.MapHandle
	mh = cache.RegisterMap("fake", 256, 256, func(mh *tilecache.MapHandle, level, x, y uint32) {
		cache.InsertColor(mh, level, x, y, 0x112233)
	})
	l := New(cache, mh, m, "fake")
	return cache, mh, l, m
}

// Scenario B: levels=3, tile 256x256, tile counts (4,4),(2,2),(1,1). At
// scale_main=1 with a 256x256 viewport centered on the pixel midpoint,
// the Map Layer's VISIBLE rectangle is 2x2 tiles at level 0.
func TestScenarioB_VisibleRectangleAtUnitScale(t *testing.T) {
	_, _, l, _ := newTestSetup(t)

	vw := view.New(nil)
	vw.Resize(256, 256)
	vw.ChooseMap(&fakeMapSource{m: newFakeMap(), layer: l})
	vw.SetScale(1)

	require.Equal(t, uint32(0), l.level)
	require.Equal(t, uint32(2), l.tx3-l.tx2)
	require.Equal(t, uint32(2), l.ty3-l.ty2)
}

// fakeMapSource adapts a fakeMap + pre-built Layer into view.MapSource
// for ChooseMap-driven tests (normally the mapsource package does this
// wiring against a real tilemap.Descriptor).
type fakeMapSource struct {
	m     *fakeMap
	layer *Layer
}

func (s *fakeMapSource) Geometry() view.MapGeometry {
	w, h := s.m.PixelSize()
	pox, poy, psx, psy, cox, coy, csx, csy := s.m.Georeference()
	return view.MapGeometry{
		WidthPx: w, HeightPx: h,
		GeoPOX: pox, GeoPOY: poy,
		GeoPSX: psx, GeoPSY: psy,
		GeoCOX: cox, GeoCOY: coy,
		GeoCSX: csx, GeoCSY: csy,
		Levels: s.m.NumLevels(),
	}
}

func (s *fakeMapSource) NewLayer(vw *view.View) view.Layer { return s.layer }

func TestInvariant7_ScanCursorMonotonic(t *testing.T) {
	cache, mh, l, m := newTestSetup(t)

	vw := view.New(nil)
	vw.Resize(256, 256)
	vw.ChooseMap(&fakeMapSource{m: m, layer: l})

	var cursors [][3]int
	for {
		mt := l.findMissingTile()
		if mt == 0 {
			break
		}
		// Rows are scanned top to bottom, each left to right, so the
		// cursor is compared as (state, ay, ax).
		cursors = append(cursors, [3]int{l.state, int(l.ay), int(l.ax)})
		require.Less(t, len(cursors), 100, "scan did not terminate")
		// Satisfy the reported tile so the next probe has to move on.
		level := l.level
		if mt == 1 {
			level--
		}
		cache.InsertColor(mh, level, l.ax, l.ay, 0)
	}
	require.NotEmpty(t, cursors)
	for i := 1; i < len(cursors); i++ {
		prev, cur := cursors[i-1], cursors[i]
		require.True(t, prev[0] < cur[0] || (prev[0] == cur[0] && (prev[1] < cur[1] || (prev[1] == cur[1] && prev[2] < cur[2]))), "cursor %v not after %v", cur, prev)
	}
}

func TestRenderSkipsMissingAndFillsColor(t *testing.T) {
	cache, mh, l, m := newTestSetup(t)

	vw := view.New(nil)
	vw.Resize(256, 256)
	vw.ChooseMap(&fakeMapSource{m: m, layer: l})

	cache.InsertColor(mh, l.level, l.tx2, l.ty2, 0xabcdef)

	dst := &fakePixmap{}
	l.Render(vw, dst, view.Rectangle{LX: 0, LY: 0, HX: 256, HY: 256})

	require.Len(t, dst.fillRects, 1)
	require.Equal(t, 0xabcdef, dst.fillRects[0][4])
}

// Scenario E: during a notify for a tile T in VISIBLE, the layer
// requests a redraw of exactly T's pixel rectangle.
func TestScenarioE_NotifyRequestsExactTileRedraw(t *testing.T) {
	cache, mh, l, m := newTestSetup(t)

	host := &recordingRedrawHost{}
	vw := view.New(host)
	// Large enough that the whole level-1 image (500px, two tiles) lies
	// inside the viewport, so the view does not clamp the tile's rect.
	vw.Resize(1024, 1024)
	vw.ChooseMap(&fakeMapSource{m: m, layer: l})

	before := len(host.calls)
	cache.InsertColor(mh, l.level, l.tx2, l.ty2, 0x0)
	require.Greater(t, len(host.calls), before)

	last := host.calls[len(host.calls)-1]
	require.Equal(t, 256, last[2]-last[0])
	require.Equal(t, 256, last[3]-last[1])
}

type recordingRedrawHost struct {
	calls [][4]int
}

func (h *recordingRedrawHost) RequestRedraw(lx, ly, hx, hy int) {
	h.calls = append(h.calls, [4]int{lx, ly, hx, hy})
}
