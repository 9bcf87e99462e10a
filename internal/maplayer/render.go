package maplayer

import (
	"github.com/LaPingvino/tilepilot/internal/tilecache"
	"github.com/LaPingvino/tilepilot/internal/view"
	"github.com/LaPingvino/tilepilot/internal/widgethost"
)

// Render intersects the dirty rectangle with VISIBLE, iterates the
// affected tiles, and blits Data nodes / fills Color nodes / skips
// missing or Error tiles. At the map's right and bottom edges the
// last tile is clipped to the map's pixel size. Ported from
// map_layer_render.
func (l *Layer) Render(vw *view.View, dst widgethost.Pixmap, rect view.Rectangle) {
	tw, th := l.info.TileSize()

	lx := (rect.LX-l.pixOffX)/tw + int(l.tx2)
	ly := (rect.LY-l.pixOffY)/th + int(l.ty2)
	hx := (rect.HX-l.pixOffX-1+tw)/tw + int(l.tx2)
	hy := (rect.HY-l.pixOffY-1+th)/th + int(l.ty2)

	if lx < int(l.tx2) {
		lx = int(l.tx2)
	}
	if ly < int(l.ty2) {
		ly = int(l.ty2)
	}
	if hx > int(l.tx3) {
		hx = int(l.tx3)
	}
	if hy > int(l.ty3) {
		hy = int(l.ty3)
	}

	mapW, mapH := l.info.PixelSize()
	txc, tyc := l.info.NumTiles(int(l.level))

	for i := lx; i < hx; i++ {
		for j := ly; j < hy; j++ {
			ax := (i-int(l.tx2))*tw + l.pixOffX
			ay := (j-int(l.ty2))*th + l.pixOffY
			aw, ah := tw, th

			if i+1 == txc {
				aw = int(mapW>>l.level) - i*tw
			}
			if j+1 == tyc {
				ah = int(mapH>>l.level) - j*th
			}

			n := l.cache.Lookup(l.mh, l.level, uint32(i), uint32(j))
			if n == nil {
				continue
			}
			l.renderNode(dst, n, ax, ay, aw, ah)
		}
	}
}

func (l *Layer) renderNode(dst widgethost.Pixmap, n *tilecache.Node, ax, ay, aw, ah int) {
	switch n.State {
	case tilecache.StateData:
		dst.Blit(ax, ay, aw, ah, n.Pixmap)
	case tilecache.StateColor:
		dst.FillRect(ax, ay, ax+aw, ay+ah, n.Color)
	case tilecache.StateError:
		// fall through: leave whatever is underneath, per spec.md §7.
	}
}
