package maplayer

import (
	"github.com/LaPingvino/tilepilot/internal/tilecache"
)

// ccQuery answers the cache's query_cache_clients: resume the scan
// and report the next missing tile, choosing the next finer level
// (l.level-1) for a PREFETCH hit. Ported from map_layer_cc_query.
func (l *Layer) ccQuery(owner interface{}) (decision int, mh *tilecache.MapHandle, level, x, y uint32) {
	mt := l.findMissingTile()
	if mt == 0 {
		return 0, nil, 0, 0, 0
	}
	lvl := l.level
	if mt == 1 {
		lvl = l.level - 1
	}
	return mt, l.mh, lvl, l.ax, l.ay
}

// ccNotify is called synchronously as part of Cache.insert, right
// after a new node is linked: if the arriving tile lies in VISIBLE,
// request a pixel-rect redraw of exactly that tile (scenario E).
// Ported from map_layer_cc_notify.
func (l *Layer) ccNotify(owner interface{}, mh *tilecache.MapHandle, level, x, y uint32, node *tilecache.Node) {
	if level != l.level || x < l.tx2 || x >= l.tx3 || y < l.ty2 || y >= l.ty3 {
		return
	}
	tw, th := l.info.TileSize()
	sx := int(x-l.tx2)*tw + l.pixOffX
	sy := int(y-l.ty2)*th + l.pixOffY
	if l.vw != nil {
		l.vw.RequestRedraw(sx, sy, sx+tw, sy+th)
	}
}

// ccEval scores a node for cleanup: 3 inside VISIBLE, 2 inside HALO,
// 0 otherwise (prefetch tiles are not protected — they rebuild
// cheaply). Ported from map_layer_cc_eval.
func (l *Layer) ccEval(owner interface{}, n *tilecache.Node) int {
	if n.Key.Level != l.level {
		return 0
	}
	if n.Key.X >= l.tx2 && n.Key.X < l.tx3 && n.Key.Y >= l.ty2 && n.Key.Y < l.ty3 {
		return 3
	}
	if n.Key.X >= l.tx1 && n.Key.X < l.tx4 && n.Key.Y >= l.ty1 && n.Key.Y < l.ty4 {
		return 2
	}
	return 0
}
