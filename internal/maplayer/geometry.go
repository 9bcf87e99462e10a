package maplayer

import "github.com/LaPingvino/tilepilot/internal/view"

func clampU(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// getNearestLevel picks the largest level index whose 2^l does not
// exceed scaleMain, per get_nearest_level in
// original_source/xqx_map_layer.c.
func getNearestLevel(numLevels int, scaleMain int64) int {
	ns := int64(1)
	l := 0
	for ns <= scaleMain && l < numLevels {
		ns *= 2
		l++
	}
	if l > 0 {
		return l - 1
	}
	return l
}

// Notify recomputes the layer's tile-rectangle geometry on INIT/MOVE/
// SCALE/RESIZE, resets the scan cursor, and requests attention for
// whatever the first scan probe finds missing. FINISH is a no-op: the
// layer is about to be discarded. Ported from map_layer_notify.
func (l *Layer) Notify(vw *view.View, change view.LayerChange) {
	l.vw = vw
	if change == view.Finish {
		return
	}

	if change == view.Init || change == view.Scale {
		l.level = uint32(getNearestLevel(l.info.NumLevels(), vw.ScaleMain()))
		l.cache.RequestNotification(l.client, l.mh, l.level)
	}

	tw, th := l.info.TileSize()
	txc, tyc := l.info.NumTiles(int(l.level))

	cxCoord, cyCoord := vw.Center()
	pox, poy, psx, psy, cox, coy, _, _ := l.info.Georeference()

	tmpx := cxCoord
	tmpx -= cox
	tmpx *= psx
	if csx := l.geoCSX(); csx != 0 {
		tmpx /= csx
	}
	tmpx += pox
	cx := int(tmpx / (1 << l.level))

	tmpy := cyCoord
	tmpy -= coy
	tmpy *= psy
	if csy := l.geoCSY(); csy != 0 {
		tmpy /= csy
	}
	tmpy += poy
	cy := int(tmpy / (1 << l.level))

	w, h := vw.Size()
	lx := cx - w/2
	ly := cy - h/2
	hx := lx + w
	hy := ly + h

	// Go's integer division truncates toward zero, matching the C
	// source's lx/tw exactly (including for a negative lx).
	tlx := lx / tw
	tly := ly / th
	thx := (hx - 1 + tw) / tw
	thy := (hy - 1 + th) / th

	tlx = clampU(tlx, 0, txc)
	tly = clampU(tly, 0, tyc)
	thx = clampU(thx, 0, txc)
	thy = clampU(thy, 0, tyc)

	l.pixOffX = tlx*tw - lx
	l.pixOffY = tly*th - ly

	l.tx2, l.tx3 = uint32(tlx), uint32(thx)
	l.ty2, l.ty3 = uint32(tly), uint32(thy)

	dx := (thx - tlx + 1) / 2
	dy := (thy - tly + 1) / 2

	l.tx1 = uint32(maxInt(0, tlx-dx))
	l.ty1 = uint32(maxInt(0, tly-dy))
	l.tx4 = uint32(minInt(thx+dx, txc))
	l.ty4 = uint32(minInt(thy+dy, tyc))

	if l.level > 0 {
		t2xc, t2yc := l.info.NumTiles(int(l.level) - 1)
		l.t2x1 = uint32(minInt(t2xc, int(l.tx2)*2))
		l.t2y1 = uint32(minInt(t2yc, int(l.ty2)*2))
		l.t2x2 = uint32(minInt(t2xc, int(l.tx3)*2))
		l.t2y2 = uint32(minInt(t2yc, int(l.ty3)*2))
	}

	l.state = 0
	mt := l.findMissingTile()
	l.cache.RequestAttention(l.client, mt)
}

// geoCSX/geoCSY exist only so the divide-by-zero guard above reads the
// same field Georeference returns without re-destructuring.
func (l *Layer) geoCSX() int64 { _, _, _, _, _, _, csx, _ := l.info.Georeference(); return csx }
func (l *Layer) geoCSY() int64 { _, _, _, _, _, _, _, csy := l.info.Georeference(); return csy }
