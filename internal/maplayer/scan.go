package maplayer

// searchArray scans the rectangle [lx,hx) x [ay-so-far,hy) on level,
// resuming from the layer's (ax,ay) cursor, and returns true the
// moment it finds a tile absent from the cache — leaving the cursor
// at that tile so the caller can report it, and so the very next call
// (after that tile has presumably been loaded) resumes one step past
// where it left off. Ported from search_array in
// original_source/xqx_map_layer.c.
func (l *Layer) searchArray(level uint32, lx, hx, hy uint32) bool {
	for l.ay < hy {
		for l.ax < hx {
			if l.cache.Lookup(l.mh, level, l.ax, l.ay) == nil {
				return true
			}
			l.ax++
		}
		l.ax = lx
		l.ay++
	}
	return false
}

// findMissingTile resumes the scan from the layer's saved (state,ax,ay)
// cursor and returns the state's priority class: 3 for a VISIBLE miss,
// 2 for a HALO miss, 1 for a PREFETCH miss, 0 once every rectangle has
// been exhausted. When it returns a nonzero class, (ax,ay) is the
// tile to fetch and the level to use is l.level unless the class is 1
// (PREFETCH), which reads from l.level-1. Ported from
// find_missing_tile in original_source/xqx_map_layer.c.
func (l *Layer) findMissingTile() int {
	switch l.state {
	case 0:
		l.ax, l.ay = l.tx2, l.ty2
		l.state = 1
		fallthrough
	case 1: // VISIBLE
		if l.searchArray(l.level, l.tx2, l.tx3, l.ty3) {
			return 3
		}
		l.ax, l.ay = l.tx1, l.ty1
		l.state = 2
		fallthrough
	case 2: // HALO top strip
		if l.searchArray(l.level, l.tx1, l.tx4, l.ty2) {
			return 2
		}
		l.ax, l.ay = l.tx1, l.ty3
		l.state = 3
		fallthrough
	case 3: // HALO bottom strip
		if l.searchArray(l.level, l.tx1, l.tx4, l.ty4) {
			return 2
		}
		l.ax, l.ay = l.tx1, l.ty2
		l.state = 4
		fallthrough
	case 4: // HALO left strip
		if l.searchArray(l.level, l.tx1, l.tx2, l.ty3) {
			return 2
		}
		l.ax, l.ay = l.tx3, l.ty2
		l.state = 5
		fallthrough
	case 5: // HALO right strip
		if l.searchArray(l.level, l.tx3, l.tx4, l.ty3) {
			return 2
		}
		l.ax, l.ay = l.t2x1, l.t2y1
		l.state = 6
		if l.level == 0 {
			return 0
		}
		fallthrough
	case 6: // PREFETCH, next finer level (l.level-1)
		if l.searchArray(l.level-1, l.t2x1, l.t2x2, l.t2y2) {
			return 1
		}
		l.state = 7
		fallthrough
	case 7: // terminal
		return 0
	}
	return 0
}
