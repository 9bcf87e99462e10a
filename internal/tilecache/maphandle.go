package tilecache

import "container/list"

// MapHandle is a map's identity within the cache and the per-map state
// spec.md §4.4 describes: running byte footprint, the node list in
// insertion order, and the per-level notify-subscriber lists. Equality of
// *MapHandle pointers is map identity; the cache never compares maps any
// other way.
type MapHandle struct {
	Name     string
	TileW    int
	TileH    int
	nodeSize int64

	actSize int64
	nodes   *list.List // of *Node, insertion order
	index   map[Key]*list.Element

	// notify holds, per level, the set of clients currently monitoring
	// that level via RequestNotification.
	notify map[uint32]*list.List // of *Client
}

func newMapHandle(name string, tileW, tileH int) *MapHandle {
	return &MapHandle{
		Name:     name,
		TileW:    tileW,
		TileH:    tileH,
		nodeSize: int64(tileW) * int64(tileH) * 4,
		nodes:    list.New(),
		index:    make(map[Key]*list.Element),
		notify:   make(map[uint32]*list.List),
	}
}

// ActSize returns the map's current Data-node byte footprint.
func (m *MapHandle) ActSize() int64 { return m.actSize }

func (m *MapHandle) notifyList(level uint32) *list.List {
	l, ok := m.notify[level]
	if !ok {
		l = list.New()
		m.notify[level] = l
	}
	return l
}
