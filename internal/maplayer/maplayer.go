// Package maplayer implements the Map Layer from spec.md §4.6: the
// primary cache client, maintaining the visible/halo/prefetch tile
// rectangles and driving the missing-tile scan that decides which
// tile to request next. Grounded on
// original_source/xqx_map_layer.{h,c} — geometry recompute, the scan
// state machine, and render are all direct ports of
// map_layer_notify/find_missing_tile/map_layer_render, generalized to
// the view.Layer and tilecache.ClientOps interfaces instead of the
// concrete xqx_view/xqx_map_cache structs.
package maplayer

import (
	"github.com/LaPingvino/tilepilot/internal/logging"
	"github.com/LaPingvino/tilepilot/internal/tilecache"
	"github.com/LaPingvino/tilepilot/internal/view"
)

// MapInfo is the geometry a Layer needs from its map, decoupled from
// tilemap.Descriptor's concrete type so this package stays independent
// of the manifest format. *tilemap.Descriptor implements this.
type MapInfo interface {
	TileSize() (w, h int)
	NumLevels() int
	PixelSize() (w, h int64)
	NumTiles(level int) (nx, ny int)
	Georeference() (pox, poy, psx, psy, cox, coy, csx, csy int64)
}

// Layer is the Map Layer: a view.Layer that is also a tilecache
// client.
type Layer struct {
	cache *tilecache.Cache
	mh    *tilecache.MapHandle
	info  MapInfo
	name  string

	client *tilecache.Client
	log    *logging.Logger
	vw     *view.View

	level              uint32
	pixOffX, pixOffY   int
	tx1, tx2, tx3, tx4 uint32
	ty1, ty2, ty3, ty4 uint32
	t2x1, t2x2         uint32
	t2y1, t2y2         uint32

	// scan cursor, persisted across query calls within one geometry
	// epoch (spec.md §4.6's "missing-tile scan state machine").
	state  int
	ax, ay uint32
}

// New creates a Map Layer bound to mh on cache, describing geometry
// via info. Attach it to a view with view.ChooseMap (via the
// mapsource glue package), not directly — ChooseMap also seeds the
// view's center/scale.
func New(cache *tilecache.Cache, mh *tilecache.MapHandle, info MapInfo, name string) *Layer {
	l := &Layer{
		cache: cache,
		mh:    mh,
		info:  info,
		name:  name,
		log:   logging.Global().Module("maplayer"),
	}
	l.client = cache.MakeClient(tilecache.ClientOps{
		Query:  l.ccQuery,
		Notify: l.ccNotify,
		Eval:   l.ccEval,
	}, l)
	return l
}

// Discard detaches the layer's cache client. Call after RemoveLayer.
func (l *Layer) Discard() {
	l.cache.DiscardClient(l.client)
}

var _ view.Layer = (*Layer)(nil)
