// Package mapsource is the glue binding a parsed tilemap.Descriptor to
// the view package's MapSource interface, so view.ChooseMap can attach
// a real map without internal/view importing internal/maplayer or
// internal/tilemap — avoiding the import cycle view -> maplayer ->
// view that a direct dependency would create. Not itself grounded in
// a single teacher file; it is the small seam the Design Note on
// interface-based layer polymorphism implies once the Map Layer moves
// into its own package.
package mapsource

import (
	"github.com/LaPingvino/tilepilot/internal/maplayer"
	"github.com/LaPingvino/tilepilot/internal/tilecache"
	"github.com/LaPingvino/tilepilot/internal/tilecodec"
	"github.com/LaPingvino/tilepilot/internal/tilemap"
	"github.com/LaPingvino/tilepilot/internal/view"
)

// Source adapts a *tilemap.Descriptor, registered against a
// *tilecache.Cache, to view.MapSource.
type Source struct {
	descriptor *tilemap.Descriptor
	handle     *tilecache.MapHandle
	cache      *tilecache.Cache
}

var _ view.MapSource = (*Source)(nil)

// New registers d's reader with cache under decoder and returns a
// view.MapSource for it. Call view.ChooseMap(result) to attach it.
func New(cache *tilecache.Cache, decoder tilecodec.Decoder, d *tilemap.Descriptor) *Source {
	return &Source{
		descriptor: d,
		handle:     d.RegisterWith(cache, decoder),
		cache:      cache,
	}
}

// Geometry implements view.MapSource.
func (s *Source) Geometry() view.MapGeometry {
	d := s.descriptor
	w, h := d.PixelSize()
	pox, poy, psx, psy, cox, coy, csx, csy := d.Georeference()
	return view.MapGeometry{
		WidthPx:  w,
		HeightPx: h,
		GeoPOX:   pox,
		GeoPOY:   poy,
		GeoPSX:   psx,
		GeoPSY:   psy,
		GeoCOX:   cox,
		GeoCOY:   coy,
		GeoCSX:   csx,
		GeoCSY:   csy,
		Levels:   d.NumLevels(),
		EPSG:     d.EPSG,
	}
}

// NewLayer implements view.MapSource: builds the Map Layer for this
// map, bound to its already-registered cache handle.
func (s *Source) NewLayer(vw *view.View) view.Layer {
	return maplayer.New(s.cache, s.handle, s.descriptor, s.descriptor.Path)
}

// Close releases the underlying descriptor's backing files.
func (s *Source) Close() error {
	return s.descriptor.Close()
}
