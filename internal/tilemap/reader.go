package tilemap

import (
	"os"

	"github.com/LaPingvino/tilepilot/internal/logging"
	"github.com/LaPingvino/tilepilot/internal/tilecache"
	"github.com/LaPingvino/tilepilot/internal/tilecodec"
)

// NewReader builds the Tile Reader contract from spec.md §4.3: a
// tilecache.Reader that produces exactly one cache-node insertion per
// call, regardless of outcome.
//
//   - I/O or decode error  -> Error node
//   - empty slot / missing loose file -> Color node with the level's
//     empty_color
//   - success -> Data node with the decoded pixmap
func (d *Descriptor) NewReader(cache *tilecache.Cache, decoder tilecodec.Decoder) tilecache.Reader {
	log := logging.Global().Module("tilereader")

	return func(mh *tilecache.MapHandle, level, x, y uint32) {
		if int(level) >= len(d.Backings) {
			log.Error("read_tile: level %d out of range for %s", level, d.Path)
			cache.InsertError(mh, level, x, y)
			return
		}
		b := d.Backings[level]

		var data []byte
		var err error
		empty := false

		if b.Archive != nil {
			data, err = b.Archive.ReadWhole(x, y)
			if err == nil && data == nil {
				empty = true
			}
		} else {
			path := b.TilePath(x, y)
			data, err = os.ReadFile(path)
			if err != nil && os.IsNotExist(err) {
				empty = true
				err = nil
			}
		}

		if err != nil {
			log.Warning("read_tile %s level %d (%d,%d): %v", d.Path, level, x, y, err)
			cache.InsertError(mh, level, x, y)
			return
		}
		if empty {
			cache.InsertColor(mh, level, x, y, b.EmptyColor)
			return
		}

		pm, err := decoder.Decode(data)
		if err != nil {
			log.Warning("decode %s level %d (%d,%d): %v", d.Path, level, x, y, err)
			cache.InsertError(mh, level, x, y)
			return
		}

		cache.InsertData(mh, level, x, y, pm)
	}
}

// RegisterWith creates a MapHandle in cache for this descriptor, wired to
// this descriptor's reader.
func (d *Descriptor) RegisterWith(cache *tilecache.Cache, decoder tilecodec.Decoder) *tilecache.MapHandle {
	return cache.RegisterMap(d.Path, d.TileWidth, d.TileHeight, d.NewReader(cache, decoder))
}
