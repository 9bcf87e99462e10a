// Package tilemap parses a map manifest and exposes the tile-pyramid
// geometry and per-level backing store spec.md §4.2 describes. Grounded on
// original_source/xqx_map_tmc.c: the manifest tokenizer, georeference
// derivation, and per-level tile-count/path-pattern construction all
// follow that file's behavior.
package tilemap

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/LaPingvino/tilepilot/internal/archive"
	"github.com/LaPingvino/tilepilot/internal/fixedpoint"
	"github.com/LaPingvino/tilepilot/internal/logging"
	"gopkg.in/yaml.v3"
)

// point is a pixel/coordinate pair from a point-1 / point-2 manifest line.
type point struct {
	Px, Py int64
	Cx, Cy int64
}

// LevelBacking is a single pyramid level's storage: either an attached PIA
// archive, or a printf-style path pattern over loose files.
type LevelBacking struct {
	Archive     *archive.Archive
	PathPattern string // Sprintf(pattern, x, y) if Archive == nil
	JPEG        bool
	EmptyColor  uint32
	NX, NY      int
}

// Descriptor is an immutable-after-construction map: pixel size, tile
// size, per-level geometry, georeference affine, projection id, and
// per-level backing stores.
type Descriptor struct {
	Path string

	Width, Height         int
	TileWidth, TileHeight int
	Levels                int
	EmptyColor            uint32
	JPEGLevel             int // -1 if unset
	EPSG                  uint32

	// Georeference affine. Pixel values are plain pixels; coordinate
	// values are 28.4 fixed-point (scaled by 16).
	GeoPOX, GeoPOY int64 // pixel origin
	GeoPSX, GeoPSY int64 // pixel deltas (point-2 - point-1)
	GeoCOX, GeoCOY int64 // coordinate origin
	GeoCSX, GeoCSY int64 // coordinate deltas

	Backings []LevelBacking
}

type override struct {
	Point1 *point `yaml:"point1"`
	Point2 *point `yaml:"point2"`
}

// LoadDescriptor parses the manifest at path and resolves each level's
// backing store relative to its directory.
func LoadDescriptor(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tilemap: open manifest %s: %w", path, err)
	}
	defer f.Close()

	log := logging.Global().Module("tilemap")

	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	var toks []string
	for sc.Scan() {
		toks = append(toks, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tilemap: read manifest %s: %w", path, err)
	}

	d := &Descriptor{Path: path, JPEGLevel: -1, EmptyColor: 0xFFFFFFFF}
	var haveW, haveH, haveTW, haveTH, haveSuffix, haveLevels bool
	var suffix string
	var p1, p2 *point

	next := func(i *int) (string, error) {
		if *i >= len(toks) {
			return "", fmt.Errorf("tilemap: unexpected end of manifest reading value")
		}
		v := toks[*i]
		*i++
		return v, nil
	}
	nextInt := func(i *int) (int64, error) {
		v, err := next(i)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("tilemap: expected integer, got %q: %w", v, err)
		}
		return n, nil
	}

	i := 0
	for i < len(toks) {
		key := toks[i]
		i++
		switch key {
		case "image-width":
			v, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			d.Width, haveW = int(v), true
		case "image-height":
			v, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			d.Height, haveH = int(v), true
		case "tile-width":
			v, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			d.TileWidth, haveTW = int(v), true
		case "tile-height":
			v, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			d.TileHeight, haveTH = int(v), true
		case "tile-format":
			v, err := next(&i)
			if err != nil {
				return nil, err
			}
			suffix, haveSuffix = v, true
		case "levels":
			v, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			d.Levels, haveLevels = int(v), true
		case "projection":
			v, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			d.EPSG = uint32(v)
		case "empty-color":
			v, err := next(&i)
			if err != nil {
				return nil, err
			}
			n, err := strconv.ParseUint(strings.TrimPrefix(v, "0x"), 16, 32)
			if err != nil {
				return nil, fmt.Errorf("tilemap: bad empty-color %q: %w", v, err)
			}
			d.EmptyColor = uint32(n)
		case "jpeg-level":
			v, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			d.JPEGLevel = int(v)
		case "point-1", "point-2":
			px, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			py, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			cx, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			cy, err := nextInt(&i)
			if err != nil {
				return nil, err
			}
			p := &point{Px: px, Py: py, Cx: cx, Cy: cy}
			if key == "point-1" {
				p1 = p
			} else {
				p2 = p
			}
		default:
			log.Warning("unknown manifest key %q in %s, skipping", key, path)
		}
	}

	if !haveW || !haveH || !haveTW || !haveTH || !haveSuffix || !haveLevels {
		return nil, fmt.Errorf("tilemap: manifest %s missing a required key (image-width/image-height/tile-width/tile-height/tile-format/levels)", path)
	}
	if (p1 == nil) != (p2 == nil) {
		return nil, fmt.Errorf("tilemap: manifest %s has point-1 without point-2 (or vice versa)", path)
	}

	// Supplemented feature: an optional sidecar YAML file may override the
	// manifest's georeference points without editing the manifest itself.
	if ov, err := loadOverride(path); err != nil {
		return nil, err
	} else if ov != nil {
		if ov.Point1 != nil {
			p1 = ov.Point1
		}
		if ov.Point2 != nil {
			p2 = ov.Point2
		}
	}

	if p1 == nil {
		d.GeoPSX, d.GeoPSY = 1, 1
		d.GeoCSX, d.GeoCSY = 16, 16
	} else {
		d.GeoPOX, d.GeoPOY = p1.Px, p1.Py
		d.GeoCOX, d.GeoCOY = fixedpoint.FromInt(p1.Cx), fixedpoint.FromInt(p1.Cy)
		d.GeoPSX, d.GeoPSY = p2.Px-p1.Px, p2.Py-p1.Py
		d.GeoCSX, d.GeoCSY = fixedpoint.FromInt(p2.Cx)-fixedpoint.FromInt(p1.Cx), fixedpoint.FromInt(p2.Cy)-fixedpoint.FromInt(p1.Cy)
	}

	dir := filepath.Dir(path)
	if err := d.resolveBackings(dir, suffix); err != nil {
		return nil, err
	}
	return d, nil
}

func loadOverride(manifestPath string) (*override, error) {
	data, err := os.ReadFile(manifestPath + ".override.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tilemap: read override sidecar: %w", err)
	}
	var ov override
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("tilemap: parse override sidecar: %w", err)
	}
	return &ov, nil
}

// resolveBackings computes each level's tile counts (ceil(w/tw) halved
// each step, rounded up) and attaches either a sibling PIA archive or a
// loose-file path pattern.
func (d *Descriptor) resolveBackings(dir, suffix string) error {
	iw := (d.Width + d.TileWidth - 1) / d.TileWidth
	ih := (d.Height + d.TileHeight - 1) / d.TileHeight

	d.Backings = make([]LevelBacking, d.Levels)
	for l := 0; l < d.Levels; l++ {
		lvlSuffix := suffix
		jpeg := false
		if d.JPEGLevel >= 0 && l >= d.JPEGLevel {
			lvlSuffix = "jpeg"
			jpeg = true
		}

		b := LevelBacking{NX: iw, NY: ih, JPEG: jpeg, EmptyColor: d.EmptyColor}

		piaPath := filepath.Join(dir, fmt.Sprintf("%02d.pia", l))
		if _, err := os.Stat(piaPath); err == nil {
			a, err := archive.Open(piaPath, false)
			if err != nil {
				return fmt.Errorf("tilemap: open level %d archive %s: %w", l, piaPath, err)
			}
			b.Archive = a
			// Supplemented feature: a level's own PIA header empty_color
			// overrides the manifest's empty-color for that level.
			b.EmptyColor = a.EmptyColor()
		} else {
			b.PathPattern = filepath.Join(dir, fmt.Sprintf("%02d", l), "%04d", "%04d."+lvlSuffix)
		}

		d.Backings[l] = b

		iw = (iw + 1) / 2
		ih = (ih + 1) / 2
	}
	return nil
}

// Close releases any attached per-level archives.
func (d *Descriptor) Close() error {
	var firstErr error
	for _, b := range d.Backings {
		if b.Archive != nil {
			if err := b.Archive.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// TilePath returns the loose-file path for (level,x,y), valid only when
// that level has no attached archive.
func (b LevelBacking) TilePath(x, y uint32) string {
	return fmt.Sprintf(b.PathPattern, x, y)
}

// The methods below let a *Descriptor satisfy maplayer.MapInfo without
// maplayer importing this package's concrete type.

// TileSize returns the pyramid's tile pixel dimensions (uniform across
// levels).
func (d *Descriptor) TileSize() (w, h int) { return d.TileWidth, d.TileHeight }

// NumLevels returns the pyramid depth.
func (d *Descriptor) NumLevels() int { return d.Levels }

// PixelSize returns the level-0 image dimensions.
func (d *Descriptor) PixelSize() (w, h int64) { return int64(d.Width), int64(d.Height) }

// NumTiles returns the tile-grid dimensions at the given level.
func (d *Descriptor) NumTiles(level int) (nx, ny int) {
	b := d.Backings[level]
	return b.NX, b.NY
}

// Georeference returns the affine pixel<->coordinate mapping: pixel
// origin and deltas in plain pixels, coordinate origin and deltas in
// 28.4 fixed-point.
func (d *Descriptor) Georeference() (pox, poy, psx, psy, cox, coy, csx, csy int64) {
	return d.GeoPOX, d.GeoPOY, d.GeoPSX, d.GeoPSY, d.GeoCOX, d.GeoCOY, d.GeoCSX, d.GeoCSY
}
