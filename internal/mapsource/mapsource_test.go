package mapsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LaPingvino/tilepilot/internal/tilecache"
	"github.com/LaPingvino/tilepilot/internal/tilecodec"
	"github.com/LaPingvino/tilepilot/internal/tilemap"
	"github.com/LaPingvino/tilepilot/internal/view"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "test.tmc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSourceGeometryCarriesEPSGAndLevels(t *testing.T) {
	dir := t.TempDir()
	manifest := writeManifest(t, dir, `
image-width 512
image-height 512
tile-width 256
tile-height 256
tile-format png
levels 2
projection 3857
point-1 0 0 0 0
point-2 512 512 40075016 40075016
`)
	d, err := tilemap.LoadDescriptor(manifest)
	require.NoError(t, err)
	defer d.Close()

	cache := tilecache.New(1<<20, 8<<20, nil)
	src := New(cache, tilecodec.StdDecoder{}, d)

	geo := src.Geometry()
	require.Equal(t, uint32(3857), geo.EPSG)
	require.Equal(t, 2, geo.Levels)
	require.Equal(t, int64(512), geo.WidthPx)
}

func TestSourceAttachesToView(t *testing.T) {
	dir := t.TempDir()
	manifest := writeManifest(t, dir, `
image-width 256
image-height 256
tile-width 256
tile-height 256
tile-format png
levels 1
`)
	d, err := tilemap.LoadDescriptor(manifest)
	require.NoError(t, err)
	defer d.Close()

	cache := tilecache.New(1<<20, 8<<20, nil)
	src := New(cache, tilecodec.StdDecoder{}, d)

	vw := view.New(nil)
	vw.Resize(400, 300)
	vw.ChooseMap(src)

	require.Equal(t, uint32(0), vw.ActiveMapEPSG())
}
