package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	c := New(path)

	require.NoError(t, c.Start(context.Background()))

	w, err := c.GetInt(KeyWindowWidth)
	require.NoError(t, err)
	require.Equal(t, 800, w)

	require.FileExists(t, path)
}

func TestStartLoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	c1 := New(path)
	require.NoError(t, c1.Start(context.Background()))
	require.NoError(t, c1.Set(KeyDefaultMap, "/maps/city.pia"))
	require.NoError(t, c1.Stop(context.Background()))

	c2 := New(path)
	require.NoError(t, c2.Start(context.Background()))
	v, err := c2.GetString(KeyDefaultMap)
	require.NoError(t, err)
	require.Equal(t, "/maps/city.pia", v)
}

func TestGetMissingKeyErrors(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "settings.json"))
	_, err := c.Get("nope")
	require.Error(t, err)
}

func TestGetWithDefaultFallsBack(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "settings.json"))
	require.Equal(t, "fallback", c.GetWithDefault("nope", "fallback"))
}

func TestGetInt64AcceptsFloat64FromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	c := New(path)
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Stop(context.Background()))

	c2 := New(path)
	require.NoError(t, c2.Load())
	v, err := c2.GetInt64(KeyCacheHighWater)
	require.NoError(t, err)
	require.Equal(t, int64(384<<20), v)
}

func TestNameAndRequires(t *testing.T) {
	c := New("")
	require.Equal(t, "config", c.Name())
	require.Empty(t, c.Requires())
}
