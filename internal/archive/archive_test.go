package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario A from spec.md §8: append a payload, close, reopen read-only,
// verify round-trip and that an unwritten slot reads back empty.
func TestScenarioA_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario-a.pia")

	a, err := Make(path, 4, 4, 2, 2, "tst", 0xFFFFFFFF)
	require.NoError(t, err)

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, a.AppendItem(1, 2))
	require.NoError(t, a.AppendData(payload))
	require.NoError(t, a.AppendFinish())
	require.NoError(t, a.Close())

	ro, err := Open(path, false)
	require.NoError(t, err)
	defer ro.Close()

	got, err := ro.ReadWhole(1, 2)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	empty, err := ro.ReadWhole(0, 0)
	require.NoError(t, err)
	require.Nil(t, empty)
}

func TestAppendSplitAcrossMultipleWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "split.pia")
	a, err := Make(path, 2, 2, 4, 4, "tst", 0)
	require.NoError(t, err)

	require.NoError(t, a.AppendItem(0, 0))
	require.NoError(t, a.AppendData([]byte{1, 2, 3}))
	require.NoError(t, a.AppendData([]byte{4, 5}))
	require.NoError(t, a.AppendFinish())

	got, err := a.ReadWhole(0, 0)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4, 5}, got)
	require.NoError(t, a.Close())
}

func TestDoubleAppendIsProtocolViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "double-append.pia")
	a, err := Make(path, 2, 2, 4, 4, "tst", 0)
	require.NoError(t, err)
	require.NoError(t, a.AppendItem(0, 0))

	require.Panics(t, func() {
		_ = a.AppendItem(0, 1)
	})
}

func TestCloseWithOpenItemIsProtocolViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "close-open.pia")
	a, err := Make(path, 2, 2, 4, 4, "tst", 0)
	require.NoError(t, err)
	require.NoError(t, a.AppendItem(0, 0))
	require.NoError(t, a.AppendData([]byte{9}))
	require.NoError(t, a.AppendFinish())

	it, err := a.OpenItem(0, 0)
	require.NoError(t, err)
	require.NotNil(t, it)

	require.Panics(t, func() {
		_ = a.Close()
	})
	require.NoError(t, it.Close())
	require.NoError(t, a.Close())
}

func TestGetOffsetOutOfRangeSentinel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oor.pia")
	a, err := Make(path, 2, 2, 4, 4, "tst", 0)
	require.NoError(t, err)
	defer a.Close()

	require.Equal(t, uint64(0), a.GetOffset(5, 5))
	require.Equal(t, uint64(0), a.GetSize(5, 5))
}

func TestRemoveItemLeaksButClearsIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remove.pia")
	a, err := Make(path, 2, 2, 4, 4, "tst", 0)
	require.NoError(t, err)

	require.NoError(t, a.AppendItem(0, 0))
	require.NoError(t, a.AppendData([]byte{1, 2}))
	require.NoError(t, a.AppendFinish())
	require.True(t, a.Used(0, 0))

	require.NoError(t, a.RemoveItem(0, 0))
	require.False(t, a.Used(0, 0))
	require.NoError(t, a.Close())
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pia")
	a, err := Make(path, 2, 2, 4, 4, "tst", 0)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// Corrupt the header magic in place.
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteAt([]byte{0, 0, 0, 0}, 0)
	require.NoError(t, err)

	_, err = Open(path, false)
	require.Error(t, err)
}
