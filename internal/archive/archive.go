// Package archive implements the Packed Image Archive (PIA) container: a
// single random-access file holding a fixed header, a flat offset/size
// index table, and length-prefixed item blobs. It is the storage substrate
// the tile readers in internal/tilemap use.
//
// Format (little-endian throughout):
//
//	header: magic:u64 table_width:u32 table_height:u32 tile_width:u32
//	        tile_height:u32 empty_color:u32 reserved:u32 suffix:[8]byte
//	index:  table_width*table_height entries of (offset:u64, size:u64)
//	item:   magic:u64 x:u32 y:u32 size:u64, followed by size payload bytes
//
// An index entry with offset == 0 denotes an empty slot.
package archive

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/LaPingvino/tilepilot/internal/logging"
)

const (
	headerMagic = 0x59A14C76
	itemMagic   = 0x97F21E5B

	// TableSizeMax bounds table_width*table_height, matching the original
	// PIA_TABLE_SIZE_MAX (2<<24) == 1<<25.
	TableSizeMax = 2 << 24

	headerSize = 8 + 4 + 4 + 4 + 4 + 4 + 4 + 8 // 40 bytes
	nodeSize   = 8 + 8                         // offset + size
	itemHdrLen = 8 + 4 + 4 + 8                 // magic + x + y + size
)

// ProtocolError marks an on-disk-invariant violation (double append, close
// with items still open, write on a read-only archive...). spec.md treats
// these as fatal: the on-disk file could otherwise be left inconsistent.
// Mirroring the original's abort() semantics, the archive layer panics with
// a ProtocolError rather than returning one; the viewer never triggers
// these paths in normal operation, and a caller that wants to convert the
// panic into a normal error at a boundary can recover and type-assert it.
type ProtocolError struct{ Msg string }

func (e ProtocolError) Error() string { return "archive protocol violation: " + e.Msg }

func protoFail(format string, args ...interface{}) {
	panic(ProtocolError{Msg: fmt.Sprintf(format, args...)})
}

// node is one (offset,size) index table entry.
type node struct {
	Offset uint64
	Size   uint64
}

// header is the fixed-size file prelude.
type header struct {
	Magic       uint64
	TableWidth  uint32
	TableHeight uint32
	TileWidth   uint32
	TileHeight  uint32
	EmptyColor  uint32
	Reserved    uint32
	Suffix      [8]byte
}

// Archive is an open PIA file.
type Archive struct {
	f        *os.File
	hdr      header
	table    []node
	writable bool

	tableDirty bool
	openItems  int

	appending bool
	appX      uint32
	appY      uint32
	appSize   uint64
	appOffset uint64

	log *logging.Logger
}

// Open validates and loads an existing PIA file.
func Open(path string, writable bool) (*Archive, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}

	a := &Archive{f: f, writable: writable, log: logging.Global().Module("archive")}
	if err := a.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	if err := a.readTable(); err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) readHeader() error {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(a.f, buf); err != nil {
		return fmt.Errorf("archive: read header: %w", err)
	}
	a.hdr.Magic = binary.LittleEndian.Uint64(buf[0:8])
	a.hdr.TableWidth = binary.LittleEndian.Uint32(buf[8:12])
	a.hdr.TableHeight = binary.LittleEndian.Uint32(buf[12:16])
	a.hdr.TileWidth = binary.LittleEndian.Uint32(buf[16:20])
	a.hdr.TileHeight = binary.LittleEndian.Uint32(buf[20:24])
	a.hdr.EmptyColor = binary.LittleEndian.Uint32(buf[24:28])
	a.hdr.Reserved = binary.LittleEndian.Uint32(buf[28:32])
	copy(a.hdr.Suffix[:], buf[32:40])

	if a.hdr.Magic != headerMagic {
		return fmt.Errorf("archive: bad header magic %#x", a.hdr.Magic)
	}
	if a.hdr.Reserved != 0 {
		return fmt.Errorf("archive: non-zero reserved field %#x", a.hdr.Reserved)
	}
	tableSize := uint64(a.hdr.TableWidth) * uint64(a.hdr.TableHeight)
	if tableSize > TableSizeMax {
		return fmt.Errorf("archive: table %dx%d exceeds max size %d", a.hdr.TableWidth, a.hdr.TableHeight, TableSizeMax)
	}
	return nil
}

func (a *Archive) readTable() error {
	n := int(a.hdr.TableWidth) * int(a.hdr.TableHeight)
	buf := make([]byte, n*nodeSize)
	if _, err := io.ReadFull(a.f, buf); err != nil {
		return fmt.Errorf("archive: read index table: %w", err)
	}
	a.table = make([]node, n)
	for i := range a.table {
		off := i * nodeSize
		a.table[i].Offset = binary.LittleEndian.Uint64(buf[off : off+8])
		a.table[i].Size = binary.LittleEndian.Uint64(buf[off+8 : off+16])
	}
	return nil
}

// Make creates a new, empty PIA file with a zeroed index table.
func Make(path string, tableWidth, tableHeight, tileWidth, tileHeight uint32, suffix string, emptyColor uint32) (*Archive, error) {
	tableSize := uint64(tableWidth) * uint64(tableHeight)
	if tableSize > TableSizeMax {
		return nil, fmt.Errorf("archive: table %dx%d exceeds max size %d", tableWidth, tableHeight, TableSizeMax)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("archive: create %s: %w", path, err)
	}

	a := &Archive{
		f:        f,
		writable: true,
		log:      logging.Global().Module("archive"),
	}
	a.hdr.Magic = headerMagic
	a.hdr.TableWidth = tableWidth
	a.hdr.TableHeight = tableHeight
	a.hdr.TileWidth = tileWidth
	a.hdr.TileHeight = tileHeight
	a.hdr.EmptyColor = emptyColor
	if len(suffix) > 7 {
		suffix = suffix[:7]
	}
	copy(a.hdr.Suffix[:], suffix)

	if err := a.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}

	a.table = make([]node, tableSize)
	a.tableDirty = true
	if err := a.flushTable(); err != nil {
		f.Close()
		return nil, err
	}

	return a, nil
}

func (a *Archive) writeHeader() error {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(buf[0:8], a.hdr.Magic)
	binary.LittleEndian.PutUint32(buf[8:12], a.hdr.TableWidth)
	binary.LittleEndian.PutUint32(buf[12:16], a.hdr.TableHeight)
	binary.LittleEndian.PutUint32(buf[16:20], a.hdr.TileWidth)
	binary.LittleEndian.PutUint32(buf[20:24], a.hdr.TileHeight)
	binary.LittleEndian.PutUint32(buf[24:28], a.hdr.EmptyColor)
	binary.LittleEndian.PutUint32(buf[28:32], a.hdr.Reserved)
	copy(buf[32:40], a.hdr.Suffix[:])
	if _, err := a.f.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("archive: write header: %w", err)
	}
	return nil
}

func (a *Archive) flushTable() error {
	buf := make([]byte, len(a.table)*nodeSize)
	for i, n := range a.table {
		off := i * nodeSize
		binary.LittleEndian.PutUint64(buf[off:off+8], n.Offset)
		binary.LittleEndian.PutUint64(buf[off+8:off+16], n.Size)
	}
	if _, err := a.f.WriteAt(buf, headerSize); err != nil {
		return fmt.Errorf("archive: flush index table: %w", err)
	}
	a.tableDirty = false
	return nil
}

// TileWidth, TileHeight, EmptyColor and Suffix expose the header fields a
// tilemap loader needs when attaching a per-level backing store.
func (a *Archive) TileWidth() uint32  { return a.hdr.TileWidth }
func (a *Archive) TileHeight() uint32 { return a.hdr.TileHeight }
func (a *Archive) EmptyColor() uint32 { return a.hdr.EmptyColor }
func (a *Archive) Suffix() string {
	n := 0
	for n < len(a.hdr.Suffix) && a.hdr.Suffix[n] != 0 {
		n++
	}
	return string(a.hdr.Suffix[:n])
}

// Close flushes a dirty index table and closes the underlying file. It
// panics (ProtocolError) if any item is still open or an append is in
// progress: either would leave the on-disk table pointing at an
// inconsistent blob.
func (a *Archive) Close() error {
	if a.openItems > 0 {
		protoFail("pia_close with %d items still open", a.openItems)
	}
	if a.appending {
		protoFail("pia_close with an append in progress")
	}
	if a.tableDirty {
		if err := a.flushTable(); err != nil {
			return err
		}
	}
	return a.f.Close()
}

func (a *Archive) index(x, y uint32) (int, bool) {
	if x >= a.hdr.TableWidth || y >= a.hdr.TableHeight {
		return 0, false
	}
	return int(x) + int(y)*int(a.hdr.TableWidth), true
}

// GetOffset returns the index entry's offset, or 0 if (x,y) is out of range
// or the slot is empty — matching pia_get_item_offset's out-of-range
// sentinel.
func (a *Archive) GetOffset(x, y uint32) uint64 {
	i, ok := a.index(x, y)
	if !ok {
		return 0
	}
	return a.table[i].Offset
}

// GetSize returns the index entry's recorded size, 0 if out of range.
func (a *Archive) GetSize(x, y uint32) uint64 {
	i, ok := a.index(x, y)
	if !ok {
		return 0
	}
	return a.table[i].Size
}

// Used reports whether (x,y) names an occupied slot.
func (a *Archive) Used(x, y uint32) bool {
	return a.GetOffset(x, y) != 0
}
