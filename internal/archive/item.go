package archive

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Item is an open read cursor over one archive blob, with its own
// independent position so multiple items can be read concurrently from the
// same archive (each read is an explicit pread at its own offset, so no
// extra synchronization is required — see xqx_map_cache concurrency
// notes).
type Item struct {
	a        *Archive
	offset   int64
	size     int64
	position int64
}

// OpenItem validates that (x,y) names a non-empty slot, reads and checks
// the item header, and returns a cursor whose position starts at 0 (i.e.
// immediately after the item header, at the first payload byte).
//
// If the slot is empty (offset == 0), OpenItem returns (nil, nil): this is
// the "not an error" case from pia_open_item — callers treat a nil item as
// "produce a Color placeholder", not as an I/O failure.
func (a *Archive) OpenItem(x, y uint32) (*Item, error) {
	off := a.GetOffset(x, y)
	if off == 0 {
		return nil, nil
	}

	hdrBuf := make([]byte, itemHdrLen)
	if _, err := a.f.ReadAt(hdrBuf, int64(off)); err != nil {
		return nil, fmt.Errorf("archive: read item header at %d,%d: %w", x, y, err)
	}
	magic := binary.LittleEndian.Uint64(hdrBuf[0:8])
	hx := binary.LittleEndian.Uint32(hdrBuf[8:12])
	hy := binary.LittleEndian.Uint32(hdrBuf[12:16])
	size := binary.LittleEndian.Uint64(hdrBuf[16:24])

	if magic != itemMagic {
		return nil, fmt.Errorf("archive: bad item magic %#x at %d,%d", magic, x, y)
	}
	if hx != x || hy != y {
		a.log.Warning("item header coordinate mismatch at %d,%d: header says %d,%d", x, y, hx, hy)
	}
	if tableSize := a.GetSize(x, y); tableSize != size {
		a.log.Warning("item header size mismatch at %d,%d: table=%d header=%d", x, y, tableSize, size)
	}

	a.openItems++
	return &Item{
		a:      a,
		offset: int64(off) + itemHdrLen,
		size:   int64(size),
	}, nil
}

// Read implements io.Reader. The resolution of spec.md's Open Question (i):
// position advances by exactly n when n > 0, and never advances on a
// zero-or-negative result (io.Reader never returns a negative n, but the
// "only advance on n>0" rule is kept explicit to mirror the original
// pia_item_read contract precisely).
func (it *Item) Read(buf []byte) (int, error) {
	remaining := it.size - it.position
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(buf)) > remaining {
		buf = buf[:remaining]
	}
	n, err := it.a.f.ReadAt(buf, it.offset+it.position)
	if n > 0 {
		it.position += int64(n)
	}
	return n, err
}

// Seek repositions the cursor relative to the item's own payload, not the
// file. Matches pia_item_seek.
func (it *Item) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = it.position + offset
	case io.SeekEnd:
		newPos = it.size + offset
	default:
		return 0, fmt.Errorf("archive: invalid whence %d", whence)
	}
	if newPos < 0 {
		return 0, fmt.Errorf("archive: negative seek position %d", newPos)
	}
	it.position = newPos
	return it.position, nil
}

// Tell returns the current cursor position within the item.
func (it *Item) Tell() int64 { return it.position }

// Size returns the item's payload size in bytes.
func (it *Item) Size() int64 { return it.size }

// Close releases the item handle, allowing the archive to be closed.
func (it *Item) Close() error {
	it.a.openItems--
	return nil
}

// ReadWhole is the open/read-all/close convenience wrapper. It returns
// (nil, nil) for an empty slot, exactly like OpenItem.
func (a *Archive) ReadWhole(x, y uint32) ([]byte, error) {
	it, err := a.OpenItem(x, y)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, nil
	}
	defer it.Close()

	buf := make([]byte, it.size)
	if _, err := io.ReadFull(it, buf); err != nil {
		return nil, fmt.Errorf("archive: read whole item %d,%d: %w", x, y, err)
	}
	return buf, nil
}
