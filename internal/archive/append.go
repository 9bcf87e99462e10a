package archive

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// AppendItem begins a new item at (x,y), writing a placeholder item header
// at EOF and entering "append in progress" state. At most one append may
// be in progress per archive at a time: a second AppendItem call (also
// through AddFromFile) or a Close while one is pending is a protocol
// violation; AppendData and AppendFinish continue and end the pending one.
func (a *Archive) AppendItem(x, y uint32) error {
	if !a.writable {
		protoFail("append on a read-only archive")
	}
	if a.appending {
		protoFail("append already in progress")
	}
	if _, ok := a.index(x, y); !ok {
		protoFail("append coordinate %d,%d out of range", x, y)
	}

	end, err := a.f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("archive: seek to EOF: %w", err)
	}

	hdrBuf := make([]byte, itemHdrLen)
	binary.LittleEndian.PutUint64(hdrBuf[0:8], itemMagic)
	binary.LittleEndian.PutUint32(hdrBuf[8:12], x)
	binary.LittleEndian.PutUint32(hdrBuf[12:16], y)
	binary.LittleEndian.PutUint64(hdrBuf[16:24], 0)
	if _, err := a.f.Write(hdrBuf); err != nil {
		return fmt.Errorf("archive: write placeholder item header: %w", err)
	}

	a.appending = true
	a.appX = x
	a.appY = y
	a.appSize = 0
	a.appOffset = uint64(end)
	return nil
}

// AppendData appends raw payload bytes to the item opened by AppendItem.
func (a *Archive) AppendData(buf []byte) error {
	if !a.appending {
		protoFail("append_data without a pending append_item")
	}
	if _, err := a.f.Write(buf); err != nil {
		return fmt.Errorf("archive: append data: %w", err)
	}
	a.appSize += uint64(len(buf))
	return nil
}

// AppendFinish rewrites the item header at its saved offset with the final
// size, updates the in-memory index entry, marks the table dirty, and
// leaves append state.
func (a *Archive) AppendFinish() error {
	if !a.appending {
		protoFail("append_finish without a pending append_item")
	}

	sizeBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(sizeBuf, a.appSize)
	if _, err := a.f.WriteAt(sizeBuf, int64(a.appOffset)+16); err != nil {
		return fmt.Errorf("archive: rewrite item header size: %w", err)
	}

	i, _ := a.index(a.appX, a.appY)
	a.table[i] = node{Offset: a.appOffset, Size: a.appSize}
	a.tableDirty = true

	a.appending = false
	a.appX, a.appY, a.appSize, a.appOffset = 0, 0, 0, 0
	return nil
}

// RemoveItem zeroes the index entry and marks the table dirty. The blob's
// bytes are leaked on disk; the format has no free-space management, and a
// separate "pack" pass is the intended compaction (out of scope here).
func (a *Archive) RemoveItem(x, y uint32) error {
	i, ok := a.index(x, y)
	if !ok {
		return fmt.Errorf("archive: remove coordinate %d,%d out of range", x, y)
	}
	a.table[i] = node{}
	a.tableDirty = true
	return nil
}

// AddFromFile reads the contents of path and appends it as a new item at
// (x,y) in one call, the library-level building block the out-of-scope
// CLI archive tool would use.
func (a *Archive) AddFromFile(x, y uint32, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("archive: read %s: %w", path, err)
	}
	if err := a.AppendItem(x, y); err != nil {
		return err
	}
	if err := a.AppendData(data); err != nil {
		return err
	}
	return a.AppendFinish()
}

// ExtractToFile writes the (x,y) item's payload to path, failing if the
// file already exists unless force is set.
func (a *Archive) ExtractToFile(x, y uint32, path string, force bool) error {
	data, err := a.ReadWhole(x, y)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("archive: no item at %d,%d", x, y)
	}
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flag |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("archive: write %s: %w", path, err)
	}
	return nil
}
