// Package tilecodec converts a decoded tile's byte buffer into an
// in-memory pixmap. Image decoding itself (PNG/JPEG) is an out-of-scope
// collaborator per spec.md §1; this package specifies the Decoder contract
// and provides the one stdlib-backed implementation a viewer needs.
package tilecodec

import "fmt"

// Pixmap is a decoded, tightly packed RGBA8 image: 4 bytes per pixel, row
// major, no padding. Cache nodes of kind Data own a *Pixmap exclusively —
// no aliasing, per spec.md §5.
type Pixmap struct {
	W, H int
	Pix  []byte
}

// NewPixmap allocates a zeroed w*h RGBA8 pixmap.
func NewPixmap(w, h int) *Pixmap {
	return &Pixmap{W: w, H: h, Pix: make([]byte, w*h*4)}
}

// ByteSize is the cache-accounting footprint of this pixmap:
// tile_w*tile_h*4, exactly the value spec.md's Tile Cache §4.4 adds to a
// map's running byte footprint on insertion of a Data node.
func (p *Pixmap) ByteSize() int64 { return int64(p.W) * int64(p.H) * 4 }

// At returns the RGBA quad at (x,y).
func (p *Pixmap) At(x, y int) (r, g, b, a uint8) {
	i := (y*p.W + x) * 4
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2], p.Pix[i+3]
}

// Set writes the RGBA quad at (x,y).
func (p *Pixmap) Set(x, y int, r, g, b, a uint8) {
	i := (y*p.W + x) * 4
	p.Pix[i], p.Pix[i+1], p.Pix[i+2], p.Pix[i+3] = r, g, b, a
}

// ColorChannels unpacks a packed 0xRRGGBB (or 0xAARRGGBB) color as used by
// Color cache nodes and the archive header's empty_color field.
//
// This is the resolved form of spec.md Open Question (ii): the original's
// "rgb&0x00ff0000>>16" is a shift-precedence bug (>> binds tighter than &,
// so the literal is shifted down to 0xff first and the expression yields
// the low byte instead of the red one); the implemented form is
// "(rgb>>16)&0xff" etc.
func ColorChannels(rgb uint32) (r, g, b uint8) {
	r = uint8((rgb >> 16) & 0xff)
	g = uint8((rgb >> 8) & 0xff)
	b = uint8(rgb & 0xff)
	return
}

// Decoder turns an encoded byte buffer into a Pixmap. Implementations are
// expected to be stateless and safe for concurrent use (readers may run on
// the single event-loop thread only per spec.md §5, but nothing here
// precludes use from a worker pool).
type Decoder interface {
	Decode(data []byte) (*Pixmap, error)
}

// ErrDecode wraps a decode failure with the byte length that failed to
// parse, useful when it surfaces as a Tile Reader Error node.
type ErrDecode struct {
	Len int
	Err error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("tilecodec: decode %d bytes: %v", e.Len, e.Err)
}

func (e *ErrDecode) Unwrap() error { return e.Err }
