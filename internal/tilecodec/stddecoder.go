package tilecodec

import (
	"bytes"
	"image"
	_ "image/jpeg" // tile-format "jpeg"
	_ "image/png"  // tile-format default
)

// StdDecoder decodes PNG/JPEG tile payloads using the standard library's
// image package. It is the default Decoder: no example in the retrieved
// pack wraps a third-party codec for local-file tile decoding, and image
// decoding is explicitly out of scope for this port (spec.md §1) beyond
// satisfying the Decoder contract.
type StdDecoder struct{}

func (StdDecoder) Decode(data []byte) (*Pixmap, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ErrDecode{Len: len(data), Err: err}
	}

	b := img.Bounds()
	pm := NewPixmap(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			pm.Set(x, y, uint8(r>>8), uint8(g>>8), uint8(bl>>8), uint8(a>>8))
		}
	}
	return pm, nil
}
