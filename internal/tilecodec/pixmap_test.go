package tilecodec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColorChannelsUnpacksCorrectly(t *testing.T) {
	r, g, b := ColorChannels(0x11223344)
	require.Equal(t, uint8(0x22), r)
	require.Equal(t, uint8(0x33), g)
	require.Equal(t, uint8(0x44), b)
}

func TestPixmapByteSize(t *testing.T) {
	p := NewPixmap(16, 16)
	require.Equal(t, int64(16*16*4), p.ByteSize())
}

func TestPixmapSetAt(t *testing.T) {
	p := NewPixmap(2, 2)
	p.Set(1, 0, 10, 20, 30, 255)
	r, g, b, a := p.At(1, 0)
	require.Equal(t, uint8(10), r)
	require.Equal(t, uint8(20), g)
	require.Equal(t, uint8(30), b)
	require.Equal(t, uint8(255), a)
}

func TestStdDecoderRoundTripsPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	pm, err := (StdDecoder{}).Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, 3, pm.W)
	require.Equal(t, 2, pm.H)
	r, g, b, a := pm.At(0, 0)
	require.Equal(t, uint8(1), r)
	require.Equal(t, uint8(2), g)
	require.Equal(t, uint8(3), b)
	require.Equal(t, uint8(255), a)
}

func TestStdDecoderErrorOnGarbage(t *testing.T) {
	_, err := (StdDecoder{}).Decode([]byte{0, 1, 2, 3})
	require.Error(t, err)
	var de *ErrDecode
	require.ErrorAs(t, err, &de)
}
