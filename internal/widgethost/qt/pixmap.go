package qt

import (
	"github.com/mappu/miqt/qt"

	"github.com/LaPingvino/tilepilot/internal/tilecodec"
	"github.com/LaPingvino/tilepilot/internal/widgethost"
)

// Canvas is a widgethost.Pixmap backed by a QImage, painted with
// QPainter during the widget's paint event. The View renders into it
// off the paint event (back-to-front layer walk over a clamped dirty
// rect) and the widget blits the finished image to screen.
type Canvas struct {
	img *qt.QImage
}

var _ widgethost.Pixmap = (*Canvas)(nil)

// NewCanvas allocates a w x h ARGB32 canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{img: qt.NewQImage3(w, h, qt.QImage__Format_ARGB32)}
}

// Image exposes the backing QImage for a widget's paintEvent to draw.
func (c *Canvas) Image() *qt.QImage { return c.img }

// Resize replaces the backing image, discarding its contents — called
// when the containing widget is resized.
func (c *Canvas) Resize(w, h int) {
	c.img = qt.NewQImage3(w, h, qt.QImage__Format_ARGB32)
}

func (c *Canvas) Width() int  { return c.img.Width() }
func (c *Canvas) Height() int { return c.img.Height() }

func rgbToQColor(rgb uint32) *qt.QColor {
	r := int((rgb >> 16) & 0xff)
	g := int((rgb >> 8) & 0xff)
	b := int(rgb & 0xff)
	return qt.NewQColor3(r, g, b)
}

func (c *Canvas) withPainter(fn func(p *qt.QPainter)) {
	p := qt.NewQPainter2(c.img.QPaintDevice)
	defer p.End()
	fn(p)
}

// Blit copies src's top-left w x h sub-rectangle onto the canvas at
// (dstX,dstY).
func (c *Canvas) Blit(dstX, dstY, w, h int, src *tilecodec.Pixmap) {
	if w <= 0 || h <= 0 {
		return
	}
	if w > src.W {
		w = src.W
	}
	if h > src.H {
		h = src.H
	}
	srcImg := qt.NewQImage7(src.Pix, src.W, src.H, qt.QImage__Format_RGBA8888)
	cropped := srcImg.Copy2(0, 0, w, h)
	c.withPainter(func(p *qt.QPainter) {
		p.DrawImage2(dstX, dstY, cropped)
	})
}

func (c *Canvas) FillRect(lx, ly, hx, hy int, rgb uint32) {
	col := rgbToQColor(rgb)
	c.withPainter(func(p *qt.QPainter) {
		p.FillRect4(lx, ly, hx-lx, hy-ly, col)
	})
}

func (c *Canvas) FillCircle(cx, cy, radius int, rgb uint32) {
	col := rgbToQColor(rgb)
	c.withPainter(func(p *qt.QPainter) {
		p.SetPen2(qt.NoPen)
		p.SetBrush(qt.NewQBrush3(col))
		p.DrawEllipse2(cx-radius, cy-radius, radius*2, radius*2)
	})
}

func (c *Canvas) Line(x1, y1, x2, y2 int, rgb uint32) {
	col := rgbToQColor(rgb)
	c.withPainter(func(p *qt.QPainter) {
		p.SetPen3(col)
		p.DrawLine2(x1, y1, x2, y2)
	})
}

func (c *Canvas) Ring(cx, cy, radius int, rgb uint32) {
	col := rgbToQColor(rgb)
	c.withPainter(func(p *qt.QPainter) {
		p.SetPen3(col)
		p.SetBrush(qt.NewQBrush())
		p.DrawEllipse2(cx-radius, cy-radius, radius*2, radius*2)
	})
}

func (c *Canvas) Text(x, y int, s string, rgb uint32) {
	col := rgbToQColor(rgb)
	c.withPainter(func(p *qt.QPainter) {
		p.SetPen3(col)
		p.DrawText3(x, y, s)
	})
}
