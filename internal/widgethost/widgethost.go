// Package widgethost defines the collaborator contracts the core
// rendering and scheduling code consumes from the widget toolkit, per
// spec.md §6: a draw API layers call during render, and the redraw
// request sink the View forwards to. The qt subpackage binds these to
// the real toolkit; tests and headless callers can supply a fake.
package widgethost

import "github.com/LaPingvino/tilepilot/internal/tilecodec"

// Pixmap is the destination surface a layer draws into during render.
// rgb packs channels as 0x00RRGGBB, the same convention tilecodec uses
// for solid-color cache nodes.
type Pixmap interface {
	Width() int
	Height() int

	// Blit copies the top-left w x h sub-rectangle of src (clipped to
	// src's own bounds) with its top-left corner at (dstX,dstY). Pass
	// src.W, src.H to copy the whole tile; a smaller w/h crops the last
	// tile in a column/row whose map pixel size isn't a multiple of the
	// tile size.
	Blit(dstX, dstY, w, h int, src *tilecodec.Pixmap)

	FillRect(lx, ly, hx, hy int, rgb uint32)
	FillCircle(cx, cy, radius int, rgb uint32)
	Line(x1, y1, x2, y2 int, rgb uint32)
	Ring(cx, cy, radius int, rgb uint32)
	Text(x, y int, s string, rgb uint32)
}

// RedrawHost is the sink a View forwards clamped dirty rectangles to;
// the toolkit schedules the actual repaint and later calls back into
// the View's paint handler.
type RedrawHost interface {
	RequestRedraw(lx, ly, hx, hy int)
}
