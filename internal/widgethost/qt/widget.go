package qt

import (
	"github.com/mappu/miqt/qt"

	"github.com/LaPingvino/tilepilot/internal/widgethost"
)

// MapWidget is a QWidget that paints a Canvas and forwards resize/
// paint events. The View this widget belongs to calls RequestRedraw
// as its layers produce dirty rects; Widget coalesces those into
// QWidget.Update calls so Qt schedules one real repaint per batch of
// View changes, same as the teacher's widgets relying on Qt's own
// paint-event coalescing rather than redrawing synchronously.
type MapWidget struct {
	*qt.QWidget
	canvas *Canvas
	onSize func(w, h int)
}

var _ widgethost.RedrawHost = (*MapWidget)(nil)

// NewMapWidget creates an empty map widget sized w x h.
func NewMapWidget(parent *qt.QWidget, w, h int) *MapWidget {
	mw := &MapWidget{
		QWidget: qt.NewQWidget(parent),
		canvas:  NewCanvas(w, h),
	}
	mw.SetMinimumSize2(w, h)
	mw.OnPaintEvent(func(super func(event *qt.QPaintEvent), event *qt.QPaintEvent) {
		mw.paint()
	})
	mw.OnResizeEvent(func(super func(event *qt.QResizeEvent), event *qt.QResizeEvent) {
		size := event.Size()
		mw.canvas.Resize(size.Width(), size.Height())
		if mw.onSize != nil {
			mw.onSize(size.Width(), size.Height())
		}
	})
	return mw
}

// Canvas returns the drawing surface a View renders layers into.
func (mw *MapWidget) Canvas() *Canvas { return mw.canvas }

// OnResize registers a callback invoked after the backing canvas is
// resized, letting the owner re-render the full view into the new
// surface before the next paint event fires.
func (mw *MapWidget) OnResize(fn func(w, h int)) { mw.onSize = fn }

// RequestRedraw implements widgethost.RedrawHost. miqt's Update
// schedules a paint event through Qt's own damage-coalescing, so the
// clamped rect the View computed is not needed beyond having proven
// something changed; the paint handler always repaints from the
// current canvas contents.
func (mw *MapWidget) RequestRedraw(lx, ly, hx, hy int) {
	mw.Update()
}

func (mw *MapWidget) paint() {
	p := qt.NewQPainter2(mw.QWidget.QPaintDevice)
	defer p.End()
	p.DrawImage2(0, 0, mw.canvas.Image())
}
