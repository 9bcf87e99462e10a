// Package qt binds internal/widgethost and internal/taskrun to
// github.com/mappu/miqt, the teacher's own Qt binding (the teacher's
// topo_widget.go builds its widgets the same way: qt.NewQWidget,
// layouts, and the On<Signal> callback convention used below for
// OnTimeout). No teacher file drives a QTimer or QPainter directly, so
// the call shapes here follow miqt's documented API rather than a
// ported snippet.
package qt

import (
	"time"

	"github.com/mappu/miqt/qt"

	"github.com/LaPingvino/tilepilot/internal/taskrun"
)

// TaskHost posts taskrun callbacks onto Qt's event loop via one-shot
// QTimers, reposting a callback that returns a non-stopping Result
// after the delay it asks for — taskrun.Host's contract. prio is
// accepted for interface conformance; Qt's timer queue has no
// priority concept of its own, so same-tick ordering falls back to
// post order.
type TaskHost struct{}

// NewTaskHost creates a Qt-backed taskrun.Host. The constructor touches
// no Qt state; PostTask and PostTimer create QTimers, so they run on the
// Qt GUI thread after a QApplication exists.
func NewTaskHost() *TaskHost { return &TaskHost{} }

var _ taskrun.Host = (*TaskHost)(nil)

// PostTask schedules cb to run on the next event-loop tick.
func (h *TaskHost) PostTask(prio int, cb func() taskrun.Result) {
	h.schedule(0, cb)
}

// PostTimer schedules cb to run after d.
func (h *TaskHost) PostTimer(d time.Duration, cb func() taskrun.Result) {
	h.schedule(d, cb)
}

func (h *TaskHost) schedule(d time.Duration, cb func() taskrun.Result) {
	timer := qt.NewQTimer(nil)
	timer.SetSingleShot(true)
	timer.OnTimeout(func() {
		timer.DeleteLater()
		result := cb()
		if !result.Stop {
			after := result.After
			if after <= 0 {
				after = d
			}
			h.schedule(after, cb)
		}
	})
	ms := int(d / time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	timer.Start(ms)
}
