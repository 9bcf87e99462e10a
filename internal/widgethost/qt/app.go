package qt

import (
	"context"
	"os"

	"github.com/mappu/miqt/qt"
)

// App owns the process-wide QApplication and the main window the
// viewer's MapWidget is embedded in. Grounded on the teacher's
// qtApp/gui module pair (QtAppModule creates the QApplication first at
// high priority, GuiModule builds the window against it) collapsed
// into one runtime.Component, since the viewer has exactly one window
// rather than a tab-per-lesson interface.
type App struct {
	app    *qt.QApplication
	window *qt.QMainWindow
	width  int
	height int
	title  string
	widget *MapWidget
}

// NewApp creates an App that will open a window titled title sized
// width x height once Start runs.
func NewApp(title string, width, height int) *App {
	return &App{title: title, width: width, height: height}
}

// Name implements runtime.Component.
func (a *App) Name() string { return "widgethost" }

// Requires implements runtime.Component: the window needs settings
// loaded (for its initial size) before it opens.
func (a *App) Requires() []string { return []string{"config"} }

// Start creates the QApplication and main window and shows it —
// Enable in the teacher's QtAppModule/GuiModule.
func (a *App) Start(ctx context.Context) error {
	a.app = qt.NewQApplication(os.Args)
	a.app.SetApplicationName("tilepilot")

	a.window = qt.NewQMainWindow(nil)
	a.window.SetWindowTitle(a.title)
	a.window.Resize(a.width, a.height)

	a.widget = NewMapWidget(a.window.QWidget, a.width, a.height)
	a.window.SetCentralWidget(a.widget.QWidget)
	a.window.Show()

	return nil
}

// Stop closes the window and quits the application — Disable in the
// teacher's modules.
func (a *App) Stop(ctx context.Context) error {
	if a.window != nil {
		a.window.Close()
	}
	if a.app != nil {
		a.app.Quit()
	}
	return nil
}

// Widget returns the map-rendering widget, available once Start has
// run.
func (a *App) Widget() *MapWidget { return a.widget }

// Exec runs the Qt event loop until the window closes. Callers invoke
// this after a runtime.Manager.StartAll, mirroring the teacher's
// GuiModule.RunEventLoop — a blocking call driving Qt's own loop
// rather than a custom one.
func (a *App) Exec() int {
	if a.app == nil {
		return 0
	}
	return a.app.Exec()
}
