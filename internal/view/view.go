// Package view implements the View component from spec.md §4.5: the
// center/scale/viewport state shared by every layer, and the ordered
// layer stack rendered back-to-front on each repaint. Grounded on
// original_source/xqx_view.c — xqx_view_set_center/set_scale/
// choose_map/pixels_to_coords are ported here with the same
// arithmetic, generalized to use a MapSource interface instead of a
// concrete map struct (so this package never imports maplayer and the
// two can't form an import cycle).
package view

import (
	"container/list"

	"github.com/LaPingvino/tilepilot/internal/logging"
	"github.com/LaPingvino/tilepilot/internal/widgethost"
)

// LayerChange is the reason a layer's Notify is being called.
type LayerChange int

const (
	Init LayerChange = iota
	Finish
	Move
	Resize
	Scale
)

func (c LayerChange) String() string {
	switch c {
	case Init:
		return "INIT"
	case Finish:
		return "FINISH"
	case Move:
		return "MOVE"
	case Resize:
		return "RESIZE"
	case Scale:
		return "SCALE"
	default:
		return "UNKNOWN"
	}
}

// Rectangle is a pixel-space bounding box, lx/ly inclusive, hx/hy
// exclusive — matching xqx_rectangle's convention.
type Rectangle struct {
	LX, LY, HX, HY int
}

// Layer is one entry in the view's ordered stack: either the map
// itself (appended, at the back) or an overlay (prepended, toward the
// front).
type Layer interface {
	Notify(vw *View, change LayerChange)
	Render(vw *View, dst widgethost.Pixmap, rect Rectangle)
}

// MapGeometry is the subset of a map's manifest-derived geometry the
// view needs to seed or re-derive its center/scale when a map attaches
// — the fields xqx_view.c's update_first reads directly off
// xqx_map.
type MapGeometry struct {
	WidthPx, HeightPx int64
	GeoPOX, GeoPOY    int64
	GeoPSX, GeoPSY    int64
	GeoCOX, GeoCOY    int64
	GeoCSX, GeoCSY    int64
	Levels            int
	EPSG              uint32 // 0 if the active map carries no georeference
}

// MapSource is something choose_map can attach as the view's bottom
// layer: it reports its geometry (for center/scale seeding) and can
// build the Layer that will actually render it.
type MapSource interface {
	Geometry() MapGeometry
	NewLayer(vw *View) Layer
}

// View is the center/scale/viewport state shared by every layer, plus
// the ordered stack itself.
type View struct {
	valid bool
	used  bool // true once a map has attached at least once

	centerX, centerY int64 // projected coordinate, 28.4 fixed-point

	scalePX, scalePY int64
	scaleCX, scaleCY int64
	scaleMain        int64
	scaleDef         int64

	w, h int // viewport pixel size

	stepX, stepY int64

	layers    *list.List // of Layer
	activeMap MapSource

	host widgethost.RedrawHost
	log  *logging.Logger
}

// New creates an empty View. host may be nil for headless/test use —
// RequestRedraw then becomes a no-op.
func New(host widgethost.RedrawHost) *View {
	return &View{
		scalePX: 1,
		scalePY: 1,
		layers:  list.New(),
		host:    host,
		log:     logging.Global().Module("view"),
	}
}

func (vw *View) notifyLayer(lr Layer, change LayerChange) {
	if vw.valid {
		lr.Notify(vw, change)
	}
}

func (vw *View) notifyLayers(change LayerChange) {
	if !vw.valid {
		return
	}
	for e := vw.layers.Front(); e != nil; e = e.Next() {
		e.Value.(Layer).Notify(vw, change)
	}
}

func (vw *View) invalidate() {
	vw.RequestRedraw(0, 0, vw.w, vw.h)
}

// Resize updates the viewport pixel size and notifies every layer —
// Init on the first resize, Resize afterward, matching view_resize's
// old_valid toggle.
func (vw *View) Resize(w, h int) {
	wasValid := vw.valid
	vw.valid = true
	vw.w, vw.h = w, h
	vw.updateStep()
	change := Resize
	if !wasValid {
		change = Init
	}
	for e := vw.layers.Front(); e != nil; e = e.Next() {
		e.Value.(Layer).Notify(vw, change)
	}
}

// SetCenter moves the view's center, notifies every layer with Move,
// and invalidates the whole viewport.
func (vw *View) SetCenter(x, y int64) {
	vw.centerX, vw.centerY = x, y
	vw.notifyLayers(Move)
	vw.invalidate()
}

// Move is a relative SetCenter.
func (vw *View) Move(dx, dy int64) {
	vw.SetCenter(vw.centerX+dx, vw.centerY+dy)
}

// Center returns the current projected-coordinate center.
func (vw *View) Center() (x, y int64) { return vw.centerX, vw.centerY }

// ScaleMain returns the current zoom-level divisor.
func (vw *View) ScaleMain() int64 { return vw.scaleMain }

// Step returns the current pixel-step used for keyboard panning.
func (vw *View) Step() (stepX, stepY int64) { return vw.stepX, vw.stepY }

// Size returns the current viewport pixel size.
func (vw *View) Size() (w, h int) { return vw.w, vw.h }

// ScaleFactors returns the active map's coordinate-per-pixel ratio
// components, as copied from its georeference by ChooseMap.
func (vw *View) ScaleFactors() (scalePX, scalePY, scaleCX, scaleCY int64) {
	return vw.scalePX, vw.scalePY, vw.scaleCX, vw.scaleCY
}

// ActiveMapEPSG returns the attached map's coordinate reference system,
// or 0 if no map has attached or it carries no georeference — the
// vw->active_map->epsg check gps_msg_cb makes before reprojecting a fix.
func (vw *View) ActiveMapEPSG() uint32 {
	if vw.activeMap == nil {
		return 0
	}
	return vw.activeMap.Geometry().EPSG
}

// SetScale clamps s to [1, 2^(levels-1)] for the active map, and — if
// that changes scale_main — recomputes scale_def and the pixel step,
// notifies every layer with Scale, and invalidates.
func (vw *View) SetScale(s int64) {
	if vw.activeMap == nil {
		return
	}
	levels := vw.activeMap.Geometry().Levels
	smax := int64(1) << uint(levels-1)
	if s < 1 {
		s = 1
	}
	if s > smax {
		s = smax
	}
	if s == vw.scaleMain {
		return
	}
	vw.scaleMain = s
	vw.scaleDef = absInt64(vw.scaleMain * vw.scaleCX / vw.scalePX)

	vw.updateStep()
	vw.notifyLayers(Scale)
	vw.invalidate()
}

// ZoomIn and ZoomOut compose onto SetScale: zoom_in(coef) multiplies
// scale_main by 1024/coef, zoom_out by coef/1024, both truncated to
// integer — the exact arithmetic of xqx_view_zoom_in/out.
func (vw *View) ZoomIn(coef int64) {
	ns := (vw.scaleMain * 1024) / coef
	vw.SetScale(ns)
}

func (vw *View) ZoomOut(coef int64) {
	ns := (vw.scaleMain * coef) / 1024
	vw.SetScale(ns)
}

func (vw *View) updateStep() {
	if vw.scalePX == 0 || vw.scalePY == 0 {
		return
	}
	vw.stepX = 256 * vw.scaleCX * vw.scaleMain / vw.scalePX
	vw.stepY = 256 * vw.scaleCY * vw.scaleMain / vw.scalePY
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// RequestRedraw clamps the rectangle to the viewport and forwards it
// to the widget toolkit.
func (vw *View) RequestRedraw(lx, ly, hx, hy int) {
	lx = clampInt(lx, 0, vw.w)
	ly = clampInt(ly, 0, vw.h)
	hx = clampInt(hx, lx, vw.w)
	hy = clampInt(hy, ly, vw.h)
	if vw.host != nil {
		vw.host.RequestRedraw(lx, ly, hx, hy)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Render walks the layer stack back to front — the map (appended,
// at the back) first, overlays (prepended, toward the front) on top —
// and invokes each layer's Render with the given dirty rectangle.
func (vw *View) Render(dst widgethost.Pixmap, rect Rectangle) {
	if !vw.valid {
		return
	}
	for e := vw.layers.Back(); e != nil; e = e.Prev() {
		e.Value.(Layer).Render(vw, dst, rect)
	}
}
