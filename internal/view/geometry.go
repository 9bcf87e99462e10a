package view

import "github.com/LaPingvino/tilepilot/internal/fixedpoint"

// PixelsToCoords is the standard pin-hole transform: pixel offset from
// the viewport center, scaled by the active map's coordinate-per-pixel
// ratio and the current zoom divisor, then shifted by the view center.
// All arithmetic happens in 64-bit to avoid overflow; the result is
// narrowed to 32-bit fixed-point only at the very end, per
// xqx_view_pixels_to_coords.
func (vw *View) PixelsToCoords(px, py int) (cx, cy int32) {
	x := int64(px)
	y := int64(py)

	x -= int64(vw.w) / 2
	x *= vw.scaleCX
	x *= vw.scaleMain
	if vw.scalePX != 0 {
		x /= vw.scalePX
	}
	x += vw.centerX

	y -= int64(vw.h) / 2
	y *= vw.scaleCY
	y *= vw.scaleMain
	if vw.scalePY != 0 {
		y /= vw.scalePY
	}
	y += vw.centerY

	cx = fixedpoint.NarrowClamp(x)
	cy = fixedpoint.NarrowClamp(y)
	return cx, cy
}

// CoordsToPixels is the inverse of PixelsToCoords: given a projected
// coordinate, returns its pixel position in the current viewport.
func (vw *View) CoordsToPixels(cx, cy int64) (px, py int32) {
	x := cx - vw.centerX
	x *= vw.scalePX
	if vw.scaleMain != 0 {
		x /= vw.scaleMain
	}
	if vw.scaleCX != 0 {
		x /= vw.scaleCX
	}
	x += int64(vw.w) / 2

	y := cy - vw.centerY
	y *= vw.scalePY
	if vw.scaleMain != 0 {
		y /= vw.scaleMain
	}
	if vw.scaleCY != 0 {
		y /= vw.scaleCY
	}
	y += int64(vw.h) / 2

	return fixedpoint.NarrowClamp(x), fixedpoint.NarrowClamp(y)
}
