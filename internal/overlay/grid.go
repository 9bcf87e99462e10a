// Package overlay implements the View's overlay layers from
// spec.md §4.7: the coordinate grid, the GPS position ring, and the
// waypoints polyline. Each is a view.Layer with no cache dependency —
// they draw directly from view geometry and their own small state.
package overlay

import (
	"fmt"

	"github.com/LaPingvino/tilepilot/internal/view"
	"github.com/LaPingvino/tilepilot/internal/widgethost"
)

// gridSteps is the "nice spacing" multiplier table, tried in order
// against a power-of-16 base. Grounded on step_table in
// original_source/xqx_grid_layer.c, generalized per spec.md §4.7 to
// use a base-16 exponent (16^k) instead of the source's literal
// step_exp=10, so spacing stays aligned with the 28.4 fixed-point
// coordinate scale (16 units/meter) rather than an arbitrary decade.
var gridSteps = [3]int{2, 5, 10}

const gridColor = 0x2222aa

// Grid is the coordinate-grid overlay layer: on INIT/SCALE it
// recomputes a step spacing that renders at roughly targetPixels on
// screen, then on render draws dashed/solid grid lines and labels
// axis crossings at multiples of 16000 coordinate units (1000 m).
type Grid struct {
	dist int64 // target on-screen spacing in pixels, default 60
	step int64 // current coordinate-unit grid spacing
}

// NewGrid creates a grid layer with the default ~60px target spacing.
func NewGrid() *Grid {
	return &Grid{dist: 60}
}

var _ view.Layer = (*Grid)(nil)

// Notify recomputes step on INIT/SCALE: the grid distance (60px)
// projected to coordinate units at the current zoom sets dx; stepBase is
// the largest power of 16 below dx (at least 16), and the step is the
// smallest of stepBase*{2,5,10} that is at least dx, or stepBase*10 when
// even that is below dx.
// Ported from grid_notify.
func (g *Grid) Notify(vw *view.View, change view.LayerChange) {
	if change != view.Init && change != view.Scale {
		return
	}

	scalePX, _, scaleCX, _ := vw.ScaleFactors()
	dx := g.dist * scaleCX * vw.ScaleMain()
	if scalePX != 0 {
		dx /= scalePX
	}
	dx = absInt64(dx)

	stepBase := int64(16)
	for i := int64(16); i < dx; i *= 16 {
		stepBase = i
	}

	idx := 0
	for idx < len(gridSteps) && stepBase*int64(gridSteps[idx]) < dx {
		idx++
	}
	if idx >= len(gridSteps) {
		idx = len(gridSteps) - 1
	}

	g.step = stepBase * int64(gridSteps[idx])
	if g.step == 0 {
		g.step = 1
	}
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Render projects the dirty rectangle's corners to coordinate space,
// rounds out to whole grid cells, and draws vertical/horizontal lines
// (every 5th solid, the rest dashed) back across pixel space, labeling
// crossings on multiples of 16000 units (1 km). Ported from
// grid_render.
func (g *Grid) Render(vw *view.View, dst widgethost.Pixmap, rect view.Rectangle) {
	if g.step == 0 {
		return
	}

	lcx, lcy := vw.PixelsToCoords(rect.LX, rect.LY)
	hcx, hcy := vw.PixelsToCoords(rect.HX, rect.HY)

	lx, hx := int64(lcx)/g.step, int64(hcx)/g.step
	ly, hy := int64(lcy)/g.step, int64(hcy)/g.step
	if hx < lx {
		lx, hx = hx, lx
	}
	if hy < ly {
		ly, hy = hy, ly
	}
	lx--
	ly--
	hx++
	hy++

	scalePX, scalePY, scaleCX, scaleCY := vw.ScaleFactors()
	cx, cy := vw.Center()
	w, h := vw.Size()

	toPixelX := func(coord int64) int {
		tmp := coord - cx
		tmp *= scalePX
		if scaleCX != 0 {
			tmp /= scaleCX
		}
		if vw.ScaleMain() != 0 {
			tmp /= vw.ScaleMain()
		}
		tmp += int64(w) / 2
		return int(tmp)
	}
	toPixelY := func(coord int64) int {
		tmp := coord - cy
		tmp *= scalePY
		if scaleCY != 0 {
			tmp /= scaleCY
		}
		if vw.ScaleMain() != 0 {
			tmp /= vw.ScaleMain()
		}
		tmp += int64(h) / 2
		return int(tmp)
	}

	for i := lx; i <= hx; i++ {
		px := toPixelX(i * g.step)
		if i%5 != 0 {
			drawDashedV(dst, px, rect.LY, rect.HY, gridColor)
		} else {
			dst.Line(px, rect.LY, px, rect.HY, gridColor)
		}
	}
	for i := ly; i <= hy; i++ {
		py := toPixelY(i * g.step)
		if i%5 != 0 {
			drawDashedH(dst, rect.LX, rect.HX, py, gridColor)
		} else {
			dst.Line(rect.LX, py, rect.HX, py, gridColor)
		}
	}

	for i := lx; i <= hx; i++ {
		coord := i * g.step
		if coord%16000 == 0 {
			px := toPixelX(coord)
			dst.Text(px, 1, fmt.Sprintf("%d", coord/16000), gridColor)
		}
	}
	for i := ly; i <= hy; i++ {
		coord := i * g.step
		if coord%16000 == 0 {
			py := toPixelY(coord)
			dst.Text(1, py, fmt.Sprintf("%d", coord/16000), gridColor)
		}
	}
}

func drawDashedV(dst widgethost.Pixmap, x, y0, y1 int, rgb uint32) {
	for i := 0; i <= (y1-y0)/10; i++ {
		if i%2 == 1 {
			dst.Line(x, y0+10*(i-1), x, y0+10*i, rgb)
		}
	}
}

func drawDashedH(dst widgethost.Pixmap, x0, x1, y int, rgb uint32) {
	for i := 0; i <= (x1-x0)/10; i++ {
		if i%2 == 1 {
			dst.Line(x0+10*(i-1), y, x0+10*i, y, rgb)
		}
	}
}
