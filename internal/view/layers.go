package view

import "container/list"

// findElement lets RemoveLayer find and erase a list.Element without
// the view needing a parallel index: each Layer implementation is
// expected to be inserted at most once.
func (vw *View) findElement(lr Layer) *list.Element {
	for e := vw.layers.Front(); e != nil; e = e.Next() {
		if e.Value.(Layer) == lr {
			return e
		}
	}
	return nil
}

// PrependLayer inserts lr at the front of the stack (closest to the
// viewer — overlays such as the grid and GPS layer live here) and
// fires Init. Use ChooseMap, not AppendLayer, to attach the map layer
// itself: that operation additionally seeds or re-derives center/scale.
func (vw *View) PrependLayer(lr Layer) {
	vw.layers.PushFront(lr)
	vw.notifyLayer(lr, Init)
}

// AppendLayer inserts lr at the back of the stack and fires Init.
func (vw *View) AppendLayer(lr Layer) {
	vw.layers.PushBack(lr)
	vw.notifyLayer(lr, Init)
}

// RemoveLayer detaches lr and fires Finish.
func (vw *View) RemoveLayer(lr Layer) {
	if e := vw.findElement(lr); e != nil {
		vw.layers.Remove(e)
	}
	vw.notifyLayer(lr, Finish)
}

// ChooseMap detaches the current map layer (the back of the stack, if
// any) and attaches src as the new one. When no map has ever attached
// before, the view seeds its center to the map's pixel midpoint and
// picks a level roughly half-way through the pyramid; otherwise it
// preserves the current projected view by choosing the level whose
// pixel-step is closest to the previous scale_def, with hysteresis —
// the exact logic of update_first's "already used" branch.
func (vw *View) ChooseMap(src MapSource) {
	if back := vw.layers.Back(); back != nil {
		lr := back.Value.(Layer)
		vw.layers.Remove(back)
		vw.notifyLayer(lr, Finish)
	}

	vw.activeMap = src
	lr := src.NewLayer(vw)
	vw.layers.PushBack(lr)
	vw.updateFirst(src)
	vw.notifyLayer(lr, Init)
	vw.invalidate()
}

func (vw *View) updateFirst(src MapSource) {
	g := src.Geometry()

	if !vw.used {
		vw.centerX = (g.WidthPx/2-g.GeoPOX)*g.GeoCSX/g.GeoPSX + g.GeoCOX
		vw.centerY = (g.HeightPx/2-g.GeoPOY)*g.GeoCSY/g.GeoPSY + g.GeoCOY

		vw.scaleCX, vw.scaleCY = g.GeoCSX, g.GeoCSY
		vw.scalePX, vw.scalePY = g.GeoPSX, g.GeoPSY

		vw.scaleMain = 1
		if g.Levels > 2 {
			vw.scaleMain = 1 << uint(g.Levels-2)
		}

		vw.scaleDef = absInt64(vw.scaleMain * vw.scaleCX / vw.scalePX)
		vw.used = true
	} else {
		oldScaleDef := vw.scaleDef

		vw.scaleCX, vw.scaleCY = g.GeoCSX, g.GeoCSY
		vw.scalePX, vw.scalePY = g.GeoPSX, g.GeoPSY

		l := 0
		var newScale int64
		for ; l < g.Levels; l++ {
			vw.scaleMain = 1 << uint(l)
			newScale = vw.scaleMain * vw.scaleCX / vw.scalePX
			if oldScaleDef <= newScale {
				break
			}
		}

		if l > 0 && l < g.Levels && (oldScaleDef*64/newScale) < (newScale*32/oldScaleDef) {
			vw.scaleMain /= 2
		}
	}

	vw.updateStep()
}
