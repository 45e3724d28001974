package obstacle

import (
	"math"

	"github.com/chazu/porous/pkg/geom"
)

// Correct looks for the first obstacle, in slice order, that comes within
// its radius of two perpendicular box edges while leaving the corner
// itself uncovered. Such an obstacle would pinch off a sliver of fluid in
// the corner. The whole set is then shifted rigidly so that obstacle's
// center lands on the corner. At most one shift is applied; a second
// pinched corner elsewhere is left alone. The input slice is not modified.
//
// It returns the (possibly) shifted obstacles and the applied offset.
func Correct(obs []Obstacle, box geom.Box) ([]Obstacle, geom.Point, bool) {
	var (
		shift geom.Point
		found bool
	)
	for _, o := range obs {
		if s, ok := cornerShift(o, box); ok {
			shift, found = s, true
			break
		}
	}

	out := make([]Obstacle, len(obs))
	copy(out, obs)
	if !found {
		return out, geom.Point{}, false
	}
	for i := range out {
		out[i].Center = out[i].Center.Add(shift)
	}
	return out, shift, true
}

func cornerShift(o Obstacle, box geom.Box) (geom.Point, bool) {
	c, rad := o.Center, o.Radius
	dxLeft := c.X - box.XMin
	dxRight := box.XMax - c.X
	dyBottom := c.Y - box.YMin
	dyTop := box.YMax - c.Y

	isLeft := dxLeft < rad
	isRight := dxRight < rad
	isBottom := dyBottom < rad
	isTop := dyTop < rad

	switch {
	case isLeft && isTop && math.Hypot(dxLeft, dyTop) > rad:
		return geom.Point{X: -dxLeft, Y: dyTop}, true
	case isLeft && isBottom && math.Hypot(dxLeft, dyBottom) > rad:
		return geom.Point{X: -dxLeft, Y: -dyBottom}, true
	case isRight && isTop && math.Hypot(dxRight, dyTop) > rad:
		return geom.Point{X: dxRight, Y: dyTop}, true
	case isRight && isBottom && math.Hypot(dxRight, dyBottom) > rad:
		return geom.Point{X: dxRight, Y: -dyBottom}, true
	}
	return geom.Point{}, false
}
