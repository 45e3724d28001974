package arc

import (
	"math"

	"github.com/chazu/porous/pkg/geom"
)

const twoPi = 2 * math.Pi

// Interval is one retained arc, from Low counter-clockwise to High.
// High may exceed 2pi; High-Low is the angular length.
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Length returns the angular length of the interval.
func (iv Interval) Length() float64 { return iv.High - iv.Low }

// Curve is the polyline of one retained arc. Its first and last points lie
// on the box boundary once snapped.
type Curve struct {
	Obstacle int        // index into the working set
	Center   geom.Point // circle center
	Interval Interval
	Points   []geom.Point
}

// First returns the curve's starting point.
func (c *Curve) First() geom.Point { return c.Points[0] }

// Last returns the curve's end point.
func (c *Curve) Last() geom.Point { return c.Points[len(c.Points)-1] }

// ccwDelta returns (to - from) reduced into [0, 2pi).
func ccwDelta(from, to float64) float64 {
	d := math.Mod(to-from, twoPi)
	if d < 0 {
		d += twoPi
	}
	if d >= twoPi {
		d = 0
	}
	return d
}

// PairArcs matches every low angle with the high angle reached first when
// turning counter-clockwise from it. On an exact tie the high angle listed
// first wins.
func PairArcs(a Angles) ([]Interval, error) {
	if len(a.Low) == 0 {
		return nil, nil
	}
	if len(a.High) == 0 {
		return nil, geom.Degenerate("arc pairing", "%d arc start angle(s) without any end angle", len(a.Low))
	}
	out := make([]Interval, 0, len(a.Low))
	for _, lo := range a.Low {
		best := math.Inf(1)
		for _, hi := range a.High {
			if d := ccwDelta(lo, hi); d < best {
				best = d
			}
		}
		if best == 0 {
			return nil, geom.Degenerate("arc pairing", "zero-length arc at angle %g", lo)
		}
		out = append(out, Interval{Low: lo, High: lo + best})
	}
	return out, nil
}

// BuildCurves pairs the angles of every working-set circle and samples
// each retained arc with spacing close to dx. Curves come out in
// working-set order, and within one circle in low-angle order.
func BuildCurves(centers []geom.Point, angles []Angles, rad, dx float64) ([]Curve, error) {
	var curves []Curve
	for i, c := range centers {
		ivs, err := PairArcs(angles[i])
		if err != nil {
			return nil, err
		}
		for _, iv := range ivs {
			curves = append(curves, Curve{
				Obstacle: i,
				Center:   c,
				Interval: iv,
				Points:   geom.ArcPoints(c, rad, dx, iv.Low, iv.High),
			})
		}
	}
	return curves, nil
}
