// Package arc computes where obstacle circles cross the box and turns the
// retained, in-box portion of each circle into a polyline.
//
// Angles follow the usual convention: measured counter-clockwise from the
// +x axis around the obstacle center. A Low angle starts a retained arc
// (the arc continues towards increasing angle); a High angle ends one.
package arc

import (
	"math"

	"github.com/chazu/porous/pkg/geom"
)

// Angles holds the arc start and end angles found for one circle.
type Angles struct {
	Low  []float64
	High []float64
}

// Intersect computes, for each center in the working set, the angles at
// which the circle of radius rad crosses the box edges it overlaps. Only
// crossings that fall within the transverse extent of the box are kept.
func Intersect(centers []geom.Point, rad float64, box geom.Box) []Angles {
	out := make([]Angles, len(centers))
	for i, c := range centers {
		out[i] = intersectOne(c, rad, box)
	}
	return out
}

func intersectOne(c geom.Point, rad float64, box geom.Box) Angles {
	var a Angles

	if c.X < box.XMin+rad {
		// The circle bulges out through x = XMin around angle pi; the
		// in-box arc runs from -theta up through 0 to +theta.
		theta := verticalCrossing(box.XMin-c.X, rad)
		ry := rad * math.Sin(theta)
		if c.Y-ry > box.YMin {
			a.Low = append(a.Low, -theta)
		}
		if c.Y+ry < box.YMax {
			a.High = append(a.High, theta)
		}
	}

	if c.X > box.XMax-rad {
		// Out through x = XMax around angle 0; the in-box arc runs from
		// +theta through pi to 2pi-theta.
		theta := verticalCrossing(box.XMax-c.X, rad)
		ry := rad * math.Sin(theta)
		if c.Y-ry > box.YMin {
			a.High = append(a.High, -theta)
		}
		if c.Y+ry < box.YMax {
			a.Low = append(a.Low, theta)
		}
	}

	if c.Y < box.YMin+rad {
		// Out through y = YMin around 3pi/2; the in-box arc runs from
		// theta up to pi-theta.
		theta := horizontalCrossing(box.YMin-c.Y, rad)
		rx := rad * math.Cos(theta)
		if c.X-rx > box.XMin {
			a.High = append(a.High, math.Pi-theta)
		}
		if c.X+rx < box.XMax {
			a.Low = append(a.Low, theta)
		}
	}

	if c.Y > box.YMax-rad {
		// Out through y = YMax around pi/2; the in-box arc runs from
		// pi-theta round to 2pi+theta.
		theta := horizontalCrossing(box.YMax-c.Y, rad)
		rx := rad * math.Cos(theta)
		if c.X-rx > box.XMin {
			a.Low = append(a.Low, math.Pi-theta)
		}
		if c.X+rx < box.XMax {
			a.High = append(a.High, theta)
		}
	}

	return a
}

// verticalCrossing returns the angle in [0, pi] at which the circle meets
// the vertical line lying rx to the right of its center (rx < 0 for a line
// to the left). The crossings are at +/- the returned angle. acos of the
// signed offset already lands on the correct side of the vertical, so no
// further branch fix is needed for centers outside the box.
func verticalCrossing(rx, rad float64) float64 {
	return math.Acos(clampUnit(rx / rad))
}

// horizontalCrossing returns the angle in [-pi/2, pi/2] at which the
// circle meets the horizontal line lying ry above its center. The two
// crossings are at theta and pi-theta.
func horizontalCrossing(ry, rad float64) float64 {
	return math.Asin(clampUnit(ry / rad))
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
