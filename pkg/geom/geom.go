// Package geom holds the planar primitives shared by every stage of the
// domain construction: points, the axis-aligned periodic box, and the
// discretisation helpers that turn lines and circular arcs into polylines.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// SnapTolerance is the distance within which a point is moved exactly onto
// a box edge.
const SnapTolerance = 1e-12

// Point is a 2D coordinate. It is the sdfx vector type, so the vector
// arithmetic (Add, Sub, Length, Equals) comes from sdfx.
type Point = v2.Vec

// Polar returns the point at angle theta on the circle of radius r around c.
func Polar(c Point, r, theta float64) Point {
	return c.Add(Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)})
}

// Edge names one side of the box.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeTop
	EdgeRight
	EdgeBottom
	EdgeNone
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeTop:
		return "top"
	case EdgeRight:
		return "right"
	case EdgeBottom:
		return "bottom"
	default:
		return "none"
	}
}

// Box is the axis-aligned simulation domain. It is invariant for a run.
type Box struct {
	XMin, XMax float64
	YMin, YMax float64
}

// CenteredBox returns the box [-lx/2, lx/2] x [-ly/2, ly/2].
func CenteredBox(lx, ly float64) Box {
	return Box{XMin: -lx / 2, XMax: lx / 2, YMin: -ly / 2, YMax: ly / 2}
}

// Width returns the box extent along x.
func (b Box) Width() float64 { return b.XMax - b.XMin }

// Height returns the box extent along y.
func (b Box) Height() float64 { return b.YMax - b.YMin }

// Perimeter returns the length of the box boundary.
func (b Box) Perimeter() float64 { return 2 * (b.Width() + b.Height()) }

// Corners returns the four corners in clockwise order starting at the
// bottom-left corner.
func (b Box) Corners() [4]Point {
	return [4]Point{
		{X: b.XMin, Y: b.YMin},
		{X: b.XMin, Y: b.YMax},
		{X: b.XMax, Y: b.YMax},
		{X: b.XMax, Y: b.YMin},
	}
}

// Contains reports whether p lies in the closed box.
func (b Box) Contains(p Point) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Snap moves each coordinate of p that lies within SnapTolerance of a box
// line exactly onto that line.
func (b Box) Snap(p Point) Point {
	if math.Abs(p.X-b.XMin) < SnapTolerance {
		p.X = b.XMin
	} else if math.Abs(p.X-b.XMax) < SnapTolerance {
		p.X = b.XMax
	}
	if math.Abs(p.Y-b.YMin) < SnapTolerance {
		p.Y = b.YMin
	} else if math.Abs(p.Y-b.YMax) < SnapTolerance {
		p.Y = b.YMax
	}
	return p
}

// EdgeOf returns the edge a snapped point lies on. Corners belong to the
// edge that reaches them first in the clockwise walk from the bottom-left
// corner, so the bottom-left corner is on the left edge and the
// bottom-right corner is on the right edge.
func (b Box) EdgeOf(p Point) Edge {
	inX := p.X >= b.XMin && p.X <= b.XMax
	inY := p.Y >= b.YMin && p.Y <= b.YMax
	switch {
	case p.X == b.XMin && inY:
		return EdgeLeft
	case p.Y == b.YMax && inX:
		return EdgeTop
	case p.X == b.XMax && inY:
		return EdgeRight
	case p.Y == b.YMin && inX:
		return EdgeBottom
	}
	return EdgeNone
}

// PerimeterPos returns the clockwise arc-length position of a snapped
// boundary point, measured from the bottom-left corner: up the left edge,
// right along the top, down the right edge and back along the bottom.
// ok is false when p is not on the boundary.
func (b Box) PerimeterPos(p Point) (s float64, ok bool) {
	switch b.EdgeOf(p) {
	case EdgeLeft:
		return p.Y - b.YMin, true
	case EdgeTop:
		return b.Height() + (p.X - b.XMin), true
	case EdgeRight:
		return b.Height() + b.Width() + (b.YMax - p.Y), true
	case EdgeBottom:
		return 2*b.Height() + b.Width() + (b.XMax - p.X), true
	}
	return 0, false
}

// CornerPositions returns the perimeter positions of Corners().
func (b Box) CornerPositions() [4]float64 {
	return [4]float64{0, b.Height(), b.Height() + b.Width(), 2*b.Height() + b.Width()}
}

// Translate returns the box shifted by d.
func (b Box) Translate(d Point) Box {
	return Box{XMin: b.XMin + d.X, XMax: b.XMax + d.X, YMin: b.YMin + d.Y, YMax: b.YMax + d.Y}
}
