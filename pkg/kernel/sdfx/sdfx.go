// Package sdfx models the fluid domain as a 2D signed distance field using
// the github.com/deadsy/sdfx SDF-based CAD library: the periodic box with
// every obstacle disk, ghosts included, subtracted. The field is negative
// in the fluid, zero on its boundary and positive inside obstacles or
// outside the box, which makes it an independent check of the loops the
// stitcher produces.
package sdfx

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/porous/pkg/geom"
)

// DefaultTolerance is the largest |distance| accepted for a point that is
// supposed to lie on the boundary.
const DefaultTolerance = 1e-9

// Domain is the signed distance model of the fluid region.
type Domain struct {
	s   sdf.SDF2
	box geom.Box
}

// NewDomain builds the fluid domain for box with disks of radius rad at
// centers.
func NewDomain(box geom.Box, centers []geom.Point, rad float64) (*Domain, error) {
	s := sdf.Box2D(geom.Point{X: box.Width(), Y: box.Height()}, 0)
	mid := geom.Point{X: (box.XMin + box.XMax) / 2, Y: (box.YMin + box.YMax) / 2}
	s = sdf.Transform2D(s, sdf.Translate2d(mid))

	if len(centers) > 0 {
		disks := make([]sdf.SDF2, 0, len(centers))
		for _, c := range centers {
			d, err := sdf.Circle2D(rad)
			if err != nil {
				return nil, fmt.Errorf("sdfx.Circle2D: %w", err)
			}
			disks = append(disks, sdf.Transform2D(d, sdf.Translate2d(c)))
		}
		s = sdf.Difference2D(s, sdf.Union2D(disks...))
	}
	return &Domain{s: s, box: box}, nil
}

// Evaluate returns the signed distance of p from the fluid boundary.
func (d *Domain) Evaluate(p geom.Point) float64 {
	return d.s.Evaluate(p)
}

// InFluid reports whether p lies strictly inside the fluid.
func (d *Domain) InFluid(p geom.Point) bool {
	return d.Evaluate(p) < 0
}

// BoundingBox returns the bounds of the field.
func (d *Domain) BoundingBox() (min, max [2]float64) {
	bb := d.s.BoundingBox()
	return [2]float64{bb.Min.X, bb.Min.Y}, [2]float64{bb.Max.X, bb.Max.Y}
}

// CheckBoundary verifies that every point of pts lies on the zero level
// of the field within tol.
func (d *Domain) CheckBoundary(pts []geom.Point, tol float64) error {
	for i, p := range pts {
		if v := d.Evaluate(p); v > tol || v < -tol {
			return geom.Degenerate("verify", "boundary point %d (%g, %g) is %g off the fluid boundary", i, p.X, p.Y, v)
		}
	}
	return nil
}

// CheckSolid verifies that every point of pts lies inside an obstacle.
func (d *Domain) CheckSolid(pts []geom.Point) error {
	for i, p := range pts {
		if v := d.Evaluate(p); v <= 0 {
			return geom.Degenerate("verify", "hole seed %d (%g, %g) is not inside an obstacle", i, p.X, p.Y)
		}
	}
	return nil
}

// Porosity estimates the fluid fraction of the box by sampling the field
// at the centers of an n x n grid.
func (d *Domain) Porosity(n int) float64 {
	if n <= 0 {
		return 0
	}
	hx, hy := d.box.Width()/float64(n), d.box.Height()/float64(n)
	fluid := 0
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			p := geom.Point{X: d.box.XMin + (float64(i)+0.5)*hx, Y: d.box.YMin + (float64(j)+0.5)*hy}
			if d.InFluid(p) {
				fluid++
			}
		}
	}
	return float64(fluid) / float64(n*n)
}
