package delaunay

import (
	"context"
	"errors"
	"math"

	"github.com/chazu/porous/pkg/geom"
)

var (
	errRefine   = errors.New("refinement did not converge")
	errCentroid = errors.New("degenerate triangle cannot be split")
)

// refiner inserts circumcenters of inside triangles that break the area
// or angle bound. A circumcenter that would encroach a facet is not
// inserted: an oversized triangle gets its centroid instead and a skinny
// one is left as it is, so facets are never split.
type refiner struct {
	t        *triangulation
	reg      *region
	maxArea  float64
	minAngle float64
}

func (r *refiner) run(ctx context.Context) error {
	t := r.t
	var queue []int
	for i := range t.tris {
		if t.tris[i].inside {
			queue = append(queue, i)
		}
	}
	limit := 4*len(t.pts) + 1000
	for added := 0; len(queue) > 0; {
		ti := queue[0]
		queue = queue[1:]
		tr := &t.tris[ti]
		if !tr.inside {
			continue
		}
		a, b, c := t.pts[tr.v[0]], t.pts[tr.v[1]], t.pts[tr.v[2]]
		big := r.maxArea > 0 && area(a, b, c) > r.maxArea
		skinny := r.minAngle > 0 && minAngle(a, b, c) < r.minAngle
		if !big && !skinny {
			continue
		}

		p, at, ok := r.steiner(ti)
		if !ok {
			if !big {
				continue
			}
			p = geom.Point{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
			if orient(a, b, p) <= 0 || orient(b, c, p) <= 0 || orient(c, a, p) <= 0 {
				return errCentroid
			}
			at = ti
		}

		if added++; added > limit {
			return errRefine
		}
		if added%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		pi := t.addPoint(p)
		if err := t.insertAt(pi, at); err != nil {
			return err
		}
		star, err := t.around(pi)
		if err != nil {
			return err
		}
		queue = append(queue, star...)
	}
	return nil
}

// steiner returns the circumcenter of triangle ti and the triangle
// containing it, when it can be inserted without touching a facet.
func (r *refiner) steiner(ti int) (geom.Point, int, bool) {
	t := r.t
	v := t.tris[ti].v
	p := circumcenter(t.pts[v[0]], t.pts[v[1]], t.pts[v[2]])
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return p, 0, false
	}
	if !r.reg.contains(p) || r.reg.encroaches(p) {
		return p, 0, false
	}
	at, err := t.locate(p, ti)
	if err != nil || !t.tris[at].inside {
		return p, 0, false
	}
	tr := &t.tris[at]
	for k := range 3 {
		u, w := t.pts[tr.v[(k+1)%3]], t.pts[tr.v[(k+2)%3]]
		if p == u || (tr.fixed[k] && orient(u, w, p) == 0) {
			return p, 0, false
		}
	}
	return p, at, true
}

func circumcenter(a, b, c geom.Point) geom.Point {
	u, w := b.Sub(a), c.Sub(a)
	d := 2 * u.Cross(w)
	u2, w2 := u.Length2(), w.Length2()
	return geom.Point{X: a.X + (w.Y*u2-u.Y*w2)/d, Y: a.Y + (u.X*w2-w.X*u2)/d}
}

// area matches kernel.Mesh.TriangleArea so the final check agrees with
// the refinement.
func area(a, b, c geom.Point) float64 {
	return 0.5 * ((b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X))
}

// minAngle returns the smallest interior angle in degrees.
func minAngle(a, b, c geom.Point) float64 {
	p := [3]geom.Point{a, b, c}
	m := 180.0
	for k := range p {
		u, v := p[(k+1)%3].Sub(p[k]), p[(k+2)%3].Sub(p[k])
		ang := math.Abs(math.Atan2(u.Cross(v), u.Dot(v)))
		m = math.Min(m, ang*180/math.Pi)
	}
	return m
}
