package delaunay

import (
	"math"

	"github.com/chazu/porous/pkg/geom"
)

type segment struct {
	a, b geom.Point
}

// region answers point queries against the facets of a MeshInput: whether
// a point is inside the meshed region (even-odd over all facets, so hole
// loops carve themselves out) and how far it is from the nearest facet.
type region struct {
	segs    []segment
	longest float64

	x0, y0 float64
	cell   float64
	nx, ny int
	bands  [][]int // facets overlapping each horizontal band
	cells  [][]int // facets overlapping each grid cell
}

func newRegion(pts []geom.Point, edges [][2]int, cell float64) *region {
	r := &region{cell: cell}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, e := range edges {
		s := segment{a: pts[e[0]], b: pts[e[1]]}
		r.segs = append(r.segs, s)
		r.longest = math.Max(r.longest, s.a.Sub(s.b).Length())
		minX, maxX = math.Min(minX, math.Min(s.a.X, s.b.X)), math.Max(maxX, math.Max(s.a.X, s.b.X))
		minY, maxY = math.Min(minY, math.Min(s.a.Y, s.b.Y)), math.Max(maxY, math.Max(s.a.Y, s.b.Y))
	}
	if len(r.segs) == 0 {
		return r
	}
	r.x0, r.y0 = minX, minY
	r.nx = int((maxX-minX)/cell) + 1
	r.ny = int((maxY-minY)/cell) + 1
	r.bands = make([][]int, r.ny)
	r.cells = make([][]int, r.nx*r.ny)

	for i, s := range r.segs {
		i0, j0 := r.cellOf(geom.Point{X: math.Min(s.a.X, s.b.X), Y: math.Min(s.a.Y, s.b.Y)})
		i1, j1 := r.cellOf(geom.Point{X: math.Max(s.a.X, s.b.X), Y: math.Max(s.a.Y, s.b.Y)})
		for j := j0; j <= j1; j++ {
			r.bands[j] = append(r.bands[j], i)
			for k := i0; k <= i1; k++ {
				r.cells[j*r.nx+k] = append(r.cells[j*r.nx+k], i)
			}
		}
	}
	return r
}

func (r *region) cellOf(p geom.Point) (int, int) {
	i := int((p.X - r.x0) / r.cell)
	j := int((p.Y - r.y0) / r.cell)
	return clampInt(i, 0, r.nx-1), clampInt(j, 0, r.ny-1)
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

// contains casts a ray towards +x and counts facet crossings.
func (r *region) contains(p geom.Point) bool {
	if len(r.segs) == 0 || p.Y < r.y0 || p.X < r.x0 {
		return false
	}
	_, j := r.cellOf(p)
	if p.Y > r.y0+float64(r.ny)*r.cell {
		return false
	}
	in := false
	for _, i := range r.bands[j] {
		a, b := r.segs[i].a, r.segs[i].b
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}

// clearance returns the distance from p to the nearest facet, or limit
// when no facet is closer than that.
func (r *region) clearance(p geom.Point, limit float64) float64 {
	best := limit
	r.near(p, limit, func(s segment) bool {
		best = math.Min(best, geom.SegmentDist(p, s.a, s.b))
		return true
	})
	return best
}

// encroaches reports whether p lies strictly inside the diametral circle
// of some facet.
func (r *region) encroaches(p geom.Point) bool {
	hit := false
	r.near(p, r.longest/2, func(s segment) bool {
		hit = p.Sub(s.a).Dot(p.Sub(s.b)) < 0
		return !hit
	})
	return hit
}

// near calls fn for the facets in the grid cells within limit of p until
// fn returns false. A facet spanning several cells may be visited more
// than once.
func (r *region) near(p geom.Point, limit float64, fn func(segment) bool) {
	if len(r.segs) == 0 {
		return
	}
	reach := int(math.Ceil(limit/r.cell)) + 1
	ci, cj := r.cellOf(p)
	for j := max(cj-reach, 0); j <= min(cj+reach, r.ny-1); j++ {
		for i := max(ci-reach, 0); i <= min(ci+reach, r.nx-1); i++ {
			for _, k := range r.cells[j*r.nx+i] {
				if !fn(r.segs[k]) {
					return
				}
			}
		}
	}
}
