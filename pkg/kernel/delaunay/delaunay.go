// Package delaunay is the built-in mesher backend. It builds a constrained
// Delaunay triangulation of the input facets with exact orientation and
// incircle predicates, drops the triangles outside the region, seeds the
// region with a hexagonal lattice sized from the area bound and refines it
// by circumcenter insertion until the area bound holds.
package delaunay

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/chazu/porous/pkg/geom"
	"github.com/chazu/porous/pkg/kernel"
)

// Name identifies this backend.
const Name = "delaunay"

// latticeShrink scales the lattice spacing below the equilateral spacing
// for MaxArea, leaving room for the irregular triangles near facets.
const latticeShrink = 0.9

var (
	errEmpty     = errors.New("no triangles inside the region")
	errHoleSeed  = errors.New("hole seed lies inside the meshed region")
	errEdgeIndex = errors.New("edge references a missing point")
	errNonFinite = errors.New("point has a non-finite coordinate")
	errMaxArea   = errors.New("triangle exceeds the area bound")
)

// Mesher implements kernel.Mesher.
type Mesher struct {
	// Clearance is the smallest distance between a lattice point and a
	// facet, as a fraction of the lattice spacing.
	Clearance float64
}

// New returns a Mesher with the default clearance.
func New() *Mesher {
	return &Mesher{Clearance: 0.5}
}

// Name implements kernel.Mesher.
func (m *Mesher) Name() string { return Name }

// Triangulate implements kernel.Mesher. Every facet appears as a mesh edge
// and facets are never split, so AllowBoundarySteiner has no effect.
// MaxArea is a hard bound: a mesh that cannot meet it is an error.
// MinAngle is met everywhere except next to facets, where the refining
// point would encroach the facet; those triangles are counted in
// Stats.Skinny. Input without facets is triangulated as given, with no
// refinement.
func (m *Mesher) Triangulate(ctx context.Context, in kernel.MeshInput, opts kernel.Options) (*kernel.Mesh, error) {
	mesh, err := m.triangulate(ctx, in, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &kernel.TriangulationError{Backend: Name, Err: err}
	}
	return mesh, nil
}

func (m *Mesher) triangulate(ctx context.Context, in kernel.MeshInput, opts kernel.Options) (*kernel.Mesh, error) {
	for _, p := range in.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, fmt.Errorf("%w: (%g, %g)", errNonFinite, p.X, p.Y)
		}
	}
	pts, remap := dedupe(in.Points)
	var edges [][2]int
	for _, e := range in.Edges {
		if e[0] < 0 || e[1] < 0 || e[0] >= len(in.Points) || e[1] >= len(in.Points) {
			return nil, fmt.Errorf("%w: (%d, %d)", errEdgeIndex, e[0], e[1])
		}
		a, b := remap[e[0]], remap[e[1]]
		if a != b {
			edges = append(edges, [2]int{a, b})
		}
	}
	if len(pts) < 3 {
		return nil, errTooFewPoints
	}

	h := 0.0
	if opts.MaxArea > 0 {
		h = latticeShrink * math.Sqrt(4*opts.MaxArea/math.Sqrt(3))
	}
	cell := h
	if cell <= 0 {
		cell = extent(pts) / 64
	}
	if cell <= 0 {
		return nil, errCollinear
	}
	reg := newRegion(pts, edges, cell)
	carve := len(edges) > 0

	if carve {
		for _, s := range in.Holes {
			if reg.contains(s) {
				return nil, fmt.Errorf("%w: (%g, %g)", errHoleSeed, s.X, s.Y)
			}
		}
	}

	t, err := newTriangulation(pts)
	if err != nil {
		return nil, err
	}
	if err := t.insertRange(ctx, 0, len(pts)); err != nil {
		return nil, err
	}

	kept := t.triangles(false)
	if carve {
		if err := m.constrain(ctx, t, reg, edges, h, opts); err != nil {
			return nil, err
		}
		kept = t.triangles(true)
	}
	if len(kept) == 0 {
		return nil, errEmpty
	}

	mesh := compact(t.pts, kept)
	mesh.Stats = stats(mesh, opts.MinAngle)
	mesh.Stats.MissingEdges = missingEdges(kept, edges)
	seen := make(map[int]bool)
	for _, tri := range kept {
		for _, v := range tri {
			if v >= len(pts) && !seen[v] {
				seen[v] = true
				mesh.Stats.SteinerCount++
			}
		}
	}
	if opts.MaxArea > 0 && mesh.Stats.MaxArea > opts.MaxArea {
		return nil, fmt.Errorf("%w: %g > %g", errMaxArea, mesh.Stats.MaxArea, opts.MaxArea)
	}
	return mesh, nil
}

// constrain recovers and fixes every facet, marks the triangles inside the
// region, then adds the lattice and refines.
func (m *Mesher) constrain(ctx context.Context, t *triangulation, reg *region, edges [][2]int, h float64, opts kernel.Options) error {
	for i, e := range edges {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := t.recoverEdge(e[0], e[1]); err != nil {
			return fmt.Errorf("facet (%d, %d): %w", e[0], e[1], err)
		}
	}
	for _, e := range edges {
		if err := t.fix(e[0], e[1]); err != nil {
			return fmt.Errorf("facet (%d, %d): %w", e[0], e[1], err)
		}
	}
	if err := t.restore(); err != nil {
		return err
	}
	t.classify()

	if h > 0 {
		base := len(t.pts)
		for _, p := range lattice(t.pts[:t.real], reg, h, m.Clearance*h) {
			t.addPoint(p)
		}
		if err := t.insertRange(ctx, base, len(t.pts)); err != nil {
			return err
		}
	}
	if opts.MaxArea <= 0 && opts.MinAngle <= 0 {
		return nil
	}
	r := &refiner{t: t, reg: reg, maxArea: opts.MaxArea, minAngle: opts.MinAngle}
	return r.run(ctx)
}

// dedupe drops exact duplicate points. remap maps every input index to
// its index in the returned slice.
func dedupe(in []geom.Point) ([]geom.Point, []int) {
	seen := make(map[geom.Point]int, len(in))
	out := make([]geom.Point, 0, len(in))
	remap := make([]int, len(in))
	for i, p := range in {
		j, ok := seen[p]
		if !ok {
			j = len(out)
			seen[p] = j
			out = append(out, p)
		}
		remap[i] = j
	}
	return out, remap
}

func extent(pts []geom.Point) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return math.Max(maxX-minX, maxY-minY)
}

// lattice returns the hexagonal lattice points of spacing h that lie
// inside the region at least gap away from every facet.
func lattice(pts []geom.Point, reg *region, h, gap float64) []geom.Point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	rowH := h * math.Sqrt(3) / 2
	var out []geom.Point
	for row, y := 0, minY+rowH/2; y < maxY; row, y = row+1, y+rowH {
		x0 := minX + h/2
		if row%2 == 1 {
			x0 += h / 2
		}
		for x := x0; x < maxX; x += h {
			p := geom.Point{X: x, Y: y}
			if reg.contains(p) && reg.clearance(p, gap) >= gap {
				out = append(out, p)
			}
		}
	}
	return out
}

func compact(pts []geom.Point, tris [][3]int) *kernel.Mesh {
	index := make(map[int]uint32)
	mesh := &kernel.Mesh{Indices: make([]uint32, 0, 3*len(tris))}
	for _, tri := range tris {
		for _, v := range tri {
			j, ok := index[v]
			if !ok {
				j = uint32(len(index))
				index[v] = j
				mesh.Vertices = append(mesh.Vertices, pts[v].X, pts[v].Y)
			}
			mesh.Indices = append(mesh.Indices, j)
		}
	}
	return mesh
}

func missingEdges(tris [][3]int, edges [][2]int) int {
	have := make(map[[2]int]bool, 3*len(tris))
	key := func(a, b int) [2]int {
		if a > b {
			a, b = b, a
		}
		return [2]int{a, b}
	}
	for _, t := range tris {
		have[key(t[0], t[1])] = true
		have[key(t[1], t[2])] = true
		have[key(t[2], t[0])] = true
	}
	missing := 0
	for _, e := range edges {
		if !have[key(e[0], e[1])] {
			missing++
		}
	}
	return missing
}

// stats computes the smallest angle in degrees, the largest area and the
// number of triangles under minAng.
func stats(m *kernel.Mesh, minAng float64) kernel.Stats {
	s := kernel.Stats{MinAngle: 180}
	for t := 0; t < m.TriangleCount(); t++ {
		s.MaxArea = math.Max(s.MaxArea, math.Abs(m.TriangleArea(t)))
		var p [3]geom.Point
		for k := range p {
			x, y := m.Vertex(int(m.Indices[3*t+k]))
			p[k] = geom.Point{X: x, Y: y}
		}
		ang := minAngle(p[0], p[1], p[2])
		s.MinAngle = math.Min(s.MinAngle, ang)
		if ang < minAng {
			s.Skinny++
		}
	}
	return s
}
