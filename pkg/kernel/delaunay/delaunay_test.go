package delaunay

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/porous/pkg/geom"
	"github.com/chazu/porous/pkg/kernel"
)

// square returns the closed polyline around [x0,x1]x[y0,y1] sampled with
// spacing dx, either counter-clockwise or clockwise.
func square(x0, y0, x1, y1, dx float64, ccw bool) []geom.Point {
	corners := []geom.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
	if !ccw {
		corners[1], corners[3] = corners[3], corners[1]
	}
	var pts []geom.Point
	for i := range corners {
		seg := geom.LinePoints(corners[i], corners[(i+1)%4], dx)
		pts = append(pts, seg[:len(seg)-1]...)
	}
	return pts
}

// addLoop appends a closed loop to in with round-trip edges.
func addLoop(in *kernel.MeshInput, loop []geom.Point) {
	off := len(in.Points)
	in.Points = append(in.Points, loop...)
	for i := range loop {
		in.Edges = append(in.Edges, [2]int{off + i, off + (i+1)%len(loop)})
	}
}

func requireCCW(t *testing.T, m *kernel.Mesh) {
	t.Helper()
	for i := 0; i < m.TriangleCount(); i++ {
		require.Greater(t, m.TriangleArea(i), 0.0, "triangle %d is not counter-clockwise", i)
	}
}

func TestTriangulateUnitSquare(t *testing.T) {
	dx := 0.1
	var in kernel.MeshInput
	addLoop(&in, square(0, 0, 1, 1, dx, true))

	m, err := New().Triangulate(context.Background(), in, kernel.DefaultOptions(dx))
	require.NoError(t, err)
	require.False(t, m.IsEmpty())
	requireCCW(t, m)

	assert.InDelta(t, 1.0, m.Area(), 1e-9)
	assert.Zero(t, m.Stats.MissingEdges)
	assert.Positive(t, m.Stats.SteinerCount)
	assert.LessOrEqual(t, m.Stats.MaxArea, kernel.DefaultOptions(dx).MaxArea)
	assert.Greater(t, m.Stats.MinAngle, 0.0)

	lo, hi := m.BoundingBox()
	assert.Equal(t, [2]float64{0, 0}, lo)
	assert.Equal(t, [2]float64{1, 1}, hi)
}

func TestTriangulateSquareWithHole(t *testing.T) {
	dx := 0.05
	var in kernel.MeshInput
	addLoop(&in, square(0, 0, 1, 1, dx, true))
	addLoop(&in, square(0.3, 0.3, 0.7, 0.7, dx, false))
	in.Holes = []geom.Point{{X: 0.5, Y: 0.5}}

	m, err := New().Triangulate(context.Background(), in, kernel.DefaultOptions(dx))
	require.NoError(t, err)
	requireCCW(t, m)

	assert.Zero(t, m.Stats.MissingEdges)
	assert.InDelta(t, 1.0-0.16, m.Area(), 1e-9)
	for i := 0; i < m.VertexCount(); i++ {
		x, y := m.Vertex(i)
		inside := x > 0.3 && x < 0.7 && y > 0.3 && y < 0.7
		assert.False(t, inside, "vertex (%g, %g) inside the hole", x, y)
	}
}

func TestTriangulateWithoutFacetsMeshesHull(t *testing.T) {
	in := kernel.MeshInput{Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}}
	m, err := New().Triangulate(context.Background(), in, kernel.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, 4, m.VertexCount())
	assert.InDelta(t, 1.0, m.Area(), 1e-12)
}

func TestTriangulateDuplicatePoints(t *testing.T) {
	in := kernel.MeshInput{Points: []geom.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0},
	}}
	m, err := New().Triangulate(context.Background(), in, kernel.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, m.TriangleCount())
	assert.Equal(t, 3, m.VertexCount())
}

func TestTriangulateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   kernel.MeshInput
	}{
		{"empty", kernel.MeshInput{}},
		{"two points", kernel.MeshInput{Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}},
		{"nan", kernel.MeshInput{Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: math.NaN(), Y: 1}}}},
		{"collinear", kernel.MeshInput{Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}}},
		{"bad edge", kernel.MeshInput{
			Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
			Edges:  [][2]int{{0, 7}},
		}},
		{"seed inside region", func() kernel.MeshInput {
			var in kernel.MeshInput
			addLoop(&in, square(0, 0, 1, 1, 0.25, true))
			in.Holes = []geom.Point{{X: 0.5, Y: 0.5}}
			return in
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Triangulate(context.Background(), tt.in, kernel.Options{MaxArea: 0.01})
			require.Error(t, err)
			var terr *kernel.TriangulationError
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, Name, terr.Backend)
		})
	}
}

func TestTriangulateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var in kernel.MeshInput
	addLoop(&in, square(0, 0, 1, 1, 0.1, true))
	_, err := New().Triangulate(ctx, in, kernel.DefaultOptions(0.1))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRegionContainsAndClearance(t *testing.T) {
	var in kernel.MeshInput
	addLoop(&in, square(0, 0, 1, 1, 0.25, true))
	addLoop(&in, square(0.4, 0.4, 0.6, 0.6, 0.1, false))
	reg := newRegion(in.Points, in.Edges, 0.1)

	assert.True(t, reg.contains(geom.Point{X: 0.2, Y: 0.2}))
	assert.False(t, reg.contains(geom.Point{X: 0.5, Y: 0.5}))
	assert.False(t, reg.contains(geom.Point{X: 1.5, Y: 0.5}))
	assert.False(t, reg.contains(geom.Point{X: 0.5, Y: -0.1}))

	assert.InDelta(t, 0.1, reg.clearance(geom.Point{X: 0.1, Y: 0.5}, 0.2), 1e-12)
	assert.Equal(t, 0.05, reg.clearance(geom.Point{X: 0.2, Y: 0.2}, 0.05))
}

func TestHilbertOrderIsPermutation(t *testing.T) {
	pts := square(0, 0, 1, 1, 0.1, true)
	order := hilbertOrder(pts)
	require.Len(t, order, len(pts))
	seen := make(map[int]bool)
	for _, i := range order {
		seen[i] = true
	}
	assert.Len(t, seen, len(pts))
}

func TestStatsEquilateral(t *testing.T) {
	m := &kernel.Mesh{
		Vertices: []float64{0, 0, 1, 0, 0.5, math.Sqrt(3) / 2},
		Indices:  []uint32{0, 1, 2},
	}
	s := stats(m, 25)
	assert.InDelta(t, 60.0, s.MinAngle, 1e-9)
	assert.InDelta(t, math.Sqrt(3)/4, s.MaxArea, 1e-12)
	assert.Zero(t, s.Skinny)

	s = stats(m, 61)
	assert.Equal(t, 1, s.Skinny)
}

func TestOrientIsExact(t *testing.T) {
	a, b := geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 1}
	x := 0.7
	assert.Equal(t, 0, orient(a, b, geom.Point{X: x, Y: x}))
	assert.Equal(t, 1, orient(a, b, geom.Point{X: x, Y: math.Nextafter(x, 1)}))
	assert.Equal(t, -1, orient(a, b, geom.Point{X: x, Y: math.Nextafter(x, 0)}))

	// Points rounded onto a long line are nearly collinear, which is
	// where the float filter has to hand over to exact arithmetic.
	rng := rand.New(rand.NewSource(1))
	for range 2000 {
		a := geom.Point{X: rng.Float64() * 1e3, Y: rng.Float64() * 1e3}
		b := geom.Point{X: rng.Float64() * 1e3, Y: rng.Float64() * 1e3}
		s := rng.Float64()
		c := a.Add(b.Sub(a).MulScalar(s))
		require.Equal(t, orientExact(a, b, c), orient(a, b, c), "orient(%v, %v, %v)", a, b, c)
	}
}

func TestInCircleIsExact(t *testing.T) {
	a, b, c := geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0}, geom.Point{X: 1, Y: 1}
	assert.Equal(t, 0, inCircle(a, b, c, geom.Point{X: 0, Y: 1}))
	assert.Equal(t, 1, inCircle(a, b, c, geom.Point{X: 0.5, Y: 0.5}))
	assert.Equal(t, -1, inCircle(a, b, c, geom.Point{X: 2, Y: 2}))

	rng := rand.New(rand.NewSource(2))
	on := func() geom.Point {
		return geom.Polar(geom.Point{X: 0.3, Y: -0.2}, 0.25, 2*math.Pi*rng.Float64())
	}
	for range 2000 {
		a, b, c, p := on(), on(), on(), on()
		if orient(a, b, c) <= 0 {
			a, b = b, a
		}
		require.Equal(t, inCircleExact(a, b, c, p), inCircle(a, b, c, p))
	}
}

// checkTriangulation verifies orientation, neighbour symmetry and the
// constrained Delaunay property of every triangle.
func checkTriangulation(t *testing.T, tr *triangulation) {
	t.Helper()
	for i, tri := range tr.tris {
		a, b, c := tr.pts[tri.v[0]], tr.pts[tri.v[1]], tr.pts[tri.v[2]]
		require.Equal(t, 1, orient(a, b, c), "triangle %d is not counter-clockwise", i)
		for k, nb := range tri.n {
			if nb < 0 {
				continue
			}
			o := tr.tris[nb]
			j := o.across(i)
			require.GreaterOrEqual(t, j, 0, "triangle %d does not point back at %d", nb, i)
			require.Equal(t, tri.v[(k+2)%3], o.v[(j+1)%3])
			require.Equal(t, tri.v[(k+1)%3], o.v[(j+2)%3])
			require.Equal(t, tri.fixed[k], o.fixed[j])
			if !tri.fixed[k] {
				require.LessOrEqual(t, inCircle(a, b, c, tr.pts[o.v[j]]), 0, "edge %d of triangle %d is not Delaunay", k, i)
			}
		}
	}
}

func TestInsertCocircularPoints(t *testing.T) {
	for k := range 200 {
		r := 0.25 + float64(k)*0.001
		var pts []geom.Point
		for i := range 64 {
			pts = append(pts, geom.Polar(geom.Point{}, r, 2*math.Pi*float64(i)/64))
		}
		for i := -3; i <= 3; i++ {
			for j := -3; j <= 3; j++ {
				pts = append(pts, geom.Point{X: float64(i) * 0.05, Y: float64(j) * 0.05 * math.Sqrt(3) / 2})
			}
		}
		pts, _ = dedupe(pts)
		tr, err := newTriangulation(pts)
		require.NoError(t, err)
		require.NoError(t, tr.insertRange(context.Background(), 0, len(pts)), "radius %g", r)
		checkTriangulation(t, tr)
	}
}

func TestInsertGrid(t *testing.T) {
	var pts []geom.Point
	for i := range 30 {
		for j := range 30 {
			pts = append(pts, geom.Point{X: float64(i) * 0.1, Y: float64(j) * 0.1})
		}
	}
	tr, err := newTriangulation(pts)
	require.NoError(t, err)
	require.NoError(t, tr.insertRange(context.Background(), 0, len(pts)))
	checkTriangulation(t, tr)
	// 2n - 2 - h triangles for n points with h on the hull.
	assert.Len(t, tr.triangles(false), 2*900-2-116)
}

func TestTriangulateRecoversNonDelaunayFacet(t *testing.T) {
	// The hole's long edge has a point of the outer loop inside its
	// diametral circle, so it is missing from the plain triangulation.
	var in kernel.MeshInput
	addLoop(&in, []geom.Point{{X: -1, Y: -1}, {X: 5, Y: -1}, {X: 5, Y: 1}, {X: 2, Y: 0.05}, {X: -1, Y: 1}})
	addLoop(&in, []geom.Point{{X: 0, Y: 0}, {X: 2, Y: -0.05}, {X: 4, Y: 0}})
	in.Holes = []geom.Point{{X: 2, Y: -0.02}}

	for _, opts := range []kernel.Options{{}, {MaxArea: 0.05, MinAngle: 25}} {
		m, err := New().Triangulate(context.Background(), in, opts)
		require.NoError(t, err)
		requireCCW(t, m)
		assert.Zero(t, m.Stats.MissingEdges)
		assert.InDelta(t, 9.05, m.Area(), 1e-9)
		if opts.MaxArea > 0 {
			assert.LessOrEqual(t, m.Stats.MaxArea, opts.MaxArea)
		}
	}
}

func TestConstrainedTriangulationIsValid(t *testing.T) {
	dx := 0.05
	var in kernel.MeshInput
	addLoop(&in, square(0, 0, 1, 1, dx, true))
	addLoop(&in, square(0.3, 0.3, 0.7, 0.7, dx, false))
	opts := kernel.DefaultOptions(dx)
	h := latticeShrink * math.Sqrt(4*opts.MaxArea/math.Sqrt(3))

	tr, err := newTriangulation(in.Points)
	require.NoError(t, err)
	require.NoError(t, tr.insertRange(context.Background(), 0, len(in.Points)))
	reg := newRegion(in.Points, in.Edges, h)
	require.NoError(t, New().constrain(context.Background(), tr, reg, in.Edges, h, opts))

	checkTriangulation(t, tr)
	for _, e := range in.Edges {
		assert.True(t, tr.hasEdge(e[0], e[1]), "facet %v", e)
	}
	for _, tri := range tr.tris {
		if !tri.inside {
			continue
		}
		a, b, c := tr.pts[tri.v[0]], tr.pts[tri.v[1]], tr.pts[tri.v[2]]
		assert.LessOrEqual(t, area(a, b, c), opts.MaxArea)
		centroid := geom.Point{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
		assert.True(t, reg.contains(centroid))
	}
}

func TestTriangulateQualityBounds(t *testing.T) {
	for _, dx := range []float64{0.37, 0.1, 0.04} {
		var in kernel.MeshInput
		addLoop(&in, square(0, 0, 3, 1, dx, true))
		addLoop(&in, square(1, 0.25, 1.5, 0.75, dx/2, false))
		opts := kernel.DefaultOptions(dx)

		m, err := New().Triangulate(context.Background(), in, opts)
		require.NoError(t, err, "dx %g", dx)
		requireCCW(t, m)
		assert.Zero(t, m.Stats.MissingEdges)
		assert.LessOrEqual(t, m.Stats.MaxArea, opts.MaxArea)
		assert.InDelta(t, 3-0.25, m.Area(), 1e-9)

		skinny := 0
		for i := 0; i < m.TriangleCount(); i++ {
			var p [3]geom.Point
			for k := range p {
				x, y := m.Vertex(int(m.Indices[3*i+k]))
				p[k] = geom.Point{X: x, Y: y}
			}
			if minAngle(p[0], p[1], p[2]) < opts.MinAngle {
				skinny++
			}
		}
		assert.Equal(t, skinny, m.Stats.Skinny)
		if skinny == 0 {
			assert.GreaterOrEqual(t, m.Stats.MinAngle, opts.MinAngle)
		}
	}
}

func TestRegionEncroaches(t *testing.T) {
	var in kernel.MeshInput
	addLoop(&in, []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}})
	reg := newRegion(in.Points, in.Edges, 0.1)
	assert.True(t, reg.encroaches(geom.Point{X: 0.5, Y: 0.1}))
	assert.True(t, reg.encroaches(geom.Point{X: 0.95, Y: 0.4}))
	// On a diametral circle is not inside it.
	assert.False(t, reg.encroaches(geom.Point{X: 0.5, Y: 0.5}))
	assert.False(t, reg.encroaches(geom.Point{X: 3, Y: 3}))
}
