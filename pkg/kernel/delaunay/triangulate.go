package delaunay

import (
	"context"
	"errors"
	"math"
	"slices"

	"github.com/chazu/porous/pkg/geom"
)

var (
	errTooFewPoints = errors.New("fewer than three distinct points")
	errCollinear    = errors.New("all points are collinear")
	errLocate       = errors.New("point lies outside the triangulation")
	errOnFacet      = errors.New("point lies on a facet")
	errFacetVertex  = errors.New("facet passes through another point")
	errRecover      = errors.New("facet could not be recovered")
	errOnVertex     = errors.New("point coincides with a vertex")
	errMesh         = errors.New("triangulation is inconsistent")
)

// triangle stores its vertices counter-clockwise. n[k] is the triangle
// across the edge opposite v[k], or -1 on the hull, and fixed[k] marks that
// edge as an input facet.
type triangle struct {
	v      [3]int
	n      [3]int
	fixed  [3]bool
	inside bool
}

// index returns the position of vertex v in tr, or -1.
func (tr *triangle) index(v int) int {
	for k, w := range tr.v {
		if w == v {
			return k
		}
	}
	return -1
}

// across returns the position of the edge tr shares with triangle t.
func (tr *triangle) across(t int) int {
	for k, w := range tr.n {
		if w == t {
			return k
		}
	}
	return -1
}

// triangulation is an incremental constrained Delaunay triangulation.
// Points are inserted by splitting the containing triangle and flipping
// until every unfixed edge is locally Delaunay. The three points after the
// caller's points are the vertices of an enclosing super triangle.
type triangulation struct {
	pts  []geom.Point
	tris []triangle
	real int   // number of caller points; the super vertices follow them
	star []int // a triangle incident to each point
	last int   // a triangle to start point location from
}

func newTriangulation(pts []geom.Point) (*triangulation, error) {
	if len(pts) < 3 {
		return nil, errTooFewPoints
	}
	if collinear(pts) {
		return nil, errCollinear
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	d := math.Max(maxX-minX, maxY-minY)
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	t := &triangulation{real: len(pts)}
	t.pts = make([]geom.Point, 0, len(pts)+3)
	t.pts = append(t.pts, pts...)
	t.pts = append(t.pts,
		geom.Point{X: cx - 20*d, Y: cy - d},
		geom.Point{X: cx + 20*d, Y: cy - d},
		geom.Point{X: cx, Y: cy + 20*d},
	)
	t.star = make([]int, len(t.pts))
	n := t.real
	t.tris = append(t.tris, triangle{v: [3]int{n, n + 1, n + 2}, n: [3]int{-1, -1, -1}})
	return t, nil
}

func collinear(pts []geom.Point) bool {
	a := pts[0]
	j := slices.IndexFunc(pts, func(p geom.Point) bool { return p != a })
	if j < 0 {
		return true
	}
	b := pts[j]
	for _, p := range pts[j+1:] {
		if orient(a, b, p) != 0 {
			return false
		}
	}
	return true
}

// super reports whether v is a vertex of the enclosing super triangle.
func (t *triangulation) super(v int) bool {
	return v >= t.real && v < t.real+3
}

// addPoint appends p and returns its index. It is not inserted yet.
func (t *triangulation) addPoint(p geom.Point) int {
	t.pts = append(t.pts, p)
	t.star = append(t.star, -1)
	return len(t.pts) - 1
}

// insertRange inserts the points with indices in [from, to) in a spatially
// coherent order so each walk starts near the previous insertion.
func (t *triangulation) insertRange(ctx context.Context, from, to int) error {
	for k, i := range hilbertOrder(t.pts[from:to]) {
		if k%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := t.insert(from+i, t.last); err != nil {
			return err
		}
	}
	return nil
}

// insert adds point pi, locating it by walking from triangle start.
func (t *triangulation) insert(pi, start int) error {
	tri, err := t.locate(t.pts[pi], start)
	if err != nil {
		return err
	}
	return t.insertAt(pi, tri)
}

// insertAt adds point pi, which lies in triangle ti or on one of its
// unfixed edges, and restores the Delaunay property around it.
func (t *triangulation) insertAt(pi, ti int) error {
	p := t.pts[pi]
	tr := t.tris[ti]
	on := -1
	for _, v := range tr.v {
		if t.pts[v] == p {
			return errOnVertex
		}
	}
	for k := range 3 {
		if orient(t.pts[tr.v[(k+1)%3]], t.pts[tr.v[(k+2)%3]], p) == 0 {
			on = k
		}
	}
	var fresh []int
	if on < 0 {
		fresh = t.split(pi, ti)
	} else {
		if tr.fixed[on] {
			return errOnFacet
		}
		if tr.n[on] < 0 {
			return errLocate
		}
		fresh = t.splitEdge(pi, ti, on)
	}
	t.last = ti
	return t.legalize(pi, fresh)
}

// split replaces triangle ti by the three triangles joining pi to its
// edges.
func (t *triangulation) split(pi, ti int) []int {
	old := t.tris[ti]
	v0, v1, v2 := old.v[0], old.v[1], old.v[2]
	t1, t2 := len(t.tris), len(t.tris)+1

	t.tris[ti] = triangle{v: [3]int{pi, v1, v2}, n: [3]int{old.n[0], t1, t2}, fixed: [3]bool{old.fixed[0]}, inside: old.inside}
	t.tris = append(t.tris,
		triangle{v: [3]int{pi, v2, v0}, n: [3]int{old.n[1], t2, ti}, fixed: [3]bool{old.fixed[1]}, inside: old.inside},
		triangle{v: [3]int{pi, v0, v1}, n: [3]int{old.n[2], ti, t1}, fixed: [3]bool{old.fixed[2]}, inside: old.inside},
	)
	t.relink(old.n[1], ti, t1)
	t.relink(old.n[2], ti, t2)
	t.star[pi], t.star[v1], t.star[v2] = ti, ti, ti
	t.star[v0] = t1
	return []int{ti, t1, t2}
}

// splitEdge replaces triangle ti and its neighbour across edge k by four
// triangles joining pi, which lies on that edge, to the rest of their
// boundary.
func (t *triangulation) splitEdge(pi, ti, k int) []int {
	a := t.tris[ti]
	tj := a.n[k]
	b := t.tris[tj]
	kb := b.across(ti)

	// a is (r, u, w) and b is (q, w, u) up to rotation.
	r, u, w := a.v[k], a.v[(k+1)%3], a.v[(k+2)%3]
	q := b.v[kb]
	au, aw := (k+1)%3, (k+2)%3 // edges of a opposite u and w
	bw, bu := (kb+1)%3, (kb+2)%3

	t2, t3 := len(t.tris), len(t.tris)+1
	t.tris[ti] = triangle{v: [3]int{pi, r, u}, n: [3]int{a.n[aw], t3, t2}, fixed: [3]bool{a.fixed[aw]}, inside: a.inside}
	t.tris[tj] = triangle{v: [3]int{pi, q, w}, n: [3]int{b.n[bu], t2, t3}, fixed: [3]bool{b.fixed[bu]}, inside: b.inside}
	t.tris = append(t.tris,
		triangle{v: [3]int{pi, w, r}, n: [3]int{a.n[au], ti, tj}, fixed: [3]bool{a.fixed[au]}, inside: a.inside},
		triangle{v: [3]int{pi, u, q}, n: [3]int{b.n[bw], tj, ti}, fixed: [3]bool{b.fixed[bw]}, inside: b.inside},
	)
	t.relink(a.n[au], ti, t2)
	t.relink(b.n[bw], tj, t3)
	t.star[pi], t.star[r], t.star[u] = ti, ti, ti
	t.star[q], t.star[w] = tj, tj
	return []int{ti, tj, t2, t3}
}

// relink makes triangle nb, which pointed at from, point at to instead.
func (t *triangulation) relink(nb, from, to int) {
	if nb < 0 {
		return
	}
	o := &t.tris[nb]
	o.n[o.across(from)] = to
}

// legalize flips the edges opposite pi in the given triangles, and in the
// triangles those flips create, until all of them are locally Delaunay.
// Fixed edges are never flipped.
func (t *triangulation) legalize(pi int, stack []int) error {
	for guard := 0; len(stack) > 0; guard++ {
		if guard > 8*len(t.tris)+64 {
			return errMesh
		}
		ti := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tr := &t.tris[ti]
		k := tr.index(pi)
		if k < 0 {
			return errMesh
		}
		nb := tr.n[k]
		if nb < 0 || tr.fixed[k] {
			continue
		}
		q := t.tris[nb].v[t.tris[nb].across(ti)]
		if t.inCircle(ti, t.pts[q]) > 0 {
			t.flip(ti, k)
			stack = append(stack, ti, nb)
		}
	}
	return nil
}

// flip replaces the edge opposite v[k] of triangle ti by the other diagonal
// of the quadrilateral it forms with its neighbour. Both triangles keep
// their indices.
func (t *triangulation) flip(ti, k int) {
	a := t.tris[ti]
	tj := a.n[k]
	b := t.tris[tj]
	kb := b.across(ti)

	// a is (p, u, w) and b is (q, w, u) up to rotation.
	p, u, w := a.v[k], a.v[(k+1)%3], a.v[(k+2)%3]
	q := b.v[kb]
	au, aw := (k+1)%3, (k+2)%3
	bw, bu := (kb+1)%3, (kb+2)%3

	t.tris[ti] = triangle{
		v:      [3]int{p, u, q},
		n:      [3]int{b.n[bw], tj, a.n[aw]},
		fixed:  [3]bool{b.fixed[bw], false, a.fixed[aw]},
		inside: a.inside,
	}
	t.tris[tj] = triangle{
		v:      [3]int{q, w, p},
		n:      [3]int{a.n[au], ti, b.n[bu]},
		fixed:  [3]bool{a.fixed[au], false, b.fixed[bu]},
		inside: b.inside,
	}
	t.relink(b.n[bw], tj, ti)
	t.relink(a.n[au], ti, tj)
	t.star[p], t.star[u] = ti, ti
	t.star[q], t.star[w] = tj, tj
}

// locate walks from triangle start towards p and returns a triangle that
// contains p, falling back to a scan when the walk does not arrive.
func (t *triangulation) locate(p geom.Point, start int) (int, error) {
	cur := start
	for steps := 0; steps < len(t.tris); steps++ {
		tri := t.tris[cur]
		next := -1
		for k := range 3 {
			a, b := t.pts[tri.v[(k+1)%3]], t.pts[tri.v[(k+2)%3]]
			if orient(a, b, p) < 0 {
				next = tri.n[k]
				break
			}
		}
		if next == -1 {
			return cur, nil
		}
		cur = next
	}
	for i := range t.tris {
		if t.containsPoint(i, p) {
			return i, nil
		}
	}
	return -1, errLocate
}

func (t *triangulation) containsPoint(i int, p geom.Point) bool {
	v := t.tris[i].v
	a, b, c := t.pts[v[0]], t.pts[v[1]], t.pts[v[2]]
	return orient(a, b, p) >= 0 && orient(b, c, p) >= 0 && orient(c, a, p) >= 0
}

// inCircle compares p with the circumcircle of triangle i.
func (t *triangulation) inCircle(i int, p geom.Point) int {
	v := t.tris[i].v
	return inCircle(t.pts[v[0]], t.pts[v[1]], t.pts[v[2]], p)
}

// around returns the triangles incident to vertex v.
func (t *triangulation) around(v int) ([]int, error) {
	first := t.star[v]
	var out []int
	for cur := first; ; {
		out = append(out, cur)
		tr := &t.tris[cur]
		cur = tr.n[(tr.index(v)+2)%3]
		if cur == first {
			return out, nil
		}
		if cur < 0 || len(out) > len(t.tris) {
			return nil, errMesh
		}
	}
}

// findEdge returns the triangle holding the directed edge u->w and the
// position of the vertex opposite it.
func (t *triangulation) findEdge(u, w int) (int, int, bool) {
	tris, err := t.around(u)
	if err != nil {
		return 0, 0, false
	}
	for _, ti := range tris {
		tr := &t.tris[ti]
		i := tr.index(u)
		if tr.v[(i+1)%3] == w {
			return ti, (i + 2) % 3, true
		}
	}
	return 0, 0, false
}

// hasEdge reports whether a and b are joined by an edge.
func (t *triangulation) hasEdge(a, b int) bool {
	_, _, ok := t.findEdge(a, b)
	if !ok {
		_, _, ok = t.findEdge(b, a)
	}
	return ok
}

// crossing returns the edges that properly cross the segment from a to b,
// ordered from a to b.
func (t *triangulation) crossing(a, b int) ([][2]int, error) {
	pa, pb := t.pts[a], t.pts[b]
	tris, err := t.around(a)
	if err != nil {
		return nil, err
	}
	cur, u, w := -1, -1, -1
	for _, ti := range tris {
		tr := &t.tris[ti]
		i := tr.index(a)
		cu, cw := tr.v[(i+1)%3], tr.v[(i+2)%3]
		ou, ow := orient(pa, t.pts[cu], pb), orient(pa, t.pts[cw], pb)
		if ou == 0 && t.pts[cu].Sub(pa).Dot(pb.Sub(pa)) > 0 {
			return nil, errFacetVertex
		}
		if ou > 0 && ow < 0 {
			cur, u, w = ti, cu, cw
			break
		}
	}
	if cur < 0 {
		return nil, errRecover
	}

	var edges [][2]int
	for steps := 0; steps <= len(t.tris); steps++ {
		edges = append(edges, [2]int{u, w})
		tr := &t.tris[cur]
		next := tr.n[3-tr.index(u)-tr.index(w)]
		if next < 0 {
			return nil, errRecover
		}
		nt := &t.tris[next]
		x := nt.v[3-nt.index(u)-nt.index(w)]
		if x == b {
			return edges, nil
		}
		switch orient(pa, pb, t.pts[x]) {
		case 0:
			return nil, errFacetVertex
		case -1:
			u = x
		default:
			w = x
		}
		cur = next
	}
	return nil, errRecover
}

// recoverEdge flips edges until a and b are joined by an edge.
func (t *triangulation) recoverEdge(a, b int) error {
	if t.hasEdge(a, b) {
		return nil
	}
	queue, err := t.crossing(a, b)
	if err != nil {
		return err
	}
	pa, pb := t.pts[a], t.pts[b]
	limit := 100*len(queue)*len(queue) + 1000
	for steps := 0; len(queue) > 0; steps++ {
		if steps > limit {
			return errRecover
		}
		e := queue[0]
		queue = queue[1:]
		ti, k, ok := t.findEdge(e[0], e[1])
		if !ok {
			return errRecover
		}
		tr := &t.tris[ti]
		nb := &t.tris[tr.n[k]]
		p, q := tr.v[k], nb.v[nb.across(ti)]
		pp, pq := t.pts[p], t.pts[q]
		u, w := t.pts[e[0]], t.pts[e[1]]
		if orient(pp, pq, u)*orient(pp, pq, w) >= 0 || orient(u, w, pp)*orient(u, w, pq) >= 0 {
			// Not convex; try again once its neighbours have moved.
			queue = append(queue, e)
			continue
		}
		t.flip(ti, k)
		if p != a && p != b && q != a && q != b && orient(pa, pb, pp)*orient(pa, pb, pq) < 0 {
			queue = append(queue, [2]int{p, q})
		}
	}
	return nil
}

// fix marks the edge between a and b as a facet on both sides.
func (t *triangulation) fix(a, b int) error {
	ti, k, ok := t.findEdge(a, b)
	if !ok {
		if ti, k, ok = t.findEdge(b, a); !ok {
			return errRecover
		}
	}
	tr := &t.tris[ti]
	tr.fixed[k] = true
	if nb := tr.n[k]; nb >= 0 {
		o := &t.tris[nb]
		o.fixed[o.across(ti)] = true
	}
	return nil
}

// restore flips unfixed edges until every one is locally Delaunay.
func (t *triangulation) restore() error {
	type edge struct{ t, k int }
	stack := make([]edge, 0, 3*len(t.tris))
	for i := range t.tris {
		stack = append(stack, edge{i, 0}, edge{i, 1}, edge{i, 2})
	}
	for guard := 0; len(stack) > 0; guard++ {
		if guard > 64*len(t.tris)+64 {
			return errMesh
		}
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tr := &t.tris[e.t]
		nb := tr.n[e.k]
		if nb < 0 || tr.fixed[e.k] {
			continue
		}
		q := t.tris[nb].v[t.tris[nb].across(e.t)]
		if t.inCircle(e.t, t.pts[q]) > 0 {
			t.flip(e.t, e.k)
			for k := range 3 {
				stack = append(stack, edge{e.t, k}, edge{nb, k})
			}
		}
	}
	return nil
}

// classify marks the triangles inside the region bounded by the fixed
// edges: membership flips each time a fixed edge is crossed, starting
// outside at the super triangle.
func (t *triangulation) classify() {
	start := -1
	for i := range t.tris {
		if slices.ContainsFunc(t.tris[i].v[:], t.super) {
			start = i
			break
		}
	}
	seen := make([]bool, len(t.tris))
	seen[start] = true
	t.tris[start].inside = false
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		tr := t.tris[cur]
		for k, nb := range tr.n {
			if nb < 0 || seen[nb] {
				continue
			}
			seen[nb] = true
			t.tris[nb].inside = tr.inside != tr.fixed[k]
			queue = append(queue, nb)
		}
	}
}

// triangles returns the triangles that use no super vertex, or only the
// inside ones when onlyInside is set.
func (t *triangulation) triangles(onlyInside bool) [][3]int {
	var out [][3]int
	for _, tri := range t.tris {
		if onlyInside && !tri.inside {
			continue
		}
		if slices.ContainsFunc(tri.v[:], t.super) {
			continue
		}
		out = append(out, tri.v)
	}
	return out
}

// hilbertOrder sorts point indices along a Hilbert curve over their
// bounding box.
func hilbertOrder(pts []geom.Point) []int {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	const side = 1 << 16
	w := math.Max(maxX-minX, maxY-minY)
	if w == 0 {
		w = 1
	}
	keys := make([]uint64, len(pts))
	for i, p := range pts {
		x := uint32((p.X - minX) / w * (side - 1))
		y := uint32((p.Y - minY) / w * (side - 1))
		keys[i] = hilbertKey(side, x, y)
	}
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case keys[a] < keys[b]:
			return -1
		case keys[a] > keys[b]:
			return 1
		}
		return 0
	})
	return order
}

func hilbertKey(n, x, y uint32) uint64 {
	var d uint64
	for s := n / 2; s > 0; s /= 2 {
		var rx, ry uint32
		if x&s != 0 {
			rx = 1
		}
		if y&s != 0 {
			ry = 1
		}
		d += uint64(s) * uint64(s) * uint64((3*rx)^ry)
		if ry == 0 {
			if rx == 1 {
				x = n - 1 - x
				y = n - 1 - y
			}
			x, y = y, x
		}
	}
	return d
}
