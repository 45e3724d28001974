package geom

import "math"

// SignedArea returns the shoelace area of the closed polygon pts. The
// closing edge from the last point back to the first is implicit.
// Counter-clockwise polygons have positive area.
func SignedArea(pts []Point) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].Cross(pts[j])
	}
	return a / 2
}

// InPolygon reports whether p lies inside the closed polygon pts using the
// even-odd rule. Points exactly on an edge may report either way.
func InPolygon(p Point, pts []Point) bool {
	in := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}

// SegmentDist returns the distance from p to the segment ab.
func SegmentDist(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Length2()
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Sub(a.Add(ab.MulScalar(t))).Length()
}

// PolylineDist returns the distance from p to the closed polyline pts.
func PolylineDist(p Point, pts []Point) float64 {
	d := math.Inf(1)
	for i := range pts {
		d = math.Min(d, SegmentDist(p, pts[i], pts[(i+1)%len(pts)]))
	}
	return d
}

// Orient returns twice the signed area of the triangle abc; positive when
// a, b, c turn counter-clockwise.
func Orient(a, b, c Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// SegmentsCross reports whether the open segments ab and cd properly cross.
// Shared endpoints and collinear overlaps do not count.
func SegmentsCross(a, b, c, d Point) bool {
	d1 := Orient(c, d, a)
	d2 := Orient(c, d, b)
	d3 := Orient(a, b, c)
	d4 := Orient(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}
