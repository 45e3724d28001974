package geom

import "math"

// LinePoints samples the segment from a to b with spacing close to dx.
// The segment is split into ceil(|b-a|/dx) pieces and both endpoints are
// included; a zero-length segment yields the single point a.
func LinePoints(a, b Point, dx float64) []Point {
	n := int(math.Ceil(b.Sub(a).Length() / dx))
	if n < 1 {
		return []Point{a}
	}
	pts := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		pts[i] = a.Add(b.Sub(a).MulScalar(t))
	}
	pts[n] = b
	return pts
}

// ArcPoints samples the arc of radius r around c from thetaStart to
// thetaStop (radians) with spacing close to dx. It returns
// ceil(arcLength/dx)+1 points, endpoints included.
func ArcPoints(c Point, r, dx, thetaStart, thetaStop float64) []Point {
	arcLength := math.Abs(thetaStop-thetaStart) * r
	n := int(math.Ceil(arcLength/dx)) + 1
	if n == 1 {
		return []Point{Polar(c, r, thetaStart)}
	}
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		theta := thetaStart + (thetaStop-thetaStart)*float64(i)/float64(n-1)
		pts[i] = Polar(c, r, theta)
	}
	return pts
}

// CirclePoints samples a full circle counter-clockwise starting at angle
// zero. The closing point that would repeat the first one is dropped.
func CirclePoints(c Point, r, dx float64) []Point {
	return ArcPoints(c, r, dx, 0, 2*math.Pi)[1:]
}
