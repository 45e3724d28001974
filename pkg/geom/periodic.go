package geom

import "math"

// PeriodicDelta returns the minimum-image separation a - b on a torus of
// size lx by ly.
func PeriodicDelta(a, b Point, lx, ly float64) Point {
	d := a.Sub(b)
	if d.X > lx/2 {
		d.X -= lx
	} else if d.X < -lx/2 {
		d.X += lx
	}
	if d.Y > ly/2 {
		d.Y -= ly
	} else if d.Y < -ly/2 {
		d.Y += ly
	}
	return d
}

// PeriodicDist2 returns the squared minimum-image distance between a and b.
func PeriodicDist2(a, b Point, lx, ly float64) float64 {
	return PeriodicDelta(a, b, lx, ly).Length2()
}

// PeriodicDist returns the minimum-image distance between a and b.
func PeriodicDist(a, b Point, lx, ly float64) float64 {
	return math.Sqrt(PeriodicDist2(a, b, lx, ly))
}
