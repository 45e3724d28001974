package delaunay

import (
	"math"
	"math/big"

	"github.com/chazu/porous/pkg/geom"
)

// Error bounds for the floating-point filters of orient and inCircle.
// When a determinant lies within its bound the sign is recomputed exactly.
const (
	epsilon     = 0x1p-53
	ccwErrBound = (3 + 16*epsilon) * epsilon
	iccErrBound = (10 + 96*epsilon) * epsilon
)

// orient returns +1 when a, b, c turn counter-clockwise, -1 when they turn
// clockwise and 0 when they are collinear. The sign is exact.
func orient(a, b, c geom.Point) int {
	l := float64((b.X - a.X) * (c.Y - a.Y))
	r := float64((b.Y - a.Y) * (c.X - a.X))
	det := l - r
	bound := ccwErrBound * (math.Abs(l) + math.Abs(r))
	if det > bound || -det > bound {
		return sign(det)
	}
	return orientExact(a, b, c)
}

// inCircle returns +1 when p lies inside the circle through the
// counter-clockwise triangle a, b, c, -1 when it lies outside and 0 when
// the four points are cocircular. The sign is exact.
func inCircle(a, b, c, p geom.Point) int {
	adx, ady := a.X-p.X, a.Y-p.Y
	bdx, bdy := b.X-p.X, b.Y-p.Y
	cdx, cdy := c.X-p.X, c.Y-p.Y

	bdxcdy, cdxbdy := float64(bdx*cdy), float64(cdx*bdy)
	alift := float64(adx*adx) + float64(ady*ady)
	cdxady, adxcdy := float64(cdx*ady), float64(adx*cdy)
	blift := float64(bdx*bdx) + float64(bdy*bdy)
	adxbdy, bdxady := float64(adx*bdy), float64(bdx*ady)
	clift := float64(cdx*cdx) + float64(cdy*cdy)

	det := float64(alift*(bdxcdy-cdxbdy)) +
		float64(blift*(cdxady-adxcdy)) +
		float64(clift*(adxbdy-bdxady))
	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*alift +
		(math.Abs(cdxady)+math.Abs(adxcdy))*blift +
		(math.Abs(adxbdy)+math.Abs(bdxady))*clift
	bound := iccErrBound * permanent
	if det > bound || -det > bound {
		return sign(det)
	}
	return inCircleExact(a, b, c, p)
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func orientExact(a, b, c geom.Point) int {
	bax, bay := ratSub(b.X, a.X), ratSub(b.Y, a.Y)
	cax, cay := ratSub(c.X, a.X), ratSub(c.Y, a.Y)
	det := new(big.Rat).Sub(ratMul(bax, cay), ratMul(bay, cax))
	return det.Sign()
}

func inCircleExact(a, b, c, p geom.Point) int {
	adx, ady := ratSub(a.X, p.X), ratSub(a.Y, p.Y)
	bdx, bdy := ratSub(b.X, p.X), ratSub(b.Y, p.Y)
	cdx, cdy := ratSub(c.X, p.X), ratSub(c.Y, p.Y)

	lift := func(x, y *big.Rat) *big.Rat {
		return new(big.Rat).Add(ratMul(x, x), ratMul(y, y))
	}
	cross := func(x0, y0, x1, y1 *big.Rat) *big.Rat {
		return new(big.Rat).Sub(ratMul(x0, y1), ratMul(x1, y0))
	}

	det := ratMul(lift(adx, ady), cross(bdx, bdy, cdx, cdy))
	det.Add(det, ratMul(lift(bdx, bdy), cross(cdx, cdy, adx, ady)))
	det.Add(det, ratMul(lift(cdx, cdy), cross(adx, ady, bdx, bdy)))
	return det.Sign()
}

func ratSub(x, y float64) *big.Rat {
	return new(big.Rat).Sub(new(big.Rat).SetFloat64(x), new(big.Rat).SetFloat64(y))
}

func ratMul(x, y *big.Rat) *big.Rat {
	return new(big.Rat).Mul(x, y)
}
