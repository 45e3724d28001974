package obstacle

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/chazu/porous/pkg/geom"
)

// PlacementDensityError reports that rejection sampling ran out of
// attempts, meaning the requested count and exclusion radius are too dense
// for the box.
type PlacementDensityError struct {
	Placed    int
	Requested int
	Attempts  int
}

func (e *PlacementDensityError) Error() string {
	return fmt.Sprintf("obstacle placement: placed %d of %d obstacles, gave up after %d attempts for the next one",
		e.Placed, e.Requested, e.Attempts)
}

// Place draws n centers uniformly in [-lx/2, lx/2] x [-ly/2, ly/2] such
// that every pair is more than 2*exclusion apart in the periodic metric.
// Each obstacle gets at most maxAttempts candidates (DefaultMaxAttempts
// when maxAttempts <= 0). The result is sorted by x, ties keeping
// placement order, and every obstacle carries the given radius.
func Place(n int, lx, ly, exclusion, radius float64, rng *rand.Rand, maxAttempts int) ([]Obstacle, error) {
	if n < 0 {
		return nil, fmt.Errorf("obstacle placement: negative obstacle count %d", n)
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	diam2 := 4 * exclusion * exclusion

	pts := make([]geom.Point, 0, n)
	for i := 0; i < n; i++ {
		accepted := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			pt := geom.Point{
				X: (rng.Float64() - 0.5) * lx,
				Y: (rng.Float64() - 0.5) * ly,
			}
			if farFromAll(pt, pts, lx, ly, diam2) {
				pts = append(pts, pt)
				accepted = true
				break
			}
		}
		if !accepted {
			return nil, &PlacementDensityError{Placed: i, Requested: n, Attempts: maxAttempts}
		}
	}

	slices.SortStableFunc(pts, func(a, b geom.Point) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})

	obs := make([]Obstacle, len(pts))
	for i, p := range pts {
		obs[i] = Obstacle{Center: p, Radius: radius}
	}
	return obs, nil
}

func farFromAll(pt geom.Point, placed []geom.Point, lx, ly, diam2 float64) bool {
	for _, q := range placed {
		if geom.PeriodicDist2(q, pt, lx, ly) <= diam2 {
			return false
		}
	}
	return true
}
