package obstacle

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/porous/pkg/geom"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestPlace(t *testing.T) {
	obs, err := Place(25, 4, 4, 0.3, 0.25, newRand(123), 0)
	require.NoError(t, err)
	require.Len(t, obs, 25)

	assert.True(t, slices.IsSortedFunc(obs, func(a, b Obstacle) int {
		switch {
		case a.Center.X < b.Center.X:
			return -1
		case a.Center.X > b.Center.X:
			return 1
		}
		return 0
	}))
	for i, o := range obs {
		assert.Equal(t, 0.25, o.Radius)
		assert.True(t, geom.CenteredBox(4, 4).Contains(o.Center))
		for j := i + 1; j < len(obs); j++ {
			assert.Greater(t, geom.PeriodicDist(o.Center, obs[j].Center, 4, 4), 0.6)
		}
	}
}

func TestPlaceDeterministic(t *testing.T) {
	a, err := Place(10, 3, 2, 0.2, 0.1, newRand(9), 0)
	require.NoError(t, err)
	b, err := Place(10, 3, 2, 0.2, 0.1, newRand(9), 0)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPlaceEdgeCases(t *testing.T) {
	obs, err := Place(0, 4, 4, 0.3, 0.25, newRand(1), 0)
	require.NoError(t, err)
	assert.Empty(t, obs)

	_, err = Place(-1, 4, 4, 0.3, 0.25, newRand(1), 0)
	assert.Error(t, err)
}

func TestPlaceDensity(t *testing.T) {
	// Exclusion disks of diameter 2 leave room for only a handful of
	// obstacles in a 4 x 4 torus.
	_, err := Place(100, 4, 4, 1, 0.25, newRand(1), 100)
	var perr *PlacementDensityError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, 100, perr.Requested)
	assert.Equal(t, 100, perr.Attempts)
	assert.Greater(t, perr.Placed, 0)
	assert.Less(t, perr.Placed, 100)
	assert.Contains(t, err.Error(), "gave up")
}

func TestCorrect(t *testing.T) {
	box := geom.CenteredBox(4, 4)
	tests := []struct {
		name    string
		center  geom.Point
		shifted bool
		shift   geom.Point
	}{
		{"interior", geom.Point{X: 0, Y: 0}, false, geom.Point{}},
		{"one edge", geom.Point{X: -1.9, Y: 0}, false, geom.Point{}},
		{"covers corner", geom.Point{X: -1.9, Y: 1.9}, false, geom.Point{}},
		{"pinches top left", geom.Point{X: -1.8, Y: 1.8}, true, geom.Point{X: -0.2, Y: 0.2}},
		{"pinches bottom right", geom.Point{X: 1.8, Y: -1.8}, true, geom.Point{X: 0.2, Y: -0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []Obstacle{{Center: geom.Point{X: 0.5, Y: 0.5}, Radius: 0.25}, {Center: tt.center, Radius: 0.25}}
			out, shift, ok := Correct(in, box)
			assert.Equal(t, tt.shifted, ok)
			assert.InDelta(t, tt.shift.X, shift.X, 1e-12)
			assert.InDelta(t, tt.shift.Y, shift.Y, 1e-12)
			assert.Equal(t, geom.Point{X: 0.5, Y: 0.5}, in[0].Center, "input must not change")
			if ok {
				assert.InDelta(t, 0.5+tt.shift.X, out[0].Center.X, 1e-12)
				corner := out[1].Center
				assert.InDelta(t, 0, geom.PeriodicDist(corner, geom.Point{X: box.XMin, Y: box.YMin}, 4, 4), 1e-12)
			}
		})
	}
}

func TestCorrectFirstMatchOnly(t *testing.T) {
	box := geom.CenteredBox(4, 4)
	in := []Obstacle{
		{Center: geom.Point{X: -1.8, Y: -1.8}, Radius: 0.25},
		{Center: geom.Point{X: 0, Y: 1.85}, Radius: 0.25},
	}
	_, shift, ok := Correct(in, box)
	require.True(t, ok)
	assert.InDelta(t, -0.2, shift.X, 1e-12)
	assert.InDelta(t, -0.2, shift.Y, 1e-12)
}

func TestClassify(t *testing.T) {
	box := geom.CenteredBox(4, 4)
	obs := []Obstacle{
		{Center: geom.Point{X: 0, Y: 0}, Radius: 0.25},
		{Center: geom.Point{X: -1.9, Y: 0.5}, Radius: 0.25},
		{Center: geom.Point{X: 0.5, Y: -1.9}, Radius: 0.25},
		{Center: geom.Point{X: 2, Y: 2}, Radius: 0.25},
	}
	c := Classify(obs, box)

	require.Len(t, c.Interior, 1)
	assert.Equal(t, obs[0], c.Interior[0])
	require.Len(t, c.Boundary, 3)
	assert.Equal(t, 4, c.Count())

	left := c.Boundary[0]
	require.Len(t, left.Ghosts, 1)
	assert.Equal(t, geom.Point{X: 4}, left.Ghosts[0].Offset)
	assert.InDelta(t, 2.1, left.Ghosts[0].Center.X, 1e-12)

	bottom := c.Boundary[1]
	require.Len(t, bottom.Ghosts, 1)
	assert.Equal(t, geom.Point{Y: 4}, bottom.Ghosts[0].Offset)

	corner := c.Boundary[2]
	assert.Equal(t, Boundary, corner.Tag)
	require.Len(t, corner.Ghosts, 3)
	offsets := []geom.Point{corner.Ghosts[0].Offset, corner.Ghosts[1].Offset, corner.Ghosts[2].Offset}
	assert.ElementsMatch(t, []geom.Point{{X: -4}, {Y: -4}, {X: -4, Y: -4}}, offsets)
	for _, g := range corner.Ghosts {
		assert.Equal(t, 2, g.Source)
	}

	ws := c.WorkingSet()
	require.Len(t, ws, 3+5)
	assert.Equal(t, obs[1].Center, ws[0])
	assert.Equal(t, obs[3].Center, ws[2])
	assert.Len(t, c.Ghosts(), 5)
}

func TestCenters(t *testing.T) {
	obs := []Obstacle{{Center: geom.Point{X: 1, Y: 2}}, {Center: geom.Point{X: 3, Y: 4}}}
	assert.Equal(t, []geom.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, Centers(obs))
	assert.Equal(t, "boundary", Boundary.String())
	assert.Equal(t, "interior", Interior.String())
}
