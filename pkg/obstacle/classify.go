package obstacle

import "github.com/chazu/porous/pkg/geom"

// Tag says whether an obstacle becomes a mesh hole or clips the box.
type Tag int

const (
	Interior Tag = iota
	Boundary
)

func (t Tag) String() string {
	if t == Boundary {
		return "boundary"
	}
	return "interior"
}

// Ghost is a periodic image of a boundary obstacle, translated by a
// multiple of the box size. Ghosts only feed the arc computation and are
// never holes.
type Ghost struct {
	Center geom.Point `json:"center"`
	Offset geom.Point `json:"offset"`
	Source int        `json:"source"` // index into Classification.Boundary
}

// Classified is an obstacle with its tag and, for boundary obstacles, its
// ghost images.
type Classified struct {
	Obstacle
	Tag    Tag
	Ghosts []Ghost
}

// Classification is the output of Classify.
type Classification struct {
	Interior []Obstacle
	Boundary []Classified
}

// Count returns the number of classified obstacles, ghosts excluded.
func (c *Classification) Count() int {
	return len(c.Interior) + len(c.Boundary)
}

// Ghosts returns every ghost in classification order.
func (c *Classification) Ghosts() []Ghost {
	var out []Ghost
	for _, b := range c.Boundary {
		out = append(out, b.Ghosts...)
	}
	return out
}

// WorkingSet returns the centers the arc computation runs over: all
// boundary obstacles first, then all their ghosts.
func (c *Classification) WorkingSet() []geom.Point {
	out := make([]geom.Point, 0, len(c.Boundary)*2)
	for _, b := range c.Boundary {
		out = append(out, b.Center)
	}
	for _, g := range c.Ghosts() {
		out = append(out, g.Center)
	}
	return out
}

// Classify tags each obstacle Boundary when its disk reaches within its
// radius of any box edge, Interior otherwise. A boundary obstacle gets one
// ghost per touched edge, shifted one box length away from that edge, and
// one diagonal ghost per touched corner, so a corner obstacle has three.
func Classify(obs []Obstacle, box geom.Box) *Classification {
	lx, ly := box.Width(), box.Height()
	c := &Classification{}

	for _, o := range obs {
		x, y, rad := o.Center.X, o.Center.Y, o.Radius
		isLeft := x < box.XMin+rad
		isRight := x > box.XMax-rad
		isBottom := y < box.YMin+rad
		isTop := y > box.YMax-rad

		if !(isLeft || isRight || isBottom || isTop) {
			c.Interior = append(c.Interior, o)
			continue
		}

		src := len(c.Boundary)
		var offsets []geom.Point
		if isLeft {
			offsets = append(offsets, geom.Point{X: lx})
		}
		if isRight {
			offsets = append(offsets, geom.Point{X: -lx})
		}
		if isBottom {
			offsets = append(offsets, geom.Point{Y: ly})
		}
		if isTop {
			offsets = append(offsets, geom.Point{Y: -ly})
		}
		if isLeft && isTop {
			offsets = append(offsets, geom.Point{X: lx, Y: -ly})
		}
		if isLeft && isBottom {
			offsets = append(offsets, geom.Point{X: lx, Y: ly})
		}
		if isRight && isTop {
			offsets = append(offsets, geom.Point{X: -lx, Y: -ly})
		}
		if isRight && isBottom {
			offsets = append(offsets, geom.Point{X: -lx, Y: ly})
		}

		ghosts := make([]Ghost, len(offsets))
		for i, off := range offsets {
			ghosts[i] = Ghost{Center: o.Center.Add(off), Offset: off, Source: src}
		}
		c.Boundary = append(c.Boundary, Classified{Obstacle: o, Tag: Boundary, Ghosts: ghosts})
	}
	return c
}
