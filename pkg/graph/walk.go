package graph

import (
	"slices"

	"github.com/chazu/porous/pkg/arc"
	"github.com/chazu/porous/pkg/geom"
)

// Loop is the closed outer boundary of the fluid domain. The closing edge
// from the last point back to the first is implicit. Points run
// counter-clockwise.
type Loop struct {
	Points []geom.Point
	Graph  *BoundaryGraph
}

// Len returns the number of loop points.
func (l *Loop) Len() int { return len(l.Points) }

// Stitch builds the boundary graph for curves and walks it into a loop.
func Stitch(curves []arc.Curve, box geom.Box, dx float64) (*Loop, error) {
	g, err := Build(curves, box)
	if err != nil {
		return nil, err
	}
	return Walk(g, curves, dx)
}

// Walk follows outgoing links from the start of the first curve (from the
// bottom-left corner when there are no curves) until it comes back,
// emitting curve points as they are and sampling straight segments with
// spacing close to dx. The walk runs clockwise around the fluid domain;
// the emitted loop is reversed so that it is counter-clockwise.
//
// The walk must close within one pass over the links and must use every
// link; otherwise the boundary is not a single simple loop.
func Walk(g *BoundaryGraph, curves []arc.Curve, dx float64) (*Loop, error) {
	if len(g.Nodes) == 0 {
		return nil, geom.Degenerate("walk", "boundary graph is empty")
	}
	start := NodeID(0)
	if len(curves) > 0 {
		id, err := g.Intern(curves[0].First(), NodeCrossing)
		if err != nil {
			return nil, err
		}
		start = id
	}

	var pts []geom.Point
	cur := start
	steps := 0
	for {
		if steps == len(g.Links) {
			return nil, geom.Degenerate("walk", "walk from %s did not close after %d links", start, steps)
		}
		link, ok := g.Out(cur)
		if !ok {
			return nil, geom.Degenerate("walk", "dead end at %s", cur)
		}
		switch link.Kind {
		case LinkCurve:
			pts = append(pts, curves[link.Curve].Points[1:]...)
		case LinkSegment:
			pts = append(pts, geom.LinePoints(g.Get(link.From).Point, g.Get(link.To).Point, dx)[1:]...)
		}
		steps++
		cur = link.To
		if cur == start {
			break
		}
	}
	if steps != len(g.Links) {
		return nil, geom.Degenerate("walk", "boundary splits into several loops: walked %d of %d links", steps, len(g.Links))
	}

	slices.Reverse(pts)
	return &Loop{Points: pts, Graph: g}, nil
}
