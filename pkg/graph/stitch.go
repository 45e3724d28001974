package graph

import (
	"slices"

	"github.com/chazu/porous/pkg/arc"
	"github.com/chazu/porous/pkg/geom"
)

// Build snaps the endpoints of every curve onto the box, registers them as
// nodes, and links the boundary together. Curves are modified in place so
// that their first and last points equal their node points exactly.
//
// Walking the box clockwise, each curve start closes an uncovered stretch
// of the box and the matching curve stop opens the next one. Every stop is
// therefore joined to the next node clockwise by straight segments,
// passing through any box corners in between. With no curves at all the
// graph is the bare box: four corners linked clockwise.
func Build(curves []arc.Curve, box geom.Box) (*BoundaryGraph, error) {
	g := New(box)
	if len(curves) == 0 {
		return g, linkBareBox(g)
	}

	for i := range curves {
		c := &curves[i]
		if len(c.Points) < 2 {
			return nil, geom.Degenerate("stitch", "curve %d has %d point(s)", i, len(c.Points))
		}
		startID, err := g.Intern(c.First(), NodeCrossing)
		if err != nil {
			return nil, err
		}
		stopID, err := g.Intern(c.Last(), NodeCrossing)
		if err != nil {
			return nil, err
		}
		if startID == stopID {
			return nil, geom.Degenerate("stitch", "curve %d starts and ends at the same point", i)
		}
		start, stop := g.Get(startID), g.Get(stopID)
		if start.IsStart() {
			return nil, geom.Degenerate("stitch", "curves %d and %d start at the same point", start.StartOf, i)
		}
		if stop.IsStop() {
			return nil, geom.Degenerate("stitch", "curves %d and %d end at the same point", stop.StopOf, i)
		}
		start.StartOf = i
		stop.StopOf = i
		c.Points[0] = start.Point
		c.Points[len(c.Points)-1] = stop.Point

		if err := g.AddLink(Link{Kind: LinkCurve, From: startID, To: stopID, Curve: i, Edge: geom.EdgeNone}); err != nil {
			return nil, err
		}
	}

	crossings := slices.Clone(g.Nodes)
	slices.SortStableFunc(crossings, func(a, b *Node) int {
		switch {
		case a.Pos < b.Pos:
			return -1
		case a.Pos > b.Pos:
			return 1
		}
		return 0
	})

	for i, n := range crossings {
		next := crossings[(i+1)%len(crossings)]
		open := n.IsStop() && !n.IsStart()
		if !open {
			// Covered by an obstacle up to the next crossing, which must
			// be where that obstacle's curve lands.
			if !next.IsStop() {
				return nil, geom.Degenerate("stitch",
					"crossings do not alternate: %s at (%g, %g) is followed by another curve start at (%g, %g)",
					n.ID, n.Point.X, n.Point.Y, next.Point.X, next.Point.Y)
			}
			continue
		}
		if !next.IsStart() || next.IsStop() {
			return nil, geom.Degenerate("stitch",
				"crossings do not alternate: curve end %s at (%g, %g) is followed by another curve end at (%g, %g)",
				n.ID, n.Point.X, n.Point.Y, next.Point.X, next.Point.Y)
		}
		if err := linkAlongBox(g, n, next); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// linkAlongBox chains straight segments from a to b clockwise along the
// box, adding a corner node wherever the stretch turns a corner.
func linkAlongBox(g *BoundaryGraph, a, b *Node) error {
	from := a.ID
	for _, corner := range cornersBetween(g.Box, a.Pos, b.Pos) {
		id, err := g.Intern(corner, NodeCorner)
		if err != nil {
			return err
		}
		if err := addSegment(g, from, id); err != nil {
			return err
		}
		from = id
	}
	return addSegment(g, from, b.ID)
}

func addSegment(g *BoundaryGraph, from, to NodeID) error {
	a, b := g.Get(from), g.Get(to)
	edge := segmentEdge(g.Box, a.Point, b.Point)
	if edge == geom.EdgeNone {
		return geom.Degenerate("stitch", "segment %s -> %s does not follow a box edge", from, to)
	}
	return g.AddLink(Link{Kind: LinkSegment, From: from, To: to, Curve: -1, Edge: edge})
}

func segmentEdge(box geom.Box, a, b geom.Point) geom.Edge {
	switch {
	case a.X == box.XMin && b.X == box.XMin:
		return geom.EdgeLeft
	case a.Y == box.YMax && b.Y == box.YMax:
		return geom.EdgeTop
	case a.X == box.XMax && b.X == box.XMax:
		return geom.EdgeRight
	case a.Y == box.YMin && b.Y == box.YMin:
		return geom.EdgeBottom
	}
	return geom.EdgeNone
}

// cornersBetween returns the box corners strictly inside the clockwise
// stretch from perimeter position a to b, in walking order. When b <= a
// the stretch wraps past the bottom-left corner.
func cornersBetween(box geom.Box, a, b float64) []geom.Point {
	corners := box.Corners()
	pos := box.CornerPositions()
	var out []geom.Point
	if a < b {
		for i := range corners {
			if pos[i] > a && pos[i] < b {
				out = append(out, corners[i])
			}
		}
		return out
	}
	for i := range corners {
		if pos[i] > a {
			out = append(out, corners[i])
		}
	}
	for i := range corners {
		if pos[i] < b {
			out = append(out, corners[i])
		}
	}
	return out
}

func linkBareBox(g *BoundaryGraph) error {
	var ids [4]NodeID
	for i, c := range g.Box.Corners() {
		id, err := g.Intern(c, NodeCorner)
		if err != nil {
			return err
		}
		ids[i] = id
	}
	for i := range ids {
		if err := addSegment(g, ids[i], ids[(i+1)%len(ids)]); err != nil {
			return err
		}
	}
	return nil
}
