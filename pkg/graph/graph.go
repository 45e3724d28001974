package graph

import (
	"fmt"

	"github.com/chazu/porous/pkg/geom"
)

// LinkKind says how the boundary runs between two nodes.
type LinkKind int

const (
	LinkCurve   LinkKind = iota // along an obstacle arc
	LinkSegment                 // straight along one box edge
)

func (k LinkKind) String() string {
	switch k {
	case LinkCurve:
		return "curve"
	case LinkSegment:
		return "segment"
	default:
		return "unknown"
	}
}

// Link is a directed boundary piece between two nodes.
type Link struct {
	Kind  LinkKind
	From  NodeID
	To    NodeID
	Curve int       // curve index for LinkCurve, -1 otherwise
	Edge  geom.Edge // box edge for LinkSegment
}

// BoundaryGraph holds the boundary nodes of one box and their links.
type BoundaryGraph struct {
	Box   geom.Box
	Nodes []*Node
	Links []Link

	out map[NodeID]int
}

// New creates an empty boundary graph for box.
func New(box geom.Box) *BoundaryGraph {
	return &BoundaryGraph{
		Box: box,
		out: make(map[NodeID]int),
	}
}

// Intern snaps p onto the box and returns the node at that point, creating
// it if no existing node lies within geom.SnapTolerance. It fails when the
// snapped point is not on the box boundary.
func (g *BoundaryGraph) Intern(p geom.Point, kind NodeKind) (NodeID, error) {
	p = g.Box.Snap(p)
	for _, n := range g.Nodes {
		if n.Point.Equals(p, geom.SnapTolerance) {
			return n.ID, nil
		}
	}
	pos, ok := g.Box.PerimeterPos(p)
	if !ok {
		return NoNode, geom.Degenerate("stitch", "point (%g, %g) is not on the box boundary", p.X, p.Y)
	}
	n := &Node{
		ID:      NodeID(len(g.Nodes)),
		Kind:    kind,
		Point:   p,
		Edge:    g.Box.EdgeOf(p),
		Pos:     pos,
		StartOf: -1,
		StopOf:  -1,
	}
	g.Nodes = append(g.Nodes, n)
	return n.ID, nil
}

// Get returns the node with the given ID, or nil.
func (g *BoundaryGraph) Get(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[id]
}

// AddLink registers l as the single outgoing link of l.From.
func (g *BoundaryGraph) AddLink(l Link) error {
	if _, exists := g.out[l.From]; exists {
		return geom.Degenerate("stitch", "node %s already has an outgoing link", l.From)
	}
	g.out[l.From] = len(g.Links)
	g.Links = append(g.Links, l)
	return nil
}

// Out returns the outgoing link of id.
func (g *BoundaryGraph) Out(id NodeID) (Link, bool) {
	i, ok := g.out[id]
	if !ok {
		return Link{}, false
	}
	return g.Links[i], true
}

// NodeCount returns the total number of nodes.
func (g *BoundaryGraph) NodeCount() int {
	return len(g.Nodes)
}

// LinksOf returns the links of the given kind in creation order.
func (g *BoundaryGraph) LinksOf(kind LinkKind) []Link {
	var out []Link
	for _, l := range g.Links {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

func (g *BoundaryGraph) String() string {
	return fmt.Sprintf("boundary graph: %d nodes, %d curve links, %d segment links",
		len(g.Nodes), len(g.LinksOf(LinkCurve)), len(g.LinksOf(LinkSegment)))
}
