package graph

import (
	"fmt"

	"github.com/chazu/porous/pkg/geom"
)

// NodeID is assigned in creation order and never reused.
type NodeID int

// NoNode marks a missing node reference.
const NoNode NodeID = -1

func (id NodeID) String() string {
	if id == NoNode {
		return "n<none>"
	}
	return fmt.Sprintf("n%d", int(id))
}

// NodeKind enumerates the types of boundary graph nodes.
type NodeKind int

const (
	NodeCrossing NodeKind = iota // curve endpoint on the box boundary
	NodeCorner                   // box corner on an uncovered stretch
)

func (k NodeKind) String() string {
	switch k {
	case NodeCrossing:
		return "crossing"
	case NodeCorner:
		return "corner"
	default:
		return "unknown"
	}
}

// Node is a point on the box boundary.
type Node struct {
	ID    NodeID
	Kind  NodeKind
	Point geom.Point
	Edge  geom.Edge
	Pos   float64 // clockwise perimeter position from the bottom-left corner

	StartOf int // index of the curve starting here, or -1
	StopOf  int // index of the curve ending here, or -1
}

// IsStart reports whether a curve leaves from this node.
func (n *Node) IsStart() bool { return n.StartOf >= 0 }

// IsStop reports whether a curve arrives at this node.
func (n *Node) IsStop() bool { return n.StopOf >= 0 }
