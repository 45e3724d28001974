// Package kernel defines the abstract triangulation interface the domain
// boundary is handed to. Implementations (delaunay) turn a planar
// straight-line graph with holes into a triangle mesh behind this
// interface, so the backend can be swapped without touching the rest of
// the system.
package kernel

import (
	"context"
	"fmt"

	"github.com/chazu/porous/pkg/geom"
)

// DefaultMinAngle is the minimum triangle angle, in degrees, requested
// from the mesher.
const DefaultMinAngle = 25.0

// MeshInput is a planar straight-line graph: points, the facet edges
// joining them, and one seed point inside every hole.
type MeshInput struct {
	Points []geom.Point `json:"points"`
	Edges  [][2]int     `json:"edges"`
	Holes  []geom.Point `json:"holes"`
}

// Options are the quality constraints passed to the mesher.
type Options struct {
	MaxArea              float64 // largest allowed triangle area
	MinAngle             float64 // smallest allowed angle in degrees
	AllowBoundarySteiner bool    // whether points may be added on facets
}

// DefaultOptions returns the constraints used for target edge length dx:
// max area 0.5*dx^2, min angle 25 degrees, no boundary Steiner points.
func DefaultOptions(dx float64) Options {
	return Options{
		MaxArea:  0.5 * dx * dx,
		MinAngle: DefaultMinAngle,
	}
}

// Mesher is the abstract triangulation interface.
type Mesher interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// Triangulate meshes the region bounded by in.Edges minus the holes.
	Triangulate(ctx context.Context, in MeshInput, opts Options) (*Mesh, error)
}

// TriangulationError wraps a mesher's rejection of its input. It is not
// retried.
type TriangulationError struct {
	Backend string
	Err     error
}

func (e *TriangulationError) Error() string {
	return fmt.Sprintf("triangulation (%s): %v", e.Backend, e.Err)
}

func (e *TriangulationError) Unwrap() error { return e.Err }
