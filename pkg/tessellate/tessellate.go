// Package tessellate assembles the mesher input from the outer boundary
// loop and the interior obstacles, and runs a kernel.Mesher on it. The
// tessellator is read-only and never mutates its inputs.
package tessellate

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/chazu/porous/pkg/ctxlog"
	"github.com/chazu/porous/pkg/geom"
	"github.com/chazu/porous/pkg/graph"
	"github.com/chazu/porous/pkg/kernel"
	"github.com/chazu/porous/pkg/obstacle"
)

// HoleLoops discretises every interior obstacle as a closed circle of
// spacing close to dx, seeded at its center.
func HoleLoops(interior []obstacle.Obstacle, dx float64) []graph.Hole {
	return lo.Map(interior, func(o obstacle.Obstacle, _ int) graph.Hole {
		return graph.Hole{Seed: o.Center, Points: geom.CirclePoints(o.Center, o.Radius, dx)}
	})
}

// RoundTrip returns the edges joining n consecutive points starting at
// offset into a closed loop.
func RoundTrip(offset, n int) [][2]int {
	edges := make([][2]int, n)
	for i := 0; i < n; i++ {
		edges[i] = [2]int{offset + i, offset + (i+1)%n}
	}
	return edges
}

// BuildMeshInput lays out the outer loop first and then one loop per hole,
// each closed with round-trip edges. Holes are seeded at their centers.
func BuildMeshInput(outer []geom.Point, holes []graph.Hole) kernel.MeshInput {
	var in kernel.MeshInput
	add := func(loop []geom.Point) {
		in.Edges = append(in.Edges, RoundTrip(len(in.Points), len(loop))...)
		in.Points = append(in.Points, loop...)
	}
	add(outer)
	for _, h := range holes {
		add(h.Points)
		in.Holes = append(in.Holes, h.Seed)
	}
	return in
}

// Tessellate runs the mesher on in. Total and unique point counts of the
// input and of the returned mesh are logged at info when verbose is set and
// at debug otherwise; they never affect the result.
func Tessellate(ctx context.Context, in kernel.MeshInput, m kernel.Mesher, opts kernel.Options, verbose bool) (*kernel.Mesh, error) {
	logger := ctxlog.FromContext(ctx)
	level := ctxlog.DiagLevel(verbose)

	unique := len(lo.Uniq(in.Points))
	logger.Log(ctx, level, "mesh input",
		"points", len(in.Points),
		"unique", unique,
		"edges", len(in.Edges),
		"holes", len(in.Holes),
		"backend", m.Name(),
	)
	if unique != len(in.Points) {
		logger.Warn("mesh input has duplicate points", "duplicates", len(in.Points)-unique)
	}

	mesh, err := m.Triangulate(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	uniqueVertices := mesh.UniqueVertexCount()
	logger.Log(ctx, level, "mesh",
		"vertices", mesh.VertexCount(),
		"unique_vertices", uniqueVertices,
		"triangles", mesh.TriangleCount(),
		"steiner", mesh.Stats.SteinerCount,
		"min_angle", mesh.Stats.MinAngle,
		"max_area", mesh.Stats.MaxArea,
		"skinny", mesh.Stats.Skinny,
	)
	if uniqueVertices != mesh.VertexCount() {
		logger.Warn("mesh has duplicate vertices", "duplicates", mesh.VertexCount()-uniqueVertices)
	}
	if mesh.Stats.MissingEdges > 0 {
		logger.Warn("mesh is missing constraint edges", "missing", mesh.Stats.MissingEdges)
	}
	return mesh, nil
}
