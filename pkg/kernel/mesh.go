package kernel

import "math"

// Mesh is a planar triangle mesh.
// All arrays are flat: vertices has 2 floats per vertex (x,y),
// indices has 3 uint32s per counter-clockwise triangle.
type Mesh struct {
	Vertices []float64 `json:"vertices" msgpack:"vertices"` // [x0,y0, x1,y1, ...]
	Indices  []uint32  `json:"indices" msgpack:"indices"`   // [i0,i1,i2, ...] triangles
	Stats    Stats     `json:"stats" msgpack:"stats"`
}

// Stats reports the quality the mesher achieved.
type Stats struct {
	MinAngle     float64 `json:"minAngle" msgpack:"min_angle"`         // degrees
	MaxArea      float64 `json:"maxArea" msgpack:"max_area"`           // largest triangle area
	SteinerCount int     `json:"steinerCount" msgpack:"steiner_count"` // interior points added
	MissingEdges int     `json:"missingEdges" msgpack:"missing_edges"` // input facets absent from the mesh
	Skinny       int     `json:"skinny" msgpack:"skinny"`              // triangles under MinAngle kept because refining them would encroach a facet
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 2
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// UniqueVertexCount returns the number of distinct vertex coordinates.
func (m *Mesh) UniqueVertexCount() int {
	seen := make(map[[2]float64]struct{}, m.VertexCount())
	for i := 0; i < m.VertexCount(); i++ {
		x, y := m.Vertex(i)
		seen[[2]float64{x, y}] = struct{}{}
	}
	return len(seen)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns the coordinates of vertex i.
func (m *Mesh) Vertex(i int) (x, y float64) {
	return m.Vertices[2*i], m.Vertices[2*i+1]
}

// BoundingBox returns the axis-aligned bounding box of the vertices.
func (m *Mesh) BoundingBox() (min, max [2]float64) {
	min = [2]float64{math.Inf(1), math.Inf(1)}
	max = [2]float64{math.Inf(-1), math.Inf(-1)}
	for i := 0; i < m.VertexCount(); i++ {
		x, y := m.Vertex(i)
		min[0], min[1] = math.Min(min[0], x), math.Min(min[1], y)
		max[0], max[1] = math.Max(max[0], x), math.Max(max[1], y)
	}
	return min, max
}

// Translate shifts every vertex by (dx, dy) in place.
func (m *Mesh) Translate(dx, dy float64) {
	for i := 0; i < len(m.Vertices); i += 2 {
		m.Vertices[i] += dx
		m.Vertices[i+1] += dy
	}
}

// Area returns the total area of all triangles.
func (m *Mesh) Area() float64 {
	var a float64
	for t := 0; t < m.TriangleCount(); t++ {
		a += m.TriangleArea(t)
	}
	return a
}

// TriangleArea returns the signed area of triangle t.
func (m *Mesh) TriangleArea(t int) float64 {
	ax, ay := m.Vertex(int(m.Indices[3*t]))
	bx, by := m.Vertex(int(m.Indices[3*t+1]))
	cx, cy := m.Vertex(int(m.Indices[3*t+2]))
	return 0.5 * ((bx-ax)*(cy-ay) - (by-ay)*(cx-ax))
}
