package kernel

import (
	"context"
	"errors"
	"testing"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float64
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float64{1, 2}, 1},
		{"four vertices", []float64{0, 0, 1, 0, 1, 1, 0, 1}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshUniqueVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float64
		want     int
	}{
		{"empty", nil, 0},
		{"distinct", []float64{0, 0, 1, 0, 1, 1}, 3},
		{"repeated", []float64{0, 0, 1, 0, 0, 0, 1, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.UniqueVertexCount(); got != tt.want {
				t.Errorf("UniqueVertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float64{1, 2}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func unitSquare() *Mesh {
	return &Mesh{
		Vertices: []float64{0, 0, 1, 0, 1, 1, 0, 1},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestMeshBoundingBoxAndTranslate(t *testing.T) {
	m := unitSquare()
	m.Translate(-0.5, 2)
	min, max := m.BoundingBox()
	if min != [2]float64{-0.5, 2} {
		t.Errorf("min = %v, want [-0.5 2]", min)
	}
	if max != [2]float64{0.5, 3} {
		t.Errorf("max = %v, want [0.5 3]", max)
	}
}

func TestMeshArea(t *testing.T) {
	m := unitSquare()
	if got := m.Area(); got != 1 {
		t.Errorf("Area() = %g, want 1", got)
	}
	for tri := 0; tri < m.TriangleCount(); tri++ {
		if m.TriangleArea(tri) <= 0 {
			t.Errorf("triangle %d is not counter-clockwise", tri)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions(0.1)
	if diff := opts.MaxArea - 0.005; diff > 1e-15 || diff < -1e-15 {
		t.Errorf("MaxArea = %g, want 0.005", opts.MaxArea)
	}
	if opts.MinAngle != 25 {
		t.Errorf("MinAngle = %g, want 25", opts.MinAngle)
	}
	if opts.AllowBoundarySteiner {
		t.Error("boundary Steiner points should be disallowed by default")
	}
}

// --- Compile-time interface check with a stub mesher ---

// stubMesher is a minimal Mesher implementation for testing.
type stubMesher struct {
	err error
}

func (s *stubMesher) Name() string { return "stub" }

func (s *stubMesher) Triangulate(_ context.Context, in MeshInput, _ Options) (*Mesh, error) {
	if s.err != nil {
		return nil, &TriangulationError{Backend: s.Name(), Err: s.err}
	}
	m := &Mesh{}
	for _, p := range in.Points {
		m.Vertices = append(m.Vertices, p.X, p.Y)
	}
	return m, nil
}

var _ Mesher = (*stubMesher)(nil)

func TestTriangulationErrorUnwraps(t *testing.T) {
	cause := errors.New("segments intersect")
	var k Mesher = &stubMesher{err: cause}
	_, err := k.Triangulate(context.Background(), MeshInput{}, DefaultOptions(0.1))
	if !errors.Is(err, cause) {
		t.Fatalf("error %v does not wrap the backend cause", err)
	}
	var te *TriangulationError
	if !errors.As(err, &te) || te.Backend != "stub" {
		t.Fatalf("error %v is not a TriangulationError from the stub", err)
	}
}
