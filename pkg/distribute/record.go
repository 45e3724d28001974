package distribute

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chazu/porous/pkg/kernel"
)

// CellTriangle is the only cell type written to handoff files.
const CellTriangle = "triangle"

// Record is the on-disk layout of a handoff file.
type Record struct {
	CellIndices []int64   `msgpack:"cell_indices"`
	Topology    []uint32  `msgpack:"topology"`
	Coordinates []float64 `msgpack:"coordinates"`
	CellType    string    `msgpack:"celltype"`
	Partition   []int64   `msgpack:"partition"` // first cell of each partition
}

// IOError reports a handoff file that could not be written, read or
// removed. It aborts the run.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("distribute: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewRecord lays out mesh as a single-partition record.
func NewRecord(mesh *kernel.Mesh) Record {
	cells := make([]int64, mesh.TriangleCount())
	for i := range cells {
		cells[i] = int64(i)
	}
	return Record{
		CellIndices: cells,
		Topology:    mesh.Indices,
		Coordinates: mesh.Vertices,
		CellType:    CellTriangle,
		Partition:   []int64{0},
	}
}

// Mesh rebuilds the triangle mesh stored in r.
func (r Record) Mesh() (*kernel.Mesh, error) {
	if r.CellType != CellTriangle {
		return nil, fmt.Errorf("unsupported cell type %q", r.CellType)
	}
	if len(r.Topology)%3 != 0 || len(r.Coordinates)%2 != 0 {
		return nil, errors.New("truncated topology or coordinates")
	}
	n := uint32(len(r.Coordinates) / 2)
	for _, v := range r.Topology {
		if v >= n {
			return nil, fmt.Errorf("cell references vertex %d of %d", v, n)
		}
	}
	return &kernel.Mesh{Vertices: r.Coordinates, Indices: r.Topology}, nil
}

// WriteFile encodes mesh into a handoff file at path.
func WriteFile(path string, mesh *kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	if err := msgpack.NewEncoder(f).Encode(NewRecord(mesh)); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// ReadFile decodes the mesh stored at path.
func ReadFile(path string) (*kernel.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var rec Record
	if err := msgpack.NewDecoder(f).Decode(&rec); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	mesh, err := rec.Mesh()
	if err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	return mesh, nil
}

// removeFile deletes path. A file that is already gone is not an error.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}
