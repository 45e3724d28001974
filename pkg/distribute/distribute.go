// Package distribute hands a finished triangle mesh to a set of worker
// ranks. Rank 0 writes a transient handoff file while the others wait on
// a barrier; every rank then reads the file and builds its own partition,
// and rank 0 removes the file once all ranks are past a second barrier.
package distribute

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/porous/pkg/ctxlog"
	"github.com/chazu/porous/pkg/kernel"
)

// Options configures Distribute.
type Options struct {
	Workers int    // number of ranks, at least 1
	Dir     string // directory for the handoff file; os.TempDir() when empty
}

// Partition is one rank's contiguous block of triangles with local vertex
// numbering.
type Partition struct {
	Rank     int
	Cells    []int     // global triangle indices
	Global   []int     // local vertex index to global vertex index
	Vertices []float64 // local coordinates, 2 per vertex
	Indices  []uint32  // local connectivity, 3 per triangle
}

// TriangleCount returns the number of triangles owned by the partition.
func (p *Partition) TriangleCount() int { return len(p.Cells) }

// Translate shifts every local vertex by (dx, dy) in place.
func (p *Partition) Translate(dx, dy float64) {
	for i := 0; i < len(p.Vertices); i += 2 {
		p.Vertices[i] += dx
		p.Vertices[i+1] += dy
	}
}

// Distributed is the mesh as every rank read it back, with the per-rank
// partitions.
type Distributed struct {
	Mesh       *kernel.Mesh
	Partitions []*Partition
}

// Distribute takes ownership of mesh; the caller must not use it again.
func Distribute(ctx context.Context, mesh *kernel.Mesh, opts Options) (*Distributed, error) {
	if opts.Workers < 1 {
		return nil, errors.New("distribute: at least one worker is required")
	}
	dir := opts.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "porous-"+uuid.NewString()+".msgpack")
	logger := ctxlog.FromContext(ctx)

	written := NewBarrier(opts.Workers)
	read := NewBarrier(opts.Workers)
	parts := make([]*Partition, opts.Workers)
	meshes := make([]*kernel.Mesh, opts.Workers)

	g, gctx := errgroup.WithContext(ctx)
	for rank := 0; rank < opts.Workers; rank++ {
		g.Go(func() error {
			if rank == 0 {
				if err := WriteFile(path, mesh); err != nil {
					return err
				}
				logger.Debug("handoff written", "path", path)
			}
			if err := written.Wait(gctx); err != nil {
				return err
			}
			m, err := ReadFile(path)
			if err != nil {
				return err
			}
			meshes[rank] = m
			parts[rank] = partition(m, rank, opts.Workers)
			if err := read.Wait(gctx); err != nil {
				return err
			}
			if rank == 0 {
				return removeFile(path)
			}
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		// The run is aborted; do not leave the handoff file behind.
		if rmErr := removeFile(path); rmErr != nil {
			logger.Warn("handoff cleanup failed", "error", rmErr)
		}
		return nil, err
	}

	out := meshes[0]
	out.Stats = mesh.Stats
	return &Distributed{Mesh: out, Partitions: parts}, nil
}

// partition extracts rank's block of triangles from m.
func partition(m *kernel.Mesh, rank, ranks int) *Partition {
	n := m.TriangleCount()
	lo, hi := rank*n/ranks, (rank+1)*n/ranks
	p := &Partition{Rank: rank}
	local := make(map[uint32]uint32)
	for t := lo; t < hi; t++ {
		p.Cells = append(p.Cells, t)
		for k := 0; k < 3; k++ {
			v := m.Indices[3*t+k]
			j, ok := local[v]
			if !ok {
				j = uint32(len(p.Global))
				local[v] = j
				p.Global = append(p.Global, int(v))
				x, y := m.Vertex(int(v))
				p.Vertices = append(p.Vertices, x, y)
			}
			p.Indices = append(p.Indices, j)
		}
	}
	return p
}
