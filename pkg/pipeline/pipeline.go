// Package pipeline runs the full domain construction: obstacle placement,
// corner correction, classification, arc intersection, curve building and
// loop stitching, followed by validation, meshing and distribution.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/chazu/porous/pkg/arc"
	"github.com/chazu/porous/pkg/config"
	"github.com/chazu/porous/pkg/ctxlog"
	"github.com/chazu/porous/pkg/distribute"
	"github.com/chazu/porous/pkg/geom"
	"github.com/chazu/porous/pkg/graph"
	"github.com/chazu/porous/pkg/kernel"
	"github.com/chazu/porous/pkg/kernel/delaunay"
	"github.com/chazu/porous/pkg/kernel/sdfx"
	"github.com/chazu/porous/pkg/obstacle"
	"github.com/chazu/porous/pkg/plot"
	"github.com/chazu/porous/pkg/tessellate"
)

// porositySamples is the grid resolution of the logged porosity estimate.
const porositySamples = 200

// Result is everything one run produced.
type Result struct {
	Config config.Config
	Box    geom.Box

	// Obstacles are the placed obstacles after the corner correction.
	Obstacles []obstacle.Obstacle
	Shift     geom.Point
	Shifted   bool

	Classification *obstacle.Classification
	Curves         []arc.Curve
	Loop           *graph.Loop
	Holes          []graph.Hole
	Input          kernel.MeshInput

	// AllObstacles lists the arc working set (boundary obstacles, then
	// ghosts) followed by the interior obstacles.
	AllObstacles []obstacle.Obstacle

	Mesh       *kernel.Mesh
	Partitions []*distribute.Partition
}

// NewRand returns the generator a run with the given seed uses.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Geometry runs the boundary construction and assembles the mesher input.
// All randomness is drawn from rng. The result has no mesh.
func Geometry(ctx context.Context, cfg config.Config, rng *rand.Rand) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	diag := ctxlog.DiagLevel(cfg.Verbose)
	box := geom.CenteredBox(cfg.Lx, cfg.Ly)
	res := &Result{Config: cfg, Box: box}

	placed, err := obstacle.Place(cfg.NumObstacles, cfg.Lx, cfg.Ly, cfg.R, cfg.Rad, rng, cfg.MaxAttempts)
	if err != nil {
		return nil, err
	}
	res.Obstacles, res.Shift, res.Shifted = obstacle.Correct(placed, box)
	if res.Shifted {
		logger.Info("corner correction applied", "dx", res.Shift.X, "dy", res.Shift.Y)
	}

	res.Classification = obstacle.Classify(res.Obstacles, box)
	working := res.Classification.WorkingSet()
	logger.Log(ctx, diag, "obstacles classified",
		"interior", len(res.Classification.Interior),
		"boundary", len(res.Classification.Boundary),
		"ghosts", len(working)-len(res.Classification.Boundary),
	)

	angles := arc.Intersect(working, cfg.Rad, box)
	res.Curves, err = arc.BuildCurves(working, angles, cfg.Rad, cfg.Dx)
	if err != nil {
		return nil, err
	}

	res.Loop, err = graph.Stitch(res.Curves, box, cfg.Dx)
	if err != nil {
		return nil, err
	}
	logger.Log(ctx, diag, "boundary stitched",
		"curves", len(res.Curves),
		"nodes", res.Loop.Graph.NodeCount(),
		"links", len(res.Loop.Graph.Links),
		"points", res.Loop.Len(),
	)

	res.Holes = tessellate.HoleLoops(res.Classification.Interior, cfg.Dx)
	if err := validate(ctx, res, working); err != nil {
		return nil, err
	}
	res.Input = tessellate.BuildMeshInput(res.Loop.Points, res.Holes)

	for _, c := range working {
		res.AllObstacles = append(res.AllObstacles, obstacle.Obstacle{Center: c, Radius: cfg.Rad})
	}
	res.AllObstacles = append(res.AllObstacles, res.Classification.Interior...)
	return res, nil
}

// validate checks the loop and holes combinatorially and against the
// signed distance model of the fluid domain.
func validate(ctx context.Context, res *Result, working []geom.Point) error {
	logger := ctxlog.FromContext(ctx)

	vr := graph.ValidateLoop(res.Loop.Points, res.Holes)
	for _, w := range vr.Warnings {
		logger.Warn("boundary validation", "finding", w.Error())
	}
	if !vr.OK() {
		msgs := make([]string, len(vr.Errors))
		for i, e := range vr.Errors {
			msgs[i] = e.Error()
		}
		return geom.Degenerate("validate", "%s", strings.Join(msgs, "; "))
	}

	centers := append(append([]geom.Point(nil), working...), obstacle.Centers(res.Classification.Interior)...)
	dom, err := sdfx.NewDomain(res.Box, centers, res.Config.Rad)
	if err != nil {
		return err
	}
	if err := dom.CheckBoundary(res.Loop.Points, sdfx.DefaultTolerance); err != nil {
		return err
	}
	seeds := make([]geom.Point, len(res.Holes))
	for i, h := range res.Holes {
		if err := dom.CheckBoundary(h.Points, sdfx.DefaultTolerance); err != nil {
			return err
		}
		seeds[i] = h.Seed
	}
	if err := dom.CheckSolid(seeds); err != nil {
		return err
	}
	logger.Log(ctx, ctxlog.DiagLevel(res.Config.Verbose), "fluid domain", "porosity", dom.Porosity(porositySamples))
	return nil
}

// Method builds the domain for cfg, meshes it with m (the built-in
// Delaunay backend when m is nil) and distributes the mesh over
// cfg.Workers ranks.
func Method(ctx context.Context, cfg config.Config, m kernel.Mesher) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = delaunay.New()
	}
	logger := ctxlog.FromContext(ctx)

	res, err := Geometry(ctx, cfg, NewRand(cfg.Seed))
	if err != nil {
		return nil, err
	}

	if cfg.Show {
		fig := &plot.Figure{Graph: res.Loop.Graph, Curves: res.Curves, Holes: res.Holes}
		if err := fig.Save(cfg.PlotPath); err != nil {
			logger.Warn("plot failed", "path", cfg.PlotPath, "error", err)
		} else {
			logger.Info("plot written", "path", cfg.PlotPath, "lines", fig.Lines())
		}
	}

	opts := kernel.DefaultOptions(cfg.Dx)
	opts.MinAngle = cfg.MinAngle
	mesh, err := tessellate.Tessellate(ctx, res.Input, m, opts, cfg.Verbose)
	if err != nil {
		return nil, err
	}

	dist, err := distribute.Distribute(ctx, mesh, distribute.Options{Workers: cfg.Workers})
	if err != nil {
		return nil, err
	}
	res.Mesh = dist.Mesh
	res.Partitions = dist.Partitions
	return res, nil
}

// RectangleMesh meshes the obstacle-free box [0, lx] x [0, ly].
func RectangleMesh(ctx context.Context, lx, ly, dx float64, m kernel.Mesher) (*Result, error) {
	cfg := config.Defaults()
	cfg.Lx, cfg.Ly, cfg.Dx = lx, ly, dx
	cfg.NumObstacles = 0
	// The radius plays no part without obstacles; keep it valid for tiny boxes.
	cfg.Rad = math.Min(cfg.Rad, math.Min(lx, ly)/4)
	cfg.R = math.Max(cfg.R, cfg.Rad)

	res, err := Method(ctx, cfg, m)
	if err != nil {
		return nil, fmt.Errorf("rectangle mesh: %w", err)
	}
	res.Mesh.Translate(lx/2, ly/2)
	for _, part := range res.Partitions {
		part.Translate(lx/2, ly/2)
	}
	return res, nil
}

// UnitSquareMesh meshes [0, 1] x [0, 1].
func UnitSquareMesh(ctx context.Context, dx float64, m kernel.Mesher) (*Result, error) {
	return RectangleMesh(ctx, 1, 1, dx, m)
}
