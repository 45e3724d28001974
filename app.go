package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chazu/porous/pkg/config"
	"github.com/chazu/porous/pkg/ctxlog"
	"github.com/chazu/porous/pkg/distribute"
	"github.com/chazu/porous/pkg/engine"
	"github.com/chazu/porous/pkg/kernel"
	"github.com/chazu/porous/pkg/kernel/delaunay"
	"github.com/chazu/porous/pkg/obstacle"
	"github.com/chazu/porous/pkg/pipeline"
)

// App ties the script engine, the configuration sources and the meshing
// pipeline together.
type App struct {
	outW   io.Writer
	engine *engine.Engine
	mesher kernel.Mesher
}

// Summary describes one finished run.
type Summary struct {
	Obstacles  int     `json:"obstacles"`
	Interior   int     `json:"interior"`
	Boundary   int     `json:"boundary"`
	LoopPoints int     `json:"loopPoints"`
	Vertices   int     `json:"vertices"`
	Triangles  int     `json:"triangles"`
	Area       float64 `json:"area"`
	MinAngle   float64 `json:"minAngle"`
	Partitions int     `json:"partitions"`
}

// EvalErrorData is one script or pipeline error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is what Evaluate returns for a script.
type EvalResult struct {
	Config  *config.Config  `json:"config,omitempty"`
	Summary *Summary        `json:"summary,omitempty"`
	Errors  []EvalErrorData `json:"errors"`
}

// NewApp creates an App using the built-in Delaunay mesher.
func NewApp(outW io.Writer) *App {
	return &App{
		outW:   outW,
		engine: engine.NewEngine(),
		mesher: delaunay.New(),
	}
}

// LoadConfig reads a configuration file. .hcl files are decoded as HCL,
// anything else is evaluated as a Lisp script.
func (a *App) LoadConfig(path string) (config.Patch, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return config.LoadHCL(path)
	default:
		return a.engine.EvaluateFile(path)
	}
}

// Evaluate runs a Lisp parameter script on top of the defaults and meshes
// the resulting domain. Script and pipeline failures come back in
// EvalResult.Errors.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	result := EvalResult{Errors: []EvalErrorData{}}
	fail := func(msg string) EvalResult {
		result.Errors = append(result.Errors, EvalErrorData{Message: msg})
		return result
	}

	p, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		ctxlog.FromContext(ctx).Error("script evaluation failed", "error", err)
		return fail(err.Error())
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	cfg, err := config.Merge(*p)
	if err != nil {
		return fail("invalid configuration: " + err.Error())
	}
	result.Config = &cfg

	res, err := pipeline.Method(ctx, cfg, a.mesher)
	if err != nil {
		return fail("mesh generation failed: " + err.Error())
	}
	result.Summary = summarize(res)
	return result
}

// Run meshes the domain described by cfg and writes the requested
// output files.
func (a *App) Run(ctx context.Context, cfg config.Config, opts *options) error {
	logger := ctxlog.FromContext(ctx)

	var (
		res *pipeline.Result
		err error
	)
	if opts.UnitSquare {
		res, err = pipeline.UnitSquareMesh(ctx, cfg.Dx, a.mesher)
	} else {
		res, err = pipeline.Method(ctx, cfg, a.mesher)
	}
	if err != nil {
		return err
	}

	if opts.OutPath != "" {
		if err := distribute.WriteFile(opts.OutPath, res.Mesh); err != nil {
			return err
		}
		logger.Info("mesh written", "path", opts.OutPath)
	}
	if opts.ObstaclesPath != "" {
		if err := writeObstacles(opts.ObstaclesPath, res.AllObstacles); err != nil {
			return err
		}
		logger.Info("obstacles written", "path", opts.ObstaclesPath, "count", len(res.AllObstacles))
	}

	s := summarize(res)
	logger.Info("mesh generated",
		"obstacles", s.Obstacles,
		"interior", s.Interior,
		"boundary", s.Boundary,
		"loop_points", s.LoopPoints,
		"vertices", s.Vertices,
		"triangles", s.Triangles,
		"area", s.Area,
		"min_angle", s.MinAngle,
		"partitions", s.Partitions,
	)
	fmt.Fprintf(a.outW, "%d vertices, %d triangles, area %.6g\n", s.Vertices, s.Triangles, s.Area)
	return nil
}

func summarize(res *pipeline.Result) *Summary {
	return &Summary{
		Obstacles:  len(res.Obstacles),
		Interior:   len(res.Classification.Interior),
		Boundary:   len(res.Classification.Boundary),
		LoopPoints: res.Loop.Len(),
		Vertices:   res.Mesh.VertexCount(),
		Triangles:  res.Mesh.TriangleCount(),
		Area:       res.Mesh.Area(),
		MinAngle:   res.Mesh.Stats.MinAngle,
		Partitions: len(res.Partitions),
	}
}

func writeObstacles(path string, obs []obstacle.Obstacle) error {
	b, err := msgpack.Marshal(obs)
	if err != nil {
		return fmt.Errorf("encode obstacles: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return &distribute.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
