package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/porous/pkg/config"
)

// ExitError is an error that carries the process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// options is the parsed command line.
type options struct {
	ConfigPath    string
	Flags         config.Patch // only the flags given explicitly
	OutPath       string
	ObstaclesPath string
	UnitSquare    bool
	LogLevel      string
	LogFormat     string
}

// parseArgs processes command-line arguments. It reports shouldExit when
// help was printed and there is nothing to run.
func parseArgs(args []string, output io.Writer) (*options, bool, error) {
	fs := flag.NewFlagSet("porous", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
porous - periodic porous-domain mesh generator.

Usage:
  porous [options] [CONFIG]

Arguments:
  CONFIG
    Optional .hcl file or Lisp script (.zy, .lisp) with run parameters.
    Flags given on the command line override it.

Options:
`)
		fs.PrintDefaults()
	}

	d := config.Defaults()
	lx := fs.Float64("lx", d.Lx, "Box length along x.")
	ly := fs.Float64("ly", d.Ly, "Box length along y.")
	obstacles := fs.Int("obstacles", d.NumObstacles, "Number of obstacles.")
	rad := fs.Float64("rad", d.Rad, "Obstacle radius used for clipping and holes.")
	exclusion := fs.Float64("exclusion", d.R, "Exclusion radius used for placement.")
	dx := fs.Float64("dx", d.Dx, "Target boundary point spacing.")
	seed := fs.Uint64("seed", d.Seed, "Random seed.")
	show := fs.Bool("show", d.Show, "Write a plot of the boundary segments and curves.")
	plotPath := fs.String("plot", d.PlotPath, "Plot file; .dxf writes DXF, anything else SVG.")
	verbose := fs.Bool("verbose", d.Verbose, "Log point-count diagnostics at info level.")
	workers := fs.Int("workers", d.Workers, "Number of mesh distribution ranks.")
	maxAttempts := fs.Int("max-attempts", d.MaxAttempts, "Placement attempts per obstacle.")
	minAngle := fs.Float64("min-angle", d.MinAngle, "Requested minimum triangle angle in degrees.")
	out := fs.String("out", "", "Write the mesh to this msgpack file.")
	obstaclesOut := fs.String("obstacles-out", "", "Write all obstacles (working set and interior) to this msgpack file.")
	unitSquare := fs.Bool("unit-square", false, "Mesh the unit square instead of the porous box.")
	logFormat := fs.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevel := fs.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected at most one config file, got %d arguments", fs.NArg())}
	}

	opts := &options{
		ConfigPath:    fs.Arg(0),
		OutPath:       *out,
		ObstaclesPath: *obstaclesOut,
		UnitSquare:    *unitSquare,
		LogFormat:     strings.ToLower(*logFormat),
		LogLevel:      strings.ToLower(*logLevel),
	}
	if opts.LogFormat != "text" && opts.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	// Only explicit flags override the config file.
	p := &opts.Flags
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lx":
			p.Lx = lx
		case "ly":
			p.Ly = ly
		case "obstacles":
			p.NumObstacles = obstacles
		case "rad":
			p.Rad = rad
		case "exclusion":
			p.R = exclusion
		case "dx":
			p.Dx = dx
		case "seed":
			p.Seed = seed
		case "show":
			p.Show = show
		case "plot":
			p.PlotPath = plotPath
		case "verbose":
			p.Verbose = verbose
		case "workers":
			p.Workers = workers
		case "max-attempts":
			p.MaxAttempts = maxAttempts
		case "min-angle":
			p.MinAngle = minAngle
		}
	})
	return opts, false, nil
}
