// Package config holds the parameters of one mesh generation run and
// merges them from defaults, configuration files and command-line flags.
package config

import (
	"errors"
	"fmt"
)

// Config is the recognised configuration of a run.
type Config struct {
	Lx           float64 `json:"lx"`
	Ly           float64 `json:"ly"`
	NumObstacles int     `json:"num_obstacles"`
	Rad          float64 `json:"rad"` // obstacle radius used for clipping and holes
	R            float64 `json:"R"`   // exclusion radius used for placement
	Dx           float64 `json:"dx"`
	Seed         uint64  `json:"seed"`
	Show         bool    `json:"show"`
	Verbose      bool    `json:"verbose"`
	MaxAttempts  int     `json:"max_attempts"` // placement attempts per obstacle
	Workers      int     `json:"workers"`
	PlotPath     string  `json:"plot"`
	MinAngle     float64 `json:"min_angle"` // degrees
}

// Defaults returns the parameters of the reference run.
func Defaults() Config {
	return Config{
		Lx:           4,
		Ly:           4,
		NumObstacles: 25,
		Rad:          0.25,
		R:            0.3,
		Dx:           0.05,
		Seed:         123,
		MaxAttempts:  100000,
		Workers:      1,
		PlotPath:     "porous.svg",
		MinAngle:     25,
	}
}

// ValidationError names a field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// Validate reports every invalid field, joined.
func (c Config) Validate() error {
	var errs []error
	bad := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}
	if c.Lx <= 0 {
		bad("lx", "must be positive, got %g", c.Lx)
	}
	if c.Ly <= 0 {
		bad("ly", "must be positive, got %g", c.Ly)
	}
	if c.NumObstacles < 0 {
		bad("obstacles", "must not be negative, got %d", c.NumObstacles)
	}
	if c.Rad <= 0 {
		bad("rad", "must be positive, got %g", c.Rad)
	}
	if c.Lx > 0 && c.Rad >= c.Lx/2 {
		bad("rad", "must be less than lx/2 (%g), got %g", c.Lx/2, c.Rad)
	}
	if c.Ly > 0 && c.Rad >= c.Ly/2 {
		bad("rad", "must be less than ly/2 (%g), got %g", c.Ly/2, c.Rad)
	}
	if c.R <= 0 {
		bad("exclusion", "must be positive, got %g", c.R)
	}
	if c.Dx <= 0 {
		bad("dx", "must be positive, got %g", c.Dx)
	}
	if c.MaxAttempts < 1 {
		bad("max_attempts", "must be at least 1, got %d", c.MaxAttempts)
	}
	if c.Workers < 1 {
		bad("workers", "must be at least 1, got %d", c.Workers)
	}
	if c.MinAngle < 0 || c.MinAngle >= 60 {
		bad("min_angle", "must be in [0, 60), got %g", c.MinAngle)
	}
	return errors.Join(errs...)
}

// Patch is a partial configuration. Nil fields leave the target alone.
type Patch struct {
	Lx           *float64 `hcl:"lx,optional"`
	Ly           *float64 `hcl:"ly,optional"`
	NumObstacles *int     `hcl:"obstacles,optional"`
	Rad          *float64 `hcl:"rad,optional"`
	R            *float64 `hcl:"exclusion,optional"`
	Dx           *float64 `hcl:"dx,optional"`
	Seed         *uint64  `hcl:"seed,optional"`
	Show         *bool    `hcl:"show,optional"`
	Verbose      *bool    `hcl:"verbose,optional"`
	MaxAttempts  *int     `hcl:"max_attempts,optional"`
	Workers      *int     `hcl:"workers,optional"`
	PlotPath     *string  `hcl:"plot,optional"`
	MinAngle     *float64 `hcl:"min_angle,optional"`
}

// Apply overwrites the fields of c that p sets.
func (p Patch) Apply(c *Config) {
	set(&c.Lx, p.Lx)
	set(&c.Ly, p.Ly)
	set(&c.NumObstacles, p.NumObstacles)
	set(&c.Rad, p.Rad)
	set(&c.R, p.R)
	set(&c.Dx, p.Dx)
	set(&c.Seed, p.Seed)
	set(&c.Show, p.Show)
	set(&c.Verbose, p.Verbose)
	set(&c.MaxAttempts, p.MaxAttempts)
	set(&c.Workers, p.Workers)
	set(&c.PlotPath, p.PlotPath)
	set(&c.MinAngle, p.MinAngle)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Merge applies patches to the defaults in order and validates the result.
func Merge(patches ...Patch) (Config, error) {
	c := Defaults()
	for _, p := range patches {
		p.Apply(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
