package config

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// LoadHCL decodes the attributes of an HCL configuration file:
//
//	lx        = 4
//	obstacles = 25
//	rad       = 0.25
//	exclusion = 0.3
//	dx        = 0.05
//	seed      = 123
//
// Expressions may refer to pi and to the built-in defaults, as in
// dx = defaults.dx / 2.
func LoadHCL(path string) (Patch, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return Patch{}, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(path, file.Body)
}

// ParseHCL decodes HCL source held in memory. filename is used in
// diagnostics only.
func ParseHCL(src []byte, filename string) (Patch, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return Patch{}, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(filename, file.Body)
}

func decode(filename string, body hcl.Body) (Patch, error) {
	var p Patch
	if diags := gohcl.DecodeBody(body, evalContext(), &p); diags.HasErrors() {
		return Patch{}, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	return p, nil
}

// evalContext exposes pi and the defaults to configuration expressions.
func evalContext() *hcl.EvalContext {
	d := Defaults()
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"pi": cty.NumberFloatVal(math.Pi),
			"defaults": cty.ObjectVal(map[string]cty.Value{
				"lx":           cty.NumberFloatVal(d.Lx),
				"ly":           cty.NumberFloatVal(d.Ly),
				"obstacles":    cty.NumberIntVal(int64(d.NumObstacles)),
				"rad":          cty.NumberFloatVal(d.Rad),
				"exclusion":    cty.NumberFloatVal(d.R),
				"dx":           cty.NumberFloatVal(d.Dx),
				"seed":         cty.NumberUIntVal(d.Seed),
				"show":         cty.BoolVal(d.Show),
				"verbose":      cty.BoolVal(d.Verbose),
				"max_attempts": cty.NumberIntVal(int64(d.MaxAttempts)),
				"workers":      cty.NumberIntVal(int64(d.Workers)),
				"plot":         cty.StringVal(d.PlotPath),
				"min_angle":    cty.NumberFloatVal(d.MinAngle),
			}),
		},
	}
}
