package graph

import (
	"fmt"

	"github.com/chazu/porous/pkg/geom"
)

// ValidationSeverity indicates whether a validation finding blocks meshing
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks meshing
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Index    int                // loop point or hole index, -1 if loop-level
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] #%d: %s", e.Severity, e.Index, e.Message)
}

// ValidationResult bundles errors (blocking) and warnings (advisory).
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking finding was made.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) add(e ValidationError) {
	if e.Severity == SeverityError {
		r.Errors = append(r.Errors, e)
	} else {
		r.Warnings = append(r.Warnings, e)
	}
}

// Hole is an interior obstacle loop together with its seed point.
type Hole struct {
	Seed   geom.Point
	Points []geom.Point
}

// ValidateLoop checks that outer is a simple counter-clockwise loop with
// no repeated consecutive points, and that every hole seed sits strictly
// inside its own hole loop, off the outer loop, and outside every other
// hole. It never mutates its inputs.
func ValidateLoop(outer []geom.Point, holes []Hole) ValidationResult {
	var r ValidationResult
	validateShape(&r, outer)
	if !r.OK() {
		return r
	}
	validateSimple(&r, outer)
	validateHoles(&r, outer, holes)
	return r
}

func validateShape(r *ValidationResult, outer []geom.Point) {
	if len(outer) < 3 {
		r.add(ValidationError{Index: -1, Message: fmt.Sprintf("loop has %d points, need at least 3", len(outer)), Severity: SeverityError})
		return
	}
	for i := range outer {
		j := (i + 1) % len(outer)
		if outer[i].Equals(outer[j], geom.SnapTolerance) {
			r.add(ValidationError{Index: i, Message: fmt.Sprintf("point repeats its successor at (%g, %g)", outer[i].X, outer[i].Y), Severity: SeverityError})
		}
	}
	if a := geom.SignedArea(outer); a <= 0 {
		r.add(ValidationError{Index: -1, Message: fmt.Sprintf("loop is not counter-clockwise (signed area %g)", a), Severity: SeverityError})
	}
}

// validateSimple reports crossings between non-adjacent loop edges.
func validateSimple(r *ValidationResult, outer []geom.Point) {
	n := len(outer)
	for i := 0; i < n; i++ {
		a, b := outer[i], outer[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if geom.SegmentsCross(a, b, outer[j], outer[(j+1)%n]) {
				r.add(ValidationError{Index: i, Message: fmt.Sprintf("edge %d crosses edge %d", i, j), Severity: SeverityError})
				return
			}
		}
	}
}

func validateHoles(r *ValidationResult, outer []geom.Point, holes []Hole) {
	for i, h := range holes {
		if !geom.InPolygon(h.Seed, h.Points) {
			r.add(ValidationError{Index: i, Message: "hole point is not inside its obstacle loop", Severity: SeverityError})
		}
		if geom.PolylineDist(h.Seed, outer) <= geom.SnapTolerance {
			r.add(ValidationError{Index: i, Message: "hole point lies on the outer loop", Severity: SeverityError})
		}
		if !geom.InPolygon(h.Seed, outer) {
			r.add(ValidationError{Index: i, Message: "hole point is outside the region enclosed by the outer loop", Severity: SeverityWarning})
		}
		for j, other := range holes {
			if j != i && geom.InPolygon(h.Seed, other.Points) {
				r.add(ValidationError{Index: i, Message: fmt.Sprintf("hole point is inside hole %d", j), Severity: SeverityError})
			}
		}
	}
}
