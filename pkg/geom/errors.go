package geom

import (
	"errors"
	"fmt"
)

// ErrDegenerateGeometry is matched by every DegenerateGeometryError.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// DegenerateGeometryError reports a construction that cannot yield a
// simple closed boundary: unpaired arc angles, crossings that do not
// alternate along the box, a walk that fails to close, or a hole point
// sitting on the outer loop.
type DegenerateGeometryError struct {
	Stage  string
	Reason string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrDegenerateGeometry, e.Stage, e.Reason)
}

func (e *DegenerateGeometryError) Is(target error) bool {
	return target == ErrDegenerateGeometry
}

// Degenerate builds a DegenerateGeometryError with a formatted reason.
func Degenerate(stage, format string, args ...any) error {
	return &DegenerateGeometryError{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}
