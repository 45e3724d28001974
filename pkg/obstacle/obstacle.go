// Package obstacle places circular obstacles in a periodic box, applies
// the corner correction shift, and sorts them into interior holes and
// boundary-crossing obstacles with their periodic ghost images.
package obstacle

import "github.com/chazu/porous/pkg/geom"

// DefaultMaxAttempts bounds the rejection sampling per obstacle.
const DefaultMaxAttempts = 100000

// Obstacle is a disk. All obstacles of one run share the same radius.
type Obstacle struct {
	Center geom.Point `json:"center" msgpack:"center"`
	Radius float64    `json:"radius" msgpack:"radius"`
}

// Centers extracts the center of every obstacle.
func Centers(obs []Obstacle) []geom.Point {
	out := make([]geom.Point, len(obs))
	for i, o := range obs {
		out[i] = o.Center
	}
	return out
}
