// Package plot draws the boundary construction for inspection: the box
// segments and obstacle curves of the boundary graph plus the interior
// hole loops. Plotting only reads its inputs.
package plot

import (
	"path/filepath"
	"strings"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/porous/pkg/arc"
	"github.com/chazu/porous/pkg/geom"
	"github.com/chazu/porous/pkg/graph"
)

// DefaultScale maps one domain unit to drawing units.
const DefaultScale = 100.0

const lineStyle = "fill:none;stroke:black;stroke-width:1"

// drawer is satisfied by the sdfx SVG writer and by dxfDrawer.
type drawer interface {
	Line(p0, p1 v2.Vec)
	Save() error
}

// Figure collects what to draw.
type Figure struct {
	Graph  *graph.BoundaryGraph
	Curves []arc.Curve
	Holes  []graph.Hole
	Scale  float64
}

// Save writes the figure to path. A .dxf extension selects DXF output;
// anything else is written as SVG.
func (f *Figure) Save(path string) error {
	var d drawer
	if strings.EqualFold(filepath.Ext(path), ".dxf") {
		d = dxfDrawer{render.NewDXF(path)}
	} else {
		d = render.NewSVG(path, lineStyle)
	}
	f.draw(d)
	return d.Save()
}

// Lines returns the number of line primitives the figure draws.
func (f *Figure) Lines() int {
	var c counter
	f.draw(&c)
	return int(c)
}

func (f *Figure) draw(d drawer) {
	scale := f.Scale
	if scale == 0 {
		scale = DefaultScale
	}
	// SVG y grows downwards.
	flip := geom.Point{X: scale, Y: -scale}
	vec := func(p geom.Point) v2.Vec { return p.Mul(flip) }

	if f.Graph != nil {
		for _, l := range f.Graph.LinksOf(graph.LinkSegment) {
			d.Line(vec(f.Graph.Get(l.From).Point), vec(f.Graph.Get(l.To).Point))
		}
	}
	for _, c := range f.Curves {
		for i := 1; i < len(c.Points); i++ {
			d.Line(vec(c.Points[i-1]), vec(c.Points[i]))
		}
	}
	for _, h := range f.Holes {
		for i := range h.Points {
			d.Line(vec(h.Points[i]), vec(h.Points[(i+1)%len(h.Points)]))
		}
	}
}

type counter int

func (c *counter) Line(v2.Vec, v2.Vec) { *c++ }
func (c *counter) Save() error        { return nil }

// dxfDrawer adapts the sdfx DXF writer, which takes whole line segments.
type dxfDrawer struct{ dxf *render.DXF }

func (d dxfDrawer) Line(p0, p1 v2.Vec) { d.dxf.Line(&sdf.Line2{p0, p1}) }
func (d dxfDrawer) Save() error        { return d.dxf.Save() }
