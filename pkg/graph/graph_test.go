package graph

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/chazu/porous/pkg/arc"
	"github.com/chazu/porous/pkg/geom"
)

var testBox = geom.CenteredBox(4, 4)

func TestInternDeduplicates(t *testing.T) {
	g := New(testBox)

	a, err := g.Intern(geom.Point{X: -2 + 1e-13, Y: 0.5}, NodeCrossing)
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	b, err := g.Intern(geom.Point{X: -2, Y: 0.5}, NodeCrossing)
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	if a != b {
		t.Errorf("expected the same node, got %s and %s", a, b)
	}
	if g.NodeCount() != 1 {
		t.Errorf("expected 1 node, got %d", g.NodeCount())
	}
	n := g.Get(a)
	if n.Point.X != -2 || n.Edge != geom.EdgeLeft || n.Pos != 2.5 {
		t.Errorf("unexpected node %+v", *n)
	}
	if n.IsStart() || n.IsStop() {
		t.Error("fresh node should not be a curve endpoint")
	}

	if _, err := g.Intern(geom.Point{X: 0, Y: 0}, NodeCrossing); !errors.Is(err, geom.ErrDegenerateGeometry) {
		t.Errorf("expected degenerate geometry error for an interior point, got %v", err)
	}
	if g.Get(NoNode) != nil || g.Get(42) != nil {
		t.Error("Get should return nil for unknown IDs")
	}
	if NoNode.String() != "n<none>" || NodeID(3).String() != "n3" {
		t.Errorf("unexpected NodeID strings %q %q", NoNode, NodeID(3))
	}
}

func TestAddLinkSingleOutgoing(t *testing.T) {
	g := New(testBox)
	l := Link{Kind: LinkSegment, From: 0, To: 1, Curve: -1, Edge: geom.EdgeLeft}
	if err := g.AddLink(l); err != nil {
		t.Fatalf("add link: %v", err)
	}
	if err := g.AddLink(Link{Kind: LinkSegment, From: 0, To: 2, Curve: -1}); err == nil {
		t.Error("expected an error for a second outgoing link")
	}
	got, ok := g.Out(0)
	if !ok || got != l {
		t.Errorf("Out(0) = %+v, %v", got, ok)
	}
	if _, ok := g.Out(1); ok {
		t.Error("node 1 has no outgoing link")
	}
}

func TestBareBox(t *testing.T) {
	loop, err := Stitch(nil, testBox, 0.05)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	g := loop.Graph
	if g.NodeCount() != 4 {
		t.Errorf("expected 4 corner nodes, got %d", g.NodeCount())
	}
	segs := g.LinksOf(LinkSegment)
	if len(segs) != 4 || len(g.LinksOf(LinkCurve)) != 0 {
		t.Fatalf("expected 4 segment links, got %s", g)
	}
	wantEdges := []geom.Edge{geom.EdgeLeft, geom.EdgeTop, geom.EdgeRight, geom.EdgeBottom}
	for i, l := range segs {
		if l.Edge != wantEdges[i] {
			t.Errorf("segment %d on %s, want %s", i, l.Edge, wantEdges[i])
		}
		if g.Get(l.From).Kind != NodeCorner {
			t.Errorf("segment %d does not start at a corner", i)
		}
	}

	if loop.Len() != 4*80 {
		t.Errorf("expected 320 loop points, got %d", loop.Len())
	}
	if a := geom.SignedArea(loop.Points); math.Abs(a-16) > 1e-9 {
		t.Errorf("expected counter-clockwise area 16, got %g", a)
	}
	if r := ValidateLoop(loop.Points, nil); !r.OK() {
		t.Errorf("bare box loop failed validation: %v", r.Errors)
	}
}

// leftCurve returns the single curve of an obstacle poking through the
// left edge of testBox.
func leftCurve(t *testing.T, center geom.Point, rad, dx float64) []arc.Curve {
	t.Helper()
	centers := []geom.Point{center}
	curves, err := arc.BuildCurves(centers, arc.Intersect(centers, rad, testBox), rad, dx)
	if err != nil {
		t.Fatalf("build curves: %v", err)
	}
	if len(curves) != 1 {
		t.Fatalf("expected 1 curve, got %d", len(curves))
	}
	return curves
}

func TestSingleCurve(t *testing.T) {
	const rad, d = 0.25, 0.125
	curves := leftCurve(t, geom.Point{X: -2 + d, Y: 0}, rad, 0.05)

	loop, err := Stitch(curves, testBox, 0.05)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	g := loop.Graph

	// Two crossings plus the four corners, all on the uncovered stretch.
	if g.NodeCount() != 6 {
		t.Errorf("expected 6 nodes, got %d", g.NodeCount())
	}
	if n := len(g.LinksOf(LinkSegment)); n != 5 {
		t.Errorf("expected 5 segment links, got %d", n)
	}
	if n := len(g.LinksOf(LinkCurve)); n != 1 {
		t.Errorf("expected 1 curve link, got %d", n)
	}
	if !strings.Contains(g.String(), "1 curve links, 5 segment links") {
		t.Errorf("unexpected summary %q", g.String())
	}

	// Snapping puts the curve ends exactly on the edge.
	if curves[0].First().X != -2 || curves[0].Last().X != -2 {
		t.Errorf("curve ends not snapped: %v %v", curves[0].First(), curves[0].Last())
	}

	// Box area minus the part of the disk inside the box.
	outside := rad*rad*math.Acos(d/rad) - d*math.Sqrt(rad*rad-d*d)
	want := 16 - (math.Pi*rad*rad - outside)
	if a := geom.SignedArea(loop.Points); math.Abs(a-want) > 0.005 {
		t.Errorf("loop area %g, want about %g", a, want)
	}
	if r := ValidateLoop(loop.Points, nil); !r.OK() {
		t.Errorf("loop failed validation: %v", r.Errors)
	}
}

func TestStitchErrors(t *testing.T) {
	p := func(x, y float64) geom.Point { return geom.Point{X: x, Y: y} }
	tests := []struct {
		name   string
		curves []arc.Curve
		substr string
	}{
		{"one point", []arc.Curve{{Points: []geom.Point{p(-2, 0)}}}, "1 point"},
		{"off the box", []arc.Curve{{Points: []geom.Point{p(-2, 0), p(0, 0)}}}, "not on the box"},
		{"closed curve", []arc.Curve{{Points: []geom.Point{p(-2, 0), p(-1.9, 0.1), p(-2, 0)}}}, "same point"},
		{"shared start", []arc.Curve{
			{Points: []geom.Point{p(-2, 0), p(-2, 1)}},
			{Points: []geom.Point{p(-2, 0), p(-2, -1)}},
		}, "start at the same point"},
		{"shared stop", []arc.Curve{
			{Points: []geom.Point{p(-2, 0), p(-2, 1)}},
			{Points: []geom.Point{p(-2, 0.5), p(-2, 1)}},
		}, "end at the same point"},
		{"interleaved", []arc.Curve{
			{Points: []geom.Point{p(-2, 0), p(-2, 1)}},
			{Points: []geom.Point{p(-2, 0.5), p(-2, 1.5)}},
		}, "do not alternate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Stitch(tt.curves, testBox, 0.1)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, geom.ErrDegenerateGeometry) {
				t.Errorf("expected degenerate geometry, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error %q does not mention %q", err, tt.substr)
			}
		})
	}
}

func TestWalkDetectsSplitBoundary(t *testing.T) {
	// Two curve links that each close on themselves form two loops.
	g := New(testBox)
	ids := make([]NodeID, 4)
	for i, pt := range []geom.Point{{X: -2, Y: 0}, {X: -2, Y: 1}, {X: 2, Y: 0}, {X: 2, Y: 1}} {
		id, err := g.Intern(pt, NodeCrossing)
		if err != nil {
			t.Fatalf("intern: %v", err)
		}
		ids[i] = id
	}
	curves := []arc.Curve{
		{Points: []geom.Point{{X: -2, Y: 0}, {X: -2, Y: 1}}},
		{Points: []geom.Point{{X: -2, Y: 1}, {X: -2, Y: 0}}},
		{Points: []geom.Point{{X: 2, Y: 0}, {X: 2, Y: 1}}},
		{Points: []geom.Point{{X: 2, Y: 1}, {X: 2, Y: 0}}},
	}
	for i, c := range [][2]int{{0, 1}, {1, 0}, {2, 3}, {3, 2}} {
		if err := g.AddLink(Link{Kind: LinkCurve, From: ids[c[0]], To: ids[c[1]], Curve: i}); err != nil {
			t.Fatalf("add link: %v", err)
		}
	}

	_, err := Walk(g, curves, 0.1)
	if err == nil || !strings.Contains(err.Error(), "several loops") {
		t.Errorf("expected a split boundary error, got %v", err)
	}
}

func TestWalkEmptyGraph(t *testing.T) {
	if _, err := Walk(New(testBox), nil, 0.1); !errors.Is(err, geom.ErrDegenerateGeometry) {
		t.Errorf("expected degenerate geometry, got %v", err)
	}
}

func TestWalkDeadEnd(t *testing.T) {
	g := New(testBox)
	a, _ := g.Intern(geom.Point{X: -2, Y: 0}, NodeCrossing)
	b, _ := g.Intern(geom.Point{X: -2, Y: 1}, NodeCrossing)
	c, _ := g.Intern(geom.Point{X: 2, Y: 0}, NodeCrossing)
	curves := []arc.Curve{{Points: []geom.Point{{X: -2, Y: 0}, {X: -2, Y: 1}}}}
	if err := g.AddLink(Link{Kind: LinkCurve, From: a, To: b, Curve: 0}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddLink(Link{Kind: LinkCurve, From: c, To: a, Curve: 0}); err != nil {
		t.Fatal(err)
	}
	_, err := Walk(g, curves, 0.1)
	if err == nil || !strings.Contains(err.Error(), "dead end") {
		t.Errorf("expected a dead end error, got %v", err)
	}
}
