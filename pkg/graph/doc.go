// Package graph stitches obstacle arcs and box-edge segments into the
// single closed boundary loop of the fluid domain.
//
// The stitching runs over an explicit graph: every curve endpoint, once
// snapped onto the box, becomes a node with a stable integer ID, and each
// node has exactly one outgoing link, either along an obstacle curve or
// straight along a box edge. Walking the links from any curve start
// visits the whole boundary once.
package graph
