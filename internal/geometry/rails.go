package geometry

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bladeworks/qloft/internal/blade"
)

// Standard rail seeds: the leading- and trailing-edge ends of the chord
// line in unit-chord coordinates.
var (
	LeadingEdgeSeed  = r2.Vec{X: 0, Y: 0}
	TrailingEdgeSeed = r2.Vec{X: 1, Y: 0}
)

// Rail threads one seed point through every station using the same
// transform as the section profiles, producing an auxiliary curve the
// kernel can use to control loft shape fidelity.
func Rail(stations []blade.Station, seed r2.Vec) blade.Curve3D {
	rail := make(blade.Curve3D, len(stations))
	for i, s := range stations {
		p := transformPoint(seed, s)
		rail[i] = r3.Vec{X: p.X, Y: p.Y, Z: s.Span}
	}
	return rail
}

// Rails derives the default guide rails for a loft: one along the leading
// edge, one along the trailing edge.
func Rails(stations []blade.Station) []blade.Curve3D {
	return []blade.Curve3D{
		Rail(stations, LeadingEdgeSeed),
		Rail(stations, TrailingEdgeSeed),
	}
}
