package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Simplify reduces a polyline with the Ramer-Douglas-Peucker algorithm:
// points closer than tol to the chord between the segment endpoints are
// dropped, recursively. Endpoints always survive. Used to thin dense
// airfoil outlines before deriving auxiliary geometry; the full outline
// still drives the loft sections.
func Simplify(points []r2.Vec, tol float64) []r2.Vec {
	if len(points) < 3 || tol <= 0 {
		return points
	}

	maxDist, maxIdx := 0.0, 0
	first, last := points[0], points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		if d := perpDistance(points[i], first, last); d > maxDist {
			maxDist, maxIdx = d, i
		}
	}

	if maxDist <= tol {
		return []r2.Vec{first, last}
	}

	left := Simplify(points[:maxIdx+1], tol)
	right := Simplify(points[maxIdx:], tol)
	merged := make([]r2.Vec, 0, len(left)+len(right)-1)
	merged = append(merged, left[:len(left)-1]...)
	return append(merged, right...)
}

// perpDistance is the distance from p to the line through a and b, or to
// a when the segment is degenerate.
func perpDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	length := r2.Norm(ab)
	if length == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	return math.Abs(r2.Cross(ab, r2.Sub(p, a))) / length
}
