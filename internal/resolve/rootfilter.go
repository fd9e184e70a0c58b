package resolve

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// IsCircle reports whether a 2D section is a degenerate circular
// placeholder: every point-to-centroid radius within a relative tolerance
// of the mean radius. A true airfoil fails this immediately because its
// chordwise extent dwarfs its thickness.
func IsCircle(points []r2.Vec, tol float64) bool {
	if len(points) < 3 {
		return false
	}

	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(points))
	cy /= float64(len(points))

	radii := make([]float64, len(points))
	for i, p := range points {
		radii[i] = r2.Norm(r2.Vec{X: p.X - cx, Y: p.Y - cy})
	}

	mean := stat.Mean(radii, nil)
	if mean == 0 {
		return false
	}
	for _, r := range radii {
		if dev := (r - mean) / mean; dev > tol || dev < -tol {
			return false
		}
	}
	return true
}

// FilterRoot scans a bounded prefix of section shapes from the root
// outward and returns how many leading stations to drop as circular
// placeholders. Circular sections are a hub-transition artifact, so the
// scan stops at the first non-circular shape and never looks past window
// stations.
//
// Dropping never reduces the surviving count below two: when it would,
// the drop count is clamped and clamped=true tells the caller to log a
// warning instead of failing.
func FilterRoot(shapes [][]r2.Vec, window int, tol float64) (drop int, clamped bool) {
	if window > len(shapes) {
		window = len(shapes)
	}
	for i := 0; i < window; i++ {
		if !IsCircle(shapes[i], tol) {
			break
		}
		drop++
	}

	if max := len(shapes) - 2; drop > max {
		if max < 0 {
			max = 0
		}
		return max, true
	}
	return drop, false
}
