package parse

import (
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/bladeworks/qloft/internal/blade"
)

// LoadProfile reads an airfoil coordinate file: two numeric columns
// traversing the outline from the trailing edge around the leading edge
// and back (Selig ordering). Header and comment lines are stripped,
// coordinates are normalized to unit chord, and the traversal shape is
// validated. minPoints guards against files too sparse to loft; pass 0
// for the default.
func LoadProfile(path string, minPoints int) (*blade.Profile, error) {
	if minPoints <= 0 {
		minPoints = blade.MinProfilePoints
	}
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	points, err := parseCoordinates(path, lines)
	if err != nil {
		return nil, err
	}
	if len(points) < minPoints {
		return nil, &blade.FileFormatError{
			Path:   path,
			Reason: "airfoil outline has " + strconv.Itoa(len(points)) + " points, need at least " + strconv.Itoa(minPoints),
		}
	}

	normalizeChord(points)
	if err := validateTraversal(path, points); err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &blade.Profile{Name: name, Points: points}, nil
}

// parseCoordinates extracts (x, y) pairs, skipping header and comment
// lines. Airfoil files conventionally open with a free-text name line;
// any non-numeric line before the first coordinate is treated as header,
// but after data starts a non-numeric line is malformed.
func parseCoordinates(path string, lines []string) ([]r2.Vec, error) {
	var points []r2.Vec
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		x, xerr := strconv.ParseFloat(fields[0], 64)
		if len(fields) < 2 || xerr != nil {
			if len(points) == 0 {
				continue // header line
			}
			return nil, malformed(path, i, "expected two numeric columns, got %q", trimmed)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			if len(points) == 0 {
				continue
			}
			return nil, malformed(path, i, "y column is not numeric: %q", fields[1])
		}
		points = append(points, r2.Vec{X: x, Y: y})
	}
	return points, nil
}

// normalizeChord rescales and shifts coordinates so x spans [0, 1]. Files
// already in unit-chord coordinates pass through unchanged apart from
// floating-point noise.
func normalizeChord(points []r2.Vec) {
	xs := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
	}
	minX := floats.Min(xs)
	chord := floats.Max(xs) - minX
	if chord <= 0 {
		return
	}
	for i := range points {
		points[i].X = (points[i].X - minX) / chord
		points[i].Y = points[i].Y / chord
	}
}

// validateTraversal checks the Selig ordering invariant: the outline runs
// from the trailing edge to the leading edge along one surface and back
// along the other. In unit-chord terms x must descend to a single minimum
// and ascend again, starting and ending near x = 1.
func validateTraversal(path string, points []r2.Vec) error {
	const edgeTol = 0.2

	if points[0].X < 1-edgeTol || points[len(points)-1].X < 1-edgeTol {
		return &blade.FileFormatError{
			Path:   path,
			Reason: "airfoil outline must start and end at the trailing edge",
		}
	}

	// Count direction reversals of the x coordinate. A clean perimeter
	// traversal has exactly one, at the leading edge. A small slack
	// absorbs duplicate points from exporters.
	reversals := 0
	dir := 0
	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		if dx == 0 {
			continue
		}
		d := 1
		if dx < 0 {
			d = -1
		}
		if dir != 0 && d != dir {
			reversals++
		}
		dir = d
	}
	if reversals > 1 {
		return &blade.FileFormatError{
			Path:   path,
			Reason: "airfoil outline crosses itself: expected one leading-edge turn, found " + strconv.Itoa(reversals),
		}
	}
	return nil
}
