package resolve

import (
	"strings"

	"github.com/bladeworks/qloft/internal/blade"
)

// Dominant selects the single airfoil reference that governs the whole
// blade: the most-used non-circular reference across all stations. Ties
// break toward whichever reference appears first in span order, so the
// result is deterministic for a given station list and idempotent across
// reruns.
//
// Collapsing to one shape is a deliberate lossy simplification: the
// importer lofts one airfoil through every station rather than blending
// between shapes.
func Dominant(stations []blade.Station) (string, map[string]int) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, s := range stations {
		ref := s.Airfoil
		if ref == "" || IsCircularName(ref) {
			continue
		}
		if _, ok := counts[ref]; !ok {
			firstSeen[ref] = i
		}
		counts[ref]++
	}

	best := ""
	for ref, n := range counts {
		switch {
		case best == "", n > counts[best]:
			best = ref
		case n == counts[best] && firstSeen[ref] < firstSeen[best]:
			best = ref
		}
	}
	return best, counts
}

// IsCircularName reports whether an airfoil reference names a circular
// hub placeholder rather than a true airfoil. QBlade CE labels these
// "Circular_<diameter>".
func IsCircularName(ref string) bool {
	return strings.Contains(strings.ToLower(ref), "circular")
}
