package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/bladeworks/qloft/internal/blade"
)

// DeduceVerticalOffset centers each station vertically on the pitch axis
// when the blade file carries no explicit vertical offsets. At the root
// station's pitch-axis chord fraction it finds the nearest upper- and
// lower-surface profile points, takes their mid-line, and offsets every
// station so that mid-line lands on the rotation axis. Returns a copy;
// parsed station records stay immutable.
func DeduceVerticalOffset(stations []blade.Station, profile []r2.Vec) []blade.Station {
	if len(stations) == 0 {
		return stations
	}

	axis := stations[0].PitchAxis
	upper, upperOK := nearestAtChord(profile, axis, true)
	lower, lowerOK := nearestAtChord(profile, axis, false)
	if !upperOK || !lowerOK {
		return stations
	}

	mid := (upper.Y + lower.Y) / 2
	out := make([]blade.Station, len(stations))
	for i, s := range stations {
		s.OffsetY = -mid * s.Chord
		out[i] = s
	}
	return out
}

// nearestAtChord finds the profile point on the requested surface whose
// chord fraction is closest to x.
func nearestAtChord(profile []r2.Vec, x float64, upper bool) (r2.Vec, bool) {
	best := r2.Vec{}
	bestDist := math.Inf(1)
	found := false
	for _, p := range profile {
		if upper && p.Y <= 0 || !upper && p.Y >= 0 {
			continue
		}
		if d := math.Abs(p.X - x); d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}
