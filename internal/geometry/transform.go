package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bladeworks/qloft/internal/blade"
)

// transformPoint maps one unit-chord profile point into a station's
// cross-section plane. The order is fixed: scale by chord, shift so the
// pitch axis sits at the origin and apply the planar offsets, then rotate
// by twist about that axis. Positive twist rotates the leading edge
// toward increasing angle of attack.
func transformPoint(p r2.Vec, s blade.Station) r2.Vec {
	x := p.X*s.Chord - s.Chord*s.PitchAxis + s.OffsetX
	y := p.Y*s.Chord + s.OffsetY

	rad := s.Twist * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	return r2.Vec{
		X: x*cos - y*sin,
		Y: x*sin + y*cos,
	}
}

// Section transforms the whole profile into a station's plane.
func Section(profile []r2.Vec, s blade.Station) []r2.Vec {
	out := make([]r2.Vec, len(profile))
	for i, p := range profile {
		out[i] = transformPoint(p, s)
	}
	return out
}

// Curve lifts a station's section to 3D at its span position along the
// blade axis.
func Curve(profile []r2.Vec, s blade.Station) blade.Curve3D {
	curve := make(blade.Curve3D, len(profile))
	for i, p := range profile {
		q := transformPoint(p, s)
		curve[i] = r3.Vec{X: q.X, Y: q.Y, Z: s.Span}
	}
	return curve
}

// Build produces one 3D profile curve per station, preserving station
// order, after collapsing near-duplicate consecutive stations: when both
// chord and twist change by less than the epsilons the extra section adds
// nothing to the loft. The first and last stations are always kept.
func Build(profile []r2.Vec, stations []blade.Station, chordEps, twistEps float64) ([]blade.Curve3D, []blade.Station) {
	kept := make([]blade.Station, 0, len(stations))
	prevChord, prevTwist := math.Inf(-1), math.Inf(-1)

	for i, s := range stations {
		last := i == len(stations)-1
		if !last && math.Abs(s.Chord-prevChord) < chordEps && math.Abs(s.Twist-prevTwist) < twistEps {
			continue
		}
		prevChord, prevTwist = s.Chord, s.Twist
		kept = append(kept, s)
	}

	curves := make([]blade.Curve3D, len(kept))
	for i, s := range kept {
		curves[i] = Curve(profile, s)
	}
	return curves, kept
}

// ShiftRoot returns a copy of stations with the root's span position
// subtracted from every span, so the root sits at zero on the blade
// axis, plus the hub offset that was removed. Shifting the stations
// before any curves exist is numerically identical to translating the
// finished solid and keeps the kernel out of the loop.
func ShiftRoot(stations []blade.Station) ([]blade.Station, float64) {
	if len(stations) == 0 {
		return stations, 0
	}
	offset := stations[0].Span
	shifted := make([]blade.Station, len(stations))
	for i, s := range stations {
		s.Span -= offset
		shifted[i] = s
	}
	return shifted, offset
}
