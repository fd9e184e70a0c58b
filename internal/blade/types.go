package blade

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Format identifies which blade-definition schema a file was parsed from.
type Format int

const (
	// FormatLegacy is the fixed-column QBlade v0.963 layout.
	FormatLegacy Format = iota
	// FormatExtended is the QBlade CE v2.x layout with a "Blade Data"
	// header block and extended per-station parameters.
	FormatExtended
)

// String returns a human-readable format name.
func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// Station is one spanwise cross-section of the blade. All lengths are in
// centimeters; source files are authored in meters and converted at parse
// time. Twist is in degrees with the normalized sign convention: positive
// twist rotates the leading edge toward increasing angle of attack,
// regardless of which input format the record came from.
type Station struct {
	Span      float64 // distance along the blade axis from the hub
	Chord     float64 // airfoil reference-line length, > 0
	Twist     float64 // degrees, normalized sign
	OffsetX   float64 // in-plane offset along the chord direction
	OffsetY   float64 // in-plane offset normal to the chord direction
	PitchAxis float64 // chord fraction of the pitch axis, extended format only
	Airfoil   string  // airfoil reference identifier
}

// Definition is an ordered blade description: stations sorted ascending by
// span position. Construct via parse and check with Validate before any
// geometry work.
type Definition struct {
	Format   Format
	Stations []Station
}

// Root returns the station nearest the hub. Callers must have validated
// the definition first.
func (d *Definition) Root() Station { return d.Stations[0] }

// Tip returns the outermost station.
func (d *Definition) Tip() Station { return d.Stations[len(d.Stations)-1] }

// Validate enforces the structural invariants every downstream stage
// assumes: at least two stations, strictly increasing span positions and
// positive chord lengths.
func (d *Definition) Validate() error {
	if len(d.Stations) < 2 {
		return &ValidationError{Reason: "blade needs at least 2 stations", Count: len(d.Stations)}
	}
	prev := d.Stations[0]
	if prev.Chord <= 0 {
		return &ValidationError{Reason: "non-positive chord at root station"}
	}
	for i, s := range d.Stations[1:] {
		if s.Span <= prev.Span {
			return &ValidationError{
				Reason: "span positions must strictly increase",
				Count:  i + 1,
			}
		}
		if s.Chord <= 0 {
			return &ValidationError{Reason: "non-positive chord", Count: i + 1}
		}
		prev = s
	}
	return nil
}

// Profile is a 2D airfoil outline in unit-chord coordinates: x in [0,1] as
// a fraction of chord, y a signed fraction of chord, traversed from the
// trailing edge around the leading edge and back.
type Profile struct {
	Name   string
	Points []r2.Vec
}

// Curve3D is a closed 3D profile curve, one per surviving station, in the
// order handed to the solid assembler.
type Curve3D []r3.Vec

// MinProfilePoints is the default floor on airfoil outline size; below
// this a coordinate file cannot describe a usable section.
const MinProfilePoints = 10
