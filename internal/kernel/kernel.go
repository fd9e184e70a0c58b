package kernel

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bladeworks/qloft/internal/blade"
)

// Handle identifies a solid body owned by the kernel. The importer never
// sees the body's internal representation, only this reference.
type Handle string

// MassProperties are the kernel-computed bulk properties of a solid,
// assuming uniform density.
type MassProperties struct {
	Volume   float64
	Centroid r3.Vec
}

// Kernel is the narrow synchronous boundary to an external geometry
// kernel. Calls may block arbitrarily long; the pipeline never invokes
// them concurrently and checks cancellation only between calls.
type Kernel interface {
	// RequestLoft threads an ordered sequence of at least two closed 3D
	// profile curves into a solid. A nil rails slice requests an unguided
	// loft; otherwise the rails constrain the surface between sections
	// and must intersect every profile.
	RequestLoft(ctx context.Context, sections []blade.Curve3D, rails []blade.Curve3D) (Handle, error)

	// QueryMassProperties returns volume and centroid of a solid.
	QueryMassProperties(ctx context.Context, h Handle) (MassProperties, error)

	// Translate rigidly moves a solid by delta.
	Translate(ctx context.Context, h Handle, delta r3.Vec) error

	// Release frees a solid. Callers roll back partially created
	// geometry with this on cancellation.
	Release(ctx context.Context, h Handle) error
}

// Code classifies kernel failures so callers can tell recoverable ones
// apart from fatal ones.
type Code int

const (
	// CodeLoftFailed: the loft operation itself failed.
	CodeLoftFailed Code = iota
	// CodeGuideRails: the supplied guide rails do not intersect all
	// profiles. Recognized by the assembler as the cue to retry unguided.
	CodeGuideRails
	// CodeBadInput: sections are unusable (too few, mismatched sizes).
	CodeBadInput
	// CodeUnknownHandle: the handle does not name a live solid.
	CodeUnknownHandle
)

// Error is a kernel-reported failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("kernel: %s", e.Message) }

// IsGuideRailFailure reports whether err is the recognized rail
// intersection failure that permits the unguided fallback.
func IsGuideRailFailure(err error) bool {
	var kerr *Error
	return errors.As(err, &kerr) && kerr.Code == CodeGuideRails
}
