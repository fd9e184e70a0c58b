package blade

import "fmt"

// IOError reports a file that could not be opened or read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FileFormatError reports content that does not match any supported
// schema: an unrecognized layout, a malformed line, or an airfoil file
// with too few points. Line is 1-based; 0 means the file as a whole.
type FileFormatError struct {
	Path   string
	Line   int
	Reason string
}

func (e *FileFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// ValidationError reports a structurally invalid blade definition:
// non-increasing span positions, fewer than two stations, or root
// filtering that would leave fewer than two.
type ValidationError struct {
	Reason string
	Count  int
}

func (e *ValidationError) Error() string { return e.Reason }

// GeometryError reports a failure inside the geometry kernel that the
// pipeline could not recover from: both loft strategies failed, or a
// mass-property query failed during recentering.
type GeometryError struct {
	Reason string
	Err    error
}

func (e *GeometryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *GeometryError) Unwrap() error { return e.Err }
