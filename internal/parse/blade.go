package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bladeworks/qloft/internal/blade"
)

// Source files are authored in meters; the model works in centimeters.
const metersToCM = 100

// Markers that identify the extended (QBlade CE v2.x) schema. The legacy
// v0.963 format has neither: three free-text header lines followed
// immediately by fixed-column station rows.
const (
	extendedMarker     = "Blade Data"
	extendedColumnHead = "POS_[m]"
)

// Number of header lines preceding station rows in a legacy file.
const legacyHeaderLines = 3

// ParseBladeFile reads and parses a blade-definition file, detecting which
// of the two supported schemas it uses. The returned definition preserves
// file order; run Definition.Validate before doing geometry with it.
func ParseBladeFile(path string) (*blade.Definition, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	return parseBlade(path, lines)
}

func parseBlade(path string, lines []string) (*blade.Definition, error) {
	if start, ok := detectExtended(lines); ok {
		stations, err := parseExtended(path, lines, start)
		if err != nil {
			return nil, err
		}
		return &blade.Definition{Format: blade.FormatExtended, Stations: stations}, nil
	}

	if len(lines) <= legacyHeaderLines {
		return nil, &blade.FileFormatError{Path: path, Reason: "unrecognized blade schema: no station data"}
	}
	stations, err := parseLegacy(path, lines)
	if err != nil {
		return nil, err
	}
	return &blade.Definition{Format: blade.FormatLegacy, Stations: stations}, nil
}

// detectExtended looks for the CE header block and returns the index of
// the first station row.
func detectExtended(lines []string) (int, bool) {
	for i, line := range lines {
		if !strings.Contains(line, extendedMarker) {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], extendedColumnHead) {
				return j + 1, true
			}
		}
		// Marker without a column header is still the CE family, just
		// truncated; report it as such downstream.
		return len(lines), true
	}
	return 0, false
}

// parseLegacy handles the v0.963 layout:
//
//	POS CHORD TWIST OFFSET THREAD
//
// All stations reference one implicit airfoil, so the reference is the
// fixed placeholder "default".
func parseLegacy(path string, lines []string) ([]blade.Station, error) {
	var stations []blade.Station
	for i := legacyHeaderLines; i < len(lines); i++ {
		if skippable(lines[i]) {
			continue
		}
		fields := strings.Fields(lines[i])
		if len(fields) < 5 {
			return nil, malformed(path, i, "expected 5 columns (POS CHORD TWIST OFFSET THREAD), got %d", len(fields))
		}
		vals, err := parseFloats(path, i, fields[:5])
		if err != nil {
			return nil, err
		}
		stations = append(stations, blade.Station{
			Span:      vals[0] * metersToCM,
			Chord:     vals[1] * metersToCM,
			Twist:     vals[2],
			OffsetY:   vals[3] * metersToCM,
			PitchAxis: vals[4],
			Airfoil:   "default",
		})
	}
	if len(stations) == 0 {
		return nil, &blade.FileFormatError{Path: path, Reason: "no station rows found"}
	}
	return stations, nil
}

// parseExtended handles the CE v2.x layout:
//
//	POS CHORD TWIST OFFSET_X OFFSET_Y P_AXIS POLAR_FILE
//
// The station block ends at the first blank line after the rows; CE files
// append further sections (polars, simulation setup) that are not station
// data.
func parseExtended(path string, lines []string, start int) ([]blade.Station, error) {
	var stations []blade.Station
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			if len(stations) > 0 {
				break
			}
			continue
		}
		if separatorRow(trimmed) {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 6 {
			return nil, malformed(path, i, "expected at least 6 columns (POS CHORD TWIST OFFSET_X OFFSET_Y P_AXIS), got %d", len(fields))
		}
		vals, err := parseFloats(path, i, fields[:6])
		if err != nil {
			return nil, err
		}
		s := blade.Station{
			Span:  vals[0] * metersToCM,
			Chord: vals[1] * metersToCM,
			// CE writes twist toward feather; normalize to the legacy
			// nose-up-positive convention used everywhere downstream.
			Twist:     -vals[2],
			OffsetX:   vals[3] * metersToCM,
			OffsetY:   vals[4] * metersToCM,
			PitchAxis: vals[5],
		}
		if len(fields) > 6 {
			s.Airfoil = fields[6]
		}
		stations = append(stations, s)
	}
	if len(stations) == 0 {
		return nil, &blade.FileFormatError{Path: path, Reason: "no station rows found after Blade Data header"}
	}
	return stations, nil
}

// skippable reports whether a line carries no station data: blank lines
// and the dashed separator rows some exporters emit.
func skippable(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || separatorRow(trimmed)
}

// separatorRow matches ruler lines like "----------". A leading minus on
// a numeric row does not qualify.
func separatorRow(trimmed string) bool {
	return trimmed != "" && strings.Trim(trimmed, "- ") == ""
}

func parseFloats(path string, line int, fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, malformed(path, line, "column %d is not numeric: %q", i+1, f)
		}
		vals[i] = v
	}
	return vals, nil
}

func malformed(path string, lineIdx int, format string, args ...interface{}) error {
	return &blade.FileFormatError{
		Path:   path,
		Line:   lineIdx + 1,
		Reason: fmt.Sprintf(format, args...),
	}
}
