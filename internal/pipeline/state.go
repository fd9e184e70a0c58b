package pipeline

// State is the pipeline's position in the import lifecycle. States only
// ever advance; Done and StateError are terminal.
type State int

const (
	Idle State = iota
	FilesSelected
	Parsed
	Validated
	Resolved
	Filtered
	Built
	SolidAssembled
	PostProcessed
	Done
	StateError
)

var stateNames = map[State]string{
	Idle:           "idle",
	FilesSelected:  "files_selected",
	Parsed:         "parsed",
	Validated:      "validated",
	Resolved:       "resolved",
	Filtered:       "filtered",
	Built:          "built",
	SolidAssembled: "solid_assembled",
	PostProcessed:  "post_processed",
	Done:           "done",
	StateError:     "error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool { return s == Done || s == StateError }

// Stage names used in events, errors and metrics labels.
const (
	StageSelect      = "select"
	StageParse       = "parse"
	StageValidate    = "validate"
	StageResolve     = "resolve"
	StageFilter      = "filter"
	StageBuild       = "build"
	StageAssemble    = "assemble"
	StagePostProcess = "postprocess"
)
