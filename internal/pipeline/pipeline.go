package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bladeworks/qloft/internal/blade"
	"github.com/bladeworks/qloft/internal/config"
	"github.com/bladeworks/qloft/internal/geometry"
	"github.com/bladeworks/qloft/internal/kernel"
	"github.com/bladeworks/qloft/internal/logging"
	"github.com/bladeworks/qloft/internal/monitoring"
	"github.com/bladeworks/qloft/internal/parse"
	"github.com/bladeworks/qloft/internal/resolve"
)

// Request carries everything one import run needs. Both toggles default
// off.
type Request struct {
	BladePath   string
	ProfilePath string
	ZeroRoot    bool // translate so the root sits at Z = 0
	CenterMass  bool // translate so the centroid sits on the blade axis
}

// Result is a successful import.
type Result struct {
	Handle    kernel.Handle
	Format    blade.Format
	Airfoil   string          // dominant airfoil reference
	Stations  []blade.Station // stations that produced loft sections, in span order
	Dropped   int             // circular root stations removed
	Fallback  bool            // guided loft fell back to unguided
	HubOffset float64         // span removed by zero-root, cm
}

// Error wraps a stage failure with the stage it happened in.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Pipeline drives one blade import through its stages. Single-threaded,
// single-use: construct, Run once, discard. Cancellation is honored at
// stage boundaries only; kernel calls are opaque and run to completion.
type Pipeline struct {
	cfg     *config.Config
	log     *logging.Logger
	kern    kernel.Kernel
	metrics *monitoring.Metrics
	sink    Sink

	state State
	ran   bool
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithSink routes status events somewhere other than the logger.
func WithSink(s Sink) Option {
	return func(p *Pipeline) { p.sink = s }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a pipeline bound to a kernel.
func New(cfg *config.Config, log *logging.Logger, kern kernel.Kernel, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:   cfg,
		log:   log,
		kern:  kern,
		state: Idle,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sink == nil {
		p.sink = &LogSink{Log: log}
	}
	if p.metrics == nil {
		p.metrics = monitoring.NewNopMetrics()
	}
	return p
}

// State returns the pipeline's current lifecycle state.
func (p *Pipeline) State() State { return p.state }

// Run executes the full import. On failure the returned error is an
// *Error naming the stage; no partial solid ever escapes — a solid
// created before a later failure or cancellation is released first.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if p.ran {
		return nil, &Error{Stage: StageSelect, Err: errors.New("pipeline already ran; construct a new one per import")}
	}
	p.ran = true

	res, err := p.run(ctx, req)
	if err != nil {
		p.state = StateError
		var serr *Error
		if errors.As(err, &serr) {
			p.metrics.RecordStageError(serr.Stage)
		}
		p.metrics.RecordOutcome("error")
		return nil, err
	}
	p.state = Done
	p.metrics.RecordOutcome("done")
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, req Request) (*Result, error) {
	cal := p.cfg.Calibration

	// Select
	if err := p.boundary(ctx, StageSelect); err != nil {
		return nil, err
	}
	if req.BladePath == "" || req.ProfilePath == "" {
		return nil, &Error{Stage: StageSelect, Err: &blade.ValidationError{Reason: "blade and profile file paths are required"}}
	}
	p.advance(StageSelect, FilesSelected, LevelInfo, "files selected")

	// Parse
	if err := p.boundary(ctx, StageParse); err != nil {
		return nil, err
	}
	start := time.Now()
	def, err := parse.ParseBladeFile(req.BladePath)
	if err != nil {
		return nil, &Error{Stage: StageParse, Err: err}
	}
	profile, err := parse.LoadProfile(req.ProfilePath, cal.MinProfilePoints)
	if err != nil {
		return nil, &Error{Stage: StageParse, Err: err}
	}
	p.metrics.ObserveStage(StageParse, start)
	p.metrics.StationsParsed.Observe(float64(len(def.Stations)))
	p.advance(StageParse, Parsed, LevelInfo, fmt.Sprintf("parsed %d stations (%s format), %d profile points",
		len(def.Stations), def.Format, len(profile.Points)))

	// Validate
	if err := p.boundary(ctx, StageValidate); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, &Error{Stage: StageValidate, Err: err}
	}
	p.advance(StageValidate, Validated, LevelInfo, "blade definition valid")

	// Resolve
	if err := p.boundary(ctx, StageResolve); err != nil {
		return nil, err
	}
	dominant, counts := resolve.Dominant(def.Stations)
	if len(counts) > 1 {
		p.advance(StageResolve, Resolved, LevelInfo, fmt.Sprintf(
			"%d airfoil references collapse to %q (used by %d of %d stations)",
			len(counts), dominant, counts[dominant], len(def.Stations)))
	} else {
		p.advance(StageResolve, Resolved, LevelInfo, "single airfoil reference "+refOrDefault(dominant))
	}

	// Filter
	if err := p.boundary(ctx, StageFilter); err != nil {
		return nil, err
	}
	stations := def.Stations
	dropped, clamped := p.filterRoot(stations, dominant, profile.Points)
	stations = stations[dropped:]
	if clamped {
		p.emit(StageFilter, LevelWarning, "root filtering stopped early to keep 2 stations")
	}
	if dropped > 0 {
		p.metrics.StationsFiltered.Add(float64(dropped))
		p.advance(StageFilter, Filtered, LevelInfo, fmt.Sprintf("dropped %d circular root station(s)", dropped))
	} else {
		p.advance(StageFilter, Filtered, LevelInfo, "no circular root stations")
	}

	// Build
	if err := p.boundary(ctx, StageBuild); err != nil {
		return nil, err
	}
	start = time.Now()
	if allZeroVertical(stations) {
		stations = geometry.DeduceVerticalOffset(stations, profile.Points)
	}
	var hubOffset float64
	if req.ZeroRoot {
		stations, hubOffset = geometry.ShiftRoot(stations)
	}
	curves, kept := geometry.Build(profile.Points, stations, cal.ChordEpsilon, cal.TwistEpsilon)
	rails := geometry.Rails(kept)
	p.metrics.ObserveStage(StageBuild, start)
	p.advance(StageBuild, Built, LevelInfo, fmt.Sprintf("built %d section curves and %d guide rails", len(curves), len(rails)))

	// Assemble
	if err := p.boundary(ctx, StageAssemble); err != nil {
		return nil, err
	}
	start = time.Now()
	handle, fallback, err := p.assemble(ctx, curves, rails)
	if err != nil {
		return nil, &Error{Stage: StageAssemble, Err: err}
	}
	p.metrics.ObserveStage(StageAssemble, start)
	p.advance(StageAssemble, SolidAssembled, LevelInfo, "solid assembled")

	// Post-process
	if err := p.boundary(ctx, StagePostProcess); err != nil {
		p.release(handle)
		return nil, err
	}
	if req.CenterMass {
		if err := p.centerMass(ctx, handle); err != nil {
			p.release(handle)
			return nil, &Error{Stage: StagePostProcess, Err: err}
		}
	}
	p.advance(StagePostProcess, PostProcessed, LevelInfo, "post-processing complete")

	return &Result{
		Handle:    handle,
		Format:    def.Format,
		Airfoil:   refOrDefault(dominant),
		Stations:  kept,
		Dropped:   dropped,
		Fallback:  fallback,
		HubOffset: hubOffset,
	}, nil
}

// boundary is the stage boundary: the only place cancellation is
// checked. Kernel calls in flight are never interrupted.
func (p *Pipeline) boundary(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return &Error{Stage: stage, Err: err}
	}
	return nil
}

// advance moves to the next state after a stage succeeds and reports it.
func (p *Pipeline) advance(stage string, next State, level Level, msg string) {
	p.state = next
	p.emit(stage, level, msg)
}

func (p *Pipeline) emit(stage string, level Level, msg string) {
	p.sink.Emit(Event{Stage: stage, State: p.state, Level: level, Message: msg})
}

// filterRoot runs the circular-placeholder scan over the root prefix.
// Stations referencing a circular placeholder are modeled as unit
// circles, everything else as the resolved profile; the geometric test
// then decides. Outlines are thinned first — Ramer-Douglas-Peucker keeps
// a subset of the original points, so radii are preserved.
func (p *Pipeline) filterRoot(stations []blade.Station, dominant string, profile []r2.Vec) (int, bool) {
	cal := p.cfg.Calibration
	thinned := geometry.Simplify(profile, cal.SimplifyTolerance)

	shapes := make([][]r2.Vec, len(stations))
	for i, s := range stations {
		if resolve.IsCircularName(s.Airfoil) && s.Airfoil != dominant {
			shapes[i] = unitCircle(len(thinned))
		} else {
			shapes[i] = thinned
		}
	}
	return resolve.FilterRoot(shapes, cal.RootScanWindow, cal.CircleTolerance)
}

// assemble tries the guided loft first and falls back to unguided on the
// recognized rail-intersection failure. Any other failure, or a failed
// fallback, is final.
func (p *Pipeline) assemble(ctx context.Context, curves, rails []blade.Curve3D) (kernel.Handle, bool, error) {
	handle, err := p.kern.RequestLoft(ctx, curves, rails)
	if err == nil {
		return handle, false, nil
	}
	if !kernel.IsGuideRailFailure(err) {
		return "", false, &blade.GeometryError{Reason: "guided loft failed", Err: err}
	}

	p.metrics.LoftFallbacks.Inc()
	p.emit(StageAssemble, LevelWarning, "guide rails do not intersect all profiles, retrying unguided")
	p.log.Warn("guided loft rejected", zap.Error(err))

	handle, err = p.kern.RequestLoft(ctx, curves, nil)
	if err != nil {
		return "", false, &blade.GeometryError{Reason: "unguided loft failed after guided fallback", Err: err}
	}
	return handle, true, nil
}

// centerMass translates the solid so its centroid lands on the blade
// axis. Only the two lateral axes move; the longitudinal position is
// owned by the zero-root toggle.
func (p *Pipeline) centerMass(ctx context.Context, h kernel.Handle) error {
	props, err := p.kern.QueryMassProperties(ctx, h)
	if err != nil {
		return &blade.GeometryError{Reason: "mass-property query failed", Err: err}
	}
	delta := r3.Vec{X: -props.Centroid.X, Y: -props.Centroid.Y}
	if err := p.kern.Translate(ctx, h, delta); err != nil {
		return &blade.GeometryError{Reason: "recentering translation failed", Err: err}
	}
	return nil
}

// release rolls back a created solid on a late failure so no partial
// result leaks. Best effort: the original error matters more.
func (p *Pipeline) release(h kernel.Handle) {
	if err := p.kern.Release(context.Background(), h); err != nil {
		p.log.Warn("failed to release solid during rollback", zap.Error(err))
	}
}

func allZeroVertical(stations []blade.Station) bool {
	for _, s := range stations {
		if s.OffsetY != 0 {
			return false
		}
	}
	return true
}

func unitCircle(n int) []r2.Vec {
	if n < 8 {
		n = 8
	}
	pts := make([]r2.Vec, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = r2.Vec{X: 0.5 + 0.5*math.Cos(a), Y: 0.5 * math.Sin(a)}
	}
	return pts
}

func refOrDefault(ref string) string {
	if ref == "" {
		return "default"
	}
	return ref
}
