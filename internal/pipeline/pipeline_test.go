package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bladeworks/qloft/internal/blade"
	"github.com/bladeworks/qloft/internal/config"
	"github.com/bladeworks/qloft/internal/kernel"
	"github.com/bladeworks/qloft/internal/kernel/mesh"
	"github.com/bladeworks/qloft/internal/logging"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// airfoilFile builds a synthetic Selig-ordered outline containing exact
// leading- and trailing-edge points so the derived rails land on it.
func airfoilFile(n int) string {
	var b strings.Builder
	b.WriteString("SYNTH airfoil\n")
	for i := 0; i <= n; i++ {
		x := 1 - float64(i)/float64(n)
		fmt.Fprintf(&b, "%.6f %.6f\n", x, 0.10*math.Sin(math.Pi*x))
	}
	for i := 1; i <= n; i++ {
		x := float64(i) / float64(n)
		fmt.Fprintf(&b, "%.6f %.6f\n", x, -0.05*math.Sin(math.Pi*x))
	}
	return b.String()
}

func legacyBlade(stations int) string {
	var b strings.Builder
	b.WriteString("QBlade Blade File v0.963\nexport\nPOS CHORD TWIST OFFSET THREAD\n")
	for i := 0; i < stations; i++ {
		fmt.Fprintf(&b, "%.2f  0.10  0.0  0.00  0.25\n", float64(i)*0.5)
	}
	return b.String()
}

func newPipeline(t *testing.T, kern kernel.Kernel, opts ...Option) *Pipeline {
	t.Helper()
	return New(config.Default(), logging.NewNop(), kern, opts...)
}

func TestRunLegacyBlade(t *testing.T) {
	// Five legacy stations, uniform chord, zero twist.
	blades := writeFile(t, "blade.bld", legacyBlade(5))
	foil := writeFile(t, "foil.dat", airfoilFile(20))

	kern := mesh.New(config.Default().Calibration.RailTolerance)
	var events []Event
	p := newPipeline(t, kern, WithSink(SinkFunc(func(e Event) { events = append(events, e) })))

	res, err := p.Run(context.Background(), Request{
		BladePath:   blades,
		ProfilePath: foil,
		CenterMass:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, blade.FormatLegacy, res.Format)
	assert.Equal(t, "default", res.Airfoil)
	assert.Equal(t, 0, res.Dropped)
	assert.False(t, res.Fallback, "no guide-rail fallback expected")
	assert.Equal(t, Done, p.State())

	// Recentering puts the lateral centroid on the blade axis.
	props, err := kern.QueryMassProperties(context.Background(), res.Handle)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, props.Centroid.X, 1e-6)
	assert.InDelta(t, 0.0, props.Centroid.Y, 1e-6)
	assert.Greater(t, props.Volume, 0.0)

	// Events walk the state machine forward in order.
	var states []State
	for _, e := range events {
		states = append(states, e.State)
	}
	assert.Equal(t, []State{
		FilesSelected, Parsed, Validated, Resolved, Filtered, Built,
		SolidAssembled, PostProcessed,
	}, states)
}

func TestRunZeroRoot(t *testing.T) {
	// Root at 0.8 m: zero-root must shift the whole blade down by 80 cm.
	body := "h\nh\nPOS CHORD TWIST OFFSET THREAD\n" +
		"0.80  0.10  0.0  0.00  0.25\n" +
		"1.30  0.09  0.0  0.00  0.25\n" +
		"1.80  0.08  0.0  0.00  0.25\n"
	blades := writeFile(t, "blade.bld", body)
	foil := writeFile(t, "foil.dat", airfoilFile(20))

	kern := mesh.New(0.01)
	p := newPipeline(t, kern)
	res, err := p.Run(context.Background(), Request{BladePath: blades, ProfilePath: foil, ZeroRoot: true})
	require.NoError(t, err)

	assert.InDelta(t, 80.0, res.HubOffset, 1e-9)
	require.NotEmpty(t, res.Stations)
	assert.InDelta(t, 0.0, res.Stations[0].Span, 1e-9)

	props, err := kern.QueryMassProperties(context.Background(), res.Handle)
	require.NoError(t, err)
	assert.Greater(t, props.Centroid.Z, 0.0)
	assert.Less(t, props.Centroid.Z, 100.0)
}

func TestRunExtendedTieBreak(t *testing.T) {
	// References A and B tie 2-2; A appears first in span order.
	body := `----Blade Definition----
OBJECTNAME tie
----Blade Data----
POS_[m]  CHORD_[m]  TWIST_[deg]  OFFSET_X_[m]  OFFSET_Y_[m]  P_AXIS_[-]  POLAR_FILE
0.00  0.10  0.0  0.00  0.00  0.25  FoilA.plr
0.40  0.10  0.0  0.00  0.00  0.25  FoilB.plr
0.80  0.09  0.0  0.00  0.00  0.25  FoilA.plr
1.20  0.08  0.0  0.00  0.00  0.25  FoilB.plr
1.60  0.07  0.0  0.00  0.00  0.25  FoilC.plr
`
	blades := writeFile(t, "tie.bld", body)
	foil := writeFile(t, "foil.dat", airfoilFile(20))

	p := newPipeline(t, mesh.New(0.01))
	res, err := p.Run(context.Background(), Request{BladePath: blades, ProfilePath: foil})
	require.NoError(t, err)
	assert.Equal(t, "FoilA.plr", res.Airfoil)
	assert.Equal(t, blade.FormatExtended, res.Format)
}

func TestRunCircularRootFiltered(t *testing.T) {
	body := `----Blade Definition----
OBJECTNAME hub
----Blade Data----
POS_[m]  CHORD_[m]  TWIST_[deg]  OFFSET_X_[m]  OFFSET_Y_[m]  P_AXIS_[-]  POLAR_FILE
0.00  0.10  0.0  0.00  0.00  0.25  Circular_1.0.plr
0.40  0.10  5.0  0.00  0.00  0.25  NACA4412.plr
0.80  0.09  3.0  0.00  0.00  0.25  NACA4412.plr
1.20  0.08  1.0  0.00  0.00  0.25  NACA4412.plr
`
	blades := writeFile(t, "hub.bld", body)
	foil := writeFile(t, "foil.dat", airfoilFile(20))

	p := newPipeline(t, mesh.New(0.01))
	res, err := p.Run(context.Background(), Request{BladePath: blades, ProfilePath: foil})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, "NACA4412.plr", res.Airfoil)
	// Surviving sections start past the hub placeholder.
	assert.InDelta(t, 40.0, res.Stations[0].Span, 1e-9)
}

func TestRunSingleStationRejected(t *testing.T) {
	body := "h\nh\nPOS CHORD TWIST OFFSET THREAD\n0.00  0.10  0.0  0.00  0.25\n"
	blades := writeFile(t, "one.bld", body)
	foil := writeFile(t, "foil.dat", airfoilFile(20))

	loftCalls := 0
	kern := &stubKernel{
		loft: func([]blade.Curve3D, []blade.Curve3D) (kernel.Handle, error) {
			loftCalls++
			return "h", nil
		},
	}
	p := newPipeline(t, kern)
	_, err := p.Run(context.Background(), Request{BladePath: blades, ProfilePath: foil})

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StageValidate, serr.Stage)
	var verr *blade.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, loftCalls, "no geometry work after validation failure")
	assert.Equal(t, StateError, p.State())
}

func TestRunMissingFiles(t *testing.T) {
	p := newPipeline(t, mesh.New(0.01))
	_, err := p.Run(context.Background(), Request{})
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StageSelect, serr.Stage)
}

func TestRunIsSingleUse(t *testing.T) {
	blades := writeFile(t, "blade.bld", legacyBlade(3))
	foil := writeFile(t, "foil.dat", airfoilFile(20))

	p := newPipeline(t, mesh.New(0.01))
	_, err := p.Run(context.Background(), Request{BladePath: blades, ProfilePath: foil})
	require.NoError(t, err)

	_, err = p.Run(context.Background(), Request{BladePath: blades, ProfilePath: foil})
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	blades := writeFile(t, "blade.bld", legacyBlade(3))
	foil := writeFile(t, "foil.dat", airfoilFile(20))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newPipeline(t, mesh.New(0.01))
	_, err := p.Run(ctx, Request{BladePath: blades, ProfilePath: foil})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateError, p.State())
}

// stubKernel scripts kernel behavior per test.
type stubKernel struct {
	loft      func(sections, rails []blade.Curve3D) (kernel.Handle, error)
	props     func(kernel.Handle) (kernel.MassProperties, error)
	translate func(kernel.Handle, r3.Vec) error
	released  []kernel.Handle
}

func (s *stubKernel) RequestLoft(_ context.Context, sections, rails []blade.Curve3D) (kernel.Handle, error) {
	return s.loft(sections, rails)
}

func (s *stubKernel) QueryMassProperties(_ context.Context, h kernel.Handle) (kernel.MassProperties, error) {
	if s.props == nil {
		return kernel.MassProperties{Volume: 1}, nil
	}
	return s.props(h)
}

func (s *stubKernel) Translate(_ context.Context, h kernel.Handle, d r3.Vec) error {
	if s.translate == nil {
		return nil
	}
	return s.translate(h, d)
}

func (s *stubKernel) Release(_ context.Context, h kernel.Handle) error {
	s.released = append(s.released, h)
	return nil
}

func TestGuidedLoftFallback(t *testing.T) {
	blades := writeFile(t, "blade.bld", legacyBlade(4))
	foil := writeFile(t, "foil.dat", airfoilFile(20))

	t.Run("Rail failure retries unguided", func(t *testing.T) {
		var guided, unguided int
		kern := &stubKernel{
			loft: func(_, rails []blade.Curve3D) (kernel.Handle, error) {
				if rails != nil {
					guided++
					return "", &kernel.Error{Code: kernel.CodeGuideRails, Message: "rails self-intersect"}
				}
				unguided++
				return "solid-1", nil
			},
		}
		var warnings []Event
		p := newPipeline(t, kern, WithSink(SinkFunc(func(e Event) {
			if e.Level == LevelWarning {
				warnings = append(warnings, e)
			}
		})))

		res, err := p.Run(context.Background(), Request{BladePath: blades, ProfilePath: foil})
		require.NoError(t, err)
		assert.True(t, res.Fallback)
		assert.Equal(t, 1, guided)
		assert.Equal(t, 1, unguided)
		require.Len(t, warnings, 1)
		assert.Equal(t, StageAssemble, warnings[0].Stage)
	})

	t.Run("Both strategies failing is a geometry error", func(t *testing.T) {
		kern := &stubKernel{
			loft: func(_, rails []blade.Curve3D) (kernel.Handle, error) {
				if rails != nil {
					return "", &kernel.Error{Code: kernel.CodeGuideRails, Message: "rails self-intersect"}
				}
				return "", &kernel.Error{Code: kernel.CodeLoftFailed, Message: "sections fold over"}
			},
		}
		p := newPipeline(t, kern)
		_, err := p.Run(context.Background(), Request{BladePath: blades, ProfilePath: foil})

		var serr *Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, StageAssemble, serr.Stage)
		var gerr *blade.GeometryError
		assert.ErrorAs(t, err, &gerr)
	})

	t.Run("Non-rail guided failure does not retry", func(t *testing.T) {
		calls := 0
		kern := &stubKernel{
			loft: func(_, _ []blade.Curve3D) (kernel.Handle, error) {
				calls++
				return "", &kernel.Error{Code: kernel.CodeLoftFailed, Message: "kernel out of memory"}
			},
		}
		p := newPipeline(t, kern)
		_, err := p.Run(context.Background(), Request{BladePath: blades, ProfilePath: foil})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestPostProcessFailureReleasesSolid(t *testing.T) {
	blades := writeFile(t, "blade.bld", legacyBlade(4))
	foil := writeFile(t, "foil.dat", airfoilFile(20))

	kern := &stubKernel{
		loft: func(_, _ []blade.Curve3D) (kernel.Handle, error) { return "solid-9", nil },
		props: func(kernel.Handle) (kernel.MassProperties, error) {
			return kernel.MassProperties{}, &kernel.Error{Code: kernel.CodeLoftFailed, Message: "mass query failed"}
		},
	}
	p := newPipeline(t, kern)
	_, err := p.Run(context.Background(), Request{
		BladePath: blades, ProfilePath: foil, CenterMass: true,
	})

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StagePostProcess, serr.Stage)
	assert.Equal(t, []kernel.Handle{"solid-9"}, kern.released, "partial solid must be rolled back")
}
