package mesh

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bladeworks/qloft/internal/blade"
	"github.com/bladeworks/qloft/internal/kernel"
)

// Kernel is an in-process geometry kernel backed by a triangulated
// boundary mesh. It implements the same contract a remote CAD kernel
// would: lofting ordered sections into a closed solid, mass properties by
// signed-tetrahedron decomposition, and rigid translation.
type Kernel struct {
	railTol float64

	mu     sync.Mutex
	solids map[kernel.Handle]*solid
}

type solid struct {
	verts []r3.Vec
	tris  [][3]int
}

// New creates a mesh kernel. railTol is the maximum distance a guide-rail
// point may sit from its section before the rails are reported as
// non-intersecting.
func New(railTol float64) *Kernel {
	return &Kernel{
		railTol: railTol,
		solids:  make(map[kernel.Handle]*solid),
	}
}

// RequestLoft builds a closed solid threading the sections in order. With
// rails present, every rail must carry one point per section and each of
// those points must lie on its section within the rail tolerance.
func (k *Kernel) RequestLoft(ctx context.Context, sections []blade.Curve3D, rails []blade.Curve3D) (kernel.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(sections) < 2 {
		return "", &kernel.Error{Code: kernel.CodeBadInput, Message: fmt.Sprintf("loft needs at least 2 sections, got %d", len(sections))}
	}
	n := len(sections[0])
	if n < 3 {
		return "", &kernel.Error{Code: kernel.CodeBadInput, Message: "sections need at least 3 points"}
	}
	for i, s := range sections {
		if len(s) != n {
			return "", &kernel.Error{Code: kernel.CodeBadInput, Message: fmt.Sprintf("section %d has %d points, expected %d", i, len(s), n)}
		}
	}
	if err := k.checkRails(sections, rails); err != nil {
		return "", err
	}

	sol := triangulate(sections)
	if vol, _ := massProperties(sol); math.Abs(vol) < 1e-12 {
		return "", &kernel.Error{Code: kernel.CodeLoftFailed, Message: "loft produced a degenerate solid with no volume"}
	}

	h := kernel.Handle(uuid.NewString())
	k.mu.Lock()
	k.solids[h] = sol
	k.mu.Unlock()
	return h, nil
}

// QueryMassProperties returns volume and centroid assuming uniform
// density.
func (k *Kernel) QueryMassProperties(ctx context.Context, h kernel.Handle) (kernel.MassProperties, error) {
	if err := ctx.Err(); err != nil {
		return kernel.MassProperties{}, err
	}
	sol, err := k.lookup(h)
	if err != nil {
		return kernel.MassProperties{}, err
	}
	vol, centroid := massProperties(sol)
	return kernel.MassProperties{Volume: math.Abs(vol), Centroid: centroid}, nil
}

// Translate rigidly moves a solid by delta.
func (k *Kernel) Translate(ctx context.Context, h kernel.Handle, delta r3.Vec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sol, err := k.lookup(h)
	if err != nil {
		return err
	}
	k.mu.Lock()
	for i := range sol.verts {
		sol.verts[i] = r3.Add(sol.verts[i], delta)
	}
	k.mu.Unlock()
	return nil
}

// Release frees a solid.
func (k *Kernel) Release(ctx context.Context, h kernel.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.solids[h]; !ok {
		return &kernel.Error{Code: kernel.CodeUnknownHandle, Message: "no solid " + string(h)}
	}
	delete(k.solids, h)
	return nil
}

func (k *Kernel) lookup(h kernel.Handle) (*solid, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	sol, ok := k.solids[h]
	if !ok {
		return nil, &kernel.Error{Code: kernel.CodeUnknownHandle, Message: "no solid " + string(h)}
	}
	return sol, nil
}

// checkRails enforces the guided-loft precondition: each rail threads one
// point per section, sitting on that section's outline.
func (k *Kernel) checkRails(sections []blade.Curve3D, rails []blade.Curve3D) error {
	for ri, rail := range rails {
		if len(rail) != len(sections) {
			return &kernel.Error{
				Code:    kernel.CodeGuideRails,
				Message: fmt.Sprintf("rail %d has %d points for %d sections", ri, len(rail), len(sections)),
			}
		}
		for si, p := range rail {
			if distToCurve(p, sections[si]) > k.railTol {
				return &kernel.Error{
					Code:    kernel.CodeGuideRails,
					Message: fmt.Sprintf("rail %d does not intersect section %d", ri, si),
				}
			}
		}
	}
	return nil
}

// distToCurve is the minimum distance from p to the closed polyline c.
func distToCurve(p r3.Vec, c blade.Curve3D) float64 {
	best := math.Inf(1)
	for i := range c {
		a, b := c[i], c[(i+1)%len(c)]
		if d := distToSegment(p, a, b); d < best {
			best = d
		}
	}
	return best
}

func distToSegment(p, a, b r3.Vec) float64 {
	ab := r3.Sub(b, a)
	ap := r3.Sub(p, a)
	den := r3.Dot(ab, ab)
	t := 0.0
	if den > 0 {
		t = r3.Dot(ap, ab) / den
		t = math.Max(0, math.Min(1, t))
	}
	return r3.Norm(r3.Sub(ap, r3.Scale(t, ab)))
}

// triangulate builds a closed boundary mesh: quad strips between
// consecutive sections split into triangles, and centroid-fan caps over
// the first and last sections.
func triangulate(sections []blade.Curve3D) *solid {
	n := len(sections[0])
	sol := &solid{}

	for _, s := range sections {
		sol.verts = append(sol.verts, s...)
	}

	ring := func(si, pi int) int { return si*n + pi%n }

	for si := 0; si < len(sections)-1; si++ {
		for pi := 0; pi < n; pi++ {
			a, b := ring(si, pi), ring(si, pi+1)
			c, d := ring(si+1, pi), ring(si+1, pi+1)
			sol.tris = append(sol.tris, [3]int{a, b, d}, [3]int{a, d, c})
		}
	}

	capFan(sol, sections[0], 0, n, true)
	capFan(sol, sections[len(sections)-1], (len(sections)-1)*n, n, false)
	return sol
}

// capFan closes one end of the loft with a fan around the section
// centroid. flip controls winding so both caps face outward.
func capFan(sol *solid, section blade.Curve3D, base, n int, flip bool) {
	var c r3.Vec
	for _, p := range section {
		c = r3.Add(c, p)
	}
	c = r3.Scale(1/float64(n), c)
	ci := len(sol.verts)
	sol.verts = append(sol.verts, c)

	for pi := 0; pi < n; pi++ {
		a, b := base+pi, base+(pi+1)%n
		if flip {
			sol.tris = append(sol.tris, [3]int{ci, b, a})
		} else {
			sol.tris = append(sol.tris, [3]int{ci, a, b})
		}
	}
}

// massProperties integrates signed tetrahedron volumes against the
// origin. For a closed mesh the signs cancel so the result is
// orientation-consistent; centroid is the volume-weighted mean of the
// tetrahedron centroids.
func massProperties(sol *solid) (float64, r3.Vec) {
	var vol float64
	var moment r3.Vec
	for _, t := range sol.tris {
		a, b, c := sol.verts[t[0]], sol.verts[t[1]], sol.verts[t[2]]
		v := r3.Dot(a, r3.Cross(b, c)) / 6
		vol += v
		center := r3.Scale(0.25, r3.Add(r3.Add(a, b), c))
		moment = r3.Add(moment, r3.Scale(v, center))
	}
	if vol == 0 {
		return 0, r3.Vec{}
	}
	return vol, r3.Scale(1/vol, moment)
}
