package terrain

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/fpslocomotion/common"
	"github.com/milk9111/fpslocomotion/ground"
	"github.com/milk9111/fpslocomotion/prefabs"
)

var ErrNilSpec = errors.New("terrain: nil spec")

// surfaceEpsilon absorbs float error when comparing heights against a surface.
const surfaceEpsilon = 1e-6

// Platform is a box in world space whose top may be tilted by Normal.
type Platform struct {
	Name   string
	Layer  ground.Layers
	Min    mgl64.Vec3
	Max    mgl64.Vec3
	Normal mgl64.Vec3
	Color  color.Color

	shape *cp.Shape
}

// Sloped reports whether the top is tilted.
func (p *Platform) Sloped() bool {
	return !p.Normal.ApproxEqual(common.Up)
}

// SurfaceAt is the top height above (x, z), clamped to the box. A sloped top
// is the plane through the box centre at mid height.
func (p *Platform) SurfaceAt(x, z float64) float64 {
	if !p.Sloped() {
		return p.Max.Y()
	}
	x = mgl64.Clamp(x, p.Min.X(), p.Max.X())
	z = mgl64.Clamp(z, p.Min.Z(), p.Max.Z())
	c := p.Min.Add(p.Max).Mul(0.5)
	y := c.Y() - (p.Normal.X()*(x-c.X())+p.Normal.Z()*(z-c.Z()))/p.Normal.Y()
	return mgl64.Clamp(y, p.Min.Y(), p.Max.Y())
}

// World indexes platforms in a chipmunk space over the ground (X/Z) plane.
// Each platform is a static box whose shape filter category is its layer, so
// layer masks map directly onto chipmunk query filters.
type World struct {
	space     *cp.Space
	platforms []*Platform
	layers    *ground.LayerTable
}

func NewWorld(layers *ground.LayerTable) *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	return &World{space: space, layers: layers}
}

// Build creates a world from a terrain spec.
func Build(spec *prefabs.TerrainSpec) (*World, error) {
	if spec == nil {
		return nil, ErrNilSpec
	}
	layers, err := ground.NewLayerTable(spec.Layers...)
	if err != nil {
		return nil, fmt.Errorf("terrain: %s: %w", spec.Name, err)
	}
	w := NewWorld(layers)
	for _, ps := range spec.Platforms {
		layerName := ps.Layer
		if layerName == "" {
			layerName = spec.Layers[0]
		}
		layer, err := layers.Mask(layerName)
		if err != nil {
			return nil, fmt.Errorf("terrain: platform %q: %w", ps.Name, err)
		}
		normal := common.Up
		if len(ps.Slope) == 3 {
			normal = common.Normalize(mgl64.Vec3(ps.Slope.Vec()))
			if normal.Y() <= 0 {
				return nil, fmt.Errorf("terrain: platform %q: slope normal must point up", ps.Name)
			}
		}
		var c color.Color = colornames.Gray
		if ps.Color.Color != nil {
			c = ps.Color.Color
		}
		w.Add(&Platform{
			Name:   ps.Name,
			Layer:  layer,
			Min:    mgl64.Vec3(ps.Min.Vec()),
			Max:    mgl64.Vec3(ps.Max.Vec()),
			Normal: normal,
			Color:  c,
		})
	}
	return w, nil
}

// Add registers p as a static box.
func (w *World) Add(p *Platform) {
	if p.Normal.LenSqr() == 0 {
		p.Normal = common.Up
	}
	bb := cp.BB{L: p.Min.X(), B: p.Min.Z(), R: p.Max.X(), T: p.Max.Z()}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, uint(p.Layer), cp.ALL_CATEGORIES))
	shape.UserData = p
	w.space.AddShape(shape)
	p.shape = shape
	w.platforms = append(w.platforms, p)
}

func (w *World) Platforms() []*Platform { return w.platforms }

func (w *World) Layers() *ground.LayerTable { return w.layers }

// query returns the platforms in layers whose footprint touches the square of
// half-size r around (x, z).
func (w *World) query(x, z, r float64, layers ground.Layers) []*Platform {
	var hits []*Platform
	bb := cp.BB{L: x - r, B: z - r, R: x + r, T: z + r}
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, uint(layers))
	w.space.BBQuery(bb, filter, func(shape *cp.Shape, _ interface{}) {
		if p, ok := shape.UserData.(*Platform); ok {
			hits = append(hits, p)
		}
	}, nil)
	return hits
}

// OverlapCapsule tests a vertical capsule against platform volumes.
func (w *World) OverlapCapsule(bottom, top mgl64.Vec3, radius float64, layers ground.Layers) bool {
	lo := math.Min(bottom.Y(), top.Y()) - radius
	hi := math.Max(bottom.Y(), top.Y()) + radius
	for _, p := range w.query(bottom.X(), bottom.Z(), radius, layers) {
		if p.Min.Y() <= hi && p.SurfaceAt(bottom.X(), bottom.Z()) >= lo {
			return true
		}
	}
	return false
}

// CastDown finds the highest walkable surface within dist below origin.
func (w *World) CastDown(origin mgl64.Vec3, dist float64, layers ground.Layers) (mgl64.Vec3, bool) {
	best := math.Inf(-1)
	var normal mgl64.Vec3
	for _, p := range w.query(origin.X(), origin.Z(), surfaceEpsilon, layers) {
		y := p.SurfaceAt(origin.X(), origin.Z())
		if y > origin.Y()+surfaceEpsilon || y < origin.Y()-dist || y <= best {
			continue
		}
		best, normal = y, p.Normal
	}
	return normal, !math.IsInf(best, -1)
}

// FloorBelow returns the highest surface under a footprint of radius r at
// (x, z) that is no higher than maxY.
func (w *World) FloorBelow(x, z, r, maxY float64, layers ground.Layers) (float64, bool) {
	best := math.Inf(-1)
	for _, p := range w.query(x, z, r, layers) {
		y := p.SurfaceAt(x, z)
		if y <= maxY+surfaceEpsilon && y > best {
			best = y
		}
	}
	return best, !math.IsInf(best, -1)
}

// Blocked reports whether a body of radius r standing at feet height y
// would intersect a platform rising more than step above its feet.
func (w *World) Blocked(x, z, r, y, height, step float64, layers ground.Layers) bool {
	for _, p := range w.query(x, z, r, layers) {
		if p.SurfaceAt(x, z) > y+step+surfaceEpsilon && p.Min.Y() < y+height {
			return true
		}
	}
	return false
}

// Ceiling returns the lowest platform underside above a head at headY.
func (w *World) Ceiling(x, z, r, headY float64, layers ground.Layers) (float64, bool) {
	best := math.Inf(1)
	for _, p := range w.query(x, z, r, layers) {
		if p.Min.Y() >= headY-surfaceEpsilon && p.Min.Y() < best {
			best = p.Min.Y()
		}
	}
	return best, !math.IsInf(best, 1)
}

var _ ground.Probe = (*World)(nil)
