package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/fpslocomotion/ground"
)

type BodyConfig struct {
	Radius     float64
	Height     float64
	StepHeight float64
	// Solid are the layers the body collides with.
	Solid ground.Layers
	// FixedStep is the duration of one Move, used to turn displacement
	// into velocity.
	FixedStep float64
}

func DefaultBodyConfig() BodyConfig {
	return BodyConfig{Radius: 0.3, Height: 1.8, StepHeight: 0.3, Solid: ground.AllLayers, FixedStep: 1.0 / 60}
}

// Body is a kinematic character body standing on World platforms. Its
// position is the centre of its feet. Move slides along walls one axis at a
// time, climbs steps up to StepHeight and lands on surfaces it would pass.
type Body struct {
	world *World
	cfg   BodyConfig

	pos      mgl64.Vec3
	vel      mgl64.Vec3
	grounded bool
}

func NewBody(world *World, cfg BodyConfig, pos mgl64.Vec3) *Body {
	return &Body{world: world, cfg: cfg, pos: pos}
}

func (b *Body) Config() BodyConfig { return b.cfg }

// SetWorld moves the body into a rebuilt world, keeping its position.
func (b *Body) SetWorld(w *World) { b.world = w }

// Teleport places the body without sweeping and clears its velocity.
func (b *Body) Teleport(pos mgl64.Vec3) {
	b.pos = pos
	b.vel = mgl64.Vec3{}
	b.grounded = false
}

func (b *Body) Move(delta mgl64.Vec3) mgl64.Vec3 {
	start := b.pos
	c := b.cfg

	x, z := b.pos.X()+delta.X(), b.pos.Z()+delta.Z()
	if b.world.Blocked(x, z, c.Radius, b.pos.Y(), c.Height, c.StepHeight, c.Solid) {
		switch {
		case !b.world.Blocked(x, b.pos.Z(), c.Radius, b.pos.Y(), c.Height, c.StepHeight, c.Solid):
			z = b.pos.Z()
		case !b.world.Blocked(b.pos.X(), z, c.Radius, b.pos.Y(), c.Height, c.StepHeight, c.Solid):
			x = b.pos.X()
		default:
			x, z = b.pos.X(), b.pos.Z()
		}
	}

	y := b.pos.Y() + delta.Y()
	if delta.Y() > 0 {
		if ceil, ok := b.world.Ceiling(x, z, c.Radius, b.pos.Y()+c.Height, c.Solid); ok && y+c.Height > ceil {
			y = ceil - c.Height
		}
	}

	b.grounded = false
	if floor, ok := b.world.FloorBelow(x, z, c.Radius, b.pos.Y()+c.StepHeight, c.Solid); ok && y <= floor+surfaceEpsilon {
		y = floor
		b.grounded = true
	}

	b.pos = mgl64.Vec3{x, y, z}
	if c.FixedStep > 0 {
		b.vel = b.pos.Sub(start).Mul(1 / c.FixedStep)
	}
	// Landing and step climbs resolve to rest, not to upward speed.
	if b.grounded {
		b.vel[1] = 0
	}
	return b.vel
}

func (b *Body) IsGrounded() bool     { return b.grounded }
func (b *Body) Velocity() mgl64.Vec3 { return b.vel }
func (b *Body) Position() mgl64.Vec3 { return b.pos }

// Below reports whether the feet dropped under y, e.g. off the world.
func (b *Body) Below(y float64) bool { return b.pos.Y() < y || math.IsNaN(b.pos.Y()) }

var _ ground.Body = (*Body)(nil)
