package ground

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/fpslocomotion/common"
)

// Body is the kinematic character body the locomotion core moves.
type Body interface {
	// Move displaces the body by delta, resolving collisions, and returns
	// the velocity the body ended up with.
	Move(delta mgl64.Vec3) mgl64.Vec3
	// IsGrounded reports the body's own contact flag from the last Move.
	IsGrounded() bool
	Velocity() mgl64.Vec3
	Position() mgl64.Vec3
}

// Probe answers geometric queries against walkable layers.
type Probe interface {
	OverlapCapsule(bottom, top mgl64.Vec3, radius float64, layers Layers) bool
	// CastDown returns the surface normal of the first walkable hit within
	// dist below origin.
	CastDown(origin mgl64.Vec3, dist float64, layers Layers) (mgl64.Vec3, bool)
}

// Capsule is the ground-check volume, relative to the body origin.
type Capsule struct {
	Center mgl64.Vec3
	Height float64
	Radius float64
}

type Config struct {
	Capsule  Capsule
	Walkable Layers
	// DetectionHeight is the length of the downward normal cast.
	DetectionHeight float64
}

func DefaultConfig() Config {
	return Config{
		Capsule:         Capsule{Center: mgl64.Vec3{0, 0.05, 0}, Height: 0.3, Radius: 0.3},
		Walkable:        AllLayers,
		DetectionHeight: 0.1,
	}
}

type Sensor struct {
	body  Body
	probe Probe
	cfg   Config
}

func NewSensor(body Body, probe Probe, cfg Config) *Sensor {
	return &Sensor{body: body, probe: probe, cfg: cfg}
}

func (s *Sensor) Config() Config       { return s.cfg }
func (s *Sensor) SetConfig(cfg Config) { s.cfg = cfg }
func (s *Sensor) Body() Body           { return s.body }
func (s *Sensor) SetProbe(probe Probe) { s.probe = probe }

// IsGrounded uses the tolerant capsule overlap while the character is in a
// grounded state and the body's stricter contact flag while airborne.
func (s *Sensor) IsGrounded(inGroundedState bool) bool {
	if !inGroundedState || s.probe == nil {
		return s.body.IsGrounded()
	}
	bottom, top := s.capsuleEnds()
	return s.probe.OverlapCapsule(bottom, top, s.cfg.Capsule.Radius, s.cfg.Walkable)
}

// GroundNormal casts down from the body origin. It reports false when
// nothing walkable is within reach.
func (s *Sensor) GroundNormal() (mgl64.Vec3, bool) {
	if s.probe == nil {
		return common.Up, false
	}
	n, ok := s.probe.CastDown(s.body.Position(), s.cfg.DetectionHeight, s.cfg.Walkable)
	if !ok || n.LenSqr() == 0 {
		return common.Up, false
	}
	return common.Normalize(n), true
}

func (s *Sensor) capsuleEnds() (bottom, top mgl64.Vec3) {
	c := s.body.Position().Add(s.cfg.Capsule.Center)
	half := common.Up.Mul(s.cfg.Capsule.Height * 0.5)
	return c.Sub(half), c.Add(half)
}
