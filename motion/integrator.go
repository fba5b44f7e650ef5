package motion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/fpslocomotion/common"
)

// GroundedGrace is the window in seconds after leaving the ground during
// which a jump is still accepted.
const GroundedGrace = 0.2

type Config struct {
	Drag       float64
	Gravity    float64
	SlopeForce float64
	JumpSpeed  float64

	// ProjectOnGroundNormal tilts lateral velocity onto the slope plane
	// before the vertical component is added.
	ProjectOnGroundNormal bool
}

func DefaultConfig() Config {
	return Config{
		Drag:       0.1,
		Gravity:    25,
		SlopeForce: 100,
		JumpSpeed:  1,
	}
}

// Integrator holds the kinematic constants shared by every locomotion state.
// It carries no per-frame state; callers own the velocities.
type Integrator struct {
	cfg Config
}

func NewIntegrator(cfg Config) *Integrator {
	return &Integrator{cfg: cfg}
}

func (in *Integrator) Config() Config { return in.cfg }

// SetConfig swaps the constants between frames.
func (in *Integrator) SetConfig(cfg Config) { in.cfg = cfg }

// JumpImpulse is the upward velocity added by a jump.
func (in *Integrator) JumpImpulse() float64 {
	return math.Sqrt(in.cfg.JumpSpeed * 3 * in.cfg.Gravity)
}

// IntegrateLateral accelerates v along the camera-relative input direction,
// applies drag and clamps the result to speed. dt is not used by the
// velocity update itself; the caller scales the returned velocity by dt
// when moving the body.
func (in *Integrator) IntegrateLateral(v mgl64.Vec3, input mgl64.Vec2, camForward, camRight mgl64.Vec3, speed, accel float64) mgl64.Vec3 {
	direction := camRight.Mul(input[0]).Add(camForward.Mul(input[1]))
	v = common.Lateral(v).Add(common.Lateral(direction).Mul(accel))
	return common.ClampMagnitude(in.ApplyDrag(v), speed)
}

// ApplyDrag removes drag from |v|, snapping to zero once v is slower than drag.
func (in *Integrator) ApplyDrag(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() < in.cfg.Drag {
		return mgl64.Vec3{}
	}
	return v.Sub(common.Normalize(v).Mul(in.cfg.Drag))
}

type VerticalInput struct {
	Velocity      float64
	Grounded      bool
	GroundedTimer float64
	JumpRequested bool
	// Airborne is set while the jump or fall state is active; slope force
	// only applies to a body resting on the ground.
	Airborne bool
	DT       float64
}

type VerticalResult struct {
	Velocity        float64
	GroundedTimer   float64
	JumpConsumed    bool
	JumpedThisFrame bool
	// JumpTimer is the grounded timer at the instant the impulse fired.
	JumpTimer float64
}

// IntegrateVertical applies gravity, slope adhesion and the jump impulse.
func (in *Integrator) IntegrateVertical(vi VerticalInput) VerticalResult {
	r := VerticalResult{Velocity: vi.Velocity, GroundedTimer: vi.GroundedTimer}

	if vi.Grounded {
		r.GroundedTimer = GroundedGrace
		if r.Velocity < 0 {
			r.Velocity = 0
		}
	} else if r.GroundedTimer > 0 {
		r.GroundedTimer -= vi.DT
	}

	g := in.cfg.Gravity
	if vi.Grounded && !vi.JumpRequested && !vi.Airborne {
		g += in.cfg.SlopeForce
	}
	r.Velocity -= g * vi.DT

	if vi.JumpRequested && r.GroundedTimer > 0 {
		r.Velocity += in.JumpImpulse()
		r.JumpTimer = r.GroundedTimer
		r.GroundedTimer = 0
		r.JumpConsumed = true
		r.JumpedThisFrame = true
	}
	return r
}

// Compose joins lateral and vertical velocity. With ProjectOnGroundNormal
// set and a usable ground normal, the lateral part follows the slope.
func (in *Integrator) Compose(lateral mgl64.Vec3, vertical float64, grounded bool, normal mgl64.Vec3) mgl64.Vec3 {
	if in.cfg.ProjectOnGroundNormal && grounded && normal.LenSqr() > 0 {
		speed := lateral.Len()
		lateral = common.Normalize(common.ProjectOnPlane(lateral, normal)).Mul(speed)
	}
	return lateral.Add(common.Up.Mul(vertical))
}
