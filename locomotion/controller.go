package locomotion

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/fpslocomotion/animation"
	"github.com/milk9111/fpslocomotion/common"
	"github.com/milk9111/fpslocomotion/ground"
	"github.com/milk9111/fpslocomotion/input"
	"github.com/milk9111/fpslocomotion/logger"
	"github.com/milk9111/fpslocomotion/motion"
	"github.com/milk9111/fpslocomotion/orientation"
	"github.com/milk9111/fpslocomotion/script"
	"github.com/milk9111/fpslocomotion/statemachine"
)

var ErrNoBody = errors.New("locomotion: body is required")

// Deps are the collaborators a Controller is built from. Only Body is
// required: a nil Probe grounds on the body's contact flag, a nil Sink
// discards animation writes and a nil Tuning uses DefaultTuning.
type Deps struct {
	Body   ground.Body
	Probe  ground.Probe
	Sink   animation.Sink
	Guards *script.Set
	Tuning *Tuning
	Logger *slog.Logger
}

// Pose is the transform output of the late phase. Angles are in degrees.
type Pose struct {
	Position    mgl64.Vec3
	BodyYaw     float64
	CameraYaw   float64
	CameraPitch float64
	Body        mgl64.Quat
	Camera      mgl64.Quat
}

// Controller owns the locomotion state machine and runs the per-frame
// phases around it. It implements input.Receiver.
type Controller struct {
	ctx    Context
	tuning Tuning
	env    *shared

	machine *statemachine.Machine
	blender *orientation.Blender
	driver  *animation.Driver
	log     *slog.Logger
}

var _ input.Receiver = (*Controller)(nil)

func New(deps Deps) (*Controller, error) {
	if deps.Body == nil {
		return nil, ErrNoBody
	}

	c := &Controller{tuning: DefaultTuning(), log: deps.Logger}
	if deps.Tuning != nil {
		c.tuning = *deps.Tuning
	}
	if c.log == nil {
		c.log = logger.For("locomotion")
	}
	sink := deps.Sink
	if sink == nil {
		sink = animation.Discard{}
	}

	c.ctx.GroundNormal = common.Up
	c.env = &shared{
		ctx:        &c.ctx,
		tuning:     &c.tuning,
		integrator: motion.NewIntegrator(c.tuning.Motion),
		sensor:     ground.NewSensor(deps.Body, deps.Probe, c.tuning.Ground),
		sink:       sink,
		guards:     deps.Guards,
	}
	c.blender = orientation.NewBlender(c.tuning.Orientation)
	c.driver = animation.NewDriver(c.tuning.AnimationBlendSpeed)

	c.machine = statemachine.New(statemachine.WithLogger(c.log))
	if err := c.machine.RegisterInitial(&idleState{newBase(c.env, IdleID, KindGrounded, animation.IsIdling)}); err != nil {
		return nil, fmt.Errorf("locomotion: register: %w", err)
	}
	inactive := []statemachine.State{
		&walkState{newBase(c.env, WalkID, KindGrounded, animation.IsWalking)},
		&runState{newBase(c.env, RunID, KindGrounded, animation.IsRunning)},
		&sprintState{newBase(c.env, SprintID, KindGrounded, animation.IsSprinting)},
		&jumpState{newBase(c.env, JumpID, KindAirborne, animation.IsJumping)},
		&fallState{newBase(c.env, FallID, KindAirborne, animation.IsFalling)},
	}
	for _, s := range inactive {
		if err := c.machine.RegisterInactive(s); err != nil {
			return nil, fmt.Errorf("locomotion: register: %w", err)
		}
	}
	// Guards and reclassification look these up by id at runtime.
	if err := c.machine.Require(IdleID, WalkID, RunID, SprintID, JumpID, FallID); err != nil {
		return nil, fmt.Errorf("locomotion: %w", err)
	}
	if err := c.machine.Start(); err != nil {
		return nil, fmt.Errorf("locomotion: start: %w", err)
	}
	return c, nil
}

// Update runs the variable-rate phase: walk steering, grounding,
// jump/fall reclassification, then the active states.
func (c *Controller) Update(dt float64) {
	c.steerWalk()

	// Grounded-class states probe with the tolerant capsule; this reads the
	// states left by the previous frame.
	c.ctx.Grounded = c.env.sensor.IsGrounded(c.machine.IsActiveOrSubtype(KindGrounded))

	c.reclassify()
	c.fallBackToIdle()
	c.machine.Update(dt)
}

// FixedUpdate integrates vertical motion, moves the body and runs the
// active states' fixed hooks.
func (c *Controller) FixedUpdate(dt float64) {
	ctx := &c.ctx
	r := c.env.integrator.IntegrateVertical(motion.VerticalInput{
		Velocity:      ctx.VerticalVelocity,
		Grounded:      ctx.Grounded,
		GroundedTimer: ctx.GroundedTimer,
		JumpRequested: ctx.JumpRequested,
		Airborne:      c.machine.IsActiveOrSubtype(KindAirborne),
		DT:            dt,
	})
	ctx.VerticalVelocity = r.Velocity
	if r.JumpedThisFrame {
		ctx.GroundedTimer = r.JumpTimer
		c.takeOff()
		ctx.JumpRequested = false
		ctx.JumpedLastFrame = true
		// Catch-up steps before the next Update must not re-ground the body.
		ctx.Grounded = false
	}
	ctx.GroundedTimer = r.GroundedTimer

	normal, ok := c.env.sensor.GroundNormal()
	ctx.GroundNormal = normal
	velocity := c.env.integrator.Compose(ctx.LateralVelocity, ctx.VerticalVelocity, ctx.Grounded && ok, normal)

	moved := c.env.sensor.Body().Move(velocity.Mul(dt))
	ctx.LateralVelocity = common.Lateral(moved)
	ctx.VerticalVelocity = moved.Y()

	c.machine.FixedUpdate(dt)
}

// LateUpdate runs the states' late hooks, blends the orientation and feeds
// the animation sink.
func (c *Controller) LateUpdate(dt float64) {
	c.machine.LateUpdate(dt)

	ctx := &c.ctx
	r := c.blender.Tick(ctx.LookInput, dt, c.machine.IsActive(IdleID))
	ctx.CameraYaw = r.CameraYaw
	ctx.CameraPitch = r.CameraPitch
	ctx.BodyYaw = r.BodyYaw
	ctx.BodyPitch = c.blender.BodyPitch
	ctx.RotationMismatch = r.Mismatch
	ctx.RotatingToTarget = r.RotatingToTarget

	c.driver.Drive(c.env.sink, animation.Frame{
		Input:            ctx.MoveInput,
		Sprinting:        c.machine.IsActive(SprintID),
		Running:          c.machine.IsActive(RunID),
		Grounded:         ctx.Grounded,
		Mismatch:         r.Mismatch,
		RotatingToTarget: r.RotatingToTarget,
	})
	blend := c.driver.Blend()
	ctx.InputMagnitude = math.Max(math.Abs(blend[0]), math.Abs(blend[1]))
}

// steerWalk moves a grounded body in and out of Walk. Walk has no predicate
// of its own, so the toggle and strafe input are applied here.
func (c *Controller) steerWalk() {
	m := c.machine
	want := c.env.wantsWalk()

	if m.IsActive(WalkID) {
		if want {
			return
		}
		next := IdleID
		if c.ctx.HasMoveInput() || c.env.moving() {
			next = RunID
			if c.ctx.SprintToggled {
				next = SprintID
			}
		}
		m.Transition(WalkID, next)
		return
	}
	if !want {
		return
	}
	for _, id := range []statemachine.StateID{IdleID, RunID, SprintID} {
		if m.IsActive(id) {
			m.Transition(id, WalkID)
			return
		}
	}
}

// reclassify forces Jump or Fall over whatever lateral state is active once
// the body leaves the ground, and ends a jump on landing.
func (c *Controller) reclassify() {
	ctx := &c.ctx
	m := c.machine
	if ctx.Grounded && !ctx.JumpedLastFrame {
		if m.Deactivate(JumpID, false) {
			c.log.Debug("landed", "state", JumpID)
		}
		return
	}

	c.stopLateral()
	target := JumpID
	if ctx.VerticalVelocity < 0 {
		target = FallID
		m.Deactivate(JumpID, true)
	}
	if m.Activate(target) {
		c.log.Debug("reclassified", "state", target, "vertical_velocity", ctx.VerticalVelocity, "grounded", ctx.Grounded)
	}
	ctx.JumpedLastFrame = false
	ctx.JumpRequested = false
}

// takeOff activates Jump on the frame the impulse fires. A jump pressed on
// the landing frame replaces the fall.
func (c *Controller) takeOff() {
	c.stopLateral()
	c.machine.Deactivate(FallID, true)
	if c.machine.Activate(JumpID) {
		c.log.Debug("jumped", "grounded_timer", c.ctx.GroundedTimer)
	}
}

func (c *Controller) stopLateral() {
	for _, id := range lateralIDs {
		c.machine.Deactivate(id, true)
	}
}

func (c *Controller) fallBackToIdle() {
	m := c.machine
	if !c.ctx.Grounded || m.IsActiveOrSubtype(KindMovement) {
		return
	}
	if m.Activate(IdleID) {
		c.log.Debug("no state active, idling")
	}
}

func (c *Controller) OnMove(v mgl64.Vec2)     { c.ctx.MoveInput = input.ClampUnit(v) }
func (c *Controller) OnLook(delta mgl64.Vec2) { c.ctx.LookInput = delta }
func (c *Controller) OnJump()                 { c.ctx.JumpRequested = true }

// OnSprint holds or toggles sprint depending on Tuning.HoldToSprint. Either
// edge cancels the walk toggle.
func (c *Controller) OnSprint(p input.Phase) {
	switch p {
	case input.Performed:
		c.ctx.SprintToggled = c.tuning.HoldToSprint || !c.ctx.SprintToggled
		c.ctx.WalkToggled = false
	case input.Canceled:
		c.ctx.SprintToggled = !c.tuning.HoldToSprint && c.ctx.SprintToggled
		c.ctx.WalkToggled = false
	}
}

func (c *Controller) OnWalkToggle(p input.Phase) {
	if p == input.Performed {
		c.ctx.WalkToggled = !c.ctx.WalkToggled
	}
}

// ApplyTuning swaps every constant between frames. States keep their
// membership; velocities carry over.
func (c *Controller) ApplyTuning(t Tuning) {
	c.tuning = t
	c.env.integrator.SetConfig(t.Motion)
	c.env.sensor.SetConfig(t.Ground)
	c.blender.SetConfig(t.Orientation)
	c.driver.BlendSpeed = t.AnimationBlendSpeed
	c.log.Info("tuning applied", "walk", t.Walk.Speed, "run", t.Run.Speed, "sprint", t.Sprint.Speed)
}

func (c *Controller) SetGuards(s *script.Set) { c.env.guards = s }

// SetProbe swaps the ground probe, keeping the current tuning.
func (c *Controller) SetProbe(p ground.Probe) { c.env.sensor.SetProbe(p) }

// SetTerrain swaps in a rebuilt level. t must be resolved against the new
// level's layer table, since layer bits can move when the level changes.
func (c *Controller) SetTerrain(p ground.Probe, t Tuning) {
	c.ApplyTuning(t)
	c.SetProbe(p)
}

// Face turns camera and body to yaw degrees, e.g. at spawn.
func (c *Controller) Face(yaw float64) {
	c.blender.Reset(yaw)
	r := c.blender.Current()
	c.ctx.CameraYaw, c.ctx.CameraPitch, c.ctx.BodyYaw = r.CameraYaw, r.CameraPitch, r.BodyYaw
	c.ctx.RotationMismatch = 0
}

func (c *Controller) Pose() Pose {
	r := c.blender.Current()
	return Pose{
		Position:    c.env.sensor.Body().Position(),
		BodyYaw:     r.BodyYaw,
		CameraYaw:   r.CameraYaw,
		CameraPitch: r.CameraPitch,
		Body:        r.Body,
		Camera:      r.Camera,
	}
}

func (c *Controller) Tuning() Tuning { return c.tuning }

// Context exposes the shared frame data for inspection. Writes between
// phases are visible to the states on the next phase.
func (c *Controller) Context() *Context { return &c.ctx }

func (c *Controller) Machine() *statemachine.Machine { return c.machine }
