package locomotion

import (
	"github.com/milk9111/fpslocomotion/animation"
	"github.com/milk9111/fpslocomotion/ground"
	"github.com/milk9111/fpslocomotion/motion"
	"github.com/milk9111/fpslocomotion/script"
	"github.com/milk9111/fpslocomotion/statemachine"
)

const (
	IdleID   statemachine.StateID = "idle"
	WalkID   statemachine.StateID = "walk"
	RunID    statemachine.StateID = "run"
	SprintID statemachine.StateID = "sprint"
	JumpID   statemachine.StateID = "jump"
	FallID   statemachine.StateID = "fall"
)

const (
	KindMovement statemachine.Kind = "movement"
	KindGrounded statemachine.Kind = KindMovement + "/grounded"
	KindAirborne statemachine.Kind = KindMovement + "/airborne"
)

// lateralIDs are the grounded movement modes, at most one of which is active.
var lateralIDs = []statemachine.StateID{IdleID, WalkID, RunID, SprintID}

// shared is what every state reaches through; the controller owns it.
type shared struct {
	ctx        *Context
	tuning     *Tuning
	integrator *motion.Integrator
	sensor     *ground.Sensor
	sink       animation.Sink
	guards     *script.Set
}

// moveLateral integrates the lateral velocity for one update with gait g.
func (s *shared) moveLateral(g Gait) {
	forward, right := s.ctx.CameraBasis()
	s.ctx.LateralVelocity = s.integrator.IntegrateLateral(s.ctx.LateralVelocity, s.ctx.MoveInput, forward, right, g.Speed, g.Acceleration)
}

func (s *shared) moving() bool {
	return s.ctx.IsMovingLaterally(s.tuning.MovingThreshold)
}

// scriptAllows runs the optional guard script for id.
func (s *shared) scriptAllows(m *statemachine.Machine, id statemachine.StateID) bool {
	if s.guards == nil || !s.guards.Has(string(id)) {
		return true
	}
	active := m.Active()
	names := make([]string, len(active))
	for i, a := range active {
		names[i] = string(a)
	}
	c := s.ctx
	return s.guards.Allow(string(id), script.Vars{
		Active:           names,
		InputX:           c.MoveInput[0],
		InputY:           c.MoveInput[1],
		LateralSpeed:     c.LateralSpeed(),
		VerticalVelocity: c.VerticalVelocity,
		GroundedTimer:    c.GroundedTimer,
		Grounded:         c.Grounded,
		SprintToggled:    c.SprintToggled,
		WalkToggled:      c.WalkToggled,
		JumpRequested:    c.JumpRequested,
	})
}

// wantsWalk is true for a body that moves or is asked to move while the
// walk toggle is on or the input strafes.
func (s *shared) wantsWalk() bool {
	if !s.ctx.HasMoveInput() && !s.moving() {
		return false
	}
	return s.ctx.WalkToggled || (s.tuning.StrafeForcesWalk && !s.ctx.CanRun())
}

// base carries the common lifecycle: the animation flag toggled on start
// and stop, and the script guard.
type base struct {
	statemachine.Base
	*shared
	id   statemachine.StateID
	kind statemachine.Kind
	flag animation.BoolParam
}

func (b *base) ID() statemachine.StateID { return b.id }
func (b *base) Kind() statemachine.Kind  { return b.kind }
func (b *base) OnStart()                 { b.sink.SetBool(b.flag, true) }
func (b *base) OnStop(isTransition bool) { b.sink.SetBool(b.flag, false) }

func (b *base) inactive(ids ...statemachine.StateID) bool {
	m := b.Machine()
	for _, id := range ids {
		if !m.IsInactive(id) {
			return false
		}
	}
	return true
}

func (b *base) allowed() bool { return b.scriptAllows(b.Machine(), b.id) }

func newBase(sh *shared, id statemachine.StateID, kind statemachine.Kind, flag animation.BoolParam) base {
	return base{shared: sh, id: id, kind: kind.Sub(string(id)), flag: flag}
}

type idleState struct{ base }

func (s *idleState) OnUpdate(dt float64) {
	s.ctx.LateralVelocity = s.integrator.ApplyDrag(s.ctx.LateralVelocity)
}
func (s *idleState) OnUpdateGuard(dt float64) {
	if !s.ctx.HasMoveInput() {
		return
	}
	if s.wantsWalk() {
		s.Machine().Transition(IdleID, WalkID)
		return
	}
	if s.ctx.SprintToggled {
		s.Machine().Transition(IdleID, SprintID)
		return
	}
	s.Machine().Transition(IdleID, RunID)
}
func (s *idleState) CanActivate() bool {
	return s.inactive(WalkID, RunID, SprintID) && s.allowed()
}

// walkState has no exit predicate of its own; the controller moves it in
// and out as the walk toggle and strafe input change.
type walkState struct{ base }

func (s *walkState) OnUpdate(dt float64) { s.moveLateral(s.tuning.Walk) }
func (s *walkState) CanActivate() bool {
	return s.inactive(RunID, SprintID) && s.wantsWalk() && s.allowed()
}

type runState struct{ base }

func (s *runState) OnUpdate(dt float64) { s.moveLateral(s.tuning.Run) }
func (s *runState) OnUpdateGuard(dt float64) {
	if !s.moving() {
		s.Machine().Transition(RunID, IdleID)
	} else if s.ctx.SprintToggled {
		s.Machine().Transition(RunID, SprintID)
	}
}
func (s *runState) CanActivate() bool {
	return s.inactive(SprintID, WalkID) && s.allowed()
}

type sprintState struct{ base }

func (s *sprintState) OnUpdate(dt float64) { s.moveLateral(s.tuning.Sprint) }
func (s *sprintState) OnUpdateGuard(dt float64) {
	if !s.moving() {
		s.Machine().Transition(SprintID, IdleID)
	} else if !s.ctx.SprintToggled {
		s.Machine().Transition(SprintID, RunID)
	}
}
func (s *sprintState) CanActivate() bool {
	return s.inactive(WalkID, RunID) && s.allowed()
}

// jumpState keeps the lateral velocity it took off with. Reclassification
// is the only way out.
type jumpState struct{ base }

func (s *jumpState) CanActivate() bool {
	return s.ctx.GroundedTimer > 0 && s.inactive(FallID) && s.allowed()
}

type fallState struct{ base }

func (s *fallState) OnFixedUpdateGuard(dt float64) {
	if s.sensor.IsGrounded(false) {
		s.Machine().Deactivate(FallID, false)
	}
}
func (s *fallState) CanActivate() bool {
	return s.inactive(JumpID) && s.allowed()
}
