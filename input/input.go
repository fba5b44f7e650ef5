package input

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Phase is where a button action is in its press cycle.
type Phase int

const (
	Started Phase = iota
	Performed
	Canceled
)

func (p Phase) String() string {
	switch p {
	case Started:
		return "started"
	case Performed:
		return "performed"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Receiver consumes input callbacks. Calls arrive before the frame's update
// phase.
type Receiver interface {
	OnMove(v mgl64.Vec2)
	OnLook(delta mgl64.Vec2)
	OnJump()
	OnSprint(p Phase)
	OnWalkToggle(p Phase)
}

// State is one polled snapshot of the devices. Buttons are held flags.
type State struct {
	Move   mgl64.Vec2
	Look   mgl64.Vec2
	Jump   bool
	Sprint bool
	Walk   bool
}

// Dispatcher turns successive snapshots into Receiver callbacks: movement
// and look every frame, buttons only on press and release edges.
type Dispatcher struct {
	prev State
}

func (d *Dispatcher) Dispatch(cur State, r Receiver) {
	r.OnMove(ClampUnit(cur.Move))
	r.OnLook(cur.Look)

	if cur.Jump && !d.prev.Jump {
		r.OnJump()
	}
	dispatchButton(d.prev.Sprint, cur.Sprint, r.OnSprint)
	dispatchButton(d.prev.Walk, cur.Walk, r.OnWalkToggle)

	d.prev = cur
}

// Reset forgets held buttons, e.g. after the window lost focus.
func (d *Dispatcher) Reset() { d.prev = State{} }

func dispatchButton(was, is bool, fn func(Phase)) {
	switch {
	case is && !was:
		fn(Started)
		fn(Performed)
	case was && !is:
		fn(Canceled)
	}
}

// ClampUnit scales v down to length 1 when longer.
func ClampUnit(v mgl64.Vec2) mgl64.Vec2 {
	l := v.Len()
	if l <= 1 {
		return v
	}
	return v.Mul(1 / l)
}

// Deadzone zeroes a stick whose deflection is at most dz and rescales the
// rest so output starts at zero just outside the zone.
func Deadzone(v mgl64.Vec2, dz float64) mgl64.Vec2 {
	l := v.Len()
	if l <= dz || l == 0 {
		return mgl64.Vec2{}
	}
	scale := math.Min(1, (l-dz)/(1-dz)) / l
	return v.Mul(scale)
}

// Axis folds two opposing buttons into -1, 0 or 1.
func Axis(neg, pos bool) float64 {
	v := 0.0
	if neg {
		v--
	}
	if pos {
		v++
	}
	return v
}

// Merge prefers a deflected stick over digital keys.
func Merge(keys, stick mgl64.Vec2) mgl64.Vec2 {
	if stick != (mgl64.Vec2{}) {
		return stick
	}
	return keys
}
