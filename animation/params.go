package animation

import (
	"errors"
	"fmt"
)

var ErrUnknownParam = errors.New("animation: unknown parameter")

type BoolParam int

const (
	IsIdling BoolParam = iota
	IsWalking
	IsRunning
	IsSprinting
	IsGrounded
	IsJumping
	IsFalling
	IsRotatingToTarget

	boolParamCount
)

func (p BoolParam) String() string {
	switch p {
	case IsIdling:
		return "isIdling"
	case IsWalking:
		return "isWalking"
	case IsRunning:
		return "isRunning"
	case IsSprinting:
		return "isSprinting"
	case IsGrounded:
		return "isGrounded"
	case IsJumping:
		return "isJumping"
	case IsFalling:
		return "isFalling"
	case IsRotatingToTarget:
		return "isRotatingToTarget"
	default:
		return "unknown"
	}
}

type FloatParam int

const (
	VelocityX FloatParam = iota
	VelocityY
	InputMagnitudeClamped
	RotationMismatch

	floatParamCount
)

func (p FloatParam) String() string {
	switch p {
	case VelocityX:
		return "velocityX"
	case VelocityY:
		return "velocityY"
	case InputMagnitudeClamped:
		return "inputMagnitudeClamped"
	case RotationMismatch:
		return "rotationMismatch"
	default:
		return "unknown"
	}
}

// Sink receives parameter writes. Implementations forward them to whatever
// animation system drives the character.
type Sink interface {
	SetBool(p BoolParam, v bool)
	SetFloat(p FloatParam, v float64)
}

// NamedTarget is an animation system addressed by parameter name.
type NamedTarget interface {
	SetBool(name string, v bool)
	SetFloat(name string, v float64)
}

// Bindings maps every parameter to the name the target knows it by. It is
// resolved once; writes are then plain array lookups.
type Bindings struct {
	bools  [boolParamCount]string
	floats [floatParamCount]string
}

// NewBindings starts from the default parameter names and applies renames
// keyed by default name.
func NewBindings(renames map[string]string) (*Bindings, error) {
	b := &Bindings{}
	index := make(map[string]func(string), int(boolParamCount)+int(floatParamCount))
	for p := BoolParam(0); p < boolParamCount; p++ {
		b.bools[p] = p.String()
		index[p.String()] = func(name string) { b.bools[p] = name }
	}
	for p := FloatParam(0); p < floatParamCount; p++ {
		b.floats[p] = p.String()
		index[p.String()] = func(name string) { b.floats[p] = name }
	}
	for from, to := range renames {
		set, ok := index[from]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, from)
		}
		if to == "" {
			return nil, fmt.Errorf("animation: empty binding for %q", from)
		}
		set(to)
	}
	return b, nil
}

type boundSink struct {
	target NamedTarget
	b      *Bindings
}

// Bind adapts a name-addressed target to a Sink.
func Bind(target NamedTarget, b *Bindings) Sink {
	return &boundSink{target: target, b: b}
}

func (s *boundSink) SetBool(p BoolParam, v bool) {
	if p < 0 || p >= boolParamCount {
		return
	}
	s.target.SetBool(s.b.bools[p], v)
}

func (s *boundSink) SetFloat(p FloatParam, v float64) {
	if p < 0 || p >= floatParamCount {
		return
	}
	s.target.SetFloat(s.b.floats[p], v)
}

// Recorder is a Sink that keeps the last value written per parameter.
type Recorder struct {
	Bools  [boolParamCount]bool
	Floats [floatParamCount]float64
	Writes int
}

func (r *Recorder) SetBool(p BoolParam, v bool) {
	if p < 0 || p >= boolParamCount {
		return
	}
	r.Bools[p] = v
	r.Writes++
}

func (r *Recorder) SetFloat(p FloatParam, v float64) {
	if p < 0 || p >= floatParamCount {
		return
	}
	r.Floats[p] = v
	r.Writes++
}

func (r *Recorder) Bool(p BoolParam) bool      { return r.Bools[p] }
func (r *Recorder) Float(p FloatParam) float64 { return r.Floats[p] }

// Discard drops every write.
type Discard struct{}

func (Discard) SetBool(BoolParam, bool)      {}
func (Discard) SetFloat(FloatParam, float64) {}
