package animation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/fpslocomotion/common"
)

const DefaultBlendSpeed = 0.015

// Frame is the per-frame locomotion snapshot the driver turns into blend
// tree parameters.
type Frame struct {
	Input            mgl64.Vec2
	Sprinting        bool
	Running          bool
	Grounded         bool
	Mismatch         float64
	RotatingToTarget bool
}

// Driver eases the blend-tree velocity toward the scaled movement input.
// The ease is a fixed fraction per frame, not per second.
type Driver struct {
	BlendSpeed float64
	blend      mgl64.Vec2
}

func NewDriver(blendSpeed float64) *Driver {
	return &Driver{BlendSpeed: blendSpeed}
}

func (d *Driver) Blend() mgl64.Vec2 { return d.blend }

// Drive writes isGrounded every frame; the blend floats and the
// rotate-to-target flag are only refreshed while grounded so airborne poses
// keep the last ground values.
func (d *Driver) Drive(sink Sink, f Frame) {
	sink.SetBool(IsGrounded, f.Grounded)
	if !f.Grounded {
		return
	}

	scale := 0.5
	switch {
	case f.Sprinting:
		scale = 2
	case f.Running:
		scale = 1
	}
	d.blend = common.LerpVec2(d.blend, f.Input.Mul(scale), d.BlendSpeed)
	magnitude := math.Max(math.Abs(d.blend[0]), math.Abs(d.blend[1]))

	sink.SetFloat(VelocityX, d.blend[0])
	sink.SetFloat(VelocityY, d.blend[1])
	sink.SetFloat(InputMagnitudeClamped, magnitude)
	sink.SetFloat(RotationMismatch, f.Mismatch)
	sink.SetBool(IsRotatingToTarget, f.RotatingToTarget)
}
