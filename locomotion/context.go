package locomotion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/fpslocomotion/common"
)

// Context is the frame data shared by the controller and every state. It is
// only touched from the three tick phases and the input callbacks that run
// before them, all on one goroutine.
type Context struct {
	MoveInput mgl64.Vec2
	LookInput mgl64.Vec2

	// LateralVelocity has a zero Y component.
	LateralVelocity  mgl64.Vec3
	VerticalVelocity float64
	GroundNormal     mgl64.Vec3

	Grounded        bool
	GroundedTimer   float64
	JumpRequested   bool
	JumpedLastFrame bool

	SprintToggled bool
	WalkToggled   bool

	CameraYaw        float64
	CameraPitch      float64
	BodyYaw          float64
	BodyPitch        float64
	RotationMismatch float64
	RotatingToTarget bool

	// InputMagnitude is the clamped blend magnitude last sent to animation.
	InputMagnitude float64
}

func (c *Context) HasMoveInput() bool {
	return c.MoveInput != (mgl64.Vec2{})
}

func (c *Context) LateralSpeed() float64 {
	return c.LateralVelocity.Len()
}

// IsMovingLaterally reports whether lateral speed exceeds threshold.
func (c *Context) IsMovingLaterally(threshold float64) bool {
	return c.LateralSpeed() > threshold
}

// CanRun is false while the input strafes or back-pedals more than it
// pushes forward.
func (c *Context) CanRun() bool {
	return c.MoveInput[1] >= math.Abs(c.MoveInput[0])
}

// CameraBasis returns the camera's forward and right on the ground plane.
func (c *Context) CameraBasis() (forward, right mgl64.Vec3) {
	return common.YawBasis(c.CameraYaw)
}
