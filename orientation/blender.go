package orientation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/fpslocomotion/common"
)

// MismatchThreshold is the body/camera angle in degrees beyond which an idle
// body turns to face the camera.
const MismatchThreshold = 90.0

type Config struct {
	LookSenseH float64
	LookSenseV float64
	PitchMin   float64
	PitchMax   float64

	RotationSpeed      float64
	RotateToTargetTime float64
}

func DefaultConfig() Config {
	return Config{
		LookSenseH:         0.1,
		LookSenseV:         0.1,
		PitchMin:           -89,
		PitchMax:           89,
		RotationSpeed:      10,
		RotateToTargetTime: 0.25,
	}
}

// Result is the pose produced by one Tick. Angles are in degrees.
type Result struct {
	CameraYaw        float64
	CameraPitch      float64
	BodyYaw          float64
	Mismatch         float64
	RotatingToTarget bool

	Body   mgl64.Quat
	Camera mgl64.Quat
}

// Blender integrates look input into camera yaw/pitch and turns the body
// toward the accumulated yaw target.
type Blender struct {
	cfg Config

	cameraYaw   float64
	cameraPitch float64
	targetYaw   float64
	body        mgl64.Quat
	timer       float64
	mismatch    float64

	// BodyPitch is folded into the yaw target each tick. A yaw-only body
	// keeps it at zero.
	BodyPitch float64
}

func NewBlender(cfg Config) *Blender {
	return &Blender{cfg: cfg, body: mgl64.QuatIdent()}
}

func (b *Blender) Config() Config { return b.cfg }

func (b *Blender) SetConfig(cfg Config) {
	b.cfg = cfg
	b.cameraPitch = mgl64.Clamp(b.cameraPitch, cfg.PitchMin, cfg.PitchMax)
}

// Reset places camera and body at yaw with a level camera.
func (b *Blender) Reset(yaw float64) {
	b.cameraYaw = yaw
	b.cameraPitch = 0
	b.targetYaw = yaw
	b.body = common.YawQuat(yaw)
	b.timer = 0
	b.mismatch = 0
}

// Tick advances one late phase. idle is true while the Idle state is the
// active locomotion state; an idle body only turns once the camera has swung
// past MismatchThreshold, and keeps turning for RotateToTargetTime after.
func (b *Blender) Tick(look mgl64.Vec2, dt float64, idle bool) Result {
	b.cameraYaw += b.cfg.LookSenseH * look[0]
	b.cameraPitch = mgl64.Clamp(b.cameraPitch-b.cfg.LookSenseV*look[1], b.cfg.PitchMin, b.cfg.PitchMax)
	b.targetYaw += b.BodyPitch + b.cfg.LookSenseH*look[0]

	wide := math.Abs(b.mismatch) > MismatchThreshold
	if !idle || wide || b.timer > 0 {
		t := mgl64.Clamp(b.cfg.RotationSpeed*dt, 0, 1)
		b.body = mgl64.QuatSlerp(b.body, common.YawQuat(b.targetYaw), t)
	}
	if wide {
		b.timer = b.cfg.RotateToTargetTime
	} else {
		b.timer = math.Max(0, b.timer-dt)
	}

	camForward, _ := common.YawBasis(b.cameraYaw)
	b.mismatch = Mismatch(b.body.Rotate(common.Forward), camForward)

	return b.result()
}

func (b *Blender) Current() Result { return b.result() }

func (b *Blender) result() Result {
	return Result{
		CameraYaw:        b.cameraYaw,
		CameraPitch:      b.cameraPitch,
		BodyYaw:          common.YawOf(b.body),
		Mismatch:         b.mismatch,
		RotatingToTarget: b.timer > 0,
		Body:             b.body,
		Camera:           common.EulerQuat(b.cameraPitch, b.cameraYaw),
	}
}

// Mismatch returns the signed angle in degrees from bodyForward to the
// ground-plane projection of cameraForward, in (-180, 180]. Positive means
// the camera looks to the body's right.
func Mismatch(bodyForward, cameraForward mgl64.Vec3) float64 {
	return common.SignedAngle(common.FlattenXZ(bodyForward), common.FlattenXZ(cameraForward), common.Up)
}
