package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Y-up basis. Forward is +Z, right is +X.
var (
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
	Right   = mgl64.Vec3{1, 0, 0}
)

const epsilon = 1e-9

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// LerpVec2 interpolates unclamped between a and b.
func LerpVec2(a, b mgl64.Vec2, t float64) mgl64.Vec2 {
	return mgl64.Vec2{Lerp(a[0], b[0], t), Lerp(a[1], b[1], t)}
}

// Sign returns -1 for negative values and 1 otherwise, so a zero cross
// product resolves to the positive side.
func Sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// Normalize returns the unit vector of v, or the zero vector when v has no length.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// ClampMagnitude scales v down so its length does not exceed max.
func ClampMagnitude(v mgl64.Vec3, max float64) mgl64.Vec3 {
	if max <= 0 {
		return mgl64.Vec3{}
	}
	l := v.Len()
	if l <= max {
		return v
	}
	return v.Mul(max / l)
}

// Lateral drops the vertical component of v.
func Lateral(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}

// FlattenXZ projects v onto the ground plane and normalizes the result.
func FlattenXZ(v mgl64.Vec3) mgl64.Vec3 {
	return Normalize(Lateral(v))
}

// ProjectOnPlane removes the component of v along the plane normal n.
func ProjectOnPlane(v, n mgl64.Vec3) mgl64.Vec3 {
	sq := n.LenSqr()
	if sq < epsilon {
		return v
	}
	return v.Sub(n.Mul(v.Dot(n) / sq))
}

// Angle returns the unsigned angle between a and b in degrees, in [0, 180].
func Angle(a, b mgl64.Vec3) float64 {
	denom := math.Sqrt(a.LenSqr() * b.LenSqr())
	if denom < epsilon {
		return 0
	}
	cos := mgl64.Clamp(a.Dot(b)/denom, -1, 1)
	return mgl64.RadToDeg(math.Acos(cos))
}

// SignedAngle returns the angle from a to b in degrees, signed by which side
// of axis the cross product falls. The range is (-180, 180].
func SignedAngle(from, to, axis mgl64.Vec3) float64 {
	return Sign(from.Cross(to).Dot(axis)) * Angle(from, to)
}

// YawQuat returns a rotation of yaw degrees about the up axis.
func YawQuat(yaw float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(yaw), Up)
}

// EulerQuat builds a camera rotation from pitch and yaw in degrees, yaw
// applied first.
func EulerQuat(pitch, yaw float64) mgl64.Quat {
	return YawQuat(yaw).Mul(mgl64.QuatRotate(mgl64.DegToRad(pitch), Right))
}

// YawOf returns the heading of q's forward vector on the ground plane in degrees.
func YawOf(q mgl64.Quat) float64 {
	f := q.Rotate(Forward)
	return mgl64.RadToDeg(math.Atan2(f[0], f[2]))
}

// YawBasis returns the ground-plane forward and right vectors for a yaw in degrees.
func YawBasis(yaw float64) (forward, right mgl64.Vec3) {
	s, c := math.Sincos(mgl64.DegToRad(yaw))
	return mgl64.Vec3{s, 0, c}, mgl64.Vec3{c, 0, -s}
}
