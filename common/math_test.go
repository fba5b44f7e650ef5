package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// vecNear compares componentwise with an absolute tolerance, so components
// that are both near zero match.
func vecNear(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func TestSignedAngle(t *testing.T) {
	cases := []struct {
		name string
		from mgl64.Vec3
		to   mgl64.Vec3
		want float64
	}{
		{"right_is_positive", Forward, Right, 90},
		{"left_is_negative", Forward, mgl64.Vec3{-1, 0, 0}, -90},
		{"same_direction", Forward, Forward, 0},
		{"opposite_is_plus_180", Forward, mgl64.Vec3{0, 0, -1}, 180},
		{"diagonal", Forward, mgl64.Vec3{1, 0, 1}, 45},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			approxEqual(t, SignedAngle(c.from, c.to, Up), c.want, 1e-9, "signed angle")
		})
	}
}

func TestClampMagnitude(t *testing.T) {
	v := ClampMagnitude(mgl64.Vec3{3, 0, 4}, 2.5)
	approxEqual(t, v.Len(), 2.5, 1e-12, "len")
	approxEqual(t, v[0]/v[2], 0.75, 1e-12, "direction ratio")

	short := ClampMagnitude(mgl64.Vec3{0.1, 0, 0}, 1)
	if short != (mgl64.Vec3{0.1, 0, 0}) {
		t.Fatalf("short vector changed: %v", short)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	if got := Normalize(mgl64.Vec3{}); got != (mgl64.Vec3{}) {
		t.Fatalf("Normalize(0) = %v, want zero", got)
	}
}

func TestYawBasisMatchesQuaternion(t *testing.T) {
	for _, yaw := range []float64{0, 30, 90, -135, 180} {
		fwd, right := YawBasis(yaw)
		q := YawQuat(yaw)
		if !vecNear(fwd, q.Rotate(Forward), 1e-9) {
			t.Fatalf("yaw %v: forward %v != %v", yaw, fwd, q.Rotate(Forward))
		}
		if !vecNear(right, q.Rotate(Right), 1e-9) {
			t.Fatalf("yaw %v: right %v != %v", yaw, right, q.Rotate(Right))
		}
		approxEqual(t, fwd.Dot(right), 0, 1e-12, "orthogonal")
	}
}

func TestYawOf(t *testing.T) {
	approxEqual(t, YawOf(YawQuat(90)), 90, 1e-9, "yaw")
	approxEqual(t, YawOf(YawQuat(-45)), -45, 1e-9, "yaw")
}

func TestEulerQuatPitchLooksDown(t *testing.T) {
	f := EulerQuat(30, 0).Rotate(Forward)
	if f[1] >= 0 {
		t.Fatalf("positive pitch should look down, forward=%v", f)
	}
	flat := FlattenXZ(EulerQuat(30, 90).Rotate(Forward))
	if !flat.ApproxEqualThreshold(Right, 1e-9) {
		t.Fatalf("flattened forward = %v, want %v", flat, Right)
	}
}

func TestProjectOnPlane(t *testing.T) {
	n := Normalize(mgl64.Vec3{0, 1, 1})
	p := ProjectOnPlane(mgl64.Vec3{0, 0, 2}, n)
	approxEqual(t, p.Dot(n), 0, 1e-12, "dot with normal")
	if got := ProjectOnPlane(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{}); got != (mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("zero normal should leave vector unchanged, got %v", got)
	}
}
