package ground

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type fakeBody struct {
	pos      mgl64.Vec3
	grounded bool
}

func (b *fakeBody) Move(delta mgl64.Vec3) mgl64.Vec3 {
	b.pos = b.pos.Add(delta)
	return delta
}

func (b *fakeBody) IsGrounded() bool     { return b.grounded }
func (b *fakeBody) Velocity() mgl64.Vec3 { return mgl64.Vec3{} }
func (b *fakeBody) Position() mgl64.Vec3 { return b.pos }

type fakeProbe struct {
	overlap bool
	normal  mgl64.Vec3
	hit     bool

	bottom, top mgl64.Vec3
	radius      float64
	layers      Layers
	castOrigin  mgl64.Vec3
	castDist    float64
	calls       int
}

func (p *fakeProbe) OverlapCapsule(bottom, top mgl64.Vec3, radius float64, layers Layers) bool {
	p.calls++
	p.bottom, p.top, p.radius, p.layers = bottom, top, radius, layers
	return p.overlap
}

func (p *fakeProbe) CastDown(origin mgl64.Vec3, dist float64, layers Layers) (mgl64.Vec3, bool) {
	p.castOrigin, p.castDist, p.layers = origin, dist, layers
	return p.normal, p.hit
}

func TestSensorIsGrounded(t *testing.T) {
	cases := []struct {
		name        string
		inGrounded  bool
		bodyContact bool
		overlap     bool
		want        bool
		wantProbe   bool
	}{
		{"grounded_state_uses_overlap", true, false, true, true, true},
		{"grounded_state_gap_too_large", true, true, false, false, true},
		{"airborne_uses_contact", false, true, false, true, false},
		{"airborne_ignores_overlap", false, false, true, false, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body := &fakeBody{grounded: c.bodyContact}
			probe := &fakeProbe{overlap: c.overlap}
			s := NewSensor(body, probe, DefaultConfig())
			if got := s.IsGrounded(c.inGrounded); got != c.want {
				t.Fatalf("IsGrounded(%v) = %v, want %v", c.inGrounded, got, c.want)
			}
			if (probe.calls > 0) != c.wantProbe {
				t.Fatalf("probe calls = %d, wantProbe %v", probe.calls, c.wantProbe)
			}
		})
	}
}

func TestSensorCapsulePlacement(t *testing.T) {
	body := &fakeBody{pos: mgl64.Vec3{1, 2, 3}}
	probe := &fakeProbe{overlap: true}
	cfg := Config{
		Capsule:  Capsule{Center: mgl64.Vec3{0, 0.5, 0}, Height: 1, Radius: 0.25},
		Walkable: 0b101,
	}
	NewSensor(body, probe, cfg).IsGrounded(true)

	if !probe.bottom.ApproxEqual(mgl64.Vec3{1, 2, 3}) || !probe.top.ApproxEqual(mgl64.Vec3{1, 3, 3}) {
		t.Fatalf("capsule = %v..%v", probe.bottom, probe.top)
	}
	if probe.radius != 0.25 || probe.layers != 0b101 {
		t.Fatalf("radius=%v layers=%b", probe.radius, probe.layers)
	}
}

func TestSensorGroundNormal(t *testing.T) {
	body := &fakeBody{pos: mgl64.Vec3{0, 1, 0}}

	probe := &fakeProbe{normal: mgl64.Vec3{0, 2, 0}, hit: true}
	n, ok := NewSensor(body, probe, DefaultConfig()).GroundNormal()
	if !ok || !n.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("GroundNormal = %v, %v", n, ok)
	}
	if probe.castDist != 0.1 || !probe.castOrigin.ApproxEqual(body.pos) {
		t.Fatalf("cast from %v dist %v", probe.castOrigin, probe.castDist)
	}

	miss := &fakeProbe{}
	if n, ok := NewSensor(body, miss, DefaultConfig()).GroundNormal(); ok || !n.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("miss should report up/false, got %v, %v", n, ok)
	}
}

func TestSensorWithoutProbe(t *testing.T) {
	s := NewSensor(&fakeBody{grounded: true}, nil, DefaultConfig())
	if !s.IsGrounded(true) {
		t.Fatalf("without a probe the body contact flag decides")
	}
	if _, ok := s.GroundNormal(); ok {
		t.Fatalf("no probe, no normal")
	}
}

func TestLayerTable(t *testing.T) {
	table, err := NewLayerTable("default", "ground", "ramp")
	if err != nil {
		t.Fatalf("NewLayerTable: %v", err)
	}
	m, err := table.Mask("ground", "ramp")
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	if m != 0b110 {
		t.Fatalf("mask = %b, want 110", m)
	}
	if !m.Has(0b010) || m.Has(0b001) {
		t.Fatalf("Has mismatch for %b", m)
	}
	if _, err := table.Mask("water"); !errors.Is(err, ErrUnknownLayer) {
		t.Fatalf("Mask(water): got %v", err)
	}
	if _, err := NewLayerTable("a", "a"); !errors.Is(err, ErrDuplicateLayer) {
		t.Fatalf("duplicate: got %v", err)
	}
	names := make([]string, 33)
	for i := range names {
		names[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
	}
	if _, err := NewLayerTable(names...); !errors.Is(err, ErrTooManyLayers) {
		t.Fatalf("33 layers: got %v", err)
	}
}
