package script

import (
	"testing"

	"github.com/milk9111/fpslocomotion/logger"
)

func TestCompileAndAllow(t *testing.T) {
	g, err := Compile("fast", []byte(`
allow := func(ctx) {
	return ctx.grounded && ctx.lateral_speed > 1.5
}
`))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	cases := []struct {
		name string
		vars Vars
		want bool
	}{
		{"grounded_fast", Vars{Grounded: true, LateralSpeed: 2}, true},
		{"grounded_slow", Vars{Grounded: true, LateralSpeed: 1}, false},
		{"airborne_fast", Vars{LateralSpeed: 3}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := g.Allow(c.vars)
			if err != nil {
				t.Fatalf("Allow: %v", err)
			}
			if got != c.want {
				t.Fatalf("Allow = %v, want %v", got, c.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing_allow", `x := 1`},
		{"syntax", `allow := func(ctx) { return (`},
		{"runtime", `allow := func(ctx) { return ctx.input_x.nope() }`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Compile(c.name, []byte(c.src)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestGuardCannotMutateContext(t *testing.T) {
	g, err := Compile("mutate", []byte(`
allow := func(ctx) {
	ctx.grounded = true
	return true
}
`))
	if err == nil {
		if ok, runErr := g.Allow(Vars{}); runErr == nil && ok {
			t.Fatalf("assignment into the immutable context should fail")
		}
	}
}

func TestSetAllow(t *testing.T) {
	g, err := Compile("walking_only", []byte(`
allow := func(ctx) {
	for id in ctx.active {
		if id == "walk" { return false }
	}
	return ctx.state == "sprint"
}
`))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	broken, err := Compile("broken", []byte(`
allow := func(ctx) {
	if ctx.input_x > 0 { return ctx.input_x.nope() }
	return true
}
`))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	s := NewSet()
	s.log = logger.Discard()
	s.Add("sprint", g)
	s.Add("run", broken)

	if !s.Allow("idle", Vars{}) {
		t.Fatalf("states without a guard are allowed")
	}
	if !s.Allow("sprint", Vars{Active: []string{"run"}}) {
		t.Fatalf("sprint guard should pass")
	}
	if s.Allow("sprint", Vars{Active: []string{"walk"}}) {
		t.Fatalf("sprint guard should refuse while walking")
	}
	if s.Allow("run", Vars{InputX: 1}) {
		t.Fatalf("a failing guard denies")
	}
	if !s.failed["run"] {
		t.Fatalf("failure should be recorded")
	}
	if !s.Allow("run", Vars{}) {
		t.Fatalf("guard should recover once the input no longer trips it")
	}

	var nilSet *Set
	if !nilSet.Allow("sprint", Vars{}) {
		t.Fatalf("nil set allows everything")
	}
}

func TestLoadSet(t *testing.T) {
	s, err := LoadSet(map[string]string{"sprint": "sprint_guard.tengo", "run": ""})
	if err != nil {
		t.Fatalf("LoadSet: %v", err)
	}
	s.log = logger.Discard()
	if !s.Has("sprint") || s.Has("run") {
		t.Fatalf("unexpected guards loaded")
	}
	if !s.Allow("sprint", Vars{InputY: 1}) {
		t.Fatalf("forward input should allow sprint")
	}
	if s.Allow("sprint", Vars{InputX: 1}) {
		t.Fatalf("pure strafe should not allow sprint")
	}

	if _, err := LoadSet(map[string]string{"sprint": "missing.tengo"}); err == nil {
		t.Fatalf("missing script should fail")
	}
}
