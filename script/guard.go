package script

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/fpslocomotion/logger"
	"github.com/milk9111/fpslocomotion/prefabs"
)

// maxAllocs bounds the objects one evaluation may allocate.
const maxAllocs = 4096

// A guard script defines `allow := func(ctx) { ... }`. The dispatch line is
// appended at compile time; ctx is an immutable map so a guard cannot write
// back into the locomotion state.
const guardDispatch = `
__result := allow(__ctx)
`

// Vars is the read-only view of the locomotion context handed to a guard.
type Vars struct {
	State            string
	Active           []string
	InputX           float64
	InputY           float64
	LateralSpeed     float64
	VerticalVelocity float64
	GroundedTimer    float64
	Grounded         bool
	SprintToggled    bool
	WalkToggled      bool
	JumpRequested    bool
}

type Guard struct {
	name     string
	compiled *tengo.Compiled
}

// Compile builds a guard from source. A script without allow fails to
// compile; the guard then runs once against zero Vars so runtime errors
// surface at load.
func Compile(name string, src []byte) (*Guard, error) {
	s := tengo.NewScript([]byte(string(src) + "\n" + guardDispatch))
	if err := s.Add("__ctx", map[string]any{}); err != nil {
		return nil, err
	}
	s.SetImports(stdlib.GetModuleMap("math"))
	s.SetMaxAllocs(maxAllocs)

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	g := &Guard{name: name, compiled: compiled}
	if _, err := g.Allow(Vars{}); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Guard) Name() string { return g.name }

// Allow evaluates the guard against v.
func (g *Guard) Allow(v Vars) (bool, error) {
	if err := g.compiled.Set("__ctx", toObject(v)); err != nil {
		return false, err
	}
	if err := g.compiled.Run(); err != nil {
		return false, fmt.Errorf("script: run %s: %w", g.name, err)
	}
	return g.compiled.Get("__result").Bool(), nil
}

func toObject(v Vars) *tengo.ImmutableMap {
	active := make([]tengo.Object, 0, len(v.Active))
	for _, id := range v.Active {
		active = append(active, &tengo.String{Value: id})
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"state":             &tengo.String{Value: v.State},
		"active":            &tengo.ImmutableArray{Value: active},
		"input_x":           &tengo.Float{Value: v.InputX},
		"input_y":           &tengo.Float{Value: v.InputY},
		"lateral_speed":     &tengo.Float{Value: v.LateralSpeed},
		"vertical_velocity": &tengo.Float{Value: v.VerticalVelocity},
		"grounded_timer":    &tengo.Float{Value: v.GroundedTimer},
		"grounded":          boolObject(v.Grounded),
		"sprint":            boolObject(v.SprintToggled),
		"walk":              boolObject(v.WalkToggled),
		"jump_requested":    boolObject(v.JumpRequested),
	}}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

// Set holds at most one guard per state id.
type Set struct {
	guards map[string]*Guard
	failed map[string]bool
	log    *slog.Logger
}

func NewSet() *Set {
	return &Set{
		guards: map[string]*Guard{},
		failed: map[string]bool{},
		log:    logger.For("script"),
	}
}

// LoadSet compiles the scripts named in bindings (state id to script file)
// from the prefabs script directory.
func LoadSet(bindings map[string]string) (*Set, error) {
	set := NewSet()
	for state, file := range bindings {
		if strings.TrimSpace(file) == "" {
			continue
		}
		src, err := prefabs.LoadScript(file)
		if err != nil {
			return nil, fmt.Errorf("script: load %s: %w", file, err)
		}
		g, err := Compile(file, src)
		if err != nil {
			return nil, err
		}
		set.Add(state, g)
	}
	return set, nil
}

func (s *Set) Add(state string, g *Guard) {
	s.guards[state] = g
	delete(s.failed, state)
}

func (s *Set) Has(state string) bool {
	_, ok := s.guards[state]
	return ok
}

// Allow reports whether the guard for state admits v. States without a
// guard are always allowed. A guard that errors denies and is logged once.
func (s *Set) Allow(state string, v Vars) bool {
	if s == nil {
		return true
	}
	g, ok := s.guards[state]
	if !ok {
		return true
	}
	v.State = state
	allowed, err := g.Allow(v)
	if err != nil {
		if !s.failed[state] {
			s.failed[state] = true
			s.log.Warn("guard script failed", "state", state, "script", g.name, "err", err)
		}
		return false
	}
	return allowed
}
