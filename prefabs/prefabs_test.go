package prefabs

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

func useDir(t *testing.T, d string) {
	t.Helper()
	prev := Dir()
	SetDir(d)
	t.Cleanup(func() { SetDir(prev) })
}

func TestLoadPlayerSpecEmbedded(t *testing.T) {
	useDir(t, t.TempDir())

	spec, err := LoadPlayerSpec()
	if err != nil {
		t.Fatalf("LoadPlayerSpec: %v", err)
	}
	if spec.Movement.Run.Speed != 4 || spec.Movement.Sprint.Acceleration != 0.5 {
		t.Fatalf("unexpected movement: %+v", spec.Movement)
	}
	if spec.Vertical.Gravity != 25 || spec.Vertical.SlopeForce != 100 {
		t.Fatalf("unexpected vertical: %+v", spec.Vertical)
	}
	if !spec.Movement.HoldToSprint {
		t.Fatalf("hold_to_sprint should default on")
	}
	if got := spec.Ground.Capsule.Center.Vec(); got != [3]float64{0, 0.05, 0} {
		t.Fatalf("capsule center = %v", got)
	}
	if spec.Guards["sprint"] != "sprint_guard.tengo" {
		t.Fatalf("guards = %v", spec.Guards)
	}
}

func TestLoadPrefersDisk(t *testing.T) {
	d := t.TempDir()
	useDir(t, d)

	src, err := PrefabsFS.ReadFile("player.yaml")
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(src, &raw); err != nil {
		t.Fatal(err)
	}
	raw["name"] = "override"
	out, err := yaml.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(d, "player.yaml"), out, 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := LoadPlayerSpec()
	if err != nil {
		t.Fatalf("LoadPlayerSpec: %v", err)
	}
	if spec.Name != "override" {
		t.Fatalf("name = %q, want the disk copy", spec.Name)
	}
}

func TestLoadSpecErrors(t *testing.T) {
	d := t.TempDir()
	useDir(t, d)

	if _, err := LoadSpec[PlayerSpec]("missing.yaml"); err == nil {
		t.Fatalf("missing file should fail")
	}

	if err := os.WriteFile(filepath.Join(d, "broken.yaml"), []byte("movement: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSpec[PlayerSpec]("broken.yaml"); err == nil {
		t.Fatalf("broken yaml should fail")
	}
}

func TestPlayerSpecValidate(t *testing.T) {
	base, err := LoadSpec[PlayerSpec]("player.yaml")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		mutate func(s *PlayerSpec)
	}{
		{"zero_run_speed", func(s *PlayerSpec) { s.Movement.Run.Speed = 0 }},
		{"negative_drag", func(s *PlayerSpec) { s.Movement.Drag = -1 }},
		{"no_gravity", func(s *PlayerSpec) { s.Vertical.Gravity = 0 }},
		{"pitch_inverted", func(s *PlayerSpec) { s.Camera.PitchMin, s.Camera.PitchMax = 10, -10 }},
		{"bad_center", func(s *PlayerSpec) { s.Ground.Capsule.Center = Vec3Spec{1, 2} }},
		{"zero_radius", func(s *PlayerSpec) { s.Body.Radius = 0 }},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("default spec invalid: %v", err)
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := base
			c.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("got %v, want ErrInvalidSpec", err)
			}
		})
	}
}

func TestLoadTerrainSpec(t *testing.T) {
	useDir(t, t.TempDir())

	spec, err := LoadTerrainSpec("")
	if err != nil {
		t.Fatalf("LoadTerrainSpec: %v", err)
	}
	if len(spec.Layers) == 0 || len(spec.Platforms) == 0 {
		t.Fatalf("empty terrain: %+v", spec)
	}
	for _, p := range spec.Platforms {
		if p.Color.Color == nil {
			t.Fatalf("platform %q has no color", p.Name)
		}
	}

	bad := TerrainSpec{Layers: []string{"ground"}, Platforms: []PlatformSpec{{Name: "flat", Min: Vec3Spec{1, 0, 1}, Max: Vec3Spec{0, 1, 2}}}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("inverted platform: got %v", err)
	}
}

func TestYAMLColor(t *testing.T) {
	cases := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: `"#ff8000"`, want: color.NRGBA{R: 255, G: 128, A: 255}},
		{in: `"#00000080"`, want: color.NRGBA{A: 128}},
		{in: `"#zz0000"`, wantErr: true},
		{in: `"#fff"`, wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			var got YAMLColor
			err := yaml.Unmarshal([]byte(c.in), &got)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Color != c.want {
				t.Fatalf("color = %v, want %v", got.Color, c.want)
			}
		})
	}

	var named YAMLColor
	if err := yaml.Unmarshal([]byte("SteelBlue"), &named); err != nil {
		t.Fatalf("named color: %v", err)
	}
	if r, g, b, _ := named.RGBA(); r>>8 != 70 || g>>8 != 130 || b>>8 != 180 {
		t.Fatalf("steelblue = %v", named.Color)
	}
}

func TestLoadScript(t *testing.T) {
	useDir(t, t.TempDir())
	for _, name := range []string{"sprint_guard.tengo", "scripts/sprint_guard.tengo", "prefabs/scripts/sprint_guard.tengo"} {
		if _, err := LoadScript(name); err != nil {
			t.Fatalf("LoadScript(%q): %v", name, err)
		}
	}
}

func TestDebouncer(t *testing.T) {
	d := debouncer{window: 100 * time.Millisecond, last: map[string]time.Time{}}
	t0 := time.Unix(0, 0)

	if !d.admit("a.yaml", t0) {
		t.Fatalf("first event should pass")
	}
	if d.admit("a.yaml", t0.Add(50*time.Millisecond)) {
		t.Fatalf("event inside the window should be dropped")
	}
	if !d.admit("b.yaml", t0.Add(50*time.Millisecond)) {
		t.Fatalf("other paths are debounced separately")
	}
	if !d.admit("a.yaml", t0.Add(150*time.Millisecond)) {
		t.Fatalf("event after the window should pass")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		event fsnotify.Event
		ok    bool
		kind  ChangeKind
	}{
		{fsnotify.Event{Name: "/p/player.yaml", Op: fsnotify.Write}, true, SpecChanged},
		{fsnotify.Event{Name: "/p/terrain.YML", Op: fsnotify.Create}, true, SpecChanged},
		{fsnotify.Event{Name: "/p/scripts/g.tengo", Op: fsnotify.Rename}, true, ScriptChanged},
		{fsnotify.Event{Name: "/p/notes.txt", Op: fsnotify.Write}, false, 0},
		{fsnotify.Event{Name: "/p/player.yaml", Op: fsnotify.Chmod}, false, 0},
	}
	for _, c := range cases {
		t.Run(c.event.String(), func(t *testing.T) {
			got, ok := classify(c.event)
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v", ok, c.ok)
			}
			if ok && got.Kind != c.kind {
				t.Fatalf("kind = %v, want %v", got.Kind, c.kind)
			}
		})
	}
}

func TestWatcherReportsEdits(t *testing.T) {
	d := t.TempDir()
	w, err := NewWatcher(10*time.Millisecond, d)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(d, "player.yaml")
	if err := os.WriteFile(path, []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-w.Events:
		if c.Name != "player.yaml" || c.Kind != SpecChanged {
			t.Fatalf("change = %+v", c)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatalf("no event within 2s")
	}
}
