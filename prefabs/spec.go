package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSpec = errors.New("prefabs: invalid spec")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type GaitSpec struct {
	Speed        float64 `yaml:"speed"`
	Acceleration float64 `yaml:"acceleration"`
}

type MovementSpec struct {
	Walk             GaitSpec `yaml:"walk"`
	Run              GaitSpec `yaml:"run"`
	Sprint           GaitSpec `yaml:"sprint"`
	Drag             float64  `yaml:"drag"`
	MovingThreshold  float64  `yaml:"moving_threshold"`
	HoldToSprint     bool     `yaml:"hold_to_sprint"`
	StrafeForcesWalk bool     `yaml:"strafe_forces_walk"`
}

type VerticalSpec struct {
	Gravity               float64 `yaml:"gravity"`
	JumpSpeed             float64 `yaml:"jump_speed"`
	SlopeForce            float64 `yaml:"slope_force"`
	ProjectOnGroundNormal bool    `yaml:"project_on_ground_normal"`
}

type CameraSpec struct {
	LookSenseH         float64 `yaml:"look_sense_h"`
	LookSenseV         float64 `yaml:"look_sense_v"`
	PitchMin           float64 `yaml:"pitch_min"`
	PitchMax           float64 `yaml:"pitch_max"`
	RotationSpeed      float64 `yaml:"rotation_speed"`
	RotateToTargetTime float64 `yaml:"rotate_to_target_time"`
}

type CapsuleSpec struct {
	Center Vec3Spec `yaml:"center"`
	Height float64  `yaml:"height"`
	Radius float64  `yaml:"radius"`
}

type GroundSpec struct {
	Capsule         CapsuleSpec `yaml:"capsule"`
	DetectionHeight float64     `yaml:"detection_height"`
	WalkableLayers  []string    `yaml:"walkable_layers"`
}

type BodySpec struct {
	Radius     float64  `yaml:"radius"`
	Height     float64  `yaml:"height"`
	StepHeight float64  `yaml:"step_height"`
	Spawn      Vec3Spec `yaml:"spawn"`
	SpawnYaw   float64  `yaml:"spawn_yaw"`
}

type AnimationSpec struct {
	BlendSpeed float64           `yaml:"blend_speed"`
	Params     map[string]string `yaml:"params"`
}

// PlayerSpec is the locomotion tuning read from player.yaml.
type PlayerSpec struct {
	Name      string            `yaml:"name"`
	Movement  MovementSpec      `yaml:"movement"`
	Vertical  VerticalSpec      `yaml:"vertical"`
	Camera    CameraSpec        `yaml:"camera"`
	Ground    GroundSpec        `yaml:"ground"`
	Body      BodySpec          `yaml:"body"`
	Animation AnimationSpec     `yaml:"animation"`
	Guards    map[string]string `yaml:"guards"`
}

func LoadPlayerSpec() (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec]("player.yaml")
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("player.yaml: %w", err)
	}
	return &spec, nil
}

func (s *PlayerSpec) Validate() error {
	for name, g := range map[string]GaitSpec{"walk": s.Movement.Walk, "run": s.Movement.Run, "sprint": s.Movement.Sprint} {
		if g.Speed <= 0 || g.Acceleration <= 0 {
			return fmt.Errorf("%w: %s speed and acceleration must be positive", ErrInvalidSpec, name)
		}
	}
	if s.Movement.Drag < 0 || s.Movement.MovingThreshold < 0 {
		return fmt.Errorf("%w: drag and moving_threshold must not be negative", ErrInvalidSpec)
	}
	if s.Vertical.Gravity <= 0 || s.Vertical.JumpSpeed < 0 {
		return fmt.Errorf("%w: gravity must be positive and jump_speed not negative", ErrInvalidSpec)
	}
	if s.Camera.PitchMin > s.Camera.PitchMax {
		return fmt.Errorf("%w: pitch_min %.1f above pitch_max %.1f", ErrInvalidSpec, s.Camera.PitchMin, s.Camera.PitchMax)
	}
	if s.Ground.Capsule.Radius <= 0 || s.Body.Radius <= 0 || s.Body.Height <= 0 {
		return fmt.Errorf("%w: capsule and body dimensions must be positive", ErrInvalidSpec)
	}
	if err := s.Ground.Capsule.Center.validate("ground.capsule.center"); err != nil {
		return err
	}
	return s.Body.Spawn.validate("body.spawn")
}

type PlatformSpec struct {
	Name  string    `yaml:"name"`
	Layer string    `yaml:"layer"`
	Min   Vec3Spec  `yaml:"min"`
	Max   Vec3Spec  `yaml:"max"`
	Slope Vec3Spec  `yaml:"slope"`
	Color YAMLColor `yaml:"color"`
}

// TerrainSpec describes the sandbox level: named layers, in bit order, and
// axis-aligned platform boxes.
type TerrainSpec struct {
	Name      string         `yaml:"name"`
	Layers    []string       `yaml:"layers"`
	Platforms []PlatformSpec `yaml:"platforms"`
}

func LoadTerrainSpec(filename string) (*TerrainSpec, error) {
	if filename == "" {
		filename = "terrain.yaml"
	}
	spec, err := LoadSpec[TerrainSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &spec, nil
}

func (s *TerrainSpec) Validate() error {
	if len(s.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrInvalidSpec)
	}
	for i, p := range s.Platforms {
		if err := p.Min.validate(fmt.Sprintf("platforms[%d].min", i)); err != nil {
			return err
		}
		if err := p.Max.validate(fmt.Sprintf("platforms[%d].max", i)); err != nil {
			return err
		}
		if len(p.Slope) != 0 {
			if err := p.Slope.validate(fmt.Sprintf("platforms[%d].slope", i)); err != nil {
				return err
			}
		}
		lo, hi := p.Min.Vec(), p.Max.Vec()
		if lo[0] >= hi[0] || lo[1] > hi[1] || lo[2] >= hi[2] {
			return fmt.Errorf("%w: platform %q has min not below max", ErrInvalidSpec, p.Name)
		}
	}
	return nil
}

// Vec3Spec is an [x, y, z] sequence.
type Vec3Spec []float64

func (v Vec3Spec) Vec() [3]float64 {
	var out [3]float64
	copy(out[:], v)
	return out
}

func (v Vec3Spec) validate(field string) error {
	if len(v) != 0 && len(v) != 3 {
		return fmt.Errorf("%w: %s must have 3 components, got %d", ErrInvalidSpec, field, len(v))
	}
	return nil
}

// YAMLColor accepts "#rrggbb", "#rrggbbaa" or an SVG color name.
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(value.Value)]; ok {
		c.Color = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return err
		}
		rgba[i] = v
	}

	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}
