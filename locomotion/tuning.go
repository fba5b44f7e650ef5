package locomotion

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/fpslocomotion/animation"
	"github.com/milk9111/fpslocomotion/ground"
	"github.com/milk9111/fpslocomotion/motion"
	"github.com/milk9111/fpslocomotion/orientation"
	"github.com/milk9111/fpslocomotion/prefabs"
)

// Gait is the lateral speed cap and per-frame acceleration of one movement mode.
type Gait struct {
	Speed        float64
	Acceleration float64
}

// Tuning gathers every constant the controller and its collaborators read.
type Tuning struct {
	Walk   Gait
	Run    Gait
	Sprint Gait

	MovingThreshold  float64
	HoldToSprint     bool
	StrafeForcesWalk bool

	Motion      motion.Config
	Orientation orientation.Config
	Ground      ground.Config

	AnimationBlendSpeed float64
}

func DefaultTuning() Tuning {
	return Tuning{
		Walk:                Gait{Speed: 2, Acceleration: 0.15},
		Run:                 Gait{Speed: 4, Acceleration: 0.25},
		Sprint:              Gait{Speed: 7, Acceleration: 0.5},
		MovingThreshold:     0.01,
		HoldToSprint:        true,
		StrafeForcesWalk:    true,
		Motion:              motion.DefaultConfig(),
		Orientation:         orientation.DefaultConfig(),
		Ground:              ground.DefaultConfig(),
		AnimationBlendSpeed: animation.DefaultBlendSpeed,
	}
}

// TuningFromSpec converts player.yaml into Tuning. Walkable layer names are
// resolved against layers; a nil table leaves every layer walkable.
func TuningFromSpec(spec *prefabs.PlayerSpec, layers *ground.LayerTable) (Tuning, error) {
	if spec == nil {
		return Tuning{}, fmt.Errorf("locomotion: nil player spec")
	}
	if err := spec.Validate(); err != nil {
		return Tuning{}, err
	}

	walkable := ground.AllLayers
	if layers != nil && len(spec.Ground.WalkableLayers) > 0 {
		m, err := layers.Mask(spec.Ground.WalkableLayers...)
		if err != nil {
			return Tuning{}, fmt.Errorf("locomotion: walkable layers: %w", err)
		}
		walkable = m
	}

	return Tuning{
		Walk:             Gait(spec.Movement.Walk),
		Run:              Gait(spec.Movement.Run),
		Sprint:           Gait(spec.Movement.Sprint),
		MovingThreshold:  spec.Movement.MovingThreshold,
		HoldToSprint:     spec.Movement.HoldToSprint,
		StrafeForcesWalk: spec.Movement.StrafeForcesWalk,
		Motion: motion.Config{
			Drag:                  spec.Movement.Drag,
			Gravity:               spec.Vertical.Gravity,
			SlopeForce:            spec.Vertical.SlopeForce,
			JumpSpeed:             spec.Vertical.JumpSpeed,
			ProjectOnGroundNormal: spec.Vertical.ProjectOnGroundNormal,
		},
		Orientation: orientation.Config{
			LookSenseH:         spec.Camera.LookSenseH,
			LookSenseV:         spec.Camera.LookSenseV,
			PitchMin:           spec.Camera.PitchMin,
			PitchMax:           spec.Camera.PitchMax,
			RotationSpeed:      spec.Camera.RotationSpeed,
			RotateToTargetTime: spec.Camera.RotateToTargetTime,
		},
		Ground: ground.Config{
			Capsule: ground.Capsule{
				Center: mgl64.Vec3(spec.Ground.Capsule.Center.Vec()),
				Height: spec.Ground.Capsule.Height,
				Radius: spec.Ground.Capsule.Radius,
			},
			Walkable:        walkable,
			DetectionHeight: spec.Ground.DetectionHeight,
		},
		AnimationBlendSpeed: spec.Animation.BlendSpeed,
	}, nil
}
