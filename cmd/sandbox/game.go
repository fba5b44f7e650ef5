package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/fpslocomotion/animation"
	"github.com/milk9111/fpslocomotion/input/device"
	"github.com/milk9111/fpslocomotion/locomotion"
	"github.com/milk9111/fpslocomotion/logger"
	"github.com/milk9111/fpslocomotion/loop"
	"github.com/milk9111/fpslocomotion/prefabs"
	"github.com/milk9111/fpslocomotion/script"
	"github.com/milk9111/fpslocomotion/terrain"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// killPlaneY respawns the player once their feet drop below it.
	killPlaneY = -20
)

type Game struct {
	cfg config
	log *slog.Logger

	spec  *prefabs.PlayerSpec
	world *terrain.World
	body  *terrain.Body

	controller *locomotion.Controller
	scheduler  *loop.Scheduler
	poller     *device.Poller
	watcher    *prefabs.Watcher
	anim       *hudAnimator

	frames int
}

func NewGame(cfg config) (*Game, error) {
	g := &Game{cfg: cfg, log: logger.For("sandbox"), anim: newHUDAnimator()}

	spec, err := prefabs.LoadPlayerSpec()
	if err != nil {
		return nil, err
	}
	g.spec = spec

	if err := g.loadWorld(); err != nil {
		return nil, err
	}

	tuning, err := locomotion.TuningFromSpec(spec, g.world.Layers())
	if err != nil {
		return nil, err
	}

	step := 1.0 / float64(cfg.TPS)
	bodyCfg := terrain.DefaultBodyConfig()
	bodyCfg.Radius = spec.Body.Radius
	bodyCfg.Height = spec.Body.Height
	bodyCfg.StepHeight = spec.Body.StepHeight
	bodyCfg.FixedStep = step
	g.body = terrain.NewBody(g.world, bodyCfg, spawnPoint(spec))

	guards, err := script.LoadSet(spec.Guards)
	if err != nil {
		return nil, err
	}
	bindings, err := animation.NewBindings(spec.Animation.Params)
	if err != nil {
		return nil, err
	}

	g.controller, err = locomotion.New(locomotion.Deps{
		Body:   g.body,
		Probe:  g.world,
		Sink:   animation.Bind(g.anim, bindings),
		Guards: guards,
		Tuning: &tuning,
	})
	if err != nil {
		return nil, err
	}
	g.controller.Face(spec.Body.SpawnYaw)

	g.scheduler = loop.NewScheduler(step)
	g.scheduler.Add(g.controller)
	g.poller = device.NewPoller(device.DefaultKeys())

	if cfg.Watch {
		dirs := []string{prefabs.Dir(), filepath.Join(prefabs.Dir(), "scripts")}
		w, err := prefabs.NewWatcher(prefabs.DefaultDebounce, dirs...)
		if err != nil {
			// The embedded prefabs still work without a directory to watch.
			g.log.Warn("prefab watch disabled", "dirs", dirs, "err", err)
		} else {
			g.watcher = w
		}
	}

	g.log.Info("sandbox ready", "terrain", cfg.Terrain, "platforms", len(g.world.Platforms()), "tps", cfg.TPS)
	return g, nil
}

func spawnPoint(spec *prefabs.PlayerSpec) mgl64.Vec3 {
	p := spec.Body.Spawn.Vec()
	return mgl64.Vec3{p[0], p[1], p[2]}
}

func (g *Game) loadWorld() error {
	world, err := buildWorld(g.cfg.Terrain)
	if err != nil {
		return err
	}
	g.world = world
	return nil
}

func buildWorld(name string) (*terrain.World, error) {
	spec, err := prefabs.LoadTerrainSpec(name)
	if err != nil {
		return nil, err
	}
	return terrain.Build(spec)
}

func (g *Game) Update() error {
	g.frames++
	if device.QuitRequested() {
		return ebiten.Termination
	}
	if !ebiten.IsFocused() {
		g.poller.Reset()
		g.scheduler.Reset()
		return nil
	}

	g.drainWatcher()

	g.poller.Update(g.controller)
	g.scheduler.Tick(g.scheduler.FixedStep())

	if g.body.Below(killPlaneY) {
		g.log.Info("respawn", "position", fmt.Sprintf("%.2v", g.body.Position()))
		g.body.Teleport(spawnPoint(g.spec))
		g.controller.Face(g.spec.Body.SpawnYaw)
	}
	return nil
}

// drainWatcher applies pending prefab edits between frames.
func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case ch, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(ch)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("prefab watch", "err", err)
			}
		default:
			return
		}
	}
}

func (g *Game) reload(ch prefabs.Change) {
	log := g.log.With("file", ch.Name, "kind", ch.Kind)

	switch {
	case ch.Kind == prefabs.ScriptChanged:
		guards, err := script.LoadSet(g.spec.Guards)
		if err != nil {
			log.Warn("guard reload failed", "err", err)
			return
		}
		g.controller.SetGuards(guards)
		log.Info("guards reloaded")

	case ch.Name == "player.yaml":
		spec, err := prefabs.LoadPlayerSpec()
		if err != nil {
			log.Warn("player reload failed", "err", err)
			return
		}
		tuning, err := locomotion.TuningFromSpec(spec, g.world.Layers())
		if err != nil {
			log.Warn("player reload failed", "err", err)
			return
		}
		g.spec = spec
		g.controller.ApplyTuning(tuning)

	case ch.Name == filepath.Base(g.cfg.Terrain):
		world, err := buildWorld(g.cfg.Terrain)
		if err != nil {
			log.Warn("terrain reload failed", "err", err)
			return
		}
		tuning, err := locomotion.TuningFromSpec(g.spec, world.Layers())
		if err != nil {
			log.Warn("terrain reload failed", "err", err)
			return
		}
		g.world = world
		g.body.SetWorld(world)
		g.controller.SetTerrain(world, tuning)
		log.Info("terrain reloaded", "platforms", len(world.Platforms()))
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawScene(screen, g.world, g.body, g.controller, g.cfg.Scale)
	drawHUD(screen, g.controller, g.anim, g.frames)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() {
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			g.log.Warn("close watcher", "err", err)
		}
	}
}
