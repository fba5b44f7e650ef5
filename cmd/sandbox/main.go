// Command sandbox runs the locomotion controller over the terrain prefab in a
// top-down debug view.
package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/fpslocomotion/logger"
	"github.com/milk9111/fpslocomotion/prefabs"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logger.L().Error("config", "err", err)
		os.Exit(1)
	}

	prefabDir := flag.String("prefabs", cfg.PrefabDir, "directory whose yaml and tengo files override the embedded prefabs")
	terrain := flag.String("terrain", cfg.Terrain, "terrain prefab to load")
	watch := flag.Bool("watch", cfg.Watch, "reload prefabs when they change on disk")
	logLevel := flag.String("log", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.Parse()

	cfg.PrefabDir, cfg.Terrain, cfg.Watch, cfg.LogLevel = *prefabDir, *terrain, *watch, *logLevel

	log := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	prefabs.SetDir(cfg.PrefabDir)

	game, err := NewGame(cfg)
	if err != nil {
		log.Error("sandbox setup failed", "err", err)
		os.Exit(1)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("fpslocomotion sandbox")
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetCursorMode(ebiten.CursorModeCaptured)

	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		log.Error("game exited", "err", err)
		os.Exit(1)
	}
}
