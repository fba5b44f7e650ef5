package main

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/fpslocomotion/common"
	"github.com/milk9111/fpslocomotion/locomotion"
	"github.com/milk9111/fpslocomotion/terrain"
)

// hudAnimator stands in for a character animator: it keeps the last value
// written to each named parameter so the HUD can list them.
type hudAnimator struct {
	bools  map[string]bool
	floats map[string]float64
}

func newHUDAnimator() *hudAnimator {
	return &hudAnimator{bools: map[string]bool{}, floats: map[string]float64{}}
}

func (a *hudAnimator) SetBool(name string, v bool)     { a.bools[name] = v }
func (a *hudAnimator) SetFloat(name string, v float64) { a.floats[name] = v }

func (a *hudAnimator) lines() []string {
	out := make([]string, 0, len(a.bools)+len(a.floats))
	for name, v := range a.bools {
		if v {
			out = append(out, name)
		}
	}
	for name, v := range a.floats {
		out = append(out, fmt.Sprintf("%s=%.2f", name, v))
	}
	sort.Strings(out)
	return out
}

// drawScene renders the level from above, centred on the player. Screen up
// is world +Z.
func drawScene(screen *ebiten.Image, world *terrain.World, body *terrain.Body, c *locomotion.Controller, scale float64) {
	screen.Fill(colornames.Midnightblue)

	pose := c.Pose()
	w, h := float64(baseWidth), float64(baseHeight)
	toScreen := func(x, z float64) (float32, float32) {
		return float32(w/2 + (x-pose.Position.X())*scale), float32(h/2 - (z-pose.Position.Z())*scale)
	}

	for _, p := range world.Platforms() {
		x0, y0 := toScreen(p.Min.X(), p.Max.Z())
		x1, y1 := toScreen(p.Max.X(), p.Min.Z())
		vector.FillRect(screen, x0, y0, x1-x0, y1-y0, shade(p.Color, p.Max.Y()), false)
		vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, colornames.Black, false)
	}

	px, py := toScreen(pose.Position.X(), pose.Position.Z())
	radius := float32(body.Config().Radius * scale)
	vector.FillCircle(screen, px, py, radius, colornames.Orange, true)

	drawFacing(screen, px, py, pose.BodyYaw, float32(scale), colornames.White)
	drawFacing(screen, px, py, pose.CameraYaw, float32(scale)*1.5, colornames.Lime)
}

func drawFacing(screen *ebiten.Image, x, y float32, yaw float64, length float32, clr color.Color) {
	fwd, _ := common.YawBasis(yaw)
	vector.StrokeLine(screen, x, y, x+float32(fwd.X())*length, y-float32(fwd.Z())*length, 2, clr, true)
}

// shade darkens low platforms so heights read at a glance.
func shade(c color.Color, top float64) color.Color {
	if c == nil {
		c = colornames.Gray
	}
	r, g, b, _ := c.RGBA()
	k := mgl64.Clamp(0.55+top*0.1, 0.3, 1)
	return color.RGBA{
		R: uint8(float64(r>>8) * k),
		G: uint8(float64(g>>8) * k),
		B: uint8(float64(b>>8) * k),
		A: 255,
	}
}

func drawHUD(screen *ebiten.Image, c *locomotion.Controller, anim *hudAnimator, frames int) {
	ctx := c.Context()
	pose := c.Pose()

	states := make([]string, 0, 2)
	for _, id := range c.Machine().Active() {
		states = append(states, string(id))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Frames: %d    FPS: %.2f\n", frames, ebiten.ActualFPS())
	fmt.Fprintf(&b, "states: %s\n", strings.Join(states, ", "))
	fmt.Fprintf(&b, "pos: (%.2f, %.2f, %.2f)  grounded: %v  timer: %.2f\n",
		pose.Position.X(), pose.Position.Y(), pose.Position.Z(), ctx.Grounded, ctx.GroundedTimer)
	fmt.Fprintf(&b, "lateral: %.2f m/s  vertical: %.2f m/s\n", ctx.LateralSpeed(), ctx.VerticalVelocity)
	fmt.Fprintf(&b, "yaw body/camera: %.1f / %.1f  pitch: %.1f  mismatch: %.1f\n",
		pose.BodyYaw, pose.CameraYaw, pose.CameraPitch, ctx.RotationMismatch)
	fmt.Fprintf(&b, "sprint: %v  walk: %v  normal: (%.2f, %.2f, %.2f)\n",
		ctx.SprintToggled, ctx.WalkToggled, ctx.GroundNormal.X(), ctx.GroundNormal.Y(), ctx.GroundNormal.Z())
	b.WriteString("anim: " + strings.Join(anim.lines(), " "))

	ebitenutil.DebugPrint(screen, b.String())
}
