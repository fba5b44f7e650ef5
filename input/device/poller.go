// Package device reads keyboard, mouse and the first gamepad through ebiten
// and feeds the snapshots to an input.Dispatcher.
package device

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/fpslocomotion/input"
)

const (
	stickDeadzone = 0.2
	// stickLookScale turns a fully deflected right stick into a per-frame
	// look delta comparable to mouse pixels.
	stickLookScale = 12.0
)

type Keys struct {
	Forward []ebiten.Key
	Back    []ebiten.Key
	Left    []ebiten.Key
	Right   []ebiten.Key
	Jump    []ebiten.Key
	Sprint  []ebiten.Key
	Walk    []ebiten.Key
}

func DefaultKeys() Keys {
	return Keys{
		Forward: []ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp},
		Back:    []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown},
		Left:    []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft},
		Right:   []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight},
		Jump:    []ebiten.Key{ebiten.KeySpace},
		Sprint:  []ebiten.Key{ebiten.KeyShiftLeft},
		Walk:    []ebiten.Key{ebiten.KeyControlLeft, ebiten.KeyC},
	}
}

// Poller samples devices once per frame. Mouse look is the cursor delta
// since the previous poll, so the window should capture the cursor.
type Poller struct {
	Keys Keys

	disp   input.Dispatcher
	lastX  int
	lastY  int
	primed bool
}

func NewPoller(keys Keys) *Poller {
	return &Poller{Keys: keys}
}

// Poll reads the current device state.
func (p *Poller) Poll() input.State {
	var s input.State

	keys := mgl64.Vec2{
		input.Axis(anyPressed(p.Keys.Left), anyPressed(p.Keys.Right)),
		input.Axis(anyPressed(p.Keys.Back), anyPressed(p.Keys.Forward)),
	}
	s.Jump = anyPressed(p.Keys.Jump)
	s.Sprint = anyPressed(p.Keys.Sprint)
	s.Walk = anyPressed(p.Keys.Walk)

	x, y := ebiten.CursorPosition()
	if p.primed {
		// Screen y grows downward; look y is positive upward.
		s.Look = mgl64.Vec2{float64(x - p.lastX), float64(p.lastY - y)}
	}
	p.lastX, p.lastY, p.primed = x, y, true

	var stick mgl64.Vec2
	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		stick = input.Deadzone(mgl64.Vec2{
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
			-ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
		}, stickDeadzone)

		look := input.Deadzone(mgl64.Vec2{
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal),
			-ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical),
		}, stickDeadzone)
		s.Look = s.Look.Add(look.Mul(stickLookScale))

		s.Jump = s.Jump || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
		s.Sprint = s.Sprint || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftStick)
		s.Walk = s.Walk || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightLeft)
	}

	s.Move = input.Merge(keys, stick)
	return s
}

// Update polls and dispatches to r.
func (p *Poller) Update(r input.Receiver) {
	p.disp.Dispatch(p.Poll(), r)
}

// Reset drops held buttons and the cursor reference, e.g. after focus loss.
func (p *Poller) Reset() {
	p.disp.Reset()
	p.primed = false
}

// QuitRequested reports an Escape press this frame.
func QuitRequested() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}

func anyPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}
