// Package controls maps keyboard and mouse state to render-state toggles,
// camera motion and application actions.
package controls

import (
	"github.com/Faultbox/pathlight/internal/engine/camera"
	"github.com/Faultbox/pathlight/internal/engine/renderstate"
	"github.com/Faultbox/pathlight/internal/scene"
)

// Key is a key the controls react to.
type Key int

const (
	KeyQ Key = iota
	KeyEscape
	KeyR
	KeyE
	KeyF
	KeyC
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	KeyW
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyLCtrl
	KeyLShift
	KeyF12
	numKeys
)

// ShiftMultiplier scales camera speed while shift is held.
const ShiftMultiplier = 5

// State is the keyboard and mouse state seen by one frame.
type State struct {
	down    [numKeys]bool
	pressed [numKeys]bool

	// Relative mouse motion in pixels since the last frame.
	MouseDX, MouseDY float32
	// Quit is set when the window was closed.
	Quit bool
}

// SetDown records a key transition. A key going down is also pressed for
// the current frame.
func (s *State) SetDown(k Key, down bool) {
	if k < 0 || k >= numKeys {
		return
	}
	if down && !s.down[k] {
		s.pressed[k] = true
	}
	s.down[k] = down
}

// AddMouse accumulates relative mouse motion.
func (s *State) AddMouse(dx, dy float32) {
	s.MouseDX += dx
	s.MouseDY += dy
}

// Down reports whether k is held.
func (s *State) Down(k Key) bool {
	return k >= 0 && k < numKeys && s.down[k]
}

// Pressed reports whether k went down this frame.
func (s *State) Pressed(k Key) bool {
	return k >= 0 && k < numKeys && s.pressed[k]
}

// EndFrame clears per-frame edges and mouse motion. Held keys persist.
func (s *State) EndFrame() {
	s.pressed = [numKeys]bool{}
	s.MouseDX, s.MouseDY = 0, 0
}

// Actions are requests handled by the application rather than the controls.
type Actions struct {
	Quit         bool
	ToggleEditor bool
	Screenshot   bool
	// Variant is set when a scene switch was requested.
	Variant *scene.Variant
}

var variantKeys = []struct {
	key     Key
	variant scene.Variant
}{
	{Key3, scene.SphereRing},
	{Key4, scene.SingleMesh},
	{Key5, scene.MeshInRoom},
	{Key6, scene.RoomSpheres},
}

// Controls applies input to the render state and cameras.
type Controls struct {
	State        *renderstate.Controller
	SceneCamera  *camera.Camera
	HelperCamera *camera.Camera
}

// Apply handles one frame of input. dt is the frame time in seconds.
// Camera motion never requests a reset; the image re-converges as the
// running mean absorbs new samples.
func (c *Controls) Apply(s *State, dt float32) Actions {
	var a Actions
	a.Quit = s.Quit || s.Pressed(KeyQ) || s.Pressed(KeyEscape)
	a.ToggleEditor = s.Pressed(KeyE)
	a.Screenshot = s.Pressed(KeyF12)

	if s.Pressed(KeyR) {
		c.State.SetGUIFocused(!c.State.Flags().GUIFocused)
	}
	if s.Pressed(KeyC) {
		c.State.RequestReset()
	}
	if s.Pressed(KeyF) {
		c.HelperCamera.CopyPose(c.SceneCamera)
		c.State.ToggleCamera()
	}

	flags := c.State.Flags()
	if flags.GUIFocused {
		return a
	}

	if s.Pressed(Key1) {
		c.State.ToggleWireframe()
	}
	if s.Pressed(Key2) {
		c.State.ToggleNormals()
	}
	for _, vk := range variantKeys {
		if s.Pressed(vk.key) {
			a.Variant = &vk.variant
		}
	}

	cam := c.HelperCamera
	if flags.SceneCamera {
		cam = c.SceneCamera
	}
	step := dt
	if s.Down(KeyLShift) {
		step *= ShiftMultiplier
	}
	moves := []struct {
		key Key
		m   camera.Movement
	}{
		{KeyW, camera.MoveForward},
		{KeyS, camera.MoveBack},
		{KeyA, camera.MoveLeft},
		{KeyD, camera.MoveRight},
		{KeySpace, camera.MoveUp},
		{KeyLCtrl, camera.MoveDown},
	}
	for _, mv := range moves {
		if s.Down(mv.key) {
			cam.Move(mv.m, step)
		}
	}
	if s.MouseDX != 0 || s.MouseDY != 0 {
		cam.Rotate(s.MouseDX, s.MouseDY)
	}
	return a
}
