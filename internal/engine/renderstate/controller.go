// Package renderstate tracks per-frame render state: the accumulation frame
// index, the edge-triggered reset request and the debug toggles.
package renderstate

import "time"

// Flags are the toggles a frame observes.
type Flags struct {
	// SceneCamera is true when the rendered view is the scene camera, false
	// when the helper camera is active.
	SceneCamera bool
	Wireframe   bool
	Normals     bool
	GlobalAxis  bool
	GUIFocused  bool
}

// Frame is the snapshot taken by Begin.
type Frame struct {
	Flags
	// Index is the accumulation denominator for this frame, starting at 1.
	Index uint32
	// Reset is true when this frame must discard the accumulated image.
	Reset bool
	// Delta is the time since the previous Begin.
	Delta time.Duration
}

// Controller is owned by the render thread.
type Controller struct {
	flags      Flags
	resetReq   bool
	frameIndex uint32

	inFrame  bool
	observed bool

	now       func() time.Time
	start     time.Time
	lastBegin time.Time
	delta     time.Duration
	frames    uint64
}

// New returns a controller with the scene camera active and frame index 1.
func New() *Controller {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Controller {
	t := now()
	return &Controller{
		flags:      Flags{SceneCamera: true},
		frameIndex: 1,
		now:        now,
		start:      t,
		lastBegin:  t,
	}
}

// RequestReset asks the next frame to restart accumulation.
func (c *Controller) RequestReset() {
	c.resetReq = true
}

// ResetPending reports whether a reset has been requested but not consumed.
func (c *Controller) ResetPending() bool {
	return c.resetReq
}

// Begin snapshots the flags for one frame and consumes a pending reset.
func (c *Controller) Begin() Frame {
	t := c.now()
	c.delta = t.Sub(c.lastBegin)
	c.lastBegin = t

	c.observed = c.resetReq
	c.resetReq = false
	c.inFrame = true

	return Frame{
		Flags: c.flags,
		Index: c.frameIndex,
		Reset: c.observed,
		Delta: c.delta,
	}
}

// Complete advances the frame index: back to 1 after a reset frame,
// otherwise by one.
func (c *Controller) Complete() {
	if !c.inFrame {
		return
	}
	if c.observed {
		c.frameIndex = 1
	} else {
		c.frameIndex++
	}
	c.inFrame = false
	c.observed = false
	c.frames++
}

// FrameIndex returns the index the next frame will use.
func (c *Controller) FrameIndex() uint32 {
	return c.frameIndex
}

// Flags returns the current toggles.
func (c *Controller) Flags() Flags {
	return c.flags
}

// ToggleCamera switches between the scene and the helper camera and requests a reset.
func (c *Controller) ToggleCamera() bool {
	c.flags.SceneCamera = !c.flags.SceneCamera
	c.RequestReset()
	return c.flags.SceneCamera
}

// SceneChanged requests a reset after the scene contents were replaced or edited.
func (c *Controller) SceneChanged() {
	c.RequestReset()
}

// ToggleWireframe toggles mesh bounding-box wireframes.
func (c *Controller) ToggleWireframe() bool {
	c.flags.Wireframe = !c.flags.Wireframe
	return c.flags.Wireframe
}

// ToggleNormals toggles mesh normal lines.
func (c *Controller) ToggleNormals() bool {
	c.flags.Normals = !c.flags.Normals
	return c.flags.Normals
}

// ToggleGlobalAxis toggles the world axis helper.
func (c *Controller) ToggleGlobalAxis() bool {
	c.flags.GlobalAxis = !c.flags.GlobalAxis
	return c.flags.GlobalAxis
}

// SetGUIFocused records whether input goes to the editor instead of the camera.
func (c *Controller) SetGUIFocused(focused bool) {
	c.flags.GUIFocused = focused
}

// Delta returns the duration of the last frame.
func (c *Controller) Delta() time.Duration {
	return c.delta
}

// Elapsed returns the time since the controller was created.
func (c *Controller) Elapsed() time.Duration {
	return c.now().Sub(c.start)
}

// Frames returns the number of completed frames.
func (c *Controller) Frames() uint64 {
	return c.frames
}
