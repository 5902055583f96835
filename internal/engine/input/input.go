// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/pathlight/internal/controls"
)

// Event types the application reacts to besides key state.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	RelX   int
	RelY   int
	Button uint8
}

var keymap = map[sdl.Scancode]controls.Key{
	sdl.SCANCODE_Q:      controls.KeyQ,
	sdl.SCANCODE_ESCAPE: controls.KeyEscape,
	sdl.SCANCODE_R:      controls.KeyR,
	sdl.SCANCODE_E:      controls.KeyE,
	sdl.SCANCODE_F:      controls.KeyF,
	sdl.SCANCODE_C:      controls.KeyC,
	sdl.SCANCODE_1:      controls.Key1,
	sdl.SCANCODE_2:      controls.Key2,
	sdl.SCANCODE_3:      controls.Key3,
	sdl.SCANCODE_4:      controls.Key4,
	sdl.SCANCODE_5:      controls.Key5,
	sdl.SCANCODE_6:      controls.Key6,
	sdl.SCANCODE_W:      controls.KeyW,
	sdl.SCANCODE_A:      controls.KeyA,
	sdl.SCANCODE_S:      controls.KeyS,
	sdl.SCANCODE_D:      controls.KeyD,
	sdl.SCANCODE_SPACE:  controls.KeySpace,
	sdl.SCANCODE_LCTRL:  controls.KeyLCtrl,
	sdl.SCANCODE_LSHIFT: controls.KeyLShift,
	sdl.SCANCODE_F12:    controls.KeyF12,
}

// Input handles all input processing.
type Input struct {
	events []Event
	state  controls.State
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and folds them into the control state.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.beginFrame()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		i.handle(event)
	}
	return i.state.Quit
}

// handle folds one SDL event into the control state.
func (i *Input) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		i.state.Quit = true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		}

	case *sdl.KeyboardEvent:
		down := e.Type == sdl.KEYDOWN
		if k, ok := keymap[e.Keysym.Scancode]; ok && e.Repeat == 0 {
			i.state.SetDown(k, down)
		}
		typ := EventKeyUp
		if down {
			typ = EventKeyDown
		}
		i.events = append(i.events, Event{Type: typ, Key: e.Keysym.Scancode})

	case *sdl.MouseMotionEvent:
		i.state.AddMouse(float32(e.XRel), float32(e.YRel))
		i.events = append(i.events, Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			RelX:   int(e.XRel),
			RelY:   int(e.YRel),
		})

	case *sdl.MouseButtonEvent:
		typ := EventMouseUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			typ = EventMouseDown
		}
		i.events = append(i.events, Event{
			Type:   typ,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			Button: e.Button,
		})
	}
}

// beginFrame clears per-frame state.
func (i *Input) beginFrame() {
	i.events = i.events[:0]
	i.state.EndFrame()
}

// State returns the control state accumulated since the last Update.
func (i *Input) State() *controls.State {
	return &i.state
}

// Resized returns the last window size reported since the last Update.
func (i *Input) Resized() (width, height int, ok bool) {
	for _, e := range i.events {
		if e.Type == EventWindowResize {
			width, height, ok = e.Width, e.Height, true
		}
	}
	return width, height, ok
}

// SetMouseCaptured hides the cursor and reports relative motion while captured.
func SetMouseCaptured(captured bool) {
	sdl.SetRelativeMouseMode(captured)
}
