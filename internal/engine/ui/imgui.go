// Package ui provides the Dear ImGui window backend used by the editor host.
package ui

import (
	"fmt"
	"os"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/Faultbox/pathlight/internal/controls"
	"github.com/Faultbox/pathlight/internal/engine/shader"
)

// Backend wraps the ImGui SDL backend. It owns the window and the GL context.
type Backend struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
}

// fontPaths are tried in order for a UI font; ImGui's built-in font is the fallback.
var fontPaths = []string{
	"/System/Library/Fonts/SFNS.ttf",                   // macOS
	"C:\\Windows\\Fonts\\segoeui.ttf",                  // Windows
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",  // Linux
	"/usr/share/fonts/TTF/DejaVuSans.ttf",              // Linux alt
	"/usr/share/fonts/dejavu-sans-fonts/DejaVuSans.ttf", // Fedora
}

// NewBackend creates the window and loads the GL entry points.
func NewBackend(title string, width, height int) (*Backend, error) {
	b := &Backend{}

	var err error
	b.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	// Set up font loading hook before creating window
	b.backend.SetAfterCreateContextHook(loadFont)

	b.backend.SetBgColor(imgui.NewVec4(0, 0, 0, 1))
	b.backend.CreateWindow(title, width, height)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	if err := shader.CheckVersion(); err != nil {
		return nil, err
	}
	return b, nil
}

func loadFont() {
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err == nil {
			imgui.CurrentIO().Fonts().AddFontFromFileTTF(path, 16.0)
			return
		}
	}
}

// Run starts the main render loop. It returns when the window closes.
func (b *Backend) Run(renderFunc func()) {
	b.backend.Run(renderFunc)
}

// Close asks the loop to end after the current frame.
func (b *Backend) Close() {
	b.backend.SetShouldClose(true)
}

// SetWindowTitle updates the window title.
func (b *Backend) SetWindowTitle(title string) {
	b.backend.SetWindowTitle(title)
}

// FramebufferSize returns the drawable size in pixels.
func (b *Backend) FramebufferSize() (int, int) {
	io := imgui.CurrentIO()
	size, scale := io.DisplaySize(), io.DisplayFramebufferScale()
	return int(size.X * scale.X), int(size.Y * scale.Y)
}

// DrawBackground draws a GL texture over the whole viewport, behind every
// other window. The texture is flipped since GL puts the origin bottom-left.
func (b *Backend) DrawBackground(textureID uint32) {
	if textureID == 0 {
		return
	}
	viewport := imgui.MainViewport()
	pos, size := viewport.Pos(), viewport.Size()

	imgui.SetNextWindowPos(pos)
	imgui.SetNextWindowSize(size)

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
		imgui.WindowFlagsNoScrollWithMouse | imgui.WindowFlagsNoBringToFrontOnFocus |
		imgui.WindowFlagsNoInputs | imgui.WindowFlagsNoSavedSettings

	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(0, 0))
	if imgui.BeginV("##Render", nil, flags) {
		texRef := imgui.NewTextureRefTextureID(imgui.TextureID(textureID))
		imgui.ImageV(*texRef,
			size,
			imgui.NewVec2(0, 1),
			imgui.NewVec2(1, 0))
	}
	imgui.End()
	imgui.PopStyleVar()
}

var keymap = []struct {
	key imgui.Key
	ctl controls.Key
}{
	{imgui.KeyQ, controls.KeyQ},
	{imgui.KeyEscape, controls.KeyEscape},
	{imgui.KeyR, controls.KeyR},
	{imgui.KeyE, controls.KeyE},
	{imgui.KeyF, controls.KeyF},
	{imgui.KeyC, controls.KeyC},
	{imgui.Key1, controls.Key1},
	{imgui.Key2, controls.Key2},
	{imgui.Key3, controls.Key3},
	{imgui.Key4, controls.Key4},
	{imgui.Key5, controls.Key5},
	{imgui.Key6, controls.Key6},
	{imgui.KeyW, controls.KeyW},
	{imgui.KeyA, controls.KeyA},
	{imgui.KeyS, controls.KeyS},
	{imgui.KeyD, controls.KeyD},
	{imgui.KeySpace, controls.KeySpace},
	{imgui.KeyLeftCtrl, controls.KeyLCtrl},
	{imgui.KeyLeftShift, controls.KeyLShift},
	{imgui.KeyF12, controls.KeyF12},
}

// ReadInput folds this frame's ImGui input into s. Keys typed into a widget
// are released. The mouse looks around while the right button is held
// outside any window.
func ReadInput(s *controls.State) {
	s.EndFrame()
	io := imgui.CurrentIO()

	typing := io.WantTextInput()
	for _, k := range keymap {
		s.SetDown(k.ctl, !typing && imgui.IsKeyDown(k.key))
	}

	if !io.WantCaptureMouse() && imgui.IsMouseDown(imgui.MouseButtonRight) {
		d := io.MouseDelta()
		s.AddMouse(d.X, d.Y)
	}
}
