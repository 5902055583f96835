// Package panel draws the scene editor with Dear ImGui.
package panel

import (
	"errors"
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/editor"
	"github.com/Faultbox/pathlight/internal/logger"
	"github.com/Faultbox/pathlight/internal/scene"
)

// Panel is the "Settings" window.
type Panel struct {
	ed *editor.Editor

	collapsed bool
	toggled   bool

	// picked receives paths from the native file dialog goroutine.
	picked     chan string
	dialogOpen bool

	log *zap.Logger
}

// New returns a collapsed panel over ed.
func New(ed *editor.Editor) *Panel {
	return &Panel{
		ed:        ed,
		collapsed: true,
		toggled:   true,
		picked:    make(chan string, 1),
		log:       logger.Named("panel"),
	}
}

// Toggle collapses or expands the panel.
func (p *Panel) Toggle() {
	p.collapsed = !p.collapsed
	p.toggled = true
}

// Draw builds the panel for this frame. Errors mean a collaborator was never
// linked and are not recoverable.
func (p *Panel) Draw() error {
	p.drainDialog()

	imgui.SetNextWindowPosV(imgui.NewVec2(0, 0), imgui.CondOnce, imgui.NewVec2(0, 0))
	if p.toggled {
		imgui.SetNextWindowCollapsedV(p.collapsed, imgui.CondAlways)
		p.toggled = false
	}

	var err error
	if imgui.Begin("Settings") {
		err = errors.Join(
			p.drawCamera(),
			p.drawRender(),
			p.drawSpheres(),
			p.drawScene(),
			p.drawOther(),
		)
	}
	imgui.End()
	return err
}

func (p *Panel) drawCamera() error {
	if !imgui.TreeNodeExStrV("Free camera", imgui.TreeNodeFlagsNone) {
		return nil
	}
	defer imgui.TreePop()

	s, err := p.ed.Camera()
	if err != nil {
		return err
	}
	slider("Near##cam", &s.Near, editor.NearRange, "%.2f")
	slider("Far##cam", &s.Far, editor.FarRange, "%.0f")
	slider("Speed##cam", &s.Speed, editor.SpeedRange, "%.1f")
	slider("FOV##cam", &s.FOV, editor.FOVRange, "%.0f")
	_, err = p.ed.SetCamera(s)
	return err
}

func (p *Panel) drawRender() error {
	if !imgui.TreeNodeExStrV("Render", imgui.TreeNodeFlagsDefaultOpen) {
		return nil
	}
	defer imgui.TreePop()

	s, err := p.ed.Render()
	if err != nil {
		return err
	}
	imgui.SliderIntV("Rays per pixel", &s.RaysPerPixel, 1, editor.MaxRaysPerPixel, "%d", imgui.SliderFlagsNone)
	imgui.SliderIntV("Bounces", &s.RayBounces, 0, editor.MaxRayBounces, "%d", imgui.SliderFlagsNone)
	imgui.Checkbox("Environment light", &s.EnableEnvLight)
	color("Ground", &s.GroundColor)
	color("Sky horizon", &s.SkyHorizonColor)
	color("Sky zenith", &s.SkyZenithColor)
	slider("Sun focus", &s.SunFocus, editor.SunFocusRange, "%.0f")
	slider("Sun intensity", &s.SunIntensity, editor.SunIntensityRange, "%.1f")
	imgui.Separator()
	slider("Diverge", &s.DivergeStrength, editor.LensRange, "%.2f")
	slider("Defocus", &s.DefocusStrength, editor.LensRange, "%.2f")
	slider("Focus distance", &s.FocusDistance, editor.FocusRange, "%.1f")
	_, err = p.ed.SetRender(s)
	return err
}

func (p *Panel) drawSpheres() error {
	n, err := p.ed.NumSpheres()
	if err != nil || n == 0 {
		return err
	}
	if !imgui.TreeNodeExStrV("Spheres", imgui.TreeNodeFlagsNone) {
		return nil
	}
	defer imgui.TreePop()

	for i := 0; i < n; i++ {
		if !imgui.TreeNodeExStrV(fmt.Sprintf("Sphere %d", i), imgui.TreeNodeFlagsNone) {
			continue
		}
		err := p.drawSphere(i)
		imgui.TreePop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Panel) drawSphere(i int) error {
	s, err := p.ed.Sphere(i)
	if err != nil {
		return err
	}
	id := fmt.Sprintf("##sphere%d", i)
	imgui.DragFloat3V("Position"+id, (*[3]float32)(&s.Position), 0.1, 0, 0, "%.2f", imgui.SliderFlagsNone)
	slider("Radius"+id, &s.Radius, editor.RadiusRange, "%.2f")
	color("Color"+id, &s.Color)
	color("Emission"+id, &s.EmissionColor)
	slider("Emission strength"+id, &s.EmissionStrength, editor.EmissionRange, "%.1f")
	color("Specular"+id, &s.SpecularColor)
	slider("Specular probability"+id, &s.SpecularProbability, editor.UnitRange, "%.2f")
	slider("Smoothness"+id, &s.Smoothness, editor.UnitRange, "%.2f")
	imgui.Checkbox("Checkered"+id, &s.Checkered)
	_, err = p.ed.SetSphere(i, s)
	return err
}

func (p *Panel) drawScene() error {
	if !imgui.TreeNodeExStrV("Scene", imgui.TreeNodeFlagsDefaultOpen) {
		return nil
	}
	defer imgui.TreePop()

	current := p.ed.Variant()
	imgui.Text(fmt.Sprintf("Current: %s", current))
	for i, v := range scene.Variants {
		if v == scene.CustomMesh {
			continue
		}
		if i > 0 {
			imgui.SameLine()
		}
		if imgui.Button(v.String()) {
			p.ed.RequestVariant(v)
		}
	}

	if p.dialogOpen {
		imgui.Text("Choosing a model...")
	} else if imgui.Button("Load mesh...") {
		p.openFileDialog()
	}
	return nil
}

func (p *Panel) drawOther() error {
	if !imgui.TreeNodeExStrV("Other", imgui.TreeNodeFlagsNone) {
		return nil
	}
	defer imgui.TreePop()

	on, err := p.ed.GlobalAxis()
	if err != nil {
		return err
	}
	imgui.Checkbox("Show global axis", &on)
	_, err = p.ed.SetGlobalAxis(on)
	return err
}

// openFileDialog shows a native file dialog without blocking the frame. The
// result is picked up by the next Draw.
func (p *Panel) openFileDialog() {
	p.dialogOpen = true
	go func() {
		filename, err := dialog.File().
			Filter("Wavefront OBJ", "obj").
			Filter("All Files", "*").
			Title("Load mesh").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				p.log.Warn("file dialog failed", zap.Error(err))
			}
			filename = ""
		}
		p.picked <- filename
	}()
}

func (p *Panel) drainDialog() {
	select {
	case path := <-p.picked:
		p.dialogOpen = false
		if p.ed.RequestCustomMesh(path) {
			p.log.Info("custom mesh requested", zap.String("path", path))
		}
	default:
	}
}

func slider(label string, v *float32, r editor.Range, format string) bool {
	return imgui.SliderFloatV(label, v, r.Min, r.Max, format, imgui.SliderFlagsNone)
}

func color(label string, c *mgl32.Vec3) bool {
	return imgui.ColorEdit3(label, (*[3]float32)(c))
}
