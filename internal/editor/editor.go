// Package editor exposes the live scene to interactive editing.
//
// Every mutator returns whether it changed anything. Changes that alter the
// traced image (scene parameters, sphere records) request an accumulation
// reset; camera projection settings do not, matching camera motion.
// Accessors report ErrNotLinked when the collaborator they need was never
// linked.
package editor

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/engine/camera"
	"github.com/Faultbox/pathlight/internal/engine/renderstate"
	"github.com/Faultbox/pathlight/internal/engine/scenebuf"
	"github.com/Faultbox/pathlight/internal/logger"
	"github.com/Faultbox/pathlight/internal/scene"
)

var (
	// ErrNotLinked is returned by accessors whose collaborator is missing.
	ErrNotLinked = errors.New("editor: not linked")
	// ErrNoSphere is returned for a sphere index outside the live count.
	ErrNoSphere = errors.New("editor: no such sphere")
)

// Range is an inclusive slider range.
type Range struct {
	Min, Max float32
}

// Clamp limits v to the range.
func (r Range) Clamp(v float32) float32 {
	return math32.Max(r.Min, math32.Min(r.Max, v))
}

// Slider ranges.
var (
	NearRange         = Range{0.01, 1}
	FarRange          = Range{10, 100}
	SpeedRange        = Range{1, 50}
	FOVRange          = Range{45, 179}
	SunFocusRange     = Range{1, 1000}
	SunIntensityRange = Range{0, 100}
	LensRange         = Range{0, 10}
	FocusRange        = Range{0.1, 100}
	RadiusRange       = Range{0.05, 50}
	EmissionRange     = Range{0, 100}
	UnitRange         = Range{0, 1}
)

// Integer limits for the per-pixel ray settings.
const (
	MaxRaysPerPixel = 64
	MaxRayBounces   = 32
)

// SphereStore is the part of the scene buffer store the editor patches.
// *scenebuf.Store implements it.
type SphereStore interface {
	Spheres() []scene.Sphere
	Writer() (*scenebuf.Writer, error)
}

// CameraSettings are the editable projection settings of a camera.
type CameraSettings struct {
	Near  float32
	Far   float32
	Speed float32
	FOV   float32
}

// RenderSettings are the editable scene parameters. Record counts are owned
// by the scene builder and not part of it.
type RenderSettings struct {
	GroundColor     mgl32.Vec3
	SkyHorizonColor mgl32.Vec3
	SkyZenithColor  mgl32.Vec3
	RaysPerPixel    int32
	RayBounces      int32
	EnableEnvLight  bool
	SunFocus        float32
	SunIntensity    float32
	DivergeStrength float32
	DefocusStrength float32
	FocusDistance   float32
}

// SphereSettings are the editable fields of one sphere record.
type SphereSettings struct {
	Position            mgl32.Vec3
	Radius              float32
	Color               mgl32.Vec3
	EmissionColor       mgl32.Vec3
	EmissionStrength    float32
	SpecularColor       mgl32.Vec3
	SpecularProbability float32
	Smoothness          float32
	Checkered           bool
}

// Request is a scene switch asked for from the editor.
type Request struct {
	Variant scene.Variant
	// MeshPath is set for CustomMesh.
	MeshPath string
}

// Editor links the editable collaborators.
type Editor struct {
	camera *camera.Camera
	params *scene.Params
	state  *renderstate.Controller
	store  SphereStore

	variant scene.Variant
	pending *Request

	log *zap.Logger
}

// New returns an editor with nothing linked.
func New() *Editor {
	return &Editor{log: logger.Named("editor")}
}

// LinkCamera links the camera whose projection is edited.
func (e *Editor) LinkCamera(c *camera.Camera) { e.camera = c }

// LinkParams links the live scene parameters.
func (e *Editor) LinkParams(p *scene.Params) { e.params = p }

// LinkState links the render-state controller that receives reset requests.
func (e *Editor) LinkState(s *renderstate.Controller) { e.state = s }

// LinkStore links the scene buffers holding the sphere records.
func (e *Editor) LinkStore(s SphereStore) { e.store = s }

func notLinked(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotLinked)
}

// Camera returns the linked camera's settings.
func (e *Editor) Camera() (CameraSettings, error) {
	if e.camera == nil {
		return CameraSettings{}, notLinked("camera")
	}
	return CameraSettings{
		Near:  e.camera.Near,
		Far:   e.camera.Far,
		Speed: e.camera.Speed,
		FOV:   e.camera.FOV,
	}, nil
}

// SetCamera clamps s to the slider ranges and applies it.
func (e *Editor) SetCamera(s CameraSettings) (bool, error) {
	cur, err := e.Camera()
	if err != nil {
		return false, err
	}
	s.Near = NearRange.Clamp(s.Near)
	s.Far = FarRange.Clamp(s.Far)
	s.Speed = SpeedRange.Clamp(s.Speed)
	s.FOV = FOVRange.Clamp(s.FOV)
	if s == cur {
		return false, nil
	}
	e.camera.Near, e.camera.Far, e.camera.Speed, e.camera.FOV = s.Near, s.Far, s.Speed, s.FOV
	return true, nil
}

// Render returns the editable scene parameters.
func (e *Editor) Render() (RenderSettings, error) {
	if e.params == nil {
		return RenderSettings{}, notLinked("scene params")
	}
	p := e.params
	return RenderSettings{
		GroundColor:     p.GroundColor,
		SkyHorizonColor: p.SkyHorizonColor,
		SkyZenithColor:  p.SkyZenithColor,
		RaysPerPixel:    p.NumRaysPerPixel,
		RayBounces:      p.NumRayBounces,
		EnableEnvLight:  p.EnableEnvLight,
		SunFocus:        p.SunFocus,
		SunIntensity:    p.SunIntensity,
		DivergeStrength: p.DivergeStrength,
		DefocusStrength: p.DefocusStrength,
		FocusDistance:   p.FocusDistance,
	}, nil
}

// SetRender clamps s and applies it. A change requests a reset.
func (e *Editor) SetRender(s RenderSettings) (bool, error) {
	cur, err := e.Render()
	if err != nil {
		return false, err
	}
	if e.state == nil {
		return false, notLinked("render state")
	}

	s.GroundColor = clampColor(s.GroundColor)
	s.SkyHorizonColor = clampColor(s.SkyHorizonColor)
	s.SkyZenithColor = clampColor(s.SkyZenithColor)
	s.RaysPerPixel = min(max(s.RaysPerPixel, 1), MaxRaysPerPixel)
	s.RayBounces = min(max(s.RayBounces, 0), MaxRayBounces)
	s.SunFocus = SunFocusRange.Clamp(s.SunFocus)
	s.SunIntensity = SunIntensityRange.Clamp(s.SunIntensity)
	s.DivergeStrength = LensRange.Clamp(s.DivergeStrength)
	s.DefocusStrength = LensRange.Clamp(s.DefocusStrength)
	s.FocusDistance = FocusRange.Clamp(s.FocusDistance)
	if s == cur {
		return false, nil
	}

	p := e.params
	p.GroundColor = s.GroundColor
	p.SkyHorizonColor = s.SkyHorizonColor
	p.SkyZenithColor = s.SkyZenithColor
	p.NumRaysPerPixel = s.RaysPerPixel
	p.NumRayBounces = s.RayBounces
	p.EnableEnvLight = s.EnableEnvLight
	p.SunFocus = s.SunFocus
	p.SunIntensity = s.SunIntensity
	p.DivergeStrength = s.DivergeStrength
	p.DefocusStrength = s.DefocusStrength
	p.FocusDistance = s.FocusDistance
	e.state.RequestReset()
	return true, nil
}

// NumSpheres returns the live sphere count.
func (e *Editor) NumSpheres() (int, error) {
	if e.params == nil {
		return 0, notLinked("scene params")
	}
	return int(e.params.NumSpheres), nil
}

func (e *Editor) checkSphere(i int) error {
	n, err := e.NumSpheres()
	if err != nil {
		return err
	}
	if e.store == nil {
		return notLinked("scene buffers")
	}
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d of %d", ErrNoSphere, i, n)
	}
	return nil
}

// Sphere returns the editable fields of sphere i.
func (e *Editor) Sphere(i int) (SphereSettings, error) {
	if err := e.checkSphere(i); err != nil {
		return SphereSettings{}, err
	}
	s := e.store.Spheres()[i]
	m := s.Material
	return SphereSettings{
		Position:            s.Position,
		Radius:              s.Radius,
		Color:               m.Color.Vec3(),
		EmissionColor:       m.EmissionColor,
		EmissionStrength:    m.EmissionStrength,
		SpecularColor:       m.SpecularColor,
		SpecularProbability: m.SpecularProbability,
		Smoothness:          m.Smoothness,
		Checkered:           m.Flags&scene.MaterialFlagCheckered != 0,
	}, nil
}

// SetSphere clamps s and rewrites sphere i. Other records are untouched.
// A change requests a reset.
func (e *Editor) SetSphere(i int, s SphereSettings) (bool, error) {
	cur, err := e.Sphere(i)
	if err != nil {
		return false, err
	}
	if e.state == nil {
		return false, notLinked("render state")
	}

	s.Radius = RadiusRange.Clamp(s.Radius)
	s.Color = clampColor(s.Color)
	s.EmissionColor = clampColor(s.EmissionColor)
	s.EmissionStrength = EmissionRange.Clamp(s.EmissionStrength)
	s.SpecularColor = clampColor(s.SpecularColor)
	s.SpecularProbability = UnitRange.Clamp(s.SpecularProbability)
	s.Smoothness = UnitRange.Clamp(s.Smoothness)
	if s == cur {
		return false, nil
	}

	w, err := e.store.Writer()
	if err != nil {
		return false, fmt.Errorf("editing sphere %d: %w", i, err)
	}
	w.PatchSphere(i, func(sp *scene.Sphere) {
		sp.Position = s.Position
		sp.Radius = s.Radius
		m := &sp.Material
		m.Color = s.Color.Vec4(m.Color.W())
		m.EmissionColor = s.EmissionColor
		m.EmissionStrength = s.EmissionStrength
		m.SpecularColor = s.SpecularColor
		m.SpecularProbability = s.SpecularProbability
		m.Smoothness = s.Smoothness
		if s.Checkered {
			m.Flags |= scene.MaterialFlagCheckered
		} else {
			m.Flags &^= scene.MaterialFlagCheckered
		}
	})
	e.state.RequestReset()
	e.log.Debug("sphere edited", zap.Int("index", i))
	return true, nil
}

// GlobalAxis reports whether the world axis is drawn.
func (e *Editor) GlobalAxis() (bool, error) {
	if e.state == nil {
		return false, notLinked("render state")
	}
	return e.state.Flags().GlobalAxis, nil
}

// SetGlobalAxis shows or hides the world axis.
func (e *Editor) SetGlobalAxis(on bool) (bool, error) {
	cur, err := e.GlobalAxis()
	if err != nil || cur == on {
		return false, err
	}
	e.state.ToggleGlobalAxis()
	return true, nil
}

// Variant returns the variant currently in the scene buffers.
func (e *Editor) Variant() scene.Variant {
	return e.variant
}

// SetVariant records the variant the application built.
func (e *Editor) SetVariant(v scene.Variant) {
	e.variant = v
}

// RequestVariant asks for a scene switch. Requests for CustomMesh need a
// path and go through RequestCustomMesh.
func (e *Editor) RequestVariant(v scene.Variant) bool {
	if v == scene.CustomMesh {
		return false
	}
	e.pending = &Request{Variant: v}
	return true
}

// RequestCustomMesh asks for the CustomMesh variant with the model at path.
func (e *Editor) RequestCustomMesh(path string) bool {
	if path == "" {
		return false
	}
	e.pending = &Request{Variant: scene.CustomMesh, MeshPath: path}
	return true
}

// TakeRequest returns and clears the pending scene switch.
func (e *Editor) TakeRequest() (Request, bool) {
	if e.pending == nil {
		return Request{}, false
	}
	r := *e.pending
	e.pending = nil
	return r, true
}

func clampColor(c mgl32.Vec3) mgl32.Vec3 {
	for i := range c {
		c[i] = UnitRange.Clamp(c[i])
	}
	return c
}
