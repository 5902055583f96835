// Package app wires the renderer together: configuration, scene buffers,
// scene builder, render state, cameras, controls, editor and the
// accumulation pipeline. Hosts in app/host drive a Session from a window.
package app

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/assets"
	"github.com/Faultbox/pathlight/internal/config"
	"github.com/Faultbox/pathlight/internal/controls"
	"github.com/Faultbox/pathlight/internal/editor"
	"github.com/Faultbox/pathlight/internal/engine/accum"
	"github.com/Faultbox/pathlight/internal/engine/camera"
	"github.com/Faultbox/pathlight/internal/engine/debug"
	"github.com/Faultbox/pathlight/internal/engine/renderstate"
	"github.com/Faultbox/pathlight/internal/engine/scenebuf"
	"github.com/Faultbox/pathlight/internal/logger"
	"github.com/Faultbox/pathlight/internal/objloader"
	"github.com/Faultbox/pathlight/internal/scene"
)

// PassesFunc creates the pipeline passes once the scene buffers exist.
type PassesFunc func(store *scenebuf.Store) (accum.Passes, error)

// Options configure a Session.
type Options struct {
	Config *config.Config
	Device scenebuf.Device
	Passes PassesFunc
	// Width and Height are the initial target size in pixels.
	Width, Height int
	// ModelInfo receives the statistics table of every loaded model.
	ModelInfo io.Writer
}

// Session owns everything a host renders.
type Session struct {
	cfg *config.Config
	log *zap.Logger

	Assets       *assets.Manager
	Store        *scenebuf.Store
	Params       *scene.Params
	State        *renderstate.Controller
	SceneCamera  *camera.Camera
	HelperCamera *camera.Camera
	Editor       *editor.Editor
	Passes       accum.Passes
	Pipeline     *accum.Pipeline
	Shots        *debug.ScreenshotCapture

	builder  *scene.Builder
	controls *controls.Controls
	variant  scene.Variant
	layout   *scene.Layout
}

// New builds a session and the configured scene variant. Every error is
// fatal for the caller: nothing has been rendered yet.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config: %w", accum.ErrNotLinked)
	}
	if opts.Device == nil || opts.Passes == nil {
		return nil, fmt.Errorf("device and passes: %w", accum.ErrNotLinked)
	}

	variant, err := scene.ParseVariant(cfg.Render.Scene)
	if err != nil {
		return nil, fmt.Errorf("render.scene: %w", err)
	}
	format, err := debug.ParseImageFormat(cfg.Screenshot.Format)
	if err != nil {
		return nil, fmt.Errorf("screenshot.format: %w", err)
	}

	s := &Session{
		cfg:    cfg,
		log:    logger.Named("app"),
		Assets: assets.NewManager(),
		State:  renderstate.New(),
		Editor: editor.New(),
		Shots:  debug.NewScreenshotCapture(cfg.Screenshot.Dir, "pathlight", format),
	}
	for _, dir := range cfg.Render.AssetDirs {
		if err := s.Assets.AddDir(dir); err != nil {
			return nil, err
		}
	}

	params := ParamsFromConfig(&cfg.Render)
	s.Params = &params
	s.SceneCamera, s.HelperCamera = CamerasFromConfig(&cfg.Camera)

	s.builder = &scene.Builder{
		Loader:    &objloader.Loader{Files: s.Assets, Info: opts.ModelInfo},
		MeshPath:  cfg.Render.MeshPath,
		MeshScale: cfg.Render.MeshScale,
	}
	s.controls = &controls.Controls{
		State:        s.State,
		SceneCamera:  s.SceneCamera,
		HelperCamera: s.HelperCamera,
	}

	s.Store = scenebuf.New(opts.Device)
	if err := s.Store.AllocateScene(); err != nil {
		s.Close()
		return nil, fmt.Errorf("allocating scene buffers: %w", err)
	}

	s.Editor.LinkCamera(s.SceneCamera)
	s.Editor.LinkParams(s.Params)
	s.Editor.LinkState(s.State)
	s.Editor.LinkStore(s.Store)

	if err := s.Switch(variant, ""); err != nil {
		s.Close()
		return nil, err
	}

	s.Passes, err = opts.Passes(s.Store)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating passes: %w", err)
	}
	s.Pipeline, err = accum.New(accum.Config{
		Passes:       s.Passes,
		State:        s.State,
		Store:        s.Store,
		Params:       s.Params,
		SceneCamera:  s.SceneCamera,
		HelperCamera: s.HelperCamera,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := s.Pipeline.Resize(opts.Width, opts.Height); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// ParamsFromConfig returns the scene parameters the configuration starts with.
func ParamsFromConfig(rc *config.RenderConfig) scene.Params {
	p := scene.DefaultParams()
	p.GroundColor = rc.GroundColor
	p.SkyHorizonColor = rc.SkyHorizonColor
	p.SkyZenithColor = rc.SkyZenithColor
	p.NumRaysPerPixel = rc.RaysPerPixel
	p.NumRayBounces = rc.RayBounces
	p.SunFocus = rc.SunFocus
	p.SunIntensity = rc.SunIntensity
	p.DivergeStrength = rc.Lens.Diverge
	p.DefocusStrength = rc.Lens.Defocus
	p.FocusDistance = rc.Lens.FocusDistance
	return p
}

// CamerasFromConfig returns the scene camera and a helper camera facing it
// from behind the origin.
func CamerasFromConfig(cc *config.CameraConfig) (sceneCam, helperCam *camera.Camera) {
	sceneCam = camera.New(cc.Position, mgl32.Vec3{0, 0, -1}, cc.FOV)
	sceneCam.Yaw = mgl32.DegToRad(cc.Yaw)
	sceneCam.Pitch = mgl32.DegToRad(cc.Pitch)

	helperCam = camera.New(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 1}, cc.FOV)
	for _, c := range []*camera.Camera{sceneCam, helperCam} {
		c.Near, c.Far, c.Speed = cc.Near, cc.Far, cc.Speed
	}
	return sceneCam, helperCam
}

// Variant returns the variant in the scene buffers.
func (s *Session) Variant() scene.Variant {
	return s.variant
}

// Layout returns the last built layout.
func (s *Session) Layout() *scene.Layout {
	return s.layout
}

// Switch rebuilds the scene buffers with variant v and restarts
// accumulation. meshPath is the model for CustomMesh. Ray settings return
// to the configured values before the variant applies its own.
func (s *Session) Switch(v scene.Variant, meshPath string) error {
	if v == scene.CustomMesh {
		// a picked file is read fresh so edits made since the last pick show up
		s.Assets.Invalidate(meshPath)
		s.builder.CustomMeshPath = meshPath
	}

	// Plan first so a failing build leaves both params and buffers untouched.
	layout, err := s.builder.Plan(v)
	if err != nil {
		return fmt.Errorf("building %s: %w", v, err)
	}
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("building %s: %w", v, err)
	}

	w, err := s.Store.Writer()
	if err != nil {
		return err
	}
	s.Params.NumRaysPerPixel = s.cfg.Render.RaysPerPixel
	s.Params.NumRayBounces = s.cfg.Render.RayBounces
	if err := layout.Apply(s.Params, w); err != nil {
		return fmt.Errorf("building %s: %w", v, err)
	}

	s.variant = v
	s.layout = layout
	s.Editor.SetVariant(v)
	s.State.SceneChanged()

	s.log.Info("scene built",
		zap.Stringer("variant", v),
		zap.Int("spheres", len(layout.Spheres)),
		zap.Int("meshes", len(layout.Meshes)),
		zap.Int("triangles", layout.TotalTriangles()))
	if ce := s.log.Check(zap.DebugLevel, "scene layout"); ce != nil {
		ce.Write(zap.String("table", "\n"+LayoutTable(layout)))
	}
	return nil
}

// Update applies one frame of input and pending editor requests. dt is in
// seconds. A failed scene switch is returned and ends the session.
func (s *Session) Update(in *controls.State, dt float32) (controls.Actions, error) {
	a := s.controls.Apply(in, dt)

	if a.Variant != nil {
		if err := s.Switch(*a.Variant, ""); err != nil {
			return a, err
		}
	}
	if req, ok := s.Editor.TakeRequest(); ok {
		if err := s.Switch(req.Variant, req.MeshPath); err != nil {
			return a, err
		}
	}
	return a, nil
}

// Render runs one pipeline frame.
func (s *Session) Render() renderstate.Frame {
	return s.Pipeline.RenderFrame()
}

// Resize resizes the render targets.
func (s *Session) Resize(width, height int) error {
	return s.Pipeline.Resize(width, height)
}

// Close releases the scene buffers and cached assets.
func (s *Session) Close() {
	if s.Store != nil {
		s.Store.Close()
	}
	s.Assets.Close()
}

// LayoutTable renders the mesh partition of a layout.
func LayoutTable(l *scene.Layout) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"mesh", "first", "triangles", "bounds min", "bounds max"})
	for i, rec := range l.MeshRecords() {
		table.Append([]string{
			l.Meshes[i].Name,
			strconv.Itoa(int(rec.FirstTriangleIndex)),
			strconv.Itoa(int(rec.NumTriangles)),
			formatVec(rec.BoundsMin),
			formatVec(rec.BoundsMax),
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d spheres", len(l.Spheres)), "",
		strconv.Itoa(l.TotalTriangles()), "", "",
	})
	table.Render()
	return buf.String()
}

func formatVec(v mgl32.Vec3) string {
	return fmt.Sprintf("%.2f, %.2f, %.2f", v[0], v[1], v[2])
}
