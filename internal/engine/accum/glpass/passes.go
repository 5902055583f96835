// Package glpass implements the accumulation passes with OpenGL full-screen
// fragment passes.
package glpass

import (
	"fmt"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/engine/accum"
	"github.com/Faultbox/pathlight/internal/engine/framebuffer"
	"github.com/Faultbox/pathlight/internal/engine/shader"
	"github.com/Faultbox/pathlight/internal/logger"
	"github.com/Faultbox/pathlight/internal/scene"
	"github.com/Faultbox/pathlight/internal/shaders"
)

// Binder attaches the scene arrays to their shader storage bindings.
type Binder interface {
	Bind()
}

// Overlay draws helper geometry into the primary target.
type Overlay interface {
	Draw(in *accum.FrameInput)
}

// CapacityDefines returns the scene capacities as GLSL definitions.
func CapacityDefines() []shader.Define {
	return []shader.Define{
		{Name: "MAX_SPHERES", Value: strconv.Itoa(scene.MaxSpheres)},
		{Name: "MAX_TRIANGLES", Value: strconv.Itoa(scene.MaxTriangles)},
		{Name: "MAX_MESHES", Value: strconv.Itoa(scene.MaxMeshes)},
	}
}

// Config configures the OpenGL passes.
type Config struct {
	Shaders shaders.Source
	Scene   Binder
	// Overlay is optional.
	Overlay Overlay
	// ToScreen blits the presented image to the default framebuffer.
	ToScreen bool
}

type programSpec struct {
	name     string
	frag     string
	defines  []shader.Define
	location **shader.Program
}

// GL implements accum.Passes with OpenGL.
// All methods must be called from the thread owning the GL context.
type GL struct {
	cfg Config
	log *zap.Logger

	copyProg, traceProg, averageProg, presentProg *shader.Program

	final, old, new, primary, display *framebuffer.Framebuffer

	vao           uint32
	width, height int32
}

var _ accum.Passes = (*GL)(nil)

// New compiles the pass programs and creates the render targets.
func New(cfg Config, width, height int) (*GL, error) {
	if cfg.Scene == nil {
		return nil, fmt.Errorf("scene buffers: %w", accum.ErrNotLinked)
	}

	g := &GL{
		cfg:    cfg,
		log:    logger.Named("accum"),
		width:  int32(max(width, 1)),
		height: int32(max(height, 1)),
	}
	for _, p := range g.programs() {
		prog, err := g.compile(p)
		if err != nil {
			g.Delete()
			return nil, err
		}
		*p.location = prog
	}

	if err := g.createTargets(); err != nil {
		g.Delete()
		return nil, err
	}

	gl.GenVertexArrays(1, &g.vao)
	return g, nil
}

func (g *GL) programs() []programSpec {
	return []programSpec{
		{"copy", shaders.CopyFrag, nil, &g.copyProg},
		{"trace", shaders.TraceFrag, CapacityDefines(), &g.traceProg},
		{"average", shaders.AverageFrag, nil, &g.averageProg},
		{"present", shaders.PresentFrag, nil, &g.presentProg},
	}
}

func (g *GL) sources(p programSpec) (vs, fs string, err error) {
	if vs, err = g.cfg.Shaders.Read(shaders.ScreenVert); err != nil {
		return "", "", err
	}
	if fs, err = g.cfg.Shaders.Read(p.frag); err != nil {
		return "", "", err
	}
	return vs, shader.InjectDefines(fs, p.defines...), nil
}

func (g *GL) compile(p programSpec) (*shader.Program, error) {
	vs, fs, err := g.sources(p)
	if err != nil {
		return nil, err
	}
	return shader.NewProgram(p.name, vs, fs)
}

// Reload recompiles every pass program from its current source. Programs that
// fail to compile keep their previous version and the first error is returned.
func (g *GL) Reload() error {
	var first error
	for _, p := range g.programs() {
		vs, fs, err := g.sources(p)
		if err == nil {
			err = (*p.location).Reload(vs, fs)
		}
		if err != nil {
			g.log.Warn("shader reload failed", zap.String("program", p.name), zap.Error(err))
			if first == nil {
				first = err
			}
			continue
		}
		g.log.Info("shader reloaded", zap.String("program", p.name))
	}
	return first
}

func (g *GL) createTargets() error {
	targets := []struct {
		fb   **framebuffer.Framebuffer
		opts framebuffer.Options
	}{
		{&g.final, framebuffer.Options{Format: framebuffer.RGBA32F}},
		{&g.old, framebuffer.Options{Format: framebuffer.RGBA32F}},
		{&g.new, framebuffer.Options{Format: framebuffer.RGBA32F}},
		{&g.primary, framebuffer.Options{Format: framebuffer.RGBA8, Depth: true}},
		{&g.display, framebuffer.Options{Format: framebuffer.RGBA8}},
	}
	for _, t := range targets {
		fb, err := framebuffer.New(g.width, g.height, t.opts)
		if err != nil {
			return err
		}
		*t.fb = fb
	}
	return nil
}

func (g *GL) drawFullscreen() {
	gl.BindVertexArray(g.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

// Snapshot copies final into old.
func (g *GL) Snapshot() {
	g.old.Bind()
	g.copyProg.Use()
	gl.BindTextureUnit(0, g.final.ColorTexture())
	g.copyProg.SetInt("u_srcTex", 0)
	g.drawFullscreen()
}

// Primary clears the primary target and draws the overlay into it.
func (g *GL) Primary(in *accum.FrameInput) {
	g.primary.Bind()
	g.primary.Clear(0, 0, 0, 0)
	if g.cfg.Overlay == nil {
		return
	}
	gl.Enable(gl.DEPTH_TEST)
	g.cfg.Overlay.Draw(in)
	gl.Disable(gl.DEPTH_TEST)
}

// Sample runs the path tracer into new.
func (g *GL) Sample(in *accum.FrameInput) {
	g.new.Bind()
	g.cfg.Scene.Bind()

	p := g.traceProg
	p.Use()
	setParams(p, in.Params)

	cam := in.Camera
	p.SetUint("u_numRenderedFrames", in.Index)
	p.SetUint("u_seed", in.Seed)
	p.SetVec2("u_resolution", mgl32.Vec2{float32(g.width), float32(g.height)})
	p.SetVec3("u_cameraPosition", cam.Position)
	p.SetVec3("u_cameraRight", cam.Right())
	p.SetVec3("u_cameraUp", cam.Up())
	p.SetVec3("u_cameraForward", cam.Forward())
	p.SetFloat("u_tanHalfFov", math32.Tan(mgl32.DegToRad(cam.FOV)/2))
	p.SetFloat("u_aspect", float32(g.width)/float32(g.height))
	p.SetMat4("u_invViewProj", cam.InverseViewProjection())

	gl.BindTextureUnit(0, g.primary.ColorTexture())
	gl.BindTextureUnit(1, g.primary.DepthTexture())
	p.SetInt("u_screenColorTex", 0)
	p.SetInt("u_screenDepthTex", 1)

	g.drawFullscreen()
}

func setParams(p *shader.Program, params *scene.Params) {
	p.SetVec3("u_groundColor", params.GroundColor)
	p.SetVec3("u_skyHorizonColor", params.SkyHorizonColor)
	p.SetVec3("u_skyZenithColor", params.SkyZenithColor)
	p.SetInt("u_numRaysPerPixel", params.NumRaysPerPixel)
	p.SetInt("u_numRayBounces", params.NumRayBounces)
	p.SetInt("u_numSpheres", params.NumSpheres)
	p.SetInt("u_numMeshes", params.NumMeshes)
	p.SetBool("u_enableEnvLight", params.EnableEnvLight)
	p.SetFloat("u_sunFocus", params.SunFocus)
	p.SetFloat("u_sunIntensity", params.SunIntensity)
	p.SetFloat("u_divergeStrength", params.DivergeStrength)
	p.SetFloat("u_defocusStrength", params.DefocusStrength)
	p.SetFloat("u_focusDistance", params.FocusDistance)
}

// Average blends new into final.
func (g *GL) Average(frameIndex uint32, forceNew bool) {
	g.final.Bind()
	p := g.averageProg
	p.Use()
	gl.BindTextureUnit(0, g.old.ColorTexture())
	gl.BindTextureUnit(1, g.new.ColorTexture())
	p.SetInt("u_oldTex", 0)
	p.SetInt("u_newTex", 1)
	p.SetUint("u_numRenderedFrames", frameIndex)
	p.SetBool("u_forceNew", forceNew)
	g.drawFullscreen()
}

// Present tone maps final into the display target and, when configured,
// copies it to the window.
func (g *GL) Present() {
	g.display.Bind()
	g.presentProg.Use()
	gl.BindTextureUnit(0, g.final.ColorTexture())
	g.presentProg.SetInt("u_finalTex", 0)
	g.drawFullscreen()
	g.display.Unbind()

	if g.cfg.ToScreen {
		gl.BlitNamedFramebuffer(g.display.FBO(), 0,
			0, 0, g.width, g.height,
			0, 0, g.width, g.height,
			gl.COLOR_BUFFER_BIT, gl.NEAREST)
	}
}

// Resize reallocates every target.
func (g *GL) Resize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid target size %dx%d", width, height)
	}
	g.width, g.height = int32(width), int32(height)
	for _, fb := range []*framebuffer.Framebuffer{g.final, g.old, g.new, g.primary, g.display} {
		fb.Resize(g.width, g.height)
	}
	g.log.Debug("targets resized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// DisplayTexture returns the presented image as an RGBA8 texture.
func (g *GL) DisplayTexture() uint32 {
	return g.display.ColorTexture()
}

// ReadDisplay returns the presented image as RGBA bytes, bottom row first.
func (g *GL) ReadDisplay() (pixels []byte, width, height int) {
	return g.display.ReadPixels(), int(g.width), int(g.height)
}

// Delete releases all GL resources.
func (g *GL) Delete() {
	for _, p := range []*shader.Program{g.copyProg, g.traceProg, g.averageProg, g.presentProg} {
		if p != nil {
			p.Delete()
		}
	}
	for _, fb := range []*framebuffer.Framebuffer{g.final, g.old, g.new, g.primary, g.display} {
		if fb != nil {
			fb.Destroy()
		}
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
		g.vao = 0
	}
}
