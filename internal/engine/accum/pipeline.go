// Package accum runs the progressive accumulation pipeline. Every frame
// executes five stages in order:
//
//  1. snapshot: copy the accumulated image (final) into old
//  2. primary: draw helper geometry into a color and depth target
//  3. sample: trace one batch of rays per pixel into new
//  4. average: final = old*(n-1)/n + new/n, or final = new on reset
//  5. present: convert final for display
//
// The stages themselves live behind Passes so the same pipeline drives the
// OpenGL renderer and the software renderer used in tests and headless runs.
package accum

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/engine/camera"
	"github.com/Faultbox/pathlight/internal/engine/renderstate"
	"github.com/Faultbox/pathlight/internal/logger"
	"github.com/Faultbox/pathlight/internal/scene"
)

// ErrNotLinked is returned by New when a collaborator is missing.
var ErrNotLinked = errors.New("not linked to the pipeline")

// FrameInput is what the passes see during one frame.
type FrameInput struct {
	renderstate.Frame

	// Seed differs every frame, even when Index repeats after a reset.
	Seed   uint32
	Params *scene.Params
	// Camera is the active camera. SceneCamera is the camera the scene is
	// composed for; helper geometry draws its frustum when they differ.
	Camera      *camera.Camera
	SceneCamera *camera.Camera
}

// Passes implements the five stages.
type Passes interface {
	Snapshot()
	Primary(in *FrameInput)
	Sample(in *FrameInput)
	Average(frameIndex uint32, forceNew bool)
	Present()
	Resize(width, height int) error
}

// Fencer is the part of the scene buffer store the pipeline drives.
type Fencer interface {
	Fence()
}

// Config links the pipeline to its collaborators. Every field is required.
type Config struct {
	Passes       Passes
	State        *renderstate.Controller
	Store        Fencer
	Params       *scene.Params
	SceneCamera  *camera.Camera
	HelperCamera *camera.Camera
}

// Pipeline orders the passes and owns the frame bookkeeping.
type Pipeline struct {
	cfg Config
	log *zap.Logger

	width, height int
	seed          uint32
}

// New validates cfg and returns a pipeline.
func New(cfg Config) (*Pipeline, error) {
	links := []struct {
		name    string
		missing bool
	}{
		{"passes", cfg.Passes == nil},
		{"render state", cfg.State == nil},
		{"scene buffers", cfg.Store == nil},
		{"params", cfg.Params == nil},
		{"scene camera", cfg.SceneCamera == nil},
		{"helper camera", cfg.HelperCamera == nil},
	}
	for _, l := range links {
		if l.missing {
			return nil, fmt.Errorf("%s: %w", l.name, ErrNotLinked)
		}
	}
	return &Pipeline{cfg: cfg, log: logger.Named("accum")}, nil
}

// ActiveCamera returns the camera selected by flags.
func (p *Pipeline) ActiveCamera(flags renderstate.Flags) *camera.Camera {
	if flags.SceneCamera {
		return p.cfg.SceneCamera
	}
	return p.cfg.HelperCamera
}

// RenderFrame runs one frame and returns the state it rendered with.
func (p *Pipeline) RenderFrame() renderstate.Frame {
	state := p.cfg.State
	f := state.Begin()

	p.seed++
	in := &FrameInput{
		Frame:       f,
		Seed:        p.seed,
		Params:      p.cfg.Params,
		Camera:      p.ActiveCamera(f.Flags),
		SceneCamera: p.cfg.SceneCamera,
	}

	if f.Reset {
		p.log.Debug("accumulation reset", zap.Uint32("discarded_frames", f.Index))
	}

	p.cfg.Passes.Snapshot()
	p.cfg.Passes.Primary(in)
	p.cfg.Passes.Sample(in)
	p.cfg.Store.Fence()
	p.cfg.Passes.Average(f.Index, f.Reset)
	p.cfg.Passes.Present()

	state.Complete()
	return f
}

// Resize recreates the render targets and restarts accumulation.
func (p *Pipeline) Resize(width, height int) error {
	if width == p.width && height == p.height {
		return nil
	}
	if err := p.cfg.Passes.Resize(width, height); err != nil {
		return fmt.Errorf("resizing pipeline to %dx%d: %w", width, height, err)
	}
	p.width, p.height = width, height

	aspect := float32(width) / float32(max(height, 1))
	p.cfg.SceneCamera.SetAspect(aspect)
	p.cfg.HelperCamera.SetAspect(aspect)

	p.cfg.State.RequestReset()
	p.log.Debug("pipeline resized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// Size returns the current target size.
func (p *Pipeline) Size() (width, height int) {
	return p.width, p.height
}
