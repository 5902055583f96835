// Package host runs a Session in a window: a plain SDL window, or the
// Dear ImGui editor window.
package host

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/app"
	"github.com/Faultbox/pathlight/internal/config"
	"github.com/Faultbox/pathlight/internal/engine/accum"
	"github.com/Faultbox/pathlight/internal/engine/accum/glpass"
	"github.com/Faultbox/pathlight/internal/engine/debug/overlay"
	"github.com/Faultbox/pathlight/internal/engine/scenebuf"
	"github.com/Faultbox/pathlight/internal/engine/scenebuf/glbuf"
	"github.com/Faultbox/pathlight/internal/engine/shader/watch"
	"github.com/Faultbox/pathlight/internal/logger"
	"github.com/Faultbox/pathlight/internal/shaders"
)

// gpu owns the GL side of a session: passes, overlay and shader watcher.
type gpu struct {
	cfg      *config.Config
	toScreen bool
	log      *zap.Logger

	session *app.Session
	passes  *glpass.GL
	overlay *overlay.Renderer
	watcher *watch.Watcher
}

// newSession creates a GPU-backed session with a width x height target.
// A GL context must be current.
func newSession(cfg *config.Config, width, height int, toScreen bool) (*gpu, error) {
	g := &gpu{cfg: cfg, toScreen: toScreen, log: logger.Named("host")}

	s, err := app.New(app.Options{
		Config: cfg,
		Device: glbuf.Device{},
		Passes: func(store *scenebuf.Store) (accum.Passes, error) {
			return g.createPasses(store, width, height)
		},
		Width:  width,
		Height: height,
	})
	if err != nil {
		g.deletePasses()
		return nil, err
	}
	g.session = s

	if dir := cfg.Render.ShaderDir; dir != "" {
		w, err := watch.New(dir)
		if err != nil {
			g.log.Warn("shader hot reload disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *gpu) createPasses(store *scenebuf.Store, width, height int) (accum.Passes, error) {
	src := shaders.Source{Dir: g.cfg.Render.ShaderDir}

	var err error
	if g.overlay, err = overlay.New(src, store); err != nil {
		return nil, err
	}
	g.passes, err = glpass.New(glpass.Config{
		Shaders:  src,
		Scene:    store,
		Overlay:  g.overlay,
		ToScreen: g.toScreen,
	}, width, height)
	if err != nil {
		return nil, err
	}
	return g.passes, nil
}

// reloadShaders recompiles every program when a watched source changed. A
// failed compile keeps the previous programs.
func (g *gpu) reloadShaders() {
	if g.watcher == nil {
		return
	}
	changed := g.watcher.Changed()
	if len(changed) == 0 {
		return
	}
	if err := errors.Join(g.passes.Reload(), g.overlay.Reload()); err != nil {
		g.log.Error("shader reload failed", zap.Strings("files", changed), zap.Error(err))
		return
	}
	g.session.State.RequestReset()
	g.log.Info("shaders reloaded", zap.Strings("files", changed))
}

// frame reloads shaders if needed and renders one pipeline frame.
func (g *gpu) frame() {
	g.reloadShaders()
	g.session.Render()
}

func (g *gpu) screenshot() {
	pixels, w, h := g.passes.ReadDisplay()
	path, err := g.session.Shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		g.log.Error("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

func (g *gpu) resize(width, height int) error {
	if width < 1 || height < 1 {
		return nil
	}
	if w, h := g.session.Pipeline.Size(); w == width && h == height {
		return nil
	}
	if err := g.session.Resize(width, height); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}

func (g *gpu) deletePasses() {
	if g.passes != nil {
		g.passes.Delete()
		g.passes = nil
	}
	if g.overlay != nil {
		g.overlay.Delete()
		g.overlay = nil
	}
}

func (g *gpu) Close() {
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			g.log.Warn("closing shader watcher", zap.Error(err))
		}
	}
	g.deletePasses()
	if g.session != nil {
		g.session.Close()
	}
}
