package host

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/app"
	"github.com/Faultbox/pathlight/internal/config"
	"github.com/Faultbox/pathlight/internal/controls"
	"github.com/Faultbox/pathlight/internal/editor/panel"
	"github.com/Faultbox/pathlight/internal/engine/ui"
)

// RunEditor renders behind the ImGui settings panel until the user quits.
// The render is drawn as a background texture; E collapses the panel.
func RunEditor(cfg *config.Config) error {
	b, err := ui.NewBackend("Pathlight", cfg.Graphics.Width, cfg.Graphics.Height)
	if err != nil {
		return err
	}

	width, height := cfg.Graphics.Width, cfg.Graphics.Height
	g, err := newSession(cfg, width, height, false)
	if err != nil {
		return err
	}
	defer g.Close()

	p := panel.New(g.session.Editor)

	var (
		state   controls.State
		runErr  error
		now     = time.Now()
		last    = now
		pacer   = app.NewPacer(cfg.Graphics.FPSLimit, now)
		meter   = app.NewMeter(now)
		stopped bool
	)
	stop := func(err error) {
		if stopped {
			return
		}
		stopped, runErr = true, err
		b.Close()
	}

	g.log.Info("starting editor loop", zap.Int("fps_limit", cfg.Graphics.FPSLimit))

	b.Run(func() {
		if stopped {
			return
		}
		now := time.Now()
		step := now.Sub(last)
		last = now

		ui.ReadInput(&state)
		actions, err := g.session.Update(&state, float32(step.Seconds()))
		if err != nil {
			stop(err)
			return
		}
		if actions.Quit {
			stop(nil)
			return
		}
		if actions.ToggleEditor {
			p.Toggle()
		}

		if err := g.resize(b.FramebufferSize()); err != nil {
			stop(err)
			return
		}

		if dt, ok := pacer.Due(now); ok {
			g.frame()
			if title, ok := meter.Title(now, dt); ok {
				b.SetWindowTitle(title)
			}
		}

		if actions.Screenshot {
			g.screenshot()
		}
		b.DrawBackground(g.passes.DisplayTexture())
		if err := p.Draw(); err != nil {
			stop(err)
		}
	})

	g.log.Info("editor loop finished")
	return runErr
}
