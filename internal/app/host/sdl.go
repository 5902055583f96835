package host

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/app"
	"github.com/Faultbox/pathlight/internal/config"
	"github.com/Faultbox/pathlight/internal/engine/input"
	"github.com/Faultbox/pathlight/internal/engine/window"
)

// RunSDL renders into a plain SDL window until the user quits. The editor
// is unavailable; E is ignored.
func RunSDL(cfg *config.Config) error {
	win, err := window.New(window.Config{
		Title:      "Pathlight",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	width, height := win.DrawableSize()
	g, err := newSession(cfg, width, height, true)
	if err != nil {
		return err
	}
	defer g.Close()

	in := input.New()
	captured := !g.session.State.Flags().GUIFocused
	input.SetMouseCaptured(captured)

	now := time.Now()
	pacer := app.NewPacer(cfg.Graphics.FPSLimit, now)
	meter := app.NewMeter(now)

	g.log.Info("starting render loop",
		zap.Int("width", width), zap.Int("height", height),
		zap.Int("fps_limit", cfg.Graphics.FPSLimit))

	for {
		dt, ok := pacer.Due(time.Now())
		if !ok {
			time.Sleep(pacer.Interval() - dt)
			continue
		}

		in.Update()
		actions, err := g.session.Update(in.State(), float32(dt.Seconds()))
		if err != nil {
			return err
		}
		if actions.Quit {
			break
		}
		if actions.ToggleEditor {
			g.log.Debug("editor is only available with -editor")
		}

		if focused := g.session.State.Flags().GUIFocused; focused == captured {
			captured = !focused
			input.SetMouseCaptured(captured)
		}

		if w, h, ok := in.Resized(); ok {
			g.log.Debug("window resized", zap.Int("width", w), zap.Int("height", h))
			if err := g.resize(win.DrawableSize()); err != nil {
				return err
			}
		}

		g.frame()
		if actions.Screenshot {
			g.screenshot()
		}
		win.SwapBuffers()

		if title, ok := meter.Title(time.Now(), dt); ok {
			win.SetTitle(title)
		}
	}

	g.log.Info("render loop finished")
	return nil
}
