package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/app"
	"github.com/Faultbox/pathlight/internal/config"
	"github.com/Faultbox/pathlight/internal/engine/accum"
	"github.com/Faultbox/pathlight/internal/engine/cputrace"
	"github.com/Faultbox/pathlight/internal/engine/scenebuf"
	"github.com/Faultbox/pathlight/internal/logger"
)

func renderCommand(ctx *cli.Context) error {
	cfg, err := config.LoadFile(ctx.String("config"))
	if err != nil {
		return err
	}
	if s := ctx.String("scene"); s != "" {
		cfg.Render.Scene = s
	}
	if m := ctx.String("mesh"); m != "" {
		cfg.Render.MeshPath = m
	}
	cfg.Screenshot.Dir = ctx.String("out")
	cfg.Screenshot.Format = ctx.String("format")
	if err := cfg.Validate(); err != nil {
		return err
	}

	width, height, frames := ctx.Int("width"), ctx.Int("height"), ctx.Int("frames")
	if frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", frames)
	}

	var sw *accum.Software
	s, err := app.New(app.Options{
		Config: cfg,
		Device: scenebuf.NewMemoryDevice(),
		Passes: func(store *scenebuf.Store) (accum.Passes, error) {
			p, err := accum.NewSoftware(cputrace.New(store), width, height)
			sw = p
			return p, err
		},
		Width:     width,
		Height:    height,
		ModelInfo: os.Stdout,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	log := logger.Named("objinfo")
	for i := 0; i < frames; i++ {
		f := s.Render()
		log.Debug("frame", zap.Uint32("index", f.Index), zap.Bool("reset", f.Reset))
	}

	path, err := s.Shots.CaptureFromImage(sw.Image())
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d frames of %s at %dx%d\n", path, frames, s.Variant(), width, height)
	return nil
}
