package main

import (
	"errors"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/pathlight/internal/assets"
	"github.com/Faultbox/pathlight/internal/objloader"
)

func statsCommand(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("missing model file argument")
	}
	files := ctx.Args()
	scale := float32(ctx.Float64("scale"))

	m := assets.NewManager()
	defer m.Close()
	if err := m.AddDir("."); err != nil {
		return err
	}
	loader := &objloader.Loader{Files: m}

	stats := make([]objloader.Stats, len(files))
	var g errgroup.Group
	for i, name := range files {
		g.Go(func() error {
			_, s, err := loader.LoadWithStats(name, scale, mgl32.Vec3{})
			stats[i] = s
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, s := range stats {
		s.WriteTable(os.Stdout, files[i])
	}
	return nil
}
