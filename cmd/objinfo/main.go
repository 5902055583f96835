// objinfo inspects Wavefront OBJ models and renders scenes without a window.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/Faultbox/pathlight/internal/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	// -v is the verbose switch, so the version flag gets the long name only
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "objinfo"
	app.Usage = "inspect models and render scenes on the CPU"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
	}
	app.Before = setupLogging
	app.After = func(*cli.Context) error {
		logger.Sync()
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:  "stats",
			Usage: "print vertex, face and triangle counts of OBJ files",
			Description: `
Parse each model the way the renderer does and print what it declared and
how many triangles it produced. Files are parsed in parallel.`,
			ArgsUsage: "model1.obj model2.obj ...",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "scale",
					Value: 1,
					Usage: "uniform scale applied to every vertex",
				},
			},
			Action: statsCommand,
		},
		{
			Name:  "render",
			Usage: "render a scene on the CPU and save the image",
			Description: `
Build a scene variant, accumulate the requested number of frames with the
software tracer and write the tone-mapped result as PNG or BMP.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "config file path",
				},
				cli.StringFlag{
					Name:  "scene, s",
					Usage: "scene variant (defaults to the configured one)",
				},
				cli.StringFlag{
					Name:  "mesh, m",
					Usage: "model for the mesh scenes",
				},
				cli.IntFlag{
					Name:  "width",
					Value: 320,
					Usage: "image width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 180,
					Usage: "image height",
				},
				cli.IntFlag{
					Name:  "frames, n",
					Value: 16,
					Usage: "frames to accumulate",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: ".",
					Usage: "output directory",
				},
				cli.StringFlag{
					Name:  "format, f",
					Value: "png",
					Usage: "image format (png or bmp)",
				},
			},
			Action: renderCommand,
		},
	}

	return app
}

func setupLogging(ctx *cli.Context) error {
	level := "warn"
	if ctx.GlobalBool("v") {
		level = "debug"
	}
	// stdout carries the tables; logs go to stderr
	return logger.InitWithFileConfig(level, logger.FileConfig{}, os.Stderr)
}
