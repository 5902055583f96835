package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pathlight/internal/assets"
)

func run(args ...string) error {
	return newApp().Run(append([]string{"objinfo"}, args...))
}

func TestHelpAndVersion(t *testing.T) {
	require.NotPanics(t, func() {
		assert.NoError(t, run("--help"))
		assert.NoError(t, run("--version"))
		assert.NoError(t, run("-v", "stats", "--help"))
	})
}

func TestStats(t *testing.T) {
	require.NoError(t, run("stats", assets.Cube, assets.Icosahedron))
	require.NoError(t, run("-v", "stats", "--scale", "2", assets.Cube))

	assert.Error(t, run("stats"), "no model given")
	assert.Error(t, run("stats", assets.Cube, "missing.obj"))
}

func TestRender(t *testing.T) {
	tests := []struct {
		scene  string
		format string
	}{
		{"sphere-ring", "png"},
		{"single-mesh", "bmp"},
		{"room-spheres", "png"},
	}
	for _, tt := range tests {
		t.Run(tt.scene, func(t *testing.T) {
			out := t.TempDir()
			require.NoError(t, run("render",
				"--scene", tt.scene,
				"--width", "8", "--height", "6",
				"--frames", "2",
				"--out", out,
				"--format", tt.format))

			files, err := filepath.Glob(filepath.Join(out, "*."+tt.format))
			require.NoError(t, err)
			assert.Len(t, files, 1)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	out := t.TempDir()
	assert.Error(t, run("render", "--scene", "teapot", "--out", out))
	assert.Error(t, run("render", "--frames", "0", "--out", out))
	assert.Error(t, run("render", "--format", "gif", "--out", out))
}
