package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pathlight/internal/config"
	"github.com/Faultbox/pathlight/internal/controls"
	"github.com/Faultbox/pathlight/internal/engine/accum"
	"github.com/Faultbox/pathlight/internal/engine/cputrace"
	"github.com/Faultbox/pathlight/internal/engine/scenebuf"
	"github.com/Faultbox/pathlight/internal/scene"
)

func softwarePasses(store *scenebuf.Store) (accum.Passes, error) {
	return accum.NewSoftware(cputrace.New(store), 8, 6)
}

func newSession(t *testing.T, modify func(*config.Config)) *Session {
	t.Helper()
	cfg := config.Default()
	if modify != nil {
		modify(cfg)
	}
	s, err := New(Options{
		Config: cfg,
		Device: scenebuf.NewMemoryDevice(),
		Passes: softwarePasses,
		Width:  8,
		Height: 6,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func press(keys ...controls.Key) *controls.State {
	var st controls.State
	for _, k := range keys {
		st.SetDown(k, true)
	}
	return &st
}

func TestNewBuildsConfiguredScene(t *testing.T) {
	s := newSession(t, nil)

	assert.Equal(t, scene.SphereRing, s.Variant())
	assert.Equal(t, scene.SphereRing, s.Editor.Variant())
	assert.Equal(t, int32(scene.MaxSpheres), s.Params.NumSpheres)
	assert.Equal(t, int32(0), s.Params.NumMeshes)
	assert.Equal(t, float32(10), s.Store.Spheres()[0].Radius)

	w, h := s.Pipeline.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 6, h)

	f := s.Render()
	assert.True(t, f.Reset, "first frame after a build starts a new render")
	assert.Equal(t, uint32(1), f.Index)
	f = s.Render()
	assert.False(t, f.Reset)
	assert.Equal(t, uint32(1), f.Index)
	assert.Equal(t, uint32(2), s.State.FrameIndex())
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		opts   func(*Options)
	}{
		{"unknown scene", func(c *config.Config) { c.Render.Scene = "teapot" }, nil},
		{"missing mesh", func(c *config.Config) { c.Render.Scene = "single-mesh"; c.Render.MeshPath = "missing.obj" }, nil},
		{"bad asset dir", func(c *config.Config) { c.Render.AssetDirs = []string{"/nonexistent/dir"} }, nil},
		{"no passes", nil, func(o *Options) { o.Passes = nil }},
		{"no device", nil, func(o *Options) { o.Device = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if tt.modify != nil {
				tt.modify(cfg)
			}
			opts := Options{
				Config: cfg,
				Device: scenebuf.NewMemoryDevice(),
				Passes: softwarePasses,
				Width:  8,
				Height: 6,
			}
			if tt.opts != nil {
				tt.opts(&opts)
			}
			_, err := New(opts)
			assert.Error(t, err)
		})
	}
}

func TestVariantKeysSwitchScene(t *testing.T) {
	s := newSession(t, nil)
	s.Render()
	s.Render()

	_, err := s.Update(press(controls.Key6), 0.01)
	require.NoError(t, err)
	assert.Equal(t, scene.RoomSpheres, s.Variant())
	assert.Equal(t, int32(4), s.Params.NumSpheres)
	assert.Equal(t, int32(scene.RoomTotalMeshes), s.Params.NumMeshes)
	assert.Equal(t, int32(5), s.Params.NumRaysPerPixel)

	assert.Equal(t, uint32(2), s.State.FrameIndex())
	f := s.Render()
	assert.True(t, f.Reset)
	assert.Equal(t, uint32(1), s.State.FrameIndex())

	_, err = s.Update(press(controls.Key3), 0.01)
	require.NoError(t, err)
	assert.Equal(t, scene.SphereRing, s.Variant())
	assert.Equal(t, int32(1), s.Params.NumRaysPerPixel, "ray settings return to the configured values")
	assert.Equal(t, int32(3), s.Params.NumRayBounces)
}

func TestEditorCustomMesh(t *testing.T) {
	var info bytes.Buffer
	cfg := config.Default()
	s, err := New(Options{
		Config:    cfg,
		Device:    scenebuf.NewMemoryDevice(),
		Passes:    softwarePasses,
		Width:     8,
		Height:    6,
		ModelInfo: &info,
	})
	require.NoError(t, err)
	defer s.Close()

	require.True(t, s.Editor.RequestCustomMesh("models/cube.obj"))
	_, err = s.Update(&controls.State{}, 0.01)
	require.NoError(t, err)

	assert.Equal(t, scene.CustomMesh, s.Variant())
	assert.Equal(t, int32(1), s.Params.NumMeshes)
	assert.Equal(t, uint32(12), s.Store.MeshInfos()[0].NumTriangles)
	assert.Contains(t, info.String(), "triangles")
}

func TestFailedSwitchKeepsScene(t *testing.T) {
	s := newSession(t, nil)
	before := *s.Params
	spheres := s.Store.Spheres()

	require.True(t, s.Editor.RequestCustomMesh("nope.obj"))
	_, err := s.Update(&controls.State{}, 0.01)
	require.Error(t, err)

	assert.Equal(t, scene.SphereRing, s.Variant())
	assert.Equal(t, before, *s.Params)
	assert.Equal(t, spheres, s.Store.Spheres())
}

func TestUpdateReportsActions(t *testing.T) {
	s := newSession(t, nil)

	a, err := s.Update(press(controls.KeyQ, controls.KeyE, controls.KeyF12), 0.01)
	require.NoError(t, err)
	assert.True(t, a.Quit)
	assert.True(t, a.ToggleEditor)
	assert.True(t, a.Screenshot)
}

func TestCamerasFromConfig(t *testing.T) {
	cc := config.Default().Camera
	cc.Yaw = 90
	cc.Position = mgl32.Vec3{1, 2, 3}

	sc, hc := CamerasFromConfig(&cc)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, sc.Position)
	assert.InDelta(t, 1, sc.Forward().X(), 1e-5, "yaw 90 looks down +X")
	assert.Equal(t, float32(100), sc.Far)
	assert.Equal(t, float32(5), hc.Speed)
	assert.InDelta(t, 1, hc.Forward().Z(), 1e-5)
}

func TestLayoutTable(t *testing.T) {
	b := &scene.Builder{}
	l, err := b.Plan(scene.RoomSpheres)
	require.NoError(t, err)

	table := LayoutTable(l)
	assert.Contains(t, table, "TRIANGLES")
	assert.Contains(t, table, "4 SPHERES")
	for _, m := range l.Meshes {
		assert.True(t, strings.Contains(table, m.Name), "mesh %s missing", m.Name)
	}
}

func TestPacer(t *testing.T) {
	start := time.Unix(100, 0)
	p := NewPacer(90, start)
	assert.Equal(t, time.Second/90, p.Interval())

	_, ok := p.Due(start.Add(5 * time.Millisecond))
	assert.False(t, ok)
	dt, ok := p.Due(start.Add(12 * time.Millisecond))
	assert.True(t, ok)
	assert.Equal(t, 12*time.Millisecond, dt)
	_, ok = p.Due(start.Add(13 * time.Millisecond))
	assert.False(t, ok, "interval restarts at the due frame")

	unlimited := NewPacer(0, start)
	_, ok = unlimited.Due(start)
	assert.True(t, ok)
}

func TestMeter(t *testing.T) {
	start := time.Unix(100, 0)
	m := NewMeter(start)

	_, ok := m.Title(start.Add(100*time.Millisecond), 10*time.Millisecond)
	assert.False(t, ok)

	title, ok := m.Title(start.Add(TitlePeriod), 10*time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, "FPS: 100 / 10.00000 ms", title)

	_, ok = m.Title(start.Add(TitlePeriod+time.Millisecond), 10*time.Millisecond)
	assert.False(t, ok)
}
