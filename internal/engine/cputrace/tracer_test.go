package cputrace

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pathlight/internal/engine/accum"
	"github.com/Faultbox/pathlight/internal/engine/camera"
	"github.com/Faultbox/pathlight/internal/engine/renderstate"
	"github.com/Faultbox/pathlight/internal/engine/scenebuf"
	"github.com/Faultbox/pathlight/internal/scene"
)

func newStore(t *testing.T) *scenebuf.Store {
	t.Helper()
	store := scenebuf.New(scenebuf.NewMemoryDevice())
	require.NoError(t, store.AllocateScene())
	t.Cleanup(store.Close)
	return store
}

func frameInput(params *scene.Params, cam *camera.Camera) *accum.FrameInput {
	return &accum.FrameInput{
		Frame:       renderstate.Frame{Index: 1, Reset: true},
		Seed:        7,
		Params:      params,
		Camera:      cam,
		SceneCamera: cam,
	}
}

func TestEnvironment(t *testing.T) {
	params := scene.DefaultParams()

	up := environment(&params, ray{dir: mgl32.Vec3{0, 1, 0}})
	assert.InDelta(t, params.SkyZenithColor.X(), up.X(), 1e-3)
	assert.InDelta(t, params.SkyZenithColor.Z(), up.Z(), 1e-3)

	down := environment(&params, ray{dir: mgl32.Vec3{0, -1, 0}})
	assert.Equal(t, params.GroundColor, down)

	sun := environment(&params, ray{dir: sunDirection})
	assert.Greater(t, sun.X(), params.SunIntensity*0.9)

	params.EnableEnvLight = false
	assert.Equal(t, mgl32.Vec3{}, environment(&params, ray{dir: mgl32.Vec3{0, 1, 0}}))
}

func TestSurfaceColorChecker(t *testing.T) {
	m := scene.DefaultMaterial()
	m.Flags = scene.MaterialFlagCheckered

	assert.Equal(t, mgl32.Vec3{0.25, 0.25, 0.25}, surfaceColor(m, mgl32.Vec3{0.5, 0, 0.5}))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, surfaceColor(m, mgl32.Vec3{2.5, 0, 0.5}))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, surfaceColor(m, mgl32.Vec3{-0.5, 0, 0.5}))

	m.Flags = 0
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, surfaceColor(m, mgl32.Vec3{0.5, 0, 0.5}))
}

func TestIntersections(t *testing.T) {
	r := ray{origin: mgl32.Vec3{0, 0, 5}, dir: mgl32.Vec3{0, 0, -1}}

	h := raySphere(r, mgl32.Vec3{}, 1)
	require.True(t, h.ok)
	assert.InDelta(t, 4, h.dst, 1e-5)
	assert.InDelta(t, 1, h.normal.Z(), 1e-5)

	// from inside the far side is hit
	h = raySphere(ray{dir: mgl32.Vec3{0, 0, -1}}, mgl32.Vec3{}, 2)
	require.True(t, h.ok)
	assert.InDelta(t, 2, h.dst, 1e-5)

	assert.False(t, raySphere(r, mgl32.Vec3{5, 0, 0}, 1).ok)

	tri := scene.Triangle{
		A: mgl32.Vec3{-1, -1, 0}, B: mgl32.Vec3{1, -1, 0}, C: mgl32.Vec3{0, 1, 0},
		NormalA: scene.Forward.Mul(-1), NormalB: scene.Forward.Mul(-1), NormalC: scene.Forward.Mul(-1),
	}
	h = rayTriangle(r, &tri)
	require.True(t, h.ok)
	assert.InDelta(t, 5, h.dst, 1e-5)
	assert.InDelta(t, 1, h.normal.Z(), 1e-5, "normal faces the ray")

	assert.True(t, rayBox(r, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, math32.MaxFloat32))
	assert.False(t, rayBox(r, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, 2))
}

func TestRayBox(t *testing.T) {
	lo, hi := mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}
	toward := mgl32.Vec3{0, 0, -1}

	tests := []struct {
		name   string
		r      ray
		lo, hi mgl32.Vec3
		maxDst float32
		want   bool
	}{
		{"in front", ray{origin: mgl32.Vec3{0, 0, 5}, dir: toward}, lo, hi, math32.MaxFloat32, true},
		{"beyond closest hit", ray{origin: mgl32.Vec3{0, 0, 5}, dir: toward}, lo, hi, 2, false},
		{"origin inside", ray{dir: toward}, lo, hi, math32.MaxFloat32, true},
		{"behind origin", ray{origin: mgl32.Vec3{0, 0, 5}, dir: toward}, mgl32.Vec3{-1, -1, 6}, mgl32.Vec3{1, 1, 8}, math32.MaxFloat32, false},
		{"off to the side", ray{origin: mgl32.Vec3{0, 0, 5}, dir: toward}, mgl32.Vec3{3, -1, -1}, mgl32.Vec3{4, 1, 1}, math32.MaxFloat32, false},
		{"diagonal", ray{origin: mgl32.Vec3{-5, -5, -5}, dir: mgl32.Vec3{1, 1, 1}.Normalize()}, lo, hi, math32.MaxFloat32, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rayBox(tt.r, tt.lo, tt.hi, tt.maxDst))
		})
	}
}

func TestRNGRange(t *testing.T) {
	seq := rng(12345)
	for i := 0; i < 1000; i++ {
		v := seq.value()
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}
	for i := 0; i < 100; i++ {
		assert.InDelta(t, 1, seq.direction().Len(), 1e-4)
		assert.LessOrEqual(t, seq.pointInCircle().Len(), float32(1.0001))
	}
}

func TestSampleWithoutLightIsBlack(t *testing.T) {
	store := newStore(t)
	params := scene.DefaultParams()
	params.EnableEnvLight = false

	cam := camera.New(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 90)
	tr := New(store)
	tr.BeginFrame(frameInput(&params, cam), 4, 4)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, mgl32.Vec3{}, tr.Sample(x, y))
		}
	}
}

func TestEmissiveEnclosure(t *testing.T) {
	store := newStore(t)
	w, err := store.Writer()
	require.NoError(t, err)

	m := scene.ColorMaterial(mgl32.Vec3{})
	m.SpecularColor = mgl32.Vec3{}
	m.EmissionColor = mgl32.Vec3{1, 0.5, 0.25}
	m.EmissionStrength = 2
	w.WriteSpheres(0, []scene.Sphere{{Radius: 10, Material: m}})

	params := scene.DefaultParams()
	params.NumSpheres = 1
	params.NumRaysPerPixel = 3

	cam := camera.New(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 90)
	tr := New(store)
	tr.BeginFrame(frameInput(&params, cam), 3, 3)

	// a black emitter ends every path on its first bounce
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			got := tr.Sample(x, y)
			assert.InDelta(t, 2, got.X(), 1e-5)
			assert.InDelta(t, 1, got.Y(), 1e-5)
			assert.InDelta(t, 0.5, got.Z(), 1e-5)
		}
	}
}

func TestCountsLimitVisibleRecords(t *testing.T) {
	store := newStore(t)
	w, err := store.Writer()
	require.NoError(t, err)

	m := scene.ColorMaterial(mgl32.Vec3{})
	m.SpecularColor = mgl32.Vec3{}
	m.EmissionColor = mgl32.Vec3{1, 1, 1}
	m.EmissionStrength = 1
	w.WriteSpheres(0, []scene.Sphere{{Position: mgl32.Vec3{0, 0, -5}, Radius: 1, Material: m}})

	params := scene.DefaultParams()
	params.EnableEnvLight = false
	cam := camera.New(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 60)

	tr := New(store)
	tr.BeginFrame(frameInput(&params, cam), 1, 1)
	assert.Equal(t, mgl32.Vec3{}, tr.Sample(0, 0), "sphere beyond NumSpheres is ignored")

	params.NumSpheres = 1
	params.DivergeStrength = 0
	tr.BeginFrame(frameInput(&params, cam), 1, 1)
	assert.InDelta(t, 1, tr.Sample(0, 0).X(), 1e-5)
}

func TestRoomSpheresRender(t *testing.T) {
	store := newStore(t)
	w, err := store.Writer()
	require.NoError(t, err)

	params := scene.DefaultParams()
	var b scene.Builder
	_, err = b.Build(scene.RoomSpheres, &params, w)
	require.NoError(t, err)
	params.NumRaysPerPixel = 1
	params.NumRayBounces = 2

	sw, err := accum.NewSoftware(New(store), 8, 6)
	require.NoError(t, err)
	p, err := accum.New(accum.Config{
		Passes:       sw,
		State:        renderstate.New(),
		Store:        store,
		Params:       &params,
		SceneCamera:  camera.New(mgl32.Vec3{0, 0, 9}, mgl32.Vec3{0, 0, -1}, 90),
		HelperCamera: camera.New(mgl32.Vec3{0, 0, -9}, mgl32.Vec3{0, 0, 1}, 90),
	})
	require.NoError(t, err)
	require.NoError(t, p.Resize(8, 6))

	for i := 0; i < 3; i++ {
		p.RenderFrame()
	}

	for i, c := range sw.Final() {
		for _, v := range c {
			require.False(t, math32.IsNaN(v) || math32.IsInf(v, 0), "pixel %d is not finite", i)
			require.GreaterOrEqual(t, v, float32(0), "pixel %d is negative", i)
		}
	}
}

func TestSampleIsDeterministic(t *testing.T) {
	store := newStore(t)
	w, err := store.Writer()
	require.NoError(t, err)

	params := scene.DefaultParams()
	var b scene.Builder
	_, err = b.Build(scene.SphereRing, &params, w)
	require.NoError(t, err)

	cam := camera.New(mgl32.Vec3{0, 5, 30}, mgl32.Vec3{0, 0, -1}, 60)
	in := frameInput(&params, cam)

	a, c := New(store), New(store)
	a.BeginFrame(in, 4, 4)
	c.BeginFrame(in, 4, 4)
	assert.Equal(t, a.Sample(2, 1), c.Sample(2, 1))

	// the top row sees sky, which varies with the jittered direction
	next := *in
	next.Seed++
	c.BeginFrame(&next, 4, 4)
	assert.NotEqual(t, a.Sample(1, 3), c.Sample(1, 3))
}
