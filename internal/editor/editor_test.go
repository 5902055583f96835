package editor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pathlight/internal/engine/camera"
	"github.com/Faultbox/pathlight/internal/engine/renderstate"
	"github.com/Faultbox/pathlight/internal/engine/scenebuf"
	"github.com/Faultbox/pathlight/internal/scene"
)

type fixture struct {
	ed     *Editor
	cam    *camera.Camera
	params *scene.Params
	state  *renderstate.Controller
	store  *scenebuf.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := scenebuf.New(scenebuf.NewMemoryDevice())
	require.NoError(t, store.AllocateScene())
	t.Cleanup(store.Close)

	params := scene.DefaultParams()
	w, err := store.Writer()
	require.NoError(t, err)
	b := &scene.Builder{}
	_, err = b.Build(scene.RoomSpheres, &params, w)
	require.NoError(t, err)

	f := &fixture{
		ed:     New(),
		cam:    camera.New(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, -1}, 100),
		params: &params,
		state:  renderstate.New(),
		store:  store,
	}
	f.ed.LinkCamera(f.cam)
	f.ed.LinkParams(f.params)
	f.ed.LinkState(f.state)
	f.ed.LinkStore(f.store)

	// consume the reset requested by construction, if any
	f.state.Begin()
	f.state.Complete()
	return f
}

func TestNotLinked(t *testing.T) {
	ed := New()

	_, err := ed.Camera()
	assert.ErrorIs(t, err, ErrNotLinked)
	_, err = ed.SetCamera(CameraSettings{})
	assert.ErrorIs(t, err, ErrNotLinked)
	_, err = ed.Render()
	assert.ErrorIs(t, err, ErrNotLinked)
	_, err = ed.Sphere(0)
	assert.ErrorIs(t, err, ErrNotLinked)
	_, err = ed.GlobalAxis()
	assert.ErrorIs(t, err, ErrNotLinked)

	params := scene.DefaultParams()
	params.NumSpheres = 1
	ed.LinkParams(&params)
	_, err = ed.Sphere(0)
	assert.ErrorIs(t, err, ErrNotLinked, "store still missing")
	_, err = ed.SetRender(RenderSettings{})
	assert.ErrorIs(t, err, ErrNotLinked, "render state still missing")
}

func TestSetCameraClampsAndNeverResets(t *testing.T) {
	f := newFixture(t)

	changed, err := f.ed.SetCamera(CameraSettings{Near: 0, Far: 500, Speed: 10, FOV: 90})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, NearRange.Min, f.cam.Near)
	assert.Equal(t, FarRange.Max, f.cam.Far)
	assert.Equal(t, float32(10), f.cam.Speed)
	assert.Equal(t, float32(90), f.cam.FOV)
	assert.False(t, f.state.ResetPending())

	cur, err := f.ed.Camera()
	require.NoError(t, err)
	changed, err = f.ed.SetCamera(cur)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSetRenderRequestsReset(t *testing.T) {
	f := newFixture(t)

	s, err := f.ed.Render()
	require.NoError(t, err)
	assert.Equal(t, int32(5), s.RaysPerPixel, "room-spheres ray count")

	changed, err := f.ed.SetRender(s)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, f.state.ResetPending())

	s.RaysPerPixel = 0
	s.RayBounces = 99
	s.SkyZenithColor = mgl32.Vec3{2, -1, 0.5}
	changed, err = f.ed.SetRender(s)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, f.state.ResetPending())

	assert.Equal(t, int32(1), f.params.NumRaysPerPixel)
	assert.Equal(t, int32(MaxRayBounces), f.params.NumRayBounces)
	assert.Equal(t, mgl32.Vec3{1, 0, 0.5}, f.params.SkyZenithColor)
	assert.Equal(t, int32(4), f.params.NumSpheres, "counts are not editable")
}

func TestSetSpherePatchesOneRecord(t *testing.T) {
	f := newFixture(t)
	before := f.store.Spheres()

	s, err := f.ed.Sphere(2)
	require.NoError(t, err)
	assert.Equal(t, before[2].Position, s.Position)

	s.Position = s.Position.Add(mgl32.Vec3{0, 3, 0})
	s.Smoothness = 2
	s.Checkered = true
	changed, err := f.ed.SetSphere(2, s)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, f.state.ResetPending())

	after := f.store.Spheres()
	for i := range after {
		if i == 2 {
			continue
		}
		assert.Equal(t, before[i], after[i], "sphere %d", i)
	}
	assert.Equal(t, before[2].Position.Add(mgl32.Vec3{0, 3, 0}), after[2].Position)
	assert.Equal(t, float32(1), after[2].Material.Smoothness)
	assert.NotZero(t, after[2].Material.Flags&scene.MaterialFlagCheckered)
	assert.Equal(t, before[2].Material.Color.W(), after[2].Material.Color.W())

	again, err := f.ed.Sphere(2)
	require.NoError(t, err)
	changed, err = f.ed.SetSphere(2, again)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSphereIndexOutOfRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.ed.Sphere(4)
	assert.ErrorIs(t, err, ErrNoSphere)
	_, err = f.ed.SetSphere(-1, SphereSettings{})
	assert.ErrorIs(t, err, ErrNoSphere)
}

func TestSetSphereAfterFence(t *testing.T) {
	f := newFixture(t)
	f.store.Fence()

	s, err := f.ed.Sphere(0)
	require.NoError(t, err)
	s.Radius = 1
	changed, err := f.ed.SetSphere(0, s)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, float32(1), f.store.Spheres()[0].Radius)
}

func TestGlobalAxis(t *testing.T) {
	f := newFixture(t)

	on, err := f.ed.GlobalAxis()
	require.NoError(t, err)
	assert.False(t, on)

	changed, err := f.ed.SetGlobalAxis(true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, f.state.Flags().GlobalAxis)

	changed, err = f.ed.SetGlobalAxis(true)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRequests(t *testing.T) {
	ed := New()

	_, ok := ed.TakeRequest()
	assert.False(t, ok)

	assert.False(t, ed.RequestVariant(scene.CustomMesh))
	assert.False(t, ed.RequestCustomMesh(""))

	assert.True(t, ed.RequestVariant(scene.MeshInRoom))
	assert.True(t, ed.RequestCustomMesh("/tmp/bunny.obj"))

	r, ok := ed.TakeRequest()
	require.True(t, ok)
	assert.Equal(t, Request{Variant: scene.CustomMesh, MeshPath: "/tmp/bunny.obj"}, r)

	_, ok = ed.TakeRequest()
	assert.False(t, ok)
}

func TestRangeClamp(t *testing.T) {
	r := Range{1, 2}
	assert.Equal(t, float32(1), r.Clamp(0))
	assert.Equal(t, float32(1.5), r.Clamp(1.5))
	assert.Equal(t, float32(2), r.Clamp(3))
}
