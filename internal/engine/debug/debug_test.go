package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/pathlight/internal/engine/accum"
	"github.com/Faultbox/pathlight/internal/engine/camera"
	"github.com/Faultbox/pathlight/internal/engine/renderstate"
	"github.com/Faultbox/pathlight/internal/scene"
)

type fakeScene struct {
	triangles []scene.Triangle
	meshes    []scene.MeshInfo
}

func (f fakeScene) Triangles() []scene.Triangle { return f.triangles }
func (f fakeScene) MeshInfos() []scene.MeshInfo { return f.meshes }

func quadScene() fakeScene {
	q := scene.Quad("floor", mgl32.Vec3{}, scene.Forward, scene.Right, scene.Up,
		mgl32.Vec2{2, 2}, scene.DefaultMaterial())
	return fakeScene{triangles: q.Triangles, meshes: []scene.MeshInfo{q.Info}}
}

func TestAddBBox(t *testing.T) {
	var l Lines
	l.AddBBox(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 0, 0}, 0.5, BBoxColor)

	require.Len(t, l, BBoxWireframeVertexCount)
	for _, v := range l {
		for i := 0; i < 3; i++ {
			assert.Contains(t, []float32{-0.5, 1.5}, v.Position[i])
		}
	}
}

func TestHelpersFollowFlags(t *testing.T) {
	sc := quadScene()
	params := scene.DefaultParams()
	params.NumMeshes = 1
	cam := camera.New(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, -1}, 100)

	in := &accum.FrameInput{Params: &params, Camera: cam, SceneCamera: cam}
	in.Flags.SceneCamera = true
	assert.Empty(t, Helpers(in, sc))

	in.Flags.GlobalAxis = true
	assert.Equal(t, 3, Helpers(in, sc).Segments())

	in.Flags = renderstate.Flags{SceneCamera: true, Wireframe: true}
	// 12 bbox edges plus 3 edges per triangle
	assert.Equal(t, 12+2*3, Helpers(in, sc).Segments())

	in.Flags = renderstate.Flags{SceneCamera: true, Normals: true}
	l := Helpers(in, sc)
	require.Equal(t, 2, l.Segments())
	assert.InDelta(t, NormalLength, l[1].Position.Sub(l[0].Position).Len(), 1e-5)

	params.NumMeshes = 0
	assert.Empty(t, Helpers(in, sc), "meshes beyond the live count are skipped")
}

func TestHelpersDrawSceneCameraFromHelper(t *testing.T) {
	params := scene.DefaultParams()
	cam := camera.New(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, -1}, 100)
	in := &accum.FrameInput{Params: &params, SceneCamera: cam}

	l := Helpers(in, fakeScene{})
	// basis, 12 frustum edges, 4 rays
	assert.Equal(t, 3+12+4, l.Segments())
	assert.Equal(t, cam.Position, l[0].Position)
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 1, color.RGBA{0, 0, 255, 255})
	return img
}

func TestParseImageFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ImageFormat
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"BMP", FormatBMP, false},
		{"", FormatPNG, false},
		{"jpeg", "", true},
	}
	for _, tt := range tests {
		got, err := ParseImageFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestCaptureFromPixelsFlips(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(dir, "shot", FormatPNG)

	// bottom row red, top row blue
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	r, _, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0xffff), b)

	_, err = sc.CaptureFromPixels(pixels[:4], 2, 2)
	assert.Error(t, err)
}

func TestCaptureBMP(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(filepath.Join(dir, "nested"), "shot", FormatBMP)
	sc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	path, err := sc.CaptureFromImage(testImage())
	require.NoError(t, err)
	assert.Equal(t, "shot_2026-01-02_03-04-05.000.bmp", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := bmp.Decode(f)
	require.NoError(t, err)
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}
