package objloader

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pathlight/internal/assets"
)

const triangleOBJ = `# one triangle
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
`

func TestParseTriangle(t *testing.T) {
	mesh, stats, err := Parse(strings.NewReader(triangleOBJ), "tri.obj", 2, mgl32.Vec3{0, 0, 5})
	require.NoError(t, err)

	assert.Equal(t, "tri", mesh.Name)
	require.Len(t, mesh.Triangles, 1)
	tri := mesh.Triangles[0]
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, tri.A)
	assert.Equal(t, mgl32.Vec3{2, 0, 5}, tri.B)
	assert.Equal(t, mgl32.Vec3{0, 2, 5}, tri.C)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, tri.NormalB)

	assert.Equal(t, mgl32.Vec3{0, 0, 5}, mesh.Info.BoundsMin)
	assert.Equal(t, mgl32.Vec3{2, 2, 5}, mesh.Info.BoundsMax)
	assert.Equal(t, uint32(1), mesh.Info.NumTriangles)
	assert.Equal(t, Stats{Vertices: 3, Normals: 1, Faces: 1, Triangles: 1}, stats)
}

func TestParseFanAndFlatNormals(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1 0.5 0.5 0.5
vt 0 0
f 1/1 4/1 3/1 2/1
`
	mesh, stats, err := Parse(strings.NewReader(src), "quad.obj", 1, mgl32.Vec3{})
	require.NoError(t, err)

	require.Len(t, mesh.Triangles, 2)
	for _, tri := range mesh.Triangles {
		assert.InDelta(t, 1, tri.NormalA.Y(), 1e-6, "flat normal of a counter-clockwise quad seen from above")
		assert.Equal(t, tri.NormalA, tri.NormalC)
	}
	assert.Equal(t, 1, stats.Colors)
	assert.Equal(t, 1, stats.TexCoords)
	assert.Equal(t, 1, stats.Faces)
	assert.Equal(t, 2, stats.Triangles)
}

func TestNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	mesh, _, err := Parse(strings.NewReader(src), "neg.obj", 1, mgl32.Vec3{})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, mesh.Triangles[0].B)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"short vertex", "v 1 2\n", 1, "expected 3 arguments"},
		{"bad float", "v 1 x 2\n", 1, "invalid syntax"},
		{"two vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3, "at least 3 vertices"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\n\nf 1 2 4\n", 5, "out of bounds"},
		{"missing vertex index", "v 0 0 0\nf /1 /1 /1\n", 2, "does not include a vertex index"},
		{"bad normal", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n", 4, "normal coord"},
		{"no faces", "v 0 0 0\n", 1, "no faces"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(strings.NewReader(tt.src), "bad.obj", 1, mgl32.Vec3{})
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, "bad.obj", perr.File)
			assert.Equal(t, tt.line, perr.Line)
			assert.Contains(t, perr.Error(), tt.msg)
			assert.True(t, strings.HasPrefix(perr.Error(), "[bad.obj: "))
		})
	}
}

func TestLoaderBuiltinModels(t *testing.T) {
	var info bytes.Buffer
	l := &Loader{Files: assets.NewManager(), Info: &info}

	cube, err := l.Load(assets.Cube, 2, mgl32.Vec3{0, 1, 0})
	require.NoError(t, err)
	assert.Len(t, cube.Triangles, 12)
	assert.Equal(t, mgl32.Vec3{-1, 0, -1}, cube.Info.BoundsMin)
	assert.Equal(t, mgl32.Vec3{1, 2, 1}, cube.Info.BoundsMax)
	assert.Contains(t, info.String(), "COUNT")
	assert.Contains(t, info.String(), "triangles")
	assert.Contains(t, info.String(), "12")

	ico, stats, err := l.LoadWithStats(assets.Icosahedron, 1, mgl32.Vec3{})
	require.NoError(t, err)
	assert.Len(t, ico.Triangles, 20)
	assert.Equal(t, 12, stats.Vertices)
	// flat normals point away from the center
	for _, tri := range ico.Triangles {
		center := tri.A.Add(tri.B).Add(tri.C)
		assert.Greater(t, center.Dot(tri.NormalA), float32(0))
	}
}

func TestLoaderMissingFile(t *testing.T) {
	l := &Loader{Files: assets.NewManager()}
	_, err := l.Load("nope.obj", 1, mgl32.Vec3{})
	assert.ErrorIs(t, err, assets.ErrNotFound)
}
