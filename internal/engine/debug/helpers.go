package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pathlight/internal/engine/accum"
	"github.com/Faultbox/pathlight/internal/engine/camera"
	"github.com/Faultbox/pathlight/internal/scene"
)

// Helper geometry sizes.
const (
	AxisLength        = 50
	NormalLength      = 0.5
	CameraBasisLength = 1
)

// Helper colors.
var (
	WireframeColor = mgl32.Vec3{0.9, 0.9, 0.9}
	BBoxColor      = mgl32.Vec3{1, 0.6, 0}
	NormalColor    = mgl32.Vec3{1, 1, 0}
	FrustumColor   = mgl32.Vec3{1, 0, 1}
)

// Scene provides the mesh records helpers are drawn from.
type Scene interface {
	Triangles() []scene.Triangle
	MeshInfos() []scene.MeshInfo
}

// Helpers returns the helper geometry for one frame. Which parts are drawn
// follows the frame flags; the scene camera is drawn only while the helper
// camera is active.
func Helpers(in *accum.FrameInput, sc Scene) Lines {
	var l Lines
	if in.GlobalAxis {
		l.AddAxis(AxisLength)
	}
	if !in.Flags.SceneCamera && in.SceneCamera != nil {
		l.AddCamera(in.SceneCamera)
	}
	if !in.Wireframe && !in.Normals {
		return l
	}

	meshes := sc.MeshInfos()
	meshes = meshes[:min(len(meshes), max(int(in.Params.NumMeshes), 0))]
	triangles := sc.Triangles()
	for i := range meshes {
		info := &meshes[i]
		first := int(info.FirstTriangleIndex)
		tris := triangles[min(first, len(triangles)):min(first+int(info.NumTriangles), len(triangles))]
		if in.Wireframe {
			l.AddBBox(info.BoundsMin, info.BoundsMax, DefaultBBoxPadding, BBoxColor)
			l.AddWireframe(tris)
		}
		if in.Normals {
			l.AddNormals(tris, NormalLength)
		}
	}
	return l
}

// AddAxis appends the world axes, each colored after its direction.
func (l *Lines) AddAxis(length float32) {
	for _, axis := range []mgl32.Vec3{scene.Right, scene.Up, scene.Forward} {
		l.Add(mgl32.Vec3{}, axis.Mul(length), axis)
	}
}

// AddWireframe appends the edges of every triangle.
func (l *Lines) AddWireframe(tris []scene.Triangle) {
	for i := range tris {
		t := &tris[i]
		l.Add(t.A, t.B, WireframeColor)
		l.Add(t.B, t.C, WireframeColor)
		l.Add(t.C, t.A, WireframeColor)
	}
}

// AddNormals appends one line per triangle from its centroid along the
// averaged vertex normal.
func (l *Lines) AddNormals(tris []scene.Triangle, length float32) {
	for i := range tris {
		t := &tris[i]
		center := t.A.Add(t.B).Add(t.C).Mul(1.0 / 3)
		n := t.NormalA.Add(t.NormalB).Add(t.NormalC)
		if n.Len() == 0 {
			continue
		}
		l.Add(center, center.Add(n.Normalize().Mul(length)), NormalColor)
	}
}

// AddCamera appends a camera's basis, its frustum and the rays through the
// near plane corners.
func (l *Lines) AddCamera(c *camera.Camera) {
	pos := c.Position
	l.Add(pos, pos.Add(c.Right().Mul(CameraBasisLength)), scene.Right)
	l.Add(pos, pos.Add(c.Up().Mul(CameraBasisLength)), scene.Up)
	l.Add(pos, pos.Add(c.Forward().Mul(CameraBasisLength)), scene.Forward)

	corners := c.FrustumCorners()
	// near and far rectangles share the bbox corner order
	for _, e := range bboxEdges {
		l.Add(corners[e[0]], corners[e[1]], FrustumColor)
	}
	for _, corner := range corners[:4] {
		l.Add(pos, corner, FrustumColor)
	}
}
