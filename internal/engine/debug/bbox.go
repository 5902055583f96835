package debug

import "github.com/go-gl/mathgl/mgl32"

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// DefaultBBoxPadding is the default padding around mesh bounds.
const DefaultBBoxPadding = 0.05

// bboxEdges indexes the corners produced by boxCorners.
var bboxEdges = [12][2]int{
	// bottom face
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	// top face
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	// vertical edges
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

func boxCorners(lo, hi mgl32.Vec3) [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {hi[0], lo[1], hi[2]}, {lo[0], lo[1], hi[2]},
		{lo[0], hi[1], lo[2]}, {hi[0], hi[1], lo[2]}, {hi[0], hi[1], hi[2]}, {lo[0], hi[1], hi[2]},
	}
}

// AddBBox appends the wireframe of the box [lo, hi] grown by padding on all sides.
// Swapped corners are normalized first.
func (l *Lines) AddBBox(lo, hi mgl32.Vec3, padding float32, color mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if lo[i] > hi[i] {
			lo[i], hi[i] = hi[i], lo[i]
		}
		lo[i] -= padding
		hi[i] += padding
	}

	c := boxCorners(lo, hi)
	for _, e := range bboxEdges {
		l.Add(c[e[0]], c[e[1]], color)
	}
}
