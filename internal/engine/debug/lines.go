// Package debug builds helper geometry drawn over the ray-traced image and
// saves screenshots.
package debug

import "github.com/go-gl/mathgl/mgl32"

// LineVertex is one endpoint of a helper line. The layout matches the line
// shader inputs: position at location 0, color at location 1.
type LineVertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// LineVertexSize is the stride of LineVertex in bytes.
const LineVertexSize = 24

// Lines is a list of line segments, two vertices per segment.
type Lines []LineVertex

// Add appends the segment a-b.
func (l *Lines) Add(a, b, color mgl32.Vec3) {
	*l = append(*l, LineVertex{a, color}, LineVertex{b, color})
}

// Segments returns the number of segments.
func (l Lines) Segments() int {
	return len(l) / 2
}
