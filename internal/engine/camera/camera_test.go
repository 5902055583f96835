package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d: want %v, got %v", i, want, got)
	}
}

func TestBasis(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, -1}, 90)

	assertVec(t, mgl32.Vec3{0, 0, -1}, c.Forward())
	assertVec(t, mgl32.Vec3{1, 0, 0}, c.Right())
	assertVec(t, mgl32.Vec3{0, 1, 0}, c.Up())

	c.LookAlong(mgl32.Vec3{1, 0, 0})
	assertVec(t, mgl32.Vec3{1, 0, 0}, c.Forward())
	assertVec(t, mgl32.Vec3{0, 0, 1}, c.Right())
}

func TestMove(t *testing.T) {
	c := New(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 90)
	c.Speed = 2

	tests := []struct {
		move Movement
		want mgl32.Vec3
	}{
		{MoveForward, mgl32.Vec3{0, 0, -1}},
		{MoveBack, mgl32.Vec3{0, 0, 1}},
		{MoveRight, mgl32.Vec3{1, 0, 0}},
		{MoveLeft, mgl32.Vec3{-1, 0, 0}},
		{MoveUp, mgl32.Vec3{0, 1, 0}},
		{MoveDown, mgl32.Vec3{0, -1, 0}},
	}
	for _, tt := range tests {
		c.Position = mgl32.Vec3{}
		c.Move(tt.move, 0.5)
		assertVec(t, tt.want, c.Position)
	}
}

func TestRotateClampsPitch(t *testing.T) {
	c := New(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 90)
	c.Rotate(0, -1e6)
	assert.InDelta(t, maxPitch, c.Pitch, 1e-6)
	assert.False(t, c.Right().Len() < 0.99)
}

func TestCopyPose(t *testing.T) {
	scene := New(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 1, -1}, 60)
	helper := New(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 100)

	helper.CopyPose(scene)
	assert.Equal(t, scene.Position, helper.Position)
	assertVec(t, scene.Forward(), helper.Forward())
	assert.Equal(t, float32(100), helper.FOV)
}

func TestFrustumCorners(t *testing.T) {
	c := New(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 90)
	c.Near, c.Far = 1, 10
	c.SetAspect(2)

	corners := c.FrustumCorners()
	assertVec(t, mgl32.Vec3{-2, -1, -1}, corners[0])
	assertVec(t, mgl32.Vec3{2, 1, -1}, corners[2])
	assertVec(t, mgl32.Vec3{-20, 10, -10}, corners[7])

	// corners project to the clip-space box
	vp := c.ViewProjection()
	p := mgl32.TransformCoordinate(corners[2], vp)
	assert.InDelta(t, 1, p.X(), 1e-4)
	assert.InDelta(t, 1, p.Y(), 1e-4)
}

func TestRayDirection(t *testing.T) {
	c := New(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 90)
	assertVec(t, mgl32.Vec3{0, 0, -1}, c.RayDirection(0, 0))
	assertVec(t, mgl32.Vec3{1, 0, -1}.Normalize(), c.RayDirection(1, 0))
}
