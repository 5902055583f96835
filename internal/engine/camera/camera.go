// Package camera provides the free-fly camera used by the renderer.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var worldUp = mgl32.Vec3{0, 1, 0}

// Pitch is clamped short of straight up/down so the basis stays defined.
const maxPitch = math32.Pi/2 - 0.01

// Movement directions relative to the camera.
type Movement int

const (
	MoveForward Movement = iota
	MoveBack
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

// Pose is the position and orientation of a camera.
type Pose struct {
	Position mgl32.Vec3
	Yaw      float32 // radians, 0 looks down -Z
	Pitch    float32 // radians
}

// Camera is a perspective free-fly camera.
type Camera struct {
	Pose

	FOV   float32 // vertical, degrees
	Near  float32
	Far   float32
	Speed float32 // units per second

	// Sensitivity converts mouse pixels to radians.
	Sensitivity float32

	aspect float32
}

// New creates a camera at position looking along forward.
func New(position, forward mgl32.Vec3, fov float32) *Camera {
	c := &Camera{
		FOV:         fov,
		Near:        0.1,
		Far:         100,
		Speed:       5,
		Sensitivity: 0.0025,
		aspect:      1,
	}
	c.Position = position
	c.LookAlong(forward)
	return c
}

// LookAlong orients the camera along dir.
func (c *Camera) LookAlong(dir mgl32.Vec3) {
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.Pitch = clampPitch(math32.Asin(dir.Y()))
	c.Yaw = math32.Atan2(dir.X(), -dir.Z())
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	sp, cp := math32.Sincos(c.Pitch)
	return mgl32.Vec3{cp * sy, sp, -cp * cy}
}

// Right returns the unit right vector.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Forward().Cross(worldUp).Normalize()
}

// Up returns the unit up vector of the view basis.
func (c *Camera) Up() mgl32.Vec3 {
	return c.Right().Cross(c.Forward())
}

// SetAspect sets the viewport aspect ratio (width / height).
func (c *Camera) SetAspect(aspect float32) {
	if aspect > 0 {
		c.aspect = aspect
	}
}

// Aspect returns the viewport aspect ratio.
func (c *Camera) Aspect() float32 {
	return c.aspect
}

// Move translates the camera for dt seconds in one direction.
func (c *Camera) Move(m Movement, dt float32) {
	step := c.Speed * dt
	switch m {
	case MoveForward:
		c.Position = c.Position.Add(c.Forward().Mul(step))
	case MoveBack:
		c.Position = c.Position.Sub(c.Forward().Mul(step))
	case MoveRight:
		c.Position = c.Position.Add(c.Right().Mul(step))
	case MoveLeft:
		c.Position = c.Position.Sub(c.Right().Mul(step))
	case MoveUp:
		c.Position = c.Position.Add(worldUp.Mul(step))
	case MoveDown:
		c.Position = c.Position.Sub(worldUp.Mul(step))
	}
}

// Rotate applies a relative mouse motion in pixels.
func (c *Camera) Rotate(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch = clampPitch(c.Pitch - dy*c.Sensitivity)
}

// CopyPose places c where other is, looking the same way.
func (c *Camera) CopyPose(other *Camera) {
	c.Pose = other.Pose
}

// View returns the world-to-view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), worldUp)
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// InverseViewProjection maps clip space back to world space.
func (c *Camera) InverseViewProjection() mgl32.Mat4 {
	return c.ViewProjection().Inv()
}

// RayDirection returns the unit world direction through a point in
// normalized device coordinates (-1..1 on both axes).
func (c *Camera) RayDirection(ndcX, ndcY float32) mgl32.Vec3 {
	halfH := math32.Tan(mgl32.DegToRad(c.FOV) / 2)
	halfW := halfH * c.aspect
	dir := c.Forward().
		Add(c.Right().Mul(ndcX * halfW)).
		Add(c.Up().Mul(ndcY * halfH))
	return dir.Normalize()
}

// FrustumCorners returns the near plane corners followed by the far plane
// corners, each ordered bottom-left, bottom-right, top-right, top-left.
func (c *Camera) FrustumCorners() [8]mgl32.Vec3 {
	f, r, u := c.Forward(), c.Right(), c.Up()
	tan := math32.Tan(mgl32.DegToRad(c.FOV) / 2)

	var out [8]mgl32.Vec3
	for i, dist := range [2]float32{c.Near, c.Far} {
		center := c.Position.Add(f.Mul(dist))
		h := tan * dist
		w := h * c.aspect
		out[i*4+0] = center.Sub(r.Mul(w)).Sub(u.Mul(h))
		out[i*4+1] = center.Add(r.Mul(w)).Sub(u.Mul(h))
		out[i*4+2] = center.Add(r.Mul(w)).Add(u.Mul(h))
		out[i*4+3] = center.Sub(r.Mul(w)).Add(u.Mul(h))
	}
	return out
}

func clampPitch(p float32) float32 {
	return math32.Max(-maxPitch, math32.Min(maxPitch, p))
}
