package cputrace

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pathlight/internal/scene"
)

type ray struct {
	origin, dir mgl32.Vec3
}

type hit struct {
	ok       bool
	dst      float32
	point    mgl32.Vec3
	normal   mgl32.Vec3
	material scene.Material
}

func raySphere(r ray, center mgl32.Vec3, radius float32) hit {
	offset := r.origin.Sub(center)
	b := offset.Dot(r.dir)
	c := offset.Dot(offset) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return hit{}
	}

	s := math32.Sqrt(disc)
	dst := -b - s
	if dst < epsilon {
		dst = -b + s
	}
	if dst < epsilon {
		return hit{}
	}

	point := r.origin.Add(r.dir.Mul(dst))
	return hit{ok: true, dst: dst, point: point, normal: point.Sub(center).Normalize()}
}

// rayTriangle is double sided; the normal faces the ray.
func rayTriangle(r ray, tri *scene.Triangle) hit {
	edgeAB := tri.B.Sub(tri.A)
	edgeAC := tri.C.Sub(tri.A)

	p := r.dir.Cross(edgeAC)
	det := edgeAB.Dot(p)
	if math32.Abs(det) < 1e-8 {
		return hit{}
	}
	inv := 1 / det

	ao := r.origin.Sub(tri.A)
	u := ao.Dot(p) * inv
	if u < 0 || u > 1 {
		return hit{}
	}
	q := ao.Cross(edgeAB)
	v := r.dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return hit{}
	}
	dst := edgeAC.Dot(q) * inv
	if dst < epsilon {
		return hit{}
	}

	w := 1 - u - v
	n := tri.NormalA.Mul(w).Add(tri.NormalB.Mul(u)).Add(tri.NormalC.Mul(v)).Normalize()
	if n.Dot(r.dir) > 0 {
		n = n.Mul(-1)
	}
	return hit{ok: true, dst: dst, point: r.origin.Add(r.dir.Mul(dst)), normal: n}
}

func rayBox(r ray, lo, hi mgl32.Vec3, maxDst float32) bool {
	near := float32(-math32.MaxFloat32)
	far := float32(math32.MaxFloat32)
	for i := 0; i < 3; i++ {
		inv := 1 / r.dir[i]
		t0 := (lo[i] - r.origin[i]) * inv
		t1 := (hi[i] - r.origin[i]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		near = math32.Max(near, t0)
		far = math32.Min(far, t1)
	}
	return far >= math32.Max(near, 0) && near < maxDst
}

// rng is the PCG hash used by the sampling shader.
type rng uint32

func (s *rng) value() float32 {
	*s = *s*747796405 + 2891336453
	state := uint32(*s)
	result := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	result = (result >> 22) ^ result
	return float32(result) / 4294967295.0
}

func (s *rng) normal() float32 {
	theta := 2 * math32.Pi * s.value()
	rho := math32.Sqrt(-2 * math32.Log(math32.Max(s.value(), 1e-12)))
	return rho * math32.Cos(theta)
}

func (s *rng) direction() mgl32.Vec3 {
	d := mgl32.Vec3{s.normal(), s.normal(), s.normal()}
	if d.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return d.Normalize()
}

func (s *rng) pointInCircle() mgl32.Vec2 {
	angle := s.value() * 2 * math32.Pi
	sin, cos := math32.Sincos(angle)
	return mgl32.Vec2{cos, sin}.Mul(math32.Sqrt(s.value()))
}
