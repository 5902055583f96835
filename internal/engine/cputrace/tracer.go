// Package cputrace is a host-side path tracer implementing accum.Sampler.
// It follows the sampling shader closely so headless renders match the
// interactive image; it is not meant to be fast.
package cputrace

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pathlight/internal/engine/accum"
	"github.com/Faultbox/pathlight/internal/scene"
)

const epsilon = 1e-4

var sunDirection = mgl32.Vec3{0.4, 0.7, -0.55}.Normalize()

// Source provides the scene arrays, typically a *scenebuf.Store.
type Source interface {
	Spheres() []scene.Sphere
	Triangles() []scene.Triangle
	MeshInfos() []scene.MeshInfo
}

// Tracer samples the scene held by a Source.
type Tracer struct {
	src Source

	in            *accum.FrameInput
	width, height int

	spheres   []scene.Sphere
	triangles []scene.Triangle
	meshes    []scene.MeshInfo

	origin             mgl32.Vec3
	forward, right, up mgl32.Vec3
	tanHalfFov, aspect float32
}

var _ accum.Sampler = (*Tracer)(nil)

// New returns a tracer reading from src.
func New(src Source) *Tracer {
	return &Tracer{src: src}
}

// BeginFrame snapshots the scene and camera for one frame.
func (t *Tracer) BeginFrame(in *accum.FrameInput, width, height int) {
	t.in = in
	t.width, t.height = width, height

	p := in.Params
	t.spheres = clampLen(t.src.Spheres(), int(p.NumSpheres))
	t.meshes = clampLen(t.src.MeshInfos(), int(p.NumMeshes))
	t.triangles = t.src.Triangles()

	cam := in.Camera
	t.origin = cam.Position
	t.forward, t.right, t.up = cam.Forward(), cam.Right(), cam.Up()
	t.tanHalfFov = math32.Tan(mgl32.DegToRad(cam.FOV) / 2)
	t.aspect = float32(width) / float32(height)
}

func clampLen[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	return s[:min(n, len(s))]
}

// Sample traces NumRaysPerPixel paths through pixel (x, y).
func (t *Tracer) Sample(x, y int) mgl32.Vec3 {
	p := t.in.Params
	seq := rng((uint32(y)*uint32(t.width) + uint32(x)) ^ (t.in.Seed*719393 + t.in.Index*26699))

	ndcX := (float32(x)+0.5)/float32(t.width)*2 - 1
	ndcY := (float32(y)+0.5)/float32(t.height)*2 - 1
	dir := t.forward.
		Add(t.right.Mul(ndcX * t.tanHalfFov * t.aspect)).
		Add(t.up.Mul(ndcY * t.tanHalfFov)).
		Normalize()
	focusPoint := t.origin.Add(dir.Mul(p.FocusDistance))

	rays := max(int(p.NumRaysPerPixel), 1)
	var total mgl32.Vec3
	for i := 0; i < rays; i++ {
		d := seq.pointInCircle().Mul(p.DefocusStrength / float32(t.width))
		origin := t.origin.Add(t.right.Mul(d.X())).Add(t.up.Mul(d.Y()))

		j := seq.pointInCircle().Mul(p.DivergeStrength / float32(t.width))
		target := focusPoint.Add(t.right.Mul(j.X())).Add(t.up.Mul(j.Y()))

		total = total.Add(t.trace(ray{origin, target.Sub(origin).Normalize()}, &seq))
	}
	return total.Mul(1 / float32(rays))
}

func (t *Tracer) trace(r ray, seq *rng) mgl32.Vec3 {
	p := t.in.Params
	var light mgl32.Vec3
	color := mgl32.Vec3{1, 1, 1}

	for bounce := 0; bounce <= int(p.NumRayBounces); bounce++ {
		h := t.collide(r)
		if !h.ok {
			light = light.Add(mulVec(environment(p, r), color))
			break
		}

		m := h.material
		specular := seq.value() < m.SpecularProbability

		diffuseDir := h.normal.Add(seq.direction()).Normalize()
		specularDir := reflect(r.dir, h.normal)
		mix := m.Smoothness
		if specular {
			mix = 1
		}
		r.origin = h.point.Add(h.normal.Mul(epsilon))
		r.dir = diffuseDir.Mul(1 - mix).Add(specularDir.Mul(mix)).Normalize()

		light = light.Add(mulVec(m.EmissionColor.Mul(m.EmissionStrength), color))
		if specular {
			color = mulVec(color, m.SpecularColor)
		} else {
			color = mulVec(color, surfaceColor(m, h.point))
		}

		pmax := math32.Max(color[0], math32.Max(color[1], color[2]))
		if seq.value() >= pmax {
			break
		}
		color = color.Mul(1 / pmax)
	}
	return light
}

func (t *Tracer) collide(r ray) hit {
	closest := hit{dst: math32.MaxFloat32}

	for i := range t.spheres {
		s := &t.spheres[i]
		if h := raySphere(r, s.Position, s.Radius); h.ok && h.dst < closest.dst {
			h.material = s.Material
			closest = h
		}
	}

	for i := range t.meshes {
		info := &t.meshes[i]
		lo := info.BoundsMin.Sub(mgl32.Vec3{epsilon, epsilon, epsilon})
		hi := info.BoundsMax.Add(mgl32.Vec3{epsilon, epsilon, epsilon})
		if !rayBox(r, lo, hi, closest.dst) {
			continue
		}
		first := int(info.FirstTriangleIndex)
		last := min(first+int(info.NumTriangles), len(t.triangles))
		for j := first; j < last; j++ {
			if h := rayTriangle(r, &t.triangles[j]); h.ok && h.dst < closest.dst {
				h.material = info.Material
				closest = h
			}
		}
	}
	return closest
}

func environment(p *scene.Params, r ray) mgl32.Vec3 {
	if !p.EnableEnvLight {
		return mgl32.Vec3{}
	}
	y := r.dir.Y()
	skyT := math32.Pow(smoothstep(0, 0.4, y), 0.35)
	groundToSky := smoothstep(-0.01, 0, y)
	sky := lerp(p.SkyHorizonColor, p.SkyZenithColor, skyT)

	sun := math32.Pow(math32.Max(0, r.dir.Dot(sunDirection)), p.SunFocus) * p.SunIntensity
	if groundToSky < 1 {
		sun = 0
	}
	c := lerp(p.GroundColor, sky, groundToSky)
	return c.Add(mgl32.Vec3{sun, sun, sun})
}

func surfaceColor(m scene.Material, point mgl32.Vec3) mgl32.Vec3 {
	c := m.Color.Vec3()
	if m.Flags&scene.MaterialFlagCheckered != 0 {
		cx := int(math32.Floor(point.X() * 0.5))
		cz := int(math32.Floor(point.Z() * 0.5))
		if (cx+cz)&1 == 0 {
			c = c.Mul(0.25)
		}
	}
	return c
}

func smoothstep(e0, e1, x float32) float32 {
	t := math32.Max(0, math32.Min(1, (x-e0)/(e1-e0)))
	return t * t * (3 - 2*t)
}

func lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

func mulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func reflect(d, n mgl32.Vec3) mgl32.Vec3 {
	return d.Sub(n.Mul(2 * d.Dot(n)))
}
