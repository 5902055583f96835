// Package scene describes the ray-traced scene: GPU record layouts, procedural
// geometry and the canned scene variants that populate the scene buffers.
package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Capacity limits of the scene buffers. The sampling shader receives the same values
// as #defines generated from these constants.
const (
	MaxSpheres   = 6
	MaxTriangles = 500
	MaxMeshes    = 10
)

// MaterialFlagCheckered makes the sampler modulate the surface color with a checker pattern.
const MaterialFlagCheckered uint32 = 1

// World axes. Colors reuse them (red = right, green = up, blue = forward).
var (
	Right   = mgl32.Vec3{1, 0, 0}
	Up      = mgl32.Vec3{0, 1, 0}
	Forward = mgl32.Vec3{0, 0, 1}
)

// Material is the surface description shared by spheres and meshes.
// Layout matches the std430 struct in rt.frag (64 bytes).
type Material struct {
	Color               mgl32.Vec4
	EmissionColor       mgl32.Vec3
	_                   float32
	SpecularColor       mgl32.Vec3
	EmissionStrength    float32
	Smoothness          float32
	SpecularProbability float32
	Flags               uint32
	_                   float32
}

// DefaultMaterial returns a white diffuse material.
func DefaultMaterial() Material {
	return Material{
		Color:         mgl32.Vec4{1, 1, 1, 1},
		SpecularColor: mgl32.Vec3{1, 1, 1},
	}
}

// ColorMaterial returns a diffuse material with the given opaque color.
func ColorMaterial(c mgl32.Vec3) Material {
	m := DefaultMaterial()
	m.Color = c.Vec4(1)
	return m
}

// Sphere is one record of the sphere buffer (80 bytes).
type Sphere struct {
	Position mgl32.Vec3
	Radius   float32
	Material Material
}

// Triangle is one record of the triangle buffer. Every vec3 is padded to 16 bytes (96 bytes).
type Triangle struct {
	A       mgl32.Vec3
	_       float32
	B       mgl32.Vec3
	_       float32
	C       mgl32.Vec3
	_       float32
	NormalA mgl32.Vec3
	_       float32
	NormalB mgl32.Vec3
	_       float32
	NormalC mgl32.Vec3
	_       float32
}

// MeshInfo describes one logical mesh's slice of the triangle buffer (112 bytes).
type MeshInfo struct {
	FirstTriangleIndex uint32
	NumTriangles       uint32
	_                  [2]uint32
	BoundsMin          mgl32.Vec3
	_                  float32
	BoundsMax          mgl32.Vec3
	_                  float32
	Material           Material
}

// EmptyMeshInfo returns a record with inverted bounds, ready to be extended.
func EmptyMeshInfo() MeshInfo {
	return MeshInfo{
		BoundsMin: mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		BoundsMax: mgl32.Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
		Material:  DefaultMaterial(),
	}
}

// Extend grows the bounds to contain p.
func (mi *MeshInfo) Extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		mi.BoundsMin[i] = math32.Min(mi.BoundsMin[i], p[i])
		mi.BoundsMax[i] = math32.Max(mi.BoundsMax[i], p[i])
	}
}

// Params is the scene-wide record pushed to the sampling pass every frame.
type Params struct {
	GroundColor     mgl32.Vec3
	SkyHorizonColor mgl32.Vec3
	SkyZenithColor  mgl32.Vec3
	NumRaysPerPixel int32
	NumRayBounces   int32
	NumSpheres      int32
	NumMeshes       int32
	EnableEnvLight  bool
	SunFocus        float32
	SunIntensity    float32
	DivergeStrength float32
	DefocusStrength float32
	FocusDistance   float32
}

// DefaultParams returns the parameters used before any scene is built.
func DefaultParams() Params {
	return Params{
		GroundColor:     mgl32.Vec3{0.35, 0.3, 0.35},
		SkyHorizonColor: mgl32.Vec3{1, 1, 1},
		SkyZenithColor:  mgl32.Vec3{0.08, 0.37, 0.73},
		NumRaysPerPixel: 1,
		NumRayBounces:   3,
		EnableEnvLight:  true,
		SunFocus:        500,
		SunIntensity:    10,
		DivergeStrength: 0.3,
		DefocusStrength: 0,
		FocusDistance:   10,
	}
}
