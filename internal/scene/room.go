package scene

import "github.com/go-gl/mathgl/mgl32"

// Room mesh indices.
const (
	RoomLeft = iota
	RoomRight
	RoomBack
	RoomFront
	RoomCeiling
	RoomFloor
	RoomLamp

	RoomTotalMeshes    = 7
	RoomTotalTriangles = RoomTotalMeshes * 2
)

// Lamp placement used when none is given: near the ceiling, half the room's footprint.
var (
	DefaultLampPosScale = mgl32.Vec3{0.5, 0.9, 0.5}
	DefaultLampScale    = float32(0.5)
)

// LampEmission is the emission strength of the ceiling lamp.
const LampEmission = 35

// Room is an enclosing box of six inward-facing walls plus an emissive ceiling lamp.
type Room struct {
	meshes [RoomTotalMeshes]*Mesh
}

// NewRoom builds a room centered at center. lampPosScale positions the lamp corner relative
// to the half extents and lampScale sizes it relative to the ceiling.
func NewRoom(center mgl32.Vec3, width, height, depth float32, lampPosScale mgl32.Vec3, lampScale float32) *Room {
	lamp := DefaultMaterial()
	lamp.EmissionColor = mgl32.Vec3{1, 1, 1}
	lamp.EmissionStrength = LampEmission

	half := mgl32.Vec3{width, height, depth}.Mul(0.5)
	minX, minY, minZ := center.X()-half.X(), center.Y()-half.Y(), center.Z()-half.Z()
	maxX, maxY, maxZ := center.X()+half.X(), center.Y()+half.Y(), center.Z()+half.Z()

	r := &Room{}
	r.meshes[RoomLeft] = Quad("left", mgl32.Vec3{minX, minY, maxZ},
		Up, Forward.Mul(-1), Right, mgl32.Vec2{depth, height}, ColorMaterial(Right))
	r.meshes[RoomRight] = Quad("right", mgl32.Vec3{maxX, minY, minZ},
		Up, Forward, Right.Mul(-1), mgl32.Vec2{depth, height}, ColorMaterial(Forward))
	r.meshes[RoomBack] = Quad("back", mgl32.Vec3{minX, minY, minZ},
		Up, Right, Forward, mgl32.Vec2{width, height}, ColorMaterial(mgl32.Vec3{0.1, 0.1, 0.1}))
	r.meshes[RoomFront] = Quad("front", mgl32.Vec3{maxX, minY, maxZ},
		Up, Right.Mul(-1), Forward.Mul(-1), mgl32.Vec2{width, height}, ColorMaterial(mgl32.Vec3{}))
	r.meshes[RoomCeiling] = Quad("ceiling", mgl32.Vec3{maxX, maxY, maxZ},
		Forward.Mul(-1), Right.Mul(-1), Up.Mul(-1), mgl32.Vec2{width, depth}, DefaultMaterial())
	r.meshes[RoomFloor] = Quad("floor", mgl32.Vec3{minX, minY, maxZ},
		Forward.Mul(-1), Right, Up, mgl32.Vec2{width, depth}, ColorMaterial(Up))

	lampCorner := center.Add(mgl32.Vec3{
		half.X() * lampPosScale.X(),
		half.Y() * lampPosScale.Y(),
		half.Z() * lampPosScale.Z(),
	})
	r.meshes[RoomLamp] = Quad("lamp", lampCorner,
		Forward.Mul(-1), Right.Mul(-1), Up.Mul(-1), mgl32.Vec2{width, depth}.Mul(lampScale), lamp)

	return r
}

// SetMaterial overrides the material of one room mesh.
func (r *Room) SetMaterial(idx int, m Material) {
	r.meshes[idx].Info.Material = m
}

// Material returns the material of one room mesh.
func (r *Room) Material(idx int) Material {
	return r.meshes[idx].Info.Material
}

// Meshes returns the room meshes in index order.
func (r *Room) Meshes() []*Mesh {
	return r.meshes[:]
}
