package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshLoader loads a triangle mesh from a model file, scaling then offsetting every vertex.
type MeshLoader interface {
	Load(path string, scale float32, offset mgl32.Vec3) (*Mesh, error)
}

// Writer receives the records of a built scene. scenebuf.Writer implements it.
type Writer interface {
	WriteSpheres(first int, spheres []Sphere)
	WriteTriangles(first int, triangles []Triangle)
	WriteMeshes(first int, meshes []MeshInfo)
}

// Layout is a fully computed scene that has not been written anywhere yet.
type Layout struct {
	Variant Variant
	Spheres []Sphere
	Meshes  []*Mesh

	EnableEnvLight bool
	// Zero leaves the corresponding parameter untouched.
	RaysPerPixel int32
	RayBounces   int32
}

// TotalTriangles sums the triangle counts of all meshes.
func (l *Layout) TotalTriangles() int {
	total := 0
	for _, m := range l.Meshes {
		total += len(m.Triangles)
	}
	return total
}

// Validate checks every record count against the buffer capacities.
func (l *Layout) Validate() error {
	if n := len(l.Spheres); n > MaxSpheres {
		return &CapacityError{Kind: "sphere", Count: n, Limit: MaxSpheres}
	}
	if n := len(l.Meshes); n > MaxMeshes {
		return &CapacityError{Kind: "mesh", Count: n, Limit: MaxMeshes}
	}
	if n := l.TotalTriangles(); n > MaxTriangles {
		return &CapacityError{Kind: "triangle", Count: n, Limit: MaxTriangles}
	}
	return nil
}

// MeshRecords returns the mesh-info records with FirstTriangleIndex assigned by
// accumulating the triangle counts of the preceding meshes.
func (l *Layout) MeshRecords() []MeshInfo {
	records := make([]MeshInfo, len(l.Meshes))
	var first uint32
	for i, m := range l.Meshes {
		records[i] = m.Info
		records[i].FirstTriangleIndex = first
		records[i].NumTriangles = uint32(len(m.Triangles))
		first += uint32(len(m.Triangles))
	}
	return records
}

// Apply validates the layout, writes all records and updates params.
// Nothing is written and params stay untouched when validation fails.
func (l *Layout) Apply(params *Params, w Writer) error {
	if err := l.Validate(); err != nil {
		return err
	}

	if len(l.Spheres) > 0 {
		w.WriteSpheres(0, l.Spheres)
	}
	records := l.MeshRecords()
	for i, m := range l.Meshes {
		if len(m.Triangles) > 0 {
			w.WriteTriangles(int(records[i].FirstTriangleIndex), m.Triangles)
		}
	}
	if len(records) > 0 {
		w.WriteMeshes(0, records)
	}

	params.NumSpheres = int32(len(l.Spheres))
	params.NumMeshes = int32(len(l.Meshes))
	params.EnableEnvLight = l.EnableEnvLight
	if l.RaysPerPixel > 0 {
		params.NumRaysPerPixel = l.RaysPerPixel
	}
	if l.RayBounces > 0 {
		params.NumRayBounces = l.RayBounces
	}
	return nil
}

// Builder turns a Variant into a Layout.
type Builder struct {
	Loader MeshLoader

	// MeshPath is the model used by SingleMesh and MeshInRoom.
	MeshPath  string
	MeshScale float32

	// CustomMeshPath is the model used by CustomMesh.
	CustomMeshPath string
}

// Build plans the variant and applies it to params and w.
func (b *Builder) Build(v Variant, params *Params, w Writer) (*Layout, error) {
	layout, err := b.Plan(v)
	if err != nil {
		return nil, err
	}
	if err := layout.Apply(params, w); err != nil {
		return nil, fmt.Errorf("building %s: %w", v, err)
	}
	return layout, nil
}

// Plan computes the geometry of a variant without touching any buffer.
func (b *Builder) Plan(v Variant) (*Layout, error) {
	switch v {
	case SphereRing:
		return b.sphereRing(), nil
	case SingleMesh:
		return b.singleMesh(b.MeshPath, SingleMesh)
	case MeshInRoom:
		return b.meshInRoom()
	case RoomSpheres:
		return b.roomSpheres(4), nil
	case CustomMesh:
		return b.singleMesh(b.CustomMeshPath, CustomMesh)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
}

var ringPalette = [MaxSpheres]mgl32.Vec3{
	{1.00, 0.00, 1.00},
	{0.11, 0.11, 0.11},
	{0.00, 1.00, 0.00},
	{0.00, 1.00, 1.00},
	{1.00, 0.00, 0.00},
	{1.00, 1.00, 1.00},
}

func (b *Builder) sphereRing() *Layout {
	const bigRadius = 10

	l := &Layout{Variant: SphereRing, EnableEnvLight: true}
	l.Spheres = append(l.Spheres, Sphere{
		Position: mgl32.Vec3{},
		Radius:   bigRadius,
		Material: ColorMaterial(ringPalette[0]),
	})

	dir := mgl32.QuatRotate(-math32.Pi*0.1, Right).Rotate(Up)
	step := mgl32.QuatRotate(math32.Pi*0.03, Right)
	for i := 1; i < MaxSpheres; i++ {
		r := float32(i) * 0.1
		l.Spheres = append(l.Spheres, Sphere{
			Position: dir.Mul(bigRadius + r),
			Radius:   r,
			Material: ColorMaterial(ringPalette[i]),
		})
		dir = step.Rotate(dir)
	}
	return l
}

func (b *Builder) loadMesh(path string, offset mgl32.Vec3) (*Mesh, error) {
	if b.Loader == nil {
		return nil, ErrNoLoader
	}
	if path == "" {
		return nil, ErrNoMeshPath
	}
	scale := b.MeshScale
	if scale == 0 {
		scale = 1
	}
	m, err := b.Loader.Load(path, scale, offset)
	if err != nil {
		return nil, fmt.Errorf("loading mesh %s: %w", path, err)
	}
	return m, nil
}

func (b *Builder) singleMesh(path string, v Variant) (*Layout, error) {
	m, err := b.loadMesh(path, mgl32.Vec3{})
	if err != nil {
		return nil, err
	}
	return &Layout{Variant: v, Meshes: []*Mesh{m}, EnableEnvLight: true}, nil
}

func (b *Builder) meshInRoom() (*Layout, error) {
	m, err := b.loadMesh(b.MeshPath, mgl32.Vec3{0, -10, 0})
	if err != nil {
		return nil, err
	}
	m.Rotate(math32.Pi/3, Up.Mul(-1))

	room := NewRoom(mgl32.Vec3{}, 20, 20, 20, DefaultLampPosScale, DefaultLampScale)

	l := &Layout{Variant: MeshInRoom}
	l.Meshes = append(l.Meshes, m)
	l.Meshes = append(l.Meshes, room.Meshes()...)
	return l, nil
}

func (b *Builder) roomSpheres(n int) *Layout {
	const r = 5

	room := NewRoom(mgl32.Vec3{}, 50, 20, 20, DefaultLampPosScale, DefaultLampScale)
	floor := DefaultMaterial()
	floor.Flags = MaterialFlagCheckered
	room.SetMaterial(RoomFloor, floor)
	room.SetMaterial(RoomRight, ColorMaterial(Up))
	room.SetMaterial(RoomFront, ColorMaterial(Forward))

	l := &Layout{
		Variant:      RoomSpheres,
		Meshes:       room.Meshes(),
		RaysPerPixel: 5,
		RayBounces:   5,
	}

	start := mgl32.Vec3{-r * float32(n), 0, 0}
	var offset float32
	for i := 0; i < n; i++ {
		m := DefaultMaterial()
		if n > 1 {
			m.Smoothness = float32(i) / float32(n-1)
		}
		l.Spheres = append(l.Spheres, Sphere{
			Position: start.Add(mgl32.Vec3{offset, 0, 0}),
			Radius:   r,
			Material: m,
		})
		offset += r*2 + 2
	}
	return l
}
