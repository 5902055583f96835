package scene

import "github.com/go-gl/mathgl/mgl32"

// Mesh is a CPU-side mesh: its triangles plus the metadata record written to the
// mesh buffer. Info.FirstTriangleIndex is assigned when the mesh is placed in a layout.
type Mesh struct {
	Name      string
	Triangles []Triangle
	Info      MeshInfo
}

// NewMesh returns an empty mesh with inverted bounds.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name, Info: EmptyMeshInfo()}
}

// AddTriangle appends a triangle and grows the bounds.
func (m *Mesh) AddTriangle(t Triangle) {
	m.Triangles = append(m.Triangles, t)
	m.Info.Extend(t.A)
	m.Info.Extend(t.B)
	m.Info.Extend(t.C)
	m.Info.NumTriangles = uint32(len(m.Triangles))
}

// Quad builds a flat-shaded rectangle from two triangles split along the diagonal.
// corner is the bottom-left vertex, axisY and axisX span the quad scaled by size.Y() and size.X().
func Quad(name string, corner, axisY, axisX, normal mgl32.Vec3, size mgl32.Vec2, material Material) *Mesh {
	top := corner.Add(axisY.Mul(size.Y()))
	right := corner.Add(axisX.Mul(size.X()))
	far := top.Add(axisX.Mul(size.X()))

	m := NewMesh(name)
	m.AddTriangle(Triangle{
		A: top, B: corner, C: far,
		NormalA: normal, NormalB: normal, NormalC: normal,
	})
	m.AddTriangle(Triangle{
		A: right, B: far, C: corner,
		NormalA: normal, NormalB: normal, NormalC: normal,
	})
	m.Info.Material = material
	return m
}

// Rotate rotates every vertex and normal around axis through the origin and
// recomputes the bounds.
func (m *Mesh) Rotate(angle float32, axis mgl32.Vec3) {
	q := mgl32.QuatRotate(angle, axis.Normalize())

	material := m.Info.Material
	m.Info = EmptyMeshInfo()
	m.Info.Material = material

	for i := range m.Triangles {
		t := &m.Triangles[i]
		t.A = q.Rotate(t.A)
		t.B = q.Rotate(t.B)
		t.C = q.Rotate(t.C)
		t.NormalA = q.Rotate(t.NormalA)
		t.NormalB = q.Rotate(t.NormalB)
		t.NormalC = q.Rotate(t.NormalC)
		m.Info.Extend(t.A)
		m.Info.Extend(t.B)
		m.Info.Extend(t.C)
	}
	m.Info.NumTriangles = uint32(len(m.Triangles))
}

// Translate moves the mesh by offset.
func (m *Mesh) Translate(offset mgl32.Vec3) {
	m.Info.BoundsMin = m.Info.BoundsMin.Add(offset)
	m.Info.BoundsMax = m.Info.BoundsMax.Add(offset)
	for i := range m.Triangles {
		t := &m.Triangles[i]
		t.A = t.A.Add(offset)
		t.B = t.B.Add(offset)
		t.C = t.C.Add(offset)
	}
}

// Clone returns a deep copy, so cached meshes can be transformed per scene.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Triangles = append([]Triangle(nil), m.Triangles...)
	return &c
}
