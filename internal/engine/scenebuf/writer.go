package scenebuf

import (
	"fmt"
	"unsafe"

	"github.com/Faultbox/pathlight/internal/scene"
)

// Writer writes records into the mapped arrays. It implements scene.Writer.
// A Writer is valid until the next Store.Fence; using it afterwards, writing an
// unallocated kind or indexing past capacity panics.
type Writer struct {
	store      *Store
	generation uint64
}

var _ scene.Writer = (*Writer)(nil)

// Valid reports whether the writer may still be used.
func (w *Writer) Valid() bool {
	return !w.store.closed && w.generation == w.store.generation
}

func (w *Writer) buffer(k Kind) *buffer {
	if !w.Valid() {
		panic(fmt.Sprintf("scenebuf: %s writer used after fence", k))
	}
	return w.store.mustBuffer(k)
}

// WriteSpheres writes spheres starting at index first.
func (w *Writer) WriteSpheres(first int, spheres []scene.Sphere) {
	write(w.buffer(Spheres), Spheres, first, spheres)
}

// WriteTriangles writes triangles starting at index first.
func (w *Writer) WriteTriangles(first int, triangles []scene.Triangle) {
	write(w.buffer(Triangles), Triangles, first, triangles)
}

// WriteMeshes writes mesh infos starting at index first.
func (w *Writer) WriteMeshes(first int, meshes []scene.MeshInfo) {
	write(w.buffer(Meshes), Meshes, first, meshes)
}

// Sphere returns the sphere at index i.
func (w *Writer) Sphere(i int) scene.Sphere {
	b := w.buffer(Spheres)
	checkRange(Spheres, b, i, 1)
	return view[scene.Sphere](b.shadow, b.capacity)[i]
}

// MeshInfo returns the mesh info at index i.
func (w *Writer) MeshInfo(i int) scene.MeshInfo {
	b := w.buffer(Meshes)
	checkRange(Meshes, b, i, 1)
	return view[scene.MeshInfo](b.shadow, b.capacity)[i]
}

// PatchSphere edits sphere i in place. Only that record's bytes are rewritten.
func (w *Writer) PatchSphere(i int, fn func(*scene.Sphere)) {
	s := w.Sphere(i)
	fn(&s)
	w.WriteSpheres(i, []scene.Sphere{s})
}

// PatchMeshInfo edits mesh info i in place. Only that record's bytes are rewritten.
func (w *Writer) PatchMeshInfo(i int, fn func(*scene.MeshInfo)) {
	m := w.MeshInfo(i)
	fn(&m)
	w.WriteMeshes(i, []scene.MeshInfo{m})
}

func checkRange(k Kind, b *buffer, first, n int) {
	if first < 0 || n < 0 || first+n > b.capacity {
		panic(fmt.Sprintf("scenebuf: %s range [%d, %d) outside capacity %d", k, first, first+n, b.capacity))
	}
}

func write[T any](b *buffer, k Kind, first int, records []T) {
	checkRange(k, b, first, len(records))
	if len(records) == 0 {
		return
	}

	size := int(unsafe.Sizeof(records[0]))
	copy(view[T](b.shadow, b.capacity)[first:], records)

	lo, hi := first*size, (first+len(records))*size
	copy(b.mapped[lo:hi], b.shadow[lo:hi])
}
