// Package scenebuf owns the GPU-visible scene arrays: spheres, triangles and
// mesh infos. Each array is allocated once at its full capacity, mapped
// persistently and written in place through a Writer.
//
// The GPU reads the mapped memory asynchronously. The render pipeline calls
// Fence after every draw that reads the arrays; the next Writer waits for that
// fence before handing out write access, and every writer obtained earlier is
// invalidated.
package scenebuf

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/logger"
	"github.com/Faultbox/pathlight/internal/scene"
)

// Kind selects one of the scene arrays.
type Kind int

const (
	Spheres Kind = iota
	Triangles
	Meshes

	numKinds
)

// Binding returns the fixed shader storage binding index of the array.
func (k Kind) Binding() uint32 {
	return uint32(k)
}

// BlockName returns the name of the storage block in the sampling shader.
func (k Kind) BlockName() string {
	switch k {
	case Spheres:
		return "u_spheresBlock"
	case Triangles:
		return "u_trianglesBlock"
	case Meshes:
		return "u_meshesInfosBlock"
	}
	return ""
}

// RecordSize returns the byte size of one record.
func (k Kind) RecordSize() int {
	switch k {
	case Spheres:
		return int(unsafe.Sizeof(scene.Sphere{}))
	case Triangles:
		return int(unsafe.Sizeof(scene.Triangle{}))
	case Meshes:
		return int(unsafe.Sizeof(scene.MeshInfo{}))
	}
	return 0
}

func (k Kind) String() string {
	switch k {
	case Spheres:
		return "spheres"
	case Triangles:
		return "triangles"
	case Meshes:
		return "meshes"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	// ErrAlreadyAllocated is returned when a kind is allocated twice.
	ErrAlreadyAllocated = errors.New("buffer already allocated")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
)

// DefaultFenceTimeout bounds how long Writer waits for the GPU.
const DefaultFenceTimeout = 2 * time.Second

type buffer struct {
	handle   uint32
	capacity int
	// mapped is GPU-visible and written only. shadow mirrors it for reads.
	mapped []byte
	shadow []byte
}

// Store holds the scene arrays.
type Store struct {
	dev  Device
	bufs [numKinds]*buffer
	log  *zap.Logger

	pending    Fence
	generation uint64
	closed     bool

	FenceTimeout time.Duration
}

// New returns an empty store on dev.
func New(dev Device) *Store {
	return &Store{
		dev:          dev,
		log:          logger.Named("scenebuf"),
		FenceTimeout: DefaultFenceTimeout,
	}
}

// Allocate reserves a mapped array for capacity records of kind k.
func (s *Store) Allocate(k Kind, capacity int) error {
	if s.closed {
		return ErrClosed
	}
	if k < 0 || k >= numKinds {
		return fmt.Errorf("allocating %s: unknown kind", k)
	}
	if s.bufs[k] != nil {
		return fmt.Errorf("allocating %s: %w", k, ErrAlreadyAllocated)
	}
	if capacity <= 0 {
		return fmt.Errorf("allocating %s: capacity %d must be positive", k, capacity)
	}

	size := capacity * k.RecordSize()
	handle, mem, err := s.dev.CreateMapped(size)
	if err != nil {
		return fmt.Errorf("allocating %s: %w", k, err)
	}

	s.bufs[k] = &buffer{
		handle:   handle,
		capacity: capacity,
		mapped:   mem,
		shadow:   make([]byte, size),
	}
	s.log.Debug("allocated scene buffer",
		zap.Stringer("kind", k),
		zap.Int("capacity", capacity),
		zap.Int("bytes", size),
		zap.Uint32("binding", k.Binding()))
	return nil
}

// AllocateScene allocates all three arrays at the scene capacities.
func (s *Store) AllocateScene() error {
	if err := s.Allocate(Spheres, scene.MaxSpheres); err != nil {
		return err
	}
	if err := s.Allocate(Triangles, scene.MaxTriangles); err != nil {
		return err
	}
	return s.Allocate(Meshes, scene.MaxMeshes)
}

// Allocated reports whether kind k has been allocated.
func (s *Store) Allocated(k Kind) bool {
	return k >= 0 && k < numKinds && s.bufs[k] != nil
}

// Capacity returns the record capacity of kind k, or 0 when unallocated.
func (s *Store) Capacity(k Kind) int {
	if !s.Allocated(k) {
		return 0
	}
	return s.bufs[k].capacity
}

// Bind binds every allocated array to its binding index.
func (s *Store) Bind() {
	for k, b := range s.bufs {
		if b != nil {
			s.dev.BindBase(Kind(k).Binding(), b.handle)
		}
	}
}

// Fence marks the point after which the GPU has consumed the current contents.
// Writers obtained before the call become invalid.
func (s *Store) Fence() {
	if s.closed {
		return
	}
	if s.pending != 0 {
		s.dev.DeleteFence(s.pending)
	}
	s.pending = s.dev.InsertFence()
	s.generation++
}

// Writer waits for the pending fence, if any, and returns write access valid
// until the next Fence.
func (s *Store) Writer() (*Writer, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.pending != 0 {
		start := time.Now()
		if err := s.dev.WaitFence(s.pending, s.FenceTimeout); err != nil {
			return nil, fmt.Errorf("waiting for scene buffers: %w", err)
		}
		s.dev.DeleteFence(s.pending)
		s.pending = 0
		if waited := time.Since(start); waited > time.Millisecond {
			s.log.Debug("waited for gpu before scene write", zap.Duration("waited", waited))
		}
	}
	return &Writer{store: s, generation: s.generation}, nil
}

// Spheres returns a copy of the full sphere array.
func (s *Store) Spheres() []scene.Sphere {
	return cloneView[scene.Sphere](s.mustBuffer(Spheres))
}

// Triangles returns a copy of the full triangle array.
func (s *Store) Triangles() []scene.Triangle {
	return cloneView[scene.Triangle](s.mustBuffer(Triangles))
}

// MeshInfos returns a copy of the full mesh-info array.
func (s *Store) MeshInfos() []scene.MeshInfo {
	return cloneView[scene.MeshInfo](s.mustBuffer(Meshes))
}

// Close releases every array. The store cannot be used afterwards.
func (s *Store) Close() {
	if s.closed {
		return
	}
	if s.pending != 0 {
		s.dev.DeleteFence(s.pending)
		s.pending = 0
	}
	for k, b := range s.bufs {
		if b != nil {
			s.dev.Delete(b.handle)
			s.bufs[k] = nil
		}
	}
	s.closed = true
	s.generation++
}

func (s *Store) mustBuffer(k Kind) *buffer {
	if s.closed {
		panic("scenebuf: store closed")
	}
	if !s.Allocated(k) {
		panic(fmt.Sprintf("scenebuf: %s buffer not allocated", k))
	}
	return s.bufs[k]
}

func view[T any](mem []byte, n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&mem[0])), n)
}

func cloneView[T any](b *buffer) []T {
	out := make([]T, b.capacity)
	copy(out, view[T](b.shadow, b.capacity))
	return out
}
