package scenebuf

import (
	"errors"
	"time"
)

// Fence identifies a GPU sync point. Zero means no fence.
type Fence uintptr

// ErrFenceTimeout is returned when the GPU does not reach a fence in time.
var ErrFenceTimeout = errors.New("fence wait timed out")

// Device is the graphics API surface the store needs.
type Device interface {
	// CreateMapped creates a buffer of size bytes and returns its handle and a
	// persistently mapped, coherent view of its memory.
	CreateMapped(size int) (uint32, []byte, error)
	// BindBase binds the buffer to a shader storage binding index.
	BindBase(binding, handle uint32)
	// InsertFence places a sync point after all commands issued so far.
	InsertFence() Fence
	// WaitFence blocks until the GPU passes f or the timeout elapses.
	WaitFence(f Fence, timeout time.Duration) error
	DeleteFence(f Fence)
	// Delete unmaps and deletes a buffer.
	Delete(handle uint32)
}

// MemoryDevice is a Device backed by host memory. Fences signal immediately.
// It serves tests and the software renderer.
type MemoryDevice struct {
	Buffers map[uint32][]byte
	// Bindings maps binding index to buffer handle.
	Bindings map[uint32]uint32

	FencesInserted int
	FencesWaited   int
	FencesDeleted  int

	// WaitErr, when set, is returned by every WaitFence.
	WaitErr error

	nextHandle uint32
	nextFence  Fence
}

// NewMemoryDevice returns an empty MemoryDevice.
func NewMemoryDevice() *MemoryDevice {
	return &MemoryDevice{
		Buffers:  make(map[uint32][]byte),
		Bindings: make(map[uint32]uint32),
	}
}

func (d *MemoryDevice) CreateMapped(size int) (uint32, []byte, error) {
	d.nextHandle++
	mem := make([]byte, size)
	d.Buffers[d.nextHandle] = mem
	return d.nextHandle, mem, nil
}

func (d *MemoryDevice) BindBase(binding, handle uint32) {
	d.Bindings[binding] = handle
}

func (d *MemoryDevice) InsertFence() Fence {
	d.FencesInserted++
	d.nextFence++
	return d.nextFence
}

func (d *MemoryDevice) WaitFence(Fence, time.Duration) error {
	d.FencesWaited++
	return d.WaitErr
}

func (d *MemoryDevice) DeleteFence(Fence) {
	d.FencesDeleted++
}

func (d *MemoryDevice) Delete(handle uint32) {
	delete(d.Buffers, handle)
	for binding, h := range d.Bindings {
		if h == handle {
			delete(d.Bindings, binding)
		}
	}
}
