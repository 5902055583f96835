// Package glbuf backs the scene buffer store with persistently mapped
// OpenGL shader storage buffers.
package glbuf

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/Faultbox/pathlight/internal/engine/scenebuf"
)

const mapFlags = gl.MAP_WRITE_BIT | gl.MAP_PERSISTENT_BIT | gl.MAP_COHERENT_BIT

// Device implements scenebuf.Device with OpenGL 4.4+ buffer storage.
// All methods must be called from the thread owning the GL context.
type Device struct{}

var _ scenebuf.Device = Device{}

func (Device) CreateMapped(size int) (uint32, []byte, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
	gl.BufferStorage(gl.SHADER_STORAGE_BUFFER, size, nil, mapFlags)
	ptr := gl.MapBufferRange(gl.SHADER_STORAGE_BUFFER, 0, size, mapFlags)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)

	if ptr == nil {
		code := gl.GetError()
		gl.DeleteBuffers(1, &buf)
		return 0, nil, fmt.Errorf("mapping %d bytes: gl error 0x%x", size, code)
	}
	return buf, unsafe.Slice((*byte)(ptr), size), nil
}

func (Device) BindBase(binding, handle uint32) {
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, handle)
}

func (Device) InsertFence() scenebuf.Fence {
	return scenebuf.Fence(gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0))
}

func (Device) WaitFence(f scenebuf.Fence, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		switch gl.ClientWaitSync(uintptr(f), gl.SYNC_FLUSH_COMMANDS_BIT, uint64(time.Millisecond)) {
		case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
			return nil
		case gl.WAIT_FAILED:
			return fmt.Errorf("waiting on fence: gl error 0x%x", gl.GetError())
		}
		if time.Now().After(deadline) {
			return scenebuf.ErrFenceTimeout
		}
	}
}

func (Device) DeleteFence(f scenebuf.Fence) {
	gl.DeleteSync(uintptr(f))
}

func (Device) Delete(handle uint32) {
	gl.UnmapNamedBuffer(handle)
	gl.DeleteBuffers(1, &handle)
}
