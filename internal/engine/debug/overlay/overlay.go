// Package overlay draws helper lines into the primary pass target.
package overlay

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/Faultbox/pathlight/internal/engine/accum"
	"github.com/Faultbox/pathlight/internal/engine/accum/glpass"
	"github.com/Faultbox/pathlight/internal/engine/debug"
	"github.com/Faultbox/pathlight/internal/engine/shader"
	"github.com/Faultbox/pathlight/internal/shaders"
)

// Renderer streams the frame's helper lines into a vertex buffer and draws them.
type Renderer struct {
	scene debug.Scene
	prog  *shader.Program
	src   shaders.Source

	vao, vbo uint32
	capacity int
}

var _ glpass.Overlay = (*Renderer)(nil)

// New creates the line program and buffers.
func New(src shaders.Source, sc debug.Scene) (*Renderer, error) {
	r := &Renderer{scene: sc, src: src}

	vs, fs, err := r.sources()
	if err != nil {
		return nil, err
	}
	if r.prog, err = shader.NewProgram("lines", vs, fs); err != nil {
		return nil, fmt.Errorf("creating overlay: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, debug.LineVertexSize, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, debug.LineVertexSize, 12)
	gl.BindVertexArray(0)

	return r, nil
}

func (r *Renderer) sources() (vs, fs string, err error) {
	if vs, err = r.src.Read(shaders.LineVert); err != nil {
		return "", "", err
	}
	if fs, err = r.src.Read(shaders.LineFrag); err != nil {
		return "", "", err
	}
	return vs, fs, nil
}

// Reload recompiles the line program.
func (r *Renderer) Reload() error {
	vs, fs, err := r.sources()
	if err != nil {
		return err
	}
	return r.prog.Reload(vs, fs)
}

// Draw implements glpass.Overlay.
func (r *Renderer) Draw(in *accum.FrameInput) {
	lines := debug.Helpers(in, r.scene)
	if len(lines) == 0 {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	size := len(lines) * debug.LineVertexSize
	if len(lines) > r.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(&lines[0]), gl.STREAM_DRAW)
		r.capacity = len(lines)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(&lines[0]))
	}

	r.prog.Use()
	r.prog.SetMat4("u_viewProj", in.Camera.ViewProjection())

	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.LINES, 0, int32(len(lines)))
	gl.BindVertexArray(0)
}

// Delete releases GL resources.
func (r *Renderer) Delete() {
	r.prog.Delete()
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
}
