// Package shaders provides embedded GLSL shader sources.
package shaders

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Shader file names.
const (
	ScreenVert  = "screen.vert"
	CopyFrag    = "copy.frag"
	TraceFrag   = "rt.frag"
	AverageFrag = "average.frag"
	PresentFrag = "present.frag"
	LineVert    = "line.vert"
	LineFrag    = "line.frag"
)

//go:embed *.vert *.frag
var files embed.FS

// Files exposes the embedded sources.
var Files fs.FS = files

// Source reads shader sources, preferring Dir when it is set and holds the file.
type Source struct {
	Dir string
}

// Read returns the source of the named shader.
func (s Source) Read(name string) (string, error) {
	if s.Dir != "" {
		data, err := os.ReadFile(filepath.Join(s.Dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("reading shader %s: %w", name, err)
		}
	}
	data, err := fs.ReadFile(files, name)
	if err != nil {
		return "", fmt.Errorf("reading embedded shader %s: %w", name, err)
	}
	return string(data), nil
}

// MustRead is Read for sources known to be embedded.
func (s Source) MustRead(name string) string {
	src, err := s.Read(name)
	if err != nil {
		panic(err)
	}
	return src
}
