// Package objloader reads Wavefront OBJ models into scene meshes.
//
// Only geometry is read: positions (with optional vertex colors), texture
// coordinates and normals. Polygons are fan triangulated. Faces without
// normals get the flat face normal. Materials and groups are ignored; the
// whole file becomes a single mesh.
package objloader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/logger"
	"github.com/Faultbox/pathlight/internal/scene"
)

// Files provides model file contents. *assets.Manager implements it.
type Files interface {
	Load(name string) ([]byte, error)
}

// Stats counts what a model file declared and what was produced from it.
type Stats struct {
	Vertices  int
	Colors    int
	TexCoords int
	Normals   int
	Faces     int
	Triangles int
}

// ParseError locates a syntax error in a model file.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s: %d] error: %s", e.File, e.Line, e.Msg)
}

// Loader implements scene.MeshLoader.
type Loader struct {
	Files Files
	// Info, when set, receives a summary table for every loaded model.
	Info io.Writer
}

var _ scene.MeshLoader = (*Loader)(nil)

// Load reads and parses a model, scaling then offsetting every vertex.
func (l *Loader) Load(path string, scale float32, offset mgl32.Vec3) (*scene.Mesh, error) {
	mesh, stats, err := l.LoadWithStats(path, scale, offset)
	if err != nil {
		return nil, err
	}
	if l.Info != nil {
		stats.WriteTable(l.Info, path)
	}
	return mesh, nil
}

// LoadWithStats is Load that also returns the model statistics.
func (l *Loader) LoadWithStats(path string, scale float32, offset mgl32.Vec3) (*scene.Mesh, Stats, error) {
	log := logger.Named("objloader")
	start := time.Now()

	data, err := l.Files.Load(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("loading %s: %w", path, err)
	}

	mesh, stats, err := Parse(bytes.NewReader(data), path, scale, offset)
	if err != nil {
		return nil, Stats{}, err
	}

	log.Info("model loaded",
		zap.String("path", path),
		zap.Int("vertices", stats.Vertices),
		zap.Int("colors", stats.Colors),
		zap.Int("texcoords", stats.TexCoords),
		zap.Int("normals", stats.Normals),
		zap.Int("triangles", stats.Triangles),
		zap.Duration("took", time.Since(start)))
	return mesh, stats, nil
}

type parser struct {
	file  string
	scale float32
	off   mgl32.Vec3

	vertices []mgl32.Vec3
	normals  []mgl32.Vec3
	stats    Stats
	mesh     *scene.Mesh
}

// Parse reads an OBJ stream. file names the stream in errors and becomes the mesh name.
func Parse(r io.Reader, file string, scale float32, offset mgl32.Vec3) (*scene.Mesh, Stats, error) {
	p := &parser{
		file:  file,
		scale: scale,
		off:   offset,
		mesh:  scene.NewMesh(strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))),
	}

	lineNum := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}
		if err := p.line(tokens); err != nil {
			return nil, Stats{}, &ParseError{File: file, Line: lineNum, Msg: err.Error()}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("reading %s: %w", file, err)
	}
	if len(p.mesh.Triangles) == 0 {
		return nil, Stats{}, &ParseError{File: file, Line: lineNum, Msg: "no faces"}
	}

	p.stats.Triangles = len(p.mesh.Triangles)
	return p.mesh, p.stats, nil
}

func (p *parser) line(tokens []string) error {
	switch tokens[0] {
	case "v":
		v, err := parseVec3(tokens)
		if err != nil {
			return err
		}
		// x y z r g b
		if len(tokens) >= 7 {
			p.stats.Colors++
		}
		p.vertices = append(p.vertices, v.Mul(p.scale).Add(p.off))
		p.stats.Vertices++
	case "vn":
		v, err := parseVec3(tokens)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, v)
		p.stats.Normals++
	case "vt":
		if len(tokens) < 2 {
			return fmt.Errorf("unsupported syntax for 'vt'; expected at least 1 argument; got 0")
		}
		p.stats.TexCoords++
	case "f":
		return p.face(tokens)
	}
	return nil
}

type corner struct {
	pos       mgl32.Vec3
	normal    mgl32.Vec3
	hasNormal bool
}

// face reads a polygon whose vertices use one of the forms v, v/vt, v//vn
// or v/vt/vn, with 1-based or negative indices.
func (p *parser) face(tokens []string) error {
	if len(tokens) < 4 {
		return fmt.Errorf("unsupported syntax for 'f'; expected at least 3 vertices; got %d", len(tokens)-1)
	}

	corners := make([]corner, 0, len(tokens)-1)
	for arg, tok := range tokens[1:] {
		parts := strings.Split(tok, "/")
		if parts[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}
		vi, err := selectIndex(parts[0], len(p.vertices))
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err)
		}
		c := corner{pos: p.vertices[vi]}

		if len(parts) == 3 && parts[2] != "" {
			ni, err := selectIndex(parts[2], len(p.normals))
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err)
			}
			c.normal, c.hasNormal = p.normals[ni], true
		}
		corners = append(corners, c)
	}

	for i := 1; i+1 < len(corners); i++ {
		p.mesh.AddTriangle(triangle(corners[0], corners[i], corners[i+1]))
	}
	p.stats.Faces++
	return nil
}

func triangle(a, b, c corner) scene.Triangle {
	t := scene.Triangle{A: a.pos, B: b.pos, C: c.pos}
	if a.hasNormal && b.hasNormal && c.hasNormal {
		t.NormalA, t.NormalB, t.NormalC = a.normal, b.normal, c.normal
		return t
	}

	n := b.pos.Sub(a.pos).Cross(c.pos.Sub(a.pos))
	if n.Len() > 0 {
		n = n.Normalize()
	}
	t.NormalA, t.NormalB, t.NormalC = n, n, n
	return t
}

// selectIndex converts a face index into an offset into a list of length n.
// Negative indices count back from the end of the list.
func selectIndex(tok string, n int) (int, error) {
	index, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return -1, err
	}

	var offset int
	if index < 0 {
		offset = n + int(index)
	} else {
		offset = int(index - 1)
	}
	if offset < 0 || offset >= n {
		return -1, fmt.Errorf("index %d out of bounds", index)
	}
	return offset, nil
}

func parseVec3(tokens []string) (mgl32.Vec3, error) {
	if len(tokens) < 4 {
		return mgl32.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", tokens[0], len(tokens)-1)
	}

	var v mgl32.Vec3
	for i := 1; i <= 3; i++ {
		f, err := strconv.ParseFloat(tokens[i], 32)
		if err != nil {
			return v, err
		}
		v[i-1] = float32(f)
	}
	return v, nil
}

// WriteTable renders the statistics as a table.
func (s Stats) WriteTable(w io.Writer, name string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{name, "count"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk([][]string{
		{"vertices", strconv.Itoa(s.Vertices)},
		{"colors", strconv.Itoa(s.Colors)},
		{"texcoords", strconv.Itoa(s.TexCoords)},
		{"normals", strconv.Itoa(s.Normals)},
		{"faces", strconv.Itoa(s.Faces)},
		{"triangles", strconv.Itoa(s.Triangles)},
	})
	table.Render()
}
