package accum

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// Sampler produces radiance samples for the software passes.
type Sampler interface {
	// BeginFrame is called once before the pixels of a frame are sampled.
	BeginFrame(in *FrameInput, width, height int)
	// Sample returns one sample for pixel (x, y), origin bottom-left.
	// It may be called concurrently for different pixels.
	Sample(x, y int) mgl32.Vec3
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(in *FrameInput, x, y int) mgl32.Vec3

type funcSampler struct {
	fn SamplerFunc
	in *FrameInput
}

func (s *funcSampler) BeginFrame(in *FrameInput, _, _ int) { s.in = in }
func (s *funcSampler) Sample(x, y int) mgl32.Vec3         { return s.fn(s.in, x, y) }

// Func wraps fn as a Sampler.
func Func(fn SamplerFunc) Sampler {
	return &funcSampler{fn: fn}
}

// Software implements Passes on host memory. Buffers are row-major with the
// first row at the bottom, like GL textures.
type Software struct {
	sampler Sampler
	workers int

	width, height int
	final, old, new []mgl32.Vec3
	depth           []float32

	display *image.RGBA
}

// NewSoftware returns software passes sized width x height.
func NewSoftware(sampler Sampler, width, height int) (*Software, error) {
	if sampler == nil {
		return nil, fmt.Errorf("sampler: %w", ErrNotLinked)
	}
	s := &Software{sampler: sampler, workers: runtime.GOMAXPROCS(0)}
	if err := s.Resize(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Resize reallocates every buffer. The accumulated image is lost.
func (s *Software) Resize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	n := width * height
	s.width, s.height = width, height
	s.final = make([]mgl32.Vec3, n)
	s.old = make([]mgl32.Vec3, n)
	s.new = make([]mgl32.Vec3, n)
	s.depth = make([]float32, n)
	s.display = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Snapshot copies final into old.
func (s *Software) Snapshot() {
	copy(s.old, s.final)
}

// Primary clears the depth target. The software passes draw no helper geometry.
func (s *Software) Primary(*FrameInput) {
	for i := range s.depth {
		s.depth[i] = math32.Inf(1)
	}
}

// Sample fills new with one sample per pixel, rows split across workers.
func (s *Software) Sample(in *FrameInput) {
	s.sampler.BeginFrame(in, s.width, s.height)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for y := 0; y < s.height; y++ {
		g.Go(func() error {
			row := s.new[y*s.width : (y+1)*s.width]
			for x := range row {
				row[x] = s.sampler.Sample(x, y)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Average blends new into final as a running mean over frameIndex frames.
func (s *Software) Average(frameIndex uint32, forceNew bool) {
	Blend(s.final, s.old, s.new, frameIndex, forceNew)
}

// Blend computes dst = old*(n-1)/n + new/n, or dst = new when forceNew is set
// or n is at most 1.
func Blend(dst, old, new []mgl32.Vec3, n uint32, forceNew bool) {
	if forceNew || n <= 1 {
		copy(dst, new)
		return
	}
	wNew := 1 / float32(n)
	wOld := 1 - wNew
	for i := range dst {
		dst[i] = old[i].Mul(wOld).Add(new[i].Mul(wNew))
	}
}

// Present converts final to 8-bit sRGB-ish output (gamma 2.2), top row first.
func (s *Software) Present() {
	for y := 0; y < s.height; y++ {
		src := s.final[y*s.width : (y+1)*s.width]
		dy := s.height - 1 - y
		for x, c := range src {
			s.display.SetRGBA(x, dy, color.RGBA{toByte(c[0]), toByte(c[1]), toByte(c[2]), 255})
		}
	}
}

func toByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	v = float32(math.Pow(float64(v), 1/2.2))
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Final returns the accumulated linear image.
func (s *Software) Final() []mgl32.Vec3 {
	return s.final
}

// Image returns the presented image. It is overwritten by the next Present.
func (s *Software) Image() *image.RGBA {
	return s.display
}

// Size returns the target size.
func (s *Software) Size() (width, height int) {
	return s.width, s.height
}
