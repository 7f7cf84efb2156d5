// Package soft is a CPU implementation of the renderer backend. It runs the
// same four passes as the OpenGL backend into float32 planes, which makes it
// usable headless and in tests.
package soft

import (
	"context"
	"image"
	"image/color"
	"runtime"

	"render-demos/renderer"
)

type Options struct {
	// Workers rasterising and shading row bands in parallel; 0 means
	// runtime.NumCPU().
	Workers int
}

// Backend renders into four offscreen targets: the geometry buffer, raw and
// blurred occlusion, and the composite image.
type Backend struct {
	opts Options

	width, height int
	gbuffer       *Target
	ssao          *Target
	blur          *Target
	composite     *Target
}

var (
	_ renderer.Backend    = (*Backend)(nil)
	_ renderer.PixelProbe = (*Backend)(nil)
)

func New(width, height int, opts Options) (*Backend, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	b := &Backend{opts: opts}
	if err := b.Resize(width, height); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Backend) Size() (int, int) { return b.width, b.height }

// Resize replaces every target. On failure the previous targets stay.
func (b *Backend) Resize(width, height int) error {
	specs := []renderer.TargetSpec{
		renderer.GBufferSpec(width, height, renderer.PositionFormat),
		renderer.OcclusionSpec(renderer.TargetSSAO, width, height, renderer.FormatR16F),
		renderer.OcclusionSpec(renderer.TargetSSAOBlur, width, height, renderer.FormatR16F),
		renderer.CompositeSpec(width, height),
	}
	targets := make([]*Target, len(specs))
	for i, s := range specs {
		t, err := NewTarget(s)
		if err != nil {
			return err
		}
		targets[i] = t
	}
	b.gbuffer, b.ssao, b.blur, b.composite = targets[0], targets[1], targets[2], targets[3]
	b.width, b.height = width, height
	return nil
}

// Target returns one of the pipeline targets by name, or nil.
func (b *Backend) Target(name string) *Target {
	switch name {
	case renderer.TargetGBuffer:
		return b.gbuffer
	case renderer.TargetSSAO:
		return b.ssao
	case renderer.TargetSSAOBlur:
		return b.blur
	case renderer.TargetComposite:
		return b.composite
	}
	return nil
}

func (b *Backend) Geometry(ctx context.Context, f *renderer.FrameData) error {
	b.gbuffer.Clear()
	tris := setup(f.Items, f.View, f.Projection, b.width, b.height)
	return forEachBand(ctx, b.opts.Workers, b.height, func(y0, y1 int) {
		rasterize(tris, b.gbuffer, y0, y1)
	})
}

func (b *Backend) SSAO(ctx context.Context, f *renderer.FrameData) error {
	return forEachBand(ctx, b.opts.Workers, b.height, func(y0, y1 int) {
		occlusionRows(f, b.gbuffer, b.ssao, y0, y1)
	})
}

func (b *Backend) Blur(ctx context.Context, f *renderer.FrameData) error {
	size := max(f.Params.NoiseSize, 1)
	return forEachBand(ctx, b.opts.Workers, b.height, func(y0, y1 int) {
		blurRows(size, b.ssao, b.blur, y0, y1)
	})
}

func (b *Backend) Compose(ctx context.Context, f *renderer.FrameData) error {
	return forEachBand(ctx, b.opts.Workers, b.height, func(y0, y1 int) {
		composeRows(f, b.gbuffer, b.ssao, b.blur, b.composite, y0, y1)
	})
}

// Image copies the composite target into an RGBA image with the usual
// top-left origin.
func (b *Backend) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			img.SetRGBA(x, y, b.pixel(x, y))
		}
	}
	return img
}

// ReadPixel reads the composite image at window coordinates (top-left origin).
func (b *Backend) ReadPixel(x, y int) (color.RGBA, bool) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return color.RGBA{}, false
	}
	return b.pixel(x, y), true
}

func (b *Backend) pixel(x, y int) color.RGBA {
	c := b.composite.Fetch(renderer.AttachmentColor, x, b.height-1-y)
	return color.RGBA{
		R: uint8(c[0]*255 + 0.5),
		G: uint8(c[1]*255 + 0.5),
		B: uint8(c[2]*255 + 0.5),
		A: uint8(c[3]*255 + 0.5),
	}
}

// OcclusionAt returns the raw and blurred occlusion at a target texel
// (bottom-left origin).
func (b *Backend) OcclusionAt(x, y int) (raw, blurred float32) {
	return b.ssao.Attachment(renderer.AttachmentOcclusion).FetchR(x, y),
		b.blur.Attachment(renderer.AttachmentOcclusion).FetchR(x, y)
}
