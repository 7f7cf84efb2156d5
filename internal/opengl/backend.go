// Package opengl runs the pipeline stages on the GPU through OpenGL 4.1 core.
// Every call must happen on the goroutine that owns the current context.
package opengl

import (
	"context"
	"fmt"
	"image"
	"image/color"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-demos/renderer"
	"render-demos/ssao"
)

// Backend owns the offscreen targets and the pass programs. The composition
// pass draws straight into the window's default framebuffer.
type Backend struct {
	width, height int

	gbuffer *target
	ssao    *target
	blur    *target

	geometry *geometryPass
	occl     *ssaoPasses
	lighting *lightingPass
	quadVAO  uint32
}

var (
	_ renderer.Backend    = (*Backend)(nil)
	_ renderer.Preparer   = (*Backend)(nil)
	_ renderer.PixelProbe = (*Backend)(nil)
)

// New loads the GL function pointers, compiles every program and allocates
// targets at the framebuffer size. Failures wrap renderer.ErrInitialization,
// except an incomplete target which is returned as is.
func New(width, height int) (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: load OpenGL: %v", renderer.ErrInitialization, err)
	}
	renderer.Logger().Info("opengl ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	b := &Backend{}
	var err error
	if b.geometry, err = newGeometryPass(); err != nil {
		return nil, fmt.Errorf("%w: %v", renderer.ErrInitialization, err)
	}
	if b.occl, err = newSSAOPasses(); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("%w: %v", renderer.ErrInitialization, err)
	}
	if b.lighting, err = newLightingPass(); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("%w: %v", renderer.ErrInitialization, err)
	}
	gl.GenVertexArrays(1, &b.quadVAO)

	if err := b.Resize(width, height); err != nil {
		b.Destroy()
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
	}
	targets := make([]*target, 0, len(specs))
	for _, s := range specs {
		t, err := newTarget(s)
		if err != nil {
			for _, made := range targets {
				made.destroy()
			}
			return err
		}
		targets = append(targets, t)
	}
	b.destroyTargets()
	b.gbuffer, b.ssao, b.blur = targets[0], targets[1], targets[2]
	b.width, b.height = width, height
	return nil
}

func (b *Backend) Prepare(kernel ssao.Kernel, noise ssao.NoiseTile) error {
	return b.occl.prepare(kernel, noise)
}

func (b *Backend) Geometry(_ context.Context, f *renderer.FrameData) error {
	b.geometry.run(f, b.gbuffer)
	return checkError()
}

func (b *Backend) SSAO(_ context.Context, f *renderer.FrameData) error {
	gl.BindVertexArray(b.quadVAO)
	b.occl.runSSAO(f, b.gbuffer, b.ssao)
	gl.BindVertexArray(0)
	return checkError()
}

func (b *Backend) Blur(_ context.Context, f *renderer.FrameData) error {
	gl.BindVertexArray(b.quadVAO)
	b.occl.runBlur(f, b.ssao, b.blur)
	gl.BindVertexArray(0)
	return checkError()
}

func (b *Backend) Compose(_ context.Context, f *renderer.FrameData) error {
	gl.BindVertexArray(b.quadVAO)
	b.lighting.run(f, b.gbuffer, b.ssao, b.blur, b.width, b.height)
	gl.BindVertexArray(0)
	return checkError()
}

// ReadPixel reads the default framebuffer at window coordinates with a
// top-left origin.
func (b *Backend) ReadPixel(x, y int) (color.RGBA, bool) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return color.RGBA{}, false
	}
	var px [4]uint8
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.ReadPixels(int32(x), int32(b.height-1-y), 1, 1, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&px[0]))
	return color.RGBA{R: px[0], G: px[1], B: px[2], A: px[3]}, true
}

// Snapshot reads the whole default framebuffer into an image with the
// usual top-left origin.
func (b *Backend) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	if b.width == 0 || b.height == 0 {
		return img
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(b.width), int32(b.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

	// GL rows run bottom-up.
	row := make([]byte, img.Stride)
	for y := 0; y < b.height/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(b.height-1-y)*img.Stride : (b.height-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
	return img
}

func (b *Backend) destroyTargets() {
	b.gbuffer.destroy()
	b.ssao.destroy()
	b.blur.destroy()
	b.gbuffer, b.ssao, b.blur = nil, nil, nil
}

// Destroy frees every GPU resource the backend created.
func (b *Backend) Destroy() {
	b.destroyTargets()
	if b.geometry != nil {
		b.geometry.destroy()
	}
	if b.occl != nil {
		b.occl.destroy()
	}
	if b.lighting != nil {
		b.lighting.destroy()
	}
	if b.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &b.quadVAO)
		b.quadVAO = 0
	}
}

func checkError() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%X", code)
	}
	return nil
}
