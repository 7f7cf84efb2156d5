package renderer

import (
	"context"
	"image/color"

	"render-demos/math"
	"render-demos/scene"
	"render-demos/ssao"
)

// FrameData is what every stage of one frame reads. The pipeline builds it
// once per frame; backends must not keep it past the call.
type FrameData struct {
	Items      []scene.DrawItem
	View       math.Mat4
	Projection math.Mat4

	// Kernel is already cut to Params.KernelSize.
	Kernel ssao.Kernel
	Noise  ssao.NoiseTile
	Params ssao.Params

	Light         scene.PointLight
	LightPosition math.Vec3 // Light.Position in view space

	DebugView DebugView
}

// Backend executes the passes. Each method runs one stage to completion
// before returning.
type Backend interface {
	// Size is the current render resolution in pixels.
	Size() (width, height int)

	// Resize destroys every target and creates new ones at the given size.
	Resize(width, height int) error

	Geometry(ctx context.Context, f *FrameData) error
	SSAO(ctx context.Context, f *FrameData) error
	Blur(ctx context.Context, f *FrameData) error
	Compose(ctx context.Context, f *FrameData) error
}

// Preparer is implemented by backends that upload the kernel and noise tile
// once instead of reading them every frame.
type Preparer interface {
	Prepare(kernel ssao.Kernel, noise ssao.NoiseTile) error
}

// PixelProbe reads back one pixel of the composed image. x, y are window
// coordinates with the origin at the top left.
type PixelProbe interface {
	ReadPixel(x, y int) (color.RGBA, bool)
}
