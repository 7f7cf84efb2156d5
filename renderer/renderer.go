package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"render-demos/scene"
	"render-demos/ssao"
)

// StageHook is called just before each stage runs.
type StageHook func(Stage)

// Frame is the per-frame input of RenderFrame.
type Frame struct {
	Items  []scene.DrawItem
	Camera scene.Camera
	Light  scene.PointLight
	Params ssao.Params
	View   DebugView
}

// Options configure NewPipeline.
type Options struct {
	// Seed drives kernel and noise generation.
	Seed int64
	// NoiseSize is the noise tile edge; it is fixed for the pipeline's lifetime.
	NoiseSize int
	Hook      StageHook
}

// Pipeline drives geometry, SSAO, blur and composition against a backend.
// The kernel and noise tile are generated once and never change.
type Pipeline struct {
	backend Backend
	kernel  ssao.Kernel
	noise   ssao.NoiseTile
	hook    StageHook

	frames uint64
}

// NewPipeline generates MaxKernelSize kernel samples and the noise tile and
// hands them to the backend if it wants them up front.
func NewPipeline(backend Backend, opts Options) (*Pipeline, error) {
	if opts.NoiseSize < 1 {
		opts.NoiseSize = ssao.DefaultParams().NoiseSize
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	p := &Pipeline{
		backend: backend,
		kernel:  ssao.GenerateKernel(ssao.MaxKernelSize, rng),
		noise:   ssao.GenerateNoiseTile(opts.NoiseSize, rng),
		hook:    opts.Hook,
	}
	if prep, ok := backend.(Preparer); ok {
		if err := prep.Prepare(p.kernel, p.noise); err != nil {
			return nil, fmt.Errorf("%w: prepare backend: %v", ErrInitialization, err)
		}
	}
	w, h := backend.Size()
	Logger().Info("pipeline ready",
		slog.Int("width", w), slog.Int("height", h),
		slog.Int("kernel", len(p.kernel)), slog.Int("noise", p.noise.Size))
	return p, nil
}

func (p *Pipeline) Kernel() ssao.Kernel    { return p.kernel }
func (p *Pipeline) Noise() ssao.NoiseTile  { return p.noise }
func (p *Pipeline) Backend() Backend       { return p.backend }
func (p *Pipeline) SetHook(h StageHook)    { p.hook = h }
func (p *Pipeline) FramesRendered() uint64 { return p.frames }

// Resize recreates every target at the new size. A zero size (minimised
// window) is ignored.
func (p *Pipeline) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if w, h := p.backend.Size(); w == width && h == height {
		return nil
	}
	if err := p.backend.Resize(width, height); err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	Logger().Info("targets recreated", slog.Int("width", width), slog.Int("height", height))
	return nil
}

// RenderFrame runs the four stages in order. The first failing stage aborts
// the frame; its error is wrapped with the stage name.
func (p *Pipeline) RenderFrame(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := f.Params.Clamp()
	// The tile is fixed; the blur window has to match it.
	params.NoiseSize = p.noise.Size

	w, h := p.backend.Size()
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	view := f.Camera.GetViewMatrix()
	proj := f.Camera.GetProjectionMatrix(aspect)
	items := scene.CullItems(f.Items, view.Mul(proj))
	data := &FrameData{
		Items:         items,
		View:          view,
		Projection:    proj,
		Kernel:        p.kernel.Prefix(params.KernelSize),
		Noise:         p.noise,
		Params:        params,
		Light:         f.Light,
		LightPosition: f.Light.ViewSpace(view),
		DebugView:     f.View,
	}

	log := Logger()
	log.Debug("frame", slog.Int("items", len(f.Items)), slog.Int("culled", len(f.Items)-len(items)))
	for _, stage := range Stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s pass: %w", stage, err)
		}
		if p.hook != nil {
			p.hook(stage)
		}
		start := time.Now()
		if err := p.run(ctx, stage, data); err != nil {
			return fmt.Errorf("%s pass: %w", stage, err)
		}
		log.Debug("stage done", slog.String("stage", stage.String()), slog.Duration("took", time.Since(start)))
	}
	p.frames++
	return nil
}

func (p *Pipeline) run(ctx context.Context, stage Stage, data *FrameData) error {
	switch stage {
	case StageGeometry:
		return p.backend.Geometry(ctx, data)
	case StageSSAO:
		return p.backend.SSAO(ctx, data)
	case StageBlur:
		return p.backend.Blur(ctx, data)
	case StageComposition:
		return p.backend.Compose(ctx, data)
	default:
		return fmt.Errorf("unknown stage %d", int(stage))
	}
}
