// Command ssao is the interactive SSAO demo: a room with one model, a single
// point light and live controls for the occlusion parameters.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"render-demos/internal/config"
	"render-demos/internal/hud"
	"render-demos/internal/imageio"
	"render-demos/internal/opengl"
	"render-demos/internal/window"
	"render-demos/renderer"
	"render-demos/scene"
	"render-demos/ssao"
)

func main() {
	if err := run(); err != nil {
		slog.Error("ssao failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	start := time.Now()

	configPath := flag.String("config", "", "TOML settings file, reloaded when it changes")
	var flags config.Flags
	flag.StringVar(&flags.Model, "model", "", "model to show (.obj, .gltf, .glb)")
	flag.StringVar(&flags.Output, "snapshot", "", "F12 snapshot path (.webp or .png)")
	flag.IntVar(&flags.Width, "width", 0, "window width")
	flag.IntVar(&flags.Height, "height", 0, "window height")
	flag.StringVar(&flags.LogLevel, "log-level", "", "debug, info, warn or error")
	flag.BoolVar(&flags.NoSSAO, "no-ssao", false, "start with occlusion disabled")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(log)
	renderer.SetLogger(log)

	win, err := window.New(window.Config{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: true,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", renderer.ErrInitialization, err)
	}
	defer win.Destroy()

	fbW, fbH := win.GetFramebufferSize()
	backend, err := opengl.New(fbW, fbH)
	if err != nil {
		return err
	}
	defer backend.Destroy()

	pipeline, err := renderer.NewPipeline(backend, renderer.Options{
		Seed:      cfg.Render.Seed,
		NoiseSize: cfg.SSAO.NoiseSize,
	})
	if err != nil {
		return err
	}

	textures := scene.NewTextureCache()
	sc, err := scene.BuildDemoScene(scene.NewPrimitives(), scene.DemoOptions{
		ModelPath:     cfg.Scene.Model,
		Light:         cfg.PointLight(),
		AlbedoTexture: cfg.Scene.AlbedoTexture,
		Textures:      textures,
	})
	if err != nil {
		var assetErr *renderer.AssetLoadError
		if !errors.As(err, &assetErr) {
			return err
		}
		log.Warn("using placeholder asset", "err", err)
	}

	panel, err := hud.NewPanel(14)
	if err != nil {
		return err
	}
	defer panel.Close()
	overlay, err := opengl.NewOverlay()
	if err != nil {
		return fmt.Errorf("%w: %v", renderer.ErrInitialization, err)
	}
	defer overlay.Destroy()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloads := make(chan config.Config, 1)
	if *configPath != "" {
		w, err := config.NewWatcher(*configPath, log)
		if err != nil {
			log.Warn("config hot reload disabled", "err", err)
		} else {
			go func() {
				if err := w.Run(ctx, reloads); err != nil && !errors.Is(err, context.Canceled) {
					log.Warn("config watcher stopped", "err", err)
				}
			}()
		}
	}

	d := demo{
		window:   win,
		backend:  backend,
		pipeline: pipeline,
		scene:    sc,
		params:   cfg.Params(),
		view:     renderer.ViewFinal,
		panel:    panel,
		overlay:  overlay,
		snapshot: cfg.Snapshot.Output,
		log:      log,
	}

	last := win.Time()
	started := false
	for !win.ShouldClose() {
		now := win.Time()
		dt := float32(now - last)
		last = now

		select {
		case c := <-reloads:
			d.params = c.Params()
			d.scene.Light = c.PointLight()
		default:
		}

		if err := d.frame(ctx, dt); err != nil {
			return err
		}
		if !started && pipeline.FramesRendered() > 0 {
			started = true
			log.Info("first frame", "startup", time.Since(start))
		}
	}
	return nil
}

type demo struct {
	window   *window.Window
	backend  *opengl.Backend
	pipeline *renderer.Pipeline
	scene    *scene.Scene

	params ssao.Params
	view   renderer.DebugView

	panel     *hud.Panel
	overlay   *opengl.Overlay
	lines     hud.Overlay
	shownText string
	fps       hud.FPSCounter

	snapshot string
	log      *slog.Logger
}

const radiusStep = 0.05

func (d *demo) handleKeys() {
	w := d.window
	if w.Pressed(window.KeyEscape) {
		w.Close()
	}
	if w.Pressed(window.KeySpace) {
		d.params.EnableSSAO = !d.params.EnableSSAO
		d.log.Info("ssao toggled", "enabled", d.params.EnableSSAO)
	}
	if w.Pressed(window.KeyUp) {
		d.params.Radius += radiusStep
	}
	if w.Pressed(window.KeyDown) {
		d.params.Radius -= radiusStep
	}
	if w.Pressed(window.KeyRight) {
		d.params.KernelSize++
	}
	if w.Pressed(window.KeyLeft) {
		d.params.KernelSize--
	}
	d.params = d.params.Clamp()

	for i, key := range []int{window.Key1, window.Key2, window.Key3, window.Key4, window.Key5, window.Key6} {
		if w.Pressed(key) {
			d.view = renderer.DebugViews[i]
			d.log.Info("debug view", "view", d.view)
		}
	}
}

func (d *demo) frame(ctx context.Context, dt float32) error {
	in := d.window.PollInput()
	d.handleKeys()
	d.scene.Camera = scene.ApplyInput(d.scene.Camera, in, dt)

	w, h := d.window.GetFramebufferSize()
	if w == 0 || h == 0 {
		// Minimised; keep pumping events without drawing.
		time.Sleep(50 * time.Millisecond)
		return nil
	}
	if err := d.pipeline.Resize(w, h); err != nil {
		return err
	}

	err := d.pipeline.RenderFrame(ctx, renderer.Frame{
		Items:  d.scene.DrawItems(),
		Camera: d.scene.Camera,
		Light:  d.scene.Light,
		Params: d.params,
		View:   d.view,
	})
	if err != nil {
		return err
	}

	if d.window.Pressed(window.KeyF12) {
		d.writeSnapshot()
	}
	d.drawHUD(w, h)
	d.window.SwapBuffers()
	return nil
}

func (d *demo) writeSnapshot() {
	if err := imageio.WriteFile(d.snapshot, d.backend.Snapshot()); err != nil {
		d.log.Warn("snapshot failed", "err", err)
		return
	}
	d.log.Info("snapshot written", "path", d.snapshot)
}

func (d *demo) drawHUD(fbW, fbH int) {
	d.fps.Tick(time.Now())

	s := hud.Status{
		FPS:        d.fps.FPS(),
		Radius:     d.params.Radius,
		KernelSize: d.params.KernelSize,
		SSAO:       d.params.EnableSSAO,
		View:       d.view,
	}
	// The cursor is in window units; the framebuffer may be larger on HiDPI.
	cx, cy := d.window.GetCursorPos()
	if d.window.Width > 0 && d.window.Height > 0 {
		s.CursorX = int(cx * float64(fbW) / float64(d.window.Width))
		s.CursorY = int(cy * float64(fbH) / float64(d.window.Height))
		s.Pixel, s.HasPixel = d.backend.ReadPixel(s.CursorX, s.CursorY)
	}
	d.lines.Fill(s)

	text := fmt.Sprint(d.lines.Lines())
	if text != d.shownText {
		d.overlay.Upload(d.panel.Render(d.lines.Lines()))
		d.shownText = text
	}
	d.overlay.Draw(10, 10, fbW, fbH)
}
