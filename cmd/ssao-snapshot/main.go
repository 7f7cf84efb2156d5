// Command ssao-snapshot renders the demo scene once on the CPU and writes
// the image. It needs no GPU or display.
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
	"render-demos/internal/imageio"
	"render-demos/internal/soft"
	"render-demos/renderer"
	"render-demos/scene"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ssao-snapshot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "TOML settings file")
	viewName := flag.String("view", "final", "final, position, normal, albedo, occlusion or blurred-occlusion")
	var flags config.Flags
	flag.StringVar(&flags.Model, "model", "", "model to show (.obj, .gltf, .glb)")
	flag.StringVar(&flags.Output, "out", "", "output path (.webp or .png)")
	flag.IntVar(&flags.Width, "width", 0, "image width")
	flag.IntVar(&flags.Height, "height", 0, "image height")
	flag.IntVar(&flags.Workers, "workers", 0, "render workers (default: one per CPU)")
	flag.StringVar(&flags.LogLevel, "log-level", "", "debug, info, warn or error")
	flag.BoolVar(&flags.NoSSAO, "no-ssao", false, "disable occlusion")
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
	view, ok := renderer.ParseDebugView(*viewName)
	if !ok {
		return fmt.Errorf("unknown view %q", *viewName)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	renderer.SetLogger(log)

	ss := cfg.Snapshot.Supersample
	backend, err := soft.New(cfg.Window.Width*ss, cfg.Window.Height*ss, soft.Options{Workers: cfg.Render.Workers})
	if err != nil {
		return err
	}
	pipeline, err := renderer.NewPipeline(backend, renderer.Options{
		Seed:      cfg.Render.Seed,
		NoiseSize: cfg.SSAO.NoiseSize,
	})
	if err != nil {
		return err
	}

	sc, err := scene.BuildDemoScene(scene.NewPrimitives(), scene.DemoOptions{
		ModelPath:     cfg.Scene.Model,
		Light:         cfg.PointLight(),
		AlbedoTexture: cfg.Scene.AlbedoTexture,
		Textures:      scene.NewTextureCache(),
	})
	if err != nil {
		var assetErr *renderer.AssetLoadError
		if !errors.As(err, &assetErr) {
			return err
		}
		log.Warn("using placeholder asset", "err", err)
	}

	start := time.Now()
	err = pipeline.RenderFrame(context.Background(), renderer.Frame{
		Items:  sc.DrawItems(),
		Camera: sc.Camera,
		Light:  sc.Light,
		Params: cfg.Params(),
		View:   view,
	})
	if err != nil {
		return err
	}
	log.Info("frame rendered", "took", time.Since(start), "workers", cfg.Render.Workers)

	img := imageio.Downscale(backend.Image(), ss)
	if err := imageio.WriteFile(cfg.Snapshot.Output, img); err != nil {
		return err
	}

	raw, blurred := occlusionValues(backend)
	fmt.Printf("wrote %s (%dx%d)\n", cfg.Snapshot.Output, img.Bounds().Dx(), img.Bounds().Dy())
	fmt.Printf("raw occlusion:     %v\n", imageio.Summarize(raw))
	fmt.Printf("blurred occlusion: %v\n", imageio.Summarize(blurred))
	return nil
}

// occlusionValues collects the occlusion of every covered pixel.
func occlusionValues(b *soft.Backend) (raw, blurred []float64) {
	gb := b.Target(renderer.TargetGBuffer)
	w, h := b.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if gb.Fetch(renderer.AttachmentPosition, x, y)[3] <= 0.5 {
				continue
			}
			r, bl := b.OcclusionAt(x, y)
			raw = append(raw, float64(r))
			blurred = append(blurred, float64(bl))
		}
	}
	return raw, blurred
}
