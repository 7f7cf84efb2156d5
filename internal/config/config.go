// Package config loads the demo settings from TOML and applies command-line
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"render-demos/core"
	"render-demos/math"
	"render-demos/scene"
	"render-demos/ssao"
)

// Config holds every setting of the interactive demo and the snapshot tool.
type Config struct {
	LogLevel string `toml:"log_level"`

	Window   WindowConfig   `toml:"window"`
	SSAO     SSAOConfig     `toml:"ssao"`
	Light    LightConfig    `toml:"light"`
	Scene    SceneConfig    `toml:"scene"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Render   RenderConfig   `toml:"render"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type SSAOConfig struct {
	Radius     float32 `toml:"radius"`
	Bias       float32 `toml:"bias"`
	KernelSize int     `toml:"kernel_size"`
	NoiseSize  int     `toml:"noise_size"`
	Enabled    bool    `toml:"enabled"`
}

type LightConfig struct {
	Position  [3]float32 `toml:"position"`
	Color     [3]float32 `toml:"color"`
	Linear    float32    `toml:"linear"`
	Quadratic float32    `toml:"quadratic"`
}

type SceneConfig struct {
	// Model is an .obj, .gltf or .glb file; empty renders the fallback sphere.
	Model string `toml:"model"`
	// AlbedoTexture replaces the model's albedo texture when set.
	AlbedoTexture string `toml:"albedo_texture"`
}

type SnapshotConfig struct {
	// Output is written as WebP or PNG depending on its extension.
	Output      string `toml:"output"`
	Supersample int    `toml:"supersample"`
}

type RenderConfig struct {
	// Workers of the software backend; 0 means one per CPU.
	Workers int   `toml:"workers"`
	Seed    int64 `toml:"seed"`
}

func Default() Config {
	p := ssao.DefaultParams()
	l := scene.DefaultPointLight()
	return Config{
		LogLevel: "info",
		Window:   WindowConfig{Width: 1280, Height: 720, Title: "SSAO", VSync: true},
		SSAO: SSAOConfig{
			Radius:     p.Radius,
			Bias:       p.Bias,
			KernelSize: p.KernelSize,
			NoiseSize:  p.NoiseSize,
			Enabled:    p.EnableSSAO,
		},
		Light: LightConfig{
			Position:  [3]float32{l.Position.X, l.Position.Y, l.Position.Z},
			Color:     [3]float32{l.Color.R, l.Color.G, l.Color.B},
			Linear:    l.Linear,
			Quadratic: l.Quadratic,
		},
		Snapshot: SnapshotConfig{Output: "ssao.webp", Supersample: 1},
		Render:   RenderConfig{Seed: 1},
	}
}

// Load reads a TOML file over Default(). Keys missing from the file keep
// their defaults; unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over Default().
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode renders cfg as TOML, e.g. to write a starter file.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Flags holds command-line values that override the file. Zero values are
// ignored.
type Flags struct {
	Model    string
	Output   string
	Width    int
	Height   int
	Workers  int
	LogLevel string
	NoSSAO   bool
}

// Resolve applies flags and fills in derived defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.Model != "" {
		c.Scene.Model = flags.Model
	}
	if flags.Output != "" {
		c.Snapshot.Output = flags.Output
	}
	if flags.Width > 0 {
		c.Window.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Window.Height = flags.Height
	}
	if flags.Workers > 0 {
		c.Render.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.NoSSAO {
		c.SSAO.Enabled = false
	}

	if c.Render.Workers <= 0 {
		c.Render.Workers = runtime.NumCPU()
	}
	if c.Snapshot.Supersample <= 0 {
		c.Snapshot.Supersample = 1
	}
}

// Validate reports every setting that cannot be used. SSAO values outside
// their range are not errors; Params clamps them.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Snapshot.Supersample < 1 || c.Snapshot.Supersample > 4 {
		errs = append(errs, fmt.Errorf("snapshot supersample %d not in [1, 4]", c.Snapshot.Supersample))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Light.Linear < 0 || c.Light.Quadratic < 0 {
		errs = append(errs, errors.New("light attenuation factors must not be negative"))
	}
	return errors.Join(errs...)
}

// Params returns the SSAO settings clamped to their usable ranges.
func (c Config) Params() ssao.Params {
	return ssao.Params{
		Radius:     c.SSAO.Radius,
		Bias:       c.SSAO.Bias,
		KernelSize: c.SSAO.KernelSize,
		NoiseSize:  c.SSAO.NoiseSize,
		EnableSSAO: c.SSAO.Enabled,
	}.Clamp()
}

func (c Config) PointLight() scene.PointLight {
	p, col := c.Light.Position, c.Light.Color
	return scene.PointLight{
		Position:  math.Vec3{X: p[0], Y: p[1], Z: p[2]},
		Color:     core.Color{R: col[0], G: col[1], B: col[2], A: 1},
		Linear:    c.Light.Linear,
		Quadratic: c.Light.Quadratic,
	}
}

// Level is the slog level named by LogLevel, info if it is not valid.
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}
