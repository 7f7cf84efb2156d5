// Package hud rasterises the on-screen status panel with Go's bundled
// regular font.
package hud

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"render-demos/renderer"
)

var (
	panelBackground = color.RGBA{A: 160}
	textColor       = color.RGBA{R: 235, G: 235, B: 235, A: 255}
)

// Overlay collects formatted lines for one frame.
type Overlay struct {
	lines []string
}

func (o *Overlay) AddLine(format string, args ...any) {
	o.lines = append(o.lines, fmt.Sprintf(format, args...))
}

func (o *Overlay) Clear() { o.lines = o.lines[:0] }

func (o *Overlay) Lines() []string { return o.lines }

// Status is what the interactive demo shows each frame.
type Status struct {
	FPS        int
	Radius     float32
	KernelSize int
	SSAO       bool
	View       renderer.DebugView

	CursorX, CursorY int
	Pixel            color.RGBA
	HasPixel         bool
}

// Fill replaces o's lines with s.
func (o *Overlay) Fill(s Status) {
	o.Clear()
	state := "off"
	if s.SSAO {
		state = "on"
	}
	o.AddLine("FPS %d", s.FPS)
	o.AddLine("SSAO %s  radius %.2f  kernel %d", state, s.Radius, s.KernelSize)
	o.AddLine("view %s", s.View)
	if s.HasPixel {
		o.AddLine("cursor %d,%d  rgba %d %d %d %d",
			s.CursorX, s.CursorY, s.Pixel.R, s.Pixel.G, s.Pixel.B, s.Pixel.A)
	} else {
		o.AddLine("cursor outside window")
	}
}

// Panel draws lines of text onto a translucent background.
type Panel struct {
	face    font.Face
	padding int
}

// NewPanel parses the embedded font at size points (72 DPI).
func NewPanel(size float64) (*Panel, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return &Panel{face: face, padding: 6}, nil
}

// Render returns an image just large enough for lines.
func (p *Panel) Render(lines []string) *image.RGBA {
	m := p.face.Metrics()
	lineHeight := m.Height.Ceil()
	ascent := m.Ascent.Ceil()

	width := 0
	for _, l := range lines {
		width = max(width, font.MeasureString(p.face, l).Ceil())
	}
	w := width + 2*p.padding
	h := len(lines)*lineHeight + 2*p.padding

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(panelBackground), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(textColor), Face: p.face}
	for i, l := range lines {
		d.Dot = fixed.P(p.padding, p.padding+ascent+i*lineHeight)
		d.DrawString(l)
	}
	return img
}

func (p *Panel) Close() error { return p.face.Close() }

// FPSCounter counts frames and reports the rate once per second.
type FPSCounter struct {
	frames int
	last   time.Time
	fps    int
}

// Tick records one frame at now. It reports true when FPS was updated.
func (c *FPSCounter) Tick(now time.Time) bool {
	if c.last.IsZero() {
		c.last = now
		return false
	}
	c.frames++
	elapsed := now.Sub(c.last)
	if elapsed < time.Second {
		return false
	}
	c.fps = int(float64(c.frames)/elapsed.Seconds() + 0.5)
	c.frames = 0
	c.last = now
	return true
}

func (c *FPSCounter) FPS() int { return c.fps }
