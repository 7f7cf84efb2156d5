package hud

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-demos/renderer"
)

func TestOverlayFill(t *testing.T) {
	var o Overlay
	o.Fill(Status{
		FPS:        59,
		Radius:     0.5,
		KernelSize: 16,
		SSAO:       true,
		View:       renderer.ViewBlurredOcclusion,
		CursorX:    10,
		CursorY:    20,
		Pixel:      color.RGBA{R: 1, G: 2, B: 3, A: 255},
		HasPixel:   true,
	})
	assert.Equal(t, []string{
		"FPS 59",
		"SSAO on  radius 0.50  kernel 16",
		"view blurred-occlusion",
		"cursor 10,20  rgba 1 2 3 255",
	}, o.Lines())

	o.Fill(Status{})
	assert.Len(t, o.Lines(), 4)
	assert.Equal(t, "SSAO off  radius 0.00  kernel 0", o.Lines()[1])
	assert.Equal(t, "cursor outside window", o.Lines()[3])
}

func TestPanelRender(t *testing.T) {
	p, err := NewPanel(14)
	require.NoError(t, err)
	defer p.Close()

	short := p.Render([]string{"a"})
	long := p.Render([]string{"a much longer line of text", "second"})
	assert.Greater(t, long.Bounds().Dx(), short.Bounds().Dx())
	assert.Greater(t, long.Bounds().Dy(), short.Bounds().Dy())

	// Background corner stays untouched by glyphs.
	assert.Equal(t, panelBackground, long.RGBAAt(0, 0))

	var lit int
	for i := 0; i < len(long.Pix); i += 4 {
		if long.Pix[i] > 128 {
			lit++
		}
	}
	assert.Positive(t, lit)
}

func TestFPSCounter(t *testing.T) {
	var c FPSCounter
	start := time.Unix(100, 0)
	assert.False(t, c.Tick(start))
	for i := 1; i < 30; i++ {
		assert.False(t, c.Tick(start.Add(time.Duration(i)*time.Second/30)))
	}
	assert.True(t, c.Tick(start.Add(time.Second)))
	assert.Equal(t, 30, c.FPS())
}
