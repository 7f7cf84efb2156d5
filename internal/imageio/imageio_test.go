package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 40, A: 255})
		}
	}
	return img
}

func TestEncodeWebPIsLossless(t *testing.T) {
	img := gradient(17, 9)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ".WEBP", img))

	back, err := webp.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), back.Bounds())
	for _, p := range []image.Point{{0, 0}, {16, 8}, {5, 3}} {
		r, g, b, _ := back.At(p.X, p.Y).RGBA()
		want := img.RGBAAt(p.X, p.Y)
		assert.Equal(t, [3]uint8{want.R, want.G, want.B}, [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	require.NoError(t, WriteFile(path, gradient(8, 4)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 4, cfg.Height)

	bad := filepath.Join(dir, "shot.bmp")
	assert.ErrorIs(t, WriteFile(bad, gradient(2, 2)), ErrUnknownFormat)
	_, err = os.Stat(bad)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDownscale(t *testing.T) {
	img := gradient(64, 32)
	assert.Same(t, img, Downscale(img, 1))

	small := Downscale(img, 2)
	assert.Equal(t, image.Rect(0, 0, 32, 16), small.Bounds())

	flat := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range flat.Pix {
		flat.Pix[i] = 200
	}
	got := Downscale(flat, 4).RGBAAt(1, 1)
	for _, c := range []uint8{got.R, got.G, got.B, got.A} {
		assert.InDelta(t, 200, int(c), 1)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 1.2909944, s.StdDev, 1e-6)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)

	assert.Equal(t, Stats{}, Summarize(nil))
	assert.Equal(t, Stats{Count: 1, Mean: 0.5, Min: 0.5, Max: 0.5}, Summarize([]float64{0.5}))
}
