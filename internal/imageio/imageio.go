// Package imageio writes snapshots and summarises occlusion buffers.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrUnknownFormat is returned for output paths that are neither .webp nor .png.
var ErrUnknownFormat = errors.New("unknown image format")

// Encode writes img in the format named by ext (".webp" or ".png").
func Encode(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".webp":
		return nativewebp.Encode(w, img, nil)
	case ".png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// WriteFile encodes img by the extension of path. The file is removed again
// if encoding fails.
func WriteFile(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if ext == "" {
		return fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, ext, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Downscale shrinks img by an integer factor with Catmull-Rom filtering.
// The composed frame is opaque, so no alpha premultiplication is needed.
func Downscale(img *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	w, h := max(b.Dx()/factor, 1), max(b.Dy()/factor, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Stats summarises a buffer of per-pixel values.
type Stats struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func (s Stats) String() string {
	return fmt.Sprintf("n=%d mean=%.4f stddev=%.4f min=%.4f max=%.4f", s.Count, s.Mean, s.StdDev, s.Min, s.Max)
}

// Summarize computes Stats over values; an empty slice gives the zero value.
func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	s := Stats{
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s
}
