package scene

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"

	"render-demos/core"
)

// Texture holds CPU-side pixel data for a 2D texture.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	// GLID is the OpenGL texture object ID, set by opengl.UploadTexture.
	GLID uint32
}

// LoadTexture reads a PNG, JPEG or TGA file from disk and converts it to RGBA8.
func LoadTexture(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	tex, err := decodeImageBytes(path, filepath.Ext(path), data)
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	return tex, nil
}

type imageDecoder func(io.Reader) (image.Image, error)

// decoderFor picks a decoder from a file extension or MIME type. The
// registry in image.Decode is not used: the TGA format has no magic
// number and would claim every file. An unknown kind falls back to the
// PNG and JPEG signatures, then TGA.
func decoderFor(kind string, data []byte) imageDecoder {
	switch strings.ToLower(kind) {
	case ".png", "image/png":
		return png.Decode
	case ".jpg", ".jpeg", "image/jpeg":
		return jpeg.Decode
	case ".tga", "image/x-tga", "image/tga":
		return tga.Decode
	}
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return png.Decode
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return jpeg.Decode
	}
	return tga.Decode
}

func decodeImageBytes(name, kind string, data []byte) (*Texture, error) {
	img, err := decoderFor(kind, data)(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return NewTextureFromImage(name, img), nil
}

func NewTextureFromImage(name string, img image.Image) *Texture {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Texture{
		Name:   name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: rgba.Pix,
	}
}

// NewSolidTexture creates a 1x1 texture with the given RGBA components in 0..255.
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}

// Sample is a nearest-neighbour lookup with repeat wrapping. v = 0 is the
// first row of Pixels, matching the GL upload.
func (t *Texture) Sample(u, v float32) core.Color {
	if t.Width == 0 || t.Height == 0 {
		return core.ColorWhite
	}
	x := wrapIndex(int(floor32(u*float32(t.Width))), t.Width)
	y := wrapIndex(int(floor32(v*float32(t.Height))), t.Height)
	i := (y*t.Width + x) * 4
	p := t.Pixels[i : i+4 : i+4]
	return core.Color{
		R: float32(p[0]) / 255,
		G: float32(p[1]) / 255,
		B: float32(p[2]) / 255,
		A: float32(p[3]) / 255,
	}
}

func floor32(f float32) float32 {
	i := float32(int(f))
	if i > f {
		i--
	}
	return i
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// TextureCache loads each path at most once. A path that fails to load maps
// to a shared placeholder so the scene still renders.
type TextureCache struct {
	mu          sync.Mutex
	textures    map[string]*Texture
	placeholder *Texture
}

func NewTextureCache() *TextureCache {
	return &TextureCache{
		textures:    make(map[string]*Texture),
		placeholder: NewSolidTexture("placeholder", 255, 255, 255, 255),
	}
}

// GetOrPlaceholder always returns a usable texture. The error is non-nil
// only on the first failed load of path and says why the placeholder is used.
func (c *TextureCache) GetOrPlaceholder(path string) (*Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tex, ok := c.textures[path]; ok {
		return tex, nil
	}
	tex, err := LoadTexture(path)
	if err != nil {
		c.textures[path] = c.placeholder
		return c.placeholder, err
	}
	c.textures[path] = tex
	return tex, nil
}

func (c *TextureCache) Placeholder() *Texture {
	return c.placeholder
}

// All returns every distinct texture held, placeholder included, for upload.
func (c *TextureCache) All() []*Texture {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := map[*Texture]bool{c.placeholder: true}
	out := []*Texture{c.placeholder}
	for _, t := range c.textures {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
