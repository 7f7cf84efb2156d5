package opengl

import (
	"image"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// overlayVertSrc places a textured quad at a pixel rectangle given in
// window coordinates with a top-left origin.
const overlayVertSrc = `
#version 410 core
uniform vec4 rect;   // x, y, w, h in pixels
uniform vec2 screen; // window size in pixels
out vec2 fragUV;
void main() {
    const vec2 corners[4] = vec2[4](vec2(0, 0), vec2(1, 0), vec2(0, 1), vec2(1, 1));
    vec2 c  = corners[gl_VertexID];
    vec2 px = rect.xy + c * rect.zw;
    gl_Position = vec4(px.x / screen.x * 2.0 - 1.0, 1.0 - px.y / screen.y * 2.0, 0.0, 1.0);
    fragUV = c;
}
` + "\x00"

const overlayFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;
uniform sampler2D panel;
void main() {
    outColor = texture(panel, fragUV);
}
` + "\x00"

// Overlay draws an RGBA image over the composed frame, e.g. the HUD panel.
type Overlay struct {
	prog *program
	vao  uint32
	tex  uint32
	w, h int
}

func NewOverlay() (*Overlay, error) {
	prog, err := newProgram("overlay", overlayVertSrc, overlayFragSrc)
	if err != nil {
		return nil, err
	}
	prog.use()
	prog.setInt("panel", 0)
	o := &Overlay{prog: prog}
	gl.GenVertexArrays(1, &o.vao)
	gl.GenTextures(1, &o.tex)
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return o, nil
}

// Upload replaces the overlay image. Row 0 of img is drawn at the top.
func (o *Overlay) Upload(img *image.RGBA) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	o.w, o.h = b.Dx(), b.Dy()
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(o.w), int32(o.h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Draw blends the overlay at pixel (x, y) of the default framebuffer.
func (o *Overlay) Draw(x, y, screenW, screenH int) {
	if o.w == 0 || o.h == 0 {
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(screenW), int32(screenH))
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	o.prog.use()
	gl.Uniform4f(o.prog.loc("rect"), float32(x), float32(y), float32(o.w), float32(o.h))
	o.prog.setVec2("screen", float32(screenW), float32(screenH))
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
}

func (o *Overlay) Destroy() {
	if o.tex != 0 {
		gl.DeleteTextures(1, &o.tex)
		o.tex = 0
	}
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
		o.vao = 0
	}
	o.prog.destroy()
}
