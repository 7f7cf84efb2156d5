package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-demos/renderer"
)

// target is a framebuffer with one texture per attachment of its spec, in
// spec order, and an optional depth renderbuffer.
type target struct {
	spec     renderer.TargetSpec
	fbo      uint32
	textures []uint32
	depthRBO uint32
}

type texFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

func glFormat(f renderer.Format) texFormat {
	switch f {
	case renderer.FormatRGBA32F:
		return texFormat{gl.RGBA32F, gl.RGBA, gl.FLOAT}
	case renderer.FormatRGBA8:
		return texFormat{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE}
	case renderer.FormatR32F:
		return texFormat{gl.R32F, gl.RED, gl.FLOAT}
	case renderer.FormatR16F:
		return texFormat{gl.R16F, gl.RED, gl.FLOAT}
	default:
		return texFormat{gl.RGBA16F, gl.RGBA, gl.FLOAT}
	}
}

func glFilter(f renderer.Filter) int32 {
	if f == renderer.FilterLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func glWrap(w renderer.Wrap) int32 {
	if w == renderer.WrapRepeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

// newTarget allocates the framebuffer for spec. An incomplete framebuffer is
// deleted and reported as *renderer.IncompleteTargetError.
func newTarget(spec renderer.TargetSpec) (*target, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	t := &target{spec: spec}
	w, h := int32(spec.Width), int32(spec.Height)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	drawBuffers := make([]uint32, len(spec.Attachments))
	for i, a := range spec.Attachments {
		var tex uint32
		f := glFormat(a.Format)
		gl.GenTextures(1, &tex)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, f.internal, w, h, 0, f.format, f.xtype, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(a.Filter))
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(a.Filter))
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(a.Wrap))
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(a.Wrap))

		attachment := uint32(gl.COLOR_ATTACHMENT0 + i)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, tex, 0)
		drawBuffers[i] = attachment
		t.textures = append(t.textures, tex)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])

	if spec.Depth {
		gl.GenRenderbuffers(1, &t.depthRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, w, h)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depthRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return nil, &renderer.IncompleteTargetError{
			Name:   spec.Name,
			Status: status,
			Reason: "framebuffer status check failed",
		}
	}
	return t, nil
}

// texture returns the texture of the named attachment, or 0.
func (t *target) texture(name string) uint32 {
	for i, a := range t.spec.Attachments {
		if a.Name == name {
			return t.textures[i]
		}
	}
	return 0
}

func (t *target) bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.spec.Width), int32(t.spec.Height))
}

func (t *target) destroy() {
	if t == nil {
		return
	}
	if len(t.textures) > 0 {
		gl.DeleteTextures(int32(len(t.textures)), &t.textures[0])
		t.textures = nil
	}
	if t.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &t.depthRBO)
		t.depthRBO = 0
	}
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
}
