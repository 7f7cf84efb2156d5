package soft

import (
	"render-demos/renderer"
)

// Plane is one attachment's texels, stored as float32 channels with the
// origin at the bottom-left like a GL texture.
type Plane struct {
	Width    int
	Height   int
	Channels int
	Format   renderer.Format
	Wrap     renderer.Wrap
	Data     []float32
}

func newPlane(w, h int, a renderer.AttachmentSpec) *Plane {
	c := a.Format.Channels()
	return &Plane{
		Width:    w,
		Height:   h,
		Channels: c,
		Format:   a.Format,
		Wrap:     a.Wrap,
		Data:     make([]float32, w*h*c),
	}
}

func (p *Plane) index(x, y int) int {
	switch p.Wrap {
	case renderer.WrapRepeat:
		x = wrap(x, p.Width)
		y = wrap(y, p.Height)
	default:
		x = clampi(x, 0, p.Width-1)
		y = clampi(y, 0, p.Height-1)
	}
	return (y*p.Width + x) * p.Channels
}

// Fetch is texelFetch with the attachment's wrap mode applied to out-of-range
// coordinates. Missing channels read as 0, alpha as 1.
func (p *Plane) Fetch(x, y int) [4]float32 {
	i := p.index(x, y)
	if p.Channels == 1 {
		return [4]float32{p.Data[i], 0, 0, 1}
	}
	d := p.Data[i : i+4 : i+4]
	return [4]float32{d[0], d[1], d[2], d[3]}
}

// FetchR reads the first channel only.
func (p *Plane) FetchR(x, y int) float32 {
	return p.Data[p.index(x, y)]
}

// SampleUV is nearest sampling with u, v in [0, 1].
func (p *Plane) SampleUV(u, v float32) [4]float32 {
	return p.Fetch(texel(u, p.Width), texel(v, p.Height))
}

// Store writes a texel, quantising 8-bit formats the way the GPU would.
func (p *Plane) Store(x, y int, v [4]float32) {
	i := (y*p.Width + x) * p.Channels
	if p.Format == renderer.FormatRGBA8 {
		for c := range v {
			v[c] = quantize8(v[c])
		}
	}
	copy(p.Data[i:i+p.Channels], v[:p.Channels])
}

func (p *Plane) Clear(v [4]float32) {
	for i := 0; i < len(p.Data); i += p.Channels {
		copy(p.Data[i:i+p.Channels], v[:p.Channels])
	}
}

// Target is the software offscreen target: named planes plus an optional
// depth buffer holding window-space depth in [0, 1].
type Target struct {
	Spec   renderer.TargetSpec
	planes map[string]*Plane
	Depth  []float32
}

// NewTarget allocates every attachment of spec. It fails with
// *renderer.IncompleteTargetError before allocating anything.
func NewTarget(spec renderer.TargetSpec) (*Target, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	t := &Target{Spec: spec, planes: make(map[string]*Plane, len(spec.Attachments))}
	for _, a := range spec.Attachments {
		t.planes[a.Name] = newPlane(spec.Width, spec.Height, a)
	}
	if spec.Depth {
		t.Depth = make([]float32, spec.Width*spec.Height)
	}
	return t, nil
}

func (t *Target) Width() int  { return t.Spec.Width }
func (t *Target) Height() int { return t.Spec.Height }

// Attachment returns the named plane or nil.
func (t *Target) Attachment(name string) *Plane {
	return t.planes[name]
}

// Fetch reads one texel of the named attachment.
func (t *Target) Fetch(name string, x, y int) [4]float32 {
	return t.planes[name].Fetch(x, y)
}

// SampleUV samples the named attachment in texture space.
func (t *Target) SampleUV(name string, u, v float32) [4]float32 {
	return t.planes[name].SampleUV(u, v)
}

// Clear resets every colour plane to zero and depth to the far plane.
func (t *Target) Clear() {
	for _, p := range t.planes {
		clear(p.Data)
	}
	for i := range t.Depth {
		t.Depth[i] = 1
	}
}

func texel(u float32, n int) int {
	return clampi(int(floor(u*float32(n))), 0, n-1)
}

func floor(f float32) float32 {
	i := float32(int(f))
	if i > f {
		i--
	}
	return i
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func quantize8(v float32) float32 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return float32(int(v*255+0.5)) / 255
}
