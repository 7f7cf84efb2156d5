package soft

import (
	"render-demos/math"
	"render-demos/renderer"
	"render-demos/ssao"
)

// positionSampler exposes the position attachment to ssao.Occlusion.
type positionSampler struct{ p *Plane }

func (s positionSampler) PositionAt(u, v float32) (math.Vec3, bool) {
	t := s.p.SampleUV(u, v)
	return math.Vec3{X: t[0], Y: t[1], Z: t[2]}, t[3] > 0.5
}

func vec3(t [4]float32) math.Vec3 {
	return math.Vec3{X: t[0], Y: t[1], Z: t[2]}
}

// occlusionRows fills the raw occlusion target. Background pixels are left
// fully open.
func occlusionRows(f *renderer.FrameData, gb, out *Target, y0, y1 int) {
	pos := gb.Attachment(renderer.AttachmentPosition)
	nrm := gb.Attachment(renderer.AttachmentNormal)
	dst := out.Attachment(renderer.AttachmentOcclusion)
	in := ssao.OcclusionInput{
		Kernel:     f.Kernel,
		Projection: f.Projection,
		Radius:     f.Params.Radius,
		Bias:       f.Params.Bias,
		Scene:      positionSampler{pos},
	}

	for y := y0; y < y1; y++ {
		for x := 0; x < out.Width(); x++ {
			p := pos.Fetch(x, y)
			if p[3] <= 0.5 {
				dst.Store(x, y, [4]float32{1})
				continue
			}
			in.Position = vec3(p)
			in.Normal = vec3(nrm.Fetch(x, y)).Normalize()
			in.Noise = f.Noise.At(x, y)
			dst.Store(x, y, [4]float32{ssao.Occlusion(in)})
		}
	}
}

// blurRows is a size x size box filter over offsets [-size/2, size/2) with
// clamp-to-edge reads, matching the noise tile so its pattern averages out.
func blurRows(size int, src, out *Target, y0, y1 int) {
	s := src.Attachment(renderer.AttachmentOcclusion)
	dst := out.Attachment(renderer.AttachmentOcclusion)
	lo, hi := -size/2, size-size/2
	n := float32(size * size)

	for y := y0; y < y1; y++ {
		for x := 0; x < out.Width(); x++ {
			var sum float32
			for dy := lo; dy < hi; dy++ {
				for dx := lo; dx < hi; dx++ {
					sum += s.FetchR(x+dx, y+dy)
				}
			}
			dst.Store(x, y, [4]float32{sum / n})
		}
	}
}

// composeRows writes the lit image, or the selected debug view, into the
// composite target.
func composeRows(f *renderer.FrameData, gb, raw, blurred, out *Target, y0, y1 int) {
	pos := gb.Attachment(renderer.AttachmentPosition)
	nrm := gb.Attachment(renderer.AttachmentNormal)
	alb := gb.Attachment(renderer.AttachmentAlbedo)
	rawAO := raw.Attachment(renderer.AttachmentOcclusion)
	ao := blurred.Attachment(renderer.AttachmentOcclusion)
	dst := out.Attachment(renderer.AttachmentColor)

	for y := y0; y < y1; y++ {
		for x := 0; x < out.Width(); x++ {
			var c math.Vec3
			switch f.DebugView {
			case renderer.ViewPosition:
				c = vec3(pos.Fetch(x, y)).Mul(0.1).Add(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
			case renderer.ViewNormal:
				c = vec3(nrm.Fetch(x, y)).Mul(0.5).Add(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
			case renderer.ViewAlbedo:
				c = vec3(alb.Fetch(x, y))
			case renderer.ViewOcclusion:
				v := rawAO.FetchR(x, y)
				c = math.Vec3{X: v, Y: v, Z: v}
			case renderer.ViewBlurredOcclusion:
				v := ao.FetchR(x, y)
				c = math.Vec3{X: v, Y: v, Z: v}
			default:
				c = shadePixel(f, pos.Fetch(x, y), nrm.Fetch(x, y), alb.Fetch(x, y), ao.FetchR(x, y))
			}
			c = c.Clamp01()
			dst.Store(x, y, [4]float32{c.X, c.Y, c.Z, 1})
		}
	}
}

func shadePixel(f *renderer.FrameData, p, n, a [4]float32, ao float32) math.Vec3 {
	if p[3] <= 0.5 {
		return ssao.BackgroundColor
	}
	return ssao.Shade(ssao.ShadeInput{
		Position:      vec3(p),
		Normal:        vec3(n).Normalize(),
		Albedo:        vec3(a),
		Specular:      a[3],
		AO:            ao,
		EnableSSAO:    f.Params.EnableSSAO,
		LightPosition: f.LightPosition,
		LightColor:    f.Light.Color.RGB(),
		Linear:        f.Light.Linear,
		Quadratic:     f.Light.Quadratic,
	}).Color
}
