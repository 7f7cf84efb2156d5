package ssao

import "render-demos/math"

const (
	// AmbientStrength scales albedo for the ambient term.
	AmbientStrength = 0.3
	// SpecularPower is the Blinn-Phong exponent.
	SpecularPower = 8
)

// BackgroundColor is written where the geometry pass drew nothing.
var BackgroundColor = math.Vec3{X: 0.1, Y: 0.1, Z: 0.1}

// ShadeInput is one covered pixel of the composition pass. Positions are in
// view space, so the viewer sits at the origin.
type ShadeInput struct {
	Position math.Vec3
	Normal   math.Vec3
	Albedo   math.Vec3
	Specular float32 // intensity from the albedo target's alpha

	AO         float32 // blurred occlusion
	EnableSSAO bool

	LightPosition math.Vec3 // view space
	LightColor    math.Vec3
	Linear        float32
	Quadratic     float32
}

// ShadeResult keeps the lighting terms apart so callers can inspect them.
type ShadeResult struct {
	Ambient     math.Vec3
	Diffuse     math.Vec3
	Specular    math.Vec3
	Attenuation float32
	Color       math.Vec3
}

// Shade evaluates ambient + (diffuse + specular) * attenuation. Occlusion
// only darkens the ambient term, and only when EnableSSAO is set.
func Shade(in ShadeInput) ShadeResult {
	ao := float32(1)
	if in.EnableSSAO {
		ao = in.AO
	}

	var r ShadeResult
	r.Ambient = in.Albedo.Mul(AmbientStrength * ao)

	toLight := in.LightPosition.Sub(in.Position)
	dist := toLight.Length()
	l := toLight.Normalize()
	v := in.Position.Negate().Normalize()
	h := l.Add(v).Normalize()

	r.Diffuse = in.Albedo.MulVec(in.LightColor).Mul(math.Max(in.Normal.Dot(l), 0))
	spec := math.Pow(math.Max(in.Normal.Dot(h), 0), SpecularPower)
	r.Specular = in.LightColor.Mul(in.Specular * spec)

	r.Attenuation = 1 / (1 + in.Linear*dist + in.Quadratic*dist*dist)
	r.Color = r.Ambient.Add(r.Diffuse.Add(r.Specular).Mul(r.Attenuation))
	return r
}
