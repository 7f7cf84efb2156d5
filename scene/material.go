package scene

import (
	"render-demos/core"
	"render-demos/math"
)

// Material is what the geometry pass writes into the albedo target: rgb from
// Albedo (times AlbedoTexture when set), alpha from SpecularIntensity.
type Material struct {
	Name              string
	Albedo            core.Color
	SpecularIntensity float32

	// Optional; sampled with repeat wrapping and multiplied with Albedo.
	AlbedoTexture *Texture
}

// DefaultMaterial is the near-white matte surface used for untextured meshes.
func DefaultMaterial() *Material {
	return &Material{
		Name:              "Default",
		Albedo:            core.Color{R: 0.95, G: 0.95, B: 0.95, A: 1},
		SpecularIntensity: 1,
	}
}

func NewMaterial(name string, albedo core.Color) *Material {
	return &Material{
		Name:              name,
		Albedo:            albedo,
		SpecularIntensity: 1,
	}
}

// AlbedoAt returns the surface colour at uv with specular intensity in alpha.
func (m *Material) AlbedoAt(uv math.Vec2) core.Color {
	c := m.Albedo
	if m.AlbedoTexture != nil {
		t := m.AlbedoTexture.Sample(uv.X, uv.Y)
		c.R *= t.R
		c.G *= t.G
		c.B *= t.B
	}
	c.A = m.SpecularIntensity
	return c
}
