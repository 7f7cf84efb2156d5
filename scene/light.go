package scene

import (
	"render-demos/core"
	"render-demos/math"
)

// PointLight is the single light of the composition pass. Attenuation is
// 1 / (1 + Linear*d + Quadratic*d^2).
type PointLight struct {
	Position  math.Vec3 // world space
	Color     core.Color
	Linear    float32
	Quadratic float32
}

func DefaultPointLight() PointLight {
	return PointLight{
		Position:  math.Vec3{X: 2, Y: 4, Z: -2},
		Color:     core.Color{R: 0.2, G: 0.2, B: 0.7, A: 1},
		Linear:    0.09,
		Quadratic: 0.032,
	}
}

// ViewSpace returns the light position transformed by view. Lighting is done
// in view space, so the host calls this once per frame.
func (l PointLight) ViewSpace(view math.Mat4) math.Vec3 {
	return view.MulVec3(l.Position)
}
