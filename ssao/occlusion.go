package ssao

import (
	"render-demos/math"
)

// SceneSampler looks up the geometry buffer in texture space: u, v in [0, 1]
// with v = 0 at the bottom of the screen. covered is false for background.
type SceneSampler interface {
	PositionAt(u, v float32) (pos math.Vec3, covered bool)
}

// OcclusionInput is everything one pixel of the SSAO pass reads.
type OcclusionInput struct {
	Position math.Vec3 // view space
	Normal   math.Vec3 // view space, unit length
	Noise    math.Vec3 // this pixel's rotation vector

	Kernel     Kernel
	Projection math.Mat4
	Radius     float32
	Bias       float32
	Scene      SceneSampler
}

// TBN builds an orthonormal basis around n whose tangent is noise with the
// normal component removed. When noise is parallel to n any perpendicular
// axis is used instead.
func TBN(n, noise math.Vec3) (t, b math.Vec3) {
	t = noise.Sub(n.Mul(noise.Dot(n)))
	if t.LengthSqr() < 1e-8 {
		axis := math.Vec3Right
		if math.Abs(n.X) > 0.9 {
			axis = math.Vec3Up
		}
		t = axis.Sub(n.Mul(axis.Dot(n)))
	}
	t = t.Normalize()
	b = n.Cross(t)
	return t, b
}

// RangeWeight scales an occluder's contribution by how far its depth is from
// the shaded point: 1 within radius, falling to exactly 0 at 2*radius.
func RangeWeight(radius, depthDelta float32) float32 {
	return 1 - math.Smoothstep(radius, 2*radius, math.Abs(depthDelta))
}

// Occlusion returns the ambient visibility of one pixel: 1 is fully open,
// 0 fully occluded. A sample counts as occluded when the stored geometry at
// its screen position is at least Bias closer to the camera than the sample.
func Occlusion(in OcclusionInput) float32 {
	if len(in.Kernel) == 0 {
		return 1
	}
	t, b := TBN(in.Normal, in.Noise)
	n := in.Normal

	var occlusion float32
	for _, k := range in.Kernel {
		offset := t.Mul(k.X).Add(b.Mul(k.Y)).Add(n.Mul(k.Z))
		s := in.Position.Add(offset.Mul(in.Radius))

		clip := s.ToVec4(1).MulMat(in.Projection)
		if clip.W <= 0 {
			// Behind the camera; there is nothing on screen to compare with.
			continue
		}
		u := clip.X/clip.W*0.5 + 0.5
		v := clip.Y/clip.W*0.5 + 0.5

		scene, covered := in.Scene.PositionAt(math.Clamp(u, 0, 1), math.Clamp(v, 0, 1))
		if !covered {
			continue
		}
		if scene.Z >= s.Z+in.Bias {
			occlusion += RangeWeight(in.Radius, in.Position.Z-scene.Z)
		}
	}
	return 1 - occlusion/float32(len(in.Kernel))
}
