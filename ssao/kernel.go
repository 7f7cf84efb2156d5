package ssao

import (
	"math/rand"

	"render-demos/math"
)

// Kernel is a set of sample offsets in a unit hemisphere around +Z. Every
// sample has z >= 0 and length <= 1; samples cluster towards the origin so
// nearby geometry weighs more.
type Kernel []math.Vec3

// GenerateKernel draws n samples from rng. The same seed always yields the
// same kernel. n < 1 yields an empty kernel.
func GenerateKernel(n int, rng *rand.Rand) Kernel {
	if n < 1 {
		return Kernel{}
	}
	k := make(Kernel, n)
	for i := range k {
		v := math.Vec3{
			X: rng.Float32()*2 - 1,
			Y: rng.Float32()*2 - 1,
			Z: rng.Float32(),
		}.Normalize()
		v = v.Mul(rng.Float32())

		// Accelerating lerp: cluster more samples close to the origin
		t := float32(i) / float32(n)
		v = v.Mul(math.Lerp(0.1, 1.0, t*t))
		k[i] = v
	}
	return k
}

// Prefix returns the first n samples, clamped to the kernel length.
func (k Kernel) Prefix(n int) Kernel {
	if n < 0 {
		n = 0
	}
	if n > len(k) {
		n = len(k)
	}
	return k[:n]
}

// Floats flattens the kernel as xyz triples for a vec3 uniform array.
func (k Kernel) Floats() []float32 {
	out := make([]float32, 0, len(k)*3)
	for _, v := range k {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}
