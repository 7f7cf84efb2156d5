package ssao

import (
	"math/rand"

	"render-demos/math"
)

// NoiseTile is a Size x Size grid of random rotation vectors in the XY
// plane. It is tiled over the screen so neighbouring pixels rotate the kernel
// differently; the blur pass removes the resulting pattern.
type NoiseTile struct {
	Size    int
	Vectors []math.Vec3 // row-major, Size*Size entries
}

// GenerateNoiseTile draws size*size vectors with x, y in [-1, 1] and z = 0.
// size < 1 yields an empty tile.
func GenerateNoiseTile(size int, rng *rand.Rand) NoiseTile {
	if size < 1 {
		return NoiseTile{}
	}
	vs := make([]math.Vec3, size*size)
	for i := range vs {
		vs[i] = math.Vec3{
			X: rng.Float32()*2 - 1,
			Y: rng.Float32()*2 - 1,
			Z: 0,
		}
	}
	return NoiseTile{Size: size, Vectors: vs}
}

// At returns the vector for pixel (x, y), repeating the tile.
func (t NoiseTile) At(x, y int) math.Vec3 {
	if t.Size == 0 {
		return math.Vec3{X: 1}
	}
	x %= t.Size
	if x < 0 {
		x += t.Size
	}
	y %= t.Size
	if y < 0 {
		y += t.Size
	}
	return t.Vectors[y*t.Size+x]
}

// Floats flattens the tile as RGB triples for a texture upload.
func (t NoiseTile) Floats() []float32 {
	out := make([]float32, 0, len(t.Vectors)*3)
	for _, v := range t.Vectors {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}
