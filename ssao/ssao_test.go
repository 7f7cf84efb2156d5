package ssao

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"render-demos/math"
)

// plane is n·p = d in view space.
type plane struct {
	n math.Vec3
	d float32
}

// rayScene answers PositionAt by casting a ray from the eye through the
// pixel and returning the nearest plane hit, like a rasterised G-buffer.
type rayScene struct {
	proj   math.Mat4
	planes []plane
}

func (s rayScene) PositionAt(u, v float32) (math.Vec3, bool) {
	dir := math.Vec3{
		X: (u*2 - 1) / s.proj[0][0],
		Y: (v*2 - 1) / s.proj[1][1],
		Z: -1,
	}
	best := float32(-1)
	for _, p := range s.planes {
		denom := p.n.Dot(dir)
		if math.Abs(denom) < 1e-9 {
			continue
		}
		t := p.d / denom
		if t > 0 && (best < 0 || t < best) {
			best = t
		}
	}
	if best < 0 {
		return math.Vec3{}, false
	}
	return dir.Mul(best), true
}

func testProjection() math.Mat4 {
	return math.Mat4Perspective(math.Radians(45), 1, 0.1, 50)
}

func TestKernelInvariants(t *testing.T) {
	for _, n := range []int{1, 2, 16, 64, 256} {
		k := GenerateKernel(n, rand.New(rand.NewSource(int64(n))))
		require.Len(t, k, n)
		for i, s := range k {
			assert.GreaterOrEqual(t, s.Z, float32(0), "n=%d sample %d", n, i)
			assert.LessOrEqual(t, s.Length(), float32(1)+1e-6, "n=%d sample %d", n, i)
		}
	}
	assert.Empty(t, GenerateKernel(0, rand.New(rand.NewSource(1))))
	assert.Empty(t, GenerateKernel(-3, rand.New(rand.NewSource(1))))
}

func TestKernelDeterministic(t *testing.T) {
	a := GenerateKernel(64, rand.New(rand.NewSource(7)))
	b := GenerateKernel(64, rand.New(rand.NewSource(7)))
	c := GenerateKernel(64, rand.New(rand.NewSource(8)))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestKernelClustersTowardsOrigin(t *testing.T) {
	k := GenerateKernel(256, rand.New(rand.NewSource(3)))
	lengths := make([]float64, len(k))
	for i, s := range k {
		lengths[i] = float64(s.Length())
	}
	first := stat.Mean(lengths[:64], nil)
	last := stat.Mean(lengths[192:], nil)
	assert.Less(t, first, last)
	// The first samples are scaled by at most lerp(0.1, 1, 0.25^2).
	assert.LessOrEqual(t, floats.Max(lengths[:64]), 0.1+0.9*0.0625+1e-6)
}

func TestKernelPrefix(t *testing.T) {
	k := GenerateKernel(MaxKernelSize, rand.New(rand.NewSource(1)))
	assert.Equal(t, k[:16], k.Prefix(16))
	assert.Len(t, k.Prefix(1000), MaxKernelSize)
	assert.Empty(t, k.Prefix(-1))
	assert.Len(t, k.Prefix(16).Floats(), 48)
}

func TestNoiseTile(t *testing.T) {
	tile := GenerateNoiseTile(4, rand.New(rand.NewSource(1)))
	require.Equal(t, 4, tile.Size)
	require.Len(t, tile.Vectors, 16)
	for _, v := range tile.Vectors {
		assert.Equal(t, float32(0), v.Z)
		assert.True(t, v.X >= -1 && v.X <= 1)
		assert.True(t, v.Y >= -1 && v.Y <= 1)
	}
	assert.Equal(t, tile.At(1, 2), tile.At(5, 6))
	assert.Equal(t, tile.At(3, 3), tile.At(-1, -1))
	assert.Empty(t, GenerateNoiseTile(0, rand.New(rand.NewSource(1))).Vectors)
}

func TestParamsClamp(t *testing.T) {
	p := Params{Radius: 0, Bias: -1, KernelSize: 500, NoiseSize: 0}.Clamp()
	assert.Equal(t, float32(0.01), p.Radius)
	assert.Equal(t, float32(0), p.Bias)
	assert.Equal(t, MaxKernelSize, p.KernelSize)
	assert.Equal(t, 1, p.NoiseSize)

	assert.Equal(t, DefaultParams(), DefaultParams().Clamp())
}

func TestTBNOrthonormal(t *testing.T) {
	cases := []struct {
		name     string
		n, noise math.Vec3
	}{
		{"camera facing", math.Vec3{Z: 1}, math.Vec3{X: 0.3, Y: -0.8}},
		{"floor", math.Vec3{Y: 1}, math.Vec3{X: -0.5, Y: 0.5}},
		{"noise parallel to normal", math.Vec3{X: 1}, math.Vec3{X: 0.7}},
		{"zero noise", math.Vec3{Y: 1}, math.Vec3{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tan, bit := TBN(c.n, c.noise)
			assert.InDelta(t, 1, tan.Length(), 1e-5)
			assert.InDelta(t, 1, bit.Length(), 1e-5)
			assert.InDelta(t, 0, tan.Dot(c.n), 1e-5)
			assert.InDelta(t, 0, bit.Dot(c.n), 1e-5)
			assert.InDelta(t, 0, tan.Dot(bit), 1e-5)
		})
	}
}

func TestRangeWeight(t *testing.T) {
	assert.Equal(t, float32(1), RangeWeight(0.5, 0.2))
	assert.Equal(t, float32(1), RangeWeight(0.5, -0.5))
	assert.InDelta(t, 0.5, RangeWeight(0.5, 0.75), 1e-6)
	assert.Equal(t, float32(0), RangeWeight(0.5, 1.0))
	assert.Equal(t, float32(0), RangeWeight(0.5, 40))
}

func occlusionAt(p, n math.Vec3, scene SceneSampler, kernelSize int, radius float32) float32 {
	kernel := GenerateKernel(kernelSize, rand.New(rand.NewSource(11)))
	noise := GenerateNoiseTile(4, rand.New(rand.NewSource(12)))
	return Occlusion(OcclusionInput{
		Position:   p,
		Normal:     n,
		Noise:      noise.At(1, 2),
		Kernel:     kernel,
		Projection: testProjection(),
		Radius:     radius,
		Bias:       0.025,
		Scene:      scene,
	})
}

func TestFlatFacingPlaneIsUnoccluded(t *testing.T) {
	proj := testProjection()
	scene := rayScene{proj: proj, planes: []plane{{n: math.Vec3{Z: 1}, d: -3}}}

	for _, p := range []math.Vec3{{X: 0, Y: 0, Z: -3}, {X: 0.6, Y: -0.4, Z: -3}} {
		ao := occlusionAt(p, math.Vec3{Z: 1}, scene, 64, 0.5)
		assert.InDelta(t, 1.0, ao, 1e-6, "point %v", p)
	}
}

func TestCornerOccludesMoreThanOpenFloor(t *testing.T) {
	proj := testProjection()
	floor := plane{n: math.Vec3{Y: 1}, d: -1}
	wall := plane{n: math.Vec3{Z: 1}, d: -4}

	p := math.Vec3{X: 0, Y: -1, Z: -3.97}
	n := math.Vec3{Y: 1}

	open := occlusionAt(p, n, rayScene{proj: proj, planes: []plane{floor}}, 64, 0.5)
	corner := occlusionAt(p, n, rayScene{proj: proj, planes: []plane{floor, wall}}, 64, 0.5)

	assert.InDelta(t, 1.0, open, 1e-6)
	assert.Less(t, corner, open)
	assert.Less(t, corner, float32(0.95))
}

func TestDistantOccluderIsIgnored(t *testing.T) {
	proj := testProjection()
	// The stored geometry is 2 units in front of the shaded point everywhere:
	// every sample is behind it, but far outside the range check.
	scene := rayScene{proj: proj, planes: []plane{{n: math.Vec3{Z: 1}, d: -1}}}
	ao := occlusionAt(math.Vec3{Z: -3}, math.Vec3{Z: 1}, scene, 64, 0.5)
	assert.Equal(t, float32(1), ao)

	// The same occluder within range darkens the point.
	near := rayScene{proj: proj, planes: []plane{{n: math.Vec3{Z: 1}, d: -2.8}}}
	assert.Less(t, occlusionAt(math.Vec3{Z: -3}, math.Vec3{Z: 1}, near, 64, 0.5), float32(0.5))
}

func TestBackgroundSamplesDoNotOcclude(t *testing.T) {
	ao := occlusionAt(math.Vec3{Z: -3}, math.Vec3{Z: 1}, rayScene{proj: testProjection()}, 16, 0.5)
	assert.Equal(t, float32(1), ao)
}

func TestEmptyKernelIsUnoccluded(t *testing.T) {
	ao := Occlusion(OcclusionInput{Normal: math.Vec3{Z: 1}, Scene: rayScene{proj: testProjection()}})
	assert.Equal(t, float32(1), ao)
}

func shadeFixture() ShadeInput {
	return ShadeInput{
		Position:      math.Vec3{X: 0.5, Y: -1, Z: -4},
		Normal:        math.Vec3{Y: 1},
		Albedo:        math.Vec3{X: 0.95, Y: 0.95, Z: 0.95},
		Specular:      1,
		AO:            0.4,
		EnableSSAO:    true,
		LightPosition: math.Vec3{X: 2, Y: 4, Z: -7},
		LightColor:    math.Vec3{X: 0.2, Y: 0.2, Z: 0.7},
		Linear:        0.09,
		Quadratic:     0.032,
	}
}

func TestSSAOToggleOnlyAffectsAmbient(t *testing.T) {
	in := shadeFixture()
	on := Shade(in)
	in.EnableSSAO = false
	off := Shade(in)

	assert.Equal(t, on.Diffuse, off.Diffuse)
	assert.Equal(t, on.Specular, off.Specular)
	assert.Equal(t, on.Attenuation, off.Attenuation)

	assert.True(t, on.Ambient.ApproxEqual(in.Albedo.Mul(0.3*0.4), 1e-6))
	assert.True(t, off.Ambient.ApproxEqual(in.Albedo.Mul(0.3), 1e-6))
}

func TestShadeTerms(t *testing.T) {
	in := shadeFixture()
	in.Position = math.Vec3{Z: -2}
	in.Normal = math.Vec3{Z: 1}
	in.LightPosition = math.Vec3{}
	in.EnableSSAO = false

	r := Shade(in)
	// Light at the eye, normal facing it: N·L = N·H = 1, d = 2.
	wantAtt := 1 / (1 + 0.09*2 + 0.032*4)
	assert.InDelta(t, wantAtt, r.Attenuation, 1e-6)
	assert.True(t, r.Diffuse.ApproxEqual(in.Albedo.MulVec(in.LightColor), 1e-6))
	assert.True(t, r.Specular.ApproxEqual(in.LightColor, 1e-6))
	want := r.Ambient.Add(r.Diffuse.Add(r.Specular).Mul(r.Attenuation))
	assert.True(t, r.Color.ApproxEqual(want, 1e-6))

	// Facing away from the light leaves only ambient.
	in.Normal = math.Vec3{Z: -1}
	back := Shade(in)
	assert.True(t, back.Color.ApproxEqual(back.Ambient, 1e-6))
}

func BenchmarkOcclusion(b *testing.B) {
	proj := testProjection()
	scene := rayScene{proj: proj, planes: []plane{{n: math.Vec3{Y: 1}, d: -1}, {n: math.Vec3{Z: 1}, d: -4}}}
	in := OcclusionInput{
		Position:   math.Vec3{Y: -1, Z: -3.97},
		Normal:     math.Vec3{Y: 1},
		Noise:      math.Vec3{X: 0.3, Y: 0.7},
		Kernel:     GenerateKernel(64, rand.New(rand.NewSource(1))),
		Projection: proj,
		Radius:     0.5,
		Bias:       0.025,
		Scene:      scene,
	}
	for i := 0; i < b.N; i++ {
		_ = Occlusion(in)
	}
}
