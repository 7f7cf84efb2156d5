package soft

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-demos/core"
	"render-demos/math"
	"render-demos/renderer"
	"render-demos/scene"
	"render-demos/ssao"
)

const (
	testW = 32
	testH = 24
)

func newBackend(t *testing.T, workers int) *Backend {
	t.Helper()
	b, err := New(testW, testH, Options{Workers: workers})
	require.NoError(t, err)
	return b
}

func render(t *testing.T, b *Backend, items []scene.DrawItem, view renderer.DebugView) {
	t.Helper()
	renderWith(t, b, items, view, ssao.DefaultParams())
}

func renderWith(t *testing.T, b *Backend, items []scene.DrawItem, view renderer.DebugView, params ssao.Params) {
	t.Helper()
	p, err := renderer.NewPipeline(b, renderer.Options{Seed: 1})
	require.NoError(t, err)
	err = p.RenderFrame(context.Background(), renderer.Frame{
		Items:  items,
		Camera: scene.DefaultCamera(),
		Light:  scene.DefaultPointLight(),
		Params: params,
		View:   view,
	})
	require.NoError(t, err)
}

// wall fills the whole view at z = 0, five units in front of the camera.
func wall() scene.DrawItem {
	return scene.DrawItem{Mesh: scene.CreateQuad(), Model: math.Mat4Scale(math.Vec3{X: 20, Y: 20, Z: 1})}
}

// floorItem is a large plane at y = -1 that also reaches behind the camera.
func floorItem() scene.DrawItem {
	n := math.Vec3{Y: 1}
	verts := []core.Vertex{
		{Position: math.Vec3{X: -50, Y: -1, Z: 50}, Normal: n},
		{Position: math.Vec3{X: 50, Y: -1, Z: 50}, Normal: n},
		{Position: math.Vec3{X: 50, Y: -1, Z: -50}, Normal: n},
		{Position: math.Vec3{X: -50, Y: -1, Z: -50}, Normal: n},
	}
	mesh := scene.CreateMeshFromData("floor", verts, []uint32{0, 1, 2, 2, 3, 0})
	return scene.DrawItem{Mesh: mesh, Model: math.Mat4Identity()}
}

func TestNewTargetRejectsInvalidSpec(t *testing.T) {
	_, err := NewTarget(renderer.GBufferSpec(0, 10, renderer.FormatRGBA16F))
	var ite *renderer.IncompleteTargetError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, renderer.TargetGBuffer, ite.Name)

	_, err = New(-1, 4, Options{})
	assert.True(t, errors.As(err, &ite))
}

func TestPlaneWrapModes(t *testing.T) {
	clampSpec := renderer.AttachmentSpec{Name: "a", Format: renderer.FormatR32F, Wrap: renderer.WrapClampToEdge}
	p := newPlane(3, 2, clampSpec)
	for i := range p.Data {
		p.Data[i] = float32(i)
	}
	assert.Equal(t, float32(0), p.FetchR(-5, -1))
	assert.Equal(t, float32(5), p.FetchR(7, 9))

	repeatSpec := clampSpec
	repeatSpec.Wrap = renderer.WrapRepeat
	r := newPlane(3, 2, repeatSpec)
	copy(r.Data, p.Data)
	assert.Equal(t, r.FetchR(2, 1), r.FetchR(-1, -1))
	assert.Equal(t, r.FetchR(0, 0), r.FetchR(3, 2))
}

func TestPlaneQuantizesRGBA8(t *testing.T) {
	p := newPlane(1, 1, renderer.AttachmentSpec{Name: "c", Format: renderer.FormatRGBA8})
	p.Store(0, 0, [4]float32{0.5, 2, -1, 1})
	got := p.Fetch(0, 0)
	assert.InDelta(t, 128.0/255, got[0], 1e-6)
	assert.Equal(t, float32(1), got[1])
	assert.Equal(t, float32(0), got[2])
}

func TestFacingWallIsUnoccluded(t *testing.T) {
	b := newBackend(t, 4)
	render(t, b, []scene.DrawItem{wall()}, renderer.ViewFinal)

	gb := b.Target(renderer.TargetGBuffer)
	for y := 0; y < testH; y++ {
		for x := 0; x < testW; x++ {
			p := gb.Fetch(renderer.AttachmentPosition, x, y)
			require.Equal(t, float32(1), p[3], "pixel %d,%d not covered", x, y)
			assert.InDelta(t, -5, p[2], 1e-3)

			n := gb.Fetch(renderer.AttachmentNormal, x, y)
			assert.InDelta(t, 1, n[2], 1e-4)

			raw, blurred := b.OcclusionAt(x, y)
			assert.Equal(t, float32(1), raw)
			assert.InDelta(t, 1, blurred, 1e-6)
		}
	}
}

// A lone plane cannot occlude itself, even at a small radius where
// samples sit within a bias of the surface.
func TestSmallRadiusPlaneIsUnoccluded(t *testing.T) {
	params := ssao.DefaultParams()
	params.Radius = 0.05
	params.KernelSize = 16

	facing := scene.DrawItem{Mesh: scene.CreateQuad(), Model: math.Mat4Scale(math.Vec3{X: 2, Y: 2, Z: 1})}
	tilted := scene.DrawItem{
		Mesh:  scene.CreateQuad(),
		Model: math.Mat4Scale(math.Vec3{X: 4, Y: 4, Z: 1}).Mul(math.Mat4RotationX(math.Radians(30))),
	}
	for name, item := range map[string]scene.DrawItem{"facing": facing, "tilted": tilted} {
		t.Run(name, func(t *testing.T) {
			b, err := New(320, 240, Options{Workers: 4})
			require.NoError(t, err)
			renderWith(t, b, []scene.DrawItem{item}, renderer.ViewOcclusion, params)

			gb := b.Target(renderer.TargetGBuffer)
			covered := 0
			for y := 0; y < 240; y++ {
				for x := 0; x < 320; x++ {
					raw, blurred := b.OcclusionAt(x, y)
					require.InDelta(t, 1, blurred, 1e-4, "blurred %d,%d", x, y)
					if gb.Fetch(renderer.AttachmentPosition, x, y)[3] == 0 {
						continue
					}
					covered++
					require.InDelta(t, 1, raw, 1e-4, "raw %d,%d", x, y)
				}
			}
			assert.Greater(t, covered, 1000)
		})
	}
}

func TestPositionsKeepFullPrecision(t *testing.T) {
	b := newBackend(t, 1)
	pos := b.Target(renderer.TargetGBuffer).Attachment(renderer.AttachmentPosition)
	assert.Equal(t, renderer.FormatRGBA32F, pos.Format)

	// Off the fp16 grid near 5: its spacing there is 1/256.
	wallAt := scene.DrawItem{
		Mesh:  scene.CreateQuad(),
		Model: math.Mat4Scale(math.Vec3{X: 20, Y: 20, Z: 1}).Mul(math.Mat4Translation(math.Vec3{Z: 0.001})),
	}
	render(t, b, []scene.DrawItem{wallAt}, renderer.ViewPosition)
	p := b.Target(renderer.TargetGBuffer).Fetch(renderer.AttachmentPosition, testW/2, testH/2)
	assert.InDelta(t, -4.999, p[2], 1e-4)
}

func TestComposeMatchesShade(t *testing.T) {
	b := newBackend(t, 2)
	render(t, b, []scene.DrawItem{wall()}, renderer.ViewFinal)

	cam := scene.DefaultCamera()
	light := scene.DefaultPointLight()
	gb := b.Target(renderer.TargetGBuffer)
	x, y := testW/2, testH/2

	ty := testH - 1 - y
	p := gb.Fetch(renderer.AttachmentPosition, x, ty)
	n := gb.Fetch(renderer.AttachmentNormal, x, ty)
	a := gb.Fetch(renderer.AttachmentAlbedo, x, ty)
	want := ssao.Shade(ssao.ShadeInput{
		Position:      vec3(p),
		Normal:        vec3(n).Normalize(),
		Albedo:        vec3(a),
		Specular:      a[3],
		AO:            1,
		EnableSSAO:    true,
		LightPosition: light.ViewSpace(cam.GetViewMatrix()),
		LightColor:    light.Color.RGB(),
		Linear:        light.Linear,
		Quadratic:     light.Quadratic,
	}).Color.Clamp01()

	got, ok := b.ReadPixel(x, y)
	require.True(t, ok)
	assert.InDelta(t, want.X*255, float32(got.R), 1)
	assert.InDelta(t, want.Y*255, float32(got.G), 1)
	assert.InDelta(t, want.Z*255, float32(got.B), 1)
	assert.Equal(t, uint8(255), got.A)

	_, ok = b.ReadPixel(testW, 0)
	assert.False(t, ok)
}

func TestEmptySceneIsBackground(t *testing.T) {
	b := newBackend(t, 1)
	render(t, b, nil, renderer.ViewFinal)

	img := b.Image()
	bg := uint8(ssao.BackgroundColor.X*255 + 0.5)
	for y := 0; y < testH; y++ {
		for x := 0; x < testW; x++ {
			c := img.RGBAAt(x, y)
			require.Equal(t, [3]uint8{bg, bg, bg}, [3]uint8{c.R, c.G, c.B})
		}
	}
}

func TestNearestSurfaceWins(t *testing.T) {
	near := scene.CreateQuad()
	near.Material = scene.NewMaterial("red", core.Color{R: 1, A: 1})
	far := scene.CreateQuad()
	far.Material = scene.NewMaterial("green", core.Color{G: 1, A: 1})

	nearItem := scene.DrawItem{Mesh: near, Model: math.Mat4Scale(math.Vec3{X: 2, Y: 2, Z: 1}).Mul(math.Mat4Translation(math.Vec3{Z: 2}))}
	farItem := scene.DrawItem{Mesh: far, Model: math.Mat4Scale(math.Vec3{X: 20, Y: 20, Z: 1})}

	for _, items := range [][]scene.DrawItem{{nearItem, farItem}, {farItem, nearItem}} {
		b := newBackend(t, 3)
		render(t, b, items, renderer.ViewAlbedo)

		gb := b.Target(renderer.TargetGBuffer)
		a := gb.Fetch(renderer.AttachmentAlbedo, testW/2, testH/2)
		assert.Equal(t, float32(1), a[0])
		assert.Equal(t, float32(0), a[1])
		assert.InDelta(t, -3, gb.Fetch(renderer.AttachmentPosition, testW/2, testH/2)[2], 1e-3)

		corner := gb.Fetch(renderer.AttachmentAlbedo, 0, 0)
		assert.Equal(t, float32(1), corner[1])
	}
}

func TestInvertNormals(t *testing.T) {
	item := wall()
	item.InvertNormals = true
	b := newBackend(t, 1)
	render(t, b, []scene.DrawItem{item}, renderer.ViewNormal)

	n := b.Target(renderer.TargetGBuffer).Fetch(renderer.AttachmentNormal, 3, 3)
	assert.InDelta(t, -1, n[2], 1e-4)
}

func TestFloorClippedAtNearPlane(t *testing.T) {
	b := newBackend(t, 4)
	render(t, b, []scene.DrawItem{floorItem()}, renderer.ViewFinal)

	gb := b.Target(renderer.TargetGBuffer)
	for x := 0; x < testW; x++ {
		p := gb.Fetch(renderer.AttachmentPosition, x, 0)
		require.Equal(t, float32(1), p[3])
		assert.InDelta(t, -1, p[1], 1e-3)
		assert.Less(t, p[2], float32(0))

		assert.Equal(t, float32(0), gb.Fetch(renderer.AttachmentPosition, x, testH-1)[3])
	}

	// Image rows run top-down: sky at the top, floor at the bottom.
	img := b.Image()
	bg := uint8(ssao.BackgroundColor.X*255 + 0.5)
	assert.Equal(t, bg, img.RGBAAt(testW/2, 0).R)
	assert.NotEqual(t, img.RGBAAt(testW/2, 0), img.RGBAAt(testW/2, testH-1))
}

func TestWorkerCountDoesNotChangeOutput(t *testing.T) {
	items := []scene.DrawItem{floorItem(), {Mesh: scene.CreateCube(1), Model: math.Mat4Translation(math.Vec3{Y: -0.5})}}

	one := newBackend(t, 1)
	render(t, one, items, renderer.ViewFinal)
	many := newBackend(t, 5)
	render(t, many, items, renderer.ViewFinal)

	assert.Equal(t, one.Image().Pix, many.Image().Pix)
}

func TestBlurIsClampedBoxMean(t *testing.T) {
	b := newBackend(t, 2)
	src := b.Target(renderer.TargetSSAO).Attachment(renderer.AttachmentOcclusion)
	for y := 0; y < testH; y++ {
		for x := 0; x < testW; x++ {
			src.Data[y*testW+x] = float32((x + y) % 2)
		}
	}

	const size = 4
	require.NoError(t, b.Blur(context.Background(), &renderer.FrameData{Params: ssao.Params{NoiseSize: size}}))

	value := func(x, y int) float32 {
		x = min(max(x, 0), testW-1)
		y = min(max(y, 0), testH-1)
		return float32((x + y) % 2)
	}
	for _, px := range [][2]int{{0, 0}, {1, 0}, {testW - 1, testH - 1}, {10, 7}, {0, 12}} {
		var sum float32
		for dy := -2; dy < 2; dy++ {
			for dx := -2; dx < 2; dx++ {
				sum += value(px[0]+dx, px[1]+dy)
			}
		}
		_, got := b.OcclusionAt(px[0], px[1])
		assert.InDelta(t, sum/16, got, 1e-6, "pixel %v", px)
	}

	_, interior := b.OcclusionAt(10, 7)
	assert.InDelta(t, 0.5, interior, 1e-6)
}

func TestCancelledContext(t *testing.T) {
	b := newBackend(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Geometry(ctx, &renderer.FrameData{View: math.Mat4Identity(), Projection: math.Mat4Identity()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResize(t *testing.T) {
	b := newBackend(t, 1)
	require.NoError(t, b.Resize(10, 6))
	w, h := b.Size()
	assert.Equal(t, 10, w)
	assert.Equal(t, 6, h)
	assert.Equal(t, 10, b.Target(renderer.TargetComposite).Width())

	assert.Error(t, b.Resize(0, 6))
	w, h = b.Size()
	assert.Equal(t, [2]int{10, 6}, [2]int{w, h})
	assert.Nil(t, b.Target("nope"))
}

func BenchmarkRenderFrame(b *testing.B) {
	be, err := New(320, 240, Options{})
	require.NoError(b, err)
	p, err := renderer.NewPipeline(be, renderer.Options{Seed: 1})
	require.NoError(b, err)
	f := renderer.Frame{
		Items:  []scene.DrawItem{floorItem(), {Mesh: scene.CreateCube(1), Model: math.Mat4Translation(math.Vec3{Y: -0.5})}},
		Camera: scene.DefaultCamera(),
		Light:  scene.DefaultPointLight(),
		Params: ssao.DefaultParams(),
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := p.RenderFrame(context.Background(), f); err != nil {
			b.Fatal(err)
		}
	}
}
