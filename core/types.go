package core

import (
	"render-demos/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite   = Color{1, 1, 1, 1}
	ColorBlack   = Color{0, 0, 0, 1}
	ColorMagenta = Color{1, 0, 1, 1}
)

// RGB drops alpha.
func (c Color) RGB() math.Vec3 {
	return math.Vec3{X: c.R, Y: c.G, Z: c.B}
}

// Vertex is the interleaved layout uploaded to the GPU: position, normal, uv.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

// GetMatrix returns scale, then rotation, then translation for row vectors.
func (t Transform) GetMatrix() math.Mat4 {
	scale := math.Mat4Scale(t.Scale)
	rotation := t.Rotation.ToMat4()
	translation := math.Mat4Translation(t.Position)
	return scale.Mul(rotation).Mul(translation)
}

// FrameInput is the input sampled once per frame. Camera movement is a pure
// function of it, so nothing outside the render loop keeps input state.
type FrameInput struct {
	Forward, Backward, Left, Right bool

	// Cursor movement since the previous frame, in pixels. Y grows downwards.
	MouseDX, MouseDY float32
	Scroll           float32

	// Dragging is true while the look button is held.
	Dragging bool
}
