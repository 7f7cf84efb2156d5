package scene

import (
	"math"

	reMath "render-demos/math"
)

// Camera is a yaw/pitch fly camera. It is a plain value: the render loop owns
// it and replaces it each frame with ApplyInput.
type Camera struct {
	Position reMath.Vec3
	WorldUp  reMath.Vec3

	// Angles in degrees. Yaw -90 looks down -Z.
	Yaw   float32
	Pitch float32

	FOV  float32 // vertical, degrees
	Near float32
	Far  float32

	Speed       float32 // units per second
	Sensitivity float32 // degrees per pixel
}

const (
	maxPitch = 89.0
	minFOV   = 1.0
	maxFOV   = 45.0
)

func DefaultCamera() Camera {
	return Camera{
		Position:    reMath.Vec3{X: 0, Y: 0, Z: 5},
		WorldUp:     reMath.Vec3Up,
		Yaw:         -90,
		Pitch:       0,
		FOV:         45,
		Near:        0.1,
		Far:         50,
		Speed:       2.5,
		Sensitivity: 0.1,
	}
}

func (c Camera) GetForward() reMath.Vec3 {
	yaw := float64(reMath.Radians(c.Yaw))
	pitch := float64(reMath.Radians(c.Pitch))
	return reMath.Vec3{
		X: float32(math.Cos(yaw) * math.Cos(pitch)),
		Y: float32(math.Sin(pitch)),
		Z: float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c Camera) GetRight() reMath.Vec3 {
	return c.GetForward().Cross(c.worldUp()).Normalize()
}

func (c Camera) GetUp() reMath.Vec3 {
	return c.GetRight().Cross(c.GetForward()).Normalize()
}

func (c Camera) GetViewMatrix() reMath.Mat4 {
	return reMath.Mat4LookAt(c.Position, c.Position.Add(c.GetForward()), c.GetUp())
}

func (c Camera) GetProjectionMatrix(aspect float32) reMath.Mat4 {
	return reMath.Mat4Perspective(reMath.Radians(c.FOV), aspect, c.Near, c.Far)
}

func (c Camera) worldUp() reMath.Vec3 {
	if c.WorldUp == reMath.Vec3Zero {
		return reMath.Vec3Up
	}
	return c.WorldUp
}
