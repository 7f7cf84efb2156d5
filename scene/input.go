package scene

import (
	"render-demos/core"
	reMath "render-demos/math"
)

// ApplyInput returns the camera after one frame of input. It does not touch
// cam, so the same input always produces the same camera.
func ApplyInput(cam Camera, in core.FrameInput, dt float32) Camera {
	step := cam.Speed * dt
	forward := cam.GetForward()
	right := cam.GetRight()

	if in.Forward {
		cam.Position = cam.Position.Add(forward.Mul(step))
	}
	if in.Backward {
		cam.Position = cam.Position.Sub(forward.Mul(step))
	}
	if in.Left {
		cam.Position = cam.Position.Sub(right.Mul(step))
	}
	if in.Right {
		cam.Position = cam.Position.Add(right.Mul(step))
	}

	if in.Dragging {
		cam.Yaw += in.MouseDX * cam.Sensitivity
		// Screen Y grows downwards; moving the mouse up looks up.
		cam.Pitch -= in.MouseDY * cam.Sensitivity
		cam.Pitch = reMath.Clamp(cam.Pitch, -maxPitch, maxPitch)
	}

	if in.Scroll != 0 {
		cam.FOV = reMath.Clamp(cam.FOV-in.Scroll, minFOV, maxFOV)
	}
	return cam
}
