package math

import "math"

// Scalar helpers mirroring the GLSL built-ins used by the pass shaders, so the
// software backend evaluates the same formulas as the GPU.

func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Smoothstep is GLSL smoothstep: 0 below edge0, 1 above edge1, Hermite in between.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

func Abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func Pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

func Radians(deg float32) float32 {
	return deg * math.Pi / 180
}

func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
