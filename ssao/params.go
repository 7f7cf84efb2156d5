package ssao

// MaxKernelSize is the number of samples generated up front. Params.KernelSize
// selects a prefix of them.
const MaxKernelSize = 64

const (
	minRadius    = 0.01
	maxRadius    = 10
	maxNoiseSize = 16
)

// Params are the tunables of the SSAO and blur passes.
type Params struct {
	Radius     float32 // hemisphere radius in view-space units
	Bias       float32 // depth bias against self-occlusion acne
	KernelSize int     // samples taken per pixel
	NoiseSize  int     // noise tile edge length and blur window
	EnableSSAO bool    // false feeds ao = 1 into composition
}

func DefaultParams() Params {
	return Params{
		Radius:     0.5,
		Bias:       0.025,
		KernelSize: 16,
		NoiseSize:  4,
		EnableSSAO: true,
	}
}

// Clamp returns p with every field inside its usable range.
func (p Params) Clamp() Params {
	p.KernelSize = clampInt(p.KernelSize, 1, MaxKernelSize)
	p.NoiseSize = clampInt(p.NoiseSize, 1, maxNoiseSize)
	p.Radius = clamp(p.Radius, minRadius, maxRadius)
	p.Bias = clamp(p.Bias, 0, 1)
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp(v, lo, hi float32) float32 {
	if v != v {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
