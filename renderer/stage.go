package renderer

// Stage is one pass of the frame. Stages always run in the order of Stages.
type Stage int

const (
	StageGeometry Stage = iota
	StageSSAO
	StageBlur
	StageComposition
)

// Stages is the fixed per-frame execution order.
var Stages = [...]Stage{StageGeometry, StageSSAO, StageBlur, StageComposition}

func (s Stage) String() string {
	switch s {
	case StageGeometry:
		return "geometry"
	case StageSSAO:
		return "ssao"
	case StageBlur:
		return "blur"
	case StageComposition:
		return "composition"
	default:
		return "unknown"
	}
}

// DebugView selects what the composition stage puts on screen.
type DebugView int

const (
	ViewFinal DebugView = iota
	ViewPosition
	ViewNormal
	ViewAlbedo
	ViewOcclusion
	ViewBlurredOcclusion
)

// DebugViews lists every view in key order (1..6 in the interactive demo).
var DebugViews = [...]DebugView{ViewFinal, ViewPosition, ViewNormal, ViewAlbedo, ViewOcclusion, ViewBlurredOcclusion}

func (v DebugView) String() string {
	switch v {
	case ViewFinal:
		return "final"
	case ViewPosition:
		return "position"
	case ViewNormal:
		return "normal"
	case ViewAlbedo:
		return "albedo"
	case ViewOcclusion:
		return "occlusion"
	case ViewBlurredOcclusion:
		return "blurred-occlusion"
	default:
		return "unknown"
	}
}

// ParseDebugView accepts the names returned by String.
func ParseDebugView(s string) (DebugView, bool) {
	for _, v := range DebugViews {
		if v.String() == s {
			return v, true
		}
	}
	return ViewFinal, false
}
