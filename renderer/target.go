package renderer

import "fmt"

// Format is the texel format of one attachment.
type Format int

const (
	FormatRGBA16F Format = iota
	FormatRGBA32F
	FormatRGBA8
	FormatR32F
	FormatR16F
)

func (f Format) String() string {
	switch f {
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatRGBA32F:
		return "RGBA32F"
	case FormatRGBA8:
		return "RGBA8"
	case FormatR32F:
		return "R32F"
	case FormatR16F:
		return "R16F"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Channels is 4 for RGBA formats and 1 for single-channel ones, 0 if unknown.
func (f Format) Channels() int {
	switch f {
	case FormatRGBA16F, FormatRGBA32F, FormatRGBA8:
		return 4
	case FormatR32F, FormatR16F:
		return 1
	default:
		return 0
	}
}

type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

type Wrap int

const (
	WrapClampToEdge Wrap = iota
	WrapRepeat
)

// AttachmentSpec describes one colour attachment of a target.
type AttachmentSpec struct {
	Name   string
	Format Format
	Filter Filter
	Wrap   Wrap
}

// TargetSpec describes an offscreen target. All attachments share its size.
type TargetSpec struct {
	Name        string
	Width       int
	Height      int
	Attachments []AttachmentSpec
	Depth       bool
}

// Attachment names used by the pipeline.
const (
	AttachmentPosition  = "position"
	AttachmentNormal    = "normal"
	AttachmentAlbedo    = "albedo"
	AttachmentOcclusion = "occlusion"
	AttachmentColor     = "color"
)

// Target names used by the pipeline.
const (
	TargetGBuffer   = "gbuffer"
	TargetSSAO      = "ssao"
	TargetSSAOBlur  = "ssao-blur"
	TargetComposite = "composite"
)

// Validate checks what any backend would reject. It returns an
// *IncompleteTargetError.
func (s TargetSpec) Validate() error {
	fail := func(format string, args ...any) error {
		return &IncompleteTargetError{Name: s.Name, Reason: fmt.Sprintf(format, args...)}
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fail("invalid size %dx%d", s.Width, s.Height)
	}
	if len(s.Attachments) == 0 {
		return fail("no colour attachments")
	}
	seen := make(map[string]bool, len(s.Attachments))
	for _, a := range s.Attachments {
		if a.Name == "" {
			return fail("unnamed attachment")
		}
		if seen[a.Name] {
			return fail("duplicate attachment %q", a.Name)
		}
		seen[a.Name] = true
		if a.Format.Channels() == 0 {
			return fail("attachment %q has unknown format %v", a.Name, a.Format)
		}
	}
	return nil
}

// PositionFormat keeps view-space positions at full float precision; the
// occlusion test compares depths a bias of a few hundredths apart.
const PositionFormat = FormatRGBA32F

// GBufferSpec is the geometry pass target: view-space position with a
// coverage flag in w, view-space normal, and albedo with specular in alpha.
func GBufferSpec(width, height int, positionFormat Format) TargetSpec {
	return TargetSpec{
		Name:   TargetGBuffer,
		Width:  width,
		Height: height,
		Attachments: []AttachmentSpec{
			{Name: AttachmentPosition, Format: positionFormat, Filter: FilterNearest, Wrap: WrapClampToEdge},
			{Name: AttachmentNormal, Format: FormatRGBA16F, Filter: FilterNearest, Wrap: WrapClampToEdge},
			{Name: AttachmentAlbedo, Format: FormatRGBA8, Filter: FilterNearest, Wrap: WrapClampToEdge},
		},
		Depth: true,
	}
}

// OcclusionSpec is a single-channel target for the raw or blurred occlusion.
func OcclusionSpec(name string, width, height int, format Format) TargetSpec {
	return TargetSpec{
		Name:   name,
		Width:  width,
		Height: height,
		Attachments: []AttachmentSpec{
			{Name: AttachmentOcclusion, Format: format, Filter: FilterNearest, Wrap: WrapClampToEdge},
		},
	}
}

// CompositeSpec is the final 8-bit image the composition pass writes when a
// backend renders offscreen instead of to the window.
func CompositeSpec(width, height int) TargetSpec {
	return TargetSpec{
		Name:   TargetComposite,
		Width:  width,
		Height: height,
		Attachments: []AttachmentSpec{
			{Name: AttachmentColor, Format: FormatRGBA8, Filter: FilterNearest, Wrap: WrapClampToEdge},
		},
	}
}
