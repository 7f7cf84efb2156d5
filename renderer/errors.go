package renderer

import (
	"errors"
	"fmt"

	"render-demos/scene"
)

// ErrInitialization marks failures while bringing up the window, the GL
// context or a shader program. They are fatal.
var ErrInitialization = errors.New("initialization failed")

// IncompleteTargetError reports an offscreen target whose attachment
// combination was rejected. It is raised once, at creation, and never retried.
type IncompleteTargetError struct {
	Name   string // target name, e.g. "gbuffer"
	Status uint32 // framebuffer status code; 0 when raised by validation
	Reason string
}

func (e *IncompleteTargetError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("target %q incomplete (status 0x%X): %s", e.Name, e.Status, e.Reason)
	}
	return fmt.Sprintf("target %q incomplete: %s", e.Name, e.Reason)
}

// AssetLoadError is non-fatal: the caller substitutes a placeholder.
type AssetLoadError = scene.AssetLoadError
