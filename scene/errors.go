package scene

import "fmt"

// AssetLoadError reports a mesh or texture that could not be loaded. Callers
// substitute a placeholder and keep running.
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load asset %q: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Err
}
