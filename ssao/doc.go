// Package ssao holds the screen-space ambient occlusion maths shared by the
// render backends: the hemisphere sample kernel, the rotation noise tile, the
// per-pixel occlusion estimate and the composition lighting model.
//
// Everything here works in view space, where the camera looks down -Z and a
// larger z means closer to the camera.
package ssao
