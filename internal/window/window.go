// Package window opens the GLFW window with its OpenGL context and turns
// its events into per-frame input. Only the interactive demo imports it.
package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"render-demos/core"
)

// GLFW and the GL context must stay on the main thread.
func init() {
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	lastX, lastY float64
	haveCursor   bool
	scroll       float64

	keyDown map[int]bool
	pressed map[int]bool
}

type Config struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	VSync     bool
}

// watchedKeys are edge-detected by PollInput.
var watchedKeys = []int{
	KeySpace, KeyEscape, KeyUp, KeyDown, KeyLeft, KeyRight,
	Key1, Key2, Key3, Key4, Key5, Key6, KeyF12,
}

// New opens a window with a current OpenGL 4.1 core context.
func New(config Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle:  handle,
		Width:   config.Width,
		Height:  config.Height,
		Title:   config.Title,
		keyDown: make(map[int]bool),
		pressed: make(map[int]bool),
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})
	handle.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		window.scroll += yoff
	})

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) Close() {
	w.Handle.SetShouldClose(true)
}

// PollInput pumps the event queue and samples the state the camera needs.
// Key presses are latched for Pressed until the next call.
func (w *Window) PollInput() core.FrameInput {
	glfw.PollEvents()

	in := core.FrameInput{
		Forward:  w.IsKeyPressed(KeyW),
		Backward: w.IsKeyPressed(KeyS),
		Left:     w.IsKeyPressed(KeyA),
		Right:    w.IsKeyPressed(KeyD),
		Dragging: w.IsMouseButtonPressed(int(glfw.MouseButtonLeft)),
		Scroll:   float32(w.scroll),
	}
	w.scroll = 0

	x, y := w.Handle.GetCursorPos()
	if w.haveCursor {
		in.MouseDX = float32(x - w.lastX)
		in.MouseDY = float32(y - w.lastY)
	}
	w.lastX, w.lastY = x, y
	w.haveCursor = true

	for _, k := range watchedKeys {
		down := w.IsKeyPressed(k)
		w.pressed[k] = down && !w.keyDown[k]
		w.keyDown[k] = down
	}
	return in
}

// Pressed reports whether key went down during the last PollInput.
func (w *Window) Pressed(key int) bool {
	return w.pressed[key]
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

// Time is seconds since GLFW initialisation.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) IsMouseButtonPressed(button int) bool {
	return w.Handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

// GetCursorPos returns the cursor in window coordinates, origin top-left.
func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

const (
	KeySpace  = int(glfw.KeySpace)
	Key1      = int(glfw.Key1)
	Key2      = int(glfw.Key2)
	Key3      = int(glfw.Key3)
	Key4      = int(glfw.Key4)
	Key5      = int(glfw.Key5)
	Key6      = int(glfw.Key6)
	KeyA      = int(glfw.KeyA)
	KeyD      = int(glfw.KeyD)
	KeyS      = int(glfw.KeyS)
	KeyW      = int(glfw.KeyW)
	KeyEscape = int(glfw.KeyEscape)
	KeyRight  = int(glfw.KeyRight)
	KeyLeft   = int(glfw.KeyLeft)
	KeyDown   = int(glfw.KeyDown)
	KeyUp     = int(glfw.KeyUp)
	KeyF12    = int(glfw.KeyF12)
)
