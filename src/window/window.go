// Package window owns the desktop window the renderer presents to. It wraps
// glfw and turns its callbacks into render.Event values.
package window

import (
	"fmt"
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"vktri/src/render"
)

const (
	DefaultTitle = "vulkan"

	// position of the window's top-left corner on screen
	posX = 200
	posY = 200

	eventBuffer = 16
)

func init() {
	// glfw must be driven from the main thread
	runtime.LockOSThread()
}

// Window is a fixed-size glfw window with no client API attached.
type Window struct {
	glw    *glfw.Window
	log    *slog.Logger
	events *eventQueue
}

var _ render.Platform = (*Window)(nil)

// New initializes glfw and opens a window of the given size. The window
// cannot be resized by the user.
func New(title string, width, height int, log *slog.Logger) (*Window, error) {
	if log == nil {
		log = slog.Default()
	}
	if title == "" {
		title = DefaultTitle
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: init glfw: %v", render.ErrWindowCreation, err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: no vulkan loader found", render.ErrWindowCreation)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.False)

	glw, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: %v", render.ErrWindowCreation, err)
	}
	glw.SetPos(posX, posY)

	w := &Window{
		glw:    glw,
		log:    log,
		events: newEventQueue(eventBuffer, log),
	}
	glw.SetRefreshCallback(func(*glfw.Window) {
		w.events.paint()
	})
	glw.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.events.resize(width, height)
	})
	glw.SetCloseCallback(func(*glfw.Window) {
		log.Info("window close requested")
	})
	log.Info("window created", "title", title, "width", width, "height", height)
	return w, nil
}

// ProcAddr is the loader entry point the Vulkan driver is initialized with.
func ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// RequiredExtensions lists the instance extensions needed to present to
// this window.
func (w *Window) RequiredExtensions() []string {
	return w.glw.GetRequiredInstanceExtensions()
}

// CreateSurface binds the window to a presentation surface of instance.
func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.glw.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, fmt.Errorf("create window surface: %w", err)
	}
	return vk.SurfaceFromPointer(ptr), nil
}

// Show makes the window visible. Startup keeps it hidden until the renderer
// is ready.
func (w *Window) Show() {
	w.glw.Show()
}

func (w *Window) Events() <-chan render.Event { return w.events.ch }

// Pump dispatches pending window messages and then requests a repaint, so
// the loop draws continuously while the window is open. A refresh during
// dispatch stands in for the repaint.
func (w *Window) Pump() {
	w.events.begin()
	glfw.PollEvents()
	w.events.finish(w.glw.ShouldClose())
}

// Destroy closes the window and shuts glfw down. Any surface created from
// the window must be destroyed first.
func (w *Window) Destroy() {
	if w.glw == nil {
		return
	}
	w.glw.Destroy()
	w.glw = nil
	glfw.Terminate()
	w.log.Info("window destroyed")
}
