package render

import (
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"
)

// Context is the renderer as seen by the application loop.
type Context interface {
	Device() *DeviceContext
	SwapchainDimensions() *SwapchainDimensions
	FrameIndex() int
	DrawFrame() error
	Destroy()
}

// Options configures NewContext.
type Options struct {
	Driver     Driver
	NewSurface SurfaceFactory
	Shaders    ShaderCode
	// Extent is used when the adapter leaves the swapchain size to the window.
	Extent     vk.Extent2D
	ClearColor [4]float32
	Logger     *slog.Logger
}

// context is the root of the ownership tree. Each member depends on the
// ones above it and is torn down before them.
type context struct {
	device    *DeviceContext
	swapchain *SwapchainState
	pipeline  *PipelineState
	frames    *FrameResources
	scheduler *FrameScheduler
	log       *slog.Logger
}

// NewContext runs the startup sequence: device, swapchain, pipeline, frame
// resources, scheduler. Any failure destroys what was built and is fatal
// to the caller.
func NewContext(opts Options) (_ Context, err error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Extent.Width == 0 || opts.Extent.Height == 0 {
		opts.Extent = vk.Extent2D{Width: DefaultWidth, Height: DefaultHeight}
	}
	c := &context{log: log}
	defer func() {
		if err != nil {
			c.Destroy()
		}
	}()

	if c.device, err = NewDeviceContext(opts.Driver, log); err != nil {
		return nil, fmt.Errorf("device bootstrap: %w", err)
	}
	if c.swapchain, err = NewSwapchainState(c.device, opts.NewSurface, opts.Extent); err != nil {
		return nil, fmt.Errorf("swapchain: %w", err)
	}
	if c.pipeline, err = NewPipelineState(c.device, c.swapchain, opts.Shaders); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if c.frames, err = NewFrameResources(c.device, c.swapchain, c.pipeline, opts.ClearColor); err != nil {
		return nil, fmt.Errorf("frame resources: %w", err)
	}
	if c.scheduler, err = NewFrameScheduler(c.device, c.swapchain, c.frames); err != nil {
		return nil, fmt.Errorf("frame scheduler: %w", err)
	}
	return c, nil
}

func (c *context) Device() *DeviceContext { return c.device }

func (c *context) SwapchainDimensions() *SwapchainDimensions {
	return c.swapchain.Dimensions()
}

func (c *context) FrameIndex() int { return c.scheduler.FrameIndex() }

func (c *context) DrawFrame() error { return c.scheduler.DrawFrame() }

// Destroy waits for the queue to drain and then releases every resource in
// reverse creation order. It is safe on a partially built context.
func (c *context) Destroy() {
	if c.device == nil {
		return
	}
	if err := c.device.WaitIdle(); err != nil {
		c.log.Error("wait for device idle", "err", err)
	}
	c.scheduler.Destroy()
	c.scheduler = nil
	c.frames.Destroy()
	c.frames = nil
	c.pipeline.Destroy()
	c.pipeline = nil
	c.swapchain.Destroy()
	c.swapchain = nil
	c.device.Destroy()
	c.device = nil
	c.log.Info("renderer destroyed")
}
