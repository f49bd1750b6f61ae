package render

import (
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"
)

// DefaultClearColor is the color each frame is cleared to before drawing.
var DefaultClearColor = [4]float32{0, 1, 1, 1}

// FrameResources holds one framebuffer and one pre-recorded command buffer
// per swapchain image, plus the static vertex buffer they draw. Both arrays
// are indexed by swapchain image index.
type FrameResources struct {
	dc           *DeviceContext
	log          *slog.Logger
	vertices     *hostVisibleBuffer
	framebuffers []vk.Framebuffer
	pool         vk.CommandPool
	commands     []vk.CommandBuffer
}

// NewFrameResources uploads the triangle and records one command buffer
// per swapchain image. The recordings are never changed afterwards.
func NewFrameResources(dc *DeviceContext, sc *SwapchainState, ps *PipelineState, clearColor [4]float32) (_ *FrameResources, err error) {
	drv := dc.drv
	fr := &FrameResources{dc: dc, log: dc.log}
	defer func() {
		if err != nil {
			fr.Destroy()
		}
	}()

	tri := TriangleVertices()
	fr.vertices, err = newHostVisibleBuffer(dc, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), EncodeVertices(tri[:]))
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}

	fr.framebuffers = make([]vk.Framebuffer, 0, len(sc.Views()))
	for i, view := range sc.Views() {
		fb, err := drv.CreateFramebuffer(dc.device, ps.RenderPass(), view, sc.Extent())
		if err != nil {
			return nil, fmt.Errorf("create framebuffer %d: %w", i, err)
		}
		fr.framebuffers = append(fr.framebuffers, fb)
	}

	if fr.pool, err = drv.CreateCommandPool(dc.device, QueueFamily); err != nil {
		return nil, fmt.Errorf("create command pool: %w", err)
	}
	if fr.commands, err = drv.AllocateCommandBuffers(dc.device, fr.pool, uint32(len(fr.framebuffers))); err != nil {
		return nil, fmt.Errorf("allocate command buffers: %w", err)
	}
	for i, cmd := range fr.commands {
		err := drv.RecordDraw(cmd, DrawRecording{
			RenderPass:   ps.RenderPass(),
			Framebuffer:  fr.framebuffers[i],
			Extent:       sc.Extent(),
			ClearColor:   clearColor,
			Pipeline:     ps.Pipeline(),
			VertexBuffer: fr.vertices.buffer,
			VertexCount:  TriangleVertexCount,
		})
		if err != nil {
			return nil, fmt.Errorf("record command buffer %d: %w", i, err)
		}
	}
	fr.log.Info("frame resources recorded", "framebuffers", len(fr.framebuffers), "vertex_bytes", fr.vertices.size)
	return fr, nil
}

// CommandBuffer returns the recording for the given swapchain image.
func (fr *FrameResources) CommandBuffer(imageIndex uint32) vk.CommandBuffer {
	return fr.commands[imageIndex]
}

func (fr *FrameResources) Len() int { return len(fr.commands) }

// Destroy frees everything in reverse creation order.
func (fr *FrameResources) Destroy() {
	if fr == nil {
		return
	}
	drv, device := fr.dc.drv, fr.dc.device
	if len(fr.commands) > 0 {
		drv.FreeCommandBuffers(device, fr.pool, fr.commands)
		fr.commands = nil
	}
	if fr.pool != nil {
		drv.DestroyCommandPool(device, fr.pool)
		fr.pool = nil
	}
	for i := len(fr.framebuffers) - 1; i >= 0; i-- {
		drv.DestroyFramebuffer(device, fr.framebuffers[i])
	}
	fr.framebuffers = nil
	fr.vertices.destroy(fr.dc)
	fr.vertices = nil
}
