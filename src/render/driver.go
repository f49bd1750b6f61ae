package render

import (
	vk "github.com/vulkan-go/vulkan"
)

// SurfaceCapabilities is the subset of the adapter's surface report the
// swapchain negotiation reads.
type SurfaceCapabilities struct {
	MinImageCount uint32
	MaxImageCount uint32
	CurrentExtent vk.Extent2D
}

// SwapchainRequest describes the swapchain to create.
type SwapchainRequest struct {
	Surface       vk.Surface
	MinImageCount uint32
	Format        vk.Format
	Extent        vk.Extent2D
	PresentMode   vk.PresentMode
	QueueFamily   uint32
}

// DrawRecording is everything a pre-recorded command buffer draws.
type DrawRecording struct {
	RenderPass   vk.RenderPass
	Framebuffer  vk.Framebuffer
	Extent       vk.Extent2D
	ClearColor   [4]float32
	Pipeline     vk.Pipeline
	VertexBuffer vk.Buffer
	VertexCount  uint32
}

// SubmitRequest is a single command buffer submission.
type SubmitRequest struct {
	WaitSemaphore   vk.Semaphore
	WaitStage       vk.PipelineStageFlags
	CommandBuffer   vk.CommandBuffer
	SignalSemaphore vk.Semaphore
	Fence           vk.Fence
}

// PresentRequest presents one swapchain image.
type PresentRequest struct {
	WaitSemaphore vk.Semaphore
	Swapchain     vk.Swapchain
	ImageIndex    uint32
}

// Driver is the boundary below the device bootstrap. Every call that the
// graphics API reports a result for returns an error; the rest are plain
// destroy/get calls that cannot fail.
type Driver interface {
	EnumerateAdapters() ([]vk.PhysicalDevice, error)
	CreateDevice(adapter vk.PhysicalDevice, queueFamily uint32) (vk.Device, error)
	GetQueue(device vk.Device, queueFamily uint32) vk.Queue
	DeviceWaitIdle(device vk.Device) error
	DestroyDevice(device vk.Device)

	SurfaceSupport(adapter vk.PhysicalDevice, queueFamily uint32, surface vk.Surface) (bool, error)
	SurfaceCapabilities(adapter vk.PhysicalDevice, surface vk.Surface) (SurfaceCapabilities, error)
	SurfacePresentModes(adapter vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error)
	DestroySurface(surface vk.Surface)

	CreateSwapchain(device vk.Device, req SwapchainRequest) (vk.Swapchain, error)
	SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error)
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)
	CreateImageView(device vk.Device, image vk.Image, format vk.Format) (vk.ImageView, error)
	DestroyImageView(device vk.Device, view vk.ImageView)

	CreateRenderPass(device vk.Device, desc *PipelineDesc) (vk.RenderPass, error)
	DestroyRenderPass(device vk.Device, renderPass vk.RenderPass)
	CreateShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error)
	DestroyShaderModule(device vk.Device, module vk.ShaderModule)
	CreatePipelineLayout(device vk.Device) (vk.PipelineLayout, error)
	DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout)
	CreateGraphicsPipeline(device vk.Device, desc *PipelineDesc, modules []vk.ShaderModule,
		layout vk.PipelineLayout, renderPass vk.RenderPass) (vk.Pipeline, error)
	DestroyPipeline(device vk.Device, pipeline vk.Pipeline)

	CreateFramebuffer(device vk.Device, renderPass vk.RenderPass, view vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error)
	DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer)
	CreateCommandPool(device vk.Device, queueFamily uint32) (vk.CommandPool, error)
	DestroyCommandPool(device vk.Device, pool vk.CommandPool)
	AllocateCommandBuffers(device vk.Device, pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error)
	FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer)
	RecordDraw(cmd vk.CommandBuffer, rec DrawRecording) error

	CreateBuffer(device vk.Device, size vk.DeviceSize, usage vk.BufferUsageFlags) (vk.Buffer, error)
	BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) (size vk.DeviceSize, typeBits uint32)
	DestroyBuffer(device vk.Device, buffer vk.Buffer)
	MemoryTypes(adapter vk.PhysicalDevice) []vk.MemoryPropertyFlags
	AllocateMemory(device vk.Device, size vk.DeviceSize, typeIndex uint32) (vk.DeviceMemory, error)
	BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory) error
	Upload(device vk.Device, memory vk.DeviceMemory, data []byte) error
	FreeMemory(device vk.Device, memory vk.DeviceMemory)

	CreateSemaphore(device vk.Device) (vk.Semaphore, error)
	DestroySemaphore(device vk.Device, semaphore vk.Semaphore)
	CreateFence(device vk.Device, signaled bool) (vk.Fence, error)
	DestroyFence(device vk.Device, fence vk.Fence)
	WaitFence(device vk.Device, fence vk.Fence, timeout uint64) error
	ResetFence(device vk.Device, fence vk.Fence) error

	AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, signal vk.Semaphore) (uint32, error)
	Submit(queue vk.Queue, req SubmitRequest) error
	Present(queue vk.Queue, req PresentRequest) error
}
