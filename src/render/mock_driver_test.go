package render

import (
	"fmt"
	"io"
	"log/slog"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// mockDriver is a Driver that hands out fake handles and records what is
// done with them. GPU work only completes when a fence it signals is
// waited on, so any missing wait shows up as a violation.
type mockDriver struct {
	adapters         int
	surfaceSupported bool
	caps             SurfaceCapabilities
	presentModes     []vk.PresentMode
	imageCount       int
	memoryTypes      []vk.MemoryPropertyFlags
	memoryTypeBits   uint32

	// fail makes the named Driver method return the error.
	fail map[string]error
	// acquire is the image index sequence; past its end images cycle.
	acquire []uint32
	// acquireErrs and presentErrs are keyed by call number, from 0.
	acquireErrs map[int]error
	presentErrs map[int]error

	counts     map[string]int
	labels     map[unsafe.Pointer]string
	live       map[unsafe.Pointer]bool
	created    []string
	destroyed  []string
	calls      []string
	violations []string

	shadersCreated   int
	shadersDestroyed int
	liveShaders      int
	pipelineDescs    []PipelineDesc
	recordings       []DrawRecording
	uploads          [][]byte
	swapchainReqs    []SwapchainRequest

	fences      map[unsafe.Pointer]*mockFence
	cmdFence    map[unsafe.Pointer]unsafe.Pointer
	acquires    int
	presents    int
	waitsByName map[string]int
}

type mockFence struct {
	signaled bool
	pending  bool
}

var _ Driver = (*mockDriver)(nil)

func newMockDriver() *mockDriver {
	return &mockDriver{
		adapters:         1,
		surfaceSupported: true,
		caps: SurfaceCapabilities{
			MinImageCount: 2,
			MaxImageCount: 3,
			CurrentExtent: vk.Extent2D{Width: 640, Height: 480},
		},
		presentModes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate},
		imageCount:   2,
		memoryTypes: []vk.MemoryPropertyFlags{
			vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
		},
		memoryTypeBits: 0b11,
		fail:           map[string]error{},
		acquireErrs:    map[int]error{},
		presentErrs:    map[int]error{},
		counts:         map[string]int{},
		labels:         map[unsafe.Pointer]string{},
		live:           map[unsafe.Pointer]bool{},
		fences:         map[unsafe.Pointer]*mockFence{},
		cmdFence:       map[unsafe.Pointer]unsafe.Pointer{},
		waitsByName:    map[string]int{},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func handlePtr[T any](h T) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&h))
}

// newObject makes a unique handle labelled kind plus a per-kind counter.
// Tracked objects are part of the lifecycle log.
func newObject[T any](m *mockDriver, kind string, tracked bool) T {
	p := unsafe.Pointer(new(uint64))
	label := fmt.Sprintf("%s%d", kind, m.counts[kind])
	m.counts[kind]++
	m.labels[p] = label
	if tracked {
		m.live[p] = true
		m.created = append(m.created, label)
	}
	return *(*T)(unsafe.Pointer(&p))
}

func release[T any](m *mockDriver, h T) {
	p := handlePtr(h)
	label, ok := m.labels[p]
	if !ok || !m.live[p] {
		m.violate("destroy of unknown or released handle %q", label)
		return
	}
	delete(m.live, p)
	m.destroyed = append(m.destroyed, label)
}

func name[T any](m *mockDriver, h T) string {
	if label, ok := m.labels[handlePtr(h)]; ok {
		return label
	}
	return "nil"
}

func (m *mockDriver) violate(format string, args ...any) {
	m.violations = append(m.violations, fmt.Sprintf(format, args...))
}

func (m *mockDriver) call(format string, args ...any) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *mockDriver) err(method string) error {
	return m.fail[method]
}

// surfaceFactory creates tracked surfaces, standing in for the window.
func (m *mockDriver) surfaceFactory() SurfaceFactory {
	return func() (vk.Surface, error) {
		if err := m.err("CreateSurface"); err != nil {
			return vk.NullSurface, err
		}
		return newObject[vk.Surface](m, "surface", true), nil
	}
}

func (m *mockDriver) countCalls(prefix string) int {
	n := 0
	for _, c := range m.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (m *mockDriver) EnumerateAdapters() ([]vk.PhysicalDevice, error) {
	if err := m.err("EnumerateAdapters"); err != nil {
		return nil, err
	}
	adapters := make([]vk.PhysicalDevice, m.adapters)
	for i := range adapters {
		adapters[i] = newObject[vk.PhysicalDevice](m, "adapter", false)
	}
	return adapters, nil
}

func (m *mockDriver) CreateDevice(adapter vk.PhysicalDevice, queueFamily uint32) (vk.Device, error) {
	if err := m.err("CreateDevice"); err != nil {
		return nil, err
	}
	m.call("CreateDevice %s family=%d", name(m, adapter), queueFamily)
	return newObject[vk.Device](m, "device", true), nil
}

func (m *mockDriver) GetQueue(device vk.Device, queueFamily uint32) vk.Queue {
	return newObject[vk.Queue](m, "queue", false)
}

func (m *mockDriver) DeviceWaitIdle(device vk.Device) error {
	m.call("DeviceWaitIdle")
	for _, f := range m.fences {
		if f.pending {
			f.pending = false
			f.signaled = true
		}
	}
	return m.err("DeviceWaitIdle")
}

func (m *mockDriver) DestroyDevice(device vk.Device) { release(m, device) }

func (m *mockDriver) SurfaceSupport(adapter vk.PhysicalDevice, queueFamily uint32, surface vk.Surface) (bool, error) {
	return m.surfaceSupported, m.err("SurfaceSupport")
}

func (m *mockDriver) SurfaceCapabilities(adapter vk.PhysicalDevice, surface vk.Surface) (SurfaceCapabilities, error) {
	return m.caps, m.err("SurfaceCapabilities")
}

func (m *mockDriver) SurfacePresentModes(adapter vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	return m.presentModes, m.err("SurfacePresentModes")
}

func (m *mockDriver) DestroySurface(surface vk.Surface) { release(m, surface) }

func (m *mockDriver) CreateSwapchain(device vk.Device, req SwapchainRequest) (vk.Swapchain, error) {
	m.call("CreateSwapchain")
	m.swapchainReqs = append(m.swapchainReqs, req)
	if err := m.err("CreateSwapchain"); err != nil {
		return vk.NullSwapchain, err
	}
	return newObject[vk.Swapchain](m, "swapchain", true), nil
}

func (m *mockDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	if err := m.err("SwapchainImages"); err != nil {
		return nil, err
	}
	images := make([]vk.Image, m.imageCount)
	for i := range images {
		images[i] = newObject[vk.Image](m, "image", false)
	}
	return images, nil
}

func (m *mockDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) { release(m, swapchain) }

func (m *mockDriver) CreateImageView(device vk.Device, image vk.Image, format vk.Format) (vk.ImageView, error) {
	if err := m.err("CreateImageView"); err != nil {
		return vk.NullImageView, err
	}
	return newObject[vk.ImageView](m, "view", true), nil
}

func (m *mockDriver) DestroyImageView(device vk.Device, view vk.ImageView) { release(m, view) }

func (m *mockDriver) CreateRenderPass(device vk.Device, desc *PipelineDesc) (vk.RenderPass, error) {
	if err := m.err("CreateRenderPass"); err != nil {
		return nil, err
	}
	return newObject[vk.RenderPass](m, "renderpass", true), nil
}

func (m *mockDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	release(m, renderPass)
}

func (m *mockDriver) CreateShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error) {
	if err := m.err("CreateShaderModule"); err != nil {
		return nil, err
	}
	m.shadersCreated++
	m.liveShaders++
	return newObject[vk.ShaderModule](m, "shader", false), nil
}

func (m *mockDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	m.shadersDestroyed++
	m.liveShaders--
}

func (m *mockDriver) CreatePipelineLayout(device vk.Device) (vk.PipelineLayout, error) {
	if err := m.err("CreatePipelineLayout"); err != nil {
		return nil, err
	}
	return newObject[vk.PipelineLayout](m, "layout", true), nil
}

func (m *mockDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	release(m, layout)
}

func (m *mockDriver) CreateGraphicsPipeline(device vk.Device, desc *PipelineDesc, modules []vk.ShaderModule,
	layout vk.PipelineLayout, renderPass vk.RenderPass) (vk.Pipeline, error) {

	if m.liveShaders != len(modules) {
		m.violate("pipeline created with %d modules, %d live", len(modules), m.liveShaders)
	}
	m.pipelineDescs = append(m.pipelineDescs, *desc)
	if err := m.err("CreateGraphicsPipeline"); err != nil {
		return nil, err
	}
	return newObject[vk.Pipeline](m, "pipeline", true), nil
}

func (m *mockDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) { release(m, pipeline) }

func (m *mockDriver) CreateFramebuffer(device vk.Device, renderPass vk.RenderPass, view vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error) {
	if err := m.err("CreateFramebuffer"); err != nil {
		return nil, err
	}
	return newObject[vk.Framebuffer](m, "framebuffer", true), nil
}

func (m *mockDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	release(m, framebuffer)
}

func (m *mockDriver) CreateCommandPool(device vk.Device, queueFamily uint32) (vk.CommandPool, error) {
	if err := m.err("CreateCommandPool"); err != nil {
		return nil, err
	}
	return newObject[vk.CommandPool](m, "pool", true), nil
}

func (m *mockDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) { release(m, pool) }

func (m *mockDriver) AllocateCommandBuffers(device vk.Device, pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	if err := m.err("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	bufs := make([]vk.CommandBuffer, count)
	for i := range bufs {
		bufs[i] = newObject[vk.CommandBuffer](m, "cmd", true)
	}
	return bufs, nil
}

// FreeCommandBuffers frees the batch at once; it is logged last to first.
func (m *mockDriver) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	for i := len(buffers) - 1; i >= 0; i-- {
		release(m, buffers[i])
	}
}

func (m *mockDriver) RecordDraw(cmd vk.CommandBuffer, rec DrawRecording) error {
	m.recordings = append(m.recordings, rec)
	return m.err("RecordDraw")
}

func (m *mockDriver) CreateBuffer(device vk.Device, size vk.DeviceSize, usage vk.BufferUsageFlags) (vk.Buffer, error) {
	if err := m.err("CreateBuffer"); err != nil {
		return nil, err
	}
	return newObject[vk.Buffer](m, "buffer", true), nil
}

func (m *mockDriver) BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) (vk.DeviceSize, uint32) {
	return 256, m.memoryTypeBits
}

func (m *mockDriver) DestroyBuffer(device vk.Device, buffer vk.Buffer) { release(m, buffer) }

func (m *mockDriver) MemoryTypes(adapter vk.PhysicalDevice) []vk.MemoryPropertyFlags {
	return m.memoryTypes
}

func (m *mockDriver) AllocateMemory(device vk.Device, size vk.DeviceSize, typeIndex uint32) (vk.DeviceMemory, error) {
	if err := m.err("AllocateMemory"); err != nil {
		return nil, err
	}
	m.call("AllocateMemory size=%d type=%d", size, typeIndex)
	return newObject[vk.DeviceMemory](m, "memory", true), nil
}

func (m *mockDriver) BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory) error {
	return m.err("BindBufferMemory")
}

func (m *mockDriver) Upload(device vk.Device, memory vk.DeviceMemory, data []byte) error {
	m.uploads = append(m.uploads, append([]byte(nil), data...))
	return m.err("Upload")
}

func (m *mockDriver) FreeMemory(device vk.Device, memory vk.DeviceMemory) { release(m, memory) }

func (m *mockDriver) CreateSemaphore(device vk.Device) (vk.Semaphore, error) {
	if err := m.err("CreateSemaphore"); err != nil {
		return nil, err
	}
	return newObject[vk.Semaphore](m, "semaphore", true), nil
}

func (m *mockDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	release(m, semaphore)
}

func (m *mockDriver) CreateFence(device vk.Device, signaled bool) (vk.Fence, error) {
	if err := m.err("CreateFence"); err != nil {
		return nil, err
	}
	f := newObject[vk.Fence](m, "fence", true)
	m.fences[handlePtr(f)] = &mockFence{signaled: signaled}
	return f, nil
}

func (m *mockDriver) DestroyFence(device vk.Device, fence vk.Fence) {
	if f := m.fences[handlePtr(fence)]; f != nil && f.pending {
		m.violate("%s destroyed while pending", name(m, fence))
	}
	release(m, fence)
}

func (m *mockDriver) WaitFence(device vk.Device, fence vk.Fence, timeout uint64) error {
	label := name(m, fence)
	m.call("wait %s", label)
	m.waitsByName[label]++
	f := m.fences[handlePtr(fence)]
	switch {
	case f == nil:
		m.violate("wait on unknown fence")
	case f.pending:
		f.pending = false
		f.signaled = true
	case !f.signaled:
		m.violate("wait on %s that is neither signaled nor pending", label)
	}
	return m.err("WaitFence")
}

func (m *mockDriver) ResetFence(device vk.Device, fence vk.Fence) error {
	label := name(m, fence)
	m.call("reset %s", label)
	if f := m.fences[handlePtr(fence)]; f != nil {
		if f.pending {
			m.violate("reset of pending %s", label)
		}
		f.signaled = false
	}
	return m.err("ResetFence")
}

func (m *mockDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, signal vk.Semaphore) (uint32, error) {
	n := m.acquires
	m.acquires++
	if err := m.acquireErrs[n]; err != nil {
		m.call("acquire failed")
		return 0, err
	}
	idx := uint32(n % m.imageCount)
	if n < len(m.acquire) {
		idx = m.acquire[n]
	}
	m.call("acquire image%d signal=%s", idx, name(m, signal))
	return idx, nil
}

func (m *mockDriver) Submit(queue vk.Queue, req SubmitRequest) error {
	cmd, fence := handlePtr(req.CommandBuffer), handlePtr(req.Fence)
	m.call("submit %s fence=%s wait=%s signal=%s", name(m, req.CommandBuffer), name(m, req.Fence),
		name(m, req.WaitSemaphore), name(m, req.SignalSemaphore))
	if err := m.err("Submit"); err != nil {
		return err
	}
	if prev, ok := m.cmdFence[cmd]; ok {
		if f := m.fences[prev]; f != nil && f.pending {
			m.violate("%s resubmitted while %s is pending", name(m, req.CommandBuffer), m.labels[prev])
		}
	}
	f := m.fences[fence]
	switch {
	case f == nil:
		m.violate("submit without a fence")
	case f.signaled || f.pending:
		m.violate("submit with %s not reset", name(m, req.Fence))
	default:
		f.pending = true
	}
	m.cmdFence[cmd] = fence
	return nil
}

func (m *mockDriver) Present(queue vk.Queue, req PresentRequest) error {
	n := m.presents
	m.presents++
	m.call("present image%d wait=%s", req.ImageIndex, name(m, req.WaitSemaphore))
	return m.presentErrs[n]
}
