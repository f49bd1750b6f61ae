package render

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

const (
	validationLayer          = "VK_LAYER_KHRONOS_validation"
	debugReportExtensionName = "VK_EXT_debug_report"
)

// VulkanConfig configures the instance created by NewVulkanDriver.
type VulkanConfig struct {
	AppName string
	// ProcAddr is the loader's vkGetInstanceProcAddr, usually obtained from
	// the window system.
	ProcAddr unsafe.Pointer
	// Extensions are the instance extensions the window system needs for
	// presentation.
	Extensions []string
	// Validation enables the validation layer and the debug report channel.
	// It only has an effect in builds with the debug tag.
	Validation bool
	// OnMessage receives validation and performance messages.
	OnMessage func(layer, message string)
	Logger    *slog.Logger
}

// VulkanDriver implements Driver on top of a Vulkan instance.
type VulkanDriver struct {
	instance vk.Instance
	debug    vk.DebugReportCallback
	log      *slog.Logger
	onMsg    func(layer, message string)
}

var _ Driver = (*VulkanDriver)(nil)

// NewVulkanDriver loads the Vulkan entry points and creates the instance.
func NewVulkanDriver(cfg VulkanConfig) (*VulkanDriver, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	d := &VulkanDriver{log: log, onMsg: cfg.OnMessage}
	if cfg.ProcAddr != nil {
		vk.SetGetInstanceProcAddr(cfg.ProcAddr)
	}
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("load vulkan: %w", err)
	}

	validation := cfg.Validation && debugBuild
	extensions := append([]string(nil), cfg.Extensions...)
	var layers []string
	if validation {
		extensions = append(extensions, debugReportExtensionName)
		layers = append(layers, validationLayer)
	}
	extensions = safeStrings(extensions)
	layers = safeStrings(layers)

	appName := cfg.AppName
	if appName == "" {
		appName = "vulkan"
	}
	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   safeString(appName),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PEngineName:        safeString("vktri"),
			EngineVersion:      vk.MakeVersion(1, 0, 0),
			ApiVersion:         vk.MakeVersion(1, 0, 0),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &instance)
	if err := NewError("vkCreateInstance", ret); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, fmt.Errorf("load instance functions: %w", err)
	}
	d.instance = instance

	if validation {
		var dbg vk.DebugReportCallback
		ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
			SType: vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit),
			PfnCallback: d.debugCallback,
		}, nil, &dbg)
		if err := NewError("vkCreateDebugReportCallbackEXT", ret); err != nil {
			// validation is optional; carry on without it
			log.Warn("debug report unavailable", "err", err)
		} else {
			d.debug = dbg
		}
	}
	log.Info("vulkan instance created", "extensions", len(extensions), "validation", validation)
	return d, nil
}

func (d *VulkanDriver) debugCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		d.log.Error("validation", "layer", pLayerPrefix, "code", messageCode, "msg", pMessage)
	default:
		d.log.Warn("validation", "layer", pLayerPrefix, "code", messageCode, "msg", pMessage)
	}
	if d.onMsg != nil {
		d.onMsg(pLayerPrefix, pMessage)
	}
	return vk.Bool32(vk.False)
}

// Close destroys the debug channel and the instance. Every surface and
// device must already be destroyed.
func (d *VulkanDriver) Close() {
	if d.instance == nil {
		return
	}
	if d.debug != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(d.instance, d.debug, nil)
		d.debug = vk.NullDebugReportCallback
	}
	vk.DestroyInstance(d.instance, nil)
	d.instance = nil
}

func (d *VulkanDriver) EnumerateAdapters() ([]vk.PhysicalDevice, error) {
	var count uint32
	if err := NewError("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(d.instance, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	adapters := make([]vk.PhysicalDevice, count)
	if err := NewError("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(d.instance, &count, adapters)); err != nil {
		return nil, err
	}
	return adapters[:count], nil
}

func (d *VulkanDriver) CreateDevice(adapter vk.PhysicalDevice, queueFamily uint32) (vk.Device, error) {
	extensions := safeStrings([]string{vk.KhrSwapchainExtensionName})
	var device vk.Device
	ret := vk.CreateDevice(adapter, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: queueFamily,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}, nil, &device)
	if err := NewError("vkCreateDevice", ret); err != nil {
		return nil, err
	}
	return device, nil
}

func (d *VulkanDriver) GetQueue(device vk.Device, queueFamily uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, queueFamily, 0, &queue)
	return queue
}

func (d *VulkanDriver) DeviceWaitIdle(device vk.Device) error {
	return NewError("vkDeviceWaitIdle", vk.DeviceWaitIdle(device))
}

func (d *VulkanDriver) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

func (d *VulkanDriver) SurfaceSupport(adapter vk.PhysicalDevice, queueFamily uint32, surface vk.Surface) (bool, error) {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(adapter, queueFamily, surface, &supported)
	if err := NewError("vkGetPhysicalDeviceSurfaceSupportKHR", ret); err != nil {
		return false, err
	}
	return supported == vk.True, nil
}

func (d *VulkanDriver) SurfaceCapabilities(adapter vk.PhysicalDevice, surface vk.Surface) (SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(adapter, surface, &caps)
	if err := NewError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", ret); err != nil {
		return SurfaceCapabilities{}, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	return SurfaceCapabilities{
		MinImageCount: caps.MinImageCount,
		MaxImageCount: caps.MaxImageCount,
		CurrentExtent: vk.Extent2D{
			Width:  caps.CurrentExtent.Width,
			Height: caps.CurrentExtent.Height,
		},
	}, nil
}

func (d *VulkanDriver) SurfacePresentModes(adapter vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfacePresentModes(adapter, surface, &count, nil)
	if err := NewError("vkGetPhysicalDeviceSurfacePresentModesKHR", ret); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	modes := make([]vk.PresentMode, count)
	ret = vk.GetPhysicalDeviceSurfacePresentModes(adapter, surface, &count, modes)
	if err := NewError("vkGetPhysicalDeviceSurfacePresentModesKHR", ret); err != nil {
		return nil, err
	}
	return modes[:count], nil
}

func (d *VulkanDriver) DestroySurface(surface vk.Surface) {
	vk.DestroySurface(d.instance, surface, nil)
}

func (d *VulkanDriver) CreateSwapchain(device vk.Device, req SwapchainRequest) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(device, &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               req.Surface,
		MinImageCount:         req.MinImageCount,
		ImageFormat:           req.Format,
		ImageColorSpace:       vk.ColorspaceSrgbNonlinear,
		ImageExtent:           req.Extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      vk.SharingModeExclusive,
		QueueFamilyIndexCount: 1,
		PQueueFamilyIndices:   []uint32{req.QueueFamily},
		PreTransform:          vk.SurfaceTransformIdentityBit,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           req.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          vk.NullSwapchain,
	}, nil, &swapchain)
	if err := NewError("vkCreateSwapchainKHR", ret); err != nil {
		return vk.NullSwapchain, err
	}
	return swapchain, nil
}

func (d *VulkanDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	var count uint32
	if err := NewError("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(device, swapchain, &count, nil)); err != nil {
		return nil, err
	}
	images := make([]vk.Image, count)
	if err := NewError("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(device, swapchain, &count, images)); err != nil {
		return nil, err
	}
	return images[:count], nil
}

func (d *VulkanDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

func (d *VulkanDriver) CreateImageView(device vk.Device, image vk.Image, format vk.Format) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}, nil, &view)
	if err := NewError("vkCreateImageView", ret); err != nil {
		return vk.NullImageView, err
	}
	return view, nil
}

func (d *VulkanDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

func (d *VulkanDriver) CreateRenderPass(device vk.Device, desc *PipelineDesc) (vk.RenderPass, error) {
	var renderPass vk.RenderPass
	ret := vk.CreateRenderPass(device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments: []vk.AttachmentDescription{{
			Format:         desc.ColorFormat,
			Samples:        desc.Samples,
			LoadOp:         desc.LoadOp,
			StoreOp:        desc.StoreOp,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  desc.InitialLayout,
			FinalLayout:    desc.FinalLayout,
		}},
		SubpassCount: 1,
		PSubpasses: []vk.SubpassDescription{{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: 1,
			PColorAttachments: []vk.AttachmentReference{{
				Attachment: 0,
				Layout:     desc.SubpassLayout,
			}},
		}},
		DependencyCount: 1,
		PDependencies: []vk.SubpassDependency{{
			SrcSubpass:    vk.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  vk.PipelineStageFlags(desc.DependencyStage),
			DstStageMask:  vk.PipelineStageFlags(desc.DependencyStage),
			DstAccessMask: vk.AccessFlags(desc.DependencyAccess),
		}},
	}, nil, &renderPass)
	if err := NewError("vkCreateRenderPass", ret); err != nil {
		return nil, err
	}
	return renderPass, nil
}

func (d *VulkanDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	vk.DestroyRenderPass(device, renderPass, nil)
}

func (d *VulkanDriver) CreateShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error) {
	words, err := shaderWords(code)
	if err != nil {
		return nil, err
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}, nil, &module)
	if err := NewError("vkCreateShaderModule", ret); err != nil {
		return nil, err
	}
	return module, nil
}

func (d *VulkanDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	vk.DestroyShaderModule(device, module, nil)
}

func (d *VulkanDriver) CreatePipelineLayout(device vk.Device) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         0,
		PushConstantRangeCount: 0,
	}, nil, &layout)
	if err := NewError("vkCreatePipelineLayout", ret); err != nil {
		return nil, err
	}
	return layout, nil
}

func (d *VulkanDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	vk.DestroyPipelineLayout(device, layout, nil)
}

func (d *VulkanDriver) CreateGraphicsPipeline(device vk.Device, desc *PipelineDesc, modules []vk.ShaderModule,
	layout vk.PipelineLayout, renderPass vk.RenderPass) (vk.Pipeline, error) {

	if len(modules) != len(desc.Stages) {
		return nil, fmt.Errorf("%d shader modules for %d stages", len(modules), len(desc.Stages))
	}
	stages := make([]vk.PipelineShaderStageCreateInfo, len(desc.Stages))
	for i, s := range desc.Stages {
		stages[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  s.Stage,
			Module: modules[i],
			PName:  safeString(s.Entry),
		}
	}
	blendEnable := vk.Bool32(vk.False)
	if desc.BlendEnable {
		blendEnable = vk.True
	}

	infos := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount:   uint32(len(desc.Bindings)),
			PVertexBindingDescriptions:      desc.Bindings,
			VertexAttributeDescriptionCount: uint32(len(desc.Attributes)),
			PVertexAttributeDescriptions:    desc.Attributes,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               desc.Topology,
			PrimitiveRestartEnable: vk.False,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			PViewports:    []vk.Viewport{desc.Viewport},
			ScissorCount:  1,
			PScissors:     []vk.Rect2D{desc.Scissor},
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vk.False,
			RasterizerDiscardEnable: vk.False,
			PolygonMode:             desc.PolygonMode,
			CullMode:                vk.CullModeFlags(desc.CullMode),
			FrontFace:               desc.FrontFace,
			DepthBiasEnable:         vk.False,
			LineWidth:               1,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: desc.Samples,
			SampleShadingEnable:  vk.False,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOpEnable:   vk.False,
			LogicOp:         vk.LogicOpCopy,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				BlendEnable:    blendEnable,
				ColorWriteMask: vk.ColorComponentFlags(desc.ColorWriteMask),
			}},
			BlendConstants: [4]float32{0, 0, 0, 0},
		},
		Layout:             layout,
		RenderPass:         renderPass,
		Subpass:            0,
		BasePipelineHandle: vk.Pipeline(vk.NullHandle),
		BasePipelineIndex:  -1,
	}}
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(device, vk.PipelineCache(vk.NullHandle), 1, infos, nil, pipelines)
	if err := NewError("vkCreateGraphicsPipelines", ret); err != nil {
		return nil, err
	}
	return pipelines[0], nil
}

func (d *VulkanDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	vk.DestroyPipeline(device, pipeline, nil)
}

func (d *VulkanDriver) CreateFramebuffer(device vk.Device, renderPass vk.RenderPass, view vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error) {
	var fb vk.Framebuffer
	ret := vk.CreateFramebuffer(device, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{view},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}, nil, &fb)
	if err := NewError("vkCreateFramebuffer", ret); err != nil {
		return nil, err
	}
	return fb, nil
}

func (d *VulkanDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(device, framebuffer, nil)
}

func (d *VulkanDriver) CreateCommandPool(device vk.Device, queueFamily uint32) (vk.CommandPool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: queueFamily,
	}, nil, &pool)
	if err := NewError("vkCreateCommandPool", ret); err != nil {
		return nil, err
	}
	return pool, nil
}

func (d *VulkanDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(device, pool, nil)
}

func (d *VulkanDriver) AllocateCommandBuffers(device vk.Device, pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}, buffers)
	if err := NewError("vkAllocateCommandBuffers", ret); err != nil {
		return nil, err
	}
	return buffers, nil
}

func (d *VulkanDriver) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	vk.FreeCommandBuffers(device, pool, uint32(len(buffers)), buffers)
}

func (d *VulkanDriver) RecordDraw(cmd vk.CommandBuffer, rec DrawRecording) error {
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	if err := NewError("vkBeginCommandBuffer", ret); err != nil {
		return err
	}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  rec.RenderPass,
		Framebuffer: rec.Framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: rec.Extent,
		},
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(rec.ClearColor[:])},
	}, vk.SubpassContentsInline)
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, rec.Pipeline)
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{rec.VertexBuffer}, []vk.DeviceSize{0})
	vk.CmdDraw(cmd, rec.VertexCount, 1, 0, 0)
	vk.CmdEndRenderPass(cmd)
	return NewError("vkEndCommandBuffer", vk.EndCommandBuffer(cmd))
}

func (d *VulkanDriver) CreateBuffer(device vk.Device, size vk.DeviceSize, usage vk.BufferUsageFlags) (vk.Buffer, error) {
	var buffer vk.Buffer
	ret := vk.CreateBuffer(device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buffer)
	if err := NewError("vkCreateBuffer", ret); err != nil {
		return nil, err
	}
	return buffer, nil
}

func (d *VulkanDriver) BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) (vk.DeviceSize, uint32) {
	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer, &req)
	req.Deref()
	return req.Size, req.MemoryTypeBits
}

func (d *VulkanDriver) DestroyBuffer(device vk.Device, buffer vk.Buffer) {
	vk.DestroyBuffer(device, buffer, nil)
}

func (d *VulkanDriver) MemoryTypes(adapter vk.PhysicalDevice) []vk.MemoryPropertyFlags {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(adapter, &props)
	props.Deref()
	types := make([]vk.MemoryPropertyFlags, 0, props.MemoryTypeCount)
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
		types = append(types, props.MemoryTypes[i].PropertyFlags)
	}
	return types
}

func (d *VulkanDriver) AllocateMemory(device vk.Device, size vk.DeviceSize, typeIndex uint32) (vk.DeviceMemory, error) {
	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  size,
		MemoryTypeIndex: typeIndex,
	}, nil, &memory)
	if err := NewError("vkAllocateMemory", ret); err != nil {
		return nil, err
	}
	return memory, nil
}

func (d *VulkanDriver) BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory) error {
	return NewError("vkBindBufferMemory", vk.BindBufferMemory(device, buffer, memory, 0))
}

func (d *VulkanDriver) Upload(device vk.Device, memory vk.DeviceMemory, data []byte) error {
	var ptr unsafe.Pointer
	ret := vk.MapMemory(device, memory, 0, vk.DeviceSize(len(data)), 0, &ptr)
	if err := NewError("vkMapMemory", ret); err != nil {
		return err
	}
	n := vk.Memcopy(ptr, data)
	vk.UnmapMemory(device, memory)
	if n != len(data) {
		return fmt.Errorf("copied %d of %d bytes into mapped memory", n, len(data))
	}
	return nil
}

func (d *VulkanDriver) FreeMemory(device vk.Device, memory vk.DeviceMemory) {
	vk.FreeMemory(device, memory, nil)
}

func (d *VulkanDriver) CreateSemaphore(device vk.Device) (vk.Semaphore, error) {
	var semaphore vk.Semaphore
	ret := vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &semaphore)
	if err := NewError("vkCreateSemaphore", ret); err != nil {
		return nil, err
	}
	return semaphore, nil
}

func (d *VulkanDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	vk.DestroySemaphore(device, semaphore, nil)
}

func (d *VulkanDriver) CreateFence(device vk.Device, signaled bool) (vk.Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	if err := NewError("vkCreateFence", vk.CreateFence(device, &info, nil, &fence)); err != nil {
		return nil, err
	}
	return fence, nil
}

func (d *VulkanDriver) DestroyFence(device vk.Device, fence vk.Fence) {
	vk.DestroyFence(device, fence, nil)
}

func (d *VulkanDriver) WaitFence(device vk.Device, fence vk.Fence, timeout uint64) error {
	ret := vk.WaitForFences(device, 1, []vk.Fence{fence}, vk.True, timeout)
	return NewError("vkWaitForFences", ret)
}

func (d *VulkanDriver) ResetFence(device vk.Device, fence vk.Fence) error {
	return NewError("vkResetFences", vk.ResetFences(device, 1, []vk.Fence{fence}))
}

func (d *VulkanDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, signal vk.Semaphore) (uint32, error) {
	var index uint32
	ret := vk.AcquireNextImage(device, swapchain, timeout, signal, vk.Fence(vk.NullHandle), &index)
	if ret == vk.Suboptimal {
		ret = vk.Success
	}
	if err := NewError("vkAcquireNextImageKHR", ret); err != nil {
		return 0, err
	}
	return index, nil
}

func (d *VulkanDriver) Submit(queue vk.Queue, req SubmitRequest) error {
	ret := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{req.WaitSemaphore},
		PWaitDstStageMask:    []vk.PipelineStageFlags{req.WaitStage},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{req.CommandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{req.SignalSemaphore},
	}}, req.Fence)
	return NewError("vkQueueSubmit", ret)
}

func (d *VulkanDriver) Present(queue vk.Queue, req PresentRequest) error {
	ret := vk.QueuePresent(queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{req.WaitSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{req.Swapchain},
		PImageIndices:      []uint32{req.ImageIndex},
	})
	if ret == vk.Suboptimal {
		ret = vk.Success
	}
	return NewError("vkQueuePresentKHR", ret)
}

// shaderWords repacks SPIR-V bytes into the 32-bit words the driver expects.
func shaderWords(code []byte) ([]uint32, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V size %d is not a positive multiple of 4", ErrShaderLoad, len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		b := code[i*4:]
		words[i] = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	}
	return words, nil
}

func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, safeString(s))
	}
	return out
}

var errNoInstance = errors.New("vulkan instance is closed")

// CreateSurface wraps a platform surface constructor with the driver's
// instance, for use as a SurfaceFactory.
func (d *VulkanDriver) CreateSurface(create func(vk.Instance) (vk.Surface, error)) SurfaceFactory {
	return func() (vk.Surface, error) {
		if d.instance == nil {
			return vk.NullSurface, errNoInstance
		}
		return create(d.instance)
	}
}
