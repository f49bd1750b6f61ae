package render

import (
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"

	"vktri/src/physics/geometry"
)

// ShaderEntryPoint is the entry point name of both shader stages.
const ShaderEntryPoint = "main"

// ShaderCode holds the two compiled shader binaries as opaque blobs.
type ShaderCode struct {
	Vertex   []byte
	Fragment []byte
}

type ShaderStage struct {
	Stage vk.ShaderStageFlagBits
	Entry string
	Code  []byte
}

// PipelineDesc is the complete, driver independent description of the
// render pass and graphics pipeline. Two descriptions built from the same
// inputs are equal.
type PipelineDesc struct {
	// render pass
	ColorFormat      vk.Format
	LoadOp           vk.AttachmentLoadOp
	StoreOp          vk.AttachmentStoreOp
	InitialLayout    vk.ImageLayout
	FinalLayout      vk.ImageLayout
	SubpassLayout    vk.ImageLayout
	DependencyStage  vk.PipelineStageFlagBits
	DependencyAccess vk.AccessFlagBits

	// pipeline
	Stages         []ShaderStage
	Bindings       []vk.VertexInputBindingDescription
	Attributes     []vk.VertexInputAttributeDescription
	Topology       vk.PrimitiveTopology
	PolygonMode    vk.PolygonMode
	CullMode       vk.CullModeFlagBits
	FrontFace      vk.FrontFace
	Samples        vk.SampleCountFlagBits
	BlendEnable    bool
	ColorWriteMask vk.ColorComponentFlagBits
	Viewport       vk.Viewport
	Scissor        vk.Rect2D
}

// DescribePipeline returns the fixed-function state for drawing the
// triangle into a swapchain of the given extent.
func DescribePipeline(extent vk.Extent2D, shaders ShaderCode) PipelineDesc {
	return PipelineDesc{
		ColorFormat:      SwapchainFormat,
		LoadOp:           vk.AttachmentLoadOpClear,
		StoreOp:          vk.AttachmentStoreOpStore,
		InitialLayout:    vk.ImageLayoutUndefined,
		FinalLayout:      vk.ImageLayoutPresentSrc,
		SubpassLayout:    vk.ImageLayoutColorAttachmentOptimal,
		DependencyStage:  vk.PipelineStageColorAttachmentOutputBit,
		DependencyAccess: vk.AccessColorAttachmentWriteBit,

		Stages: []ShaderStage{
			{Stage: vk.ShaderStageVertexBit, Entry: ShaderEntryPoint, Code: shaders.Vertex},
			{Stage: vk.ShaderStageFragmentBit, Entry: ShaderEntryPoint, Code: shaders.Fragment},
		},
		Bindings:    VertexBindings(),
		Attributes:  VertexAttributes(),
		Topology:    vk.PrimitiveTopologyTriangleList,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeBackBit,
		FrontFace:   vk.FrontFaceClockwise,
		Samples:     vk.SampleCount1Bit,
		BlendEnable: false,
		ColorWriteMask: vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit,
		Viewport: vk.Viewport{
			X:        0,
			Y:        0,
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		},
		Scissor: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
	}
}

// Culls reports whether the rasterizer state discards face.
func (d *PipelineDesc) Culls(face geometry.Face) bool {
	if d.CullMode&vk.CullModeBackBit == 0 {
		return false
	}
	front := geometry.IsClockwise(face)
	if d.FrontFace == vk.FrontFaceCounterClockwise {
		front = geometry.IsCounterClockwise(face)
	}
	return !front
}

// PipelineState owns the render pass, the pipeline layout and the graphics
// pipeline. It is immutable after creation.
type PipelineState struct {
	dc         *DeviceContext
	log        *slog.Logger
	desc       PipelineDesc
	renderPass vk.RenderPass
	layout     vk.PipelineLayout
	pipeline   vk.Pipeline
}

// NewPipelineState builds the render pass and graphics pipeline for sc.
// The shader modules live only as long as pipeline creation.
func NewPipelineState(dc *DeviceContext, sc *SwapchainState, shaders ShaderCode) (_ *PipelineState, err error) {
	drv := dc.drv
	ps := &PipelineState{dc: dc, log: dc.log, desc: DescribePipeline(sc.Extent(), shaders)}
	defer func() {
		if err != nil {
			ps.Destroy()
		}
	}()

	if ps.desc.Culls(TriangleFace(TriangleVertices())) {
		return nil, fmt.Errorf("triangle winding does not match the front face %d", ps.desc.FrontFace)
	}

	if ps.renderPass, err = drv.CreateRenderPass(dc.device, &ps.desc); err != nil {
		return nil, fmt.Errorf("create render pass: %w", err)
	}

	modules := make([]vk.ShaderModule, 0, len(ps.desc.Stages))
	defer func() {
		for _, m := range modules {
			drv.DestroyShaderModule(dc.device, m)
		}
	}()
	for _, stage := range ps.desc.Stages {
		m, err := drv.CreateShaderModule(dc.device, stage.Code)
		if err != nil {
			return nil, fmt.Errorf("create shader module for stage %d: %w", stage.Stage, err)
		}
		modules = append(modules, m)
	}

	if ps.layout, err = drv.CreatePipelineLayout(dc.device); err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	ps.pipeline, err = drv.CreateGraphicsPipeline(dc.device, &ps.desc, modules, ps.layout, ps.renderPass)
	if err != nil {
		return nil, fmt.Errorf("create graphics pipeline: %w", err)
	}
	ps.log.Info("pipeline created", "stages", len(modules))
	return ps, nil
}

func (ps *PipelineState) RenderPass() vk.RenderPass { return ps.renderPass }
func (ps *PipelineState) Pipeline() vk.Pipeline     { return ps.pipeline }

// Destroy releases the pipeline, its layout and the render pass.
func (ps *PipelineState) Destroy() {
	if ps == nil {
		return
	}
	drv, device := ps.dc.drv, ps.dc.device
	if ps.pipeline != nil {
		drv.DestroyPipeline(device, ps.pipeline)
		ps.pipeline = nil
	}
	if ps.layout != nil {
		drv.DestroyPipelineLayout(device, ps.layout)
		ps.layout = nil
	}
	if ps.renderPass != nil {
		drv.DestroyRenderPass(device, ps.renderPass)
		ps.renderPass = nil
	}
}
