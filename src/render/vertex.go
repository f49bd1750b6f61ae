package render

import (
	"encoding/binary"
	"math"

	vk "github.com/vulkan-go/vulkan"

	"vktri/src/physics/geometry"
)

// TriangleVertexCount is the vertex count of the one draw call.
const TriangleVertexCount = 3

// Vertex is one vertex of the static triangle. The GPU reads it as a
// tightly packed position followed by an RGBA color.
type Vertex struct {
	Pos   [3]float32
	Color [4]float32
}

const (
	vertexPosOffset   = 0
	vertexColorOffset = 3 * 4
	// VertexStride is the byte size of one encoded Vertex.
	VertexStride = vertexColorOffset + 4*4
)

// TriangleVertices returns the hardcoded triangle: red top, green bottom
// right, blue bottom left, clockwise on screen.
func TriangleVertices() [TriangleVertexCount]Vertex {
	return [TriangleVertexCount]Vertex{
		{Pos: [3]float32{0.0, -0.5, 0}, Color: [4]float32{1.0, 0.0, 0.0, 1}},
		{Pos: [3]float32{0.5, 0.5, 0}, Color: [4]float32{0.0, 1.0, 0.0, 1}},
		{Pos: [3]float32{-0.5, 0.5, 0}, Color: [4]float32{0.0, 0.0, 1.0, 1}},
	}
}

// TriangleFace returns the triangle's positions as a geometry face.
func TriangleFace(vs [TriangleVertexCount]Vertex) geometry.Face {
	p := func(v Vertex) geometry.Vector3 {
		return geometry.NewVector3(v.Pos[0], v.Pos[1], v.Pos[2])
	}
	return geometry.NewFace(p(vs[0]), p(vs[1]), p(vs[2]))
}

// EncodeVertices lays the vertices out in the byte format described by
// VertexBindings and VertexAttributes.
func EncodeVertices(vs []Vertex) []byte {
	buf := make([]byte, 0, len(vs)*VertexStride)
	for _, v := range vs {
		for _, f := range v.Pos {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
		for _, f := range v.Color {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}

// VertexBindings describes the single per-vertex buffer binding.
func VertexBindings() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    VertexStride,
		InputRate: vk.VertexInputRateVertex,
	}}
}

// VertexAttributes maps position to location 0 and color to location 1.
func VertexAttributes() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   vertexPosOffset,
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32a32Sfloat,
			Offset:   vertexColorOffset,
		},
	}
}
