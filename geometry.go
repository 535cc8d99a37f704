package vkgrid

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

// Vertex is a single 2D position in normalized device coordinates.
type Vertex struct {
	Pos lin.Vec2
}

type VertexData []Vertex

func (v VertexData) Bytes() []byte {
	return SliceBytes(v)
}

func (v VertexData) GetBindingDescription() vk.VertexInputBindingDescription {
	var bindingDescription = vk.VertexInputBindingDescription{}
	bindingDescription.Binding = 0
	bindingDescription.Stride = uint32(unsafe.Sizeof(Vertex{}))
	bindingDescription.InputRate = vk.VertexInputRateVertex
	return bindingDescription
}

func (v VertexData) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	attr := make([]vk.VertexInputAttributeDescription, 1)

	attr[0].Binding = 0
	attr[0].Location = 0
	attr[0].Format = vk.FormatR32g32Sfloat
	attr[0].Offset = 0

	return attr
}

// ColorUBO is the uniform block read by the fragment shader, a single RGB color.
type ColorUBO struct {
	Color lin.Vec3
}

func (u *ColorUBO) Bytes() []byte {
	return ValueBytes(u)
}

// ScreenTransform maps pixel coordinates onto normalized device coordinates for a screen of
// Width by Height pixels. Vulkan's clip space has +y at the bottom, so after the flip in ToNDC
// pixel (0, 0) is the bottom left corner and pixel y grows upward.
type ScreenTransform struct {
	Width  float32
	Height float32
}

// ToNDC converts a pixel position, pixel y 0 lands on +1.
func (s ScreenTransform) ToNDC(x, y float32) lin.Vec2 {
	return lin.Vec2{
		x*2/s.Width - 1,
		-(y*2/s.Height - 1),
	}
}

// Quad builds the six vertices of the axis aligned rectangle with pixel corners (x0, y0) and
// (x1, y1) as two triangles sharing the (x0, y0) to (x1, y1) diagonal. Both triangles wind
// clockwise in framebuffer space, which is the pipeline's front face.
func (s ScreenTransform) Quad(x0, y0, x1, y1 float32) VertexData {
	a := s.ToNDC(x0, y0)
	b := s.ToNDC(x0, y1)
	c := s.ToNDC(x1, y1)
	d := s.ToNDC(x1, y0)
	return VertexData{
		{Pos: a}, {Pos: b}, {Pos: c},
		{Pos: a}, {Pos: c}, {Pos: d},
	}
}
