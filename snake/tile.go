package snake

import (
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"

	"github.com/celer/vkgrid"
)

// Color is the fill color for a cell: blue snake, red apple, black otherwise.
func (c Cell) Color() lin.Vec3 {
	switch c {
	case Body:
		return lin.Vec3{0, 0, 1}
	case Apple:
		return lin.Vec3{1, 0, 0}
	}
	return lin.Vec3{0, 0, 0}
}

// VertexBuffer is GPU memory holding one tile's quad.
type VertexBuffer interface {
	VKBuffer() vk.Buffer
	Destroy()
}

// VertexUploader places a quad in GPU memory.
type VertexUploader func(quad vkgrid.VertexData) (VertexBuffer, error)

// HostVertices keeps quads in host visible memory.
func HostVertices(d *vkgrid.Device) VertexUploader {
	return func(quad vkgrid.VertexData) (VertexBuffer, error) {
		b, err := vkgrid.NewHostBuffer(d, quad, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), vkgrid.HostVisibleCoherent)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// DeviceLocalVertices copies quads into device local memory with one-shot commands from f.
// Tile quads never change after creation, so they can live where only the GPU reads them.
func DeviceLocalVertices(f *vkgrid.FrameController) VertexUploader {
	return func(quad vkgrid.VertexData) (VertexBuffer, error) {
		b, err := vkgrid.NewDeviceBuffer(f, quad, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// Tile is one square of the board on screen: a quad in its own vertex buffer and a color
// uniform published through its own descriptor set.
type Tile struct {
	Cell Cell

	vertices VertexBuffer
	uniform  *vkgrid.HostBuffer
	binding  *vkgrid.DescriptorBinding
	count    int
}

// NewTile places quad with upload, uploads an initial color for cell and builds the
// descriptor set that exposes the color to the fragment shader.
func NewTile(d *vkgrid.Device, layout *vkgrid.DescriptorSetLayout, upload VertexUploader, quad vkgrid.VertexData, cell Cell) (*Tile, error) {
	t := &Tile{Cell: cell, count: len(quad)}

	var err error
	if t.vertices, err = upload(quad); err != nil {
		return nil, err
	}

	t.uniform, err = vkgrid.NewHostBuffer(d, []vkgrid.ColorUBO{{Color: cell.Color()}},
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), vkgrid.HostVisibleCoherent)
	if err != nil {
		t.Destroy()
		return nil, err
	}

	t.binding, err = vkgrid.NewDescriptorBuilder().
		AddBinding(vkgrid.UniformBinding(vkgrid.UniformSlot, vk.ShaderStageFlags(vk.ShaderStageFragmentBit))).
		UniformBuffer(t.uniform).
		Build(d, layout)
	if err != nil {
		t.Destroy()
		return nil, err
	}

	return t, nil
}

// Draw writes the current cell color, publishes the set and records the bind and draw
// commands. Writing the uniform is safe because the frame controller has waited for the
// previous frame before recording begins.
func (t *Tile) Draw(cb *vkgrid.CommandBuffer, layout *vkgrid.PipelineLayout) error {
	if err := vkgrid.WriteHostBuffer(t.uniform, []vkgrid.ColorUBO{{Color: t.Cell.Color()}}); err != nil {
		return err
	}
	if err := t.binding.Publish(); err != nil {
		return err
	}
	cb.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, layout, 0, t.binding.VKDescriptorSet())
	cb.CmdBindVertexBuffers(t.vertices.VKBuffer())
	cb.CmdDraw(t.count, 1, 0, 0)
	return nil
}

// Destroy releases the descriptor set and both buffers.
func (t *Tile) Destroy() {
	if t.binding != nil {
		t.binding.Destroy()
		t.binding = nil
	}
	if t.uniform != nil {
		t.uniform.Destroy()
		t.uniform = nil
	}
	if t.vertices != nil {
		t.vertices.Destroy()
		t.vertices = nil
	}
}
