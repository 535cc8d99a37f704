package vkgrid

import (
	vk "github.com/vulkan-go/vulkan"
)

// CommandBuffers describe a sequence of commands that will be executed
// upon being sent to a device queue. Only the commands needed to draw
// flat geometry and fill buffers are wrapped.
type CommandBuffer struct {
	Device          *Device
	VKCommandBuffer vk.CommandBuffer
}

// VK is a utility function for accessing the native vulkan command buffer
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

// Begin capturing work for this command buffer
func (c *CommandBuffer) Begin() error {
	var beginInfo = vk.CommandBufferBeginInfo{}
	beginInfo.SType = vk.StructureTypeCommandBufferBeginInfo
	beginInfo.Flags = 0
	return resultError(c.Device.Driver.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo), "begin command buffer")
}

// BeginOneTime begins capturing work for this command buffer, with the stipulation that it will only be submitted once
func (c *CommandBuffer) BeginOneTime() error {
	var beginInfo = vk.CommandBufferBeginInfo{}
	beginInfo.SType = vk.StructureTypeCommandBufferBeginInfo
	beginInfo.Flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	return resultError(c.Device.Driver.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo), "begin one time command buffer")
}

// End describing work for this command buffer
func (c *CommandBuffer) End() error {
	return resultError(c.Device.Driver.EndCommandBuffer(c.VKCommandBuffer), "end command buffer")
}

func (c *CommandBuffer) CmdBeginRenderPass(info *vk.RenderPassBeginInfo) {
	c.Device.Driver.CmdBeginRenderPass(c.VKCommandBuffer, info, vk.SubpassContentsInline)
}

func (c *CommandBuffer) CmdEndRenderPass() {
	c.Device.Driver.CmdEndRenderPass(c.VKCommandBuffer)
}

func (c *CommandBuffer) CmdBindGraphicsPipeline(p vk.Pipeline) {
	c.Device.Driver.CmdBindPipeline(c.VKCommandBuffer, vk.PipelineBindPointGraphics, p)
}

func (c *CommandBuffer) CmdSetViewport(viewport vk.Viewport) {
	c.Device.Driver.CmdSetViewport(c.VKCommandBuffer, 0, []vk.Viewport{viewport})
}

func (c *CommandBuffer) CmdSetScissor(scissor vk.Rect2D) {
	c.Device.Driver.CmdSetScissor(c.VKCommandBuffer, 0, []vk.Rect2D{scissor})
}

func (c *CommandBuffer) CmdBindDescriptorSets(bindPoint vk.PipelineBindPoint, layout *PipelineLayout, firstSet int, descriptorSets ...vk.DescriptorSet) {
	c.Device.Driver.CmdBindDescriptorSets(c.VKCommandBuffer, bindPoint, layout.VKPipelineLayout, uint32(firstSet), descriptorSets)
}

// CmdBindVertexBuffers binds buffers to consecutive bindings from 0, each at offset 0.
func (c *CommandBuffer) CmdBindVertexBuffers(buffers ...vk.Buffer) {
	offsets := make([]vk.DeviceSize, len(buffers))
	c.Device.Driver.CmdBindVertexBuffers(c.VKCommandBuffer, 0, buffers, offsets)
}

func (c *CommandBuffer) CmdDraw(vertexCount, instanceCount, firstVertex, firstInstance int) {
	c.Device.Driver.CmdDraw(c.VKCommandBuffer, uint32(vertexCount), uint32(instanceCount), uint32(firstVertex), uint32(firstInstance))
}

// CmdCopyBuffer copies size bytes from the start of src to the start of dst. It must be
// recorded outside a render pass.
func (c *CommandBuffer) CmdCopyBuffer(src, dst vk.Buffer, size uint64) {
	c.Device.Driver.CmdCopyBuffer(c.VKCommandBuffer, src, dst, []vk.BufferCopy{{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}})
}
