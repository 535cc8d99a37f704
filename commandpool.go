package vkgrid

import (
	vk "github.com/vulkan-go/vulkan"
)

type CommandPool struct {
	Device        *Device
	QueueFamily   *QueueFamily
	VKCommandPool vk.CommandPool
}

func (c *CommandPool) Destroy() {
	c.Device.Driver.DestroyCommandPool(c.Device.VKDevice, c.VKCommandPool)
}

func (c *CommandPool) AllocateBuffers(count int) ([]*CommandBuffer, error) {

	var commandBufferAllocateInfo = vk.CommandBufferAllocateInfo{}
	commandBufferAllocateInfo.SType = vk.StructureTypeCommandBufferAllocateInfo
	commandBufferAllocateInfo.CommandPool = c.VKCommandPool
	commandBufferAllocateInfo.Level = vk.CommandBufferLevelPrimary
	commandBufferAllocateInfo.CommandBufferCount = uint32(count)

	cmdBuffers := make([]vk.CommandBuffer, count)

	err := resultError(c.Device.Driver.AllocateCommandBuffers(c.Device.VKDevice, &commandBufferAllocateInfo, cmdBuffers), "allocate command buffers")
	if err != nil {
		return nil, err
	}

	ret := make([]*CommandBuffer, count)
	for i := range ret {
		ret[i] = &CommandBuffer{Device: c.Device, VKCommandBuffer: cmdBuffers[i]}
	}

	return ret, nil

}

func (c *CommandPool) AllocateBuffer() (*CommandBuffer, error) {
	ret, err := c.AllocateBuffers(1)
	if err != nil {
		return nil, err
	}
	return ret[0], nil

}

func (c *CommandPool) FreeBuffer(b *CommandBuffer) {
	c.Device.Driver.FreeCommandBuffers(c.Device.VKDevice, c.VKCommandPool, []vk.CommandBuffer{b.VKCommandBuffer})
}

// CreateCommandPool creates a pool for queue family index whose buffers can be individually
// reset, which lets the frame command buffer be re-recorded every frame.
func (d *Device) CreateCommandPool(familyIndex int) (*CommandPool, error) {
	var commandPoolCreateInfo = vk.CommandPoolCreateInfo{}
	commandPoolCreateInfo.SType = vk.StructureTypeCommandPoolCreateInfo
	commandPoolCreateInfo.Flags = vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit)
	commandPoolCreateInfo.QueueFamilyIndex = uint32(familyIndex)

	var commandPool vk.CommandPool

	err := resultError(d.Driver.CreateCommandPool(d.VKDevice, &commandPoolCreateInfo, &commandPool), "create command pool")
	if err != nil {
		return nil, err
	}

	var ret CommandPool
	ret.Device = d
	ret.VKCommandPool = commandPool

	return &ret, nil

}
