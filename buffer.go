package vkgrid

import (
	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a Vulkan buffer object, it holds no memory until bound to a DeviceMemory.
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
}

func (d *Device) CreateBuffer(sizeInBytes uint64, usage vk.BufferUsageFlags) (*Buffer, error) {
	return d.CreateBufferWithOptions(sizeInBytes, usage, vk.SharingModeExclusive)
}

func (d *Device) CreateBufferWithOptions(sizeInBytes uint64, usage vk.BufferUsageFlags, sharing vk.SharingMode) (*Buffer, error) {

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       usage,
		SharingMode: sharing,
	}

	var buffer vk.Buffer
	err := resultError(d.Driver.CreateBuffer(d.VKDevice, &bufferCreateInfo, &buffer), "create buffer")
	if err != nil {
		return nil, err
	}

	var ret Buffer
	ret.VKBuffer = buffer
	ret.Device = d
	ret.Size = sizeInBytes

	return &ret, nil

}

func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var memoryRequirements vk.MemoryRequirements
	b.Device.Driver.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &memoryRequirements)
	return memoryRequirements
}

// DSInfo describes the whole buffer starting at offset for a descriptor write.
func (b *Buffer) DSInfo(offset uint64) vk.DescriptorBufferInfo {
	var descriptorBufferInfo = vk.DescriptorBufferInfo{}
	descriptorBufferInfo.Buffer = b.VKBuffer
	descriptorBufferInfo.Offset = vk.DeviceSize(offset)
	descriptorBufferInfo.Range = vk.DeviceSize(b.Size - offset)
	return descriptorBufferInfo
}

func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return resultError(b.Device.Driver.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset)), "bind buffer memory")
}

func (b *Buffer) Destroy() {
	b.Device.Driver.DestroyBuffer(b.Device.VKDevice, b.VKBuffer)
}
