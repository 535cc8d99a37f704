package vkgrid

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Device is a logical device together with the driver used to issue calls against it and a
// snapshot of the memory properties of the physical device it was created from.
type Device struct {
	Driver           Driver
	PhysicalDevice   *PhysicalDevice
	VKDevice         vk.Device
	MemoryProperties vk.PhysicalDeviceMemoryProperties
}

// NewDevice wraps an existing logical device. The memory properties are copied and never
// re-queried.
func NewDevice(drv Driver, device vk.Device, memoryProperties vk.PhysicalDeviceMemoryProperties) *Device {
	if drv == nil {
		drv = VulkanDriver{}
	}
	return &Device{
		Driver:           drv,
		VKDevice:         device,
		MemoryProperties: memoryProperties,
	}
}

// Destroy destroys the logical device, every object created from it must already be gone.
func (d *Device) Destroy() {
	vk.DestroyDevice(d.VKDevice, nil)
}

func (d *Device) String() string {
	return fmt.Sprintf("{ PhysicalDevice: %s }", d.PhysicalDevice)
}

// WaitIdle blocks until all queues of the device are idle.
func (d *Device) WaitIdle() error {
	return resultError(d.Driver.DeviceWaitIdle(d.VKDevice), "device wait idle")
}

func (d *Device) GetQueue(qf *QueueFamily) *Queue {
	var vkq vk.Queue

	vk.GetDeviceQueue(d.VKDevice, uint32(qf.Index), 0, &vkq)

	var queue Queue
	queue.QueueFamily = qf
	queue.Device = d
	queue.VKQueue = vkq

	return &queue
}

// Allocate allocates device memory of the given size from the first memory type allowed by
// memoryTypeBits that has all of the requested property flags.
func (d *Device) Allocate(sizeInBytes uint64, memoryTypeBits uint32, memoryProperties vk.MemoryPropertyFlags) (*DeviceMemory, error) {
	index, err := FindMemoryType(d.MemoryProperties, memoryTypeBits, memoryProperties)
	if err != nil {
		return nil, err
	}

	var allocateInfo = vk.MemoryAllocateInfo{}
	allocateInfo.SType = vk.StructureTypeMemoryAllocateInfo
	allocateInfo.AllocationSize = vk.DeviceSize(sizeInBytes)
	allocateInfo.MemoryTypeIndex = index

	var deviceMemory vk.DeviceMemory

	err = resultError(d.Driver.AllocateMemory(d.VKDevice, &allocateInfo, &deviceMemory), "allocate memory")
	if err != nil {
		return nil, err
	}

	var ret DeviceMemory

	ret.Size = sizeInBytes
	ret.TypeIndex = index
	ret.Device = d
	ret.VKDeviceMemory = deviceMemory

	return &ret, nil
}

// AllocateForBuffer allocates memory sized and typed for the buffer's requirements.
func (d *Device) AllocateForBuffer(b *Buffer, memoryProperties vk.MemoryPropertyFlags) (*DeviceMemory, error) {
	req := b.VKMemoryRequirements()
	mem, err := d.Allocate(uint64(req.Size), req.MemoryTypeBits, memoryProperties)
	if err != nil {
		return nil, errors.Wrapf(err, "allocating %d bytes for buffer", req.Size)
	}
	return mem, nil
}
