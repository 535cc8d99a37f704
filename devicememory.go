package vkgrid

import (
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory maps to Vulkan DeviceMemory and can either be memory on the host or on the device
type DeviceMemory struct {
	Device         *Device
	VKDeviceMemory vk.DeviceMemory
	Size           uint64
	TypeIndex      uint32
	MapCount       int32
}

// IsMapped returns true if the device memory is currently mapped
func (d *DeviceMemory) IsMapped() bool {
	return atomic.LoadInt32(&d.MapCount) > 0
}

// Destroy frees this memory
func (d *DeviceMemory) Destroy() {
	d.Device.Driver.FreeMemory(d.Device.VKDevice, d.VKDeviceMemory)
}

// MapWithOffset will map size bytes of the memory starting at offset
func (d *DeviceMemory) MapWithOffset(size uint64, offset uint64) (unsafe.Pointer, error) {
	if offset+size > d.Size {
		return nil, errors.Newf("mapping %d bytes at %d exceeds allocation of %d", size, offset, d.Size)
	}
	var res unsafe.Pointer
	err := resultError(d.Device.Driver.MapMemory(d.Device.VKDevice, d.VKDeviceMemory, vk.DeviceSize(offset), vk.DeviceSize(size), &res), "map memory")
	if err != nil {
		return nil, err
	}
	atomic.AddInt32(&d.MapCount, 1)
	return res, nil
}

// MapWithSize will map this memory starting at offset 0 with a particular size
func (d *DeviceMemory) MapWithSize(size int) (unsafe.Pointer, error) {
	return d.MapWithOffset(uint64(size), 0)
}

// Unmap this memory
func (d *DeviceMemory) Unmap() {
	d.Device.Driver.UnmapMemory(d.Device.VKDevice, d.VKDeviceMemory)
	atomic.AddInt32(&d.MapCount, -1)
}

// MapCopyUnmap will map this memory, copy the specified data to it and unmap
func (d *DeviceMemory) MapCopyUnmap(data []byte) error {
	pm, err := d.MapWithSize(len(data))
	if err != nil {
		return err
	}
	copy(ToBytes(pm, len(data)), data)
	d.Unmap()
	return nil
}

// MapReadUnmap copies the first size bytes of this memory out to a new slice.
func (d *DeviceMemory) MapReadUnmap(size int) ([]byte, error) {
	pm, err := d.MapWithSize(size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, ToBytes(pm, size))
	d.Unmap()
	return out, nil
}
