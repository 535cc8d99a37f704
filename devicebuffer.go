package vkgrid

import (
	units "github.com/docker/go-units"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DeviceLocal is the memory property set used for buffers only the GPU reads.
const DeviceLocal = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

// DeviceBuffer is a buffer in device local memory. The CPU can't map it, so its contents are
// staged through a temporary host buffer and copied in with a one-shot command buffer.
// Like HostBuffer its size is fixed at creation.
type DeviceBuffer struct {
	buffer *Buffer
	memory *DeviceMemory
	size   uint64
	usage  vk.BufferUsageFlags
}

// NewDeviceBuffer creates a device local buffer holding the bytes of data and waits for the
// upload to finish.
func NewDeviceBuffer[T any](f *FrameController, data []T, usage vk.BufferUsageFlags) (*DeviceBuffer, error) {
	return f.CreateDeviceBuffer(SliceBytes(data), usage)
}

// CreateDeviceBuffer is the byte level form of NewDeviceBuffer. usage gains the transfer
// destination bit.
func (f *FrameController) CreateDeviceBuffer(data []byte, usage vk.BufferUsageFlags) (*DeviceBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyBuffer
	}
	size := uint64(len(data))
	usage |= vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)

	buffer, memory, err := f.Device.CreateAndBindBufferAndMemory(size, 0, usage, DeviceLocal, vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}
	b := &DeviceBuffer{
		buffer: buffer,
		memory: memory,
		size:   size,
		usage:  usage,
	}
	if err := b.stage(f, data); err != nil {
		b.Destroy()
		return nil, err
	}

	logger.WithField("size", units.BytesSize(float64(size))).
		WithField("memoryType", memory.TypeIndex).
		Debug("device buffer created")

	return b, nil
}

// Update replaces the contents of b with data, which must match the buffer's size. Work
// already submitted that reads b must have completed.
func (b *DeviceBuffer) Update(f *FrameController, data []byte) error {
	if b.buffer == nil {
		return ErrDestroyed
	}
	if uint64(len(data)) != b.size {
		return errors.Wrapf(ErrSizeMismatch, "got %d bytes, buffer holds %d", len(data), b.size)
	}
	return b.stage(f, data)
}

// stage copies data into a transfer source buffer and runs the copy to b synchronously, so
// the staging buffer can be released on return.
func (b *DeviceBuffer) stage(f *FrameController, data []byte) error {
	staging, err := f.Device.CreateHostBuffer(data, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), HostVisibleCoherent)
	if err != nil {
		return errors.Wrap(err, "staging buffer")
	}
	defer staging.Destroy()

	return f.RunTransient(func(cb *CommandBuffer) error {
		cb.CmdCopyBuffer(staging.VKBuffer(), b.buffer.VKBuffer, b.size)
		return nil
	})
}

// VKBuffer is the native buffer handle, valid until Destroy.
func (b *DeviceBuffer) VKBuffer() vk.Buffer {
	if b.buffer == nil {
		return vk.NullBuffer
	}
	return b.buffer.VKBuffer
}

func (b *DeviceBuffer) Size() uint64 {
	return b.size
}

func (b *DeviceBuffer) Usage() vk.BufferUsageFlags {
	return b.usage
}

// DSInfo describes the whole payload for a descriptor write.
func (b *DeviceBuffer) DSInfo() vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer(),
		Offset: 0,
		Range:  vk.DeviceSize(b.size),
	}
}

// Destroy releases the buffer and then its memory. Calling it again does nothing.
func (b *DeviceBuffer) Destroy() {
	if b.buffer != nil {
		b.buffer.Destroy()
		b.buffer = nil
	}
	if b.memory != nil {
		b.memory.Destroy()
		b.memory = nil
	}
}
