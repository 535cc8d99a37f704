package vkgrid

import (
	units "github.com/docker/go-units"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// HostVisibleCoherent is the memory property set used for buffers the CPU writes directly.
const HostVisibleCoherent = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

// HostBuffer is a buffer bound to its own dedicated allocation. The byte size is fixed at
// creation and every write must supply exactly that many bytes. The buffer and its memory
// are released together by Destroy.
type HostBuffer struct {
	buffer *Buffer
	memory *DeviceMemory
	size   uint64
	usage  vk.BufferUsageFlags
}

// NewHostBuffer creates a buffer holding the bytes of data, allocates memory with props for
// it, binds the two and copies the payload in.
func NewHostBuffer[T any](d *Device, data []T, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*HostBuffer, error) {
	return d.CreateHostBuffer(SliceBytes(data), usage, props)
}

// WriteHostBuffer replaces the contents of b with data, which must have the same byte size
// the buffer was created with.
func WriteHostBuffer[T any](b *HostBuffer, data []T) error {
	return b.Overwrite(SliceBytes(data))
}

// CreateHostBuffer is the byte level form of NewHostBuffer.
func (d *Device) CreateHostBuffer(data []byte, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*HostBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyBuffer
	}
	size := uint64(len(data))

	buffer, memory, err := d.CreateAndBindBufferAndMemory(size, 0, usage, props, vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	h := &HostBuffer{
		buffer: buffer,
		memory: memory,
		size:   size,
		usage:  usage,
	}

	if err := memory.MapCopyUnmap(data); err != nil {
		h.Destroy()
		return nil, err
	}

	logger.WithField("size", units.BytesSize(float64(size))).
		WithField("memoryType", memory.TypeIndex).
		Debug("host buffer created")

	return h, nil
}

// CreateAndBindBufferAndMemory creates a buffer, allocates memory for it and binds them.
// If any step fails everything created so far is released.
func (d *Device) CreateAndBindBufferAndMemory(size uint64, offset uint64, usage vk.BufferUsageFlags, mprops vk.MemoryPropertyFlags, sharing vk.SharingMode) (*Buffer, *DeviceMemory, error) {

	buffer, err := d.CreateBufferWithOptions(size, usage, sharing)
	if err != nil {
		return nil, nil, err
	}
	memory, err := d.AllocateForBuffer(buffer, mprops)
	if err != nil {
		buffer.Destroy()
		return nil, nil, err
	}
	if err := buffer.Bind(memory, offset); err != nil {
		buffer.Destroy()
		memory.Destroy()
		return nil, nil, err
	}
	return buffer, memory, nil
}

// Overwrite copies data over the whole buffer. A payload whose size differs from the
// buffer's is rejected with ErrSizeMismatch and nothing is written.
func (h *HostBuffer) Overwrite(data []byte) error {
	if h.buffer == nil {
		return ErrDestroyed
	}
	if uint64(len(data)) != h.size {
		return errors.Wrapf(ErrSizeMismatch, "got %d bytes, buffer holds %d", len(data), h.size)
	}
	return h.memory.MapCopyUnmap(data)
}

// Read returns a copy of the buffer's current contents.
func (h *HostBuffer) Read() ([]byte, error) {
	if h.buffer == nil {
		return nil, ErrDestroyed
	}
	return h.memory.MapReadUnmap(int(h.size))
}

// VKBuffer is the native buffer handle, valid until Destroy.
func (h *HostBuffer) VKBuffer() vk.Buffer {
	if h.buffer == nil {
		return vk.NullBuffer
	}
	return h.buffer.VKBuffer
}

// Size is the payload size in bytes.
func (h *HostBuffer) Size() uint64 {
	return h.size
}

// Usage is the usage the buffer was created with.
func (h *HostBuffer) Usage() vk.BufferUsageFlags {
	return h.usage
}

// DSInfo describes the whole payload for a descriptor write.
func (h *HostBuffer) DSInfo() vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: h.VKBuffer(),
		Offset: 0,
		Range:  vk.DeviceSize(h.size),
	}
}

// Destroy releases the buffer and then its memory. Calling it again does nothing.
func (h *HostBuffer) Destroy() {
	if h.buffer != nil {
		h.buffer.Destroy()
		h.buffer = nil
	}
	if h.memory != nil {
		h.memory.Destroy()
		h.memory = nil
	}
}
