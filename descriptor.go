package vkgrid

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// UniformSlot is the binding index Publish writes the uniform buffer to.
const UniformSlot = 0

// DescriptorBuilder collects the description of a single descriptor set backed by one
// uniform buffer. Nothing touches the device until Build.
type DescriptorBuilder struct {
	bindings []vk.DescriptorSetLayoutBinding
	uniform  vk.Buffer
	size     uint64
	hasUBO   bool
}

func NewDescriptorBuilder() *DescriptorBuilder {
	return &DescriptorBuilder{}
}

// AddBinding appends a layout binding, the pool is sized with one descriptor per binding.
func (b *DescriptorBuilder) AddBinding(binding vk.DescriptorSetLayoutBinding) *DescriptorBuilder {
	b.bindings = append(b.bindings, binding)
	return b
}

// Uniform sets the buffer published at UniformSlot and the byte range it covers.
func (b *DescriptorBuilder) Uniform(buffer vk.Buffer, size uint64) *DescriptorBuilder {
	b.uniform = buffer
	b.size = size
	b.hasUBO = true
	return b
}

// UniformBuffer is Uniform for a HostBuffer, covering its whole payload.
func (b *DescriptorBuilder) UniformBuffer(h *HostBuffer) *DescriptorBuilder {
	return b.Uniform(h.VKBuffer(), h.Size())
}

func (b *DescriptorBuilder) validate(d *Device, layout *DescriptorSetLayout) error {
	switch {
	case d == nil:
		return errors.Wrap(ErrIncompleteDescriptor, "no device")
	case layout == nil:
		return errors.Wrap(ErrIncompleteDescriptor, "no descriptor set layout")
	case len(b.bindings) == 0:
		return errors.Wrap(ErrIncompleteDescriptor, "no bindings")
	case !b.hasUBO:
		return errors.Wrap(ErrIncompleteDescriptor, "no uniform buffer")
	case b.uniform == vk.NullBuffer:
		return errors.Wrap(ErrIncompleteDescriptor, "uniform buffer is null")
	case b.size == 0:
		return errors.Wrap(ErrIncompleteDescriptor, "uniform range is zero")
	}
	return nil
}

// Build creates a pool able to hold exactly one set, allocates that set with layout and
// records the uniform buffer write. The write is not applied until Publish.
func (b *DescriptorBuilder) Build(d *Device, layout *DescriptorSetLayout) (*DescriptorBinding, error) {
	if err := b.validate(d, layout); err != nil {
		return nil, err
	}

	pool := d.NewDescriptorPool()
	for _, binding := range b.bindings {
		pool.AddPoolSize(binding.DescriptorType, 1)
	}

	pool, err := d.CreateDescriptorPool(pool, 1)
	if err != nil {
		return nil, err
	}

	set, err := pool.Allocate(layout)
	if err != nil {
		pool.Destroy()
		return nil, err
	}

	info := vk.DescriptorBufferInfo{
		Buffer: b.uniform,
		Offset: 0,
		Range:  vk.DeviceSize(b.size),
	}
	set.AddBuffer(UniformSlot, vk.DescriptorTypeUniformBuffer, info)

	return &DescriptorBinding{
		Pool:       pool,
		Set:        set,
		bufferInfo: info,
	}, nil
}

// DescriptorBinding is a descriptor set together with the pool it came from and the uniform
// buffer it points at. The pool and set live and die together.
type DescriptorBinding struct {
	Pool *DescriptorPool
	Set  *DescriptorSet

	bufferInfo vk.DescriptorBufferInfo
	destroyed  bool
}

// Publish points UniformSlot of the set at the uniform buffer. Repeating it leaves the set
// unchanged. It must not be called while a submitted command buffer using the set is still
// executing.
func (b *DescriptorBinding) Publish() error {
	if b.destroyed {
		return ErrDestroyed
	}
	b.Set.Write()
	return nil
}

// BufferInfo is the buffer, offset and range Publish writes.
func (b *DescriptorBinding) BufferInfo() vk.DescriptorBufferInfo {
	return b.bufferInfo
}

// VKDescriptorSet is the native handle for binding during command recording.
func (b *DescriptorBinding) VKDescriptorSet() vk.DescriptorSet {
	return b.Set.VKDescriptorSet
}

// Destroy destroys the pool, which frees the set. Calling it again does nothing.
func (b *DescriptorBinding) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.Pool.Destroy()
}
