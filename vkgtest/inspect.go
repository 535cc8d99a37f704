package vkgtest

import (
	vk "github.com/vulkan-go/vulkan"
)

// MemoryProperties builds device memory properties with one memory type per flag set, in
// order, all on heap 0.
func MemoryProperties(types ...vk.MemoryPropertyFlags) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	for i, t := range types {
		if i >= len(props.MemoryTypes) {
			break
		}
		props.MemoryTypes[i] = vk.MemoryType{PropertyFlags: t, HeapIndex: 0}
		props.MemoryTypeCount++
	}
	props.MemoryHeapCount = 1
	props.MemoryHeaps[0] = vk.MemoryHeap{Size: 256 << 20}
	return props
}

// DefaultMemoryProperties describes a typical discrete GPU: device local memory first, then
// host visible coherent memory, then host visible coherent cached memory.
func DefaultMemoryProperties() vk.PhysicalDeviceMemoryProperties {
	return MemoryProperties(
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit|vk.MemoryPropertyHostCachedBit),
	)
}

// Count returns how many times the named call was made.
func (d *Driver) Count(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// IndexOf returns the position in Calls of the nth (from 0) occurrence of name, or -1.
func (d *Driver) IndexOf(name string, nth int) int {
	for i, c := range d.Calls {
		if c == name {
			if nth == 0 {
				return i
			}
			nth--
		}
	}
	return -1
}

// ResetLog forgets all recorded calls, draws, submits, presents and writes. Object state is
// kept.
func (d *Driver) ResetLog() {
	d.Calls = nil
	d.Draws = nil
	d.Submits = nil
	d.Presents = nil
	d.Writes = nil
}

// Memory returns the backing bytes of an allocation, nil if it does not exist.
func (d *Driver) Memory(mem vk.DeviceMemory) []byte {
	if m, ok := d.memory[mem]; ok {
		return m.data
	}
	return nil
}

// BufferMemory returns the backing bytes of the allocation buffer is bound to.
func (d *Driver) BufferMemory(buffer vk.Buffer) []byte {
	b, ok := d.buffers[buffer]
	if !ok || b.memory == nil {
		return nil
	}
	return d.Memory(b.memory)
}

// BufferMemoryType returns the memory type index of the allocation buffer is bound to.
func (d *Driver) BufferMemoryType(buffer vk.Buffer) (uint32, bool) {
	b, ok := d.buffers[buffer]
	if !ok || b.memory == nil {
		return 0, false
	}
	m, ok := d.memory[b.memory]
	if !ok {
		return 0, false
	}
	return m.typeIndex, true
}

// BufferUsage returns the usage buffer was created with.
func (d *Driver) BufferUsage(buffer vk.Buffer) vk.BufferUsageFlags {
	if b, ok := d.buffers[buffer]; ok {
		return b.usage
	}
	return 0
}

// Mapped reports whether any allocation is currently mapped.
func (d *Driver) Mapped() bool {
	for _, m := range d.memory {
		if m.mapped {
			return true
		}
	}
	return false
}

// PoolSizes returns the sizes a descriptor pool was created with.
func (d *Driver) PoolSizes(pool vk.DescriptorPool) []vk.DescriptorPoolSize {
	if p, ok := d.pools[pool]; ok {
		return p.sizes
	}
	return nil
}

// PoolMaxSets returns the set capacity a descriptor pool was created with.
func (d *Driver) PoolMaxSets(pool vk.DescriptorPool) uint32 {
	if p, ok := d.pools[pool]; ok {
		return p.maxSets
	}
	return 0
}

// Binding returns what slot of set currently points at.
func (d *Driver) Binding(set vk.DescriptorSet, slot uint32) (vk.DescriptorBufferInfo, bool) {
	info, ok := d.bindings[set][slot]
	return info, ok
}

// FenceSignals returns how many times pending work has signaled fence.
func (d *Driver) FenceSignals(fence vk.Fence) int {
	if f, ok := d.fences[fence]; ok {
		return f.signals
	}
	return 0
}

// Outstanding is the number of submissions not yet completed.
func (d *Driver) Outstanding() int {
	return len(d.pending)
}

// CommandLog returns the commands recorded into cb since it was last begun.
func (d *Driver) CommandLog(cb vk.CommandBuffer) []string {
	if st, ok := d.cmdBuffers[cb]; ok {
		return st.commands
	}
	return nil
}

// CommandFlags returns the usage flags cb was last begun with.
func (d *Driver) CommandFlags(cb vk.CommandBuffer) vk.CommandBufferUsageFlags {
	if st, ok := d.cmdBuffers[cb]; ok {
		return st.flags
	}
	return 0
}

// Live is a count of objects that have been created and not destroyed.
type Live struct {
	Buffers        int
	Memory         int
	Fences         int
	Semaphores     int
	CommandBuffers int
	DescriptorPool int
	DescriptorSets int
}

func (d *Driver) Live() Live {
	return Live{
		Buffers:        len(d.buffers),
		Memory:         len(d.memory),
		Fences:         len(d.fences),
		Semaphores:     len(d.semaphores),
		CommandBuffers: len(d.cmdBuffers),
		DescriptorPool: len(d.pools),
		DescriptorSets: len(d.sets),
	}
}
