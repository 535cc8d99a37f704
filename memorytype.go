package vkgrid

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// FindMemoryType returns the lowest memory type index i such that bit i of typeFilter is set
// and the type's property flags contain every flag in required. The search depends only on
// its arguments, so the same inputs always produce the same index.
func FindMemoryType(props vk.PhysicalDeviceMemoryProperties, typeFilter uint32, required vk.MemoryPropertyFlags) (uint32, error) {
	count := props.MemoryTypeCount
	if count > uint32(len(props.MemoryTypes)) {
		count = uint32(len(props.MemoryTypes))
	}
	var i uint32
	for i = 0; i < count; i++ {
		mt := props.MemoryTypes[i]
		if typeFilter&(1<<i) != 0 && mt.PropertyFlags&required == required {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "filter %#x flags %#x", typeFilter, uint32(required))
}

// MemoryTypeSlice is a list of memory types as reported by a physical device.
type MemoryTypeSlice []vk.MemoryType

func (m MemoryTypeSlice) Filter(f func(properties vk.MemoryPropertyFlags) bool) MemoryTypeSlice {
	res := make(MemoryTypeSlice, 0)
	for i := 0; i < len(m); i++ {
		if f(m[i].PropertyFlags) {
			res = append(res, m[i])
		}
	}
	return res
}

func (m MemoryTypeSlice) NumHostVisible() int {
	return len(m.Filter(func(properties vk.MemoryPropertyFlags) bool {
		return properties&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0
	}))
}

func (m MemoryTypeSlice) NumHostVisibleAndCoherent() int {
	want := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	return len(m.Filter(func(properties vk.MemoryPropertyFlags) bool {
		return properties&want == want
	}))
}

// MemoryTypes lists the memory types held in props.
func MemoryTypes(props vk.PhysicalDeviceMemoryProperties) MemoryTypeSlice {
	ret := make(MemoryTypeSlice, 0, props.MemoryTypeCount)
	var i uint32
	for i = 0; i < props.MemoryTypeCount && i < uint32(len(props.MemoryTypes)); i++ {
		ret = append(ret, props.MemoryTypes[i])
	}
	return ret
}
