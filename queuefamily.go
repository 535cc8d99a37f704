package vkgrid

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type QueueFamilySlice []*QueueFamily

func (ql QueueFamilySlice) Filter(f func(q *QueueFamily) bool) QueueFamilySlice {
	ret := make(QueueFamilySlice, 0)
	for _, q := range ql {
		if f(q) {
			ret = append(ret, q)
		}
	}
	return ret
}

// FilterGraphicsTransferAndPresent keeps the families that can record draws, copy buffers and
// present to surface, so one queue serves the whole frame.
func (ql QueueFamilySlice) FilterGraphicsTransferAndPresent(surface vk.Surface) QueueFamilySlice {
	return ql.Filter(func(q *QueueFamily) bool {
		return q.IsGraphics() && q.IsTransfer() && q.SupportsPresent(surface)
	})
}

// First returns the first family, or ErrNoQueueFamily when the slice is empty.
func (ql QueueFamilySlice) First() (*QueueFamily, error) {
	if len(ql) == 0 {
		return nil, ErrNoQueueFamily
	}
	return ql[0], nil
}

type QueueFamily struct {
	Index                   int
	PhysicalDevice          *PhysicalDevice
	VKQueueFamilyProperties vk.QueueFamilyProperties
}

func (q *QueueFamily) has(bit vk.QueueFlagBits) bool {
	return q.VKQueueFamilyProperties.QueueFlags&vk.QueueFlags(bit) == vk.QueueFlags(bit)
}

func (q *QueueFamily) IsGraphics() bool {
	return q.has(vk.QueueGraphicsBit)
}

// IsTransfer reports transfer support. Graphics families always support transfer even when
// they do not advertise the bit.
func (q *QueueFamily) IsTransfer() bool {
	return q.has(vk.QueueTransferBit) || q.IsGraphics()
}

func (q *QueueFamily) SupportsPresent(surface vk.Surface) bool {
	var supported vk.Bool32
	res := vk.GetPhysicalDeviceSurfaceSupport(q.PhysicalDevice.VKPhysicalDevice, uint32(q.Index), surface, &supported)
	if err := resultError(res, "get surface support"); err != nil {
		logger.WithError(errors.WithDetailf(err, "queue family %d", q.Index)).Warn("present support query failed")
		return false
	}
	return supported == vk.True
}

func (q *QueueFamily) String() string {
	return fmt.Sprintf("{ Index: %d Graphics: %v Transfer: %v }", q.Index, q.IsGraphics(), q.IsTransfer())
}
