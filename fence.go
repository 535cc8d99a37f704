package vkgrid

import (
	"time"

	vk "github.com/vulkan-go/vulkan"
)

type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

// CreateFence creates a fence, already signaled if requested.
func (d *Device) CreateFence(signaled bool) (*Fence, error) {
	var fence vk.Fence
	var fenceCreateInfo = vk.FenceCreateInfo{}
	fenceCreateInfo.SType = vk.StructureTypeFenceCreateInfo
	if signaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	err := resultError(d.Driver.CreateFence(d.VKDevice, &fenceCreateInfo, &fence), "create fence")
	if err != nil {
		return nil, err
	}

	var ret Fence
	ret.VKFence = fence
	ret.Device = d
	return &ret, nil
}

// WaitForFences blocks until the fences signal. A negative timeout waits forever.
func (d *Device) WaitForFences(waitForAll bool, ts time.Duration, fences ...*Fence) error {

	f := make([]vk.Fence, len(fences))
	for i := range fences {
		f[i] = fences[i].VKFence
	}

	var wait vk.Bool32
	if waitForAll {
		wait = vk.True
	} else {
		wait = vk.False
	}

	timeout := uint64(vk.MaxUint64)
	if ts >= 0 {
		timeout = uint64(ts.Nanoseconds())
	}

	return resultError(d.Driver.WaitForFences(d.VKDevice, f, wait, timeout), "wait for fences")
}

// Wait blocks until this fence signals.
func (f *Fence) Wait() error {
	return f.Device.WaitForFences(true, -1, f)
}

// Reset returns the fence to the unsignaled state.
func (f *Fence) Reset() error {
	return resultError(f.Device.Driver.ResetFences(f.Device.VKDevice, []vk.Fence{f.VKFence}), "reset fence")
}

func (f *Fence) Destroy() {
	f.Device.Driver.DestroyFence(f.Device.VKDevice, f.VKFence)
}
