package vkgrid

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type VKPresentModes []vk.PresentMode

// Has reports whether mode is in the list.
func (v VKPresentModes) Has(mode vk.PresentMode) bool {
	for _, m := range v {
		if m == mode {
			return true
		}
	}
	return false
}

type VKSurfaceFormats []vk.SurfaceFormat

func (v VKSurfaceFormats) Filter(f func(f vk.SurfaceFormat) bool) VKSurfaceFormats {
	ret := make(VKSurfaceFormats, 0)
	for _, s := range v {
		s.Deref()
		if f(s) {
			ret = append(ret, s)
		}
	}
	return ret
}

type PhysicalDevice struct {
	DeviceName                 string
	VKPhysicalDevice           vk.PhysicalDevice
	VKPhysicalDeviceProperties vk.PhysicalDeviceProperties
}

func (p *PhysicalDevice) String() string {
	return p.DeviceName
}

// IsGPU reports whether the device is a discrete or integrated GPU, as opposed to a CPU or
// virtual implementation.
func (p *PhysicalDevice) IsGPU() bool {
	t := p.VKPhysicalDeviceProperties.DeviceType
	return t == vk.PhysicalDeviceTypeDiscreteGpu || t == vk.PhysicalDeviceTypeIntegratedGpu
}

// SelectPhysicalDevice returns the first discrete or integrated GPU in devices.
func SelectPhysicalDevice(devices []*PhysicalDevice) (*PhysicalDevice, error) {
	for _, d := range devices {
		if d.IsGPU() {
			return d, nil
		}
	}
	return nil, errors.Wrapf(ErrNoPhysicalDevice, "%d devices enumerated", len(devices))
}

func (p *PhysicalDevice) GetSurfacePresentModes(surface vk.Surface) (VKPresentModes, error) {
	var count uint32
	if err := resultError(vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, nil), "get present modes"); err != nil {
		return nil, err
	}
	modes := make([]vk.PresentMode, count)
	if err := resultError(vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, modes), "get present modes"); err != nil {
		return nil, err
	}
	return modes, nil
}

func (p *PhysicalDevice) GetSurfaceFormats(surface vk.Surface) (VKSurfaceFormats, error) {
	var count uint32
	if err := resultError(vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, nil), "get surface formats"); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := resultError(vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, formats), "get surface formats"); err != nil {
		return nil, err
	}
	return formats, nil
}

func (p *PhysicalDevice) GetSurfaceCapabilities(surface vk.Surface) (*vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := resultError(vk.GetPhysicalDeviceSurfaceCapabilities(p.VKPhysicalDevice, surface, &caps), "get surface capabilities"); err != nil {
		return nil, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return &caps, nil
}

func (p *PhysicalDevice) QueueFamilies() QueueFamilySlice {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &count, nil)
	if count == 0 {
		return nil
	}

	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &count, props)

	ret := make(QueueFamilySlice, count)
	for i, q := range props {
		ret[i] = &QueueFamily{Index: i, PhysicalDevice: p, VKQueueFamilyProperties: q}
		ret[i].VKQueueFamilyProperties.Deref()
	}
	return ret
}

// VKPhysicalDeviceMemoryProperties queries the memory heaps and types of the device. The
// result is dereferenced, ready to be used as a Device snapshot.
func (p *PhysicalDevice) VKPhysicalDeviceMemoryProperties() vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(p.VKPhysicalDevice, &props)
	props.Deref()
	for i := range props.MemoryTypes {
		props.MemoryTypes[i].Deref()
	}
	for i := range props.MemoryHeaps {
		props.MemoryHeaps[i].Deref()
	}
	return props
}

// CreateLogicalDevice creates a device with a single queue from the family qf and the given
// device extensions enabled. The returned Device issues its calls through VulkanDriver and
// carries a snapshot of the memory properties.
func (p *PhysicalDevice) CreateLogicalDevice(qf *QueueFamily, extensions ...string) (*Device, error) {
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: uint32(qf.Index),
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}

	names := safeStrings(extensions)
	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(names)),
		PpEnabledExtensionNames: names,
	}

	var device vk.Device
	if err := resultError(vk.CreateDevice(p.VKPhysicalDevice, &createInfo, nil, &device), "create device"); err != nil {
		return nil, err
	}

	d := NewDevice(VulkanDriver{}, device, p.VKPhysicalDeviceMemoryProperties())
	d.PhysicalDevice = p
	return d, nil
}
