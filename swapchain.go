package vkgrid

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

type Swapchain struct {
	Extent      vk.Extent2D
	Format      vk.Format
	Device      *Device
	VKSwapchain vk.Swapchain
}

func (s *Swapchain) Destroy() {
	vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
}

// GetImages returns the presentable images owned by the swapchain.
func (s *Swapchain) GetImages() ([]vk.Image, error) {
	var count uint32
	if err := resultError(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &count, nil), "get swapchain images"); err != nil {
		return nil, err
	}
	images := make([]vk.Image, count)
	if err := resultError(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &count, images), "get swapchain images"); err != nil {
		return nil, err
	}
	return images, nil
}

// ChooseSurfaceFormat prefers 8 bit BGRA sRGB with the sRGB non linear color space and falls
// back to the first reported format.
func ChooseSurfaceFormat(formats VKSurfaceFormats) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, ErrNoSurfaceFormat
	}
	preferred := formats.Filter(func(f vk.SurfaceFormat) bool {
		return f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear
	})
	if len(preferred) > 0 {
		return preferred[0], nil
	}
	f := formats[0]
	f.Deref()
	return f, nil
}

// ChoosePresentMode prefers immediate presentation, FIFO is always available.
func ChoosePresentMode(modes VKPresentModes) vk.PresentMode {
	if modes.Has(vk.PresentModeImmediate) {
		return vk.PresentModeImmediate
	}
	return vk.PresentModeFifo
}

// ChooseExtent uses the surface's current extent when it has one, otherwise the window size
// clamped to the surface limits.
func ChooseExtent(caps *vk.SurfaceCapabilities, window vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(window.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(window.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum, within the surface maximum.
// A maximum of zero means unbounded.
func ChooseImageCount(caps *vk.SurfaceCapabilities) uint32 {
	n := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CreateSwapchain creates a swapchain for surface sized to window. Resizing is not supported,
// the swapchain lives as long as the device.
func (d *Device) CreateSwapchain(surface vk.Surface, window vk.Extent2D) (*Swapchain, error) {
	modes, err := d.PhysicalDevice.GetSurfacePresentModes(surface)
	if err != nil {
		return nil, err
	}
	formats, err := d.PhysicalDevice.GetSurfaceFormats(surface)
	if err != nil {
		return nil, err
	}
	format, err := ChooseSurfaceFormat(formats)
	if err != nil {
		return nil, err
	}
	caps, err := d.PhysicalDevice.GetSurfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}

	extent := ChooseExtent(caps, window)
	presentMode := ChoosePresentMode(modes)
	imageCount := ChooseImageCount(caps)

	createInfo := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	var swapchain vk.Swapchain
	if err := resultError(vk.CreateSwapchain(d.VKDevice, createInfo, nil, &swapchain), "create swapchain"); err != nil {
		return nil, errors.WithDetailf(err, "extent %dx%d", extent.Width, extent.Height)
	}

	logger.WithFields(logrus.Fields{
		"width":       extent.Width,
		"height":      extent.Height,
		"images":      imageCount,
		"format":      format.Format,
		"presentMode": presentMode,
	}).Debug("swapchain created")

	return &Swapchain{
		Extent:      extent,
		Format:      format.Format,
		Device:      d,
		VKSwapchain: swapchain,
	}, nil
}
