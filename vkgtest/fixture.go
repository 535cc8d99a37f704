package vkgtest

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/celer/vkgrid"
)

// Fixture is a device backed by a recording Driver, with the objects a frame needs already
// created against it.
type Fixture struct {
	Driver         *Driver
	Device         *vkgrid.Device
	Pool           *vkgrid.CommandPool
	Layout         *vkgrid.DescriptorSetLayout
	PipelineLayout *vkgrid.PipelineLayout
	Target         *vkgrid.RenderTarget
}

// NewFixture creates a device with DefaultMemoryProperties, a command pool, a descriptor set
// layout with a fragment stage uniform at binding 0, and an 800 by 800 render target with
// one framebuffer per swapchain image.
func NewFixture() (*Fixture, error) {
	drv := NewDriver()
	dev := vkgrid.NewDevice(drv, Handle[vk.Device](), DefaultMemoryProperties())

	pool, err := dev.CreateCommandPool(0)
	if err != nil {
		return nil, err
	}

	layout := dev.NewDescriptorSetLayout()
	layout.AddBinding(vkgrid.UniformBinding(0, vk.ShaderStageFlags(vk.ShaderStageFragmentBit)))
	if layout, err = dev.CreateDescriptorSetLayout(layout); err != nil {
		return nil, err
	}

	pipelineLayout, err := dev.CreatePipelineLayout(layout)
	if err != nil {
		return nil, err
	}

	extent := vk.Extent2D{Width: 800, Height: 800}
	framebuffers := make([]vk.Framebuffer, drv.ImageCount)
	for i := range framebuffers {
		framebuffers[i] = Handle[vk.Framebuffer]()
	}

	target := &vkgrid.RenderTarget{
		Queue:          &vkgrid.Queue{Device: dev, VKQueue: Handle[vk.Queue]()},
		Swapchain:      Handle[vk.Swapchain](),
		Framebuffers:   framebuffers,
		RenderPass:     Handle[vk.RenderPass](),
		Pipeline:       Handle[vk.Pipeline](),
		PipelineLayout: pipelineLayout,
		Extent:         extent,
		Viewport:       vkgrid.FullViewport(extent),
		Scissor:        vkgrid.FullScissor(extent),
		ClearColor:     [4]float32{0, 0, 0, 1},
	}

	return &Fixture{
		Driver:         drv,
		Device:         dev,
		Pool:           pool,
		Layout:         layout,
		PipelineLayout: pipelineLayout,
		Target:         target,
	}, nil
}
