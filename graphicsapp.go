package vkgrid

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// GraphicsApp creates everything a FrameController needs for a glfw window: instance,
// surface, device, a single queue for graphics, transfer and presentation, swapchain, color
// render pass, framebuffers, the uniform descriptor set layout, pipeline layout, the graphics
// pipeline built from VertexShader and FragmentShader, and a command pool.
//
// The swapchain is created once. Resizing is not supported, an out of date swapchain is a
// fatal error.
type GraphicsApp struct {
	App      *App
	Instance *Instance

	Window    *glfw.Window
	VKSurface vk.Surface

	PhysicalDevice *PhysicalDevice
	Device         *Device
	QueueFamily    *QueueFamily
	Queue          *Queue

	Swapchain    *Swapchain
	ImageViews   []*ImageView
	RenderPass   *RenderPass
	Framebuffers []vk.Framebuffer

	DescriptorSetLayout *DescriptorSetLayout
	PipelineLayout      *PipelineLayout
	Pipeline            *GraphicsPipeline
	CommandPool         *CommandPool
	Frames              *FrameController

	// VertexShader and FragmentShader are compiled SPIR-V files.
	VertexShader   string
	FragmentShader string
	ClearColor     [4]float32
}

// NewGraphicsApp creates a new graphics app with the given name and version
func NewGraphicsApp(name string, version Version) *GraphicsApp {
	return &GraphicsApp{
		App:        &App{Name: name, EngineName: "vkgrid", Version: version},
		ClearColor: [4]float32{0, 0, 0, 1},
	}
}

// EnableDebugging enables the validation layer, it must be called before Init.
func (p *GraphicsApp) EnableDebugging() {
	p.App.EnableDebugging()
}

// SetWindow sets the window to render into and enables the instance extensions glfw needs
// for it. It must be called before Init.
func (p *GraphicsApp) SetWindow(window *glfw.Window) error {
	if p.Instance != nil {
		return errors.New("window must be set prior to initialization")
	}
	p.Window = window
	for _, ext := range window.GetRequiredInstanceExtensions() {
		p.App.EnableExtension(ext)
	}
	return nil
}

// ScreenExtent is the framebuffer size of the window in pixels.
func (p *GraphicsApp) ScreenExtent() vk.Extent2D {
	w, h := p.Window.GetFramebufferSize()
	return vk.Extent2D{Width: uint32(w), Height: uint32(h)}
}

// Init creates every object, on error the objects created so far are released.
func (p *GraphicsApp) Init() error {
	if p.Window == nil {
		return errors.New("no window set")
	}
	if err := p.init(); err != nil {
		p.Destroy()
		return err
	}
	return nil
}

func (p *GraphicsApp) init() error {
	var err error

	if p.Instance, err = p.App.CreateInstance(); err != nil {
		return err
	}

	surface, err := p.Window.CreateWindowSurface(p.Instance.VKInstance, nil)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "create window surface"), ErrFatalGraphics)
	}
	p.VKSurface = vk.SurfaceFromPointer(surface)

	devices, err := p.Instance.PhysicalDevices()
	if err != nil {
		return err
	}
	if p.PhysicalDevice, err = SelectPhysicalDevice(devices); err != nil {
		return err
	}

	families := p.PhysicalDevice.QueueFamilies().FilterGraphicsTransferAndPresent(p.VKSurface)
	if p.QueueFamily, err = families.First(); err != nil {
		return errors.Wrapf(err, "device %s", p.PhysicalDevice)
	}

	if p.Device, err = p.PhysicalDevice.CreateLogicalDevice(p.QueueFamily, "VK_KHR_swapchain"); err != nil {
		return err
	}
	p.Queue = p.Device.GetQueue(p.QueueFamily)

	logger.WithFields(logrus.Fields{
		"device":      p.PhysicalDevice.DeviceName,
		"queueFamily": p.QueueFamily.Index,
		"memoryTypes": len(MemoryTypes(p.Device.MemoryProperties)),
	}).Info("device selected")

	if p.Swapchain, err = p.Device.CreateSwapchain(p.VKSurface, p.ScreenExtent()); err != nil {
		return err
	}
	if err = p.createImageViews(); err != nil {
		return err
	}
	if p.RenderPass, err = p.Device.CreateColorRenderPass(p.Swapchain.Format); err != nil {
		return err
	}
	if err = p.createFramebuffers(); err != nil {
		return err
	}

	layout := p.Device.NewDescriptorSetLayout()
	layout.AddBinding(UniformBinding(UniformSlot, vk.ShaderStageFlags(vk.ShaderStageFragmentBit)))
	if p.DescriptorSetLayout, err = p.Device.CreateDescriptorSetLayout(layout); err != nil {
		return err
	}
	if p.PipelineLayout, err = p.Device.CreatePipelineLayout(p.DescriptorSetLayout); err != nil {
		return err
	}
	if err = p.createPipeline(); err != nil {
		return err
	}

	if p.CommandPool, err = p.Device.CreateCommandPool(p.QueueFamily.Index); err != nil {
		return err
	}

	p.Frames, err = p.Device.CreateFrameController(p.CommandPool, p.RenderTarget())
	return err
}

// RenderTarget describes the swapchain, framebuffers, pipeline and queue to the frame
// controller. The viewport and scissor cover the whole swapchain.
func (p *GraphicsApp) RenderTarget() *RenderTarget {
	extent := p.Swapchain.Extent
	return &RenderTarget{
		Queue:          p.Queue,
		Swapchain:      p.Swapchain.VKSwapchain,
		Framebuffers:   p.Framebuffers,
		RenderPass:     p.RenderPass.VKRenderPass,
		Pipeline:       p.Pipeline.VKPipeline,
		PipelineLayout: p.PipelineLayout,
		Extent:         extent,
		Viewport:       FullViewport(extent),
		Scissor:        FullScissor(extent),
		ClearColor:     p.ClearColor,
	}
}

func (p *GraphicsApp) createImageViews() error {
	images, err := p.Swapchain.GetImages()
	if err != nil {
		return err
	}
	for _, image := range images {
		view, err := p.Device.CreateColorImageView(image, p.Swapchain.Format)
		if err != nil {
			return err
		}
		p.ImageViews = append(p.ImageViews, view)
	}
	return nil
}

func (p *GraphicsApp) createFramebuffers() error {
	for _, view := range p.ImageViews {
		fb, err := p.Device.CreateFramebuffer(p.RenderPass, view, p.Swapchain.Extent)
		if err != nil {
			return err
		}
		p.Framebuffers = append(p.Framebuffers, fb)
	}
	return nil
}

// createPipeline loads the shaders, builds the pipeline and releases the shader modules.
func (p *GraphicsApp) createPipeline() error {
	config := p.Device.CreateGraphicsPipelineConfig()
	defer config.Destroy()

	if err := config.AddShaderStageFromFile(p.VertexShader, "main", vk.ShaderStageVertexBit); err != nil {
		return err
	}
	if err := config.AddShaderStageFromFile(p.FragmentShader, "main", vk.ShaderStageFragmentBit); err != nil {
		return err
	}
	config.SetPipelineLayout(p.PipelineLayout).AddVertexSource(VertexData{})

	var err error
	p.Pipeline, err = p.Device.CreateGraphicsPipeline(config, p.RenderPass)
	return err
}

// Destroy waits for the device to go idle and tears down everything Init created, in reverse
// order. Objects the app's drawables own must already be destroyed.
func (p *GraphicsApp) Destroy() {
	if p.Device != nil {
		if err := p.Device.WaitIdle(); err != nil {
			logger.WithError(err).Error("waiting for device before teardown")
		}
	}
	if p.Frames != nil {
		p.Frames.Destroy()
		p.Frames = nil
	}
	if p.CommandPool != nil {
		p.CommandPool.Destroy()
		p.CommandPool = nil
	}
	if p.Pipeline != nil {
		p.Pipeline.Destroy()
		p.Pipeline = nil
	}
	if p.PipelineLayout != nil {
		p.PipelineLayout.Destroy()
		p.PipelineLayout = nil
	}
	if p.DescriptorSetLayout != nil {
		p.DescriptorSetLayout.Destroy()
		p.DescriptorSetLayout = nil
	}
	for _, fb := range p.Framebuffers {
		vk.DestroyFramebuffer(p.Device.VKDevice, fb, nil)
	}
	p.Framebuffers = nil
	if p.RenderPass != nil {
		p.RenderPass.Destroy()
		p.RenderPass = nil
	}
	for _, view := range p.ImageViews {
		view.Destroy()
	}
	p.ImageViews = nil
	if p.Swapchain != nil {
		p.Swapchain.Destroy()
		p.Swapchain = nil
	}
	if p.Device != nil {
		p.Device.Destroy()
		p.Device = nil
	}
	if p.Instance != nil {
		if p.VKSurface != vk.NullSurface {
			vk.DestroySurface(p.Instance.VKInstance, p.VKSurface, nil)
			p.VKSurface = vk.NullSurface
		}
		p.Instance.Destroy()
		p.Instance = nil
	}
}
