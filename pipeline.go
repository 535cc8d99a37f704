package vkgrid

import (
	vk "github.com/vulkan-go/vulkan"
)

type GraphicsPipeline struct {
	Device     *Device
	VKPipeline vk.Pipeline
}

// CreateGraphicsPipeline builds a single graphics pipeline from config for subpass 0 of
// renderPass.
func (d *Device) CreateGraphicsPipeline(config *GraphicsPipelineConfig, renderPass *RenderPass) (*GraphicsPipeline, error) {
	createInfos := []vk.GraphicsPipelineCreateInfo{config.VKGraphicsPipelineCreateInfo(renderPass.VKRenderPass)}
	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(d.VKDevice, vk.PipelineCache(vk.NullHandle), 1, createInfos, nil, pipelines)
	if err := resultError(res, "create graphics pipeline"); err != nil {
		return nil, err
	}
	return &GraphicsPipeline{Device: d, VKPipeline: pipelines[0]}, nil
}

func (p *GraphicsPipeline) Destroy() {
	vk.DestroyPipeline(p.Device.VKDevice, p.VKPipeline, nil)
}

type RenderPass struct {
	Device       *Device
	VKRenderPass vk.RenderPass
}

// ColorRenderPassCreateInfo describes a render pass with one color attachment of format that
// is cleared on load and handed to presentation at the end. The external dependency makes the
// layout transition wait for the acquired image at the color attachment output stage.
func ColorRenderPassCreateInfo(format vk.Format) vk.RenderPassCreateInfo {
	attachments := []vk.AttachmentDescription{{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachments := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachments)),
		PColorAttachments:    colorAttachments,
	}}

	dependencies := []vk.SubpassDependency{{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}}

	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}
}

func (d *Device) CreateColorRenderPass(format vk.Format) (*RenderPass, error) {
	createInfo := ColorRenderPassCreateInfo(format)
	var renderPass vk.RenderPass
	if err := resultError(vk.CreateRenderPass(d.VKDevice, &createInfo, nil, &renderPass), "create render pass"); err != nil {
		return nil, err
	}
	return &RenderPass{Device: d, VKRenderPass: renderPass}, nil
}

func (r *RenderPass) Destroy() {
	vk.DestroyRenderPass(r.Device.VKDevice, r.VKRenderPass, nil)
}

// CreateFramebuffer creates a framebuffer for renderPass with view as its only attachment.
func (d *Device) CreateFramebuffer(renderPass *RenderPass, view *ImageView, extent vk.Extent2D) (vk.Framebuffer, error) {
	attachments := []vk.ImageView{view.VKImageView}
	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass.VKRenderPass,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
	var fb vk.Framebuffer
	if err := resultError(vk.CreateFramebuffer(d.VKDevice, &createInfo, nil, &fb), "create framebuffer"); err != nil {
		return vk.NullFramebuffer, err
	}
	return fb, nil
}
