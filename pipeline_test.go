package vkgrid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	"github.com/celer/vkgrid"
	"github.com/celer/vkgrid/vkgtest"
)

func TestColorRenderPassCreateInfo(t *testing.T) {
	info := vkgrid.ColorRenderPassCreateInfo(vk.FormatB8g8r8a8Srgb)

	require.Len(t, info.PAttachments, 1)
	a := info.PAttachments[0]
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, a.Format)
	assert.Equal(t, vk.AttachmentLoadOpClear, a.LoadOp)
	assert.Equal(t, vk.ImageLayoutPresentSrc, a.FinalLayout)

	require.Len(t, info.PSubpasses, 1)
	assert.Nil(t, info.PSubpasses[0].PDepthStencilAttachment)
	require.Len(t, info.PDependencies, 1)
	assert.Equal(t, uint32(vk.SubpassExternal), info.PDependencies[0].SrcSubpass)
}

func TestGraphicsPipelineDefaults(t *testing.T) {
	f, err := vkgtest.NewFixture()
	require.NoError(t, err)

	config := f.Device.CreateGraphicsPipelineConfig().
		SetPipelineLayout(f.PipelineLayout).
		AddVertexSource(vkgrid.VertexData{})
	info := config.VKGraphicsPipelineCreateInfo(f.Target.RenderPass)

	assert.Equal(t, f.PipelineLayout.VKPipelineLayout, info.Layout)
	assert.Equal(t, f.Target.RenderPass, info.RenderPass)
	assert.Equal(t, vk.PrimitiveTopologyTriangleList, info.PInputAssemblyState.Topology)
	assert.Equal(t, vk.FrontFaceClockwise, info.PRasterizationState.FrontFace)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), info.PRasterizationState.CullMode)
	assert.Nil(t, info.PDepthStencilState)
	assert.ElementsMatch(t, []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}, info.PDynamicState.PDynamicStates)

	require.Len(t, info.PVertexInputState.PVertexBindingDescriptions, 1)
	assert.Equal(t, uint32(8), info.PVertexInputState.PVertexBindingDescriptions[0].Stride)
	require.Len(t, info.PVertexInputState.PVertexAttributeDescriptions, 1)
	assert.Equal(t, vk.FormatR32g32Sfloat, info.PVertexInputState.PVertexAttributeDescriptions[0].Format)
}
