package vkgrid

import (
	vk "github.com/vulkan-go/vulkan"
)

// Drawable records its own draw commands into a frame in progress.
type Drawable interface {
	Draw(cb *CommandBuffer, layout *PipelineLayout) error
}

type BufferObject interface {
	Bytes() []byte
}

// VertexSource is vertex data that can describe its own input layout to a pipeline.
type VertexSource interface {
	BufferObject
	GetBindingDescription() vk.VertexInputBindingDescription
	GetAttributeDescriptions() []vk.VertexInputAttributeDescription
}
