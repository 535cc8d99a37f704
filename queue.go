package vkgrid

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type Queue struct {
	Device      *Device
	QueueFamily *QueueFamily
	VKQueue     vk.Queue
}

func (q *Queue) WaitIdle() error {
	return resultError(q.Device.Driver.QueueWaitIdle(q.VKQueue), "queue wait idle")
}

// Submit submits the buffers without any synchronization objects.
func (q *Queue) Submit(buffers ...*CommandBuffer) error {
	var submitInfo = vk.SubmitInfo{}
	submitInfo.SType = vk.StructureTypeSubmitInfo
	submitInfo.CommandBufferCount = uint32(len(buffers))
	submitInfo.PCommandBuffers = vkCommandBuffers(buffers)

	return resultError(q.Device.Driver.QueueSubmit(q.VKQueue, []vk.SubmitInfo{submitInfo}, vk.NullFence), "queue submit")
}

// SubmitFrame submits one frame's command buffer. It waits on wait at the color attachment
// output stage, signals signal on completion and signals fence once the buffer has executed.
func (q *Queue) SubmitFrame(cb *CommandBuffer, wait, signal *Semaphore, fence *Fence) error {
	var submitInfo = vk.SubmitInfo{}
	submitInfo.SType = vk.StructureTypeSubmitInfo
	submitInfo.WaitSemaphoreCount = 1
	submitInfo.PWaitSemaphores = []vk.Semaphore{wait.VKSemaphore}
	submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
	submitInfo.CommandBufferCount = 1
	submitInfo.PCommandBuffers = []vk.CommandBuffer{cb.VKCommandBuffer}
	submitInfo.SignalSemaphoreCount = 1
	submitInfo.PSignalSemaphores = []vk.Semaphore{signal.VKSemaphore}

	return resultError(q.Device.Driver.QueueSubmit(q.VKQueue, []vk.SubmitInfo{submitInfo}, fence.VKFence), "queue submit")
}

// Present queues imageIndex of swapchain for display once wait signals.
func (q *Queue) Present(swapchain vk.Swapchain, imageIndex uint32, wait *Semaphore) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait.VKSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain},
		PImageIndices:      []uint32{imageIndex},
	}
	return presentableResult(q.Device.Driver.QueuePresent(q.VKQueue, &presentInfo), "queue present")
}

func (q *Queue) String() string {
	if q.QueueFamily == nil {
		return fmt.Sprintf("{Device: %s}", q.Device.String())
	}
	return fmt.Sprintf("{Device: %s QueueFamily: %s}", q.Device.String(), q.QueueFamily.String())
}

func vkCommandBuffers(buffers []*CommandBuffer) []vk.CommandBuffer {
	b := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		b[i] = buffers[i].VKCommandBuffer
	}
	return b
}
