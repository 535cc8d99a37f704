package vkgrid_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	"github.com/celer/vkgrid"
	"github.com/celer/vkgrid/vkgtest"
)

func newFrames(t *testing.T) (*vkgtest.Fixture, *vkgrid.FrameController) {
	t.Helper()
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	frames, err := fx.Device.CreateFrameController(fx.Pool, fx.Target)
	require.NoError(t, err)
	return fx, frames
}

func TestFrameRecordsCommandsInOrder(t *testing.T) {
	fx, frames := newFrames(t)

	require.NoError(t, frames.BeginFrame())
	assert.Equal(t, vkgrid.FrameRecording, frames.State())

	cb := frames.CurrentCommandBuffer().VK()
	assert.Equal(t, []string{"CmdBeginRenderPass", "CmdBindPipeline", "CmdSetViewport", "CmdSetScissor"}, fx.Driver.CommandLog(cb))
	assert.Zero(t, fx.Driver.CommandFlags(cb), "the frame buffer is not one time")

	require.NoError(t, frames.EndFrame())
	assert.Equal(t, vkgrid.FrameIdle, frames.State())
	assert.Equal(t, uint64(1), frames.FrameCount())

	require.Len(t, fx.Driver.Submits, 1)
	sub := fx.Driver.Submits[0]
	assert.Equal(t, []vk.CommandBuffer{cb}, sub.CommandBuffers)
	assert.Equal(t, []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}, sub.WaitStages)
	require.Len(t, sub.WaitSemaphores, 1)
	require.Len(t, sub.SignalSemaphores, 1)
	assert.NotNil(t, sub.Fence)

	require.Len(t, fx.Driver.Presents, 1)
	pres := fx.Driver.Presents[0]
	assert.Equal(t, sub.SignalSemaphores, pres.WaitSemaphores, "present waits for rendering")
	assert.Equal(t, []vk.Swapchain{fx.Target.Swapchain}, pres.Swapchains)
	assert.Equal(t, []uint32{frames.ImageIndex()}, pres.ImageIndices)

	assert.Empty(t, fx.Driver.Violations)
}

func TestFrameWaitsForPreviousSubmission(t *testing.T) {
	fx, frames := newFrames(t)

	const n = 6
	for i := 0; i < n; i++ {
		require.NoError(t, frames.BeginFrame())
		require.NoError(t, frames.EndFrame())
	}

	require.Len(t, fx.Driver.Submits, n)
	fence := fx.Driver.Submits[0].Fence
	for _, s := range fx.Driver.Submits {
		assert.Equal(t, fence, s.Fence, "a single fence guards every frame")
	}
	assert.Equal(t, n-1, fx.Driver.FenceSignals(fence), "the last frame is still in flight")
	assert.Equal(t, 1, fx.Driver.Outstanding())

	// The command buffer of frame k+1 may only be begun after frame k's fence has signaled.
	for k := 1; k < n; k++ {
		signaled := fx.Driver.IndexOf("SignalFence", k-1)
		begun := fx.Driver.IndexOf("BeginCommandBuffer", k)
		submitted := fx.Driver.IndexOf("QueueSubmit", k-1)
		require.NotEqual(t, -1, signaled)
		assert.Less(t, submitted, signaled)
		assert.Less(t, signaled, begun)
	}

	for i, p := range fx.Driver.Presents {
		assert.Equal(t, []uint32{uint32(i) % fx.Driver.ImageCount}, p.ImageIndices)
	}
	assert.Empty(t, fx.Driver.Violations)
}

func TestFrameCallOrderWithinFrame(t *testing.T) {
	fx, frames := newFrames(t)
	fx.Driver.ResetLog()

	require.NoError(t, frames.BeginFrame())
	require.NoError(t, frames.EndFrame())

	order := []string{"WaitForFences", "AcquireNextImage", "ResetFences", "BeginCommandBuffer",
		"CmdBeginRenderPass", "CmdEndRenderPass", "EndCommandBuffer", "QueueSubmit", "QueuePresent"}
	last := -1
	for _, name := range order {
		idx := fx.Driver.IndexOf(name, 0)
		require.NotEqual(t, -1, idx, name)
		assert.Greater(t, idx, last, name)
		last = idx
	}
}

func TestFrameRejectsOutOfOrderCalls(t *testing.T) {
	fx, frames := newFrames(t)

	assert.True(t, errors.Is(frames.EndFrame(), vkgrid.ErrFrameState))
	assert.True(t, errors.Is(frames.Record(), vkgrid.ErrFrameState))

	require.NoError(t, frames.BeginFrame())
	assert.True(t, errors.Is(frames.BeginFrame(), vkgrid.ErrFrameState))
	require.NoError(t, frames.EndFrame())
	assert.True(t, errors.Is(frames.EndFrame(), vkgrid.ErrFrameState))

	assert.Len(t, fx.Driver.Submits, 1)
	assert.Empty(t, fx.Driver.Violations)
}

func TestFrameDriverFailuresAreFatal(t *testing.T) {
	for _, call := range []string{"WaitForFences", "AcquireNextImage", "ResetFences", "BeginCommandBuffer"} {
		t.Run(call, func(t *testing.T) {
			fx, frames := newFrames(t)
			fx.Driver.Fail[call] = vk.ErrorDeviceLost
			err := frames.BeginFrame()
			require.Error(t, err)
			assert.True(t, vkgrid.IsFatal(err))
		})
	}
	for _, call := range []string{"EndCommandBuffer", "QueueSubmit", "QueuePresent"} {
		t.Run(call, func(t *testing.T) {
			fx, frames := newFrames(t)
			require.NoError(t, frames.BeginFrame())
			fx.Driver.Fail[call] = vk.ErrorDeviceLost
			err := frames.EndFrame()
			require.Error(t, err)
			assert.True(t, vkgrid.IsFatal(err))
		})
	}
}

func TestFrameToleratesSuboptimal(t *testing.T) {
	fx, frames := newFrames(t)
	fx.Driver.Fail["QueuePresent"] = vk.Suboptimal
	require.NoError(t, frames.BeginFrame())
	require.NoError(t, frames.EndFrame())
	assert.Equal(t, vkgrid.FrameIdle, frames.State())
}

func TestFrameOutOfDateIsFatal(t *testing.T) {
	fx, frames := newFrames(t)
	fx.Driver.Fail["AcquireNextImage"] = vk.ErrorOutOfDate
	assert.True(t, vkgrid.IsFatal(frames.BeginFrame()))
}

func TestFrameDestroyWaitsForDevice(t *testing.T) {
	fx, frames := newFrames(t)
	require.NoError(t, frames.BeginFrame())
	require.NoError(t, frames.EndFrame())

	frames.Destroy()
	frames.Destroy()

	assert.Equal(t, 1, fx.Driver.Count("DeviceWaitIdle"))
	assert.Less(t, fx.Driver.IndexOf("DeviceWaitIdle", 0), fx.Driver.IndexOf("DestroyFence", 0))
	assert.Zero(t, fx.Driver.Outstanding())
	live := fx.Driver.Live()
	assert.Zero(t, live.Fences)
	assert.Zero(t, live.Semaphores)
	assert.Zero(t, live.CommandBuffers)
	assert.Empty(t, fx.Driver.Violations)

	assert.True(t, errors.Is(frames.BeginFrame(), vkgrid.ErrDestroyed))
}

func TestFrameStateString(t *testing.T) {
	assert.Equal(t, "idle", vkgrid.FrameIdle.String())
	assert.Equal(t, "recording", vkgrid.FrameRecording.String())
	assert.Equal(t, "presented", vkgrid.FramePresented.String())
	assert.Equal(t, "unknown", vkgrid.FrameState(42).String())
}

func TestFullViewportAndScissor(t *testing.T) {
	extent := vk.Extent2D{Width: 800, Height: 600}
	vp := vkgrid.FullViewport(extent)
	assert.Equal(t, float32(800), vp.Width)
	assert.Equal(t, float32(600), vp.Height)
	assert.Equal(t, float32(1), vp.MaxDepth)
	assert.Equal(t, extent, vkgrid.FullScissor(extent).Extent)
}
