package vkgrid_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	"github.com/celer/vkgrid"
)

func TestDeviceBufferUploadsThroughStaging(t *testing.T) {
	fx, frames := newFrames(t)
	before := fx.Driver.Live()
	fx.Driver.ResetLog()

	quad := vkgrid.ScreenTransform{Width: 800, Height: 800}.Quad(4, 4, 76, 76)
	b, err := vkgrid.NewDeviceBuffer(frames, quad, vertexUsage)
	require.NoError(t, err)

	idx, ok := fx.Driver.BufferMemoryType(b.VKBuffer())
	require.True(t, ok)
	assert.Equal(t, uint32(0), idx, "device local type")
	assert.Equal(t, vertexUsage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit), fx.Driver.BufferUsage(b.VKBuffer()))

	assert.Equal(t, quad.Bytes(), fx.Driver.BufferMemory(b.VKBuffer())[:b.Size()])

	require.Len(t, fx.Driver.Submits, 1, "one transient submission")
	assert.Zero(t, fx.Driver.Outstanding())
	copyAt := fx.Driver.IndexOf("CmdCopyBuffer", 0)
	require.GreaterOrEqual(t, copyAt, 0)
	assert.Less(t, fx.Driver.IndexOf("QueueWaitIdle", 0), fx.Driver.IndexOf("DestroyBuffer", 0),
		"staging is released after the copy completed")

	b.Destroy()
	b.Destroy()
	assert.Equal(t, before, fx.Driver.Live())
	assert.Empty(t, fx.Driver.Violations)
}

func TestDeviceBufferUpdate(t *testing.T) {
	fx, frames := newFrames(t)

	b, err := vkgrid.NewDeviceBuffer(frames, []uint32{1, 2, 3}, vertexUsage)
	require.NoError(t, err)
	defer b.Destroy()

	next := vkgrid.SliceBytes([]uint32{7, 8, 9})
	require.NoError(t, b.Update(frames, next))
	assert.Equal(t, next, fx.Driver.BufferMemory(b.VKBuffer())[:b.Size()])

	err = b.Update(frames, next[:4])
	assert.True(t, errors.Is(err, vkgrid.ErrSizeMismatch))
	assert.Equal(t, next, fx.Driver.BufferMemory(b.VKBuffer())[:b.Size()])
	assert.Empty(t, fx.Driver.Violations)
}

func TestDeviceBufferRejectsEmptyPayload(t *testing.T) {
	_, frames := newFrames(t)

	_, err := vkgrid.NewDeviceBuffer(frames, []float32{}, vertexUsage)
	assert.True(t, errors.Is(err, vkgrid.ErrEmptyBuffer))
}

func TestDeviceBufferUploadFailureReleasesEverything(t *testing.T) {
	fx, frames := newFrames(t)
	before := fx.Driver.Live()
	fx.Driver.Fail["QueueSubmit"] = vk.ErrorDeviceLost

	_, err := vkgrid.NewDeviceBuffer(frames, []uint32{1, 2, 3}, vertexUsage)
	require.Error(t, err)
	assert.True(t, vkgrid.IsFatal(err))
	assert.Equal(t, before, fx.Driver.Live())
}

func TestDeviceBufferAfterDestroy(t *testing.T) {
	_, frames := newFrames(t)

	b, err := vkgrid.NewDeviceBuffer(frames, []uint32{1}, vertexUsage)
	require.NoError(t, err)
	b.Destroy()

	assert.True(t, errors.Is(b.Update(frames, vkgrid.SliceBytes([]uint32{2})), vkgrid.ErrDestroyed))
	assert.Equal(t, vk.NullBuffer, b.VKBuffer())
}
