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

var vertexUsage = vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)

func newDevice(t *testing.T) (*vkgtest.Driver, *vkgrid.Device) {
	t.Helper()
	drv := vkgtest.NewDriver()
	return drv, vkgrid.NewDevice(drv, vkgtest.Handle[vk.Device](), vkgtest.DefaultMemoryProperties())
}

func TestHostBufferHoldsPayload(t *testing.T) {
	drv, dev := newDevice(t)

	data := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	b, err := vkgrid.NewHostBuffer(dev, data, vertexUsage, vkgrid.HostVisibleCoherent)
	require.NoError(t, err)
	defer b.Destroy()

	assert.Equal(t, uint64(24), b.Size())
	assert.Equal(t, vertexUsage, drv.BufferUsage(b.VKBuffer()))

	got, err := b.Read()
	require.NoError(t, err)
	assert.Equal(t, vkgrid.SliceBytes(data), got)

	idx, ok := drv.BufferMemoryType(b.VKBuffer())
	require.True(t, ok)
	assert.Equal(t, uint32(1), idx, "first host visible coherent type")

	assert.False(t, drv.Mapped(), "memory must be unmapped between writes")
	assert.Empty(t, drv.Violations)
}

func TestHostBufferOverwriteReplacesContents(t *testing.T) {
	drv, dev := newDevice(t)

	b, err := vkgrid.NewHostBuffer(dev, []uint32{1, 2, 3}, vertexUsage, vkgrid.HostVisibleCoherent)
	require.NoError(t, err)
	defer b.Destroy()

	for i := uint32(0); i < 5; i++ {
		next := []uint32{i, i * 10, i * 100}
		require.NoError(t, vkgrid.WriteHostBuffer(b, next))
		got, err := b.Read()
		require.NoError(t, err)
		assert.Equal(t, vkgrid.SliceBytes(next), got)
	}
	assert.Empty(t, drv.Violations)
}

func TestHostBufferRejectsSizeMismatch(t *testing.T) {
	_, dev := newDevice(t)

	b, err := vkgrid.NewHostBuffer(dev, []uint32{7, 8}, vertexUsage, vkgrid.HostVisibleCoherent)
	require.NoError(t, err)
	defer b.Destroy()

	err = vkgrid.WriteHostBuffer(b, []uint32{1, 2, 3})
	assert.True(t, errors.Is(err, vkgrid.ErrSizeMismatch))
	err = b.Overwrite([]byte{1})
	assert.True(t, errors.Is(err, vkgrid.ErrSizeMismatch))

	got, err := b.Read()
	require.NoError(t, err)
	assert.Equal(t, vkgrid.SliceBytes([]uint32{7, 8}), got, "rejected writes leave the contents alone")
}

func TestHostBufferRejectsEmptyPayload(t *testing.T) {
	drv, dev := newDevice(t)
	_, err := vkgrid.NewHostBuffer(dev, []float32{}, vertexUsage, vkgrid.HostVisibleCoherent)
	assert.True(t, errors.Is(err, vkgrid.ErrEmptyBuffer))
	assert.Zero(t, drv.Count("CreateBuffer"))
}

func TestHostBufferDestroyReleasesBufferBeforeMemory(t *testing.T) {
	drv, dev := newDevice(t)

	b, err := vkgrid.NewHostBuffer(dev, []byte{1, 2, 3, 4}, vertexUsage, vkgrid.HostVisibleCoherent)
	require.NoError(t, err)

	b.Destroy()
	b.Destroy()

	destroyed := drv.IndexOf("DestroyBuffer", 0)
	freed := drv.IndexOf("FreeMemory", 0)
	require.NotEqual(t, -1, destroyed)
	require.NotEqual(t, -1, freed)
	assert.Less(t, destroyed, freed)
	assert.Equal(t, 1, drv.Count("DestroyBuffer"))
	assert.Equal(t, 1, drv.Count("FreeMemory"))
	assert.Equal(t, vkgtest.Live{}, drv.Live())
	assert.Empty(t, drv.Violations)

	_, err = b.Read()
	assert.True(t, errors.Is(err, vkgrid.ErrDestroyed))
}

func TestHostBufferNoMemoryTypeCleansUp(t *testing.T) {
	drv, dev := newDevice(t)
	drv.MemoryTypeBits = 1 << 0

	_, err := vkgrid.NewHostBuffer(dev, []byte{1, 2, 3, 4}, vertexUsage, vkgrid.HostVisibleCoherent)
	assert.True(t, errors.Is(err, vkgrid.ErrNoMemoryType))
	assert.False(t, vkgrid.IsFatal(err))
	assert.Equal(t, vkgtest.Live{}, drv.Live())
}

func TestHostBufferDriverFailuresAreFatal(t *testing.T) {
	for _, call := range []string{"CreateBuffer", "AllocateMemory", "BindBufferMemory", "MapMemory"} {
		t.Run(call, func(t *testing.T) {
			drv, dev := newDevice(t)
			drv.Fail[call] = vk.ErrorOutOfDeviceMemory

			_, err := vkgrid.NewHostBuffer(dev, []byte{1, 2, 3, 4}, vertexUsage, vkgrid.HostVisibleCoherent)
			require.Error(t, err)
			assert.True(t, vkgrid.IsFatal(err))
			assert.Equal(t, vkgtest.Live{}, drv.Live(), "partial resources are released")
		})
	}
}
