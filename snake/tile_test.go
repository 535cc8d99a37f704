package snake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	"github.com/celer/vkgrid"
	"github.com/celer/vkgrid/vkgtest"
)

var testLayout = Layout{
	TileSize: 80,
	Inset:    4,
	Screen:   vkgrid.ScreenTransform{Width: 800, Height: 800},
}

func TestLayoutQuad(t *testing.T) {
	s := testLayout.Screen
	assert.Equal(t, s.Quad(4, 4, 76, 76), testLayout.Quad(Coord{0, 0}))
	assert.Equal(t, s.Quad(164, 84, 236, 156), testLayout.Quad(Coord{2, 1}))
}

func TestTileDrawsOneQuad(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	frames, err := fx.Device.CreateFrameController(fx.Pool, fx.Target)
	require.NoError(t, err)

	quad := testLayout.Screen.Quad(0, 0, 72, 72)
	tile, err := NewTile(fx.Device, fx.Layout, HostVertices(fx.Device), quad, Body)
	require.NoError(t, err)

	require.NoError(t, frames.DrawFrame(tile))

	require.Len(t, fx.Driver.Draws, 1)
	draw := fx.Driver.Draws[0]
	assert.Equal(t, uint32(6), draw.VertexCount)
	assert.Equal(t, uint32(1), draw.InstanceCount)
	assert.Equal(t, uint32(0), draw.FirstSet)
	assert.Equal(t, []vk.DescriptorSet{tile.binding.VKDescriptorSet()}, draw.DescriptorSets)
	assert.Equal(t, []vk.Buffer{tile.vertices.VKBuffer()}, draw.VertexBuffers)
	assert.Equal(t, fx.Target.Pipeline, draw.Pipeline)

	verts := fx.Driver.BufferMemory(tile.vertices.VKBuffer())
	assert.Equal(t, quad.Bytes(), verts[:len(quad.Bytes())])

	info, ok := fx.Driver.Binding(tile.binding.VKDescriptorSet(), vkgrid.UniformSlot)
	require.True(t, ok)
	assert.Equal(t, tile.uniform.VKBuffer(), info.Buffer)

	color, err := tile.uniform.Read()
	require.NoError(t, err)
	assert.Equal(t, vkgrid.SliceBytes([]float32{0, 0, 1}), color)

	assert.Empty(t, fx.Driver.Violations)
}

func TestTileColorFollowsCell(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	frames, err := fx.Device.CreateFrameController(fx.Pool, fx.Target)
	require.NoError(t, err)

	tile, err := NewTile(fx.Device, fx.Layout, HostVertices(fx.Device), testLayout.Quad(Coord{0, 0}), Empty)
	require.NoError(t, err)

	for _, cell := range []Cell{Apple, Body, Empty} {
		tile.Cell = cell
		require.NoError(t, frames.DrawFrame(tile))
		got, err := tile.uniform.Read()
		require.NoError(t, err)
		c := cell.Color()
		assert.Equal(t, vkgrid.SliceBytes(c[:]), got, cell.String())
	}
	assert.Empty(t, fx.Driver.Violations)
}

func TestTileDestroy(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	before := fx.Driver.Live()

	tile, err := NewTile(fx.Device, fx.Layout, HostVertices(fx.Device), testLayout.Quad(Coord{1, 1}), Apple)
	require.NoError(t, err)
	tile.Destroy()
	tile.Destroy()

	assert.Equal(t, before, fx.Driver.Live())
	assert.Empty(t, fx.Driver.Violations)
}

func TestGridSyncAndDraw(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	frames, err := fx.Device.CreateFrameController(fx.Pool, fx.Target)
	require.NoError(t, err)

	grid, err := NewGrid(fx.Device, fx.Layout, 4, testLayout)
	require.NoError(t, err)
	defer grid.Destroy()

	board := NewBoard(4)
	grid.Sync(board)
	assert.Equal(t, Body, grid.Tile(board.Head()).Cell)
	assert.Nil(t, grid.Tile(Coord{4, 0}))

	require.NoError(t, frames.DrawFrame(grid))
	assert.Len(t, fx.Driver.Draws, 16)
	for _, d := range fx.Driver.Draws {
		assert.Equal(t, uint32(6), d.VertexCount)
	}
	assert.Empty(t, fx.Driver.Violations)
}

func TestGridWithDeviceLocalVertices(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	frames, err := fx.Device.CreateFrameController(fx.Pool, fx.Target)
	require.NoError(t, err)
	before := fx.Driver.Live()

	grid, err := NewGrid(fx.Device, fx.Layout, 2, testLayout, WithVertexUploader(DeviceLocalVertices(frames)))
	require.NoError(t, err)
	assert.Equal(t, 4, fx.Driver.Count("CmdCopyBuffer"), "one upload per tile")
	assert.Zero(t, fx.Driver.Outstanding())

	tile := grid.Tile(Coord{1, 0})
	idx, ok := fx.Driver.BufferMemoryType(tile.vertices.VKBuffer())
	require.True(t, ok)
	assert.Equal(t, uint32(0), idx, "device local type")
	quad := testLayout.Quad(Coord{1, 0}).Bytes()
	assert.Equal(t, quad, fx.Driver.BufferMemory(tile.vertices.VKBuffer())[:len(quad)])

	grid.Sync(NewBoard(2))
	require.NoError(t, frames.DrawFrame(grid))
	assert.Len(t, fx.Driver.Draws, 4)

	require.NoError(t, fx.Device.WaitIdle())
	grid.Destroy()
	assert.Equal(t, before, fx.Driver.Live())
	assert.Empty(t, fx.Driver.Violations)
}
