package vkgrid_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"

	"github.com/celer/vkgrid"
)

var screen = vkgrid.ScreenTransform{Width: 800, Height: 800}

func TestToNDC(t *testing.T) {
	assert.Equal(t, lin.Vec2{-1, 1}, screen.ToNDC(0, 0))
	assert.Equal(t, lin.Vec2{1, -1}, screen.ToNDC(800, 800))
	assert.Equal(t, lin.Vec2{0, 0}, screen.ToNDC(400, 400))
	assert.Equal(t, lin.Vec2{-0.5, 0.5}, screen.ToNDC(200, 200))
}

func TestQuadLayout(t *testing.T) {
	q := screen.Quad(0, 0, 72, 72)
	assert.Len(t, q, 6)

	a := screen.ToNDC(0, 0)
	b := screen.ToNDC(0, 72)
	c := screen.ToNDC(72, 72)
	d := screen.ToNDC(72, 0)
	want := vkgrid.VertexData{{Pos: a}, {Pos: b}, {Pos: c}, {Pos: a}, {Pos: c}, {Pos: d}}
	assert.Equal(t, want, q)
	assert.Len(t, q.Bytes(), 6*8)
}

// signedArea follows the Vulkan front face rule, negative means clockwise.
func signedArea(v vkgrid.VertexData) float32 {
	var sum float32
	for i := range v {
		p, n := v[i].Pos, v[(i+1)%len(v)].Pos
		sum += p[0]*n[1] - n[0]*p[1]
	}
	return -sum / 2
}

func TestQuadWindsClockwise(t *testing.T) {
	q := screen.Quad(80, 160, 152, 232)
	assert.Less(t, signedArea(q[0:3]), float32(0))
	assert.Less(t, signedArea(q[3:6]), float32(0))
}

func TestVertexDescriptions(t *testing.T) {
	var v vkgrid.VertexData
	b := v.GetBindingDescription()
	assert.Equal(t, uint32(unsafe.Sizeof(vkgrid.Vertex{})), b.Stride)
	assert.Equal(t, vk.VertexInputRateVertex, b.InputRate)

	attrs := v.GetAttributeDescriptions()
	assert.Len(t, attrs, 1)
	assert.Equal(t, vk.FormatR32g32Sfloat, attrs[0].Format)
}

func TestColorUBOBytes(t *testing.T) {
	u := vkgrid.ColorUBO{Color: lin.Vec3{0, 0, 1}}
	assert.Len(t, u.Bytes(), 12)
	assert.Equal(t, vkgrid.SliceBytes([]float32{0, 0, 1}), u.Bytes())
}
