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

var uniformUsage = vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)

func newUniform(t *testing.T, fx *vkgtest.Fixture) *vkgrid.HostBuffer {
	t.Helper()
	ubo := []vkgrid.ColorUBO{{Color: [3]float32{1, 0, 0}}}
	b, err := vkgrid.NewHostBuffer(fx.Device, ubo, uniformUsage, vkgrid.HostVisibleCoherent)
	require.NoError(t, err)
	return b
}

func fragmentUniform() vk.DescriptorSetLayoutBinding {
	return vkgrid.UniformBinding(0, vk.ShaderStageFlags(vk.ShaderStageFragmentBit))
}

func TestDescriptorBuildSizesPoolForOneSet(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	ubo := newUniform(t, fx)

	binding, err := vkgrid.NewDescriptorBuilder().
		AddBinding(fragmentUniform()).
		UniformBuffer(ubo).
		Build(fx.Device, fx.Layout)
	require.NoError(t, err)

	pool := binding.Pool.VKDescriptorPool
	assert.Equal(t, uint32(1), fx.Driver.PoolMaxSets(pool))
	assert.Equal(t, []vk.DescriptorPoolSize{{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1}}, fx.Driver.PoolSizes(pool))

	assert.Equal(t, ubo.VKBuffer(), binding.BufferInfo().Buffer)
	assert.Equal(t, vk.DeviceSize(12), binding.BufferInfo().Range)

	_, written := fx.Driver.Binding(binding.VKDescriptorSet(), vkgrid.UniformSlot)
	assert.False(t, written, "build alone does not write the set")
	assert.Empty(t, fx.Driver.Violations)
}

func TestDescriptorBuildOnePoolSizePerBinding(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	ubo := newUniform(t, fx)

	second := fragmentUniform()
	second.Binding = 1
	binding, err := vkgrid.NewDescriptorBuilder().
		AddBinding(fragmentUniform()).
		AddBinding(second).
		UniformBuffer(ubo).
		Build(fx.Device, fx.Layout)
	require.NoError(t, err)

	assert.Len(t, fx.Driver.PoolSizes(binding.Pool.VKDescriptorPool), 2)
	assert.Equal(t, uint32(1), fx.Driver.PoolMaxSets(binding.Pool.VKDescriptorPool))
}

func TestDescriptorBuildRequiresEverything(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	ubo := newUniform(t, fx)

	cases := map[string]func() (*vkgrid.DescriptorBinding, error){
		"no uniform": func() (*vkgrid.DescriptorBinding, error) {
			return vkgrid.NewDescriptorBuilder().AddBinding(fragmentUniform()).Build(fx.Device, fx.Layout)
		},
		"no binding": func() (*vkgrid.DescriptorBinding, error) {
			return vkgrid.NewDescriptorBuilder().UniformBuffer(ubo).Build(fx.Device, fx.Layout)
		},
		"no layout": func() (*vkgrid.DescriptorBinding, error) {
			return vkgrid.NewDescriptorBuilder().AddBinding(fragmentUniform()).UniformBuffer(ubo).Build(fx.Device, nil)
		},
		"no device": func() (*vkgrid.DescriptorBinding, error) {
			return vkgrid.NewDescriptorBuilder().AddBinding(fragmentUniform()).UniformBuffer(ubo).Build(nil, fx.Layout)
		},
		"zero range": func() (*vkgrid.DescriptorBinding, error) {
			return vkgrid.NewDescriptorBuilder().AddBinding(fragmentUniform()).Uniform(ubo.VKBuffer(), 0).Build(fx.Device, fx.Layout)
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			before := fx.Driver.Count("CreateDescriptorPool")
			_, err := build()
			assert.True(t, errors.Is(err, vkgrid.ErrIncompleteDescriptor))
			assert.Equal(t, before, fx.Driver.Count("CreateDescriptorPool"), "nothing is created")
		})
	}
}

func TestDescriptorPublishIsIdempotent(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	ubo := newUniform(t, fx)

	binding, err := vkgrid.NewDescriptorBuilder().AddBinding(fragmentUniform()).UniformBuffer(ubo).Build(fx.Device, fx.Layout)
	require.NoError(t, err)

	require.NoError(t, binding.Publish())
	first, ok := fx.Driver.Binding(binding.VKDescriptorSet(), vkgrid.UniformSlot)
	require.True(t, ok)
	assert.Equal(t, ubo.DSInfo(), first)

	require.NoError(t, binding.Publish())
	second, ok := fx.Driver.Binding(binding.VKDescriptorSet(), vkgrid.UniformSlot)
	require.True(t, ok)
	assert.Equal(t, first, second)

	require.Len(t, fx.Driver.Writes, 2)
	for _, w := range fx.Driver.Writes {
		assert.Equal(t, uint32(vkgrid.UniformSlot), w.DstBinding)
		assert.Equal(t, vk.DescriptorTypeUniformBuffer, w.DescriptorType)
		assert.Equal(t, uint32(1), w.DescriptorCount)
	}
	assert.Empty(t, fx.Driver.Violations)
}

func TestDescriptorDestroyReleasesPoolAndSet(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	ubo := newUniform(t, fx)

	binding, err := vkgrid.NewDescriptorBuilder().AddBinding(fragmentUniform()).UniformBuffer(ubo).Build(fx.Device, fx.Layout)
	require.NoError(t, err)
	require.Equal(t, 1, fx.Driver.Live().DescriptorSets)

	binding.Destroy()
	binding.Destroy()
	assert.Equal(t, 1, fx.Driver.Count("DestroyDescriptorPool"))
	assert.Zero(t, fx.Driver.Live().DescriptorPool)
	assert.Zero(t, fx.Driver.Live().DescriptorSets)
	assert.True(t, errors.Is(binding.Publish(), vkgrid.ErrDestroyed))
}

func TestDescriptorAllocateFailureReleasesPool(t *testing.T) {
	fx, err := vkgtest.NewFixture()
	require.NoError(t, err)
	ubo := newUniform(t, fx)
	fx.Driver.Fail["AllocateDescriptorSets"] = vk.ErrorOutOfPoolMemory

	_, err = vkgrid.NewDescriptorBuilder().AddBinding(fragmentUniform()).UniformBuffer(ubo).Build(fx.Device, fx.Layout)
	assert.True(t, vkgrid.IsFatal(err))
	assert.Zero(t, fx.Driver.Live().DescriptorPool)
}
