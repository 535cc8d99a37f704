// Package vkgtest provides an in-memory Driver that records every call made through it, for
// exercising buffer, descriptor and frame logic without a GPU.
//
// Submitted work stays pending until the CPU waits for it, either on the fence it was
// submitted with or by idling the queue or device, and recorded buffer copies reach memory
// only then. Misuse that a real implementation would reject or that validation layers would
// flag is collected in Violations instead of failing.
package vkgtest

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// DefaultAlignment is the alignment and size granularity reported for buffer memory.
const DefaultAlignment = 64

// Handle fabricates a unique non null Vulkan handle of type T.
func Handle[T any]() T {
	var h T
	if unsafe.Sizeof(h) != unsafe.Sizeof(uintptr(0)) {
		panic(fmt.Sprintf("vkgtest: %T is not a handle type", h))
	}
	*(*unsafe.Pointer)(unsafe.Pointer(&h)) = unsafe.Pointer(new(uint64))
	return h
}

// Draw is one recorded draw call with the state bound at the time.
type Draw struct {
	CommandBuffer  vk.CommandBuffer
	VertexCount    uint32
	InstanceCount  uint32
	FirstVertex    uint32
	FirstInstance  uint32
	FirstSet       uint32
	DescriptorSets []vk.DescriptorSet
	VertexBuffers  []vk.Buffer
	Pipeline       vk.Pipeline
}

// Submit is one recorded queue submission.
type Submit struct {
	Queue            vk.Queue
	CommandBuffers   []vk.CommandBuffer
	WaitSemaphores   []vk.Semaphore
	WaitStages       []vk.PipelineStageFlags
	SignalSemaphores []vk.Semaphore
	Fence            vk.Fence
}

// Present is one recorded present request.
type Present struct {
	WaitSemaphores []vk.Semaphore
	Swapchains     []vk.Swapchain
	ImageIndices   []uint32
}

type bufferState struct {
	size   uint64
	usage  vk.BufferUsageFlags
	memory vk.DeviceMemory
	offset uint64
}

// copyOp is a recorded buffer copy, applied to memory when its submission completes.
type copyOp struct {
	src, dst vk.Buffer
	region   vk.BufferCopy
}

type memoryState struct {
	data      []byte
	typeIndex uint32
	mapped    bool
}

type fenceState struct {
	signaled bool
	signals  int
}

type commandBufferState struct {
	pool         vk.CommandPool
	recording    bool
	executable   bool
	pending      bool
	inRenderPass bool
	flags        vk.CommandBufferUsageFlags
	commands     []string
	pipeline     vk.Pipeline
	firstSet     uint32
	sets         []vk.DescriptorSet
	vertex       []vk.Buffer
	draws        []Draw
	copies       []copyOp
}

type poolState struct {
	maxSets   uint32
	allocated uint32
	sizes     []vk.DescriptorPoolSize
}

type pendingSubmit struct {
	buffers []vk.CommandBuffer
	fence   vk.Fence
}

// Driver is a recording implementation of the device level Vulkan calls.
type Driver struct {
	// MemoryTypeBits is reported as the allowed memory types of every buffer.
	MemoryTypeBits uint32
	// Alignment is reported for every buffer, sizes are rounded up to it.
	Alignment uint64
	// ImageCount is the number of swapchain images AcquireNextImage cycles through.
	ImageCount uint32
	// Fail makes the named call return the given result instead of succeeding.
	Fail map[string]vk.Result

	// Calls lists every call in order, plus "SignalFence" entries when pending work completes.
	Calls      []string
	Draws      []Draw
	Submits    []Submit
	Presents   []Present
	Writes     []vk.WriteDescriptorSet
	Violations []string

	buffers    map[vk.Buffer]*bufferState
	memory     map[vk.DeviceMemory]*memoryState
	fences     map[vk.Fence]*fenceState
	semaphores map[vk.Semaphore]bool
	cmdBuffers map[vk.CommandBuffer]*commandBufferState
	cmdPools   map[vk.CommandPool]bool
	pools      map[vk.DescriptorPool]*poolState
	sets       map[vk.DescriptorSet]vk.DescriptorPool
	bindings   map[vk.DescriptorSet]map[uint32]vk.DescriptorBufferInfo
	layouts    map[vk.DescriptorSetLayout]bool
	pipeLayout map[vk.PipelineLayout]bool
	pending    []pendingSubmit
	nextImage  uint32
}

// NewDriver returns a driver that accepts every memory type and cycles through three
// swapchain images.
func NewDriver() *Driver {
	return &Driver{
		MemoryTypeBits: 0xffffffff,
		Alignment:      DefaultAlignment,
		ImageCount:     3,
		Fail:           make(map[string]vk.Result),
		buffers:        make(map[vk.Buffer]*bufferState),
		memory:         make(map[vk.DeviceMemory]*memoryState),
		fences:         make(map[vk.Fence]*fenceState),
		semaphores:     make(map[vk.Semaphore]bool),
		cmdBuffers:     make(map[vk.CommandBuffer]*commandBufferState),
		cmdPools:       make(map[vk.CommandPool]bool),
		pools:          make(map[vk.DescriptorPool]*poolState),
		sets:           make(map[vk.DescriptorSet]vk.DescriptorPool),
		bindings:       make(map[vk.DescriptorSet]map[uint32]vk.DescriptorBufferInfo),
		layouts:        make(map[vk.DescriptorSetLayout]bool),
		pipeLayout:     make(map[vk.PipelineLayout]bool),
	}
}

func (d *Driver) call(name string) (vk.Result, bool) {
	d.Calls = append(d.Calls, name)
	if res, ok := d.Fail[name]; ok {
		return res, true
	}
	return vk.Success, false
}

func (d *Driver) violate(format string, args ...interface{}) {
	d.Violations = append(d.Violations, fmt.Sprintf(format, args...))
}

func (d *Driver) recording(cb vk.CommandBuffer, cmd string) *commandBufferState {
	d.Calls = append(d.Calls, cmd)
	st, ok := d.cmdBuffers[cb]
	if !ok {
		d.violate("%s on unknown command buffer", cmd)
		return &commandBufferState{}
	}
	if !st.recording {
		d.violate("%s on command buffer that is not recording", cmd)
	}
	st.commands = append(st.commands, cmd)
	return st
}

func (d *Driver) alignUp(n uint64) uint64 {
	a := d.Alignment
	if a == 0 {
		return n
	}
	return (n + a - 1) / a * a
}

func (d *Driver) CreateBuffer(device vk.Device, info *vk.BufferCreateInfo, buffer *vk.Buffer) vk.Result {
	if res, failed := d.call("CreateBuffer"); failed {
		return res
	}
	if info.Size == 0 {
		d.violate("CreateBuffer with size 0")
	}
	h := Handle[vk.Buffer]()
	d.buffers[h] = &bufferState{size: uint64(info.Size), usage: info.Usage}
	*buffer = h
	return vk.Success
}

func (d *Driver) GetBufferMemoryRequirements(device vk.Device, buffer vk.Buffer, req *vk.MemoryRequirements) {
	d.Calls = append(d.Calls, "GetBufferMemoryRequirements")
	st, ok := d.buffers[buffer]
	if !ok {
		d.violate("GetBufferMemoryRequirements on unknown buffer")
		return
	}
	req.Size = vk.DeviceSize(d.alignUp(st.size))
	req.Alignment = vk.DeviceSize(d.Alignment)
	req.MemoryTypeBits = d.MemoryTypeBits
}

func (d *Driver) DestroyBuffer(device vk.Device, buffer vk.Buffer) {
	d.Calls = append(d.Calls, "DestroyBuffer")
	if _, ok := d.buffers[buffer]; !ok {
		d.violate("DestroyBuffer on unknown buffer")
		return
	}
	if d.bufferInFlight(buffer) {
		d.violate("DestroyBuffer on a buffer used by pending work")
	}
	delete(d.buffers, buffer)
}

func (d *Driver) bufferInFlight(buffer vk.Buffer) bool {
	for _, p := range d.pending {
		for _, cb := range p.buffers {
			st := d.cmdBuffers[cb]
			if st == nil {
				continue
			}
			for _, c := range st.copies {
				if c.src == buffer || c.dst == buffer {
					return true
				}
			}
		}
	}
	return false
}

func (d *Driver) AllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo, memory *vk.DeviceMemory) vk.Result {
	if res, failed := d.call("AllocateMemory"); failed {
		return res
	}
	h := Handle[vk.DeviceMemory]()
	d.memory[h] = &memoryState{data: make([]byte, info.AllocationSize), typeIndex: info.MemoryTypeIndex}
	*memory = h
	return vk.Success
}

func (d *Driver) BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) vk.Result {
	if res, failed := d.call("BindBufferMemory"); failed {
		return res
	}
	b, ok := d.buffers[buffer]
	if !ok {
		d.violate("BindBufferMemory on unknown buffer")
		return vk.ErrorInitializationFailed
	}
	m, ok := d.memory[memory]
	if !ok {
		d.violate("BindBufferMemory with unknown memory")
		return vk.ErrorInitializationFailed
	}
	if b.memory != nil {
		d.violate("BindBufferMemory on a buffer already bound")
	}
	if uint64(offset)+b.size > uint64(len(m.data)) {
		d.violate("BindBufferMemory range exceeds allocation")
	}
	b.memory = memory
	b.offset = uint64(offset)
	return vk.Success
}

func (d *Driver) MapMemory(device vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize, data *unsafe.Pointer) vk.Result {
	if res, failed := d.call("MapMemory"); failed {
		return res
	}
	m, ok := d.memory[memory]
	if !ok {
		d.violate("MapMemory on unknown memory")
		return vk.ErrorMemoryMapFailed
	}
	if m.mapped {
		d.violate("MapMemory on memory that is already mapped")
	}
	if size == 0 || uint64(offset)+uint64(size) > uint64(len(m.data)) {
		return vk.ErrorMemoryMapFailed
	}
	m.mapped = true
	*data = unsafe.Pointer(&m.data[offset])
	return vk.Success
}

func (d *Driver) UnmapMemory(device vk.Device, memory vk.DeviceMemory) {
	d.Calls = append(d.Calls, "UnmapMemory")
	m, ok := d.memory[memory]
	if !ok || !m.mapped {
		d.violate("UnmapMemory on memory that is not mapped")
		return
	}
	m.mapped = false
}

func (d *Driver) FreeMemory(device vk.Device, memory vk.DeviceMemory) {
	d.Calls = append(d.Calls, "FreeMemory")
	if _, ok := d.memory[memory]; !ok {
		d.violate("FreeMemory on unknown memory")
		return
	}
	for _, b := range d.buffers {
		if b.memory == memory {
			d.violate("FreeMemory while a buffer bound to it is alive")
		}
	}
	delete(d.memory, memory)
}

func (d *Driver) CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo, layout *vk.DescriptorSetLayout) vk.Result {
	if res, failed := d.call("CreateDescriptorSetLayout"); failed {
		return res
	}
	h := Handle[vk.DescriptorSetLayout]()
	d.layouts[h] = true
	*layout = h
	return vk.Success
}

func (d *Driver) DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout) {
	d.Calls = append(d.Calls, "DestroyDescriptorSetLayout")
	delete(d.layouts, layout)
}

func (d *Driver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo, layout *vk.PipelineLayout) vk.Result {
	if res, failed := d.call("CreatePipelineLayout"); failed {
		return res
	}
	h := Handle[vk.PipelineLayout]()
	d.pipeLayout[h] = true
	*layout = h
	return vk.Success
}

func (d *Driver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	d.Calls = append(d.Calls, "DestroyPipelineLayout")
	delete(d.pipeLayout, layout)
}

func (d *Driver) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo, pool *vk.DescriptorPool) vk.Result {
	if res, failed := d.call("CreateDescriptorPool"); failed {
		return res
	}
	if int(info.PoolSizeCount) != len(info.PPoolSizes) {
		d.violate("CreateDescriptorPool count %d with %d sizes", info.PoolSizeCount, len(info.PPoolSizes))
	}
	h := Handle[vk.DescriptorPool]()
	d.pools[h] = &poolState{
		maxSets: info.MaxSets,
		sizes:   append([]vk.DescriptorPoolSize(nil), info.PPoolSizes...),
	}
	*pool = h
	return vk.Success
}

func (d *Driver) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {
	d.Calls = append(d.Calls, "DestroyDescriptorPool")
	if _, ok := d.pools[pool]; !ok {
		d.violate("DestroyDescriptorPool on unknown pool")
		return
	}
	delete(d.pools, pool)
	for set, owner := range d.sets {
		if owner == pool {
			delete(d.sets, set)
			delete(d.bindings, set)
		}
	}
}

func (d *Driver) AllocateDescriptorSets(device vk.Device, info *vk.DescriptorSetAllocateInfo, sets []vk.DescriptorSet) vk.Result {
	if res, failed := d.call("AllocateDescriptorSets"); failed {
		return res
	}
	p, ok := d.pools[info.DescriptorPool]
	if !ok {
		d.violate("AllocateDescriptorSets from unknown pool")
		return vk.ErrorInitializationFailed
	}
	n := info.DescriptorSetCount
	if p.allocated+n > p.maxSets {
		return vk.ErrorOutOfPoolMemory
	}
	for _, l := range info.PSetLayouts {
		if !d.layouts[l] {
			d.violate("AllocateDescriptorSets with unknown layout")
		}
	}
	p.allocated += n
	for i := uint32(0); i < n && int(i) < len(sets); i++ {
		h := Handle[vk.DescriptorSet]()
		d.sets[h] = info.DescriptorPool
		sets[i] = h
	}
	return vk.Success
}

func (d *Driver) UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet) {
	d.Calls = append(d.Calls, "UpdateDescriptorSets")
	for _, w := range writes {
		if _, ok := d.sets[w.DstSet]; !ok {
			d.violate("UpdateDescriptorSets on unknown set")
			continue
		}
		if d.setInFlight(w.DstSet) {
			d.violate("UpdateDescriptorSets on a set used by pending work")
		}
		w.PBufferInfo = append([]vk.DescriptorBufferInfo(nil), w.PBufferInfo...)
		d.Writes = append(d.Writes, w)
		if len(w.PBufferInfo) > 0 {
			if d.bindings[w.DstSet] == nil {
				d.bindings[w.DstSet] = make(map[uint32]vk.DescriptorBufferInfo)
			}
			d.bindings[w.DstSet][w.DstBinding] = w.PBufferInfo[0]
		}
	}
}

func (d *Driver) setInFlight(set vk.DescriptorSet) bool {
	for _, p := range d.pending {
		for _, cb := range p.buffers {
			st := d.cmdBuffers[cb]
			if st == nil {
				continue
			}
			for _, dr := range st.draws {
				for _, s := range dr.DescriptorSets {
					if s == set {
						return true
					}
				}
			}
		}
	}
	return false
}

func (d *Driver) CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo, pool *vk.CommandPool) vk.Result {
	if res, failed := d.call("CreateCommandPool"); failed {
		return res
	}
	h := Handle[vk.CommandPool]()
	d.cmdPools[h] = true
	*pool = h
	return vk.Success
}

func (d *Driver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	d.Calls = append(d.Calls, "DestroyCommandPool")
	delete(d.cmdPools, pool)
	for cb, st := range d.cmdBuffers {
		if st.pool == pool {
			delete(d.cmdBuffers, cb)
		}
	}
}

func (d *Driver) AllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo, buffers []vk.CommandBuffer) vk.Result {
	if res, failed := d.call("AllocateCommandBuffers"); failed {
		return res
	}
	if !d.cmdPools[info.CommandPool] {
		d.violate("AllocateCommandBuffers from unknown pool")
	}
	if info.Level != vk.CommandBufferLevelPrimary {
		d.violate("AllocateCommandBuffers with non primary level")
	}
	for i := uint32(0); i < info.CommandBufferCount && int(i) < len(buffers); i++ {
		h := Handle[vk.CommandBuffer]()
		d.cmdBuffers[h] = &commandBufferState{pool: info.CommandPool}
		buffers[i] = h
	}
	return vk.Success
}

func (d *Driver) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	d.Calls = append(d.Calls, "FreeCommandBuffers")
	for _, cb := range buffers {
		st, ok := d.cmdBuffers[cb]
		if !ok {
			d.violate("FreeCommandBuffers on unknown command buffer")
			continue
		}
		if st.pending {
			d.violate("FreeCommandBuffers on a command buffer that is still executing")
		}
		delete(d.cmdBuffers, cb)
	}
}

func (d *Driver) BeginCommandBuffer(cb vk.CommandBuffer, info *vk.CommandBufferBeginInfo) vk.Result {
	if res, failed := d.call("BeginCommandBuffer"); failed {
		return res
	}
	st, ok := d.cmdBuffers[cb]
	if !ok {
		d.violate("BeginCommandBuffer on unknown command buffer")
		return vk.ErrorInitializationFailed
	}
	if st.pending {
		d.violate("BeginCommandBuffer on a command buffer that is still executing")
	}
	if st.recording {
		d.violate("BeginCommandBuffer on a command buffer already recording")
	}
	st.recording = true
	st.executable = false
	st.inRenderPass = false
	st.flags = info.Flags
	st.commands = nil
	st.draws = nil
	st.copies = nil
	st.sets = nil
	st.vertex = nil
	st.pipeline = nil
	return vk.Success
}

func (d *Driver) EndCommandBuffer(cb vk.CommandBuffer) vk.Result {
	if res, failed := d.call("EndCommandBuffer"); failed {
		return res
	}
	st, ok := d.cmdBuffers[cb]
	if !ok || !st.recording {
		d.violate("EndCommandBuffer on a command buffer that is not recording")
		return vk.ErrorInitializationFailed
	}
	if st.inRenderPass {
		d.violate("EndCommandBuffer inside a render pass")
	}
	st.recording = false
	st.executable = true
	return vk.Success
}

func (d *Driver) CmdBeginRenderPass(cb vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents) {
	st := d.recording(cb, "CmdBeginRenderPass")
	if st.inRenderPass {
		d.violate("CmdBeginRenderPass inside a render pass")
	}
	st.inRenderPass = true
}

func (d *Driver) CmdEndRenderPass(cb vk.CommandBuffer) {
	st := d.recording(cb, "CmdEndRenderPass")
	if !st.inRenderPass {
		d.violate("CmdEndRenderPass outside a render pass")
	}
	st.inRenderPass = false
}

func (d *Driver) CmdBindPipeline(cb vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	st := d.recording(cb, "CmdBindPipeline")
	st.pipeline = pipeline
}

func (d *Driver) CmdSetViewport(cb vk.CommandBuffer, first uint32, viewports []vk.Viewport) {
	d.recording(cb, "CmdSetViewport")
}

func (d *Driver) CmdSetScissor(cb vk.CommandBuffer, first uint32, scissors []vk.Rect2D) {
	d.recording(cb, "CmdSetScissor")
}

func (d *Driver) CmdBindDescriptorSets(cb vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, sets []vk.DescriptorSet) {
	st := d.recording(cb, "CmdBindDescriptorSets")
	for _, s := range sets {
		if _, ok := d.sets[s]; !ok {
			d.violate("CmdBindDescriptorSets with unknown set")
		}
	}
	st.firstSet = firstSet
	st.sets = append([]vk.DescriptorSet(nil), sets...)
}

func (d *Driver) CmdBindVertexBuffers(cb vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	st := d.recording(cb, "CmdBindVertexBuffers")
	if len(buffers) != len(offsets) {
		d.violate("CmdBindVertexBuffers with %d buffers and %d offsets", len(buffers), len(offsets))
	}
	for _, b := range buffers {
		bs, ok := d.buffers[b]
		if !ok || bs.memory == nil {
			d.violate("CmdBindVertexBuffers with a buffer that is not bound to memory")
		}
	}
	st.vertex = append([]vk.Buffer(nil), buffers...)
}

func (d *Driver) CmdDraw(cb vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	st := d.recording(cb, "CmdDraw")
	if !st.inRenderPass {
		d.violate("CmdDraw outside a render pass")
	}
	dr := Draw{
		CommandBuffer:  cb,
		VertexCount:    vertexCount,
		InstanceCount:  instanceCount,
		FirstVertex:    firstVertex,
		FirstInstance:  firstInstance,
		FirstSet:       st.firstSet,
		DescriptorSets: append([]vk.DescriptorSet(nil), st.sets...),
		VertexBuffers:  append([]vk.Buffer(nil), st.vertex...),
		Pipeline:       st.pipeline,
	}
	st.draws = append(st.draws, dr)
	d.Draws = append(d.Draws, dr)
}

func (d *Driver) CmdCopyBuffer(cb vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	st := d.recording(cb, "CmdCopyBuffer")
	if st.inRenderPass {
		d.violate("CmdCopyBuffer inside a render pass")
	}
	sb, sok := d.buffers[src]
	db, dok := d.buffers[dst]
	if !sok || !dok || sb.memory == nil || db.memory == nil {
		d.violate("CmdCopyBuffer with a buffer that is not bound to memory")
		return
	}
	if sb.usage&vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit) == 0 {
		d.violate("CmdCopyBuffer source lacks transfer src usage")
	}
	if db.usage&vk.BufferUsageFlags(vk.BufferUsageTransferDstBit) == 0 {
		d.violate("CmdCopyBuffer destination lacks transfer dst usage")
	}
	for _, r := range regions {
		if r.Size == 0 || uint64(r.SrcOffset+r.Size) > sb.size || uint64(r.DstOffset+r.Size) > db.size {
			d.violate("CmdCopyBuffer region out of range")
			continue
		}
		st.copies = append(st.copies, copyOp{src: src, dst: dst, region: r})
	}
}

// applyCopy moves the bytes of a completed copy between the bound allocations.
func (d *Driver) applyCopy(c copyOp) {
	sb, sok := d.buffers[c.src]
	db, dok := d.buffers[c.dst]
	if !sok || !dok {
		d.violate("buffer destroyed before its copy completed")
		return
	}
	sm, dm := d.memory[sb.memory], d.memory[db.memory]
	if sm == nil || dm == nil {
		d.violate("memory freed before a copy completed")
		return
	}
	from := sb.offset + uint64(c.region.SrcOffset)
	to := db.offset + uint64(c.region.DstOffset)
	n := uint64(c.region.Size)
	copy(dm.data[to:to+n], sm.data[from:from+n])
}

func (d *Driver) CreateFence(device vk.Device, info *vk.FenceCreateInfo, fence *vk.Fence) vk.Result {
	if res, failed := d.call("CreateFence"); failed {
		return res
	}
	h := Handle[vk.Fence]()
	d.fences[h] = &fenceState{signaled: info.Flags&vk.FenceCreateFlags(vk.FenceCreateSignaledBit) != 0}
	*fence = h
	return vk.Success
}

func (d *Driver) DestroyFence(device vk.Device, fence vk.Fence) {
	d.Calls = append(d.Calls, "DestroyFence")
	for _, p := range d.pending {
		if p.fence == fence {
			d.violate("DestroyFence on a fence with pending work")
		}
	}
	delete(d.fences, fence)
}

func (d *Driver) WaitForFences(device vk.Device, fences []vk.Fence, waitAll vk.Bool32, timeout uint64) vk.Result {
	if res, failed := d.call("WaitForFences"); failed {
		return res
	}
	for _, f := range fences {
		st, ok := d.fences[f]
		if !ok {
			d.violate("WaitForFences on unknown fence")
			return vk.ErrorInitializationFailed
		}
		if st.signaled {
			continue
		}
		if !d.completeThrough(f) {
			d.violate("WaitForFences on a fence no pending work will signal")
			return vk.Timeout
		}
	}
	return vk.Success
}

// completeThrough retires pending submissions in order up to and including the first one
// that signals fence.
func (d *Driver) completeThrough(fence vk.Fence) bool {
	for i, p := range d.pending {
		if p.fence == fence {
			for _, q := range d.pending[:i+1] {
				d.retire(q)
			}
			d.pending = d.pending[i+1:]
			return true
		}
	}
	return false
}

func (d *Driver) retire(p pendingSubmit) {
	for _, cb := range p.buffers {
		if st, ok := d.cmdBuffers[cb]; ok {
			st.pending = false
			for _, c := range st.copies {
				d.applyCopy(c)
			}
		}
	}
	if p.fence != nil {
		if st, ok := d.fences[p.fence]; ok {
			st.signaled = true
			st.signals++
			d.Calls = append(d.Calls, "SignalFence")
		}
	}
}

func (d *Driver) completeAll() {
	for _, p := range d.pending {
		d.retire(p)
	}
	d.pending = nil
}

func (d *Driver) ResetFences(device vk.Device, fences []vk.Fence) vk.Result {
	if res, failed := d.call("ResetFences"); failed {
		return res
	}
	for _, f := range fences {
		st, ok := d.fences[f]
		if !ok {
			d.violate("ResetFences on unknown fence")
			continue
		}
		for _, p := range d.pending {
			if p.fence == f {
				d.violate("ResetFences on a fence with pending work")
			}
		}
		st.signaled = false
	}
	return vk.Success
}

func (d *Driver) CreateSemaphore(device vk.Device, info *vk.SemaphoreCreateInfo, semaphore *vk.Semaphore) vk.Result {
	if res, failed := d.call("CreateSemaphore"); failed {
		return res
	}
	h := Handle[vk.Semaphore]()
	d.semaphores[h] = false
	*semaphore = h
	return vk.Success
}

func (d *Driver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	d.Calls = append(d.Calls, "DestroySemaphore")
	delete(d.semaphores, semaphore)
}

func (d *Driver) signal(s vk.Semaphore, op string) {
	signaled, ok := d.semaphores[s]
	if !ok {
		d.violate("%s signals unknown semaphore", op)
		return
	}
	if signaled {
		d.violate("%s signals a semaphore that is already signaled", op)
	}
	d.semaphores[s] = true
}

func (d *Driver) consume(s vk.Semaphore, op string) {
	signaled, ok := d.semaphores[s]
	if !ok {
		d.violate("%s waits on unknown semaphore", op)
		return
	}
	if !signaled {
		d.violate("%s waits on a semaphore nothing signaled", op)
	}
	d.semaphores[s] = false
}

func (d *Driver) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result {
	if res, failed := d.call("QueueSubmit"); failed {
		return res
	}
	if fence != nil {
		st, ok := d.fences[fence]
		if !ok {
			d.violate("QueueSubmit with unknown fence")
		} else if st.signaled {
			d.violate("QueueSubmit with a fence that is still signaled")
		}
	}
	var all []vk.CommandBuffer
	for _, s := range submits {
		if int(s.CommandBufferCount) != len(s.PCommandBuffers) || int(s.WaitSemaphoreCount) != len(s.PWaitSemaphores) ||
			int(s.SignalSemaphoreCount) != len(s.PSignalSemaphores) {
			d.violate("QueueSubmit counts do not match slices")
		}
		if len(s.PWaitDstStageMask) != len(s.PWaitSemaphores) {
			d.violate("QueueSubmit needs one wait stage per wait semaphore")
		}
		for _, w := range s.PWaitSemaphores {
			d.consume(w, "QueueSubmit")
		}
		for _, cb := range s.PCommandBuffers {
			st, ok := d.cmdBuffers[cb]
			if !ok {
				d.violate("QueueSubmit with unknown command buffer")
				continue
			}
			if !st.executable {
				d.violate("QueueSubmit with a command buffer that is not executable")
			}
			if st.pending {
				d.violate("QueueSubmit with a command buffer that is still executing")
			}
			st.pending = true
			if st.flags&vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit) != 0 {
				st.executable = false
			}
		}
		for _, sig := range s.PSignalSemaphores {
			d.signal(sig, "QueueSubmit")
		}
		all = append(all, s.PCommandBuffers...)
		d.Submits = append(d.Submits, Submit{
			Queue:            queue,
			CommandBuffers:   append([]vk.CommandBuffer(nil), s.PCommandBuffers...),
			WaitSemaphores:   append([]vk.Semaphore(nil), s.PWaitSemaphores...),
			WaitStages:       append([]vk.PipelineStageFlags(nil), s.PWaitDstStageMask...),
			SignalSemaphores: append([]vk.Semaphore(nil), s.PSignalSemaphores...),
			Fence:            fence,
		})
	}
	d.pending = append(d.pending, pendingSubmit{buffers: all, fence: fence})
	return vk.Success
}

func (d *Driver) QueueWaitIdle(queue vk.Queue) vk.Result {
	if res, failed := d.call("QueueWaitIdle"); failed {
		return res
	}
	d.completeAll()
	return vk.Success
}

func (d *Driver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore, fence vk.Fence, index *uint32) vk.Result {
	if res, failed := d.call("AcquireNextImage"); failed {
		return res
	}
	if semaphore != nil {
		d.signal(semaphore, "AcquireNextImage")
	}
	n := d.ImageCount
	if n == 0 {
		n = 1
	}
	*index = d.nextImage % n
	d.nextImage++
	return vk.Success
}

func (d *Driver) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	if res, failed := d.call("QueuePresent"); failed {
		return res
	}
	for _, w := range info.PWaitSemaphores {
		d.consume(w, "QueuePresent")
	}
	if int(info.SwapchainCount) != len(info.PSwapchains) || len(info.PSwapchains) != len(info.PImageIndices) {
		d.violate("QueuePresent counts do not match slices")
	}
	d.Presents = append(d.Presents, Present{
		WaitSemaphores: append([]vk.Semaphore(nil), info.PWaitSemaphores...),
		Swapchains:     append([]vk.Swapchain(nil), info.PSwapchains...),
		ImageIndices:   append([]uint32(nil), info.PImageIndices...),
	})
	return vk.Success
}

func (d *Driver) DeviceWaitIdle(device vk.Device) vk.Result {
	if res, failed := d.call("DeviceWaitIdle"); failed {
		return res
	}
	d.completeAll()
	return vk.Success
}
