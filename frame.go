package vkgrid

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// RenderTarget is everything a frame renders into and with: the queue it submits and presents
// on, the swapchain and its framebuffers, the render pass, and the graphics pipeline bound at
// the start of every frame.
type RenderTarget struct {
	Queue          *Queue
	Swapchain      vk.Swapchain
	Framebuffers   []vk.Framebuffer
	RenderPass     vk.RenderPass
	Pipeline       vk.Pipeline
	PipelineLayout *PipelineLayout
	Extent         vk.Extent2D
	Viewport       vk.Viewport
	Scissor        vk.Rect2D
	ClearColor     [4]float32
}

// FullViewport covers extent with the standard 0..1 depth range.
func FullViewport(extent vk.Extent2D) vk.Viewport {
	return vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// FullScissor covers extent.
func FullScissor(extent vk.Extent2D) vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
}

// FrameState is where a FrameController is in its frame cycle.
type FrameState int

const (
	FrameIdle FrameState = iota
	FrameAcquiring
	FrameRecording
	FrameSubmitted
	FramePresented
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquiring:
		return "acquiring"
	case FrameRecording:
		return "recording"
	case FrameSubmitted:
		return "submitted"
	case FramePresented:
		return "presented"
	}
	return "unknown"
}

type frameSync struct {
	imageAvailable *Semaphore
	renderFinished *Semaphore
	inFlight       *Fence
}

// FrameController drives the acquire, record, submit and present cycle with a single
// command buffer and a single set of synchronization objects, so at most one frame is in
// flight. The in flight fence is created signaled, which lets the very first BeginFrame
// pass its wait.
type FrameController struct {
	Device        *Device
	Pool          *CommandPool
	Target        *RenderTarget
	CommandBuffer *CommandBuffer

	sync       frameSync
	state      FrameState
	imageIndex uint32
	frames     uint64
	destroyed  bool
}

// CreateFrameController allocates the frame command buffer from pool and creates the frame
// synchronization objects.
func (d *Device) CreateFrameController(pool *CommandPool, target *RenderTarget) (*FrameController, error) {
	f := &FrameController{
		Device: d,
		Pool:   pool,
		Target: target,
	}

	var err error
	if f.CommandBuffer, err = pool.AllocateBuffer(); err != nil {
		return nil, err
	}
	if f.sync.imageAvailable, err = d.CreateSemaphore(); err != nil {
		f.release()
		return nil, err
	}
	if f.sync.renderFinished, err = d.CreateSemaphore(); err != nil {
		f.release()
		return nil, err
	}
	if f.sync.inFlight, err = d.CreateFence(true); err != nil {
		f.release()
		return nil, err
	}

	return f, nil
}

// State reports where the controller is in the frame cycle.
func (f *FrameController) State() FrameState {
	return f.state
}

// ImageIndex is the swapchain image acquired by the last BeginFrame.
func (f *FrameController) ImageIndex() uint32 {
	return f.imageIndex
}

// FrameCount is the number of frames presented so far.
func (f *FrameController) FrameCount() uint64 {
	return f.frames
}

// CurrentCommandBuffer is the frame command buffer, only meaningful between BeginFrame and
// EndFrame.
func (f *FrameController) CurrentCommandBuffer() *CommandBuffer {
	return f.CommandBuffer
}

func (f *FrameController) expect(s FrameState, op string) error {
	if f.destroyed {
		return errors.Wrap(ErrDestroyed, op)
	}
	if f.state != s {
		return errors.Wrapf(ErrFrameState, "%s while %s", op, f.state)
	}
	return nil
}

// BeginFrame waits for the previous frame's command buffer to finish executing, acquires the
// next swapchain image, then begins recording: the render pass is begun on that image's
// framebuffer with the clear color, the pipeline is bound and the viewport and scissor set.
func (f *FrameController) BeginFrame() error {
	if err := f.expect(FrameIdle, "begin frame"); err != nil {
		return err
	}
	f.state = FrameAcquiring

	if err := f.sync.inFlight.Wait(); err != nil {
		return errors.Wrap(err, "waiting for previous frame")
	}

	var index uint32
	res := f.Device.Driver.AcquireNextImage(f.Device.VKDevice, f.Target.Swapchain, vk.MaxUint64,
		f.sync.imageAvailable.VKSemaphore, vk.NullFence, &index)
	if err := presentableResult(res, "acquire next image"); err != nil {
		return err
	}
	if int(index) >= len(f.Target.Framebuffers) {
		return errors.Mark(errors.Newf("acquired image %d but only %d framebuffers", index, len(f.Target.Framebuffers)), ErrFatalGraphics)
	}
	f.imageIndex = index

	if err := f.sync.inFlight.Reset(); err != nil {
		return err
	}

	cb := f.CommandBuffer
	if err := cb.Begin(); err != nil {
		return err
	}

	clearValue := vk.ClearValue{}
	clearValue.SetColor(f.Target.ClearColor[:])

	cb.CmdBeginRenderPass(&vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      f.Target.RenderPass,
		Framebuffer:     f.Target.Framebuffers[index],
		RenderArea:      FullScissor(f.Target.Extent),
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{clearValue},
	})
	cb.CmdBindGraphicsPipeline(f.Target.Pipeline)
	cb.CmdSetViewport(f.Target.Viewport)
	cb.CmdSetScissor(f.Target.Scissor)

	f.state = FrameRecording
	return nil
}

// Record has each drawable record its commands into the current frame.
func (f *FrameController) Record(drawables ...Drawable) error {
	if err := f.expect(FrameRecording, "record"); err != nil {
		return err
	}
	for _, d := range drawables {
		if err := d.Draw(f.CommandBuffer, f.Target.PipelineLayout); err != nil {
			return err
		}
	}
	return nil
}

// EndFrame ends the render pass and the command buffer, submits it to wait on the acquired
// image and signal both the render finished semaphore and the in flight fence, then presents
// the image once rendering has finished.
func (f *FrameController) EndFrame() error {
	if err := f.expect(FrameRecording, "end frame"); err != nil {
		return err
	}

	cb := f.CommandBuffer
	cb.CmdEndRenderPass()
	if err := cb.End(); err != nil {
		return err
	}

	if err := f.Target.Queue.SubmitFrame(cb, f.sync.imageAvailable, f.sync.renderFinished, f.sync.inFlight); err != nil {
		return err
	}
	f.state = FrameSubmitted

	if err := f.Target.Queue.Present(f.Target.Swapchain, f.imageIndex, f.sync.renderFinished); err != nil {
		return err
	}
	f.state = FramePresented

	f.frames++
	f.state = FrameIdle
	return nil
}

// DrawFrame runs one whole frame with the given drawables.
func (f *FrameController) DrawFrame(drawables ...Drawable) error {
	if err := f.BeginFrame(); err != nil {
		return err
	}
	if err := f.Record(drawables...); err != nil {
		return err
	}
	return f.EndFrame()
}

func (f *FrameController) release() {
	if f.sync.inFlight != nil {
		f.sync.inFlight.Destroy()
		f.sync.inFlight = nil
	}
	if f.sync.renderFinished != nil {
		f.sync.renderFinished.Destroy()
		f.sync.renderFinished = nil
	}
	if f.sync.imageAvailable != nil {
		f.sync.imageAvailable.Destroy()
		f.sync.imageAvailable = nil
	}
	if f.CommandBuffer != nil {
		f.Pool.FreeBuffer(f.CommandBuffer)
		f.CommandBuffer = nil
	}
}

// Destroy waits for the device to go idle and releases the synchronization objects and the
// frame command buffer. Calling it again does nothing.
func (f *FrameController) Destroy() {
	if f.destroyed {
		return
	}
	f.destroyed = true
	if err := f.Device.WaitIdle(); err != nil {
		logger.WithError(err).Error("waiting for device before frame teardown")
	}
	f.release()
}
