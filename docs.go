/*
Package vkgrid renders grid based games with Vulkan. It owns the parts of a Vulkan renderer
that need care: host visible buffers, per draw descriptor bindings, the frame cycle with its
fence and semaphores, and one shot command submission.

# Objects

	HostBuffer	a buffer and its host visible, host coherent memory, created and destroyed as a pair
	DeviceBuffer	a buffer in device local memory, filled through a staging buffer and a one shot copy
	DescriptorBinding	a private descriptor pool with one set pointing at one uniform buffer range
	FrameController	acquires a swapchain image, records a render pass, submits and presents
	Drawable	anything that records its own bind and draw commands into a frame
	GraphicsApp	creates the instance, device, swapchain, pipeline and FrameController for a glfw window

# A frame

The FrameController keeps a single frame in flight. BeginFrame waits for the previous
frame's fence, acquires the next image, resets the fence, begins the command buffer and the
render pass, binds the pipeline and sets the viewport and scissor. Drawables then record
into CurrentCommandBuffer, or are handed to Record. EndFrame ends the pass, submits the
command buffer waiting on the acquired image and signaling the render finished semaphore and
the fence, and presents.

	for !window.ShouldClose() {
		glfw.PollEvents()
		if err := app.Frames.DrawFrame(grid); err != nil {
			logrus.WithError(err).Fatal("drawing frame")
		}
	}

# Errors

Every Vulkan failure is returned marked with ErrFatalGraphics, there is no recovery path
inside the package. Misuse such as overwriting a buffer with a payload of another size, or
calling frame operations out of order, returns ErrSizeMismatch or ErrFrameState instead of
reaching the driver.

# Testing

All calls that the buffer, descriptor and frame code make go through the Driver interface.
The vkgtest package implements it in memory, recording calls so tests can check ordering
and contents without a GPU.
*/
package vkgrid
