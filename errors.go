package vkgrid

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ErrFatalGraphics marks every failure reported by the Vulkan implementation. Nothing in this
// package retries or recovers from one, callers are expected to shut down.
var ErrFatalGraphics = errors.New("fatal graphics error")

var (
	// ErrNoMemoryType is returned when no memory type satisfies both a buffer's type filter
	// and the requested property flags.
	ErrNoMemoryType = errors.New("no compatible memory type")
	// ErrNoPhysicalDevice is returned when no discrete or integrated GPU is present.
	ErrNoPhysicalDevice = errors.New("no suitable physical device")
	// ErrNoQueueFamily is returned when no queue family supports graphics, transfer and presentation.
	ErrNoQueueFamily = errors.New("no suitable queue family")
	// ErrNoSurfaceFormat is returned when the surface reports no formats at all.
	ErrNoSurfaceFormat = errors.New("no surface format")
	// ErrSizeMismatch is returned when a buffer is overwritten with a payload of a different size.
	ErrSizeMismatch = errors.New("payload size does not match buffer size")
	// ErrEmptyBuffer is returned when a buffer is created from an empty payload.
	ErrEmptyBuffer = errors.New("buffer payload is empty")
	// ErrIncompleteDescriptor is returned by DescriptorBuilder.Build when a required field was never set.
	ErrIncompleteDescriptor = errors.New("descriptor description is incomplete")
	// ErrFrameState is returned when a frame operation is called out of order.
	ErrFrameState = errors.New("frame operation out of order")
	// ErrDestroyed is returned when an object is used after Destroy.
	ErrDestroyed = errors.New("object already destroyed")
)

// IsFatal reports whether err originated from the Vulkan implementation.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatalGraphics)
}

// Must panics if err is non nil, it exists for setup code in small programs where
// there is nothing sensible to do on failure.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// resultError converts a Vulkan result into an error marked with ErrFatalGraphics,
// annotated with the operation that produced it. Success yields nil.
func resultError(res vk.Result, op string) error {
	if res == vk.Success {
		return nil
	}
	cause := vk.Error(res)
	if cause == nil {
		cause = errors.Newf("vulkan result %d", int32(res))
	}
	return errors.Mark(errors.Wrapf(cause, "%s", op), ErrFatalGraphics)
}

// presentableResult treats a suboptimal swapchain as success, the frame still displays.
func presentableResult(res vk.Result, op string) error {
	if res == vk.Suboptimal {
		logger.WithField("op", op).Debug("swapchain suboptimal")
		return nil
	}
	return resultError(res, op)
}
