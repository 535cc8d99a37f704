package vkgrid

import (
	"github.com/cockroachdb/errors"
)

// BeginTransient allocates a fresh primary command buffer from the shared pool and begins it
// for a single submission.
func (f *FrameController) BeginTransient() (*CommandBuffer, error) {
	if f.destroyed {
		return nil, errors.Wrap(ErrDestroyed, "begin transient")
	}
	cb, err := f.Pool.AllocateBuffer()
	if err != nil {
		return nil, err
	}
	if err := cb.BeginOneTime(); err != nil {
		f.Pool.FreeBuffer(cb)
		return nil, err
	}
	return cb, nil
}

// EndTransient ends cb, submits it with no synchronization objects and blocks until the queue
// is idle, then frees it. When it returns without error everything recorded into cb has
// finished executing.
func (f *FrameController) EndTransient(cb *CommandBuffer) error {
	if cb == nil {
		return errors.New("end transient: nil command buffer")
	}
	if err := cb.End(); err != nil {
		f.Pool.FreeBuffer(cb)
		return err
	}
	if err := f.Target.Queue.Submit(cb); err != nil {
		f.Pool.FreeBuffer(cb)
		return errors.Wrap(err, "transient submission")
	}
	// A failed wait leaves cb executing, it is reclaimed with the pool.
	if err := f.Target.Queue.WaitIdle(); err != nil {
		return errors.Wrap(err, "transient submission")
	}
	f.Pool.FreeBuffer(cb)
	return nil
}

// RunTransient records with record into a transient command buffer and executes it
// synchronously.
func (f *FrameController) RunTransient(record func(cb *CommandBuffer) error) error {
	cb, err := f.BeginTransient()
	if err != nil {
		return err
	}
	if err := record(cb); err != nil {
		f.Pool.FreeBuffer(cb)
		return err
	}
	return f.EndTransient(cb)
}
