package render

import (
	"fmt"
	"log/slog"
	"math"

	vk "github.com/vulkan-go/vulkan"
)

const (
	// MaxFramesInFlight is the number of frame slots. At most this many
	// frames are outstanding on the queue at once.
	MaxFramesInFlight = 2

	// waitForever is the timeout for the throttle and hazard waits.
	waitForever uint64 = math.MaxUint64
)

// frameSlot is one reusable set of synchronization primitives.
type frameSlot struct {
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence
}

// FrameScheduler drives acquire, submit and present for every paint. It
// is used from a single goroutine.
type FrameScheduler struct {
	dc     *DeviceContext
	sc     *SwapchainState
	fr     *FrameResources
	log    *slog.Logger
	slots  []frameSlot
	frame  int
	frames uint64
	// imageFences[i] is the fence of the slot that last submitted work for
	// swapchain image i, or nil if the image has not been used yet.
	imageFences []vk.Fence
	// failed is set when a frame fails after acquiring its image. The slot's
	// fence or semaphore may then never signal, so no further frame is run.
	failed error
}

// NewFrameScheduler creates the per-slot semaphores and fences. Fences
// start signaled so the first wait on each slot returns immediately.
func NewFrameScheduler(dc *DeviceContext, sc *SwapchainState, fr *FrameResources) (_ *FrameScheduler, err error) {
	if fr.Len() != sc.ImageCount() {
		return nil, fmt.Errorf("have %d command buffers for %d swapchain images", fr.Len(), sc.ImageCount())
	}
	drv := dc.drv
	fs := &FrameScheduler{
		dc:          dc,
		sc:          sc,
		fr:          fr,
		log:         dc.log,
		slots:       make([]frameSlot, 0, MaxFramesInFlight),
		imageFences: make([]vk.Fence, sc.ImageCount()),
	}
	defer func() {
		if err != nil {
			fs.Destroy()
		}
	}()

	for i := 0; i < MaxFramesInFlight; i++ {
		var slot frameSlot
		// append before checking errors so a partial slot is still destroyed
		slot.imageAvailable, err = drv.CreateSemaphore(dc.device)
		if err == nil {
			slot.renderFinished, err = drv.CreateSemaphore(dc.device)
		}
		if err == nil {
			slot.inFlight, err = drv.CreateFence(dc.device, true)
		}
		fs.slots = append(fs.slots, slot)
		if err != nil {
			return nil, fmt.Errorf("create sync objects for frame slot %d: %w", i, err)
		}
	}
	return fs, nil
}

// FrameIndex is the slot the next DrawFrame uses.
func (fs *FrameScheduler) FrameIndex() int { return fs.frame }

// Frames is the number of frames presented so far.
func (fs *FrameScheduler) Frames() uint64 { return fs.frames }

// DrawFrame runs one acquire, submit, present cycle. The frame slot
// advances once its work is submitted, whether or not presentation then
// succeeds. An ErrSurfaceOutOfDate result means the frame was dropped and
// the loop can continue. Any failure between acquire and submit is final:
// every later call returns it without touching the device.
func (fs *FrameScheduler) DrawFrame() error {
	if fs.failed != nil {
		return fs.failed
	}
	drv, device := fs.dc.drv, fs.dc.device
	current := fs.frame
	slot := &fs.slots[current]

	// throttle: the previous submission from this slot must be done
	if err := drv.WaitFence(device, slot.inFlight, waitForever); err != nil {
		return fmt.Errorf("wait for frame slot %d: %w", current, err)
	}

	imageIndex, err := drv.AcquireNextImage(device, fs.sc.Swapchain(), waitForever, slot.imageAvailable)
	if err != nil {
		return fmt.Errorf("acquire image: %w", err)
	}
	if int(imageIndex) >= len(fs.imageFences) {
		return fs.fail(fmt.Errorf("acquire image: %w: index %d out of %d images",
			ErrDriverCallFailed, imageIndex, len(fs.imageFences)))
	}

	// hazard: the image may still be in use by another slot's frame
	if prev := fs.imageFences[imageIndex]; prev != nil && prev != slot.inFlight {
		if err := drv.WaitFence(device, prev, waitForever); err != nil {
			return fs.fail(fmt.Errorf("wait for image %d: %w", imageIndex, err))
		}
	}

	if err := drv.ResetFence(device, slot.inFlight); err != nil {
		return fs.fail(fmt.Errorf("reset fence of frame slot %d: %w", current, err))
	}
	err = drv.Submit(fs.dc.queue, SubmitRequest{
		WaitSemaphore:   slot.imageAvailable,
		WaitStage:       vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		CommandBuffer:   fs.fr.CommandBuffer(imageIndex),
		SignalSemaphore: slot.renderFinished,
		Fence:           slot.inFlight,
	})
	if err != nil {
		return fs.fail(fmt.Errorf("submit image %d: %w", imageIndex, err))
	}
	fs.imageFences[imageIndex] = slot.inFlight
	fs.frame = (current + 1) % MaxFramesInFlight

	err = drv.Present(fs.dc.queue, PresentRequest{
		WaitSemaphore: slot.renderFinished,
		Swapchain:     fs.sc.Swapchain(),
		ImageIndex:    imageIndex,
	})
	if err != nil {
		return fmt.Errorf("present image %d: %w", imageIndex, err)
	}

	fs.log.Debug("frame presented", "slot", current, "image", imageIndex, "frame", fs.frames)
	fs.frames++
	return nil
}

func (fs *FrameScheduler) fail(err error) error {
	fs.failed = err
	fs.log.Error("frame scheduler stopped", "slot", fs.frame, "err", err)
	return err
}

// Destroy releases the synchronization objects. The device must be idle.
func (fs *FrameScheduler) Destroy() {
	if fs == nil {
		return
	}
	drv, device := fs.dc.drv, fs.dc.device
	for i := len(fs.slots) - 1; i >= 0; i-- {
		s := fs.slots[i]
		if s.inFlight != nil {
			drv.DestroyFence(device, s.inFlight)
		}
		if s.renderFinished != nil {
			drv.DestroySemaphore(device, s.renderFinished)
		}
		if s.imageAvailable != nil {
			drv.DestroySemaphore(device, s.imageAvailable)
		}
	}
	fs.slots = nil
	fs.imageFences = nil
}
