package render

import (
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"
)

// QueueFamily is the only queue family the renderer uses. Family 0 is
// assumed to support both graphics and presentation; the swapchain
// bootstrap checks the presentation half and warns when it does not hold.
const QueueFamily uint32 = 0

// DeviceContext owns the adapter, the logical device and its one queue.
// It is immutable once created.
type DeviceContext struct {
	drv     Driver
	log     *slog.Logger
	adapter vk.PhysicalDevice
	device  vk.Device
	queue   vk.Queue
}

// NewDeviceContext picks the first enumerated adapter and creates a logical
// device with a single queue from QueueFamily.
func NewDeviceContext(drv Driver, log *slog.Logger) (*DeviceContext, error) {
	if log == nil {
		log = slog.Default()
	}
	adapters, err := drv.EnumerateAdapters()
	if err != nil {
		return nil, fmt.Errorf("enumerate adapters: %w", err)
	}
	if len(adapters) == 0 {
		return nil, ErrNoSuitableDevice
	}
	dc := &DeviceContext{drv: drv, log: log, adapter: adapters[0]}
	dc.device, err = drv.CreateDevice(dc.adapter, QueueFamily)
	if err != nil {
		return nil, fmt.Errorf("create device: %w", err)
	}
	dc.queue = drv.GetQueue(dc.device, QueueFamily)
	log.Info("device created", "adapters", len(adapters), "queue_family", QueueFamily)
	return dc, nil
}

func (dc *DeviceContext) Device() vk.Device { return dc.device }
func (dc *DeviceContext) Queue() vk.Queue   { return dc.queue }

// WaitIdle blocks until the queue has drained all submitted work.
func (dc *DeviceContext) WaitIdle() error {
	if dc.device == nil {
		return nil
	}
	return dc.drv.DeviceWaitIdle(dc.device)
}

// Destroy releases the logical device. Everything created from it must
// already be gone.
func (dc *DeviceContext) Destroy() {
	if dc == nil || dc.device == nil {
		return
	}
	dc.drv.DestroyDevice(dc.device)
	dc.device = nil
	dc.queue = nil
	dc.log.Info("device destroyed")
}
