package render

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// FindMemoryType returns the first memory type allowed by typeFilter whose
// property flags contain all of want.
func FindMemoryType(types []vk.MemoryPropertyFlags, typeFilter uint32, want vk.MemoryPropertyFlags) (uint32, error) {
	for i, flags := range types {
		if i >= 32 {
			break
		}
		if typeFilter&(1<<uint(i)) != 0 && flags&want == want {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("%w: filter %#b, flags %#x", ErrMemoryTypeNotFound, typeFilter, want)
}

// hostVisibleBuffer is a buffer backed by host-visible, host-coherent
// memory and filled once through a mapping.
type hostVisibleBuffer struct {
	buffer vk.Buffer
	memory vk.DeviceMemory
	size   vk.DeviceSize
}

func newHostVisibleBuffer(dc *DeviceContext, usage vk.BufferUsageFlags, data []byte) (_ *hostVisibleBuffer, err error) {
	drv := dc.drv
	b := &hostVisibleBuffer{size: vk.DeviceSize(len(data))}
	defer func() {
		if err != nil {
			b.destroy(dc)
		}
	}()

	if b.buffer, err = drv.CreateBuffer(dc.device, b.size, usage); err != nil {
		return nil, fmt.Errorf("create buffer: %w", err)
	}
	size, typeBits := drv.BufferMemoryRequirements(dc.device, b.buffer)
	want := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	typeIndex, err := FindMemoryType(drv.MemoryTypes(dc.adapter), typeBits, want)
	if err != nil {
		return nil, err
	}
	if b.memory, err = drv.AllocateMemory(dc.device, size, typeIndex); err != nil {
		return nil, fmt.Errorf("allocate buffer memory: %w", err)
	}
	if err = drv.BindBufferMemory(dc.device, b.buffer, b.memory); err != nil {
		return nil, fmt.Errorf("bind buffer memory: %w", err)
	}
	if err = drv.Upload(dc.device, b.memory, data); err != nil {
		return nil, fmt.Errorf("upload buffer data: %w", err)
	}
	return b, nil
}

func (b *hostVisibleBuffer) destroy(dc *DeviceContext) {
	if b == nil {
		return
	}
	if b.memory != nil {
		dc.drv.FreeMemory(dc.device, b.memory)
		b.memory = nil
	}
	if b.buffer != nil {
		dc.drv.DestroyBuffer(dc.device, b.buffer)
		b.buffer = nil
	}
}
