package render

import (
	"fmt"
	"log/slog"
	"math"

	vk "github.com/vulkan-go/vulkan"
)

const (
	// RequestedImageCount is the swapchain length asked for. The adapter may
	// hand back more; the returned count is what every per-image array uses.
	RequestedImageCount uint32 = 2

	DefaultWidth  uint32 = 1280
	DefaultHeight uint32 = 720

	// SwapchainFormat is used for the swapchain images, their views and the
	// render pass color attachment.
	SwapchainFormat = vk.FormatR8g8b8a8Unorm

	// extentFromWindow is the "use the window size" sentinel an adapter
	// reports in place of a current extent.
	extentFromWindow = math.MaxUint32
)

// SurfaceFactory binds the platform window to a drawable surface.
type SurfaceFactory func() (vk.Surface, error)

// SwapchainDimensions describes the size and format of the swapchain.
type SwapchainDimensions struct {
	Width  uint32
	Height uint32
	Format vk.Format
}

// ChoosePresentMode picks the immediate (non-vsynced) mode. There is no
// fallback to the vsynced modes.
func ChoosePresentMode(modes []vk.PresentMode) (vk.PresentMode, error) {
	for _, mode := range modes {
		if mode == vk.PresentModeImmediate {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: adapter offers %d present modes", ErrUnsupportedPresentMode, len(modes))
}

// ChooseExtent uses the adapter's current extent unless it reports the
// window-size sentinel, in which case the fallback is used.
func ChooseExtent(caps SurfaceCapabilities, fallback vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width == extentFromWindow || caps.CurrentExtent.Height == extentFromWindow {
		return fallback
	}
	return caps.CurrentExtent
}

// ChooseImageCount clamps RequestedImageCount to the range the adapter
// supports. A MaxImageCount of 0 means there is no upper bound.
func ChooseImageCount(caps SurfaceCapabilities) uint32 {
	n := RequestedImageCount
	if n < caps.MinImageCount {
		n = caps.MinImageCount
	}
	if caps.MaxImageCount > 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}

// SwapchainState owns the surface, the swapchain and one view per image.
// The image count never changes after creation.
type SwapchainState struct {
	dc        *DeviceContext
	log       *slog.Logger
	surface   vk.Surface
	swapchain vk.Swapchain
	extent    vk.Extent2D
	mode      vk.PresentMode
	images    []vk.Image
	views     []vk.ImageView
}

// NewSwapchainState creates the surface through newSurface and negotiates
// a swapchain on it. On failure everything created so far is released.
func NewSwapchainState(dc *DeviceContext, newSurface SurfaceFactory, fallback vk.Extent2D) (_ *SwapchainState, err error) {
	drv := dc.drv
	sc := &SwapchainState{dc: dc, log: dc.log}
	defer func() {
		if err != nil {
			sc.Destroy()
		}
	}()

	if sc.surface, err = newSurface(); err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	supported, err := drv.SurfaceSupport(dc.adapter, QueueFamily, sc.surface)
	if err != nil {
		return nil, fmt.Errorf("query surface support: %w", err)
	}
	if !supported {
		// TODO: search the queue families for one that presents instead of
		// assuming family 0 does.
		sc.log.Warn("queue family does not report presentation support", "queue_family", QueueFamily)
	}

	caps, err := drv.SurfaceCapabilities(dc.adapter, sc.surface)
	if err != nil {
		return nil, fmt.Errorf("query surface capabilities: %w", err)
	}
	modes, err := drv.SurfacePresentModes(dc.adapter, sc.surface)
	if err != nil {
		return nil, fmt.Errorf("query present modes: %w", err)
	}
	if sc.mode, err = ChoosePresentMode(modes); err != nil {
		return nil, err
	}
	sc.extent = ChooseExtent(caps, fallback)

	sc.swapchain, err = drv.CreateSwapchain(dc.device, SwapchainRequest{
		Surface:       sc.surface,
		MinImageCount: ChooseImageCount(caps),
		Format:        SwapchainFormat,
		Extent:        sc.extent,
		PresentMode:   sc.mode,
		QueueFamily:   QueueFamily,
	})
	if err != nil {
		return nil, fmt.Errorf("create swapchain: %w", err)
	}
	if sc.images, err = drv.SwapchainImages(dc.device, sc.swapchain); err != nil {
		return nil, fmt.Errorf("get swapchain images: %w", err)
	}
	if len(sc.images) == 0 {
		return nil, fmt.Errorf("get swapchain images: %w: swapchain has no images", ErrDriverCallFailed)
	}

	sc.views = make([]vk.ImageView, 0, len(sc.images))
	for i, image := range sc.images {
		view, err := drv.CreateImageView(dc.device, image, SwapchainFormat)
		if err != nil {
			return nil, fmt.Errorf("create image view %d: %w", i, err)
		}
		sc.views = append(sc.views, view)
	}

	sc.log.Info("swapchain created",
		"width", sc.extent.Width, "height", sc.extent.Height,
		"images", len(sc.images), "present_mode", sc.mode)
	return sc, nil
}

func (sc *SwapchainState) Swapchain() vk.Swapchain { return sc.swapchain }
func (sc *SwapchainState) Extent() vk.Extent2D     { return sc.extent }
func (sc *SwapchainState) Views() []vk.ImageView   { return sc.views }

// ImageCount is the authoritative number of presentable images.
func (sc *SwapchainState) ImageCount() int { return len(sc.images) }

func (sc *SwapchainState) Dimensions() *SwapchainDimensions {
	return &SwapchainDimensions{
		Width:  sc.extent.Width,
		Height: sc.extent.Height,
		Format: SwapchainFormat,
	}
}

// Destroy releases views, swapchain and surface in reverse creation order.
func (sc *SwapchainState) Destroy() {
	if sc == nil {
		return
	}
	drv, device := sc.dc.drv, sc.dc.device
	for i := len(sc.views) - 1; i >= 0; i-- {
		drv.DestroyImageView(device, sc.views[i])
	}
	sc.views = nil
	sc.images = nil
	if sc.swapchain != nil {
		drv.DestroySwapchain(device, sc.swapchain)
		sc.swapchain = nil
	}
	if sc.surface != nil {
		drv.DestroySurface(sc.surface)
		sc.surface = nil
	}
}
