// Package selection picks the physical device, queue family and swapchain
// parameters the sandbox runs with. Everything here is a pure function of
// the capability snapshot it is given; the driver is reached only through
// the Driver interface.
package selection

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// SwapchainExtensionName is the device extension every candidate needs.
const SwapchainExtensionName = "VK_KHR_swapchain"

// UndefinedExtent is the current extent width a surface reports when the
// swapchain decides its own size.
const UndefinedExtent = math.MaxUint32

// Format values follow VkFormat.
type Format int32

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8UNorm Format = 37
	FormatR8G8B8A8SRGB  Format = 43
	FormatB8G8R8A8UNorm Format = 44
	FormatB8G8R8A8SRGB  Format = 50
)

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "UNDEFINED"
	case FormatR8G8B8A8UNorm:
		return "R8G8B8A8_UNORM"
	case FormatR8G8B8A8SRGB:
		return "R8G8B8A8_SRGB"
	case FormatB8G8R8A8UNorm:
		return "B8G8R8A8_UNORM"
	case FormatB8G8R8A8SRGB:
		return "B8G8R8A8_SRGB"
	default:
		return fmt.Sprintf("FORMAT(%d)", int32(f))
	}
}

// ColorSpace values follow VkColorSpaceKHR.
type ColorSpace int32

const ColorSpaceSRGBNonlinear ColorSpace = 0

func (c ColorSpace) String() string {
	if c == ColorSpaceSRGBNonlinear {
		return "SRGB_NONLINEAR"
	}
	return fmt.Sprintf("COLOR_SPACE(%d)", int32(c))
}

// PresentMode values follow VkPresentModeKHR.
type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

func (p PresentMode) String() string {
	switch p {
	case PresentModeImmediate:
		return "IMMEDIATE"
	case PresentModeMailbox:
		return "MAILBOX"
	case PresentModeFIFO:
		return "FIFO"
	case PresentModeFIFORelaxed:
		return "FIFO_RELAXED"
	default:
		return fmt.Sprintf("PRESENT_MODE(%d)", int32(p))
	}
}

// QueueFlags values follow VkQueueFlagBits.
type QueueFlags uint32

const (
	QueueGraphics      QueueFlags = 0x01
	QueueCompute       QueueFlags = 0x02
	QueueTransfer      QueueFlags = 0x04
	QueueSparseBinding QueueFlags = 0x08
	QueueProtected     QueueFlags = 0x10
)

var queueFlagNames = []struct {
	flag QueueFlags
	name string
}{
	{QueueGraphics, "GRAPHICS"},
	{QueueCompute, "COMPUTE"},
	{QueueTransfer, "TRANSFER"},
	{QueueSparseBinding, "SPARSE_BINDING"},
	{QueueProtected, "PROTECTED"},
}

// Names lists the set flags in bit order.
func (f QueueFlags) Names() []string {
	var names []string
	for _, entry := range queueFlagNames {
		if f&entry.flag != 0 {
			names = append(names, entry.name)
		}
	}
	return names
}

// DeviceType values follow VkPhysicalDeviceType.
type DeviceType int32

const (
	DeviceTypeOther         DeviceType = 0
	DeviceTypeIntegratedGPU DeviceType = 1
	DeviceTypeDiscreteGPU   DeviceType = 2
	DeviceTypeVirtualGPU    DeviceType = 3
	DeviceTypeCPU           DeviceType = 4
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeOther:
		return "OTHER"
	case DeviceTypeIntegratedGPU:
		return "INTEGRATED_GPU"
	case DeviceTypeDiscreteGPU:
		return "DISCRETE_GPU"
	case DeviceTypeVirtualGPU:
		return "VIRTUAL_GPU"
	case DeviceTypeCPU:
		return "CPU"
	default:
		return "<unknown>"
	}
}

// Version is a packed Vulkan version number.
type Version uint32

func (v Version) Major() uint32 { return uint32(v) >> 22 }
func (v Version) Minor() uint32 { return (uint32(v) >> 12) & 0x3ff }
func (v Version) Patch() uint32 { return uint32(v) & 0xfff }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// Flag is one named boolean reported by the driver, such as a device
// feature or a sparse property.
type Flag struct {
	Name    string
	Enabled bool
}

// DeviceProperties is the subset of VkPhysicalDeviceProperties the sandbox
// reports on.
type DeviceProperties struct {
	Name              string
	Type              DeviceType
	VendorID          uint32
	DeviceID          uint32
	APIVersion        Version
	DriverVersion     Version
	PipelineCacheUUID uuid.UUID

	MaxImageDimension1D uint32
	MaxImageDimension2D uint32
	MaxImageDimension3D uint32

	Sparse []Flag
}

// QueueFamily describes one queue family of a device, including whether it
// can present to the target surface.
type QueueFamily struct {
	Index          int
	Flags          QueueFlags
	QueueCount     int
	PresentSupport bool
}

// SupportsGraphicsAndPresent reports whether the family can both render and
// present.
func (q QueueFamily) SupportsGraphicsAndPresent() bool {
	return q.Flags&QueueGraphics != 0 && q.PresentSupport
}

// DeviceCandidate is the capability snapshot of one physical device, in the
// order the driver enumerated it.
type DeviceCandidate struct {
	Index         int
	Properties    DeviceProperties
	Features      []Flag
	Extensions    []string
	QueueFamilies []QueueFamily
}

// SupportsExtension reports whether name is in the candidate's extension list.
func (d *DeviceCandidate) SupportsExtension(name string) bool {
	for _, ext := range d.Extensions {
		if ext == name {
			return true
		}
	}
	return false
}

// Extent2D is a size in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

func (e Extent2D) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// SurfaceFormat pairs a pixel format with its color space.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

func (s SurfaceFormat) String() string {
	return s.Format.String() + "/" + s.ColorSpace.String()
}

// SurfaceCapabilities are the bounds a surface places on a swapchain.
// MaxImageCount of zero means unbounded.
type SurfaceCapabilities struct {
	MinImageCount    uint32
	MaxImageCount    uint32
	CurrentExtent    Extent2D
	MinImageExtent   Extent2D
	MaxImageExtent   Extent2D
	CurrentTransform uint32
}

// SurfaceSupport is what a device offers for presenting to one surface.
type SurfaceSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

// Selection is the chosen device and queue family. The device supports the
// swapchain extension and the family supports graphics and presentation.
type Selection struct {
	Device      int
	QueueFamily int
}

// SwapchainConfig is the negotiated swapchain description.
type SwapchainConfig struct {
	SurfaceFormat SurfaceFormat
	PresentMode   PresentMode
	Extent        Extent2D
	ImageCount    uint32
	Capabilities  SurfaceCapabilities
}
