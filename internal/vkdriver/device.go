package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_portability_subset"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/ricotech/vulkan-sandbox/internal/selection"
)

// deviceCreateInfo asks for one queue from queueFamily and the swapchain
// extension, plus the portability subset when the device exposes it. The
// family must exist on candidate; the legacy policy can pick it from another
// device.
func deviceCreateInfo(candidate *selection.DeviceCandidate, queueFamily int) (core1_0.DeviceCreateInfo, error) {
	if queueFamily < 0 || queueFamily >= len(candidate.QueueFamilies) {
		err := errors.Newf("queue family %d does not exist on device %d (%d families)",
			queueFamily, candidate.Index, len(candidate.QueueFamilies))
		return core1_0.DeviceCreateInfo{}, errors.WithHint(
			errors.Mark(err, selection.ErrUnavailable),
			"set SANDBOX_DEVICE_SELECTION=first to pick the queue family from the selected device",
		)
	}

	extensionNames := []string{khr_swapchain.ExtensionName}
	if candidate.SupportsExtension(khr_portability_subset.ExtensionName) {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	return core1_0.DeviceCreateInfo{
		QueueCreateInfos: []core1_0.DeviceQueueCreateInfo{
			{
				QueueFamilyIndex: queueFamily,
				QueuePriorities:  []float32{1.0},
			},
		},
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: extensionNames,
	}, nil
}

// CreateDevice creates the logical device for the selected candidate and
// returns it with its single queue.
func CreateDevice(physical core1_0.PhysicalDevice, candidate *selection.DeviceCandidate, queueFamily int) (core1_0.Device, core1_0.Queue, error) {
	info, err := deviceCreateInfo(candidate, queueFamily)
	if err != nil {
		return nil, nil, err
	}

	device, res, err := physical.CreateDevice(nil, info)
	if err != nil {
		return nil, nil, selection.CreateFailed("vkCreateDevice", int32(res), err)
	}
	return device, device.GetQueue(queueFamily, 0), nil
}

// swapchainCreateInfo applies the fixed sandbox policy to cfg: exclusive
// sharing, opaque alpha, clipped, one color attachment layer and no previous
// swapchain. Exclusive sharing holds because the graphics and present queue
// are the same family.
func swapchainCreateInfo(surface khr_surface.Surface, cfg selection.SwapchainConfig) khr_swapchain.SwapchainCreateInfo {
	return khr_swapchain.SwapchainCreateInfo{
		Surface: surface,

		MinImageCount:    int(cfg.ImageCount),
		ImageFormat:      core1_0.Format(cfg.SurfaceFormat.Format),
		ImageColorSpace:  khr_surface.ColorSpace(cfg.SurfaceFormat.ColorSpace),
		ImageExtent:      core1_0.Extent2D{Width: int(cfg.Extent.Width), Height: int(cfg.Extent.Height)},
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode: core1_0.SharingModeExclusive,

		PreTransform:   khr_surface.SurfaceTransformFlags(cfg.Capabilities.CurrentTransform),
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    khr_surface.PresentMode(cfg.PresentMode),
		Clipped:        true,
	}
}

// CreateSwapchain materializes cfg on device.
func CreateSwapchain(device core1_0.Device, surface khr_surface.Surface, cfg selection.SwapchainConfig) (khr_swapchain.Swapchain, error) {
	if surface == nil {
		return nil, errors.AssertionFailedf("swapchain needs a surface")
	}

	extension := khr_swapchain.CreateExtensionFromDevice(device)
	swapchain, res, err := extension.CreateSwapchain(device, nil, swapchainCreateInfo(surface, cfg))
	if err != nil {
		return nil, selection.CreateFailed("vkCreateSwapchainKHR", int32(res), err)
	}
	return swapchain, nil
}
