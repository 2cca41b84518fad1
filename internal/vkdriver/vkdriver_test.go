package vkdriver

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/khr_portability_subset"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/ricotech/vulkan-sandbox/internal/selection"
)

func inventory(extensions []string, layers []string) *Inventory {
	inv := &Inventory{extensions: map[string]struct{}{}, layers: map[string]struct{}{}}
	for _, ext := range extensions {
		inv.extensions[ext] = struct{}{}
	}
	for _, layer := range layers {
		inv.layers[layer] = struct{}{}
	}
	return inv
}

func TestInstanceCreateInfo(t *testing.T) {
	c := qt.New(t)
	inv := inventory([]string{"VK_KHR_surface", "VK_KHR_xlib_surface"}, nil)

	info, err := instanceCreateInfo(inv, InstanceOptions{
		ApplicationName:    "Vulkan Window",
		RequiredExtensions: []string{"VK_KHR_surface", "VK_KHR_xlib_surface"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(info.ApplicationName, qt.Equals, "Vulkan Window")
	c.Assert(info.EnabledExtensionNames, qt.DeepEquals, []string{"VK_KHR_surface", "VK_KHR_xlib_surface"})
	c.Assert(info.EnabledLayerNames, qt.HasLen, 0)
}

func TestInstanceCreateInfoPortability(t *testing.T) {
	c := qt.New(t)
	inv := inventory([]string{"VK_KHR_surface", khr_portability_enumeration.ExtensionName}, nil)

	info, err := instanceCreateInfo(inv, InstanceOptions{RequiredExtensions: []string{"VK_KHR_surface"}})
	c.Assert(err, qt.IsNil)
	c.Assert(info.EnabledExtensionNames, qt.DeepEquals, []string{"VK_KHR_surface", khr_portability_enumeration.ExtensionName})
	c.Assert(info.Flags&khr_portability_enumeration.InstanceCreateEnumeratePortability, qt.Equals, khr_portability_enumeration.InstanceCreateEnumeratePortability)
}

func TestInstanceCreateInfoMissingExtension(t *testing.T) {
	c := qt.New(t)
	_, err := instanceCreateInfo(inventory(nil, nil), InstanceOptions{RequiredExtensions: []string{"VK_KHR_surface"}})
	c.Assert(err, qt.ErrorMatches, "missing instance extension VK_KHR_surface")
	c.Assert(errors.Is(err, selection.ErrUnavailable), qt.IsTrue)
}

func TestInstanceCreateInfoValidation(t *testing.T) {
	c := qt.New(t)

	_, err := instanceCreateInfo(inventory(nil, nil), InstanceOptions{Validation: true})
	c.Assert(errors.Is(err, selection.ErrUnavailable), qt.IsTrue)

	info, err := instanceCreateInfo(inventory(nil, []string{ValidationLayer}), InstanceOptions{Validation: true})
	c.Assert(err, qt.IsNil)
	c.Assert(info.EnabledLayerNames, qt.DeepEquals, []string{ValidationLayer})
}

func TestConvertCapabilities(t *testing.T) {
	c := qt.New(t)
	caps := convertCapabilities(&khr_surface.SurfaceCapabilities{
		MinImageCount:  2,
		MaxImageCount:  0,
		CurrentExtent:  core1_0.Extent2D{Width: -1, Height: -1},
		MinImageExtent: core1_0.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
	})

	c.Assert(caps, qt.DeepEquals, selection.SurfaceCapabilities{
		MinImageCount:  2,
		CurrentExtent:  selection.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: selection.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: selection.Extent2D{Width: 4096, Height: 4096},
	})
	c.Assert(convertCapabilities(nil), qt.DeepEquals, selection.SurfaceCapabilities{})
}

func TestBoolFlags(t *testing.T) {
	c := qt.New(t)

	type sparse struct {
		ResidencyStandard2DBlockShape bool
		ResidencyAlignedMipSize       bool
		limit                         bool
		Count                         int
	}

	want := []selection.Flag{
		{Name: "ResidencyStandard2DBlockShape", Enabled: true},
		{Name: "ResidencyAlignedMipSize", Enabled: false},
	}
	c.Assert(boolFlags(sparse{ResidencyStandard2DBlockShape: true}), qt.DeepEquals, want)
	c.Assert(boolFlags(&sparse{ResidencyStandard2DBlockShape: true}), qt.DeepEquals, want)
	c.Assert(boolFlags((*sparse)(nil)), qt.IsNil)
	c.Assert(boolFlags(42), qt.IsNil)

	features := boolFlags(&core1_0.PhysicalDeviceFeatures{SamplerAnisotropy: true})
	c.Assert(len(features) > 10, qt.IsTrue)
	c.Assert(features, qt.Contains, selection.Flag{Name: "SamplerAnisotropy", Enabled: true})
}

func TestDeviceCreateInfo(t *testing.T) {
	c := qt.New(t)
	candidate := &selection.DeviceCandidate{
		Extensions: []string{khr_swapchain.ExtensionName},
		QueueFamilies: []selection.QueueFamily{
			{Index: 0, Flags: selection.QueueTransfer},
			{Index: 1, Flags: selection.QueueCompute},
			{Index: 2, Flags: selection.QueueGraphics, PresentSupport: true},
		},
	}

	info, err := deviceCreateInfo(candidate, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(info.QueueCreateInfos, qt.HasLen, 1)
	c.Assert(info.QueueCreateInfos[0].QueueFamilyIndex, qt.Equals, 2)
	c.Assert(info.QueueCreateInfos[0].QueuePriorities, qt.DeepEquals, []float32{1.0})
	c.Assert(info.EnabledExtensionNames, qt.DeepEquals, []string{khr_swapchain.ExtensionName})

	candidate.Extensions = append(candidate.Extensions, khr_portability_subset.ExtensionName)
	info, err = deviceCreateInfo(candidate, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(info.EnabledExtensionNames, qt.DeepEquals, []string{khr_swapchain.ExtensionName, khr_portability_subset.ExtensionName})
}

func TestDeviceCreateInfoRejectsForeignQueueFamily(t *testing.T) {
	c := qt.New(t)
	candidates := []selection.DeviceCandidate{
		{
			Index:         0,
			QueueFamilies: []selection.QueueFamily{{Index: 0, Flags: selection.QueueCompute}, {Index: 1, Flags: selection.QueueGraphics, PresentSupport: true}},
		},
		{
			Index:         1,
			Extensions:    []string{khr_swapchain.ExtensionName},
			QueueFamilies: []selection.QueueFamily{{Index: 0, Flags: selection.QueueGraphics}},
		},
	}

	sel, err := selection.SelectDevice(candidates, selection.PolicyLegacy)
	c.Assert(err, qt.IsNil)
	c.Assert(sel, qt.Equals, selection.Selection{Device: 1, QueueFamily: 1})

	_, err = deviceCreateInfo(&candidates[sel.Device], sel.QueueFamily)
	c.Assert(err, qt.ErrorMatches, `queue family 1 does not exist on device 1 \(1 families\)`)
	c.Assert(errors.Is(err, selection.ErrUnavailable), qt.IsTrue)
	c.Assert(errors.GetAllHints(err), qt.HasLen, 1)

	_, err = deviceCreateInfo(&candidates[1], -1)
	c.Assert(errors.Is(err, selection.ErrUnavailable), qt.IsTrue)
}

func TestSwapchainCreateInfo(t *testing.T) {
	c := qt.New(t)
	info := swapchainCreateInfo(nil, selection.SwapchainConfig{
		SurfaceFormat: selection.SurfaceFormat{Format: selection.FormatB8G8R8A8UNorm, ColorSpace: selection.ColorSpaceSRGBNonlinear},
		PresentMode:   selection.PresentModeMailbox,
		Extent:        selection.Extent2D{Width: 1280, Height: 720},
		ImageCount:    3,
		Capabilities:  selection.SurfaceCapabilities{CurrentTransform: 1},
	})

	c.Assert(info.MinImageCount, qt.Equals, 3)
	c.Assert(info.ImageFormat, qt.Equals, core1_0.Format(44))
	c.Assert(info.ImageColorSpace, qt.Equals, khr_surface.ColorSpaceSRGBNonlinear)
	c.Assert(info.ImageExtent, qt.Equals, core1_0.Extent2D{Width: 1280, Height: 720})
	c.Assert(info.ImageArrayLayers, qt.Equals, 1)
	c.Assert(info.ImageUsage, qt.Equals, core1_0.ImageUsageColorAttachment)
	c.Assert(info.ImageSharingMode, qt.Equals, core1_0.SharingModeExclusive)
	c.Assert(info.QueueFamilyIndices, qt.HasLen, 0)
	c.Assert(info.PreTransform, qt.Equals, khr_surface.SurfaceTransformFlags(1))
	c.Assert(info.CompositeAlpha, qt.Equals, khr_surface.CompositeAlphaOpaque)
	c.Assert(info.PresentMode, qt.Equals, khr_surface.PresentModeMailbox)
	c.Assert(info.Clipped, qt.IsTrue)
}
