// Package vkdriver adapts vkngwrapper to the selection package: it creates
// the instance and surface, snapshots every physical device, and
// materializes the logical device and swapchain the negotiation settled on.
package vkdriver

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2"

	"github.com/ricotech/vulkan-sandbox/internal/selection"
)

// ValidationLayer is the layer enabled when validation is requested.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// Property is one instance extension or layer as the loader reports it.
type Property struct {
	Name        string
	SpecVersion string
	Description string
}

// Inventory is what the loader offers, sorted by name.
type Inventory struct {
	Extensions []Property
	Layers     []Property

	extensions map[string]struct{}
	layers     map[string]struct{}
}

// HasExtension reports whether the loader offers the instance extension.
func (i *Inventory) HasExtension(name string) bool {
	_, ok := i.extensions[name]
	return ok
}

// HasLayer reports whether the loader offers the layer.
func (i *Inventory) HasLayer(name string) bool {
	_, ok := i.layers[name]
	return ok
}

// InstanceOptions describes the instance to create.
type InstanceOptions struct {
	ApplicationName string

	// RequiredExtensions are the instance extensions the window system needs.
	RequiredExtensions []string
	Validation         bool
}

// NewLoader binds a Vulkan loader to SDL's vkGetInstanceProcAddr.
func NewLoader() (core.Loader, error) {
	loader, err := core.CreateLoaderFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "create vulkan loader"), selection.ErrCreate)
	}
	return loader, nil
}

// QueryInventory lists the instance extensions and layers available.
func QueryInventory(loader core.Loader) (Inventory, error) {
	extensions, res, err := loader.AvailableExtensions()
	if err != nil {
		return Inventory{}, selection.QueryFailed("vkEnumerateInstanceExtensionProperties", int32(res), err)
	}
	layers, res, err := loader.AvailableLayers()
	if err != nil {
		return Inventory{}, selection.QueryFailed("vkEnumerateInstanceLayerProperties", int32(res), err)
	}

	inv := Inventory{
		extensions: make(map[string]struct{}, len(extensions)),
		layers:     make(map[string]struct{}, len(layers)),
	}
	for name, ext := range extensions {
		inv.extensions[name] = struct{}{}
		inv.Extensions = append(inv.Extensions, Property{Name: name, SpecVersion: fmt.Sprint(ext.SpecVersion)})
	}
	for name, layer := range layers {
		inv.layers[name] = struct{}{}
		inv.Layers = append(inv.Layers, Property{
			Name:        name,
			SpecVersion: fmt.Sprint(layer.SpecVersion),
			Description: layer.Description,
		})
	}
	sortProperties(inv.Extensions)
	sortProperties(inv.Layers)
	return inv, nil
}

func sortProperties(props []Property) {
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
}

// instanceCreateInfo checks the requested extensions and layers against inv
// and builds the creation info.
func instanceCreateInfo(inv *Inventory, opts InstanceOptions) (core1_0.InstanceCreateInfo, error) {
	info := core1_0.InstanceCreateInfo{
		ApplicationName:    opts.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	for _, ext := range opts.RequiredExtensions {
		if !inv.HasExtension(ext) {
			return info, errors.WithHint(
				errors.Mark(errors.Newf("missing instance extension %s", ext), selection.ErrUnavailable),
				"the window system needs this extension; update the Vulkan loader or driver",
			)
		}
		info.EnabledExtensionNames = append(info.EnabledExtensionNames, ext)
	}

	if inv.HasExtension(khr_portability_enumeration.ExtensionName) {
		info.EnabledExtensionNames = append(info.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		info.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if opts.Validation {
		if !inv.HasLayer(ValidationLayer) {
			return info, errors.WithHint(
				errors.Mark(errors.Newf("validation layer %s not available", ValidationLayer), selection.ErrUnavailable),
				"install the LunarG Vulkan SDK or set SANDBOX_VALIDATION=false",
			)
		}
		info.EnabledLayerNames = append(info.EnabledLayerNames, ValidationLayer)
	}

	return info, nil
}

// CreateInstance creates the Vulkan instance.
func CreateInstance(loader core.Loader, inv *Inventory, opts InstanceOptions) (core1_0.Instance, error) {
	info, err := instanceCreateInfo(inv, opts)
	if err != nil {
		return nil, err
	}

	instance, res, err := loader.CreateInstance(nil, info)
	if err != nil {
		err = selection.CreateFailed("vkCreateInstance", int32(res), err)
		if res == incompatibleDriver {
			err = errors.WithHint(err, "no Vulkan 1.2 capable driver was found")
		}
		return nil, err
	}
	return instance, nil
}

// VK_ERROR_INCOMPATIBLE_DRIVER
const incompatibleDriver = -9

// CreateSurface creates a presentation surface for window.
func CreateSurface(instance core1_0.Instance, window *sdl.Window) (khr_surface.Surface, error) {
	surfaceLoader := khr_surface.CreateExtensionFromInstance(instance)

	surface, err := vkng_sdl2.CreateSurface(instance, surfaceLoader, window)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "create window surface"), selection.ErrCreate)
	}
	return surface, nil
}
