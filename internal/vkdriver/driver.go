package vkdriver

import (
	"math"
	"reflect"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"

	"github.com/ricotech/vulkan-sandbox/internal/selection"
)

// Driver answers the selection stage's queries against one instance and
// one target surface.
type Driver struct {
	instance core1_0.Instance
	surface  khr_surface.Surface

	devices []core1_0.PhysicalDevice
}

var _ selection.Driver = (*Driver)(nil)

// NewDriver returns a Driver for surface on instance.
func NewDriver(instance core1_0.Instance, surface khr_surface.Surface) *Driver {
	return &Driver{instance: instance, surface: surface}
}

// PhysicalDevices enumerates the physical devices and snapshots each one.
// The handles are kept so later calls can refer to devices by index.
func (d *Driver) PhysicalDevices() ([]selection.DeviceCandidate, error) {
	devices, res, err := d.instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, selection.QueryFailed("vkEnumeratePhysicalDevices", int32(res), err)
	}
	d.devices = devices

	candidates := make([]selection.DeviceCandidate, 0, len(devices))
	for i, device := range devices {
		candidate, err := d.snapshot(i, device)
		if err != nil {
			return nil, errors.Wrapf(err, "device %d", i)
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (d *Driver) snapshot(index int, device core1_0.PhysicalDevice) (selection.DeviceCandidate, error) {
	props, err := device.Properties()
	if err != nil {
		return selection.DeviceCandidate{}, errors.Mark(errors.Wrap(err, "vkGetPhysicalDeviceProperties"), selection.ErrQuery)
	}

	extensions, res, err := device.EnumerateDeviceExtensionProperties()
	if err != nil {
		return selection.DeviceCandidate{}, selection.QueryFailed("vkEnumerateDeviceExtensionProperties", int32(res), err)
	}
	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)

	candidate := selection.DeviceCandidate{
		Index: index,
		Properties: selection.DeviceProperties{
			Name:                props.DriverName,
			Type:                selection.DeviceType(props.DriverType),
			VendorID:            uint32(props.VendorID),
			DeviceID:            uint32(props.DeviceID),
			APIVersion:          selection.Version(props.APIVersion),
			DriverVersion:       selection.Version(props.DriverVersion),
			PipelineCacheUUID:   props.PipelineCacheUUID,
			MaxImageDimension1D: uint32(props.Limits.MaxImageDimension1D),
			MaxImageDimension2D: uint32(props.Limits.MaxImageDimension2D),
			MaxImageDimension3D: uint32(props.Limits.MaxImageDimension3D),
			Sparse:              boolFlags(props.SparseProperties),
		},
		Features:   boolFlags(device.Features()),
		Extensions: names,
	}

	for familyIdx, family := range device.QueueFamilyProperties() {
		supported, res, err := d.surface.PhysicalDeviceSurfaceSupport(device, familyIdx)
		if err != nil {
			return selection.DeviceCandidate{}, errors.Wrapf(
				selection.QueryFailed("vkGetPhysicalDeviceSurfaceSupportKHR", int32(res), err),
				"queue family %d", familyIdx,
			)
		}
		candidate.QueueFamilies = append(candidate.QueueFamilies, selection.QueueFamily{
			Index:          familyIdx,
			Flags:          selection.QueueFlags(family.QueueFlags),
			QueueCount:     int(family.QueueCount),
			PresentSupport: supported,
		})
	}

	return candidate, nil
}

// PhysicalDevice returns the handle of the device at index, as enumerated by
// the last PhysicalDevices call.
func (d *Driver) PhysicalDevice(index int) (core1_0.PhysicalDevice, error) {
	if index < 0 || index >= len(d.devices) {
		return nil, errors.Newf("physical device %d not enumerated (%d known)", index, len(d.devices))
	}
	return d.devices[index], nil
}

// SurfaceSupport queries the surface capabilities, formats and present modes
// of the device at index.
func (d *Driver) SurfaceSupport(index int) (selection.SurfaceSupport, error) {
	device, err := d.PhysicalDevice(index)
	if err != nil {
		return selection.SurfaceSupport{}, err
	}

	caps, res, err := d.surface.PhysicalDeviceSurfaceCapabilities(device)
	if err != nil {
		return selection.SurfaceSupport{}, selection.QueryFailed("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", int32(res), err)
	}
	formats, res, err := d.surface.PhysicalDeviceSurfaceFormats(device)
	if err != nil {
		return selection.SurfaceSupport{}, selection.QueryFailed("vkGetPhysicalDeviceSurfaceFormatsKHR", int32(res), err)
	}
	modes, res, err := d.surface.PhysicalDeviceSurfacePresentModes(device)
	if err != nil {
		return selection.SurfaceSupport{}, selection.QueryFailed("vkGetPhysicalDeviceSurfacePresentModesKHR", int32(res), err)
	}

	support := selection.SurfaceSupport{
		Capabilities: convertCapabilities(caps),
	}
	for _, format := range formats {
		support.Formats = append(support.Formats, selection.SurfaceFormat{
			Format:     selection.Format(format.Format),
			ColorSpace: selection.ColorSpace(format.ColorSpace),
		})
	}
	for _, mode := range modes {
		support.PresentModes = append(support.PresentModes, selection.PresentMode(mode))
	}
	return support, nil
}

func convertCapabilities(caps *khr_surface.SurfaceCapabilities) selection.SurfaceCapabilities {
	if caps == nil {
		return selection.SurfaceCapabilities{}
	}
	return selection.SurfaceCapabilities{
		MinImageCount:    count(caps.MinImageCount),
		MaxImageCount:    count(caps.MaxImageCount),
		CurrentExtent:    extent(caps.CurrentExtent),
		MinImageExtent:   extent(caps.MinImageExtent),
		MaxImageExtent:   extent(caps.MaxImageExtent),
		CurrentTransform: uint32(caps.CurrentTransform),
	}
}

// extent maps the -1 vkngwrapper uses for 0xFFFFFFFF back to the unsigned
// sentinel.
func extent(e core1_0.Extent2D) selection.Extent2D {
	return selection.Extent2D{Width: dimension(e.Width), Height: dimension(e.Height)}
}

func dimension(v int) uint32 {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return selection.UndefinedExtent
	}
	return uint32(v)
}

func count(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// boolFlags lists the bool fields of a driver struct (or pointer to one) in
// declaration order.
func boolFlags(v interface{}) []selection.Flag {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var flags []selection.Flag
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.Type.Kind() != reflect.Bool || field.PkgPath != "" {
			continue
		}
		flags = append(flags, selection.Flag{Name: field.Name, Enabled: rv.Field(i).Bool()})
	}
	return flags
}
