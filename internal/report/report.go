// Package report writes what the driver told us to the log, and renders
// the summary table shown by -info.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ricotech/vulkan-sandbox/internal/selection"
	"github.com/ricotech/vulkan-sandbox/internal/tlog"
)

// List writes a counted list of names, one per indented line.
func List(log *tlog.Log, src tlog.Source, what string, names []string) {
	log.Printf(src, "Found %d %s:", len(names), what)
	indented(log, func() {
		for _, name := range names {
			log.Printf(src, "%s", name)
		}
	})
}

// Candidates dumps every device snapshot: properties, features, extensions
// and queue families.
func Candidates(log *tlog.Log, candidates []selection.DeviceCandidate) {
	log.Printf(tlog.SourceVulkan, "Found %d available physical devices:", len(candidates))
	for i := range candidates {
		candidate(log, &candidates[i])
	}
}

func candidate(log *tlog.Log, c *selection.DeviceCandidate) {
	const src = tlog.SourceVulkan
	props := &c.Properties

	log.Printf(src, "Device %d: %s", c.Index, props.Name)
	indented(log, func() {
		log.Printf(src, "Device Properties:")
		indented(log, func() {
			fields(log, src, [][2]string{
				{"apiVersion", props.APIVersion.String()},
				{"driverVersion", props.DriverVersion.String()},
				{"vendorID", strconv.FormatUint(uint64(props.VendorID), 10)},
				{"deviceID", strconv.FormatUint(uint64(props.DeviceID), 10)},
				{"deviceName", props.Name},
				{"deviceType", fmt.Sprintf("%d (%s)", int32(props.Type), props.Type)},
				{"pipelineCacheUUID", props.PipelineCacheUUID.String()},
			})
			log.Printf(src, "limits:")
			indented(log, func() {
				fields(log, src, [][2]string{
					{"maxImageDimension1D", strconv.FormatUint(uint64(props.MaxImageDimension1D), 10)},
					{"maxImageDimension2D", strconv.FormatUint(uint64(props.MaxImageDimension2D), 10)},
					{"maxImageDimension3D", strconv.FormatUint(uint64(props.MaxImageDimension3D), 10)},
				})
			})
			log.Printf(src, "sparseProperties:")
			indented(log, func() { flags(log, src, props.Sparse) })
		})

		log.Printf(src, "Device Features:")
		indented(log, func() { flags(log, src, c.Features) })

		List(log, src, "available device extensions", c.Extensions)

		for _, family := range c.QueueFamilies {
			log.Printf(src, "Queue family %d: found %d queues with flags:", family.Index, family.QueueCount)
			indented(log, func() {
				for _, name := range family.Flags.Names() {
					log.Printf(src, "%s", name)
				}
				log.Printf(src, "present support: %s", truth(family.PresentSupport))
			})
		}
	})
}

// Negotiated writes the selection and the swapchain configuration.
func Negotiated(log *tlog.Log, result *selection.Result) {
	const src = tlog.SourceVulkan
	sc := &result.Swapchain
	caps := &sc.Capabilities

	log.Printf(src, "Selected device %d (%s), queue family %d",
		result.Selection.Device, result.Device().Properties.Name, result.Selection.QueueFamily)
	indented(log, func() {
		fields(log, src, [][2]string{
			{"surfaceFormat", sc.SurfaceFormat.String()},
			{"presentMode", sc.PresentMode.String()},
			{"extent", sc.Extent.String()},
			{"imageCount", fmt.Sprintf("%d (min %d, max %s)", sc.ImageCount, caps.MinImageCount, maxCount(caps.MaxImageCount))},
			{"currentTransform", fmt.Sprintf("%#x", caps.CurrentTransform)},
		})
	})
}

func fields(log *tlog.Log, src tlog.Source, rows [][2]string) {
	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}
	for _, row := range rows {
		log.Printf(src, "%-*s : %s", width, row[0], row[1])
	}
}

func flags(log *tlog.Log, src tlog.Source, list []selection.Flag) {
	rows := make([][2]string, 0, len(list))
	for _, flag := range list {
		rows = append(rows, [2]string{lowerFirst(flag.Name), truth(flag.Enabled)})
	}
	fields(log, src, rows)
}

func indented(log *tlog.Log, fn func()) {
	if err := log.Indent(); err != nil {
		log.Warnf(tlog.SourceDebug, "%v", err)
	}
	fn()
	log.Unindent()
}

func truth(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func maxCount(n uint32) string {
	if n == 0 {
		return "unbounded"
	}
	return strconv.FormatUint(uint64(n), 10)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return strings.ToLower(string(r)) + s[size:]
}
