package report

import (
	"fmt"

	"github.com/xlab/tablewriter"

	"github.com/ricotech/vulkan-sandbox/internal/selection"
)

// Table renders a box table of every device and, when negotiation got that
// far, the chosen device and swapchain configuration.
func Table(result *selection.Result, negotiated bool, instanceExtensions []string) string {
	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle("VULKAN SANDBOX")

	table.AddRow("Physical devices", len(result.Candidates))
	for i := range result.Candidates {
		c := &result.Candidates[i]
		props := &c.Properties

		table.AddSeparator()
		table.AddRow("Device", fmt.Sprintf("%d: %s", c.Index, props.Name))
		table.AddRow("Type", props.Type.String())
		table.AddRow("Vendor", fmt.Sprintf("%#04x", props.VendorID))
		table.AddRow("API version", props.APIVersion.String())
		table.AddRow("Driver version", props.DriverVersion.String())
		table.AddRow("Swapchain", yesNo(c.SupportsExtension(selection.SwapchainExtensionName)))
		table.AddRow("Queue families", len(c.QueueFamilies))
	}

	if negotiated {
		sc := &result.Swapchain
		table.AddSeparator()
		table.AddRow("Selected device", result.Selection.Device)
		table.AddRow("Queue family", result.Selection.QueueFamily)
		table.AddRow("Surface format", sc.SurfaceFormat.String())
		table.AddRow("Present mode", sc.PresentMode.String())
		table.AddRow("Extent", sc.Extent.String())
		table.AddRow("Image count", fmt.Sprintf("%d (min %d, max %s)", sc.ImageCount, sc.Capabilities.MinImageCount, maxCount(sc.Capabilities.MaxImageCount)))
	}

	if len(instanceExtensions) > 0 {
		table.AddSeparator()
		table.AddRow("INSTANCE EXTENSIONS", "")
		for i, name := range instanceExtensions {
			table.AddRow(i+1, name)
		}
	}

	return table.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
