package report_test

import (
	"bytes"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ricotech/vulkan-sandbox/internal/report"
	"github.com/ricotech/vulkan-sandbox/internal/selection"
	"github.com/ricotech/vulkan-sandbox/internal/tlog"
)

func newLog(c *qt.C) (*tlog.Log, *bytes.Buffer) {
	out := &bytes.Buffer{}
	l, err := tlog.New(tlog.Options{
		Writer:   out,
		Flush:    true,
		Include:  tlog.SourceAll,
		Level:    logrus.DebugLevel,
		ThreadID: func() uint32 { return 1 },
	})
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = l.Close() })
	return l, out
}

func body(out *bytes.Buffer) []string {
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	return lines[2:]
}

func testCandidate() selection.DeviceCandidate {
	return selection.DeviceCandidate{
		Index: 0,
		Properties: selection.DeviceProperties{
			Name:                "Fake GPU",
			Type:                selection.DeviceTypeDiscreteGPU,
			VendorID:            4318,
			DeviceID:            7,
			APIVersion:          selection.Version(1<<22 | 3<<12 | 250),
			DriverVersion:       selection.Version(535 << 22),
			PipelineCacheUUID:   uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
			MaxImageDimension1D: 32768,
			MaxImageDimension2D: 32768,
			MaxImageDimension3D: 16384,
			Sparse:              []selection.Flag{{Name: "ResidencyAlignedMipSize", Enabled: false}},
		},
		Features: []selection.Flag{
			{Name: "RobustBufferAccess", Enabled: true},
			{Name: "GeometryShader", Enabled: false},
		},
		Extensions: []string{"VK_KHR_maintenance1", selection.SwapchainExtensionName},
		QueueFamilies: []selection.QueueFamily{
			{Index: 0, Flags: selection.QueueGraphics | selection.QueueTransfer, QueueCount: 16, PresentSupport: true},
		},
	}
}

func TestCandidates(t *testing.T) {
	c := qt.New(t)
	log, out := newLog(c)

	report.Candidates(log, []selection.DeviceCandidate{testCandidate()})

	c.Assert(body(out), qt.DeepEquals, []string{
		"Found 1 available physical devices:",
		"Device 0: Fake GPU",
		"    Device Properties:",
		"        apiVersion        : 1.3.250",
		"        driverVersion     : 535.0.0",
		"        vendorID          : 4318",
		"        deviceID          : 7",
		"        deviceName        : Fake GPU",
		"        deviceType        : 2 (DISCRETE_GPU)",
		"        pipelineCacheUUID : 6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"        limits:",
		"            maxImageDimension1D : 32768",
		"            maxImageDimension2D : 32768",
		"            maxImageDimension3D : 16384",
		"        sparseProperties:",
		"            residencyAlignedMipSize : False",
		"    Device Features:",
		"        robustBufferAccess : True",
		"        geometryShader     : False",
		"    Found 2 available device extensions:",
		"        VK_KHR_maintenance1",
		"        VK_KHR_swapchain",
		"    Queue family 0: found 16 queues with flags:",
		"        GRAPHICS",
		"        TRANSFER",
		"        present support: True",
	})
}

func TestListAndNegotiated(t *testing.T) {
	c := qt.New(t)
	log, out := newLog(c)

	report.List(log, tlog.SourceVulkan, "available layers", []string{"VK_LAYER_KHRONOS_validation"})
	report.Negotiated(log, &selection.Result{
		Candidates: []selection.DeviceCandidate{testCandidate()},
		Swapchain: selection.SwapchainConfig{
			SurfaceFormat: selection.SurfaceFormat{Format: selection.FormatB8G8R8A8UNorm},
			PresentMode:   selection.PresentModeMailbox,
			Extent:        selection.Extent2D{Width: 1280, Height: 720},
			ImageCount:    3,
			Capabilities:  selection.SurfaceCapabilities{MinImageCount: 2, CurrentTransform: 1},
		},
	})

	c.Assert(body(out), qt.DeepEquals, []string{
		"Found 1 available layers:",
		"    VK_LAYER_KHRONOS_validation",
		"Selected device 0 (Fake GPU), queue family 0",
		"    surfaceFormat    : B8G8R8A8_UNORM/SRGB_NONLINEAR",
		"    presentMode      : MAILBOX",
		"    extent           : 1280x720",
		"    imageCount       : 3 (min 2, max unbounded)",
		"    currentTransform : 0x1",
	})
}

func TestTable(t *testing.T) {
	c := qt.New(t)
	result := &selection.Result{
		Candidates: []selection.DeviceCandidate{testCandidate()},
		Swapchain: selection.SwapchainConfig{
			PresentMode: selection.PresentModeFIFO,
			Extent:      selection.Extent2D{Width: 800, Height: 600},
			ImageCount:  2,
		},
	}

	rendered := report.Table(result, true, []string{"VK_KHR_surface"})
	for _, want := range []string{"VULKAN SANDBOX", "0: Fake GPU", "DISCRETE_GPU", "0x10de", "1.3.250", "FIFO", "800x600", "VK_KHR_surface"} {
		c.Assert(strings.Contains(rendered, want), qt.IsTrue, qt.Commentf("missing %q in\n%s", want, rendered))
	}

	rendered = report.Table(result, false, nil)
	c.Assert(strings.Contains(rendered, "800x600"), qt.IsFalse)
	c.Assert(strings.Contains(rendered, "INSTANCE EXTENSIONS"), qt.IsFalse)
}
