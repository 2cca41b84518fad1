package selection

import (
	"github.com/cockroachdb/errors"
)

// Driver is the part of the graphics driver the negotiation needs.
type Driver interface {
	// PhysicalDevices returns a capability snapshot of every physical device,
	// with present support resolved against the target surface.
	PhysicalDevices() ([]DeviceCandidate, error)

	// SurfaceSupport reports what the device at index offers for the target
	// surface.
	SurfaceSupport(device int) (SurfaceSupport, error)
}

// Result is the outcome of a full negotiation.
type Result struct {
	Candidates []DeviceCandidate
	Selection  Selection
	Swapchain  SwapchainConfig
}

// Device returns the selected candidate.
func (r *Result) Device() *DeviceCandidate {
	return &r.Candidates[r.Selection.Device]
}

// Run enumerates devices, selects one and negotiates its swapchain. Each
// stage runs only when the previous one succeeded.
func Run(driver Driver, policy Policy, opts Options) (Result, error) {
	candidates, err := driver.PhysicalDevices()
	if err != nil {
		return Result{}, errors.Wrap(err, "enumerate physical devices")
	}

	sel, err := SelectDevice(candidates, policy)
	if err != nil {
		return Result{Candidates: candidates}, errors.Wrapf(err, "select device (%s policy)", policy)
	}

	support, err := driver.SurfaceSupport(sel.Device)
	if err != nil {
		return Result{Candidates: candidates, Selection: sel}, errors.Wrapf(err, "query surface support of device %d", sel.Device)
	}

	config, err := Negotiate(support, opts)
	if err != nil {
		return Result{Candidates: candidates, Selection: sel}, errors.Wrap(err, "negotiate swapchain")
	}

	return Result{
		Candidates: candidates,
		Selection:  sel,
		Swapchain:  config,
	}, nil
}
