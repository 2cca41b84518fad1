package selection

import (
	"github.com/cockroachdb/errors"
)

// SelectDevice picks a device and queue family from candidates according to
// policy. The result always names a device with the swapchain extension and
// a family with graphics and present support.
func SelectDevice(candidates []DeviceCandidate, policy Policy) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{}, unavailable(ErrNoDevices, hintDevice)
	}

	switch policy {
	case PolicyFirst:
		return selectFirst(candidates)
	case PolicyLegacy:
		return selectLegacy(candidates)
	default:
		return Selection{}, errors.Newf("unknown device selection policy %d", int(policy))
	}
}

func selectFirst(candidates []DeviceCandidate) (Selection, error) {
	sawSwapchain := false
	for i := range candidates {
		candidate := &candidates[i]
		if !candidate.SupportsExtension(SwapchainExtensionName) {
			continue
		}
		sawSwapchain = true

		if family, ok := findQueueFamily(candidate); ok {
			return Selection{Device: i, QueueFamily: family}, nil
		}
	}

	if !sawSwapchain {
		return Selection{}, unavailable(ErrNoSwapchainDevice, hintDevice)
	}
	return Selection{}, unavailable(ErrNoQueueFamily, hintDevice)
}

func selectLegacy(candidates []DeviceCandidate) (Selection, error) {
	device := -1
	family := -1
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.SupportsExtension(SwapchainExtensionName) {
			device = i
		}
		if family < 0 {
			if idx, ok := findQueueFamily(candidate); ok {
				family = idx
			}
		}
	}

	if device < 0 {
		return Selection{}, unavailable(ErrNoSwapchainDevice, hintDevice)
	}
	if family < 0 {
		return Selection{}, unavailable(ErrNoQueueFamily, hintDevice)
	}
	return Selection{Device: device, QueueFamily: family}, nil
}

// findQueueFamily returns the index of the first family on candidate that
// supports both graphics and presentation.
func findQueueFamily(candidate *DeviceCandidate) (int, bool) {
	for _, family := range candidate.QueueFamilies {
		if family.SupportsGraphicsAndPresent() {
			return family.Index, true
		}
	}
	return 0, false
}
