package selection

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Policy decides how the device and the queue family are picked from the
// candidate list.
type Policy int

const (
	// PolicyFirst takes the first device, in enumeration order, that has the
	// swapchain extension and a graphics+present family, and the first such
	// family on that device.
	PolicyFirst Policy = iota

	// PolicyLegacy keeps the device pick and the family pick apart: the last
	// device with the swapchain extension wins, while the family index comes
	// from the first device that has any graphics+present family at all.
	// The two can disagree on multi-GPU machines.
	PolicyLegacy
)

func (p Policy) String() string {
	switch p {
	case PolicyFirst:
		return "first"
	case PolicyLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// ParsePolicy accepts "first" or "legacy", case-insensitive.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return PolicyFirst, nil
	case "legacy":
		return PolicyLegacy, nil
	default:
		return 0, errors.Newf("unknown device selection policy %q", s)
	}
}
