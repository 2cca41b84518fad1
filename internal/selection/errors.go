package selection

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error classes. Every startup failure is marked with exactly one of them
// and all of them abort the startup sequence. The classes are attached with
// errors.Mark, so test for them with github.com/cockroachdb/errors.Is; the
// standard library errors.Is does not see marks.
var (
	// ErrQuery marks a driver query that returned a failure status.
	ErrQuery = errors.New("driver query failed")
	// ErrUnavailable marks the absence of a device, queue family, format or
	// image count that satisfies the policy.
	ErrUnavailable = errors.New("no qualifying resource")
	// ErrCreate marks a failed instance, surface, device or swapchain
	// creation.
	ErrCreate = errors.New("creation failed")
)

// Absence reasons, each also marked ErrUnavailable.
var (
	ErrNoDevices              = errors.New("no physical devices")
	ErrNoSwapchainDevice      = errors.New("no device supports " + SwapchainExtensionName)
	ErrNoQueueFamily          = errors.New("no queue family supports graphics and present")
	ErrNoSurfaceFormat        = errors.New("surface does not offer B8G8R8A8_UNORM with SRGB_NONLINEAR")
	ErrImageCountBelowMinimum = errors.New("requested image count is below the surface minimum")
)

const (
	hintDevice = "install a Vulkan driver for a GPU that can present to this window, or update the current one"
	hintFormat = "set SANDBOX_FORMAT_FALLBACK=true to accept the first format the surface offers"
)

// StatusError carries the numeric status a driver call returned.
type StatusError struct {
	Op     string
	Status int32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

// QueryFailed builds an ErrQuery error for a failed driver call.
func QueryFailed(op string, status int32, cause error) error {
	return classified(op, status, cause, ErrQuery)
}

// CreateFailed builds an ErrCreate error for a failed object creation.
func CreateFailed(op string, status int32, cause error) error {
	return classified(op, status, cause, ErrCreate)
}

func classified(op string, status int32, cause error, class error) error {
	err := errors.WithStack(&StatusError{Op: op, Status: status})
	if cause != nil {
		err = errors.WithSecondaryError(err, cause)
	}
	return errors.Mark(err, class)
}

func unavailable(reason error, hint string) error {
	err := errors.Mark(errors.WithStack(reason), ErrUnavailable)
	if hint != "" {
		err = errors.WithHint(err, hint)
	}
	return err
}

// Status returns the driver status attached to err, if any.
func Status(err error) (int32, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, true
	}
	return 0, false
}
