package selection

import (
	"github.com/cockroachdb/errors"
)

// ChooseExtent returns the surface's current extent, or requested clamped
// into the surface bounds when the current width is UndefinedExtent.
func ChooseExtent(caps SurfaceCapabilities, requested Extent2D) Extent2D {
	if caps.CurrentExtent.Width != UndefinedExtent {
		return caps.CurrentExtent
	}

	return Extent2D{
		Width:  clamp(requested.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(requested.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for double buffering, or triple when tripleBuffer is
// set. A surface whose minimum is higher than that is an error; a nonzero
// maximum caps the count.
func ChooseImageCount(caps SurfaceCapabilities, tripleBuffer bool) (uint32, error) {
	count := uint32(2)
	if tripleBuffer {
		count++
	}

	if count < caps.MinImageCount {
		return 0, errors.WithDetailf(
			unavailable(ErrImageCountBelowMinimum, ""),
			"requested %d images, surface needs at least %d", count, caps.MinImageCount,
		)
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count, nil
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
