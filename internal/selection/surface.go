package selection

// ChooseSurfaceFormat returns B8G8R8A8_UNORM with SRGB_NONLINEAR wherever it
// sits in formats. When it is missing and allowFallback is set, the first
// reported format is used instead.
func ChooseSurfaceFormat(formats []SurfaceFormat, allowFallback bool) (SurfaceFormat, error) {
	for _, format := range formats {
		if format.Format == FormatB8G8R8A8UNorm && format.ColorSpace == ColorSpaceSRGBNonlinear {
			return format, nil
		}
	}

	if allowFallback && len(formats) > 0 {
		return formats[0], nil
	}
	return SurfaceFormat{}, unavailable(ErrNoSurfaceFormat, hintFormat)
}

// ChoosePresentMode returns FIFO, which every driver supports, unless triple
// buffering is requested and MAILBOX is available.
func ChoosePresentMode(modes []PresentMode, tripleBuffer bool) PresentMode {
	if !tripleBuffer {
		return PresentModeFIFO
	}
	for _, mode := range modes {
		if mode == PresentModeMailbox {
			return PresentModeMailbox
		}
	}
	return PresentModeFIFO
}
