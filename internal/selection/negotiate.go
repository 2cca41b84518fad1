package selection

// Options tune swapchain negotiation.
type Options struct {
	TripleBuffer   bool
	FormatFallback bool

	// Requested is the window size, used when the surface leaves the extent
	// to the swapchain.
	Requested Extent2D
}

// Negotiate derives the swapchain configuration from what a device offers
// for the surface.
func Negotiate(support SurfaceSupport, opts Options) (SwapchainConfig, error) {
	format, err := ChooseSurfaceFormat(support.Formats, opts.FormatFallback)
	if err != nil {
		return SwapchainConfig{}, err
	}

	count, err := ChooseImageCount(support.Capabilities, opts.TripleBuffer)
	if err != nil {
		return SwapchainConfig{}, err
	}

	return SwapchainConfig{
		SurfaceFormat: format,
		PresentMode:   ChoosePresentMode(support.PresentModes, opts.TripleBuffer),
		Extent:        ChooseExtent(support.Capabilities, opts.Requested),
		ImageCount:    count,
		Capabilities:  support.Capabilities,
	}, nil
}
