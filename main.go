package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/ricotech/vulkan-sandbox/internal/config"
	"github.com/ricotech/vulkan-sandbox/internal/report"
	"github.com/ricotech/vulkan-sandbox/internal/selection"
	"github.com/ricotech/vulkan-sandbox/internal/timer"
	"github.com/ricotech/vulkan-sandbox/internal/tlog"
	"github.com/ricotech/vulkan-sandbox/internal/vkdriver"
)

type SandboxApplication struct {
	cfg   config.Configuration
	log   *tlog.Log
	timer *timer.Timer

	// infoOnly stops after negotiation and prints the summary table.
	infoOnly bool

	window    *sdl.Window
	loader    core.Loader
	inventory vkdriver.Inventory

	instance core1_0.Instance
	surface  khr_surface.Surface
	driver   *vkdriver.Driver
	result   selection.Result

	physicalDevice core1_0.PhysicalDevice
	device         core1_0.Device
	queue          core1_0.Queue
	swapchain      khr_swapchain.Swapchain
}

// Run brings the sandbox up and idles until the window closes. Everything
// acquired is released before Run returns, whichever step failed.
func (app *SandboxApplication) Run() error {
	defer app.cleanup()

	err := app.timed(tlog.SourceSDL, "init_window", app.initWindow)
	if err != nil {
		return err
	}

	err = app.timed(tlog.SourceVulkan, "init_vulkan", app.initVulkan)
	if err != nil {
		return err
	}

	if app.infoOnly {
		return nil
	}
	return app.mainLoop()
}

// timed runs fn inside a timed log region.
func (app *SandboxApplication) timed(src tlog.Source, name string, fn func() error) error {
	if err := app.log.TimedRegionStart(src, name); err != nil {
		app.log.Warnf(tlog.SourceDebug, "%v", err)
	}
	defer app.log.TimedRegionEnd(name)

	return fn()
}

func (app *SandboxApplication) initWindow() error {
	app.log.Printf(tlog.SourceSDL, "Initializing SDL")
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return errors.Mark(errors.Wrap(err, "initialize SDL"), selection.ErrCreate)
	}

	app.log.Printf(tlog.SourceSDL, "Creating window")
	window, err := sdl.CreateWindow(
		app.cfg.Window.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(app.cfg.Window.Width), int32(app.cfg.Window.Height),
		sdl.WINDOW_VULKAN,
	)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "create SDL window"), selection.ErrCreate)
	}
	app.window = window

	app.loader, err = vkdriver.NewLoader()
	return err
}

func (app *SandboxApplication) initVulkan() error {
	err := app.createInstance()
	if err != nil {
		return err
	}

	err = app.createSurface()
	if err != nil {
		return err
	}

	err = app.timed(tlog.SourceVulkan, "negotiate", app.negotiate)
	if app.infoOnly {
		var extensions []string
		for _, ext := range app.inventory.Extensions {
			extensions = append(extensions, ext.Name)
		}
		fmt.Println(report.Table(&app.result, err == nil, extensions))
	}
	if err != nil || app.infoOnly {
		return err
	}

	err = app.createLogicalDevice()
	if err != nil {
		return err
	}

	return app.createSwapchain()
}

func (app *SandboxApplication) createInstance() error {
	var err error
	app.inventory, err = vkdriver.QueryInventory(app.loader)
	if err != nil {
		return err
	}

	if app.cfg.Renderer.ListInstance {
		app.log.Printf(tlog.SourceVulkan, "Querying available instance extensions")
		report.List(app.log, tlog.SourceVulkan, "available extensions", propertyNames(app.inventory.Extensions))
		app.log.Printf(tlog.SourceVulkan, "Querying available instance layers")
		report.List(app.log, tlog.SourceVulkan, "available layers", propertyNames(app.inventory.Layers))
	}

	app.log.Printf(tlog.SourceSDL, "Querying required instance extensions")
	required := app.window.VulkanGetInstanceExtensions()
	report.List(app.log, tlog.SourceSDL, "required instance extensions", required)

	app.log.Printf(tlog.SourceVulkan, "Creating Vulkan instance")
	app.instance, err = vkdriver.CreateInstance(app.loader, &app.inventory, vkdriver.InstanceOptions{
		ApplicationName:    app.cfg.Window.Title,
		RequiredExtensions: required,
		Validation:         app.cfg.Renderer.Validation,
	})
	return err
}

func (app *SandboxApplication) createSurface() error {
	app.log.Printf(tlog.SourceSDL, "Creating Vulkan surface")

	var err error
	app.surface, err = vkdriver.CreateSurface(app.instance, app.window)
	if err != nil {
		return err
	}
	app.driver = vkdriver.NewDriver(app.instance, app.surface)
	return nil
}

func (app *SandboxApplication) negotiate() error {
	app.log.Printf(tlog.SourceVulkan, "Querying available physical devices")

	renderer := app.cfg.Renderer
	result, err := selection.Run(app.driver, renderer.Selection, selection.Options{
		TripleBuffer:   renderer.TripleBuffer,
		FormatFallback: renderer.FormatFallback,
		Requested: selection.Extent2D{
			Width:  app.cfg.Window.Width,
			Height: app.cfg.Window.Height,
		},
	})
	app.result = result
	if len(result.Candidates) > 0 {
		report.Candidates(app.log, result.Candidates)
	}
	if err != nil {
		return err
	}

	report.Negotiated(app.log, &app.result)
	return nil
}

func (app *SandboxApplication) createLogicalDevice() error {
	app.log.Printf(tlog.SourceVulkan, "Creating logical device")

	var err error
	app.physicalDevice, err = app.driver.PhysicalDevice(app.result.Selection.Device)
	if err != nil {
		return err
	}

	app.device, app.queue, err = vkdriver.CreateDevice(app.physicalDevice, app.result.Device(), app.result.Selection.QueueFamily)
	return err
}

func (app *SandboxApplication) createSwapchain() error {
	app.log.Printf(tlog.SourceVulkan, "Creating swapchain")

	swapchain, err := vkdriver.CreateSwapchain(app.device, app.surface, app.result.Swapchain)
	if err != nil {
		return err
	}
	app.swapchain = swapchain

	app.log.Printf(tlog.SourceVulkan, "We got a swapchain")
	return nil
}

func (app *SandboxApplication) mainLoop() error {
	delay := uint32(app.cfg.Window.PollDelay / time.Millisecond)

appLoop:
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event.(type) {
			case *sdl.QuitEvent:
				break appLoop
			}
		}
		sdl.Delay(delay)
	}

	app.log.Printf(tlog.SourceSDL, "Window closed after %.3fs", app.timer.ElapsedSec())
	return nil
}

func (app *SandboxApplication) cleanup() {
	if app.swapchain != nil {
		app.swapchain.Destroy(nil)
	}

	if app.device != nil {
		app.device.Destroy(nil)
	}

	if app.surface != nil {
		app.surface.Destroy(nil)
	}

	if app.instance != nil {
		app.instance.Destroy(nil)
	}

	if app.window != nil {
		app.window.Destroy()
	}
	sdl.Quit()
}

func propertyNames(props []vkdriver.Property) []string {
	names := make([]string, 0, len(props))
	for _, prop := range props {
		names = append(names, prop.Name)
	}
	return names
}

func main() {
	// SDL wants every call on the thread that initialized it.
	runtime.LockOSThread()

	envFile := flag.String("env", ".env", "environment file to load before reading SANDBOX_* variables")
	infoOnly := flag.Bool("info", false, "print the device and swapchain summary and exit")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.Fatalf("%+v", err)
	}

	clock := timer.New()
	sandboxLog, err := tlog.New(tlog.Options{
		Path:       cfg.Log.File,
		Flush:      cfg.Log.Flush,
		Echo:       cfg.Log.Echo && !*infoOnly,
		Include:    cfg.Log.Include,
		Exclude:    cfg.Log.Exclude,
		Level:      cfg.Log.Level,
		Timestamps: cfg.Log.Timestamps,
		MaxThreads: cfg.Log.MaxThreads,
		Clock:      clock,
	})
	if err != nil {
		logrus.Fatalf("%+v", err)
	}
	sandboxLog.Debugf(tlog.SourceDebug, "Session %s, device selection %s", uuid.New(), cfg.Renderer.Selection)

	app := &SandboxApplication{
		cfg:      cfg,
		log:      sandboxLog,
		timer:    clock,
		infoOnly: *infoOnly,
	}

	err = app.Run()
	if err != nil {
		fail(sandboxLog, err)
	}

	if err := sandboxLog.Close(); err != nil {
		logrus.Fatalf("%+v", err)
	}
}

// fail logs err with its driver status and hints, closes the log and exits
// with status 1.
func fail(l *tlog.Log, err error) {
	if status, ok := selection.Status(err); ok {
		l.Errorf(tlog.SourceVulkan, "[%d] %v", status, err)
	} else {
		l.Errorf(tlog.SourceDebug, "%v", err)
	}
	for _, hint := range errors.GetAllHints(err) {
		l.Errorf(tlog.SourceDebug, "hint: %s", hint)
	}
	l.Debugf(tlog.SourceDebug, "%+v", err)

	_ = l.Close()
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}
