// Package config holds the sandbox configuration. Values come from the
// environment, optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ricotech/vulkan-sandbox/internal/selection"
	"github.com/ricotech/vulkan-sandbox/internal/tlog"
)

// Configuration defines every tunable of the sandbox.
type Configuration struct {
	Window   WindowConfiguration
	Renderer RendererConfiguration
	Log      LogConfiguration
}

// WindowConfiguration describes the SDL window and its event loop.
type WindowConfiguration struct {
	Title  string
	Width  uint32
	Height uint32

	// PollDelay is how long the event loop sleeps between polls.
	PollDelay time.Duration
}

// RendererConfiguration drives instance creation and swapchain negotiation.
type RendererConfiguration struct {
	TripleBuffer   bool
	Selection      selection.Policy
	FormatFallback bool

	// Validation enables the Khronos validation layer on the instance.
	Validation bool

	// ListInstance logs every available instance extension and layer.
	ListInstance bool
}

// LogConfiguration configures the instrumentation log.
type LogConfiguration struct {
	File       string
	Flush      bool
	Echo       bool
	Timestamps bool
	Include    tlog.Source
	Exclude    tlog.Source
	Level      logrus.Level
	MaxThreads int
}

// Default returns the configuration used when nothing is set.
func Default() Configuration {
	return Configuration{
		Window: WindowConfiguration{
			Title:     "Vulkan Window",
			Width:     1280,
			Height:    720,
			PollDelay: 10 * time.Millisecond,
		},
		Renderer: RendererConfiguration{
			TripleBuffer: true,
			Selection:    selection.PolicyFirst,
			ListInstance: true,
		},
		Log: LogConfiguration{
			File:       "log.txt",
			Flush:      true,
			Echo:       true,
			Timestamps: true,
			Include:    tlog.SourceAll,
			Exclude:    tlog.SourceNone,
			Level:      logrus.DebugLevel,
			MaxThreads: tlog.DefaultMaxThreads,
		},
	}
}

// Load reads envFile into the process environment, without overriding
// variables that are already set, and builds the configuration from the
// environment. A missing envFile is not an error.
func Load(envFile string) (Configuration, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Configuration{}, errors.Wrapf(err, "load %s", envFile)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the configuration from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Configuration, error) {
	cfg := Default()
	r := reader{lookup: lookup}

	r.str("SANDBOX_WINDOW_TITLE", &cfg.Window.Title)
	r.dimension("SANDBOX_WINDOW_WIDTH", &cfg.Window.Width)
	r.dimension("SANDBOX_WINDOW_HEIGHT", &cfg.Window.Height)
	r.millis("SANDBOX_POLL_DELAY_MS", &cfg.Window.PollDelay)

	r.boolean("SANDBOX_TRIPLE_BUFFER", &cfg.Renderer.TripleBuffer)
	r.policy("SANDBOX_DEVICE_SELECTION", &cfg.Renderer.Selection)
	r.boolean("SANDBOX_FORMAT_FALLBACK", &cfg.Renderer.FormatFallback)
	r.boolean("SANDBOX_VALIDATION", &cfg.Renderer.Validation)
	r.boolean("SANDBOX_LIST_INSTANCE", &cfg.Renderer.ListInstance)

	r.str("SANDBOX_LOG_FILE", &cfg.Log.File)
	r.boolean("SANDBOX_LOG_FLUSH", &cfg.Log.Flush)
	r.boolean("SANDBOX_LOG_ECHO", &cfg.Log.Echo)
	r.boolean("SANDBOX_LOG_TIMESTAMPS", &cfg.Log.Timestamps)
	r.sources("SANDBOX_LOG_INCLUDE", &cfg.Log.Include)
	r.sources("SANDBOX_LOG_EXCLUDE", &cfg.Log.Exclude)
	r.level("SANDBOX_LOG_LEVEL", &cfg.Log.Level)
	r.count("SANDBOX_LOG_MAX_THREADS", &cfg.Log.MaxThreads)

	if r.err != nil {
		return Configuration{}, r.err
	}
	return cfg, nil
}

// reader records the first parse failure and skips everything after it.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) value(key string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *reader) fail(key, value string, cause error) {
	r.err = errors.Wrapf(cause, "%s=%q", key, value)
}

func (r *reader) str(key string, dst *string) {
	if v, ok := r.value(key); ok && v != "" {
		*dst = v
	}
}

func (r *reader) boolean(key string, dst *bool) {
	v, ok := r.value(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	*dst = b
}

func (r *reader) dimension(key string, dst *uint32) {
	v, ok := r.value(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	if n == 0 {
		r.fail(key, v, errors.New("must be positive"))
		return
	}
	*dst = uint32(n)
}

func (r *reader) count(key string, dst *int) {
	v, ok := r.value(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	if n <= 0 {
		r.fail(key, v, errors.New("must be positive"))
		return
	}
	*dst = n
}

func (r *reader) millis(key string, dst *time.Duration) {
	v, ok := r.value(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	if n == 0 {
		r.fail(key, v, errors.New("must be positive"))
		return
	}
	*dst = time.Duration(n) * time.Millisecond
}

func (r *reader) policy(key string, dst *selection.Policy) {
	v, ok := r.value(key)
	if !ok || v == "" {
		return
	}
	p, err := selection.ParsePolicy(v)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	*dst = p
}

func (r *reader) sources(key string, dst *tlog.Source) {
	v, ok := r.value(key)
	if !ok || v == "" {
		return
	}
	mask, err := tlog.ParseSources(v)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	*dst = mask
}

func (r *reader) level(key string, dst *logrus.Level) {
	v, ok := r.value(key)
	if !ok || v == "" {
		return
	}
	lvl, err := logrus.ParseLevel(v)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	*dst = lvl
}
