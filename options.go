//go:build !ios && !android && (amd64 || arm64)

package gstgo

// Option configures Init.
type Option func(*config)

type config struct {
	libraryDirs   []string
	debugLevel    DebugLevel
	debugLevelSet bool
	logCallback   LogCallback
	klog          bool
}

func newConfig(opts []Option) *config {
	cfg := &config{klog: true}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLibraryDir adds a directory searched for the GStreamer libraries before
// the platform defaults. The GSTGO_LIB_DIR environment variable has the same
// effect.
func WithLibraryDir(dir string) Option {
	return func(c *config) {
		if dir != "" {
			c.libraryDirs = append(c.libraryDirs, dir)
		}
	}
}

// WithDebugLevel sets the default GStreamer debug threshold.
func WithDebugLevel(level DebugLevel) Option {
	return func(c *config) {
		c.debugLevel = level
		c.debugLevelSet = true
	}
}

// WithLogCallback routes GStreamer debug output to cb instead of klog.
func WithLogCallback(cb LogCallback) Option {
	return func(c *config) {
		c.logCallback = cb
	}
}

// WithoutKlogRouting leaves GStreamer's own stderr logger in place.
func WithoutKlogRouting() Option {
	return func(c *config) {
		c.klog = false
	}
}
