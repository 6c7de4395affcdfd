//go:build !ios && !android && (amd64 || arm64)

// Package bindings loads the GLib, GObject and GStreamer shared libraries
// and registers the function bindings the proxy runtime needs, using purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/purego"
	"k8s.io/klog"

	"github.com/obinnaokechukwu/gstgo/internal/native"
	"github.com/obinnaokechukwu/gstgo/internal/platform"
)

// ErrLibraryNotFound is returned when a required library cannot be found.
var ErrLibraryNotFound = errors.New("gstgo: GStreamer library not found")

// ErrInitFailed is returned when gst_init_check fails.
var ErrInitFailed = errors.New("gstgo: GStreamer initialization failed")

// LibDirEnv names a directory searched before every other location.
const LibDirEnv = "GSTGO_LIB_DIR"

// Config controls where Load looks for libraries.
type Config struct {
	// LibraryDirs are searched before the environment and system paths.
	LibraryDirs []string
}

// Library handles
var (
	libGLib    uintptr
	libGObject uintptr
	libGst     uintptr

	loaded         atomic.Bool
	deinitialized  atomic.Bool
	loadOnce       sync.Once
	loadErr        error
	searchOverride []string
)

// IsLoaded returns true if the libraries have been loaded and initialized.
func IsLoaded() bool {
	return loaded.Load()
}

// Deinitialized reports whether gst_deinit has been called. GStreamer cannot
// be initialized again in the same process afterwards.
func Deinitialized() bool {
	return deinitialized.Load()
}

// Load loads the libraries, registers all function bindings and initializes
// GStreamer. It is safe to call multiple times; only the first call does any
// work and only its Config is honored.
func Load(cfg Config) error {
	loadOnce.Do(func() {
		searchOverride = cfg.LibraryDirs
		loadErr = doLoad()
		if loadErr == nil {
			loaded.Store(true)
		}
	})
	return loadErr
}

func doLoad() error {
	var err error

	// Dependency order: glib, then gobject, then gstreamer.
	libGLib, err = loadLibrary("glib-2.0", []int{0})
	if err != nil {
		return fmt.Errorf("loading libglib: %w", err)
	}
	libGObject, err = loadLibrary("gobject-2.0", []int{0})
	if err != nil {
		return fmt.Errorf("loading libgobject: %w", err)
	}
	libGst, err = loadLibrary("gstreamer-1.0", []int{0})
	if err != nil {
		return fmt.Errorf("loading libgstreamer: %w", err)
	}

	if err := registerFunctions(); err != nil {
		return err
	}

	var gerr *gerrorC
	if gstInitCheck(nil, nil, &gerr) == 0 {
		if e := takeGError(gerr); e != nil {
			return fmt.Errorf("%w: %w", ErrInitFailed, e)
		}
		return ErrInitFailed
	}
	installCallbacks()
	return nil
}

// loadLibrary attempts to load a library by trying versioned names.
func loadLibrary(name string, versions []int) (uintptr, error) {
	for _, searchPath := range LibrarySearchPaths() {
		for _, ver := range versions {
			fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, ver))
			if lib, err := tryOpen(fullPath); err == nil {
				klog.V(2).Infof("gstgo: loaded %s", fullPath)
				return lib, nil
			}
		}
		fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, platform.Unversioned))
		if lib, err := tryOpen(fullPath); err == nil {
			klog.V(2).Infof("gstgo: loaded %s", fullPath)
			return lib, nil
		}
	}

	// Let the dynamic linker search.
	for _, ver := range versions {
		if lib, err := tryOpen(platform.FormatLibraryName(name, ver)); err == nil {
			return lib, nil
		}
	}
	if lib, err := tryOpen(platform.FormatLibraryName(name, platform.Unversioned)); err == nil {
		return lib, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// tryOpen opens a library with RTLD_NOW | RTLD_GLOBAL. GStreamer plugins
// resolve GLib symbols through the global namespace.
func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// FindLibrary searches for a library and returns its full path. This is
// useful for diagnostics.
func FindLibrary(name string, versions []int) (string, error) {
	for _, searchPath := range LibrarySearchPaths() {
		for _, ver := range versions {
			fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, ver))
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
		fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, platform.Unversioned))
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LibrarySearchPaths returns the directories searched for libraries: the
// Config directories, then $GSTGO_LIB_DIR, then the loader path variable of
// the OS, then the usual GStreamer install locations.
func LibrarySearchPaths() []string {
	paths := append([]string(nil), searchOverride...)
	if dir := os.Getenv(LibDirEnv); dir != "" {
		paths = append(paths, filepath.SplitList(dir)...)
	}
	switch runtime.GOOS {
	case "darwin":
		if p := os.Getenv("DYLD_LIBRARY_PATH"); p != "" {
			paths = append(paths, filepath.SplitList(p)...)
		}
	case "windows":
		if p := os.Getenv("PATH"); p != "" {
			paths = append(paths, filepath.SplitList(p)...)
		}
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
	default:
		if p := os.Getenv("LD_LIBRARY_PATH"); p != "" {
			paths = append(paths, filepath.SplitList(p)...)
		}
	}
	return append(paths, platform.SearchPaths()...)
}

// Library returns the native.Library backed by the loaded libraries. It must
// only be used after Load succeeded.
func Library() native.Library {
	return gstLibrary{}
}
