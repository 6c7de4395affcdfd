//go:build !ios && !android && (amd64 || arm64)

// Package platform knows how GStreamer's shared libraries are named and
// where they are installed on each operating system.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unsafe"
)

// Is64Bit indicates whether the platform is 64-bit. The message layout
// offsets used by the bindings assume it.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// Unversioned asks FormatLibraryName for the development name without an ABI
// suffix.
const Unversioned = -1

// FormatLibraryName returns the file name of a shared library for the
// current OS. GStreamer and GLib use ABI 0, so only a negative abi yields the
// unversioned name.
//
// Examples:
//   - Linux:   FormatLibraryName("gstreamer-1.0", 0) -> "libgstreamer-1.0.so.0"
//   - macOS:   FormatLibraryName("gstreamer-1.0", 0) -> "libgstreamer-1.0.0.dylib"
//   - Windows: FormatLibraryName("gstreamer-1.0", 0) -> "gstreamer-1.0-0.dll"
func FormatLibraryName(name string, abi int) string {
	return formatLibraryName(runtime.GOOS, name, abi)
}

func formatLibraryName(goos, name string, abi int) string {
	switch goos {
	case "darwin":
		if abi >= 0 {
			return fmt.Sprintf("lib%s.%d.dylib", name, abi)
		}
		return fmt.Sprintf("lib%s.dylib", name)
	case "windows":
		if abi >= 0 {
			return fmt.Sprintf("%s-%d.dll", name, abi)
		}
		return fmt.Sprintf("%s.dll", name)
	default: // linux, freebsd
		if abi >= 0 {
			return fmt.Sprintf("lib%s.so.%d", name, abi)
		}
		return fmt.Sprintf("lib%s.so", name)
	}
}

// SearchPaths returns the directories a GStreamer installation usually lives
// in, most specific first. Directories that do not exist are included; the
// loader skips them.
func SearchPaths() []string {
	return searchPaths(runtime.GOOS, runtime.GOARCH, os.Getenv)
}

func searchPaths(goos, goarch string, getenv func(string) string) []string {
	var paths []string
	switch goos {
	case "darwin":
		paths = append(paths,
			"/Library/Frameworks/GStreamer.framework/Libraries",
			"/opt/homebrew/lib",
			"/usr/local/lib",
		)
	case "windows":
		for _, env := range []string{"GSTREAMER_1_0_ROOT_MSVC_X86_64", "GSTREAMER_1_0_ROOT_MINGW_X86_64", "GSTREAMER_1_0_ROOT_X86_64"} {
			if root := getenv(env); root != "" {
				paths = append(paths, filepath.Join(root, "bin"))
			}
		}
	default:
		triplet := "x86_64-linux-gnu"
		if goarch == "arm64" {
			triplet = "aarch64-linux-gnu"
		}
		paths = append(paths,
			"/usr/lib/"+triplet,
			"/usr/lib64",
			"/usr/lib",
			"/usr/local/lib",
		)
	}
	return paths
}
