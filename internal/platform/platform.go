package platform

import (
	"strings"

	"github.com/tanq16/godotfetch/internal/utils"
)

// Platform is the closed set of operating systems Godot ships binaries for.
type Platform string

const (
	Linux   Platform = "linux"
	OSX     Platform = "osx"
	Windows Platform = "windows"
)

// Architecture is the closed set of CPU word sizes Godot ships binaries for.
type Architecture string

const (
	X32 Architecture = "32"
	X64 Architecture = "64"
)

func (p Platform) String() string     { return string(p) }
func (a Architecture) String() string { return string(a) }

func (p Platform) Valid() bool {
	switch p {
	case Linux, OSX, Windows:
		return true
	}
	return false
}

func (a Architecture) Valid() bool {
	switch a {
	case X32, X64:
		return true
	}
	return false
}

// PlatformFromOS maps a host OS identifier (GOOS or a Node-style name) to a Platform.
func PlatformFromOS(goos string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(goos)) {
	case "linux", "cygwin":
		return Linux, nil
	case "darwin", "macos", "osx":
		return OSX, nil
	case "windows", "win32":
		return Windows, nil
	default:
		return "", &utils.UnsupportedPlatformError{Platform: goos}
	}
}

// ArchitectureFromArch maps a host CPU identifier (GOARCH, uname -m or a
// Node-style name) to an Architecture.
func ArchitectureFromArch(arch string) (Architecture, error) {
	switch strings.ToLower(strings.TrimSpace(arch)) {
	case "amd64", "x64", "x86_64", "x86-64":
		return X64, nil
	case "386", "x32", "x86", "i386", "i686":
		return X32, nil
	default:
		return "", &utils.UnsupportedArchitectureError{Architecture: arch}
	}
}
