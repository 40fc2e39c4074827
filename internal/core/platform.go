package core

import (
	"runtime"
	"sort"
	"strings"
)

// OS identifies a supported target operating system.
type OS string

const (
	MacOS   OS = "macos"
	Linux   OS = "linux"
	Windows OS = "windows"
	IOS     OS = "ios"
	Android OS = "android"
)

// UniversalArch is the arch tag used by platforms that ship one fat
// binary covering every architecture.
const UniversalArch = "universal"

// platformInfo fixes the artifact naming rules for one OS.
type platformInfo struct {
	extension string
	osName    string
	universal bool // fat binary, arch collapses to UniversalArch
}

var platforms = map[OS]platformInfo{
	MacOS:   {extension: "dylib", osName: "macos", universal: true},
	Linux:   {extension: "so", osName: "linux", universal: false},
	Windows: {extension: "dll", osName: "windows", universal: false},
	IOS:     {extension: "a", osName: "ios", universal: true},
	Android: {extension: "so", osName: "android", universal: false},
}

// Supported reports whether the OS is in the supported set.
func (o OS) Supported() bool {
	_, ok := platforms[o]
	return ok
}

// ParseOS maps a host-reported OS name onto the supported set.
// Matching is case-insensitive and accepts "darwin" for macOS.
func ParseOS(s string) (OS, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "darwin" {
		return MacOS, nil
	}

	os := OS(normalized)
	if !os.Supported() {
		return "", &UnsupportedPlatformError{Value: s}
	}
	return os, nil
}

// SupportedOS returns the supported operating systems in sorted order.
func SupportedOS() []OS {
	list := make([]OS, 0, len(platforms))
	for os := range platforms {
		list = append(list, os)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// HostOS returns the OS of the running machine.
func HostOS() (OS, error) {
	return ParseOS(runtime.GOOS)
}
