// Package core provides shared types, artifact naming, and the
// release-store system.
package core

import (
	"fmt"
	"strings"
)

// Target identifies what a native binary is being resolved for.
type Target struct {
	// Package is the consuming package identifier; it derives the
	// artifact base name.
	Package string
	// OS is the target operating system.
	OS OS
	// Arch is the platform-reported architecture tag (e.g. "x64",
	// "arm64"). It is opaque except for inclusion in the filename.
	Arch string
}

// Descriptor carries the artifact naming derived for one target.
// It is computed fresh on every resolution, never stored.
type Descriptor struct {
	Package       string
	FileExtension string
	OSName        string
	ArchName      string
	// FileName is the platform-suffixed release asset name,
	// lib<package>_<os>_<arch>.<ext>.
	FileName string
	// LibraryName is the unsuffixed name a same-machine toolchain
	// build produces, lib<package>.<ext>.
	LibraryName string
}

// Describe derives the artifact naming for a target.
// An OS outside the supported set fails with UnsupportedPlatformError
// before any I/O happens.
func Describe(t Target) (*Descriptor, error) {
	info, ok := platforms[t.OS]
	if !ok {
		return nil, &UnsupportedPlatformError{Value: string(t.OS)}
	}
	if t.Package == "" {
		return nil, fmt.Errorf("package name is required")
	}

	archName := t.Arch
	if info.universal {
		archName = UniversalArch
	} else if archName == "" {
		return nil, fmt.Errorf("architecture is required for %s", info.osName)
	}

	name := normalizePackage(t.Package)
	return &Descriptor{
		Package:       t.Package,
		FileExtension: info.extension,
		OSName:        info.osName,
		ArchName:      archName,
		FileName:      fmt.Sprintf("lib%s_%s_%s.%s", name, info.osName, archName, info.extension),
		LibraryName:   fmt.Sprintf("lib%s.%s", name, info.extension),
	}, nil
}

// BinaryFileName derives just the release asset filename for a target.
func BinaryFileName(t Target) (string, error) {
	desc, err := Describe(t)
	if err != nil {
		return "", err
	}
	return desc.FileName, nil
}

// normalizePackage replaces hyphens with underscores so the name is a
// valid library identifier.
func normalizePackage(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Source locates a release on a store. It is fixed configuration,
// injected by the caller and never mutated at runtime.
type Source struct {
	// Store selects the release-store backend; empty means DefaultStore.
	Store string
	// Host overrides the store's default host, for self-hosted
	// instances and tests.
	Host string
	// Owner is the organization or user owning the repository.
	Owner string
	// Repo is the repository name.
	Repo string
	// Version is the release version, without the leading "v".
	Version string
}

// Tag returns the release tag for the source version.
func (s Source) Tag() string {
	return "v" + s.Version
}

// Provenance records where a resolved artifact came from.
type Provenance string

const (
	// LocalBuild marks an artifact found in a same-machine build tree.
	LocalBuild Provenance = "local-build"
	// Downloaded marks an artifact acquired from a release store, or
	// from its download cache.
	Downloaded Provenance = "downloaded"
)

// LinkMode tells the host build system how a binary is consumed.
type LinkMode string

// DynamicBundled means the binary ships alongside the consuming package
// and is loaded at process start rather than linked at compile time.
const DynamicBundled LinkMode = "dynamic-bundled"

// ResolvedArtifact is the outcome of a resolution: an absolute local
// file location plus provenance.
type ResolvedArtifact struct {
	// Path is the absolute location of the binary on local storage.
	Path string
	// Provenance tags how the binary was obtained.
	Provenance Provenance
	// FileName is the release asset name the target maps to.
	FileName string
	// Package is the consuming package identifier.
	Package string
	// Size is the binary size in bytes, -1 when unknown.
	Size int64
	// PURL identifies the release the artifact came from. Empty for
	// local builds, which are unpublished by definition.
	PURL string
}

// Registration returns the record a host build system needs to bundle
// the binary with the package.
func (a *ResolvedArtifact) Registration() Registration {
	return Registration{
		Package:    a.Package,
		Path:       a.Path,
		LinkMode:   DynamicBundled,
		Provenance: a.Provenance,
		PURL:       a.PURL,
	}
}

// Registration associates a package with a resolved binary and the
// directive for consuming it.
type Registration struct {
	Package    string     `json:"package"`
	Path       string     `json:"path"`
	LinkMode   LinkMode   `json:"linkMode"`
	Provenance Provenance `json:"provenance"`
	PURL       string     `json:"purl,omitempty"`
}

// Release describes a published release on a store.
type Release struct {
	TagName    string
	Name       string
	Prerelease bool
	Assets     []Asset
}

// Asset is a single downloadable file attached to a release.
type Asset struct {
	Name        string
	Size        int64 // -1 if the store does not report one
	DownloadURL string
}
