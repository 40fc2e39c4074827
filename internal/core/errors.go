package core

import (
	"errors"
	"fmt"

	"github.com/native-pkgs/prebuilts/fetch"
)

// ErrUnsupportedPlatform is returned when a target OS is outside the
// supported set.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedPlatformError wraps ErrUnsupportedPlatform with the
// offending value.
type UnsupportedPlatformError struct {
	Value string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q", e.Value)
}

func (e *UnsupportedPlatformError) Unwrap() error {
	return ErrUnsupportedPlatform
}

// ErrDownloadFailed is returned when a release store answered but did
// not hand over the asset.
var ErrDownloadFailed = errors.New("download failed")

// DownloadError wraps ErrDownloadFailed with the attempted URL and
// status code, so a missing release can be told apart from a typo in
// the coordinates.
type DownloadError struct {
	URL        string
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed: HTTP %d: %s", e.StatusCode, e.URL)
}

func (e *DownloadError) Unwrap() error {
	return ErrDownloadFailed
}

// NotFound returns true if the release asset does not exist.
func (e *DownloadError) NotFound() bool {
	return e.StatusCode == 404
}

// ErrReleaseNotFound is returned when a release or tag does not exist
// on the store.
var ErrReleaseNotFound = errors.New("release not found")

// ReleaseNotFoundError wraps ErrReleaseNotFound with the release
// coordinates.
type ReleaseNotFoundError struct {
	Store   string
	Owner   string
	Repo    string
	Version string
}

func (e *ReleaseNotFoundError) Error() string {
	return fmt.Sprintf("%s: release %s/%s v%s not found", e.Store, e.Owner, e.Repo, e.Version)
}

func (e *ReleaseNotFoundError) Unwrap() error {
	return ErrReleaseNotFound
}

// ErrChecksumMismatch re-exports the fetch-layer sentinel so callers
// can match it without importing fetch.
var ErrChecksumMismatch = fetch.ErrChecksumMismatch
