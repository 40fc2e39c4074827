package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"
)

// ErrChecksumMismatch is returned when an asset does not match its
// pinned digest.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumError wraps ErrChecksumMismatch with the offending file and
// the expected and actual digests.
type ChecksumError struct {
	Path string
	Want string
	Got  string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: want sha256:%s, got sha256:%s", e.Path, e.Want, e.Got)
}

func (e *ChecksumError) Unwrap() error {
	return ErrChecksumMismatch
}

// Result describes the outcome of a Download call.
type Result struct {
	// Path is the destination file location.
	Path string
	// Size is the number of bytes on local storage.
	Size int64
	// Cached is true when the destination already existed and no
	// request was made.
	Cached bool
}

// DownloadOption configures a single Download call.
type DownloadOption func(*downloadConfig)

type downloadConfig struct {
	sha256 string
}

// WithSHA256 pins the expected SHA-256 digest (hex) of the asset.
// The digest is checked on fresh downloads and on cache hits; a mismatch
// removes the offending file and fails the call.
func WithSHA256(hexDigest string) DownloadOption {
	return func(c *downloadConfig) {
		c.sha256 = strings.ToLower(hexDigest)
	}
}

// Group downloads assets to local files, coalescing concurrent requests
// for the same destination into a single fetch. An existing destination
// file is a cache hit and is returned without touching the network.
type Group struct {
	fetcher FetcherInterface
	sf      singleflight.Group
}

// NewGroup creates a download group over the given fetcher.
// A nil fetcher selects a default Fetcher.
func NewGroup(f FetcherInterface) *Group {
	if f == nil {
		f = NewFetcher()
	}
	return &Group{fetcher: f}
}

// Download fetches url into dest. Concurrent calls for the same dest
// share one fetch; later callers observe the first caller's result.
func (g *Group) Download(ctx context.Context, url, dest string, opts ...DownloadOption) (*Result, error) {
	cfg := downloadConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	v, err, _ := g.sf.Do(dest, func() (any, error) {
		return g.download(ctx, url, dest, &cfg)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (g *Group) download(ctx context.Context, url, dest string, cfg *downloadConfig) (*Result, error) {
	// Existence is the cache contract: the file being there means a
	// prior run fetched it. Content is only checked against a pin.
	if info, err := os.Stat(dest); err == nil && info.Mode().IsRegular() {
		if cfg.sha256 != "" {
			if err := verifyFile(dest, cfg.sha256); err != nil {
				return nil, err
			}
		}
		return &Result{Path: dest, Size: info.Size(), Cached: true}, nil
	}

	artifact, err := g.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = artifact.Body.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", dest, err)
	}

	var digest hash.Hash
	var w io.Writer = out
	if cfg.sha256 != "" {
		digest = sha256.New()
		w = io.MultiWriter(out, digest)
	}

	written, err := io.Copy(w, artifact.Body)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return nil, fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("writing %s: %w", dest, err)
	}

	if digest != nil {
		got := hex.EncodeToString(digest.Sum(nil))
		if got != cfg.sha256 {
			_ = os.Remove(dest)
			return nil, &ChecksumError{Path: dest, Want: cfg.sha256, Got: got}
		}
	}

	return &Result{Path: dest, Size: written}, nil
}

// verifyFile re-hashes an existing file against a pinned digest.
// A mismatch removes the file so the next run fetches a fresh copy.
func verifyFile(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		_ = os.Remove(path)
		return &ChecksumError{Path: path, Want: want, Got: got}
	}
	return nil
}
