package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/native-pkgs/prebuilts/fetch"
)

// buildProfiles are probed in order under the local build tree.
// An optimized build wins over a debug one.
var buildProfiles = [...]string{"release", "debug"}

// Resolver locates native binary artifacts for build targets: from a
// local toolchain build tree when one exists, otherwise from a release
// store with a download-once cache keyed by artifact filename.
//
// Concurrent Resolve calls on one Resolver that hit the same artifact
// share a single download.
type Resolver struct {
	store     Store
	src       Source
	outputDir string
	localRoot string
	checksums map[string]string
	fetcher   fetch.FetcherInterface
	group     *fetch.Group
	logger    *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLocalRoot sets the local build tree probed before going remote.
// The conventional root for a host package is <packageRoot>/rust.
func WithLocalRoot(root string) ResolverOption {
	return func(r *Resolver) {
		r.localRoot = root
	}
}

// WithChecksums pins expected SHA-256 digests, keyed by artifact
// filename. Pinned artifacts are verified on download and on cache
// hits; unpinned artifacts keep the existence-only cache semantics.
func WithChecksums(sums map[string]string) ResolverOption {
	return func(r *Resolver) {
		r.checksums = sums
	}
}

// WithFetcher replaces the download transport, e.g. with a
// fetch.CircuitBreakerFetcher.
func WithFetcher(f fetch.FetcherInterface) ResolverOption {
	return func(r *Resolver) {
		r.fetcher = f
	}
}

// WithLogger sets the logger. The resolver is silent by default.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a resolver that places downloaded artifacts in
// outputDir.
func NewResolver(store Store, src Source, outputDir string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:     store,
		src:       src,
		outputDir: outputDir,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fetcher == nil {
		r.fetcher = fetch.NewFetcher()
	}
	r.group = fetch.NewGroup(r.fetcher)
	return r
}

// Source returns the release coordinates the resolver is bound to.
func (r *Resolver) Source() Source {
	return r.src
}

// Resolve locates the artifact for a target.
//
// Naming is derived first and an unsupported platform fails before any
// I/O. A binary in the local build tree wins over the store; otherwise
// the asset is downloaded into the output directory, where an existing
// file counts as a cache hit.
func (r *Resolver) Resolve(ctx context.Context, target Target) (*ResolvedArtifact, error) {
	desc, err := Describe(target)
	if err != nil {
		return nil, err
	}

	local, size, err := r.probeLocal(desc)
	if err != nil {
		return nil, err
	}
	if local != "" {
		r.logger.Debug("using local build", "package", target.Package, "path", local)
		return &ResolvedArtifact{
			Path:       local,
			Provenance: LocalBuild,
			FileName:   desc.FileName,
			Package:    target.Package,
			Size:       size,
		}, nil
	}

	return r.download(ctx, desc, target)
}

// probeLocal checks the toolchain build tree for a same-machine build
// of the library. A missing tree is the common case and skips to the
// remote path without error.
func (r *Resolver) probeLocal(desc *Descriptor) (string, int64, error) {
	if r.localRoot == "" {
		return "", 0, nil
	}

	for _, profile := range buildProfiles {
		candidate := filepath.Join(r.localRoot, "target", profile, desc.LibraryName)
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", 0, fmt.Errorf("probing %s: %w", candidate, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", 0, fmt.Errorf("resolving %s: %w", candidate, err)
		}
		return abs, info.Size(), nil
	}

	return "", 0, nil
}

func (r *Resolver) download(ctx context.Context, desc *Descriptor, target Target) (*ResolvedArtifact, error) {
	url := r.store.URLs().Download(r.src.Owner, r.src.Repo, r.src.Version, desc.FileName)
	dest := filepath.Join(r.outputDir, desc.FileName)

	var opts []fetch.DownloadOption
	if sum, ok := r.checksums[desc.FileName]; ok {
		opts = append(opts, fetch.WithSHA256(sum))
	}

	result, err := r.group.Download(ctx, url, dest, opts...)
	if err != nil {
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) {
			return nil, &DownloadError{URL: statusErr.URL, StatusCode: statusErr.StatusCode}
		}
		return nil, err
	}

	if result.Cached {
		r.logger.Debug("using cached artifact", "package", target.Package, "path", result.Path)
	} else {
		r.logger.Info("downloaded artifact", "package", target.Package, "url", url, "bytes", result.Size)
	}

	abs, err := filepath.Abs(result.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", result.Path, err)
	}

	return &ResolvedArtifact{
		Path:       abs,
		Provenance: Downloaded,
		FileName:   desc.FileName,
		Package:    target.Package,
		Size:       result.Size,
		PURL:       r.store.URLs().PURL(r.src.Owner, r.src.Repo, r.src.Version),
	}, nil
}

// Verify confirms the release publishes the artifact for a target
// without downloading it. It issues a single HEAD request.
func (r *Resolver) Verify(ctx context.Context, target Target) error {
	desc, err := Describe(target)
	if err != nil {
		return err
	}

	url := r.store.URLs().Download(r.src.Owner, r.src.Repo, r.src.Version, desc.FileName)
	if _, _, err := r.fetcher.Head(ctx, url); err != nil {
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) {
			return &DownloadError{URL: statusErr.URL, StatusCode: statusErr.StatusCode}
		}
		return err
	}
	return nil
}
