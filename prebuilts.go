// Package prebuilts resolves prebuilt native library binaries for host
// packages, either from a local build tree or from release stores.
//
// The package supports multiple release stores (GitHub, GitLab, Gitea)
// with a unified interface for locating, downloading, and registering
// platform-specific shared libraries.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/native-pkgs/prebuilts"
//		_ "github.com/native-pkgs/prebuilts/all"
//	)
//
//	store, err := prebuilts.New("github", "", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	src := prebuilts.Source{Owner: "acme", Repo: "demo-plugin", Version: "1.2.3"}
//	r := prebuilts.NewResolver(store, src, "build/native",
//		prebuilts.WithLocalRoot("packages/demo-plugin/rust"))
//
//	artifact, err := r.Resolve(context.Background(), prebuilts.Target{
//		Package: "demo-plugin",
//		OS:      prebuilts.Linux,
//		Arch:    "x64",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(artifact.Path, artifact.Provenance)
//
// Stores register themselves on import. The all subpackage pulls in
// every supported store; import individual stores to trim the set.
package prebuilts

import (
	"context"

	"github.com/native-pkgs/prebuilts/client"
	"github.com/native-pkgs/prebuilts/fetch"
	"github.com/native-pkgs/prebuilts/internal/core"
)

// Re-export types from internal/core
type (
	// Store is the interface implemented by all release store clients.
	Store = core.Store

	// Source identifies a repository release that carries prebuilt binaries.
	Source = core.Source

	// Target names the package and platform a binary is resolved for.
	Target = core.Target

	// Descriptor is the platform-specific naming derived from a Target.
	Descriptor = core.Descriptor

	// Release represents release metadata from a store.
	Release = core.Release

	// Asset represents a single downloadable release asset.
	Asset = core.Asset

	// Resolver locates a usable binary for a target.
	Resolver = core.Resolver

	// ResolverOption configures a Resolver.
	ResolverOption = core.ResolverOption

	// ResolvedArtifact is the outcome of a successful resolution.
	ResolvedArtifact = core.ResolvedArtifact

	// Registration records how a resolved binary joins the host build.
	Registration = core.Registration

	// Provenance indicates where a resolved binary came from.
	Provenance = core.Provenance

	// LinkMode describes how the host build consumes a binary.
	LinkMode = core.LinkMode

	// OS is a supported target operating system.
	OS = core.OS
)

// Re-export types from client
type (
	// Client is an HTTP client for store metadata APIs.
	Client = client.Client

	// URLBuilder constructs URLs for a release store.
	URLBuilder = client.URLBuilder

	// RateLimiter controls request pacing.
	RateLimiter = client.RateLimiter
)

// Re-export types from fetch
type (
	// FetcherInterface streams release assets over HTTP.
	FetcherInterface = fetch.FetcherInterface

	// Fetcher is the default FetcherInterface implementation.
	Fetcher = fetch.Fetcher
)

// Re-export constants
const (
	MacOS   = core.MacOS
	Linux   = core.Linux
	Windows = core.Windows
	IOS     = core.IOS
	Android = core.Android

	// UniversalArch is the architecture label for fat binaries.
	UniversalArch = core.UniversalArch

	LocalBuild = core.LocalBuild
	Downloaded = core.Downloaded

	DynamicBundled = core.DynamicBundled

	// DefaultStore is the store assumed when a Source names none.
	DefaultStore = core.DefaultStore
)

// Re-export errors
var (
	ErrUnsupportedPlatform = core.ErrUnsupportedPlatform
	ErrDownloadFailed      = core.ErrDownloadFailed
	ErrReleaseNotFound     = core.ErrReleaseNotFound
	ErrChecksumMismatch    = core.ErrChecksumMismatch
)

// Error types
type (
	UnsupportedPlatformError = core.UnsupportedPlatformError
	DownloadError            = core.DownloadError
	ReleaseNotFoundError     = core.ReleaseNotFoundError
	ChecksumError            = fetch.ChecksumError
	StatusError              = fetch.StatusError
	HTTPError                = client.HTTPError
)

// New creates a new store client for the given store type.
// If host is empty, the store's default host is used.
// If c is nil, DefaultClient() is used.
//
// Supported stores: "github", "gitlab", "gitea"
func New(storeType string, host string, c *Client) (Store, error) {
	return core.New(storeType, host, c)
}

// DefaultClient returns a client with a 30s timeout.
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// Option configures a Client.
type Option = client.Option

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithToken sets a bearer token for authenticated API requests.
var WithToken = client.WithToken

// NewResolver creates a resolver for one source release.
func NewResolver(store Store, src Source, outputDir string, opts ...ResolverOption) *Resolver {
	return core.NewResolver(store, src, outputDir, opts...)
}

// WithLocalRoot sets the package root probed for locally built binaries
// before any download is attempted.
var WithLocalRoot = core.WithLocalRoot

// WithChecksums pins expected SHA-256 digests, keyed by artifact filename.
var WithChecksums = core.WithChecksums

// WithFetcher replaces the fetcher used for downloads.
var WithFetcher = core.WithFetcher

// WithLogger sets the resolver's logger. Resolvers are silent by default.
var WithLogger = core.WithLogger

// Resolve locates a binary for target in a single call, creating the
// store client and resolver from src. The store type defaults to
// "github" when src.Store is empty.
func Resolve(ctx context.Context, src Source, outputDir string, target Target, opts ...ResolverOption) (*ResolvedArtifact, error) {
	storeType := src.Store
	if storeType == "" {
		storeType = DefaultStore
	}
	store, err := core.New(storeType, src.Host, nil)
	if err != nil {
		return nil, err
	}
	return core.NewResolver(store, src, outputDir, opts...).Resolve(ctx, target)
}

// SupportedStores returns all registered store types.
// Note: stores must be imported to be registered.
func SupportedStores() []string {
	return core.SupportedStores()
}

// DefaultHost returns the default host for a store type.
func DefaultHost(storeType string) string {
	return core.DefaultHost(storeType)
}

// ParseOS parses an OS name. It accepts "darwin" as an alias for macOS.
func ParseOS(s string) (OS, error) {
	return core.ParseOS(s)
}

// SupportedOS returns the supported target operating systems, sorted.
func SupportedOS() []OS {
	return core.SupportedOS()
}

// HostOS returns the OS of the running process.
func HostOS() (OS, error) {
	return core.HostOS()
}

// Describe derives the platform-specific artifact naming for a target.
func Describe(t Target) (*Descriptor, error) {
	return core.Describe(t)
}

// BinaryFileName returns the release asset filename for a target.
func BinaryFileName(t Target) (string, error) {
	return core.BinaryFileName(t)
}

// BuildURLs returns a map of all non-empty URLs for an artifact.
// Keys are "release", "download", "api", and "purl".
func BuildURLs(urls URLBuilder, owner, repo, version, filename string) map[string]string {
	return client.BuildURLs(urls, owner, repo, version, filename)
}

// ParseSource parses a Package URL string into a Source.
// Supports purls like pkg:github/acme/demo-plugin@1.2.3.
func ParseSource(purl string) (Source, error) {
	return core.ParseSource(purl)
}

// FromPURL creates a store client from a purl and returns the parsed source.
func FromPURL(purl string, c *Client) (Store, Source, error) {
	return core.FromPURL(purl, c)
}

// ResolveFromPURL resolves a binary for target using a purl.
// Returns an error if the purl doesn't include a version.
func ResolveFromPURL(ctx context.Context, purl string, target Target, outputDir string, c *Client, opts ...ResolverOption) (*ResolvedArtifact, error) {
	return core.ResolveFromPURL(ctx, purl, target, outputDir, c, opts...)
}

// BulkVerify checks release asset availability for multiple targets in parallel.
// Returns a map of artifact filename to error for the targets that failed;
// an empty map means the release covers every target.
func BulkVerify(ctx context.Context, r *Resolver, targets []Target) map[string]error {
	return core.BulkVerify(ctx, r, targets)
}

// BulkVerifyWithConcurrency verifies targets with a custom concurrency limit.
func BulkVerifyWithConcurrency(ctx context.Context, r *Resolver, targets []Target, concurrency int) map[string]error {
	return core.BulkVerifyWithConcurrency(ctx, r, targets, concurrency)
}
