package client

import "fmt"

// URLBuilder constructs the URLs a release store exposes for a published
// release and its assets.
type URLBuilder interface {
	// Release returns the human-facing release page URL.
	Release(owner, repo, version string) string

	// Download returns the direct download URL for a release asset.
	Download(owner, repo, version, filename string) string

	// API returns the release metadata endpoint.
	API(owner, repo, version string) string

	// PURL returns the package URL identifying the release.
	PURL(owner, repo, version string) string
}

// BaseURLs provides a default implementation of URLBuilder that stores
// can embed or construct directly.
type BaseURLs struct {
	ReleaseFn  func(owner, repo, version string) string
	DownloadFn func(owner, repo, version, filename string) string
	APIFn      func(owner, repo, version string) string
	PURLFn     func(owner, repo, version string) string
}

func (b *BaseURLs) Release(owner, repo, version string) string {
	if b.ReleaseFn != nil {
		return b.ReleaseFn(owner, repo, version)
	}
	return ""
}

func (b *BaseURLs) Download(owner, repo, version, filename string) string {
	if b.DownloadFn != nil {
		return b.DownloadFn(owner, repo, version, filename)
	}
	return ""
}

func (b *BaseURLs) API(owner, repo, version string) string {
	if b.APIFn != nil {
		return b.APIFn(owner, repo, version)
	}
	return ""
}

func (b *BaseURLs) PURL(owner, repo, version string) string {
	if b.PURLFn != nil {
		return b.PURLFn(owner, repo, version)
	}
	if version != "" {
		return fmt.Sprintf("pkg:generic/%s/%s@%s", owner, repo, version)
	}
	return fmt.Sprintf("pkg:generic/%s/%s", owner, repo)
}

// BuildURLs returns a map of all non-empty URLs for a release asset.
// Keys are "release", "download", "api", and "purl".
func BuildURLs(urls URLBuilder, owner, repo, version, filename string) map[string]string {
	result := make(map[string]string)

	if u := urls.Release(owner, repo, version); u != "" {
		result["release"] = u
	}
	if u := urls.Download(owner, repo, version, filename); u != "" {
		result["download"] = u
	}
	if u := urls.API(owner, repo, version); u != "" {
		result["api"] = u
	}
	if u := urls.PURL(owner, repo, version); u != "" {
		result["purl"] = u
	}

	return result
}
